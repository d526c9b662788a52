package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"fairchat/auth"
	"fairchat/chatclient"
	"fairchat/domain"
	"fairchat/internal"
	"fairchat/projection"
	"fairchat/repositories"
	"fairchat/restapi"
	"fairchat/sink"
	"fairchat/transport"
)

// Exit codes for the terminal client.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fairchat error: %v\n", err)
	}
	os.Exit(code)
}

// run handles the chat client lifecycle, configuration loading, and the
// input loop. This pattern ensures clean resource management and error
// propagation.
func run() (int, error) {
	// 1. Load configuration from environment variables.
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	credential := auth.Credential(config.Token)
	self, err := credential.Identity()
	if err != nil {
		return exitConfig, fmt.Errorf("token error: %w", err)
	}

	rest := restapi.NewClient(log, config.APIBaseURL, func() string { return config.Token }, config.RequestTimeout)

	// 3. Optional local history cache: renders the last transcript
	// instantly while the channel connects.
	var cache *repositories.HistoryCache
	session := domain.SessionID(config.SessionID)
	if config.CachePath != "" {
		db, err := badger.Open(badger.DefaultOptions(config.CachePath).WithLoggingLevel(badger.WARNING))
		if err != nil {
			return exitRuntime, fmt.Errorf("history cache error: %w", err)
		}
		defer func() {
			log.Info("Closing history cache...")
			_ = db.Close()
		}()
		hc := repositories.NewHistoryCache(db, log, config.HistoryLimit)
		cache = &hc

		if config.DebugPort > 0 {
			internal.StartCacheInspector(db, config.DebugPort, nil)
			log.Info(fmt.Sprintf("Cache inspector on http://localhost:%d/inspect", config.DebugPort))
		}

		if cached, err := cache.GetHistory(session); err == nil && len(cached) > 0 {
			renderTranscript(self, projection.Replay(repositories.Restore(cached)))
		}
	}

	// 4. Wire the chat core: dialer, notifier, client, flag tracker.
	dialer := transport.NewDialer(log, transport.Options{
		GatewayURL:       config.GatewayURL,
		HandshakeTimeout: config.HandshakeTimeout,
		WriteTimeout:     config.WriteTimeout,
	})
	notifier := newTerminalNotifier()
	client := chatclient.NewClient(log, dialer, rest, notifier)
	client.AddSink(sink.NewTelemetry(log))
	defer client.Close()

	client.OnChange(func(snapshot projection.Log) {
		renderTranscript(self, snapshot)
		if cache != nil {
			if err := cache.ReplaceHistory(session, snapshot.Messages()); err != nil {
				log.Warn("History cache write failed", "error", err)
			}
		}
	})

	if err = client.Authenticate(ctx, credential); err != nil {
		return exitConfig, fmt.Errorf("authentication error: %w", err)
	}
	if err = client.Bind(ctx, session); err != nil {
		return exitRuntime, fmt.Errorf("bind error: %w", err)
	}

	// 5. Flag tracking only makes sense on the company side.
	flags := chatclient.NewFlagTracker(log, rest, notifier)
	meta, metaErr := rest.Session(ctx, session)
	if metaErr != nil {
		log.Warn("Session lookup failed, /star and /flags disabled", "error", metaErr)
	} else if self.Role == domain.RoleCompany {
		if err := flags.Reconcile(ctx, meta.JobListingID, []string{meta.CandidateID}); err != nil {
			log.Warn("Flag reconciliation failed", "error", err)
		}
	}

	log.Info(fmt.Sprintf(">>> Connected as %s (%s). Type to chat, /edit /delete /star /flags, Ctrl+C to quit", self.ID, self.Role))

	// 6. Input loop. Runs until the context is canceled or stdin closes.
	lines := make(chan string)
	go readInput(lines)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping fairchat...")
			return exitOK, nil
		case line, ok := <-lines:
			if !ok {
				return exitOK, nil
			}
			handleLine(ctx, client, flags, meta, session, line)
		}
	}
}

func readInput(lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		lines <- scanner.Text()
	}
}

func handleLine(ctx context.Context, client *chatclient.Client,
	flags *chatclient.FlagTracker, meta domain.Session, session domain.SessionID, line string) {
	switch {
	case strings.HasPrefix(line, "/edit "):
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 3 {
			printUsage("/edit <message-id> <new content>")
			return
		}
		reportError(client.Edit(ctx, domain.EditMessageCommand{
			Session: session, MessageID: parts[1], Content: parts[2],
		}))
	case strings.HasPrefix(line, "/delete "):
		parts := strings.SplitN(line, " ", 2)
		reportError(client.Delete(ctx, domain.DeleteMessageCommand{
			Session: session, MessageID: strings.TrimSpace(parts[1]),
		}))
	case line == "/star" || strings.HasPrefix(line, "/star "):
		// Defaults to the session's candidate and listing; an explicit
		// "/star <user> <listing>" overrides both.
		pair := chatclient.PairKey{UserID: meta.CandidateID, JobListingID: meta.JobListingID}
		if parts := strings.Fields(line); len(parts) == 3 {
			pair = chatclient.PairKey{UserID: parts[1], JobListingID: parts[2]}
		}
		reportError(flags.Toggle(ctx, pair))
	case line == "/flags":
		printFlagTable(flags, meta)
	default:
		reportError(client.Send(ctx, domain.SendMessageCommand{Session: session, Content: line}))
	}
}
