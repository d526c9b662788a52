package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"fairchat/internal"
)

// Config defines the viewer-side environment variables.
type Config struct {
	CachePath string `env:"CACHE_PATH,required=true"`
	DebugPort int    `env:"DEBUG_PORT,default=6060"`
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode
	// Note: BypassLockGuard allows opening if another process (the chat
	// client) holds the lock
	opts := badger.DefaultOptions(config.CachePath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open history cache: %v", err)
	}
	defer db.Close()

	// 3. Start the inspector and wait for Ctrl+C
	fmt.Printf("Viewer started at http://localhost:%d/inspect\n", config.DebugPort)
	internal.StartCacheInspector(db, config.DebugPort, TranscriptMapper)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}

// TranscriptMapper renders a cached message row as "sender: content"
// instead of raw JSON.
func TranscriptMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	var m struct {
		SenderID  string `json:"sender_id"`
		Role      string `json:"role"`
		Content   string `json:"content"`
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(val, &m); err != nil {
		return row
	}

	row.Detail = fmt.Sprintf("%s [%s] %s: %s", m.CreatedAt, m.Role, m.SenderID, m.Content)
	return row
}
