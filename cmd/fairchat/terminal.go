package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"fairchat/chatclient"
	"fairchat/domain"
	"fairchat/projection"
)

// terminalNotifier renders slot-keyed notices. The newest payload per
// slot replaces the previous one, so a reconnect or a second failed
// edit never stacks banners.
type terminalNotifier struct {
	mu    sync.Mutex
	slots map[string]string
}

func newTerminalNotifier() *terminalNotifier {
	return &terminalNotifier{slots: make(map[string]string)}
}

func (n *terminalNotifier) Notify(slot, payload string) {
	n.mu.Lock()
	n.slots[slot] = payload
	n.mu.Unlock()
	color.Warn.Printf("[%s] %s\n", slot, payload)
}

func (n *terminalNotifier) Dismiss(slot string) {
	n.mu.Lock()
	delete(n.slots, slot)
	n.mu.Unlock()
}

func renderTranscript(self domain.Sender, snapshot projection.Log) {
	fmt.Printf("--- %d message(s) ---\n", snapshot.Len())
	for _, m := range snapshot.Messages() {
		printMessage(self, m)
	}
}

func printMessage(self domain.Sender, m domain.Message) {
	name := m.Sender.ID
	if m.Sender.ID == self.ID {
		name = "you"
	}
	roleColor(m.Sender.Role).Printf("%s [%s] %s: %s\n",
		m.CreatedAt.Local().Format(time.TimeOnly), m.ID, name, m.Content)
}

func roleColor(role domain.Role) color.Color {
	switch role {
	case domain.RoleAdmin:
		return color.FgRed
	case domain.RoleCompany:
		return color.FgCyan
	}
	return color.FgGreen
}

func printFlagTable(flags *chatclient.FlagTracker, meta domain.Session) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Candidate", "Job listing", "State"})
	pair := chatclient.PairKey{UserID: meta.CandidateID, JobListingID: meta.JobListingID}
	table.Append([]string{meta.CandidateID, meta.JobListingID, flags.Phase(pair).String()})
	table.Render()
}

func printUsage(usage string) {
	color.Comment.Printf("usage: %s\n", usage)
}

func reportError(err error) {
	if err != nil {
		color.Error.Printf("%v\n", err)
	}
}
