package chatclient

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"

	"fairchat/contract"
	"fairchat/domain"
	"fairchat/errors"
)

// PairKey identifies one (candidate user, job listing) pair.
type PairKey struct {
	UserID       string
	JobListingID string
}

type pairState struct {
	phase domain.FlagPhase
	flag  *domain.Flag
}

// FlagTracker is the request/response side-channel for candidate
// flags. It never flips the displayed state before the server
// confirms: a boolean marker has no natural undo.
type FlagTracker struct {
	log      *slog.Logger
	api      contract.FlagAPI
	notifier contract.NotificationPort

	mu    sync.Mutex
	pairs map[PairKey]*pairState
}

func NewFlagTracker(log *slog.Logger, api contract.FlagAPI, notifier contract.NotificationPort) *FlagTracker {
	return &FlagTracker{
		log:      log,
		api:      api,
		notifier: notifier,
		pairs:    make(map[PairKey]*pairState),
	}
}

// Reconcile fetches the live flags for one job listing and matches
// them to the visible candidate rows by user identity. Runs once per
// view load. Should the server ever hold duplicate rows for a pair,
// the first row wins.
func (t *FlagTracker) Reconcile(ctx context.Context, jobListingID string, userIDs []string) error {
	t.mu.Lock()
	for _, userID := range userIDs {
		t.pairs[PairKey{UserID: userID, JobListingID: jobListingID}] = &pairState{phase: domain.FlagChecking}
	}
	t.mu.Unlock()

	flags, err := t.api.ListFlags(ctx, jobListingID)
	if err != nil {
		t.mu.Lock()
		for _, userID := range userIDs {
			t.pairs[PairKey{UserID: userID, JobListingID: jobListingID}] = &pairState{phase: domain.FlagUnknown}
		}
		t.mu.Unlock()
		t.notifier.Notify(SlotFlag, fmt.Sprintf("Could not load flags: %v", err))
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, userID := range userIDs {
		key := PairKey{UserID: userID, JobListingID: jobListingID}
		flag, found := lo.Find(flags, func(f domain.Flag) bool { return f.UserID == userID })
		if found {
			t.pairs[key] = &pairState{phase: domain.FlagFlagged, flag: &flag}
		} else {
			t.pairs[key] = &pairState{phase: domain.FlagUnflagged}
		}
	}
	return nil
}

// Toggle stars or unstars one pair. Exactly one request kind fires per
// invocation: delete when a flag is known, create otherwise. While a
// round-trip is in flight the pair rejects further toggles, and a
// failure leaves the displayed state exactly where it was.
func (t *FlagTracker) Toggle(ctx context.Context, pair PairKey) error {
	t.mu.Lock()
	state, ok := t.pairs[pair]
	if !ok || state.phase == domain.FlagUnknown {
		t.mu.Unlock()
		return errors.ErrUnknownPair
	}
	if state.phase == domain.FlagChecking {
		t.mu.Unlock()
		return errors.ErrToggleInFlight
	}
	was := state.phase
	current := state.flag
	state.phase = domain.FlagChecking
	t.mu.Unlock()

	if current != nil {
		return t.unstar(ctx, state, was, *current)
	}
	return t.star(ctx, state, was, pair)
}

func (t *FlagTracker) star(ctx context.Context, state *pairState, was domain.FlagPhase, pair PairKey) error {
	created, err := t.api.CreateFlag(ctx, pair.UserID, pair.JobListingID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		state.phase = was
		t.notifier.Notify(SlotFlag, fmt.Sprintf("Could not star the candidate: %v", err))
		return err
	}
	state.phase = domain.FlagFlagged
	state.flag = &created
	return nil
}

func (t *FlagTracker) unstar(ctx context.Context, state *pairState, was domain.FlagPhase, current domain.Flag) error {
	err := t.api.DeleteFlag(ctx, current.ID)

	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		state.phase = was
		t.notifier.Notify(SlotFlag, fmt.Sprintf("Could not unstar the candidate: %v", err))
		return err
	}
	state.phase = domain.FlagUnflagged
	state.flag = nil
	return nil
}

// Phase reports where the pair sits in the
// unknown → checking → {flagged | unflagged} state machine.
func (t *FlagTracker) Phase(pair PairKey) domain.FlagPhase {
	t.mu.Lock()
	defer t.mu.Unlock()
	if state, ok := t.pairs[pair]; ok {
		return state.phase
	}
	return domain.FlagUnknown
}

// Flagged is the boolean the UI renders for the star affordance.
func (t *FlagTracker) Flagged(pair PairKey) bool {
	return t.Phase(pair) == domain.FlagFlagged
}
