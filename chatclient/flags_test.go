package chatclient

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"fairchat/domain"
	"fairchat/errors"
	"fairchat/mocks"
)

func newFlagFixture(ctrl *gomock.Controller) (*FlagTracker, *mocks.MockFlagAPI, *mocks.MockNotificationPort) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	api := mocks.NewMockFlagAPI(ctrl)
	notifier := mocks.NewMockNotificationPort(ctrl)
	return NewFlagTracker(log, api, notifier), api, notifier
}

func TestReconcile_MatchesFlagsToVisibleRows(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tracker, api, _ := newFlagFixture(ctrl)

	api.EXPECT().
		ListFlags(gomock.Any(), "j1").
		Return([]domain.Flag{{ID: "f1", UserID: "u1", JobListingID: "j1"}}, nil).
		Times(1)

	req.NoError(tracker.Reconcile(context.Background(), "j1", []string{"u1", "u2"}))

	req.Equal(domain.FlagFlagged, tracker.Phase(PairKey{UserID: "u1", JobListingID: "j1"}))
	req.Equal(domain.FlagUnflagged, tracker.Phase(PairKey{UserID: "u2", JobListingID: "j1"}))
	req.True(tracker.Flagged(PairKey{UserID: "u1", JobListingID: "j1"}))
}

func TestReconcile_FirstRowWinsOnDuplicates(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tracker, api, _ := newFlagFixture(ctrl)

	api.EXPECT().
		ListFlags(gomock.Any(), "j1").
		Return([]domain.Flag{
			{ID: "f1", UserID: "u1", JobListingID: "j1"},
			{ID: "f2", UserID: "u1", JobListingID: "j1"},
		}, nil).
		Times(1)
	// Unstar must then target the winning row.
	api.EXPECT().DeleteFlag(gomock.Any(), "f1").Return(nil).Times(1)

	pair := PairKey{UserID: "u1", JobListingID: "j1"}
	req.NoError(tracker.Reconcile(context.Background(), "j1", []string{"u1"}))
	req.NoError(tracker.Toggle(context.Background(), pair))
	req.Equal(domain.FlagUnflagged, tracker.Phase(pair))
}

func TestReconcile_FailureResetsToUnknownAndNotifies(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tracker, api, notifier := newFlagFixture(ctrl)

	api.EXPECT().ListFlags(gomock.Any(), "j1").Return(nil, fmt.Errorf("listing endpoint down")).Times(1)
	notifier.EXPECT().Notify(SlotFlag, gomock.Any()).Times(1)

	err := tracker.Reconcile(context.Background(), "j1", []string{"u1"})

	req.Error(err)
	req.Equal(domain.FlagUnknown, tracker.Phase(PairKey{UserID: "u1", JobListingID: "j1"}))
}

func TestToggle_UnflaggedPairIssuesExactlyOneCreate(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tracker, api, _ := newFlagFixture(ctrl)
	pair := PairKey{UserID: "u1", JobListingID: "j1"}

	api.EXPECT().ListFlags(gomock.Any(), "j1").Return(nil, nil).Times(1)
	api.EXPECT().
		CreateFlag(gomock.Any(), "u1", "j1").
		Return(domain.Flag{ID: "f1", UserID: "u1", JobListingID: "j1"}, nil).
		Times(1)
	api.EXPECT().DeleteFlag(gomock.Any(), gomock.Any()).Times(0)

	req.NoError(tracker.Reconcile(context.Background(), "j1", []string{"u1"}))
	req.NoError(tracker.Toggle(context.Background(), pair))
	req.Equal(domain.FlagFlagged, tracker.Phase(pair))
}

func TestToggle_FlaggedPairIssuesExactlyOneDelete(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tracker, api, _ := newFlagFixture(ctrl)
	pair := PairKey{UserID: "u1", JobListingID: "j1"}

	api.EXPECT().
		ListFlags(gomock.Any(), "j1").
		Return([]domain.Flag{{ID: "f1", UserID: "u1", JobListingID: "j1"}}, nil).
		Times(1)
	api.EXPECT().DeleteFlag(gomock.Any(), "f1").Return(nil).Times(1)
	api.EXPECT().CreateFlag(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	req.NoError(tracker.Reconcile(context.Background(), "j1", []string{"u1"}))
	req.NoError(tracker.Toggle(context.Background(), pair))
	req.Equal(domain.FlagUnflagged, tracker.Phase(pair))
}

func TestToggle_InFlightPairRejectsFurtherToggles(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tracker, _, _ := newFlagFixture(ctrl)
	pair := PairKey{UserID: "u1", JobListingID: "j1"}

	// A round-trip is mid-flight for this pair.
	tracker.pairs[pair] = &pairState{phase: domain.FlagChecking}

	req.ErrorIs(tracker.Toggle(context.Background(), pair), errors.ErrToggleInFlight)
}

func TestToggle_UnreconciledPairIsRejected(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tracker, _, _ := newFlagFixture(ctrl)

	err := tracker.Toggle(context.Background(), PairKey{UserID: "u9", JobListingID: "j1"})

	req.ErrorIs(err, errors.ErrUnknownPair)
}

func TestToggle_FailureKeepsDisplayedStateAndNotifies(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tracker, api, notifier := newFlagFixture(ctrl)
	pair := PairKey{UserID: "u1", JobListingID: "j1"}

	api.EXPECT().ListFlags(gomock.Any(), "j1").Return(nil, nil).Times(1)
	api.EXPECT().
		CreateFlag(gomock.Any(), "u1", "j1").
		Return(domain.Flag{}, fmt.Errorf("%w: company mismatch", errors.ErrUnauthorized)).
		Times(1)
	notifier.EXPECT().Notify(SlotFlag, gomock.Any()).Times(1)

	req.NoError(tracker.Reconcile(context.Background(), "j1", []string{"u1"}))
	err := tracker.Toggle(context.Background(), pair)

	// No optimistic flip: the pair still reads unflagged and can be
	// retried by the user.
	req.ErrorIs(err, errors.ErrUnauthorized)
	req.Equal(domain.FlagUnflagged, tracker.Phase(pair))

	api.EXPECT().
		CreateFlag(gomock.Any(), "u1", "j1").
		Return(domain.Flag{ID: "f1", UserID: "u1", JobListingID: "j1"}, nil).
		Times(1)
	req.NoError(tracker.Toggle(context.Background(), pair))
	req.Equal(domain.FlagFlagged, tracker.Phase(pair))
}
