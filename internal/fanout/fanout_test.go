package fanout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingSink struct {
	mu     sync.Mutex
	events []model.AuctionEvent
	err    error
}

func (s *recordingSink) Publish(_ context.Context, event model.AuctionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func TestFanout_RecordAppendsThenBroadcasts(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	repo := repository.NewMemoryRepo()
	registry := NewRegistry(0)
	defer registry.Close()
	sink := &recordingSink{}
	stamp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewFanout(repo, registry, WithSink(sink), WithClock(func() time.Time { return stamp }))

	s, err := registry.Connect()
	require.NoError(t, err)
	require.NoError(t, registry.Join(s.ID(), "a1"))

	recorded, err := f.Record(ctx, model.AuctionEvent{
		AuctionID:   "a1",
		Type:        model.EventBidPlaced,
		ActorID:     "alice",
		Amount:      decimal.NewFromInt(120),
		Description: "alice bid 120",
	})
	require.NoError(t, err)
	require.NotEmpty(t, recorded.EventID)
	require.Equal(t, stamp, recorded.CreatedAt)

	events, err := f.Events(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, []model.AuctionEvent{recorded}, events)

	n := receive(t, s)
	require.Equal(t, NotificationFromEvent(recorded), n)
	require.Len(t, sink.events, 1)
}

func TestFanout_SinkFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	repo := repository.NewMemoryRepo()
	f := NewFanout(repo, NewRegistry(0), WithSink(&recordingSink{err: errors.New("broker down")}))

	_, err := f.Record(context.Background(), model.AuctionEvent{AuctionID: "a1", Type: model.EventAuctionEnded})
	require.NoError(t, err)

	events, err := repo.GetEventsByAuction(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestFanout_AppendFailureSkipsPush(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := repository.NewMockEventLog(ctrl)
	log.EXPECT().AppendEvent(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
	sink := &recordingSink{}
	f := NewFanout(log, NewRegistry(0), WithSink(sink))

	_, err := f.Record(context.Background(), model.AuctionEvent{AuctionID: "a1", Type: model.EventBidPlaced})
	require.Error(t, err)
	require.Empty(t, sink.events)
}

func TestFanout_NotifyUser(t *testing.T) {
	defer goleak.VerifyNone(t)

	registry := NewRegistry(0)
	defer registry.Close()
	f := NewFanout(repository.NewMemoryRepo(), registry)
	n := Notification{Type: model.EventAuctionWon, AuctionID: "a1", ActorID: "bob"}

	err := f.NotifyUser("bob", n)
	require.ErrorIs(t, err, biddingerrors.ErrNotificationDropped)
	require.Equal(t, []Notification{n}, registry.Held("bob"))

	s, err := registry.Connect()
	require.NoError(t, err)
	require.NoError(t, registry.RegisterUser(s.ID(), "bob"))
	require.Equal(t, n, receive(t, s))

	require.NoError(t, f.NotifyUser("bob", n))
	require.Equal(t, n, receive(t, s))
}

func TestRoutingKey(t *testing.T) {
	t.Parallel()
	require.Equal(t, "auction.winner_declared", RoutingKey(model.EventWinnerDeclared))
}
