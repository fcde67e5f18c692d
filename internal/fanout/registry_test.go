package fanout

import (
	"testing"
	"time"

	model "auction-engine/internal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func receive(t *testing.T, s *Subscription) Notification {
	t.Helper()
	select {
	case n, ok := <-s.Notifications():
		require.True(t, ok, "subscription closed")
		return n
	case <-time.After(time.Second):
		t.Fatal("did not receive notification in time")
	}
	return Notification{}
}

func requireClosed(t *testing.T, s *Subscription) {
	t.Helper()
	select {
	case _, ok := <-s.Notifications():
		require.False(t, ok, "channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("subscription not closed in time")
	}
}

func TestRegistry_BroadcastReachesRoomOnly(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := NewRegistry(0)
	defer r.Close()

	watcher, err := r.Connect()
	require.NoError(t, err)
	other, err := r.Connect()
	require.NoError(t, err)

	require.NoError(t, r.Join(watcher.ID(), "a1"))
	require.NoError(t, r.Join(other.ID(), "a2"))
	require.Equal(t, 1, r.RoomSize("a1"))

	n := Notification{Type: model.EventBidPlaced, AuctionID: "a1"}
	require.Equal(t, 1, r.Broadcast("a1", n))
	require.Equal(t, n, receive(t, watcher))

	select {
	case got := <-other.Notifications():
		t.Fatalf("unexpected notification %+v", got)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestRegistry_LeaveAndDisconnect(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := NewRegistry(0)
	defer r.Close()

	s, err := r.Connect()
	require.NoError(t, err)
	require.NoError(t, r.Join(s.ID(), "a1"))

	r.Leave(s.ID(), "a1")
	require.Zero(t, r.RoomSize("a1"))
	require.Zero(t, r.Broadcast("a1", Notification{AuctionID: "a1"}))

	require.NoError(t, r.Join(s.ID(), "a1"))
	r.Disconnect(s.ID())
	require.Zero(t, r.RoomSize("a1"))
	requireClosed(t, s)

	require.ErrorIs(t, r.Join(s.ID(), "a1"), ErrUnknownConnection)
	require.ErrorIs(t, r.RegisterUser(s.ID(), "alice"), ErrUnknownConnection)
	r.Disconnect(s.ID())
}

func TestRegistry_SendToUser(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := NewRegistry(0)
	defer r.Close()

	phone, err := r.Connect()
	require.NoError(t, err)
	laptop, err := r.Connect()
	require.NoError(t, err)
	require.NoError(t, r.RegisterUser(phone.ID(), "alice"))
	require.NoError(t, r.RegisterUser(laptop.ID(), "alice"))

	n := Notification{Type: model.EventAuctionWon, AuctionID: "a1", ActorID: "alice"}
	require.Equal(t, 2, r.SendToUser("alice", n))
	require.Equal(t, n, receive(t, phone))
	require.Equal(t, n, receive(t, laptop))
	require.Zero(t, r.SendToUser("bob", n))
}

func TestRegistry_HeldNoticesDeliveredOnRegister(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := NewRegistry(2)
	defer r.Close()

	for _, id := range []string{"a1", "a2", "a3"} {
		r.Hold("alice", Notification{Type: model.EventAuctionWon, AuctionID: id})
	}
	held := r.Held("alice")
	require.Len(t, held, 2)
	require.Equal(t, "a2", held[0].AuctionID, "oldest notice dropped")

	s, err := r.Connect()
	require.NoError(t, err)
	require.NoError(t, r.RegisterUser(s.ID(), "alice"))

	require.Equal(t, "a2", receive(t, s).AuctionID)
	require.Equal(t, "a3", receive(t, s).AuctionID)
	require.Empty(t, r.Held("alice"))
}

func TestRegistry_SlowReaderDoesNotBlockBroadcast(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := NewRegistry(0)
	defer r.Close()

	s, err := r.Connect()
	require.NoError(t, err)
	require.NoError(t, r.Join(s.ID(), "a1"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			r.Broadcast("a1", Notification{AuctionID: "a1"})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on an unread subscription")
	}
	receive(t, s)
}

func TestRegistry_Close(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := NewRegistry(0)
	s, err := r.Connect()
	require.NoError(t, err)
	require.NoError(t, r.Join(s.ID(), "a1"))

	r.Close()
	requireClosed(t, s)
	require.Zero(t, r.Broadcast("a1", Notification{}))

	_, err = r.Connect()
	require.ErrorIs(t, err, ErrRegistryClosed)
	r.Close()
}
