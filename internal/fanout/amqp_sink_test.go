package fanout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	model "auction-engine/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
	deadline bool
}

type fakeChannel struct {
	sent     []published
	err      error
	closeErr error
	closed   bool
}

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	_, hasDeadline := ctx.Deadline()
	c.sent = append(c.sent, published{exchange: exchange, key: key, msg: msg, deadline: hasDeadline})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return c.closeErr
}

type fakeConn struct {
	closed bool
	err    error
}

func (c *fakeConn) Close() error {
	c.closed = true
	return c.err
}

func TestAMQPSink_Publish(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	sink := newAMQPSink("auctions", &fakeConn{}, ch)
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	event := model.AuctionEvent{
		EventID:   "e1",
		AuctionID: "a1",
		Type:      model.EventBidPlaced,
		ActorID:   "alice",
		Amount:    decimal.NewFromInt(120),
		CreatedAt: at,
	}

	require.NoError(t, sink.Publish(context.Background(), event))
	require.Len(t, ch.sent, 1)

	got := ch.sent[0]
	require.Equal(t, "auctions", got.exchange)
	require.Equal(t, "auction.bid_placed", got.key)
	require.True(t, got.deadline)
	require.Equal(t, "application/json", got.msg.ContentType)
	require.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	require.Equal(t, "e1", got.msg.MessageId)
	require.Equal(t, at, got.msg.Timestamp)

	var decoded model.AuctionEvent
	require.NoError(t, json.Unmarshal(got.msg.Body, &decoded))
	require.Equal(t, "a1", decoded.AuctionID)
	require.Equal(t, model.EventBidPlaced, decoded.Type)
	require.True(t, decoded.Amount.Equal(decimal.NewFromInt(120)))
}

func TestAMQPSink_PublishError(t *testing.T) {
	t.Parallel()

	broken := errors.New("channel reset")
	sink := newAMQPSink("auctions", &fakeConn{}, &fakeChannel{err: broken})

	err := sink.Publish(context.Background(), model.AuctionEvent{EventID: "e1", Type: model.EventAuctionEnded})
	require.ErrorIs(t, err, broken)
}

func TestAMQPSink_Close(t *testing.T) {
	t.Parallel()

	conn, ch := &fakeConn{}, &fakeChannel{}
	sink := newAMQPSink("auctions", conn, ch)

	require.NoError(t, sink.Close())
	require.True(t, ch.closed)
	require.True(t, conn.closed)

	// closing twice is a no-op and publishing afterwards reports a closed sink
	require.NoError(t, sink.Close())
	err := sink.Publish(context.Background(), model.AuctionEvent{EventID: "e2", Type: model.EventBidPlaced})
	require.ErrorIs(t, err, amqp.ErrClosed)
	require.Empty(t, ch.sent)
}

func TestAMQPSink_CloseErrors(t *testing.T) {
	t.Parallel()

	chErr, connErr := errors.New("channel"), errors.New("conn")

	conn := &fakeConn{err: connErr}
	sink := newAMQPSink("auctions", conn, &fakeChannel{closeErr: chErr})
	require.ErrorIs(t, sink.Close(), chErr)
	require.True(t, conn.closed, "connection is closed even when the channel fails")

	sink = newAMQPSink("auctions", &fakeConn{err: connErr}, &fakeChannel{})
	require.ErrorIs(t, sink.Close(), connErr)
}
