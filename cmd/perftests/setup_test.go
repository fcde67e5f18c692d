package perftests

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/closing"
	"auction-engine/internal/fanout"
	"auction-engine/internal/ledger"
	"auction-engine/internal/lifecycle"
	"auction-engine/internal/repository"
	"auction-engine/utils"

	"github.com/shopspring/decimal"
)

// engine is the admission path plus closing over an in-memory store
type engine struct {
	repo    *repository.MemoryRepo
	ledger  *ledger.Ledger
	service *bidding.BiddingService
	closer  *closing.Closer
	// skew moves the engine clock ahead of wall time
	skew atomic.Int64
}

func newEngine(b *testing.B) *engine {
	b.Helper()
	// per-bid info logs would dominate the measurements
	if err := utils.SetLevel("warn"); err != nil {
		b.Fatalf("set log level: %v", err)
	}
	b.Cleanup(func() { _ = utils.SetLevel("info") })

	e := &engine{repo: repository.NewMemoryRepo()}
	now := func() time.Time { return time.Now().Add(time.Duration(e.skew.Load())) }

	e.ledger = ledger.NewLedger(e.repo)
	machine := lifecycle.NewMachine(e.repo, lifecycle.WithClock(now))
	registry := fanout.NewRegistry(fanout.DefaultMailboxSize)
	b.Cleanup(registry.Close)
	events := fanout.NewFanout(e.repo, registry, fanout.WithClock(now))

	e.service = bidding.NewBiddingService(e.repo, e.ledger, machine, events)
	e.closer = closing.NewCloser(e.repo, e.ledger, machine, events)
	return e
}

// advance moves the engine clock forward
func (e *engine) advance(d time.Duration) {
	e.skew.Add(int64(d))
}

// fundUsers opens wallets user_0..user_{n-1} with a balance no benchmark exhausts
func (e *engine) fundUsers(b *testing.B, prefix string, n int) {
	b.Helper()
	for i := 0; i < n; i++ {
		if _, err := e.ledger.OpenWallet(context.Background(), fmt.Sprintf("%s_%d", prefix, i), decimal.NewFromInt(1_000_000_000)); err != nil {
			b.Fatalf("open wallet: %v", err)
		}
	}
}

// createAuctions opens n active auctions that outlive the benchmark
func (e *engine) createAuctions(b *testing.B, n int, startingPrice int64) []string {
	b.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		a, err := e.service.CreateAuction(context.Background(), bidding.NewAuction{
			ItemName:      fmt.Sprintf("item_%d", i),
			Description:   "Load test item",
			StartingPrice: decimal.NewFromInt(startingPrice),
			EndTime:       time.Now().Add(24 * time.Hour),
		})
		if err != nil {
			b.Fatalf("create auction: %v", err)
		}
		ids = append(ids, a.AuctionID)
	}
	return ids
}
