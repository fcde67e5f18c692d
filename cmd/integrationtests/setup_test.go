package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/closing"
	"auction-engine/internal/fanout"
	"auction-engine/internal/ledger"
	"auction-engine/internal/lifecycle"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/services/bidding/handler"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var startOfTest = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TestStack is the whole engine wired over an in-memory store
type TestStack struct {
	Router    *gin.Engine
	Repo      *repository.MemoryRepo
	Ledger    *ledger.Ledger
	Registry  *fanout.Registry
	Scheduler *closing.Scheduler
	Clock     *manualClock
}

// SetupTestStack initializes the router with in-memory repository for integration testing.
func SetupTestStack(t *testing.T) *TestStack {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &manualClock{now: startOfTest}
	repo := repository.NewMemoryRepo()
	wallets := ledger.NewLedger(repo)
	machine := lifecycle.NewMachine(repo, lifecycle.WithClock(clock.Now))
	registry := fanout.NewRegistry(fanout.DefaultMailboxSize)
	t.Cleanup(registry.Close)
	events := fanout.NewFanout(repo, registry, fanout.WithClock(clock.Now))

	service := bidding.NewBiddingService(repo, wallets, machine, events)
	closer := closing.NewCloser(repo, wallets, machine, events)

	router := server.SetupRouter(server.Services{
		Bidding:   service,
		Auctions:  service,
		Canceller: closer,
		Events:    events,
		Wallets:   wallets,
		Streams:   handler.NewStreamHandler(service, registry, handler.DefaultKeepAlive),
	})

	return &TestStack{
		Router:    router,
		Repo:      repo,
		Ledger:    wallets,
		Registry:  registry,
		Scheduler: closing.NewScheduler(repo, closer, closing.WithWorkers(2)),
		Clock:     clock,
	}
}

// ExecuteRequestAndParse executes an HTTP request on the given router and parses the response
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url string, body any) (map[string]any, *httptest.ResponseRecorder) {
	var reqBody []byte
	var err error

	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	case string:
		reqBody = []byte(v)
	default:
		reqBody, err = json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		err := json.Unmarshal(w.Body.Bytes(), &resp)
		if err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}

		if w.Code == http.StatusCreated {
			resp = resp["data"].(map[string]any)
		}
	}

	return resp, w
}

// OpenWallet funds a user through the API
func (s *TestStack) OpenWallet(t *testing.T, userID string, balance string) {
	t.Helper()
	_, w := ExecuteRequestAndParse(t, s.Router, http.MethodPost, "/wallets", map[string]any{
		"user_id":         userID,
		"initial_balance": balance,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

// CreateAuction opens an auction that runs for d from the current test time
func (s *TestStack) CreateAuction(t *testing.T, item string, startingPrice string, d time.Duration) string {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, s.Router, http.MethodPost, "/auctions", map[string]any{
		"item_name":      item,
		"owner_id":       "owner",
		"starting_price": startingPrice,
		"end_time":       s.Clock.Now().Add(d),
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return resp["auction_id"].(string)
}

// Bid places a bid through the API and returns the recorder
func (s *TestStack) Bid(t *testing.T, auctionID, userID, amount string) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()
	return ExecuteRequestAndParse(t, s.Router, http.MethodPost, "/bids", map[string]any{
		"auction_id": auctionID,
		"user_id":    userID,
		"amount":     amount,
	})
}

// Wallet reads a wallet through the API
func (s *TestStack) Wallet(t *testing.T, userID string) map[string]any {
	t.Helper()
	resp, w := ExecuteRequestAndParse(t, s.Router, http.MethodGet, "/wallets/"+userID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return resp["data"].(map[string]any)
}

// RequireWallet asserts a wallet's balances by value
func (s *TestStack) RequireWallet(t *testing.T, userID, available, locked string) {
	t.Helper()
	w := s.Wallet(t, userID)
	require.True(t, decimal.RequireFromString(w["available_balance"].(string)).Equal(decimal.RequireFromString(available)),
		"%s available: got %v want %s", userID, w["available_balance"], available)
	require.True(t, decimal.RequireFromString(w["locked_amount"].(string)).Equal(decimal.RequireFromString(locked)),
		"%s locked: got %v want %s", userID, w["locked_amount"], locked)
}

// Sweep runs one closing sweep at the current test time
func (s *TestStack) Sweep(t *testing.T) closing.SweepReport {
	t.Helper()
	report, err := s.Scheduler.Sweep(context.Background())
	require.NoError(t, err)
	return report
}
