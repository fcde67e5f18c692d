package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newLedgerWithWallet(t *testing.T, userID string, available int64) (*Ledger, *repository.MemoryRepo) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	l := NewLedger(repo)
	_, err := l.OpenWallet(context.Background(), userID, dec(available))
	require.NoError(t, err)
	return l, repo
}

func requireBalance(t *testing.T, l *Ledger, userID string, available, locked int64) {
	t.Helper()
	w, err := l.Balance(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, w.Available.Equal(dec(available)), "available: want %d, got %s", available, w.Available)
	require.True(t, w.Locked.Equal(dec(locked)), "locked: want %d, got %s", locked, w.Locked)
}

func TestLedger_Operations(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		run           func(l *Ledger) error
		expectedError error
		wantAvailable int64
		wantLocked    int64
	}{
		{
			name:          "reserve_moves_funds_to_locked",
			run:           func(l *Ledger) error { _, err := l.Reserve(ctx, "x", dec(100)); return err },
			wantAvailable: 400,
			wantLocked:    100,
		},
		{
			name:          "reserve_whole_balance",
			run:           func(l *Ledger) error { _, err := l.Reserve(ctx, "x", dec(500)); return err },
			wantAvailable: 0,
			wantLocked:    500,
		},
		{
			name:          "reserve_insufficient_leaves_wallet_untouched",
			run:           func(l *Ledger) error { _, err := l.Reserve(ctx, "x", dec(501)); return err },
			expectedError: biddingerrors.ErrInsufficientFunds,
			wantAvailable: 500,
		},
		{
			name: "release_returns_funds",
			run: func(l *Ledger) error {
				if _, err := l.Reserve(ctx, "x", dec(100)); err != nil {
					return err
				}
				_, err := l.Release(ctx, "x", dec(100))
				return err
			},
			wantAvailable: 500,
		},
		{
			name:          "release_more_than_locked_is_invariant_violation",
			run:           func(l *Ledger) error { _, err := l.Release(ctx, "x", dec(1)); return err },
			expectedError: biddingerrors.ErrInvariantViolation,
			wantAvailable: 500,
		},
		{
			name: "settle_removes_locked_permanently",
			run: func(l *Ledger) error {
				if _, err := l.Reserve(ctx, "x", dec(150)); err != nil {
					return err
				}
				_, err := l.Settle(ctx, "x", dec(150))
				return err
			},
			wantAvailable: 350,
		},
		{
			name:          "settle_without_lock_is_invariant_violation",
			run:           func(l *Ledger) error { _, err := l.Settle(ctx, "x", dec(10)); return err },
			expectedError: biddingerrors.ErrInvariantViolation,
			wantAvailable: 500,
		},
		{
			name:          "zero_amount_rejected",
			run:           func(l *Ledger) error { _, err := l.Reserve(ctx, "x", decimal.Zero); return err },
			expectedError: biddingerrors.ErrInvalidAmount,
			wantAvailable: 500,
		},
		{
			name:          "negative_amount_rejected",
			run:           func(l *Ledger) error { _, err := l.Credit(ctx, "x", dec(-5)); return err },
			expectedError: biddingerrors.ErrInvalidAmount,
			wantAvailable: 500,
		},
		{
			name:          "credit_increases_available",
			run:           func(l *Ledger) error { _, err := l.Credit(ctx, "x", dec(25)); return err },
			wantAvailable: 525,
		},
		{
			name:          "unknown_wallet",
			run:           func(l *Ledger) error { _, err := l.Reserve(ctx, "ghost", dec(1)); return err },
			expectedError: biddingerrors.ErrWalletNotFound,
			wantAvailable: 500,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			l, _ := newLedgerWithWallet(t, "x", 500)
			err := tc.run(l)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
			}
			requireBalance(t, l, "x", tc.wantAvailable, tc.wantLocked)
		})
	}
}

func TestLedger_OpenWallet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l := NewLedger(repository.NewMemoryRepo())

	w, err := l.OpenWallet(ctx, "u1", dec(50))
	require.NoError(t, err)
	require.True(t, w.Available.Equal(dec(50)))

	_, err = l.OpenWallet(ctx, "u1", dec(50))
	require.ErrorIs(t, err, biddingerrors.ErrWalletExists)

	_, err = l.OpenWallet(ctx, "", dec(1))
	require.ErrorIs(t, err, biddingerrors.ErrInvalidUser)

	_, err = l.OpenWallet(ctx, "u2", dec(-1))
	require.ErrorIs(t, err, biddingerrors.ErrInvalidAmount)
}

// Concurrent reserves never overdraw and conserve total holdings
func TestLedger_ConcurrentReserveConservesFunds(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	l, _ := newLedgerWithWallet(t, "x", 1000)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted, unexpected := 0, 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Reserve(ctx, "x", dec(30))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case !errors.Is(err, biddingerrors.ErrInsufficientFunds):
				unexpected++
			}
		}()
	}
	wg.Wait()

	require.Zero(t, unexpected)
	require.Equal(t, 33, accepted)
	requireBalance(t, l, "x", 10, 990)
}

func TestLedger_RetriesOnVersionConflict(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallets := repository.NewMockWalletDB(ctrl)
	l := NewLedger(mockWallets)
	ctx := context.Background()

	first := model.Wallet{UserID: "x", Available: dec(100), Locked: decimal.Zero, Version: 3}
	second := model.Wallet{UserID: "x", Available: dec(80), Locked: decimal.Zero, Version: 4}

	gomock.InOrder(
		mockWallets.EXPECT().GetWallet(ctx, "x").Return(first, nil),
		mockWallets.EXPECT().CompareAndSwapWallet(ctx, int64(3), gomock.Any()).Return(false, nil),
		mockWallets.EXPECT().GetWallet(ctx, "x").Return(second, nil),
		mockWallets.EXPECT().CompareAndSwapWallet(ctx, int64(4), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ int64, w model.Wallet) (bool, error) {
				require.True(t, w.Available.Equal(dec(30)))
				require.True(t, w.Locked.Equal(dec(50)))
				return true, nil
			}),
	)

	w, err := l.Reserve(ctx, "x", dec(50))
	require.NoError(t, err)
	require.Equal(t, int64(5), w.Version)
}

func TestLedger_GivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockWallets := repository.NewMockWalletDB(ctrl)
	l := NewLedger(mockWallets)
	ctx := context.Background()

	mockWallets.EXPECT().GetWallet(ctx, "x").
		Return(model.Wallet{UserID: "x", Available: dec(100)}, nil).Times(defaultMaxAttempts)
	mockWallets.EXPECT().CompareAndSwapWallet(ctx, gomock.Any(), gomock.Any()).
		Return(false, nil).Times(defaultMaxAttempts)

	_, err := l.Credit(ctx, "x", dec(1))
	require.ErrorIs(t, err, biddingerrors.ErrLedgerContention)
}
