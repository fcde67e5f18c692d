package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"auction-engine/internal/biddingerrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestMapErrorToHTTP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
	}{
		{biddingerrors.ErrAuctionNotFound, http.StatusNotFound},
		{biddingerrors.ErrWalletNotFound, http.StatusNotFound},
		{biddingerrors.ErrNoBids, http.StatusNotFound},
		{biddingerrors.ErrWalletExists, http.StatusConflict},
		{biddingerrors.ErrInvalidBid, http.StatusBadRequest},
		{biddingerrors.ErrInvalidAuction, http.StatusBadRequest},
		{biddingerrors.ErrInvalidAmount, http.StatusBadRequest},
		{biddingerrors.ErrInsufficientFunds, http.StatusPaymentRequired},
		{biddingerrors.ErrAuctionNotActive, http.StatusConflict},
		{biddingerrors.ErrAuctionClosed, http.StatusGone},
		{biddingerrors.ErrBidNotHighEnough, http.StatusConflict},
		{biddingerrors.ErrDuplicateLeaderBid, http.StatusConflict},
		{biddingerrors.ErrInvalidTransition, http.StatusConflict},
		{biddingerrors.ErrConcurrentBid, http.StatusConflict},
		{biddingerrors.ErrLedgerContention, http.StatusServiceUnavailable},
		{fmt.Errorf("service: %w - wrapped", biddingerrors.ErrAuctionClosed), http.StatusGone},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		status, message := MapErrorToHTTP(tc.err)
		require.Equal(t, tc.status, status, tc.err.Error())
		require.NotEmpty(t, message)
	}
}

func TestHandleServiceError_Reason(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		reason any
	}{
		{"rejection carries reason", fmt.Errorf("service: %w", biddingerrors.ErrInsufficientFunds), "InsufficientFunds"},
		{"other error has none", biddingerrors.ErrAuctionNotFound, nil},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			HandleServiceError(c, "TestHandler", tc.err, nil)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Equal(t, tc.reason, resp["reason"])
			require.Contains(t, resp["error"], tc.err.Error())
		})
	}
}
