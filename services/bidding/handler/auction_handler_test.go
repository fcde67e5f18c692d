package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	bidding "auction-engine/internal/biddingService"
	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newAuctionRouter(t *testing.T) (*gin.Engine, *MockAuctionServiceInterface, *MockAuctionCanceller, *MockEventReader) {
	t.Helper()
	ctrl := gomock.NewController(t)

	service := NewMockAuctionServiceInterface(ctrl)
	canceller := NewMockAuctionCanceller(ctrl)
	events := NewMockEventReader(ctrl)
	handler := NewAuctionHandler(service, canceller, events)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/auctions", handler.CreateAuctionHandler)
	router.GET("/auctions", handler.ListAuctionsHandler)
	router.GET("/auctions/:auction_id", handler.GetAuctionHandler)
	router.POST("/auctions/:auction_id/cancel", handler.CancelAuctionHandler)
	router.GET("/auctions/:auction_id/events", handler.GetAuctionEventsHandler)
	return router, service, canceller, events
}

// Test CreateAuctionHandler
func TestCreateAuctionHandler(t *testing.T) {
	router, service, _, _ := newAuctionRouter(t)

	end := time.Date(2030, 1, 2, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		requestBody    string
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "success",
			requestBody: `{"item_name":"lamp","owner_id":"olga","starting_price":"25","end_time":"2030-01-02T15:00:00Z"}`,
			mockSetup: func() {
				service.EXPECT().
					CreateAuction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req bidding.NewAuction) (model.Auction, error) {
						if req.ItemName != "lamp" || !req.StartingPrice.Equal(decimal.NewFromInt(25)) || !req.EndTime.Equal(end) || !req.StartTime.IsZero() {
							return model.Auction{}, errors.New("unexpected request")
						}
						return model.Auction{AuctionID: "a1", ItemName: "lamp", Status: model.AuctionActive, EndTime: end}, nil
					})
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "auction created successfully",
		},
		{
			name:           "missing_item_name",
			requestBody:    `{"end_time":"2030-01-02T15:00:00Z"}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:           "missing_end_time",
			requestBody:    `{"item_name":"chair"}`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
		{
			name:        "invalid_window",
			requestBody: `{"item_name":"desk","end_time":"2001-01-02T15:00:00Z"}`,
			mockSetup: func() {
				service.EXPECT().
					CreateAuction(gomock.Any(), gomock.Any()).
					Return(model.Auction{}, biddingerrors.ErrInvalidAuction)
			},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid auction details",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/auctions", bytes.NewReader([]byte(tc.requestBody)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			resp := decodeBody(t, w)
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}

func TestListAndGetAuctionHandlers(t *testing.T) {
	router, service, _, _ := newAuctionRouter(t)

	service.EXPECT().
		ListAuctions(gomock.Any(), model.AuctionActive).
		Return([]model.Auction{{AuctionID: "a1", Status: model.AuctionActive}}, nil)
	service.EXPECT().
		ListAuctions(gomock.Any(), model.AuctionStatus("")).
		Return(nil, nil)
	service.EXPECT().
		GetAuction(gomock.Any(), "a1").
		Return(model.Auction{AuctionID: "a1", ItemName: "lamp"}, nil)
	service.EXPECT().
		GetAuction(gomock.Any(), "missing").
		Return(model.Auction{}, biddingerrors.ErrAuctionNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auctions?status=active", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody(t, w)["data"], 1)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auctions", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, []any{}, decodeBody(t, w)["data"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auctions/a1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	require.Equal(t, "lamp", data["item_name"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auctions/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}

// Test CancelAuctionHandler
func TestCancelAuctionHandler(t *testing.T) {
	router, _, canceller, _ := newAuctionRouter(t)

	tests := []struct {
		name           string
		auctionID      string
		requestBody    string
		mockSetup      func()
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:        "success_with_actor",
			auctionID:   "a1",
			requestBody: `{"actor_id":"admin"}`,
			mockSetup: func() {
				canceller.EXPECT().
					CancelAuction(gomock.Any(), "a1", "admin").
					Return(model.Auction{AuctionID: "a1", Status: model.AuctionCancelled}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "auction cancelled successfully",
		},
		{
			name:      "success_without_body",
			auctionID: "a2",
			mockSetup: func() {
				canceller.EXPECT().
					CancelAuction(gomock.Any(), "a2", "").
					Return(model.Auction{AuctionID: "a2", Status: model.AuctionCancelled}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "auction cancelled successfully",
		},
		{
			name:        "already_ended",
			auctionID:   "a3",
			requestBody: `{}`,
			mockSetup: func() {
				canceller.EXPECT().
					CancelAuction(gomock.Any(), "a3", "").
					Return(model.Auction{}, biddingerrors.ErrInvalidTransition)
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "auction can no longer change status",
		},
		{
			name:           "malformed_body",
			auctionID:      "a4",
			requestBody:    `{bad`,
			mockSetup:      func() {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "invalid request payload",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			tc.mockSetup()

			req := httptest.NewRequest(http.MethodPost, "/auctions/"+tc.auctionID+"/cancel", bytes.NewReader([]byte(tc.requestBody)))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tc.expectedStatus, w.Code)
			resp := decodeBody(t, w)
			require.Contains(t, resp["message"], tc.expectedMsg)
		})
	}
}

func TestGetAuctionEventsHandler(t *testing.T) {
	router, service, _, events := newAuctionRouter(t)

	service.EXPECT().GetAuction(gomock.Any(), "a1").Return(model.Auction{AuctionID: "a1"}, nil)
	events.EXPECT().
		Events(gomock.Any(), "a1").
		Return([]model.AuctionEvent{
			{EventID: "e1", AuctionID: "a1", Type: model.EventAuctionCreated},
			{EventID: "e2", AuctionID: "a1", Type: model.EventBidPlaced},
		}, nil)
	service.EXPECT().GetAuction(gomock.Any(), "missing").Return(model.Auction{}, biddingerrors.ErrAuctionNotFound)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auctions/a1/events", nil))
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].([]any)
	require.Len(t, data, 2)
	require.Equal(t, "bid_placed", data[1].(map[string]any)["event_type"])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auctions/missing/events", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
}
