package handler

import (
	"net/http"
	"time"

	"auction-engine/internal/fanout"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// DefaultKeepAlive is the idle time after which an SSE comment is written so
// proxies keep the connection open
const DefaultKeepAlive = 30 * time.Second

// StreamHandler serves live updates as server-sent events
type StreamHandler struct {
	auctions  AuctionServiceInterface
	registry  *fanout.Registry
	keepAlive time.Duration
}

func NewStreamHandler(auctions AuctionServiceInterface, registry *fanout.Registry, keepAlive time.Duration) *StreamHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &StreamHandler{auctions: auctions, registry: registry, keepAlive: keepAlive}
}

// AuctionStreamHandler handles GET /auctions/:auction_id/stream. The optional
// user_id query parameter also registers the connection for that user's
// targeted notices.
func (h *StreamHandler) AuctionStreamHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")
	auction, err := h.auctions.GetAuction(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "AuctionStreamHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	sub, ok := h.connect(c, "AuctionStreamHandler")
	if !ok {
		return
	}
	defer h.registry.Disconnect(sub.ID())

	if err := h.registry.Join(sub.ID(), auctionID); err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, err, "stream unavailable")
		return
	}
	if userID := c.Query("user_id"); userID != "" {
		if err := h.registry.RegisterUser(sub.ID(), userID); err != nil {
			utils.JSONError(c, http.StatusServiceUnavailable, err, "stream unavailable")
			return
		}
	}

	startStream(c)
	c.SSEvent("auction", auction)
	c.Writer.Flush()
	h.stream(c, sub)
}

// UserStreamHandler handles GET /users/:user_id/stream
func (h *StreamHandler) UserStreamHandler(c *gin.Context) {
	userID := c.Param("user_id")

	sub, ok := h.connect(c, "UserStreamHandler")
	if !ok {
		return
	}
	defer h.registry.Disconnect(sub.ID())

	startStream(c)
	c.Writer.Flush()
	if err := h.registry.RegisterUser(sub.ID(), userID); err != nil {
		return
	}
	h.stream(c, sub)
}

func (h *StreamHandler) connect(c *gin.Context, handlerName string) (*fanout.Subscription, bool) {
	sub, err := h.registry.Connect()
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, err, "stream unavailable")
		utils.Warn(handlerName+": connect failed", map[string]any{"error": err.Error()})
		return nil, false
	}
	return sub, true
}

func startStream(c *gin.Context) {
	w := c.Writer
	// same value gin's SSE renderer writes, so the header is stable
	w.Header().Set("Content-Type", "text/event-stream;charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
}

func (h *StreamHandler) stream(c *gin.Context, sub *fanout.Subscription) {
	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case n, ok := <-sub.Notifications():
			if !ok {
				return
			}
			c.SSEvent(string(n.Type), n)
			c.Writer.Flush()
			keepAlive.Reset(h.keepAlive)
		case <-keepAlive.C:
			_, _ = c.Writer.WriteString(": keep-alive\n\n")
			c.Writer.Flush()
		}
	}
}
