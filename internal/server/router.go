package server

import (
	"net/http"
	"time"

	handler "auction-engine/services/bidding/handler"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

// Services bundles what the HTTP layer is built from
type Services struct {
	Bidding   handler.BiddingServiceInterface
	Auctions  handler.AuctionServiceInterface
	Canceller handler.AuctionCanceller
	Events    handler.EventReader
	Wallets   handler.WalletServiceInterface
	Streams   *handler.StreamHandler
	Limiter   *RateLimiter
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(svc Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	startedAt := time.Now()
	router.GET("/health", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"uptime": time.Since(startedAt).Round(time.Second).String()}, "ok")
	})

	api := router.Group("")
	if svc.Limiter != nil {
		api.Use(svc.Limiter.Middleware())
	}

	biddingHandler := handler.NewBiddingHandler(svc.Bidding)
	auctionHandler := handler.NewAuctionHandler(svc.Auctions, svc.Canceller, svc.Events)
	walletHandler := handler.NewWalletHandler(svc.Wallets)

	bids := api.Group("/bids")
	{
		bids.POST("", biddingHandler.RecordBidHandler)
	}

	auctions := api.Group("/auctions")
	{
		auctions.POST("", auctionHandler.CreateAuctionHandler)
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.GET("/:auction_id/bids", biddingHandler.GetBidsByAuctionHandler)
		auctions.GET("/:auction_id/winning", biddingHandler.GetWinningBidHandler)
		auctions.GET("/:auction_id/events", auctionHandler.GetAuctionEventsHandler)
		auctions.POST("/:auction_id/cancel", auctionHandler.CancelAuctionHandler)
	}

	users := api.Group("/users")
	{
		users.GET("/:user_id/bids", biddingHandler.GetBidsByUserHandler)
		users.GET("/:user_id/auctions", biddingHandler.GetAuctionsByUserHandler)
	}

	wallets := api.Group("/wallets")
	{
		wallets.POST("", walletHandler.OpenWalletHandler)
		wallets.GET("/:user_id", walletHandler.GetWalletHandler)
		wallets.POST("/:user_id/credit", walletHandler.CreditWalletHandler)
	}

	if svc.Streams != nil {
		auctions.GET("/:auction_id/stream", svc.Streams.AuctionStreamHandler)
		users.GET("/:user_id/stream", svc.Streams.UserStreamHandler)
	}

	return router
}
