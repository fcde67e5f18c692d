package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"auction-engine/services/bidding/helpers"
	"auction-engine/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=wallet_handler.go -destination=mock_wallet_service.go -package=handler

type WalletServiceInterface interface {
	OpenWallet(ctx context.Context, userID string, initial decimal.Decimal) (model.Wallet, error)
	Balance(ctx context.Context, userID string) (model.Wallet, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal) (model.Wallet, error)
}

type WalletHandler struct {
	service WalletServiceInterface
}

func NewWalletHandler(service WalletServiceInterface) *WalletHandler {
	return &WalletHandler{service: service}
}

// OpenWalletHandler handles POST /wallets
func (h *WalletHandler) OpenWalletHandler(c *gin.Context) {
	var req helpers.OpenWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "OpenWalletHandler", err)
		return
	}

	wallet, err := h.service.OpenWallet(c.Request.Context(), req.UserID, req.InitialBalance)
	if errors.Is(err, biddingerrors.ErrWalletExists) {
		existing, balanceErr := h.service.Balance(c.Request.Context(), req.UserID)
		if balanceErr == nil {
			utils.JSONResponse(c, http.StatusOK, helpers.NewWalletResponse(existing), "wallet already exists")
			return
		}
		err = balanceErr
	}
	if err != nil {
		helpers.HandleServiceError(c, "OpenWalletHandler", err, map[string]any{"user_id": req.UserID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewWalletResponse(wallet), "wallet opened successfully")
	helpers.LogSuccess("OpenWalletHandler", "wallet opened successfully", map[string]any{
		"user_id":   wallet.UserID,
		"available": wallet.Available.String(),
	})
}

// GetWalletHandler handles GET /wallets/:user_id
func (h *WalletHandler) GetWalletHandler(c *gin.Context) {
	userID := c.Param("user_id")
	wallet, err := h.service.Balance(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "GetWalletHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewWalletResponse(wallet), "wallet retrieved successfully")
}

// CreditWalletHandler handles POST /wallets/:user_id/credit
func (h *WalletHandler) CreditWalletHandler(c *gin.Context) {
	userID := c.Param("user_id")
	var req helpers.CreditWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreditWalletHandler", err)
		return
	}
	if !req.Amount.IsPositive() {
		helpers.HandleBindError(c, "CreditWalletHandler", fmt.Errorf("amount must be positive, got %s", req.Amount))
		return
	}

	wallet, err := h.service.Credit(c.Request.Context(), userID, req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "CreditWalletHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewWalletResponse(wallet), "wallet credited successfully")
	helpers.LogSuccess("CreditWalletHandler", "wallet credited successfully", map[string]any{
		"user_id": userID,
		"amount":  req.Amount.String(),
	})
}
