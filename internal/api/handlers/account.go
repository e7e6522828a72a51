package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"txledger/internal/domain/ledger"
	"txledger/internal/pkg/apperr"
	"txledger/internal/pkg/logging"
	"txledger/internal/pkg/metrics"
)

type createAccountRequest struct {
	Name     string `json:"name"`
	Currency string `json:"currency"`
}

// MakeCreateAccountHandler builds POST /accounts.
func MakeCreateAccountHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, apperr.New(apperr.KindValidation, "invalid request body"))
			return
		}

		acc, err := svc.CreateAccount(c.Request.Context(), req.Name, req.Currency)
		if err != nil {
			respondError(c, err)
			return
		}

		metrics.AccountsCreatedTotal.Inc()
		logging.Info("account created", map[string]interface{}{
			"account_id": acc.ID.String(),
			"currency":   string(acc.Currency),
		})

		c.JSON(http.StatusCreated, accountView(acc))
	}
}

// MakeGetAccountHandler builds GET /accounts/:id.
func MakeGetAccountHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondError(c, apperr.New(apperr.KindValidation, "invalid account id"))
			return
		}

		acc, err := svc.GetAccount(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, accountView(acc))
	}
}

func accountView(acc *ledger.Account) gin.H {
	return gin.H{
		"id":         acc.ID,
		"name":       acc.Name,
		"currency":   acc.Currency,
		"balance":    acc.Balance.String(),
		"created_at": acc.CreatedAt,
		"updated_at": acc.UpdatedAt,
	}
}
