package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"txledger/internal/domain/ledger"
	"txledger/internal/domain/money"
	"txledger/internal/pkg/apperr"
)

const idempotencyKeyHeader = "Idempotency-Key"

type transactionRequest struct {
	Type       string `json:"type"`
	Amount     string `json:"amount"`
	Reference  string `json:"reference"`
	ReceiverID string `json:"receiver_id"`
}

// MakeProcessTransactionHandler builds the unified
// POST /accounts/:id/transactions endpoint.
func MakeProcessTransactionHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondError(c, apperr.New(apperr.KindValidation, "invalid account id"))
			return
		}

		var body transactionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, apperr.New(apperr.KindValidation, "invalid request body"))
			return
		}

		txType, ok := parseTransactionType(body.Type)
		if !ok {
			respondError(c, apperr.New(apperr.KindValidation, "type must be one of DEPOSIT, WITHDRAWAL, TRANSFER"))
			return
		}

		amount, err := money.Parse(body.Amount)
		if err != nil {
			respondError(c, apperr.Wrap(apperr.KindInvalidAmount, "invalid amount", err))
			return
		}

		req := ledger.Request{
			AccountID: accountID,
			Type:      txType,
			Amount:    amount,
			Reference: body.Reference,
		}

		if body.ReceiverID != "" {
			receiverID, err := uuid.Parse(body.ReceiverID)
			if err != nil {
				respondError(c, apperr.New(apperr.KindValidation, "invalid receiver_id"))
				return
			}
			req.ReceiverID = receiverID
		}

		processAndRespond(c, svc, req)
	}
}

// MakeDepositHandler builds the thin-wrapper POST /accounts/:id/deposit
// endpoint over the unified processor.
func MakeDepositHandler(svc *ledger.Service) gin.HandlerFunc {
	return makeLegSideHandler(svc, ledger.Deposit)
}

// MakeWithdrawHandler builds the thin-wrapper POST
// /accounts/:id/withdraw endpoint over the unified processor.
func MakeWithdrawHandler(svc *ledger.Service) gin.HandlerFunc {
	return makeLegSideHandler(svc, ledger.Withdrawal)
}

func makeLegSideHandler(svc *ledger.Service, txType ledger.TransactionType) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondError(c, apperr.New(apperr.KindValidation, "invalid account id"))
			return
		}

		var body struct {
			Amount    string `json:"amount"`
			Reference string `json:"reference"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, apperr.New(apperr.KindValidation, "invalid request body"))
			return
		}

		amount, err := money.Parse(body.Amount)
		if err != nil {
			respondError(c, apperr.Wrap(apperr.KindInvalidAmount, "invalid amount", err))
			return
		}

		processAndRespond(c, svc, ledger.Request{
			AccountID: accountID,
			Type:      txType,
			Amount:    amount,
			Reference: body.Reference,
		})
	}
}

// MakeTransferHandler builds the thin-wrapper POST /accounts/transfer
// endpoint over the unified processor.
func MakeTransferHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			FromID    string `json:"from_id"`
			ToID      string `json:"to_id"`
			Amount    string `json:"amount"`
			Reference string `json:"reference"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, apperr.New(apperr.KindValidation, "invalid request body"))
			return
		}

		fromID, err := uuid.Parse(body.FromID)
		if err != nil {
			respondError(c, apperr.New(apperr.KindValidation, "invalid from_id"))
			return
		}
		toID, err := uuid.Parse(body.ToID)
		if err != nil {
			respondError(c, apperr.New(apperr.KindValidation, "invalid to_id"))
			return
		}

		amount, err := money.Parse(body.Amount)
		if err != nil {
			respondError(c, apperr.Wrap(apperr.KindInvalidAmount, "invalid amount", err))
			return
		}

		processAndRespond(c, svc, ledger.Request{
			AccountID:  fromID,
			ReceiverID: toID,
			Type:       ledger.Transfer,
			Amount:     amount,
			Reference:  body.Reference,
		})
	}
}

func processAndRespond(c *gin.Context, svc *ledger.Service, req ledger.Request) {
	idempotencyKey := c.GetHeader(idempotencyKeyHeader)

	tx, err := svc.ProcessTransaction(c.Request.Context(), req, idempotencyKey)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":              tx.ID,
		"type":            tx.Type,
		"status":          tx.Status,
		"reference":       tx.Reference,
		"idempotency_key": tx.IdempotencyKey,
		"created_at":      tx.CreatedAt,
	})
}

func parseTransactionType(s string) (ledger.TransactionType, bool) {
	switch ledger.TransactionType(s) {
	case ledger.Deposit, ledger.Withdrawal, ledger.Transfer:
		return ledger.TransactionType(s), true
	default:
		return "", false
	}
}

// MakeAccountHistoryHandler builds GET /accounts/:id/history.
func MakeAccountHistoryHandler(svc *ledger.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			respondError(c, apperr.New(apperr.KindValidation, "invalid account id"))
			return
		}

		limit := queryInt(c, "limit", 50)
		offset := queryInt(c, "offset", 0)

		entries, err := svc.GetAccountHistory(c.Request.Context(), accountID, limit, offset)
		if err != nil {
			respondError(c, err)
			return
		}

		views := make([]gin.H, 0, len(entries))
		for _, e := range entries {
			views = append(views, gin.H{
				"id":             e.ID,
				"transaction_id": e.TransactionID,
				"account_id":     e.AccountID,
				"amount":         e.Amount.String(),
				"direction":      e.Direction,
				"created_at":     e.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{"entries": views})
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
