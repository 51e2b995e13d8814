package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nathanyu/account-ledger/internal/domain"
	"github.com/nathanyu/account-ledger/internal/notification"
	"github.com/nathanyu/account-ledger/internal/service"
	"github.com/shopspring/decimal"
)

// Handler contains all HTTP handlers
type Handler struct {
	accounts  *service.AccountService
	transfers *service.TransferService
	inbox     *notification.Inbox
}

// NewHandler creates a new handler. inbox may be nil, in which case the notifications
// endpoint answers 404.
func NewHandler(accounts *service.AccountService, transfers *service.TransferService, inbox *notification.Inbox) *Handler {
	return &Handler{
		accounts:  accounts,
		transfers: transfers,
		inbox:     inbox,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// StatusFor maps a ledger error to an HTTP status code.
func StatusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindAccountNotFound:
		return http.StatusNotFound
	case domain.KindInsufficientFunds, domain.KindInvalidAmount, domain.KindDuplicateAccount, domain.KindInvalidAccount:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "an error occurred: " + msg
	}
	c.JSON(status, ErrorResponse{Error: msg, Status: status})
}

func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Status: http.StatusBadRequest})
}

// CreateAccountRequest is the request body for account creation
type CreateAccountRequest struct {
	AccountID string          `json:"account_id" binding:"required"`
	Balance   decimal.Decimal `json:"balance"`
}

// CreateAccount handles POST /v1/accounts
func (h *Handler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	acc, err := h.accounts.Create(c.Request.Context(), req.AccountID, req.Balance)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, acc)
}

// GetAccount handles GET /v1/accounts/:account_id
func (h *Handler) GetAccount(c *gin.Context) {
	acc, err := h.accounts.Get(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, acc)
}

// TransferRequest is the request body for transfer endpoint
type TransferRequest struct {
	FromAccountID string          `json:"account_from_id" binding:"required"`
	ToAccountID   string          `json:"account_to_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

// TransferResponse is the response body for transfer endpoint
type TransferResponse struct {
	TransferID    string          `json:"transfer_id"`
	FromAccountID string          `json:"account_from_id"`
	ToAccountID   string          `json:"account_to_id"`
	Amount        decimal.Decimal `json:"amount"`
	Message       string          `json:"message"`
}

// Transfer handles POST /v1/transfers
func (h *Handler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := h.transfers.Transfer(c.Request.Context(), req.FromAccountID, req.ToAccountID, req.Amount); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransferResponse{
		TransferID:    uuid.Must(uuid.NewV7()).String(),
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Message:       "transfer completed",
	})
}

// NotificationsResponse lists the recent notifications of an account.
type NotificationsResponse struct {
	AccountID     string                `json:"account_id"`
	Notifications []domain.Notification `json:"notifications"`
}

// GetNotifications handles GET /v1/accounts/:account_id/notifications
func (h *Handler) GetNotifications(c *gin.Context) {
	if h.inbox == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "notification inbox is disabled", Status: http.StatusNotFound})
		return
	}

	acc, err := h.accounts.Get(c.Request.Context(), c.Param("account_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NotificationsResponse{
		AccountID:     acc.ID,
		Notifications: h.inbox.For(acc.ID),
	})
}

// HealthResponse is the response for health check endpoint
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")
	{
		v1.POST("/accounts", h.CreateAccount)
		v1.GET("/accounts/:account_id", h.GetAccount)
		v1.GET("/accounts/:account_id/notifications", h.GetNotifications)
		v1.POST("/transfers", h.Transfer)
	}
}
