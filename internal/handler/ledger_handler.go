package handler

import (
	"errors"
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type LedgerHandler struct {
	ledgerService service.LedgerService
}

func NewLedgerHandler(ledgerService service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

func (h *LedgerHandler) RegisterRoutes(router *gin.RouterGroup) {
	accounts := router.Group("/api/accounts")
	{
		accounts.GET("", middleware.RequirePermission("ledger.read"), h.ListAccounts)
		accounts.GET("/:id", middleware.RequirePermission("ledger.read"), h.GetAccount)
		accounts.GET("/:id/report", middleware.RequirePermission("ledger.read"), h.AccountReport)
		accounts.POST("", middleware.RequirePermission("ledger.write"), h.CreateAccount)
		accounts.PUT("/:id", middleware.RequirePermission("ledger.write"), h.UpdateAccount)
		accounts.DELETE("/:id", middleware.RequirePermission("ledger.write"), h.DeleteAccount)
	}

	journal := router.Group("/api/journal-entries")
	{
		journal.GET("", middleware.RequirePermission("journal.read"), h.ListJournalEntries)
		journal.GET("/:id", middleware.RequirePermission("journal.read"), h.GetJournalEntry)
		journal.POST("", middleware.RequirePermission("journal.post"), h.PostJournalEntry)
	}
}

// ListAccounts returns the company's chart of accounts ordered by code
// @Summary      List accounts
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.AccountResponse}
// @Router       /api/accounts [get]
func (h *LedgerHandler) ListAccounts(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	accounts, err := h.ledgerService.ListAccounts(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, accounts))
}

// GetAccount returns one ledger account
func (h *LedgerHandler) GetAccount(c *gin.Context) {
	account, err := h.ledgerService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// AccountReport returns the running-balance statement for one account
// @Summary      Account ledger report
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Param        id    path      string  true   "Account ID"
// @Param        from  query     string  true   "Start date (YYYY-MM-DD)"
// @Param        to    query     string  true   "End date (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=service.LedgerReportResponse}
// @Failure      400   {object}  response.Response
// @Router       /api/accounts/{id}/report [get]
func (h *LedgerHandler) AccountReport(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid 'from' date, expected YYYY-MM-DD"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid 'to' date, expected YYYY-MM-DD"))
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "'to' must not be before 'from'"))
		return
	}

	report, err := h.ledgerService.AccountReport(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrPostingToGroup) {
			status = http.StatusConflict
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}

// CreateAccount adds an account to the chart
// @Summary      Create ledger account
// @Tags         ledger
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.SaveAccountRequest  true  "Account payload"
// @Success      201      {object}  response.Response{data=service.AccountResponse}
// @Router       /api/accounts [post]
func (h *LedgerHandler) CreateAccount(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	var req service.SaveAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), companyID, actorIDFrom(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, account))
}

// UpdateAccount updates account metadata
func (h *LedgerHandler) UpdateAccount(c *gin.Context) {
	var req service.SaveAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	account, err := h.ledgerService.UpdateAccount(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, account))
}

// DeleteAccount removes an account that has no children and no postings
// @Summary      Delete ledger account
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Account ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/accounts/{id} [delete]
func (h *LedgerHandler) DeleteAccount(c *gin.Context) {
	err := h.ledgerService.DeleteAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrAccountInUse) {
			status = http.StatusConflict
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Account deleted"}))
}

// ListJournalEntries returns paginated journal entries
func (h *LedgerHandler) ListJournalEntries(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	p := pagination.Parse(c)

	entries, total, err := h.ledgerService.ListJournalEntries(c.Request.Context(), companyID, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, entries, total, p.Page, p.Limit))
}

// GetJournalEntry returns one entry with its lines
func (h *LedgerHandler) GetJournalEntry(c *gin.Context) {
	entry, err := h.ledgerService.GetJournalEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// PostJournalEntry posts a balanced journal entry
// @Summary      Post journal entry
// @Tags         ledger
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.PostJournalRequest  true  "Entry payload"
// @Success      201      {object}  response.Response{data=service.JournalEntryResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/journal-entries [post]
func (h *LedgerHandler) PostJournalEntry(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	var req service.PostJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.ledgerService.PostJournalEntry(c.Request.Context(), companyID, actorIDFrom(c), req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, service.ErrUnbalancedEntry) || errors.Is(err, service.ErrPostingToGroup) {
			status = http.StatusConflict
		}
		c.JSON(status, response.Error(status, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}
