package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService  service.DashboardService
	suggestionService service.SuggestionService
}

func NewDashboardHandler(dashboardService service.DashboardService, suggestionService service.SuggestionService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService:  dashboardService,
		suggestionService: suggestionService,
	}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/dashboard", middleware.RequirePermission("dashboard.view"), h.GetDashboard)
	router.GET("/api/suggestions", middleware.RequirePermission("suggestions.read"), h.GetSuggestions)
}

// GetDashboard returns company-wide totals for a date range. Defaults to
// the current month when no range is given.
// @Summary      Company dashboard
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "Start date (YYYY-MM-DD)"
// @Param        to    query     string  false  "End date (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=model.DashboardResponse}
// @Router       /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	if q := c.Query("from"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid 'from' date, expected YYYY-MM-DD"))
			return
		}
		from = parsed
	}
	if q := c.Query("to"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid 'to' date, expected YYYY-MM-DD"))
			return
		}
		to = parsed
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "'to' must not be before 'from'"))
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), companyID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, dashboard))
}

// GetSuggestions returns rule-based findings for the company
// @Summary      Suggested actions
// @Tags         dashboard
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.Suggestion}
// @Router       /api/suggestions [get]
func (h *DashboardHandler) GetSuggestions(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	suggestions, err := h.suggestionService.Suggest(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, suggestions))
}
