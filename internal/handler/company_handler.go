package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/api/companies")
	{
		// Any authenticated user can create a company; they become its admin.
		companies.POST("", middleware.RequireAuth(), h.CreateCompany)
		companies.GET("", middleware.RequirePermission("companies.manage"), h.ListCompanies)
		companies.GET("/:id", middleware.RequireAuth(), h.GetCompany)
		companies.POST("/:id/setup", middleware.RequirePermission("companies.manage"), h.SetupCompany)
		companies.GET("/:id/memberships", middleware.RequirePermission("companies.manage"), h.ListMemberships)
		companies.POST("/:id/memberships", middleware.RequirePermission("companies.manage"), h.AssignMembership)
	}

	memberships := router.Group("/api/memberships")
	{
		memberships.DELETE("/:id", middleware.RequirePermission("companies.manage"), h.DeactivateMembership)
	}
}

// CreateCompany registers a new tenant
// @Summary      Create company
// @Tags         companies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.CreateCompanyRequest  true  "Company payload"
// @Success      201      {object}  response.Response{data=service.CompanyResponse}
// @Router       /api/companies [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req service.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.CreateCompany(c.Request.Context(), actorIDFrom(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// ListCompanies returns paginated companies
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	p := pagination.Parse(c)

	companies, total, err := h.companyService.ListCompanies(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, companies, total, p.Page, p.Limit))
}

// GetCompany returns one company
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	company, err := h.companyService.GetCompany(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// SetupCompany seeds system roles and the default chart of accounts
// @Summary      Seed company defaults
// @Tags         companies
// @Security     BearerAuth
// @Produce      json
// @Param        id  path  string  true  "Company ID"
// @Success      200  {object}  response.Response
// @Router       /api/companies/{id}/setup [post]
func (h *CompanyHandler) SetupCompany(c *gin.Context) {
	if err := h.companyService.SetupCompany(c.Request.Context(), c.Param("id"), actorIDFrom(c)); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Company defaults seeded"}))
}

// ListMemberships returns the company's memberships with role names
func (h *CompanyHandler) ListMemberships(c *gin.Context) {
	memberships, err := h.companyService.ListMemberships(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, memberships))
}

// AssignMembership grants a user a role inside the company
// @Summary      Assign membership role
// @Tags         companies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Company ID"
// @Param        request  body      service.AssignMembershipRequest   true  "Membership payload"
// @Success      200      {object}  response.Response{data=service.MembershipResponse}
// @Router       /api/companies/{id}/memberships [post]
func (h *CompanyHandler) AssignMembership(c *gin.Context) {
	var req service.AssignMembershipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	membership, err := h.companyService.AssignMembership(c.Request.Context(), c.Param("id"), actorIDFrom(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, membership))
}

// DeactivateMembership revokes a user's access to the company
func (h *CompanyHandler) DeactivateMembership(c *gin.Context) {
	if err := h.companyService.DeactivateMembership(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Membership deactivated"}))
}
