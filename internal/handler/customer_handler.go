package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customerService service.CustomerService
}

func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customers := router.Group("/api/customers")
	{
		customers.GET("", middleware.RequirePermission("crm.read"), h.ListCustomers)
		customers.GET("/:id", middleware.RequirePermission("crm.read"), h.GetCustomer)
		customers.POST("", middleware.RequirePermission("crm.write"), h.CreateCustomer)
		customers.PUT("/:id", middleware.RequirePermission("crm.write"), h.UpdateCustomer)
		customers.DELETE("/:id", middleware.RequirePermission("crm.delete"), h.DeleteCustomer)
	}
}

// ListCustomers returns paginated customers, optionally filtered by search
// @Summary      List customers
// @Tags         crm
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Name/tax code search"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.PagedData}
// @Router       /api/customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	p := pagination.Parse(c)

	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), companyID, c.Query("search"), p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, customers, total, p.Page, p.Limit))
}

// GetCustomer returns one customer with addresses
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// CreateCustomer creates a customer with its addresses
// @Summary      Create customer
// @Tags         crm
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.SaveCustomerRequest  true  "Customer payload"
// @Success      201      {object}  response.Response{data=service.CustomerResponse}
// @Router       /api/customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	var req service.SaveCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), companyID, actorIDFrom(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// UpdateCustomer replaces customer fields and addresses
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req service.SaveCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// DeleteCustomer soft-deletes a customer
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customerService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Customer deleted"}))
}
