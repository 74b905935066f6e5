package handler

import (
	"net/http"
	"time"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	categoryService service.CategoryService
}

func NewCategoryHandler(categoryService service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

func (h *CategoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/api/categories")
	{
		categories.GET("", middleware.RequirePermission("categories.read"), h.ListCategories)
		categories.GET("/:id", middleware.RequirePermission("categories.read"), h.GetCategory)
		categories.POST("", middleware.RequirePermission("categories.write"), h.CreateCategory)
		categories.PUT("/:id", middleware.RequirePermission("categories.write"), h.UpdateCategory)
		categories.DELETE("/:id", middleware.RequirePermission("categories.write"), h.DeleteCategory)
		categories.POST("/spawn-due", middleware.RequirePermission("projects.write"), h.SpawnDueProjects)
	}
}

// ListCategories returns the company's project categories
// @Summary      List categories
// @Tags         categories
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.CategoryResponse}
// @Router       /api/categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// GetCategory returns one category
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.categoryService.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

// CreateCategory creates a category, validating any recurrence rule first
// @Summary      Create category
// @Tags         categories
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.SaveCategoryRequest  true  "Category payload"
// @Success      201      {object}  response.Response{data=service.CategoryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	var req service.SaveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), companyID, actorIDFrom(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, category))
}

// UpdateCategory updates a category, re-validating recurrence parameters
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req service.SaveCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), c.Param("id"), actorIDFrom(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, category))
}

// DeleteCategory removes a category
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.categoryService.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Category deleted"}))
}

// SpawnDueProjects creates projects for every recurring category that is due
// @Summary      Spawn due recurring projects
// @Tags         categories
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.SpawnResult}
// @Router       /api/categories/spawn-due [post]
func (h *CategoryHandler) SpawnDueProjects(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	results, err := h.categoryService.SpawnDueProjects(c.Request.Context(), companyID, actorIDFrom(c), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, results))
}
