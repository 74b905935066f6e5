package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/api/projects")
	{
		projects.GET("", middleware.RequirePermission("projects.read"), h.ListProjects)
		projects.GET("/:id", middleware.RequirePermission("projects.read"), h.GetProject)
		projects.POST("", middleware.RequirePermission("projects.write"), h.CreateProject)
		projects.PUT("/:id", middleware.RequirePermission("projects.write"), h.UpdateProject)
		projects.DELETE("/:id", middleware.RequirePermission("projects.delete"), h.DeleteProject)
		projects.POST("/:id/milestones", middleware.RequirePermission("projects.write"), h.CreateMilestone)
	}

	milestones := router.Group("/api/milestones")
	{
		milestones.PUT("/:id", middleware.RequirePermission("projects.write"), h.UpdateMilestone)
		milestones.DELETE("/:id", middleware.RequirePermission("projects.write"), h.DeleteMilestone)
	}
}

// ListProjects returns paginated projects for the company
// @Summary      List projects
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.PagedData}
// @Router       /api/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	p := pagination.Parse(c)

	projects, total, err := h.projectService.ListProjects(c.Request.Context(), companyID, p.Page, p.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, projects, total, p.Page, p.Limit))
}

// GetProject returns one project with milestones preloaded
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// CreateProject creates a project
// @Summary      Create project
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      service.SaveProjectRequest  true  "Project payload"
// @Success      201      {object}  response.Response{data=service.ProjectResponse}
// @Router       /api/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	companyID, ok := companyIDFrom(c)
	if !ok {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Missing company context"))
		return
	}

	var req service.SaveProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), companyID, actorIDFrom(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, project))
}

// UpdateProject updates project fields and status
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req service.SaveProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

// DeleteProject soft-deletes a project
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.DeleteProject(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Project deleted"}))
}

// CreateMilestone adds a milestone to a project
// @Summary      Create milestone
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Project ID"
// @Param        request  body      service.SaveMilestoneRequest  true  "Milestone payload"
// @Success      201      {object}  response.Response{data=service.MilestoneResponse}
// @Router       /api/projects/{id}/milestones [post]
func (h *ProjectHandler) CreateMilestone(c *gin.Context) {
	var req service.SaveMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	milestone, err := h.projectService.CreateMilestone(c.Request.Context(), c.Param("id"), actorIDFrom(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, milestone))
}

// UpdateMilestone updates milestone fields; achieved requires a completion
// date that is not in the future
func (h *ProjectHandler) UpdateMilestone(c *gin.Context) {
	var req service.SaveMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	milestone, err := h.projectService.UpdateMilestone(c.Request.Context(), c.Param("id"), actorIDFrom(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, milestone))
}

// DeleteMilestone removes a milestone
func (h *ProjectHandler) DeleteMilestone(c *gin.Context) {
	if err := h.projectService.DeleteMilestone(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Milestone deleted"}))
}
