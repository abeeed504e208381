package handler

import (
	"errors"
	"net/http"

	"crm-backend/internal/authz"
	"crm-backend/internal/middleware"
	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/internal/service"
	"crm-backend/pkg/pagination"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	leadService service.LeadService
	auth        *middleware.Auth
}

func NewLeadHandler(leadService service.LeadService, auth *middleware.Auth) *LeadHandler {
	return &LeadHandler{leadService: leadService, auth: auth}
}

func (h *LeadHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := h.auth
	leads := router.Group("/api")
	{
		leads.GET("/leads", auth.RequirePermission(authz.ModuleLeads, authz.ActionRead), h.GetLeads)
		leads.POST("/leads", auth.RequirePermission(authz.ModuleLeads, authz.ActionWrite), h.CreateLead)
		leads.GET("/leads/:id", auth.RequirePermission(authz.ModuleLeads, authz.ActionRead), h.GetLead)
		leads.PUT("/leads/:id", auth.RequirePermission(authz.ModuleLeads, authz.ActionWrite), h.UpdateLead)
		leads.DELETE("/leads/:id", auth.RequirePermission(authz.ModuleLeads, authz.ActionDelete), h.DeleteLead)
		leads.PUT("/leads/:id/assign", auth.RequirePermission(authz.ModuleLeads, authz.ActionAssign), h.AssignLead)
		leads.GET("/leads/:id/transitions", auth.RequirePermission(authz.ModuleLeads, authz.ActionRead), h.GetTransitions)
		leads.PUT("/leads/:id/status", auth.RequirePermission(authz.ModuleLeads, authz.ActionWrite), h.TransitionLead)
		leads.PUT("/leads/:id/progress", auth.RequirePermission(authz.ModuleLeads, authz.ActionWrite), h.ProgressLead)
	}
}

// transitionErrStatus maps lifecycle errors onto HTTP statuses.
func transitionErrStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrAmbiguousTransition):
		return http.StatusConflict
	case errors.Is(err, repository.ErrStaleLead):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// GetLeads lists leads with filters and pagination
// @Summary      Get leads
// @Description  Retrieves a paginated list of leads filtered by status, assignee or source
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Param        status       query     string  false  "Filter by lifecycle status"
// @Param        assigned_to  query     string  false  "Filter by assignee user ID"
// @Param        source       query     string  false  "Filter by lead source"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/leads [get]
func (h *LeadHandler) GetLeads(c *gin.Context) {
	params := pagination.Parse(c)

	leads, total, err := h.leadService.ListLeads(c.Request.Context(), service.LeadListFilter{
		Status:     c.Query("status"),
		AssignedTo: c.Query("assigned_to"),
		Source:     c.Query("source"),
		Page:       params.Page,
		Limit:      params.Limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve leads: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"leads": leads,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// CreateLead registers a new lead
// @Summary      Create lead
// @Description  Creates a lead; status starts at unassigned, or assigned when an assignee is given
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateLeadRequest  true  "Create Lead Payload"
// @Success      201      {object}  response.Response{data=service.LeadResponse}
// @Failure      400      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/leads [post]
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req service.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString(middleware.CtxUserID)

	lead, err := h.leadService.CreateLead(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, lead))
}

// GetLead retrieves a lead by ID
// @Summary      Get lead
// @Description  Retrieves a lead with its status history and allowed next statuses
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  response.Response{data=service.LeadResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/leads/{id} [get]
func (h *LeadHandler) GetLead(c *gin.Context) {
	lead, err := h.leadService.GetLead(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

// UpdateLead updates a lead's details
// @Summary      Update lead
// @Description  Updates a lead's profile fields; status changes go through the transition endpoint
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Lead ID"
// @Param        payload  body      service.UpdateLeadRequest  true  "Update Lead Payload"
// @Success      200      {object}  response.Response{data=service.LeadResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/leads/{id} [put]
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	var req service.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString(middleware.CtxUserID)

	lead, err := h.leadService.UpdateLead(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

// DeleteLead removes a lead
// @Summary      Delete lead
// @Description  Soft deletes a lead by ID
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/leads/{id} [delete]
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	if err := h.leadService.DeleteLead(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Lead deleted successfully"))
}

// AssignLead assigns a lead to a user
// @Summary      Assign lead
// @Description  Assigns a lead to a user; an unassigned lead moves to assigned
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Lead ID"
// @Param        payload  body      service.AssignLeadRequest  true  "Assign Lead Payload"
// @Success      200      {object}  response.Response{data=service.LeadResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/leads/{id}/assign [put]
func (h *LeadHandler) AssignLead(c *gin.Context) {
	var req service.AssignLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString(middleware.CtxUserID)

	lead, err := h.leadService.AssignLead(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

// GetTransitions lists the statuses a lead may move to
// @Summary      Allowed transitions
// @Description  Returns the lead's current status and the statuses reachable from it
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  response.Response{data=object}
// @Failure      404  {object}  response.Response
// @Router       /api/leads/{id}/transitions [get]
func (h *LeadHandler) GetTransitions(c *gin.Context) {
	status, next, err := h.leadService.AllowedNext(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"status":       status,
		"allowed_next": next,
	}))
}

// TransitionLead moves a lead to a new lifecycle status
// @Summary      Transition lead
// @Description  Moves the lead along a declared lifecycle edge; invalid moves are rejected
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Lead ID"
// @Param        payload  body      service.TransitionLeadRequest  true  "Transition Payload"
// @Success      200      {object}  response.Response{data=service.LeadResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/leads/{id}/status [put]
func (h *LeadHandler) TransitionLead(c *gin.Context) {
	var req service.TransitionLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString(middleware.CtxUserID)

	lead, err := h.leadService.TransitionLead(c.Request.Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		status := transitionErrStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

// ProgressLead advances a lead to its single next status
// @Summary      Progress lead
// @Description  Advances the lead when exactly one next status exists; conflicts when a choice is needed
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  response.Response{data=service.LeadResponse}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/leads/{id}/progress [put]
func (h *LeadHandler) ProgressLead(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	lead, err := h.leadService.ProgressLead(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		status := transitionErrStatus(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}
