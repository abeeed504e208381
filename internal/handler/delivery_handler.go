package handler

import (
	"net/http"

	"crm-backend/internal/authz"
	"crm-backend/internal/middleware"
	"crm-backend/internal/service"
	"crm-backend/pkg/pagination"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DeliveryHandler struct {
	deliveryService service.DeliveryService
	auth            *middleware.Auth
}

func NewDeliveryHandler(deliveryService service.DeliveryService, auth *middleware.Auth) *DeliveryHandler {
	return &DeliveryHandler{deliveryService: deliveryService, auth: auth}
}

func (h *DeliveryHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := h.auth
	deliveries := router.Group("/api")
	{
		deliveries.GET("/deliveries", auth.RequirePermission(authz.ModuleDelivery, authz.ActionRead), h.GetDeliveries)
		deliveries.POST("/deliveries", auth.RequirePermission(authz.ModuleDelivery, authz.ActionWrite), h.CreateDelivery)
		deliveries.GET("/deliveries/:id", auth.RequirePermission(authz.ModuleDelivery, authz.ActionRead), h.GetDelivery)
		deliveries.PUT("/deliveries/:id", auth.RequirePermission(authz.ModuleDelivery, authz.ActionWrite), h.UpdateDelivery)
	}
}

// GetDeliveries lists deliveries with pagination
// @Summary      Get deliveries
// @Description  Retrieves a paginated list of deliveries, optionally filtered by status
// @Tags         delivery
// @Security     BearerAuth
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Param        status  query     string  false  "Filter by delivery status"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/deliveries [get]
func (h *DeliveryHandler) GetDeliveries(c *gin.Context) {
	params := pagination.Parse(c)

	deliveries, total, err := h.deliveryService.ListDeliveries(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve deliveries: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"deliveries": deliveries,
		"total":      total,
		"page":       params.Page,
		"limit":      params.Limit,
	}))
}

// CreateDelivery schedules a delivery for an approved order
// @Summary      Create delivery
// @Description  Creates a scheduled delivery record for an approved order
// @Tags         delivery
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDeliveryRequest  true  "Create Delivery Payload"
// @Success      201      {object}  response.Response{data=service.DeliveryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/deliveries [post]
func (h *DeliveryHandler) CreateDelivery(c *gin.Context) {
	var req service.CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString(middleware.CtxUserID)

	delivery, err := h.deliveryService.CreateDelivery(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, delivery))
}

// GetDelivery retrieves a delivery by ID
// @Summary      Get delivery
// @Description  Retrieves a delivery record by ID
// @Tags         delivery
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Delivery ID"
// @Success      200  {object}  response.Response{data=service.DeliveryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/deliveries/{id} [get]
func (h *DeliveryHandler) GetDelivery(c *gin.Context) {
	delivery, err := h.deliveryService.GetDelivery(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, delivery))
}

// UpdateDelivery updates a delivery record
// @Summary      Update delivery
// @Description  Updates a delivery's status or details; delivered stamps the handover time
// @Tags         delivery
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Delivery ID"
// @Param        payload  body      service.UpdateDeliveryRequest  true  "Update Delivery Payload"
// @Success      200      {object}  response.Response{data=service.DeliveryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/deliveries/{id} [put]
func (h *DeliveryHandler) UpdateDelivery(c *gin.Context) {
	var req service.UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString(middleware.CtxUserID)

	delivery, err := h.deliveryService.UpdateDelivery(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, delivery))
}
