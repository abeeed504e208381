package handler

import (
	"errors"
	"net/http"

	"crm-backend/internal/authz"
	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"
	"crm-backend/internal/service"
	"crm-backend/pkg/pagination"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
	auth             *middleware.Auth
}

func NewInventoryHandler(inventoryService service.InventoryService, auth *middleware.Auth) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, auth: auth}
}

func (h *InventoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := h.auth
	inventory := router.Group("/api")
	{
		inventory.GET("/inventory", auth.RequirePermission(authz.ModuleInventory, authz.ActionRead), h.GetInventory)
		inventory.POST("/inventory", auth.RequirePermission(authz.ModuleInventory, authz.ActionWrite), h.CreateInventory)
		inventory.GET("/inventory/:id", auth.RequirePermission(authz.ModuleInventory, authz.ActionRead), h.GetInventoryItem)
		inventory.PUT("/inventory/:id", auth.RequirePermission(authz.ModuleInventory, authz.ActionWrite), h.UpdateInventory)
		inventory.DELETE("/inventory/:id", auth.RequirePermission(authz.ModuleInventory, authz.ActionDelete), h.DeleteInventory)
		inventory.POST("/inventory/:id/allocate", auth.RequirePermission(authz.ModuleInventory, authz.ActionAllocate), h.AllocateTickets)
		inventory.GET("/inventory/:id/allocations", auth.RequirePermission(authz.ModuleInventory, authz.ActionRead), h.GetAllocations)
	}
}

// GetInventory lists ticket inventory blocks
// @Summary      Get inventory
// @Description  Retrieves a paginated list of ticket inventory blocks with filters
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Number of items per page (default 20)"
// @Param        event_name  query     string  false  "Filter by event name (partial match)"
// @Param        event_type  query     string  false  "Filter by event type"
// @Param        category    query     string  false  "Filter by ticket category"
// @Success      200  {object}  response.Response{data=object}
// @Failure      500  {object}  response.Response
// @Router       /api/inventory [get]
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	params := pagination.Parse(c)

	items, total, err := h.inventoryService.ListInventory(c.Request.Context(), repository.InventoryFilter{
		EventName: c.Query("event_name"),
		EventType: c.Query("event_type"),
		Category:  c.Query("category"),
	}, params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve inventory: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"inventory": items,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// CreateInventory registers a new ticket inventory block
// @Summary      Create inventory
// @Description  Creates a ticket inventory block; available tickets start equal to total
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInventoryRequest  true  "Create Inventory Payload"
// @Success      201      {object}  response.Response{data=service.InventoryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/inventory [post]
func (h *InventoryHandler) CreateInventory(c *gin.Context) {
	var req service.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString(middleware.CtxUserID)

	inv, err := h.inventoryService.CreateInventory(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, inv))
}

// GetInventoryItem retrieves one inventory block
// @Summary      Get inventory block
// @Description  Retrieves a ticket inventory block by ID
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Inventory ID"
// @Success      200  {object}  response.Response{data=service.InventoryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) GetInventoryItem(c *gin.Context) {
	inv, err := h.inventoryService.GetInventory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, inv))
}

// UpdateInventory updates an inventory block
// @Summary      Update inventory
// @Description  Updates an inventory block's details; totals adjust availability by the same delta
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Inventory ID"
// @Param        payload  body      service.UpdateInventoryRequest  true  "Update Inventory Payload"
// @Success      200      {object}  response.Response{data=service.InventoryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/inventory/{id} [put]
func (h *InventoryHandler) UpdateInventory(c *gin.Context) {
	var req service.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString(middleware.CtxUserID)

	inv, err := h.inventoryService.UpdateInventory(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, inv))
}

// DeleteInventory removes an inventory block
// @Summary      Delete inventory
// @Description  Soft deletes an inventory block; blocks with allocated tickets are protected
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Inventory ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) DeleteInventory(c *gin.Context) {
	userID := c.GetString(middleware.CtxUserID)

	if err := h.inventoryService.DeleteInventory(c.Request.Context(), userID, c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Inventory deleted successfully"))
}

// AllocateTickets reserves tickets from a block
// @Summary      Allocate tickets
// @Description  Atomically reserves tickets from the block; conflicts when availability is short
// @Tags         inventory
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Inventory ID"
// @Param        payload  body      service.AllocateInventoryRequest  true  "Allocate Payload"
// @Success      201      {object}  response.Response{data=service.AllocationResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/inventory/{id}/allocate [post]
func (h *InventoryHandler) AllocateTickets(c *gin.Context) {
	var req service.AllocateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	userID := c.GetString(middleware.CtxUserID)

	alloc, err := h.inventoryService.AllocateTickets(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrInsufficientStock) {
			c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, alloc))
}

// GetAllocations lists a block's allocation history
// @Summary      Get allocations
// @Description  Retrieves the allocation trail of an inventory block
// @Tags         inventory
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Inventory ID"
// @Success      200  {object}  response.Response{data=[]service.AllocationResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/inventory/{id}/allocations [get]
func (h *InventoryHandler) GetAllocations(c *gin.Context) {
	allocs, err := h.inventoryService.ListAllocations(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, allocs))
}
