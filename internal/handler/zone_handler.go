package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/internal/service"
	"github.com/patchanon/ticket-rush/pkg/response"
)

// ZoneHandler exposes zone management over HTTP
type ZoneHandler struct {
	zones service.ZoneService
}

// NewZoneHandler creates a new ZoneHandler
func NewZoneHandler(zones service.ZoneService) *ZoneHandler {
	return &ZoneHandler{zones: zones}
}

// RegisterRoutes registers zone routes on the router group
func (h *ZoneHandler) RegisterRoutes(r *gin.RouterGroup) {
	zones := r.Group("/zones")
	{
		zones.POST("/", h.Create)
		zones.GET("/:id", h.GetByID)
		zones.PUT("/:id", h.Update)
	}
}

// Create handles POST /zones/
func (h *ZoneHandler) Create(c *gin.Context) {
	var req dto.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "concert_id, name, price and zone_capacity are required")
		return
	}

	zone, err := h.zones.Create(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Created(c, zone)
}

// GetByID handles GET /zones/:id
func (h *ZoneHandler) GetByID(c *gin.Context) {
	zone, err := h.zones.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, zone)
}

// Update handles PUT /zones/:id
func (h *ZoneHandler) Update(c *gin.Context) {
	var req dto.UpdateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid zone update payload")
		return
	}

	zone, err := h.zones.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, zone)
}

func (h *ZoneHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrZoneNotFound), errors.Is(err, domain.ErrConcertNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrTooManyZones):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
