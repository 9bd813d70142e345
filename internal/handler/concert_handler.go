package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/internal/service"
	"github.com/patchanon/ticket-rush/pkg/response"
)

// ConcertHandler exposes concert management over HTTP
type ConcertHandler struct {
	concerts service.ConcertService
	zones    service.ZoneService
}

// NewConcertHandler creates a new ConcertHandler
func NewConcertHandler(concerts service.ConcertService, zones service.ZoneService) *ConcertHandler {
	return &ConcertHandler{concerts: concerts, zones: zones}
}

// RegisterRoutes registers concert routes on the router group
func (h *ConcertHandler) RegisterRoutes(r *gin.RouterGroup) {
	concerts := r.Group("/concerts")
	{
		concerts.POST("/", h.Create)
		concerts.GET("/:id", h.GetByID)
		concerts.GET("/:id/zones", h.ListZones)
	}
}

// Create handles POST /concerts/. Creating a concert provisions its
// order and event topics with num_zones partitions.
func (h *ConcertHandler) Create(c *gin.Context) {
	var req dto.CreateConcertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "venue_id, name, start_time, end_time and num_zones are required")
		return
	}

	concert, err := h.concerts.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, domain.ErrVenueNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Created(c, concert)
}

// GetByID handles GET /concerts/:id, returning the concert with zones
func (h *ConcertHandler) GetByID(c *gin.Context) {
	concert, err := h.concerts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrConcertNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, concert)
}

// ListZones handles GET /concerts/:id/zones
func (h *ConcertHandler) ListZones(c *gin.Context) {
	zones, err := h.zones.ListByConcert(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Success(c, zones)
}
