package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/internal/service"
	"github.com/patchanon/ticket-rush/pkg/response"
)

// VenueHandler exposes venue management over HTTP
type VenueHandler struct {
	venues   service.VenueService
	concerts service.ConcertService
}

// NewVenueHandler creates a new VenueHandler
func NewVenueHandler(venues service.VenueService, concerts service.ConcertService) *VenueHandler {
	return &VenueHandler{venues: venues, concerts: concerts}
}

// RegisterRoutes registers venue routes on the router group
func (h *VenueHandler) RegisterRoutes(r *gin.RouterGroup) {
	venues := r.Group("/venues")
	{
		venues.POST("/", h.Create)
		venues.GET("/", h.List)
		venues.GET("/:id", h.GetByID)
		venues.GET("/:id/concerts", h.ListConcerts)
	}
}

// Create handles POST /venues/
func (h *VenueHandler) Create(c *gin.Context) {
	var req dto.CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name, location and capacity are required")
		return
	}

	venue, err := h.venues.Create(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Created(c, venue)
}

// List handles GET /venues/
func (h *VenueHandler) List(c *gin.Context) {
	venues, err := h.venues.List(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Success(c, venues)
}

// GetByID handles GET /venues/:id
func (h *VenueHandler) GetByID(c *gin.Context) {
	venue, err := h.venues.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrVenueNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}

	response.Success(c, venue)
}

// ListConcerts handles GET /venues/:id/concerts
func (h *VenueHandler) ListConcerts(c *gin.Context) {
	concerts, err := h.concerts.ListByVenue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	response.Success(c, concerts)
}
