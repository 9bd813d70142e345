package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/internal/service"
	"github.com/patchanon/ticket-rush/pkg/response"
)

// TicketHandler exposes the reservation pipeline over HTTP
type TicketHandler struct {
	tickets service.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(tickets service.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

// RegisterRoutes registers ticket routes on the router group
func (h *TicketHandler) RegisterRoutes(r *gin.RouterGroup) {
	tickets := r.Group("/tickets")
	{
		tickets.POST("/", h.Create)
		tickets.GET("/:id", h.GetByID)
		tickets.GET("/concert/:concertID", h.ListByConcert)
		tickets.GET("/zone/:zoneID", h.ListByZone)
	}
}

// Create handles POST /tickets/. The request blocks until the worker's
// verdict arrives or the order timeout fires.
func (h *TicketHandler) Create(c *gin.Context) {
	var req dto.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "zone_id and concert_id are required")
		return
	}

	detail, err := h.tickets.Create(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// 200, not 201: the reply is the confirmed reservation, and clients
	// key off 200 for success.
	response.Success(c, detail)
}

// GetByID handles GET /tickets/:id
func (h *TicketHandler) GetByID(c *gin.Context) {
	detail, err := h.tickets.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, detail)
}

// ListByConcert handles GET /tickets/concert/:concertID
func (h *TicketHandler) ListByConcert(c *gin.Context) {
	tickets, err := h.tickets.ListByConcert(c.Request.Context(), c.Param("concertID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, tickets)
}

// ListByZone handles GET /tickets/zone/:zoneID
func (h *TicketHandler) ListByZone(c *gin.Context) {
	tickets, err := h.tickets.ListByZone(c.Request.Context(), c.Param("zoneID"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, tickets)
}

func (h *TicketHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrZoneNotFound),
		errors.Is(err, domain.ErrConcertNotFound),
		errors.Is(err, domain.ErrTicketNotFound):
		response.NotFound(c, err.Error())

	case errors.Is(err, domain.ErrZoneConcertMismatch),
		errors.Is(err, domain.ErrNoAvailableSeats),
		errors.Is(err, domain.ErrReservationRejected):
		response.BadRequest(c, err.Error())

	case errors.Is(err, domain.ErrOrderTimeout):
		response.RequestTimeout(c, err.Error())

	default:
		response.InternalError(c, err)
	}
}
