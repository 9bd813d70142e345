package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/patchanon/ticket-rush/internal/correlator"
	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
)

// MockTicketRepository is a map-backed mock of repository.TicketRepository
type MockTicketRepository struct {
	tickets map[string]*domain.Ticket
}

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{tickets: make(map[string]*domain.Ticket)}
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, nil
	}
	return ticket, nil
}

func (m *MockTicketRepository) GetByZone(ctx context.Context, zoneID string) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, t := range m.tickets {
		if t.ZoneID == zoneID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockTicketRepository) GetByConcert(ctx context.Context, concertID string) ([]*domain.Ticket, error) {
	return nil, nil
}

func (m *MockTicketRepository) PersistBatch(ctx context.Context, tickets []*domain.Ticket) error {
	for _, t := range tickets {
		m.tickets[t.ID] = t
	}
	return nil
}

// MockZoneRepo is a map-backed mock of repository.ZoneRepository
type MockZoneRepo struct {
	zones map[string]*domain.Zone
}

func NewMockZoneRepo() *MockZoneRepo {
	return &MockZoneRepo{zones: make(map[string]*domain.Zone)}
}

func (m *MockZoneRepo) Create(ctx context.Context, zone *domain.Zone) error {
	m.zones[zone.ID] = zone
	return nil
}

func (m *MockZoneRepo) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	zone, ok := m.zones[id]
	if !ok {
		return nil, nil
	}
	return zone, nil
}

func (m *MockZoneRepo) GetByConcert(ctx context.Context, concertID string) ([]*domain.Zone, error) {
	var out []*domain.Zone
	for _, z := range m.zones {
		if z.ConcertID == concertID {
			out = append(out, z)
		}
	}
	return out, nil
}

func (m *MockZoneRepo) Update(ctx context.Context, zone *domain.Zone) error {
	if _, ok := m.zones[zone.ID]; !ok {
		return domain.ErrZoneNotFound
	}
	m.zones[zone.ID] = zone
	return nil
}

func (m *MockZoneRepo) MaxZoneNumber(ctx context.Context, concertID string) (int, error) {
	max := 0
	for _, z := range m.zones {
		if z.ConcertID == concertID && z.ZoneNumber > max {
			max = z.ZoneNumber
		}
	}
	return max, nil
}

func (m *MockZoneRepo) AddZone(zone *domain.Zone) {
	m.zones[zone.ID] = zone
}

// MockOrderProducer captures produced orders, optionally failing, and can
// feed a correlator to emulate the worker's round trip
type MockOrderProducer struct {
	orders     []*dto.TicketOrderEvent
	partitions []int32
	err        error
	respond    func(order *dto.TicketOrderEvent)
}

func (m *MockOrderProducer) ProduceOrder(ctx context.Context, order *dto.TicketOrderEvent, partition int32) error {
	if m.err != nil {
		return m.err
	}
	m.orders = append(m.orders, order)
	m.partitions = append(m.partitions, partition)
	if m.respond != nil {
		go m.respond(order)
	}
	return nil
}

// MockReplayCache is a map-backed mock of ReplayCache
type MockReplayCache struct {
	details map[string]*dto.TicketDetail
}

func (m *MockReplayCache) GetTicketDetail(ctx context.Context, ticketID string) (*dto.TicketDetail, error) {
	if m.details == nil {
		return nil, nil
	}
	return m.details[ticketID], nil
}

func sellableZone() *domain.Zone {
	return &domain.Zone{
		ID:             "zon_con_1_1",
		ConcertID:      "con_1",
		Name:           "Zone A",
		Price:          2500,
		ZoneCapacity:   10,
		AvailableSeats: 10,
		ZoneNumber:     1,
	}
}

func TestTicketService_CreateSuccess(t *testing.T) {
	zones := NewMockZoneRepo()
	zones.AddZone(sellableZone())
	corr := correlator.New()

	producer := &MockOrderProducer{
		respond: func(order *dto.TicketOrderEvent) {
			corr.Deposit(&dto.TicketResultEvent{
				TicketID: order.TicketID,
				ZoneID:   order.ZoneID,
				Status:   dto.ResultStatusSuccess,
				TicketData: &dto.TicketDetail{
					ID:     order.TicketID,
					ZoneID: order.ZoneID,
					Price:  2500,
				},
				Timestamp: time.Now().UTC(),
			})
		},
	}

	svc := NewTicketService(NewMockTicketRepository(), zones, NewMockConcertRepo(), producer, corr, &MockReplayCache{}, time.Second)

	detail, err := svc.Create(context.Background(), &dto.CreateTicketRequest{
		ZoneID:    "zon_con_1_1",
		ConcertID: "con_1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail == nil || detail.ID == "" {
		t.Fatal("expected ticket detail with generated id")
	}

	if len(producer.orders) != 1 {
		t.Fatalf("expected 1 produced order, got %d", len(producer.orders))
	}
	if producer.partitions[0] != 0 {
		t.Errorf("zone 1 must map to partition 0, got %d", producer.partitions[0])
	}
	if producer.orders[0].Status != dto.OrderStatusPending {
		t.Errorf("order must be published pending, got %s", producer.orders[0].Status)
	}
}

func TestTicketService_CreateZoneNotFound(t *testing.T) {
	svc := NewTicketService(NewMockTicketRepository(), NewMockZoneRepo(), NewMockConcertRepo(), &MockOrderProducer{}, correlator.New(), &MockReplayCache{}, time.Second)

	_, err := svc.Create(context.Background(), &dto.CreateTicketRequest{
		ZoneID:    "zon_missing",
		ConcertID: "con_1",
	})
	if !errors.Is(err, domain.ErrZoneNotFound) {
		t.Errorf("expected ErrZoneNotFound, got %v", err)
	}
}

func TestTicketService_CreateConcertMismatch(t *testing.T) {
	zones := NewMockZoneRepo()
	zones.AddZone(sellableZone())
	svc := NewTicketService(NewMockTicketRepository(), zones, NewMockConcertRepo(), &MockOrderProducer{}, correlator.New(), &MockReplayCache{}, time.Second)

	_, err := svc.Create(context.Background(), &dto.CreateTicketRequest{
		ZoneID:    "zon_con_1_1",
		ConcertID: "con_other",
	})
	if !errors.Is(err, domain.ErrZoneConcertMismatch) {
		t.Errorf("expected ErrZoneConcertMismatch, got %v", err)
	}
}

func TestTicketService_CreateSoldOutFastPath(t *testing.T) {
	zones := NewMockZoneRepo()
	zone := sellableZone()
	zone.AvailableSeats = 0
	zones.AddZone(zone)

	producer := &MockOrderProducer{}
	svc := NewTicketService(NewMockTicketRepository(), zones, NewMockConcertRepo(), producer, correlator.New(), &MockReplayCache{}, time.Second)

	_, err := svc.Create(context.Background(), &dto.CreateTicketRequest{
		ZoneID:    "zon_con_1_1",
		ConcertID: "con_1",
	})
	if !errors.Is(err, domain.ErrNoAvailableSeats) {
		t.Errorf("expected ErrNoAvailableSeats, got %v", err)
	}
	if len(producer.orders) != 0 {
		t.Error("sold-out zone must not produce an order")
	}
}

func TestTicketService_CreateProduceFailure(t *testing.T) {
	zones := NewMockZoneRepo()
	zones.AddZone(sellableZone())
	producer := &MockOrderProducer{err: errors.New("broker down")}

	svc := NewTicketService(NewMockTicketRepository(), zones, NewMockConcertRepo(), producer, correlator.New(), &MockReplayCache{}, time.Second)

	_, err := svc.Create(context.Background(), &dto.CreateTicketRequest{
		ZoneID:    "zon_con_1_1",
		ConcertID: "con_1",
	})
	if !errors.Is(err, domain.ErrOrderNotSubmitted) {
		t.Errorf("expected ErrOrderNotSubmitted, got %v", err)
	}
}

func TestTicketService_CreateTimeout(t *testing.T) {
	zones := NewMockZoneRepo()
	zones.AddZone(sellableZone())

	// Producer accepts the order but no result ever arrives.
	svc := NewTicketService(NewMockTicketRepository(), zones, NewMockConcertRepo(), &MockOrderProducer{}, correlator.New(), &MockReplayCache{}, 30*time.Millisecond)

	_, err := svc.Create(context.Background(), &dto.CreateTicketRequest{
		ZoneID:    "zon_con_1_1",
		ConcertID: "con_1",
	})
	if !errors.Is(err, domain.ErrOrderTimeout) {
		t.Errorf("expected ErrOrderTimeout, got %v", err)
	}
}

func TestTicketService_CreateRejectedByWorker(t *testing.T) {
	zones := NewMockZoneRepo()
	zones.AddZone(sellableZone())
	corr := correlator.New()

	producer := &MockOrderProducer{
		respond: func(order *dto.TicketOrderEvent) {
			corr.Deposit(&dto.TicketResultEvent{
				TicketID:  order.TicketID,
				Status:    dto.ResultStatusFailed,
				Error:     domain.ErrNoAvailableSeats.Error(),
				Timestamp: time.Now().UTC(),
			})
		},
	}

	svc := NewTicketService(NewMockTicketRepository(), zones, NewMockConcertRepo(), producer, corr, &MockReplayCache{}, time.Second)

	_, err := svc.Create(context.Background(), &dto.CreateTicketRequest{
		ZoneID:    "zon_con_1_1",
		ConcertID: "con_1",
	})
	if !errors.Is(err, domain.ErrNoAvailableSeats) {
		t.Errorf("expected ErrNoAvailableSeats from worker verdict, got %v", err)
	}
}

func TestTicketService_GetByIDReplayFirst(t *testing.T) {
	replay := &MockReplayCache{details: map[string]*dto.TicketDetail{
		"t-cached": {ID: "t-cached", ZoneID: "zon_con_1_1", Price: 2500},
	}}
	svc := NewTicketService(NewMockTicketRepository(), NewMockZoneRepo(), NewMockConcertRepo(), &MockOrderProducer{}, correlator.New(), replay, time.Second)

	detail, err := svc.GetByID(context.Background(), "t-cached")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Price != 2500 {
		t.Errorf("expected replayed detail, got %+v", detail)
	}
}

func TestTicketService_GetByIDFallsBackToDatabase(t *testing.T) {
	tickets := NewMockTicketRepository()
	tickets.tickets["t-db"] = &domain.Ticket{ID: "t-db", ZoneID: "zon_con_1_1"}
	zones := NewMockZoneRepo()
	zones.AddZone(sellableZone())
	concerts := NewMockConcertRepo()
	concerts.AddConcert(&domain.Concert{ID: "con_1", Name: "Rock Night", Description: "Annual rock festival"})

	svc := NewTicketService(tickets, zones, concerts, &MockOrderProducer{}, correlator.New(), &MockReplayCache{}, time.Second)

	detail, err := svc.GetByID(context.Background(), "t-db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.ConcertID != "con_1" || detail.ZoneName != "Zone A" {
		t.Errorf("expected zone enrichment, got %+v", detail)
	}
	if detail.ConcertName != "Rock Night" || detail.ConcertDescription != "Annual rock festival" {
		t.Errorf("expected concert enrichment, got %+v", detail)
	}
}

func TestTicketService_GetByIDNotFound(t *testing.T) {
	svc := NewTicketService(NewMockTicketRepository(), NewMockZoneRepo(), NewMockConcertRepo(), &MockOrderProducer{}, correlator.New(), &MockReplayCache{}, time.Second)

	_, err := svc.GetByID(context.Background(), "t-missing")
	if !errors.Is(err, domain.ErrTicketNotFound) {
		t.Errorf("expected ErrTicketNotFound, got %v", err)
	}
}
