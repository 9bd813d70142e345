package worker

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/pkg/kafka"
)

// MockZoneRepository is a mock implementation of repository.ZoneRepository
type MockZoneRepository struct {
	mock.Mock
}

func (m *MockZoneRepository) Create(ctx context.Context, zone *domain.Zone) error {
	args := m.Called(ctx, zone)
	return args.Error(0)
}

func (m *MockZoneRepository) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Zone), args.Error(1)
}

func (m *MockZoneRepository) GetByConcert(ctx context.Context, concertID string) ([]*domain.Zone, error) {
	args := m.Called(ctx, concertID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Zone), args.Error(1)
}

func (m *MockZoneRepository) Update(ctx context.Context, zone *domain.Zone) error {
	args := m.Called(ctx, zone)
	return args.Error(0)
}

func (m *MockZoneRepository) MaxZoneNumber(ctx context.Context, concertID string) (int, error) {
	args := m.Called(ctx, concertID)
	return args.Int(0), args.Error(1)
}

// MockConcertRepository is a mock implementation of repository.ConcertRepository
type MockConcertRepository struct {
	mock.Mock
}

func (m *MockConcertRepository) Create(ctx context.Context, concert *domain.Concert) error {
	args := m.Called(ctx, concert)
	return args.Error(0)
}

func (m *MockConcertRepository) GetByID(ctx context.Context, id string) (*domain.Concert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concert), args.Error(1)
}

func (m *MockConcertRepository) GetWithZones(ctx context.Context, id string) (*domain.Concert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Concert), args.Error(1)
}

func (m *MockConcertRepository) GetByVenue(ctx context.Context, venueID string) ([]*domain.Concert, error) {
	args := m.Called(ctx, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Concert), args.Error(1)
}

// MockEnqueuer captures tickets handed to the persister
type MockEnqueuer struct {
	tickets []*domain.Ticket
	err     error
}

func (m *MockEnqueuer) Enqueue(ticket *domain.Ticket) error {
	if m.err != nil {
		return m.err
	}
	m.tickets = append(m.tickets, ticket)
	return nil
}

// MockResultProducer captures produced result events
type MockResultProducer struct {
	results    []*dto.TicketResultEvent
	partitions []int32
}

func (m *MockResultProducer) ProduceResult(ctx context.Context, result *dto.TicketResultEvent, partition int32) error {
	m.results = append(m.results, result)
	m.partitions = append(m.partitions, partition)
	return nil
}

// MockSnapshotWriter captures zone snapshots
type MockSnapshotWriter struct {
	zones []*domain.Zone
}

func (m *MockSnapshotWriter) SetZone(ctx context.Context, zone *domain.Zone) error {
	snapshot := *zone
	m.zones = append(m.zones, &snapshot)
	return nil
}

func testZone() *domain.Zone {
	return &domain.Zone{
		ID:             "zon_con_1_2",
		ConcertID:      "con_1",
		Name:           "Zone B",
		Price:          1500,
		ZoneCapacity:   3,
		AvailableSeats: 3,
		ZoneNumber:     2,
	}
}

func testConcert() *domain.Concert {
	return &domain.Concert{
		ID:       "con_1",
		Name:     "Test Concert",
		NumZones: 2,
	}
}

func orderRecord(t *testing.T, order *dto.TicketOrderEvent, offset int64) *kafka.Record {
	t.Helper()
	value, err := json.Marshal(order)
	if err != nil {
		t.Fatal(err)
	}
	return &kafka.Record{
		Topic:     "ticket-orders-" + order.ConcertID,
		Partition: 1,
		Offset:    offset,
		Value:     value,
	}
}

func newTestWorker(zones *MockZoneRepository, concerts *MockConcertRepository, enq *MockEnqueuer, prod *MockResultProducer, snap *MockSnapshotWriter) *ReservationWorker {
	return NewReservationWorker(nil, zones, concerts, enq, prod, snap)
}

func TestReservationWorker_AdmitsWithinCapacity(t *testing.T) {
	zones := &MockZoneRepository{}
	concerts := &MockConcertRepository{}
	enq := &MockEnqueuer{}
	prod := &MockResultProducer{}
	snap := &MockSnapshotWriter{}

	zones.On("GetByID", mock.Anything, "zon_con_1_2").Return(testZone(), nil)
	concerts.On("GetByID", mock.Anything, "con_1").Return(testConcert(), nil)

	w := newTestWorker(zones, concerts, enq, prod, snap)
	order := dto.NewTicketOrderEvent("t-1", "zon_con_1_2", "con_1")
	w.processRecord(context.Background(), orderRecord(t, order, 0))

	assert.Len(t, enq.tickets, 1)
	assert.Equal(t, "t-1", enq.tickets[0].ID)

	assert.Len(t, prod.results, 1)
	result := prod.results[0]
	assert.Equal(t, dto.ResultStatusSuccess, result.Status)
	assert.NotNil(t, result.TicketData)
	assert.Equal(t, "Test Concert", result.TicketData.ConcertName)
	assert.Equal(t, float64(1500), result.TicketData.Price)

	// Result lands on the zone's partition (zone_number - 1).
	assert.Equal(t, int32(1), prod.partitions[0])

	// The running seat count is published for API reads.
	assert.Len(t, snap.zones, 1)
	assert.Equal(t, 2, snap.zones[0].AvailableSeats)
}

func TestReservationWorker_RejectsAtCapacityOffset(t *testing.T) {
	zones := &MockZoneRepository{}
	concerts := &MockConcertRepository{}
	enq := &MockEnqueuer{}
	prod := &MockResultProducer{}
	snap := &MockSnapshotWriter{}

	zones.On("GetByID", mock.Anything, "zon_con_1_2").Return(testZone(), nil)

	w := newTestWorker(zones, concerts, enq, prod, snap)
	order := dto.NewTicketOrderEvent("t-late", "zon_con_1_2", "con_1")

	// Capacity 3 admits offsets 0..2; offset 3 is the first rejection.
	w.processRecord(context.Background(), orderRecord(t, order, 3))

	assert.Empty(t, enq.tickets)
	assert.Len(t, prod.results, 1)
	assert.Equal(t, dto.ResultStatusFailed, prod.results[0].Status)
	assert.Contains(t, prod.results[0].Error, "No available seats")
}

func TestReservationWorker_ExactlyCapacitySucceed(t *testing.T) {
	zones := &MockZoneRepository{}
	concerts := &MockConcertRepository{}
	enq := &MockEnqueuer{}
	prod := &MockResultProducer{}
	snap := &MockSnapshotWriter{}

	zones.On("GetByID", mock.Anything, "zon_con_1_2").Return(testZone(), nil)
	concerts.On("GetByID", mock.Anything, "con_1").Return(testConcert(), nil)

	w := newTestWorker(zones, concerts, enq, prod, snap)
	for offset := int64(0); offset < 5; offset++ {
		order := dto.NewTicketOrderEvent("t-"+string(rune('0'+offset)), "zon_con_1_2", "con_1")
		w.processRecord(context.Background(), orderRecord(t, order, offset))
	}

	assert.Len(t, enq.tickets, 3, "exactly zone_capacity orders admitted")
	assert.Len(t, prod.results, 5, "every order gets a verdict")

	successes := 0
	for _, r := range prod.results {
		if r.Succeeded() {
			successes++
		}
	}
	assert.Equal(t, 3, successes)
}

func TestReservationWorker_ZoneNotFound(t *testing.T) {
	zones := &MockZoneRepository{}
	concerts := &MockConcertRepository{}
	enq := &MockEnqueuer{}
	prod := &MockResultProducer{}
	snap := &MockSnapshotWriter{}

	zones.On("GetByID", mock.Anything, "zon_missing").Return(nil, nil)

	w := newTestWorker(zones, concerts, enq, prod, snap)
	order := dto.NewTicketOrderEvent("t-1", "zon_missing", "con_1")
	w.processRecord(context.Background(), orderRecord(t, order, 0))

	assert.Empty(t, enq.tickets)
	assert.Len(t, prod.results, 1)
	assert.Equal(t, dto.ResultStatusFailed, prod.results[0].Status)
	assert.Contains(t, prod.results[0].Error, "zone not found")
}

func TestReservationWorker_ZoneConcertMismatch(t *testing.T) {
	zones := &MockZoneRepository{}
	concerts := &MockConcertRepository{}
	enq := &MockEnqueuer{}
	prod := &MockResultProducer{}
	snap := &MockSnapshotWriter{}

	zones.On("GetByID", mock.Anything, "zon_con_1_2").Return(testZone(), nil)

	w := newTestWorker(zones, concerts, enq, prod, snap)
	order := dto.NewTicketOrderEvent("t-1", "zon_con_1_2", "con_other")
	w.processRecord(context.Background(), orderRecord(t, order, 0))

	assert.Empty(t, enq.tickets)
	assert.Len(t, prod.results, 1)
	assert.Contains(t, prod.results[0].Error, "does not belong")
}

func TestReservationWorker_EnqueueFailureRejects(t *testing.T) {
	zones := &MockZoneRepository{}
	concerts := &MockConcertRepository{}
	enq := &MockEnqueuer{err: ErrPersisterFull}
	prod := &MockResultProducer{}
	snap := &MockSnapshotWriter{}

	zones.On("GetByID", mock.Anything, "zon_con_1_2").Return(testZone(), nil)
	concerts.On("GetByID", mock.Anything, "con_1").Return(testConcert(), nil)

	w := newTestWorker(zones, concerts, enq, prod, snap)
	order := dto.NewTicketOrderEvent("t-1", "zon_con_1_2", "con_1")
	w.processRecord(context.Background(), orderRecord(t, order, 0))

	assert.Len(t, prod.results, 1)
	assert.Equal(t, dto.ResultStatusFailed, prod.results[0].Status)
	assert.Empty(t, snap.zones, "no snapshot published for a rejected order")
}

func TestReservationWorker_MalformedRecordSkipped(t *testing.T) {
	zones := &MockZoneRepository{}
	concerts := &MockConcertRepository{}
	enq := &MockEnqueuer{}
	prod := &MockResultProducer{}
	snap := &MockSnapshotWriter{}

	w := newTestWorker(zones, concerts, enq, prod, snap)
	w.processRecord(context.Background(), &kafka.Record{
		Topic: "ticket-orders-con_1",
		Value: []byte("not json"),
	})

	assert.Empty(t, enq.tickets)
	assert.Empty(t, prod.results)
}

func TestReservationWorker_ZoneSnapshotReused(t *testing.T) {
	zones := &MockZoneRepository{}
	concerts := &MockConcertRepository{}
	enq := &MockEnqueuer{}
	prod := &MockResultProducer{}
	snap := &MockSnapshotWriter{}

	zones.On("GetByID", mock.Anything, "zon_con_1_2").Return(testZone(), nil).Once()
	concerts.On("GetByID", mock.Anything, "con_1").Return(testConcert(), nil)

	w := newTestWorker(zones, concerts, enq, prod, snap)
	for offset := int64(0); offset < 2; offset++ {
		order := dto.NewTicketOrderEvent("t-"+string(rune('0'+offset)), "zon_con_1_2", "con_1")
		w.processRecord(context.Background(), orderRecord(t, order, offset))
	}

	zones.AssertExpectations(t)
	assert.Len(t, enq.tickets, 2)
	assert.Equal(t, 1, snap.zones[len(snap.zones)-1].AvailableSeats, "running count decremented across records")
}
