package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patchanon/ticket-rush/internal/bus"
	"github.com/patchanon/ticket-rush/internal/domain"
	"github.com/patchanon/ticket-rush/internal/dto"
	"github.com/patchanon/ticket-rush/internal/repository"
	"github.com/patchanon/ticket-rush/pkg/kafka"
	"github.com/patchanon/ticket-rush/pkg/logger"
)

// TicketEnqueuer hands admitted tickets to the batch persister
type TicketEnqueuer interface {
	Enqueue(ticket *domain.Ticket) error
}

// ZoneSnapshotWriter publishes the worker's running seat count so API
// reads observe availability ahead of the batched database write.
// Implemented by internal/cache.Cache.
type ZoneSnapshotWriter interface {
	SetZone(ctx context.Context, zone *domain.Zone) error
}

// ReservationWorker consumes order topics as a member of the processing
// group and decides every reservation for the partitions it owns. Each
// partition is processed by at most one member, and records within it
// arrive in offset order, so seat decisions need no locking: the
// record's offset on the zone's partition is the zone's arrival rank.
type ReservationWorker struct {
	consumer  *kafka.Consumer
	zones     repository.ZoneRepository
	concerts  repository.ConcertRepository
	persister TicketEnqueuer
	results   bus.ResultProducer
	snapshots ZoneSnapshotWriter
	log       *logger.Logger
	stopCh    chan struct{}
	doneCh    chan struct{}

	// seats holds the running available count per zone id, seeded from
	// the repository on first sight of the zone. Partition ownership
	// makes this map the authority while the worker holds the partition.
	seats map[string]*domain.Zone
}

// NewReservationWorker creates a new ReservationWorker
func NewReservationWorker(
	consumer *kafka.Consumer,
	zones repository.ZoneRepository,
	concerts repository.ConcertRepository,
	persister TicketEnqueuer,
	results bus.ResultProducer,
	snapshots ZoneSnapshotWriter,
) *ReservationWorker {
	return &ReservationWorker{
		consumer:  consumer,
		zones:     zones,
		concerts:  concerts,
		persister: persister,
		results:   results,
		snapshots: snapshots,
		log:       logger.Get(),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		seats:     make(map[string]*domain.Zone),
	}
}

// Start consumes order events until ctx is cancelled or Stop is called.
// Offsets are committed only after every record in the poll has been
// decided and its ticket handed to the persister, so a crash replays
// undecided orders instead of dropping them.
func (w *ReservationWorker) Start(ctx context.Context) {
	defer close(w.doneCh)
	w.log.Info("Reservation worker started")

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		default:
		}

		records, err := w.consumer.Poll(ctx)
		if err != nil {
			if err == kafka.ErrClientClosed || ctx.Err() != nil {
				return
			}
			w.log.Error(fmt.Sprintf("Reservation worker poll failed: %v", err))
			time.Sleep(time.Second)
			continue
		}

		for _, record := range records {
			w.processRecord(ctx, record)
		}

		if len(records) > 0 {
			if err := w.consumer.CommitRecords(ctx, records); err != nil {
				w.log.Error(fmt.Sprintf("Reservation worker commit failed: %v", err))
			}
		}
	}
}

// Stop signals the consume loop, closes the consumer, and waits
func (w *ReservationWorker) Stop() {
	close(w.stopCh)
	w.consumer.Close()
	<-w.doneCh
	w.log.Info("Reservation worker stopped")
}

// processRecord decides one order. Every decodable order gets exactly
// one result event; a malformed record is logged and skipped.
func (w *ReservationWorker) processRecord(ctx context.Context, record *kafka.Record) {
	var order dto.TicketOrderEvent
	if err := json.Unmarshal(record.Value, &order); err != nil {
		w.log.Error(fmt.Sprintf("Failed to decode order at %s[%d]@%d: %v",
			record.Topic, record.Partition, record.Offset, err))
		return
	}

	zone, err := w.lookupZone(ctx, order.ZoneID)
	if err != nil {
		w.log.Error(fmt.Sprintf("Zone lookup failed for order %s: %v", order.TicketID, err))
		w.produceResult(ctx, w.failedResult(&order, "failed to load zone"), record.Partition)
		return
	}
	if zone == nil {
		w.produceResult(ctx, w.failedResult(&order, "zone not found"), record.Partition)
		return
	}
	if zone.ConcertID != order.ConcertID {
		w.produceResult(ctx, w.failedResult(&order, "zone does not belong to the specified concert"), record.Partition)
		return
	}

	// The offset is the order's arrival rank within the zone: admitting
	// exactly the first zone_capacity offsets gives exactly that many
	// successes regardless of how requests raced at the API edge.
	if record.Offset >= int64(zone.ZoneCapacity) || zone.SoldOut() {
		w.produceResult(ctx, w.failedResult(&order, domain.ErrNoAvailableSeats.Error()), zone.Partition())
		return
	}

	concert, err := w.concerts.GetByID(ctx, order.ConcertID)
	if err != nil {
		w.log.Error(fmt.Sprintf("Concert lookup failed for order %s: %v", order.TicketID, err))
		w.produceResult(ctx, w.failedResult(&order, "failed to load concert"), zone.Partition())
		return
	}
	if concert == nil {
		w.produceResult(ctx, w.failedResult(&order, "concert not found"), zone.Partition())
		return
	}

	ticket := &domain.Ticket{
		ID:        order.TicketID,
		ZoneID:    order.ZoneID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := w.persister.Enqueue(ticket); err != nil {
		w.log.Error(fmt.Sprintf("Failed to enqueue ticket %s for persistence: %v", order.TicketID, err))
		w.produceResult(ctx, w.failedResult(&order, "reservation could not be stored"), zone.Partition())
		return
	}

	zone.AvailableSeats--
	if err := w.snapshots.SetZone(ctx, zone); err != nil {
		w.log.Warn(fmt.Sprintf("Failed to publish zone snapshot for %s: %v", zone.ID, err))
	}

	detail := &dto.TicketDetail{
		ID:                 ticket.ID,
		ZoneID:             zone.ID,
		ConcertID:          concert.ID,
		CreatedAt:          ticket.CreatedAt,
		UpdatedAt:          ticket.UpdatedAt,
		ConcertName:        concert.Name,
		ConcertDescription: concert.Description,
		Price:              zone.Price,
		ZoneName:           zone.Name,
		ZoneDescription:    zone.Description,
	}

	result := &dto.TicketResultEvent{
		TicketID:   order.TicketID,
		ZoneID:     order.ZoneID,
		ConcertID:  order.ConcertID,
		Status:     dto.ResultStatusSuccess,
		Message:    "ticket reserved",
		TicketData: detail,
		Timestamp:  time.Now().UTC(),
	}
	w.produceResult(ctx, result, zone.Partition())
}

// lookupZone serves the worker's own running snapshot first, falling
// back to the repository the first time a zone appears on an owned
// partition
func (w *ReservationWorker) lookupZone(ctx context.Context, zoneID string) (*domain.Zone, error) {
	if zone, ok := w.seats[zoneID]; ok {
		return zone, nil
	}

	zone, err := w.zones.GetByID(ctx, zoneID)
	if err != nil || zone == nil {
		return zone, err
	}

	w.seats[zoneID] = zone
	return zone, nil
}

func (w *ReservationWorker) failedResult(order *dto.TicketOrderEvent, message string) *dto.TicketResultEvent {
	return &dto.TicketResultEvent{
		TicketID:  order.TicketID,
		ZoneID:    order.ZoneID,
		ConcertID: order.ConcertID,
		Status:    dto.ResultStatusFailed,
		Error:     message,
		Timestamp: time.Now().UTC(),
	}
}

// produceResult publishes on the order's own partition so the event
// topic mirrors the order topic's layout. A produce failure is logged
// and processing continues: the replay cache cannot help here, but the
// order's seat decision stands and a blocked waiter times out cleanly.
func (w *ReservationWorker) produceResult(ctx context.Context, result *dto.TicketResultEvent, partition int32) {
	if err := w.results.ProduceResult(ctx, result, partition); err != nil {
		w.log.Error(fmt.Sprintf("Failed to produce result for ticket %s: %v", result.TicketID, err))
	}
}
