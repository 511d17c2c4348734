package registry

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/workshop-backend/pkg/config"
	"github.com/angelmondragon/workshop-backend/pkg/db/models"
	"github.com/angelmondragon/workshop-backend/pkg/enums"
	"github.com/angelmondragon/workshop-backend/pkg/outbox"
	"github.com/angelmondragon/workshop-backend/pkg/outbox/payloads"
	"github.com/google/uuid"
)

// EventDescriptor links an event type to its aggregate/topic/payload schema.
type EventDescriptor struct {
	EventType      enums.OutboxEventType
	AggregateType  enums.OutboxAggregateType
	Topic          string
	PayloadFactory func() interface{}
}

// ResolvedEvent is the result of decoding an outbox row.
type ResolvedEvent struct {
	Descriptor EventDescriptor
	Envelope   outbox.PayloadEnvelope
	Payload    interface{}
}

// EventRegistry maps each supported event type to its descriptor.
type EventRegistry struct {
	entries map[enums.OutboxEventType]EventDescriptor
}

// NonRetryableError signals the dispatcher should stop retrying a row.
type NonRetryableError struct {
	Err error
}

// Error implements error.
func (e NonRetryableError) Error() string {
	if e.Err == nil {
		return "non-retryable error"
	}
	return e.Err.Error()
}

// Unwrap exposes the wrapped error.
func (e NonRetryableError) Unwrap() error {
	return e.Err
}

// NewEventRegistry builds the registry. Every workshop event goes to the
// domain topic; consumers filter on the event_type attribute.
func NewEventRegistry(cfg config.PubSubConfig) (*EventRegistry, error) {
	topic := strings.TrimSpace(cfg.DomainTopic)
	if topic == "" {
		return nil, fmt.Errorf("domain topic is required")
	}

	reg := &EventRegistry{entries: make(map[enums.OutboxEventType]EventDescriptor)}
	for _, desc := range []EventDescriptor{
		{
			EventType:      enums.EventAppointmentCreated,
			AggregateType:  enums.AggregateAppointment,
			PayloadFactory: func() interface{} { return &payloads.AppointmentCreatedEvent{} },
		},
		{
			EventType:      enums.EventAppointmentRescheduled,
			AggregateType:  enums.AggregateAppointment,
			PayloadFactory: func() interface{} { return &payloads.AppointmentRescheduledEvent{} },
		},
		{
			EventType:      enums.EventAppointmentStatusChanged,
			AggregateType:  enums.AggregateAppointment,
			PayloadFactory: func() interface{} { return &payloads.AppointmentStatusChangedEvent{} },
		},
		{
			EventType:      enums.EventAppointmentReminderDue,
			AggregateType:  enums.AggregateAppointment,
			PayloadFactory: func() interface{} { return &payloads.AppointmentReminderDueEvent{} },
		},
		{
			EventType:      enums.EventElevatorReserved,
			AggregateType:  enums.AggregateElevator,
			PayloadFactory: func() interface{} { return &payloads.ElevatorReservedEvent{} },
		},
		{
			EventType:      enums.EventElevatorUsageStarted,
			AggregateType:  enums.AggregateElevator,
			PayloadFactory: func() interface{} { return &payloads.ElevatorUsageStartedEvent{} },
		},
		{
			EventType:      enums.EventElevatorUsageEnded,
			AggregateType:  enums.AggregateElevator,
			PayloadFactory: func() interface{} { return &payloads.ElevatorUsageEndedEvent{} },
		},
		{
			EventType:      enums.EventReservationExpired,
			AggregateType:  enums.AggregateElevator,
			PayloadFactory: func() interface{} { return &payloads.ReservationExpiredEvent{} },
		},
		{
			EventType:      enums.EventQuoteStatusChanged,
			AggregateType:  enums.AggregateQuote,
			PayloadFactory: func() interface{} { return &payloads.QuoteStatusChangedEvent{} },
		},
		{
			EventType:      enums.EventQuoteConverted,
			AggregateType:  enums.AggregateQuote,
			PayloadFactory: func() interface{} { return &payloads.QuoteConvertedEvent{} },
		},
		{
			EventType:      enums.EventServiceOrderStatusChange,
			AggregateType:  enums.AggregateServiceOrder,
			PayloadFactory: func() interface{} { return &payloads.ServiceOrderStatusChangedEvent{} },
		},
		{
			EventType:      enums.EventPartLowStock,
			AggregateType:  enums.AggregatePart,
			PayloadFactory: func() interface{} { return &payloads.PartLowStockEvent{} },
		},
	} {
		desc.Topic = topic
		reg.register(desc)
	}

	return reg, nil
}

// Descriptor returns the registered descriptor for an event type.
func (r *EventRegistry) Descriptor(eventType enums.OutboxEventType) (EventDescriptor, bool) {
	desc, ok := r.entries[eventType]
	return desc, ok
}

func (r *EventRegistry) register(desc EventDescriptor) {
	if desc.PayloadFactory == nil {
		return
	}
	r.entries[desc.EventType] = desc
}

// Resolve validates the row and decodes its typed payload.
func (r *EventRegistry) Resolve(event models.OutboxEvent) (*ResolvedEvent, error) {
	desc, ok := r.entries[event.EventType]
	if !ok {
		return nil, NewNonRetryableError(fmt.Errorf("unsupported event type %s", event.EventType))
	}
	if desc.AggregateType != event.AggregateType {
		return nil, NewNonRetryableError(fmt.Errorf("aggregate mismatch: expected %s got %s", desc.AggregateType, event.AggregateType))
	}
	if event.AggregateID == uuid.Nil {
		return nil, NewNonRetryableError(fmt.Errorf("missing aggregate_id"))
	}

	envelope, err := outbox.DecodeEnvelope(event.Payload)
	if err != nil {
		return nil, NewNonRetryableError(err)
	}
	if !envelope.HasData() {
		return nil, NewNonRetryableError(fmt.Errorf("payload missing for %s", event.EventType))
	}

	payload := desc.PayloadFactory()
	if payload == nil {
		return nil, NewNonRetryableError(fmt.Errorf("payload factory not configured for %s", event.EventType))
	}
	if err := envelope.DecodeData(payload); err != nil {
		return nil, NewNonRetryableError(fmt.Errorf("decode %s payload: %w", event.EventType, err))
	}

	return &ResolvedEvent{
		Descriptor: desc,
		Envelope:   envelope,
		Payload:    payload,
	}, nil
}

// NewNonRetryableError wraps an error to signal no retries.
func NewNonRetryableError(err error) NonRetryableError {
	return NonRetryableError{Err: err}
}
