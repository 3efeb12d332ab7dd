package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeBillCreated      = "bill.created"
	EventTypeBillDeleted      = "bill.deleted"
	EventTypePaymentSubmitted = "payment.submitted"
	EventTypePaymentRecorded  = "payment.recorded"
	EventTypePaymentApproved  = "payment.approved"
	EventTypePaymentRejected  = "payment.rejected"
)

func newBase(eventType string, actorID int64, actorKind string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		ActorID:   actorID,
		ActorKind: actorKind,
		Data:      data,
	}
}

type BillCreatedEvent struct {
	BaseEvent
	BillID     int64 `json:"bill_id"`
	CustomerID int64 `json:"customer_id"`
	Month      int   `json:"month"`
	Year       int   `json:"year"`
	UsageKWh   int64 `json:"usage_kwh"`
}

func NewBillCreatedEvent(actorID, billID, customerID int64, month, year int, usageKWh int64) *BillCreatedEvent {
	return &BillCreatedEvent{
		BaseEvent: newBase(EventTypeBillCreated, actorID, "staff", map[string]interface{}{
			"bill_id":     billID,
			"customer_id": customerID,
			"month":       month,
			"year":        year,
			"usage_kwh":   usageKWh,
		}),
		BillID:     billID,
		CustomerID: customerID,
		Month:      month,
		Year:       year,
		UsageKWh:   usageKWh,
	}
}

func NewBillDeletedEvent(actorID, billID, customerID int64) *BaseEvent {
	e := newBase(EventTypeBillDeleted, actorID, "staff", map[string]interface{}{
		"bill_id":     billID,
		"customer_id": customerID,
	})
	return &e
}

// PaymentEvent covers every payment lifecycle transition; Type tells them apart.
type PaymentEvent struct {
	BaseEvent
	PaymentID  int64  `json:"payment_id"`
	BillID     int64  `json:"bill_id"`
	PaidAmount int64  `json:"paid_amount"`
	Note       string `json:"note,omitempty"`
}

func newPaymentEvent(eventType string, actorID int64, actorKind string, paymentID, billID, amount int64, note string) *PaymentEvent {
	data := map[string]interface{}{
		"payment_id":  paymentID,
		"bill_id":     billID,
		"paid_amount": amount,
	}
	if note != "" {
		data["note"] = note
	}
	return &PaymentEvent{
		BaseEvent:  newBase(eventType, actorID, actorKind, data),
		PaymentID:  paymentID,
		BillID:     billID,
		PaidAmount: amount,
		Note:       note,
	}
}

func NewPaymentSubmittedEvent(customerID, paymentID, billID, amount int64) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentSubmitted, customerID, "customer", paymentID, billID, amount, "")
}

func NewPaymentRecordedEvent(staffID, paymentID, billID, amount int64) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentRecorded, staffID, "staff", paymentID, billID, amount, "")
}

func NewPaymentApprovedEvent(staffID, paymentID, billID, amount int64, note string) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentApproved, staffID, "staff", paymentID, billID, amount, note)
}

func NewPaymentRejectedEvent(staffID, paymentID, billID, amount int64, note string) *PaymentEvent {
	return newPaymentEvent(EventTypePaymentRejected, staffID, "staff", paymentID, billID, amount, note)
}

// NewGenericEvent is used by the CLI to push an arbitrary event through the bus.
func NewGenericEvent(eventType string, data map[string]interface{}) *BaseEvent {
	e := newBase(eventType, 0, "system", data)
	return &e
}
