package events_test

import (
	"context"
	"errors"
	"sync"

	"github.com/frahmantamala/petirpay/internal/core/events"
	"github.com/frahmantamala/petirpay/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("EventBus", func() {
	var (
		bus  *events.EventBus
		mu   sync.Mutex
		seen []string
	)

	record := func(tag string) events.Handler {
		return func(_ context.Context, e events.Event) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, tag+":"+e.EventType())
			return nil
		}
	}

	BeforeEach(func() {
		bus = events.NewEventBus(logger.Discard())
		seen = nil
	})

	It("delivers to typed and wildcard subscribers once Wait returns", func() {
		bus.Subscribe(events.EventTypePaymentApproved, record("typed"))
		bus.Subscribe(events.AnyEvent, record("any"))

		Expect(bus.Publish(context.Background(), events.NewPaymentApprovedEvent(7, 1, 2, 150000, ""))).To(Succeed())
		Expect(bus.Publish(context.Background(), events.NewBillCreatedEvent(7, 2, 3, 3, 2024, 100))).To(Succeed())
		bus.Wait()

		Expect(seen).To(ConsistOf(
			"typed:payment.approved",
			"any:payment.approved",
			"any:bill.created",
		))
	})

	It("keeps running handlers after the request context is cancelled", func() {
		bus.Subscribe(events.AnyEvent, func(ctx context.Context, e events.Event) error {
			mu.Lock()
			defer mu.Unlock()
			if ctx.Err() == nil {
				seen = append(seen, "alive")
			}
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		Expect(bus.Publish(ctx, events.NewGenericEvent("test", nil))).To(Succeed())
		bus.Wait()

		Expect(seen).To(Equal([]string{"alive"}))
	})

	It("returns the first handler failure from PublishSync", func() {
		boom := errors.New("boom")
		bus.Subscribe("test", func(context.Context, events.Event) error { return boom })

		err := bus.PublishSync(context.Background(), events.NewGenericEvent("test", map[string]interface{}{"k": "v"}))
		Expect(errors.Is(err, boom)).To(BeTrue())
	})

	It("carries the actor on payment events", func() {
		e := events.NewPaymentSubmittedEvent(42, 1, 2, 77200)
		id, kind := e.Actor()
		Expect(id).To(Equal(int64(42)))
		Expect(kind).To(Equal("customer"))
		Expect(e.Payload()).To(HaveKeyWithValue("paid_amount", int64(77200)))
	})
})
