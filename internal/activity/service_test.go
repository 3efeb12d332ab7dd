package activity_test

import (
	"context"

	"github.com/frahmantamala/petirpay/internal/activity"
	activityPostgres "github.com/frahmantamala/petirpay/internal/activity/postgres"
	"github.com/frahmantamala/petirpay/internal/core/events"
	"github.com/frahmantamala/petirpay/internal/core/testdb"
	"github.com/frahmantamala/petirpay/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Activity", func() {
	var (
		db      *gorm.DB
		ctx     context.Context
		service *activity.Service
		bus     *events.EventBus
	)

	BeforeEach(func() {
		var err error
		db, err = testdb.Open()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(testdb.Close, db)
		ctx = context.Background()

		service = activity.NewService(activityPostgres.NewActivityRepository(db), logger.Discard())
		bus = events.NewEventBus(logger.Discard())
		activity.NewEventHandler(service, logger.Discard()).RegisterEventHandlers(bus)
	})

	It("records every published event with its actor and payload", func() {
		Expect(bus.PublishSync(ctx, events.NewBillCreatedEvent(3, 10, 20, 5, 2026, 150))).To(Succeed())
		Expect(bus.PublishSync(ctx, events.NewPaymentApprovedEvent(3, 30, 10, 155000, "ok"))).To(Succeed())

		items, total, err := service.List(ctx, activity.ListFilter{Limit: 10})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(2)))

		var created *activity.Activity
		for _, it := range items {
			if it.EventType == events.EventTypeBillCreated {
				created = it
			}
		}
		Expect(created).NotTo(BeNil())
		Expect(*created.ActorID).To(Equal(int64(3)))
		Expect(created.ActorKind).To(Equal("staff"))
		Expect(created.Payload).To(HaveKeyWithValue("bill_id", BeNumerically("==", 10)))
	})

	It("records asynchronously published events once the bus drains", func() {
		Expect(bus.Publish(ctx, events.NewPaymentSubmittedEvent(20, 30, 10, 155000))).To(Succeed())
		bus.Wait()

		items, _, err := service.List(ctx, activity.ListFilter{EventType: events.EventTypePaymentSubmitted})
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(1))
		Expect(items[0].ActorKind).To(Equal("customer"))
	})

	It("ignores a replayed event", func() {
		e := events.NewBillDeletedEvent(3, 10, 20)
		Expect(service.Record(ctx, e)).To(Succeed())
		Expect(service.Record(ctx, e)).To(Succeed())

		_, total, err := service.List(ctx, activity.ListFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(1)))
	})

	It("filters by event type", func() {
		Expect(service.Record(ctx, events.NewBillDeletedEvent(3, 10, 20))).To(Succeed())
		Expect(service.Record(ctx, events.NewPaymentRejectedEvent(3, 31, 11, 155000, "blurry"))).To(Succeed())

		items, total, err := service.List(ctx, activity.ListFilter{EventType: events.EventTypePaymentRejected, Limit: 5})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(int64(1)))
		Expect(items[0].Payload).To(HaveKeyWithValue("note", "blurry"))
	})
})
