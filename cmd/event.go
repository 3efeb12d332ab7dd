package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/frahmantamala/petirpay/internal/activity"
	activityPostgres "github.com/frahmantamala/petirpay/internal/activity/postgres"
	"github.com/frahmantamala/petirpay/internal/core/events"
	"github.com/frahmantamala/petirpay/pkg/logger"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Publish test events through the in-process event bus`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a test event",
	Long:  `Publish a test event to the event bus. With --record it is also stored in the activity log.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(cmd.Context(), args[0])
	},
}

var (
	eventData   string
	eventRecord bool
)

func publishTestEvent(ctx context.Context, eventType string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lg := logger.LoggerWrapper()

	data := map[string]interface{}{}
	if err := json.Unmarshal([]byte(eventData), &data); err != nil {
		data = map[string]interface{}{"message": eventData}
	}
	data["source"] = "cli-command"

	eventBus := events.NewEventBus(lg)
	eventBus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("test handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	if eventRecord {
		cfg, err := loadConfig(".")
		if err != nil {
			return err
		}
		db, err := initDB(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		gdb, err := initGorm(db)
		if err != nil {
			return err
		}
		svc := activity.NewService(activityPostgres.NewActivityRepository(gdb), lg)
		activity.NewEventHandler(svc, lg).RegisterEventHandlers(eventBus)
	}

	event := events.NewGenericEvent(eventType, data)
	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID())

	if err := eventBus.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventData, "data", "test message", "event payload, JSON object or plain message")
	publishEventCmd.Flags().BoolVar(&eventRecord, "record", false, "store the event in the activity log")

	eventCmd.AddCommand(publishEventCmd)
}
