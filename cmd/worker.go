/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/portfolio-web/apiserver/internal/mq"
	"github.com/portfolio-web/apiserver/internal/services"
	"github.com/portfolio-web/apiserver/types"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consumes contact form notifications",
	Long: `Subscribes to the contact channel and logs every submitted message.

	portfolio worker
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.NewFromConfig(ctx, cfg.MQ)
		if err != nil {
			return fmt.Errorf("failed to init mq: %w", err)
		}
		defer queue.Close()

		if !queue.Enabled() {
			return errors.New("MQ_BACKEND must be configured to run the worker")
		}

		logger.Info("worker subscribed", "channel", cfg.MQ.ContactChannel)
		err = queue.Subscribe(ctx, cfg.MQ.ContactChannel, contactHandler(logger))
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("subscription failed: %w", err)
		}
		return nil
	},
}

// contactHandler logs contact submissions. Malformed payloads are logged
// and acknowledged so they are not redelivered forever.
func contactHandler(logger *slog.Logger) mq.Handler {
	return func(ctx context.Context, msg mq.Message) error {
		if eventType := msg.Attributes[mq.AttrEventType]; eventType != "" && eventType != services.EventContactSubmitted {
			logger.DebugContext(ctx, "ignoring event", "event_type", eventType, "message_id", msg.ID)
			return nil
		}

		var event types.ContactSubmittedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.WarnContext(ctx, "malformed contact event", "message_id", msg.ID, "error", err)
			return nil
		}

		logger.InfoContext(ctx, "contact message received",
			"contact_id", event.MessageID,
			"name", event.Name,
			"email", event.Email,
			"subject", event.Subject,
			"created_at", event.CreatedAt,
		)
		return nil
	}
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
