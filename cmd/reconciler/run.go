package main

import (
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"productcatalog/internal/events"
	"productcatalog/internal/reconcile"
	"productcatalog/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Consume fallback events until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := setup(true)
		if err != nil {
			return err
		}
		defer d.close()

		brokers := d.cfg.Brokers()
		if len(brokers) == 0 {
			return errors.New("KAFKA_BROKERS must be set to consume fallback events")
		}

		ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		consumer := events.NewConsumer(events.DefaultConsumerConfig(brokers, d.cfg.KafkaFallbackTopic, d.cfg.KafkaGroupID))
		defer consumer.Close()

		reconciler := reconcile.New(store.NewCategoryStore(d.db), d.categoryCache())

		slog.Info("reconciler started",
			"brokers", brokers,
			"topic", d.cfg.KafkaFallbackTopic,
			"group", d.cfg.KafkaGroupID,
		)
		if err := consumer.Run(ctx, reconciler.Handle); err != nil {
			return err
		}
		slog.Info("reconciler stopped")
		return nil
	},
}
