package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"matchbook/internal/audit"
	"matchbook/internal/engine"
	"matchbook/internal/events"
	"matchbook/internal/notify"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	auditDir := flag.String("audit-dir", "", "Directory of the audit store, empty disables it")
	auditSync := flag.Bool("audit-sync", false, "Sync every audit write to disk")
	brokers := flag.String("kafka-brokers", "", "Comma-separated Kafka brokers for trade notifications")
	topic := flag.String("kafka-topic", "trade-notifications", "Kafka topic for trade notifications")
	workers := flag.Int("notify-workers", 4, "Concurrent notification deliveries")
	queueSize := flag.Int("queue-size", 1024, "Pending notifications before new ones are dropped")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", *logLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	sinks := events.Multi{events.NewLogSink(log.Logger)}
	if *auditDir != "" {
		store, err := audit.Open(*auditDir, audit.Options{Sync: *auditSync})
		if err != nil {
			log.Fatal().Err(err).Msg("unable to open audit store")
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("unable to close audit store")
			}
		}()
		sinks = append(sinks, store)
	}

	var notifier engine.Notifier = notify.NewLogNotifier(log.Logger)
	if *brokers != "" {
		deliverer := notify.NewKafkaDeliverer(strings.Split(*brokers, ","), *topic)
		dispatcher := notify.NewDispatcher(notify.DispatcherParams{
			Workers:   *workers,
			QueueSize: *queueSize,
		}, deliverer)
		if err := dispatcher.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("unable to start notifications")
		}
		defer func() {
			if err := dispatcher.Close(); err != nil {
				log.Error().Err(err).Msg("notification dispatcher stopped")
			}
			if err := deliverer.Close(); err != nil {
				log.Error().Err(err).Msg("unable to close kafka writer")
			}
		}()
		notifier = dispatcher
	}

	book := engine.NewOrderBook(engine.Params{
		Sink:     sinks,
		Notifier: notifier,
	})

	// Stdin blocks, so the shell runs on its own and we wait on either it or
	// a signal. On a signal the shell is stopped before the deferred closes
	// run, the reader itself is left blocked.
	sh := newShell(book, os.Stdout)
	done := make(chan error, 1)
	go func() {
		done <- sh.run(ctx, os.Stdin)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Msg("shell stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}
	sh.stop()
}
