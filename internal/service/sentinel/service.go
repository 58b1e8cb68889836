package sentinel

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/oshokin/order-siren/internal/bus"
	"github.com/oshokin/order-siren/internal/config"
	"github.com/oshokin/order-siren/internal/consumer"
	"github.com/oshokin/order-siren/internal/driver"
	"github.com/oshokin/order-siren/internal/ingest"
	"github.com/oshokin/order-siren/internal/logger"
	"github.com/oshokin/order-siren/internal/receiver"
	"github.com/oshokin/order-siren/internal/relay"
	"github.com/oshokin/order-siren/internal/store"
	"github.com/oshokin/order-siren/internal/surface"
)

const (
	// defaultKafkaGroup names the consumer group when none is configured.
	defaultKafkaGroup = "order-siren"
	// drainRetryInterval is how often a parked decision is offered to the
	// consumer again.
	drainRetryInterval = 15 * time.Second
	// httpShutdownTimeout bounds the metrics server shutdown.
	httpShutdownTimeout = 3 * time.Second
	// readHeaderTimeout protects the metrics listener from slow clients.
	readHeaderTimeout = 5 * time.Second
)

// Options controls the order-sirend process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// ConsumerURL overrides the consumer webhook base URL from config.
	ConsumerURL string
}

// Run starts the daemon and blocks until the context is canceled. All
// collaborators are wired here; the alert cycle itself lives in the
// receiver, the store and the driver.
//
//nolint:funlen,cyclop // Process wiring is inherently sequential.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "order-sirend")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	consumerURL := cfg.ConsumerURL
	if opts.ConsumerURL != "" {
		consumerURL = opts.ConsumerURL
	}

	// Redis backs both the bus and the pending slot when configured.
	var redisClient *redis.Client
	if cfg.RedisAddress != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})

		defer func() {
			_ = redisClient.Close() //nolint:errcheck // Shutdown path.
		}()
	}

	channel, err := buildBus(cfg, redisClient)
	if err != nil {
		return err
	}

	webhook := consumer.NewWebhook(consumerURL, cfg.Timeout)
	decisionRelay := relay.New(webhook, buildPendingStore(cfg, redisClient))

	alerts := store.New()
	feedback := driver.New(driver.NewPlayerOutput(cfg.SoundPlayer, cfg.SoundClip), cfg.RingInterval)

	presenter := surface.NewManager(alerts, surface.Track{
		Width:     cfg.TrackWidth,
		Threshold: cfg.SlideThreshold,
	})

	events := receiver.New(alerts, feedback, decisionRelay, presenter)
	presenter.Bind(events.OnDecision)

	unsubscribe, err := channel.Subscribe(ctx, bus.TopicOrderEvents, events.OnEvent)
	if err != nil {
		return fmt.Errorf("subscribe to order events: %w", err)
	}

	defer unsubscribe()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.KafkaBrokers != "" {
		group := cfg.KafkaGroup
		if group == "" {
			group = defaultKafkaGroup
		}

		source, err := ingest.NewKafkaSource(
			ingest.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopic, group, events.OnEvent)
		if err != nil {
			return fmt.Errorf("initialise kafka ingest: %w", err)
		}

		go func() {
			if err := source.Run(runCtx); err != nil {
				logger.ErrorKV(runCtx, "Kafka ingest stopped", "error", err)
			}
		}()
	}

	metricsServer := startMetricsServer(runCtx, cfg.MetricsAddress)

	// A decision parked while the consumer was unreachable is offered again
	// at startup and then on a slow retry cadence.
	go drainLoop(runCtx, decisionRelay, webhook)

	logger.InfoKV(ctx, "Order siren daemon running",
		"bus_transport", cfg.BusTransport,
		"metrics_address", cfg.MetricsAddress,
		"consumer_url", consumerURL)

	<-ctx.Done()

	logger.Info(ctx, "Shutting down order siren daemon")
	cancel()
	feedback.Stop()
	presenter.Close(context.WithoutCancel(ctx))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), httpShutdownTimeout)
	defer shutdownCancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.WarnKV(ctx, "Metrics server shutdown failed", "error", err)
	}

	logger.Info(ctx, "Order siren daemon stopped")

	return nil
}

// buildBus selects the delivery-channel transport from configuration.
func buildBus(cfg *config.Config, redisClient *redis.Client) (bus.Bus, error) {
	switch cfg.BusTransport {
	case config.TransportRedis:
		if redisClient == nil {
			return nil, errors.New("redis transport selected without a redis address")
		}

		return bus.NewRedis(redisClient), nil
	default:
		return bus.NewInProc(), nil
	}
}

// buildPendingStore prefers redis for the pending slot and falls back to the
// JSON file so a parked decision survives restarts either way.
func buildPendingStore(cfg *config.Config, redisClient *redis.Client) relay.PendingStore {
	if redisClient != nil {
		return relay.NewRedisStore(redisClient)
	}

	return relay.NewFileStore(cfg.PendingFile)
}

// startMetricsServer exposes the Prometheus endpoint in the background.
func startMetricsServer(ctx context.Context, address string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "Metrics server failed", "error", err)
		}
	}()

	return server
}

// drainLoop hands the parked decision to the consumer once it is reachable.
// The slot is consumed only while the consumer is attached so an unreachable
// consumer never loses the decision.
func drainLoop(ctx context.Context, decisionRelay *relay.Relay, webhook *consumer.Webhook) {
	ticker := time.NewTicker(drainRetryInterval)
	defer ticker.Stop()

	for {
		if webhook.Attached() {
			pending, err := decisionRelay.DrainPending(ctx)
			if err != nil {
				logger.WarnKV(ctx, "Failed to drain pending decision", "error", err)
			} else if pending != nil {
				webhook.ApplyDecision(ctx, pending.OrderID, pending.Decision)
				webhook.OpenDetail(ctx, pending.OrderID)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
