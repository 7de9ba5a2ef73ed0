// relay-runner hosts all six components in one process, each running
// as its own cooperative task under an errgroup.Group (§5:
// "a single process hosts all six components"). Grounded on
// ws/main.go's flag/config/signal-shutdown shape, swapped onto
// errgroup for structured goroutine supervision the teacher's single
// WebSocket server didn't need.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	_ "go.uber.org/automaxprocs"
	"golang.org/x/sync/errgroup"

	"github.com/mysocial/relay/internal/cache"
	"github.com/mysocial/relay/internal/config"
	"github.com/mysocial/relay/internal/crypto"
	"github.com/mysocial/relay/internal/db"
	"github.com/mysocial/relay/internal/delivery"
	"github.com/mysocial/relay/internal/eventlog"
	"github.com/mysocial/relay/internal/logging"
	"github.com/mysocial/relay/internal/messaging"
	"github.com/mysocial/relay/internal/notify"
	"github.com/mysocial/relay/internal/outbox"
	"github.com/mysocial/relay/internal/platformcfg"

	apipkg "github.com/mysocial/relay/internal/api"
	authpkg "github.com/mysocial/relay/internal/auth"
	"github.com/mysocial/relay/internal/walletauth"
)

func main() {
	bootLog := logging.New(logging.Config{Level: "info", Format: "json", Service: "relay"})

	cfg, err := config.Load(&bootLog)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Format: logging.Format(cfg.LogFormat), Service: "relay"})
	log.Info().
		Str("database_url", config.MaskedDatabaseURL(cfg.DatabaseURL)).
		Str("redis_url", config.MaskedRedisURL(cfg.RedisURL)).
		Str("kafka_brokers", cfg.KafkaBrokers).
		Msg("starting relay-runner")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer database.Close()

	redisCache, err := cache.Open(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open redis")
	}
	defer redisCache.Close()

	producer, err := eventlog.NewProducer(cfg.Brokers(), logging.WithComponent(log, "producer"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open kafka producer")
	}
	defer producer.Close()

	sealer := crypto.NewSealer(cfg.EncryptionKey)
	authManager := authpkg.NewManager(cfg.JWTSecret, cfg.JWTExpiry)
	resolver := platformcfg.NewResolver(database, platformcfg.Global{
		ApnsBundleID:    cfg.ApnsBundleID,
		ApnsKeyID:       cfg.ApnsKeyID,
		ApnsTeamID:      cfg.ApnsTeamID,
		ApnsKeyContent:  cfg.ApnsKeyContent,
		FCMServerKey:    cfg.FCMServerKey,
		ResendAPIKey:    cfg.ResendAPIKey,
		ResendFromEmail: cfg.ResendFromEmail,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		poller := outbox.NewPoller(database, producer, logging.WithComponent(log, "outbox"), cfg.OutboxPollInterval, cfg.OutboxBatchSize, cfg.OutboxMaxRetries)
		return poller.Run(gctx)
	})

	g.Go(func() error {
		return runConsumer(gctx, cfg.Brokers(), cfg.NotifyConsumerGroup, outbox.NotifyTopics(), logging.WithComponent(log, "notify"), func(ctx context.Context, env eventlog.Envelope) error {
			return notify.NewWorker(database, redisCache, producer, logging.WithComponent(log, "notify")).HandleEvent(ctx, env)
		})
	})

	g.Go(func() error {
		return runConsumer(gctx, cfg.Brokers(), cfg.MsgConsumerGroup, []string{outbox.MessageTopic}, logging.WithComponent(log, "messaging"), func(ctx context.Context, env eventlog.Envelope) error {
			return messaging.NewWorker(database, redisCache, sealer, logging.WithComponent(log, "messaging")).HandleEvent(ctx, env)
		})
	})

	g.Go(func() error {
		deliveryWorker := delivery.NewWorker(database, resolver, logging.WithComponent(log, "delivery"))
		consumer, err := eventlog.NewConsumer(cfg.Brokers(), cfg.DeliveryGroup, []string{"notifications.delivery"}, logging.WithComponent(log, "delivery"))
		if err != nil {
			return err
		}
		defer consumer.Close()
		return consumer.Run(gctx, func(ctx context.Context, _, value []byte) error {
			return deliveryWorker.HandleEvent(ctx, value)
		})
	})

	apiServer := apipkg.NewServer(
		cfg.APIHost+":"+itoa(cfg.APIPort),
		database,
		redisCache,
		sealer,
		authManager,
		walletauth.NewEd25519Verifier(),
		logging.WithComponent(log, "api"),
	)
	g.Go(func() error {
		log.Info().Str("addr", cfg.APIHost).Int("port", cfg.APIPort).Msg("starting api/gateway server")
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return apiServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		log.Error().Err(err).Msg("relay-runner exited with error")
		os.Exit(1)
	}
	log.Info().Msg("relay-runner shut down cleanly")
}

// runConsumer wraps a consumer.Run loop, decoding each record as an
// Envelope before handing it to handle — shared by C2 and C3, which
// both consume JSON envelopes (unlike C4, which consumes DeliveryJobs
// directly).
func runConsumer(ctx context.Context, brokers []string, group string, topics []string, log zerolog.Logger, handle func(context.Context, eventlog.Envelope) error) error {
	consumer, err := eventlog.NewConsumer(brokers, group, topics, log)
	if err != nil {
		return err
	}
	defer consumer.Close()

	return consumer.Run(ctx, func(ctx context.Context, _, value []byte) error {
		env, err := eventlog.Unmarshal(value)
		if err != nil {
			log.Error().Err(err).Msg("failed to decode envelope, dropping")
			return nil
		}
		return handle(ctx, env)
	})
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
