package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/api"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/config"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/engine"
	enginemock "github.com/olivierpetitjean/sentinel-vosk-server/internal/engine/mock"
	enginevosk "github.com/olivierpetitjean/sentinel-vosk-server/internal/engine/vosk"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/events"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/observability/logging"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/session"
)

func main() {
	cfg := config.Load()
	logging.Init(logging.Config{
		Level:  cfg.Observability.LogLevel,
		Format: cfg.Observability.LogFormat,
	})
	log := logging.WithComponent("main")

	// The engine loads before anything listens: no model, no service.
	eng, err := buildEngine(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Engine startup failed")
	}
	defer eng.Close()

	info := eng.Info()
	log.Info().
		Str("engine", info.Name).
		Str("engineVersion", info.Version).
		Str("model", info.ModelName).
		Str("modelPath", info.ModelPath).
		Msg("Engine ready")

	publisher := events.New(&events.Config{
		Enabled:      cfg.Kafka.Enabled,
		Brokers:      cfg.Kafka.Brokers,
		TopicPartial: cfg.Kafka.TopicPartial,
		TopicFinal:   cfg.Kafka.TopicFinal,
		Principal:    cfg.Kafka.Principal,
	})
	defer publisher.Close()

	registry := session.NewRegistry(cfg.Limits.MaxSessions)
	manager := session.NewManager(eng, registry, publisher)

	server := &http.Server{
		Addr:              ":" + cfg.Service.Port,
		Handler:           api.NewServer(cfg, eng, manager).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Int("maxSessions", cfg.Limits.MaxSessions).
			Int("defaultSampleRate", cfg.STT.DefaultSampleRate).
			Msg("sentinel-vosk-server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Graceful shutdown incomplete")
	}

	// Shutdown does not wait for hijacked WebSocket connections; close the
	// remaining sessions so every decoder is released, then drop sockets.
	manager.CloseAll()
	_ = server.Close()
}

func buildEngine(cfg *config.Config) (engine.Engine, error) {
	switch cfg.STT.Engine {
	case "mock":
		return enginemock.New(), nil
	default:
		path, err := cfg.Model.Resolve()
		if err != nil {
			return nil, err
		}
		return enginevosk.New(path)
	}
}
