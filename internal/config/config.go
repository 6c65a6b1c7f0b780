// Package config loads the process configuration from the environment.
// The core treats these as already-resolved inputs at startup; nothing
// below this package reads ambient environment state.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config is the full process configuration.
type Config struct {
	Service       ServiceConfig
	Model         ModelConfig
	STT           STTConfig
	Limits        LimitsConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds the listener settings.
type ServiceConfig struct {
	Port string
}

// ModelConfig locates the acoustic model on disk. Either Path is set
// directly, or Dir and Name are joined.
type ModelConfig struct {
	Path string
	Dir  string
	Name string
}

// ErrNoModel means neither VOSK_MODEL_PATH nor VOSK_MODELS_DIR+VOSK_MODEL
// were provided.
var ErrNoModel = errors.New(
	"missing model configuration: provide VOSK_MODEL_PATH, or both VOSK_MODELS_DIR and VOSK_MODEL")

// Resolve returns the model directory, with Path taking precedence over
// the Dir/Name pair.
func (m ModelConfig) Resolve() (string, error) {
	if m.Path != "" {
		return m.Path, nil
	}
	if m.Dir != "" && m.Name != "" {
		return filepath.Join(m.Dir, m.Name), nil
	}
	return "", ErrNoModel
}

// STTConfig selects the engine and the default stream sample rate.
type STTConfig struct {
	Engine            string // "vosk" or "mock"
	DefaultSampleRate int
}

// LimitsConfig holds the resource guardrails.
type LimitsConfig struct {
	MaxSessions     int           // 0 disables the limit
	WSIdleTimeout   time.Duration // read deadline reclaiming dangling sessions
	BatchMaxSeconds int           // default max audio duration for /api/transcribe
	MaxUploadBytes  int64         // request body cap for the batch path
}

// KafkaConfig configures the optional transcript event publisher.
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicPartial string
	TopicFinal   string
	Principal    string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
}

// Load reads the configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Service: ServiceConfig{
			Port: envOrDefault("PORT", "8000"),
		},
		Model: ModelConfig{
			Path: os.Getenv("VOSK_MODEL_PATH"),
			Dir:  os.Getenv("VOSK_MODELS_DIR"),
			Name: os.Getenv("VOSK_MODEL"),
		},
		STT: STTConfig{
			Engine:            envOrDefault("STT_ENGINE", "vosk"),
			DefaultSampleRate: envInt("VOSK_SAMPLE_RATE", 16000),
		},
		Limits: LimitsConfig{
			MaxSessions:     envInt("MAX_SESSIONS", 0),
			WSIdleTimeout:   envDuration("WS_IDLE_TIMEOUT", 5*time.Minute),
			BatchMaxSeconds: envInt("BATCH_MAX_SECONDS", 60),
			MaxUploadBytes:  envInt64("MAX_UPLOAD_BYTES", 64*1024*1024),
		},
		Kafka: KafkaConfig{
			Enabled:      envBool("KAFKA_ENABLED", false),
			Brokers:      envList("KAFKA_BROKERS"),
			TopicPartial: envOrDefault("KAFKA_TOPIC_PARTIAL", "transcripts.partial"),
			TopicFinal:   envOrDefault("KAFKA_TOPIC_FINAL", "transcripts.final"),
			Principal:    envOrDefault("KAFKA_PRINCIPAL", "svc-sentinel-vosk"),
		},
		Observability: ObservabilityConfig{
			LogLevel:  envOrDefault("LOG_LEVEL", "info"),
			LogFormat: envOrDefault("LOG_FORMAT", "json"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
