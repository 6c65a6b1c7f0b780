// Package events mirrors transcript events to Kafka for downstream
// consumers. Publishing is optional: when disabled (the default) the
// publisher runs in log-only mode, so the streaming core never depends on
// a broker being reachable.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/olivierpetitjean/sentinel-vosk-server/internal/models"
	"github.com/olivierpetitjean/sentinel-vosk-server/internal/observability/metrics"
)

// Event types on the broker.
const (
	eventTypePartial = "transcript.partial"
	eventTypeFinal   = "transcript.final"
)

// Envelope is the broker payload wrapping one transcript event.
type Envelope struct {
	EventType string        `json:"eventType"`
	SessionID string        `json:"sessionId"`
	Principal string        `json:"principal"`
	Timestamp int64         `json:"timestamp"`
	Text      string        `json:"text"`
	Result    []models.Word `json:"result,omitempty"`
}

// Config holds Kafka publisher configuration.
type Config struct {
	Brokers      []string
	TopicPartial string
	TopicFinal   string
	Principal    string
	Enabled      bool
}

// Publisher publishes transcript events to separate Kafka topics for
// partial and final transcripts.
type Publisher struct {
	writerPartial *kafka.Writer
	writerFinal   *kafka.Writer
	principal     string
	topicPartial  string
	topicFinal    string
	enabled       bool
	metrics       *metrics.Metrics
}

// New creates a Kafka event publisher. A nil or disabled config yields a
// log-only publisher.
func New(cfg *Config) *Publisher {
	m := metrics.DefaultMetrics

	if cfg == nil || !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info().Msg("Kafka disabled, transcript events in log-only mode")
		p := &Publisher{enabled: false, metrics: m}
		if cfg != nil {
			p.principal = cfg.Principal
			p.topicPartial = cfg.TopicPartial
			p.topicFinal = cfg.TopicFinal
		}
		return p
	}

	// Longer dial timeout: broker DNS can be slow to settle in-cluster.
	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}
	transport := &kafka.Transport{
		Dial: dialer.DialFunc,
	}

	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
			Transport:    transport,
		}
	}

	log.Info().
		Strs("brokers", cfg.Brokers).
		Str("topicPartial", cfg.TopicPartial).
		Str("topicFinal", cfg.TopicFinal).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writerPartial: newWriter(cfg.TopicPartial),
		writerFinal:   newWriter(cfg.TopicFinal),
		principal:     cfg.Principal,
		topicPartial:  cfg.TopicPartial,
		topicFinal:    cfg.TopicFinal,
		enabled:       true,
		metrics:       m,
	}
}

// PublishPartial mirrors a partial transcript event, keyed by session ID so
// one session's events stay ordered on one partition.
func (p *Publisher) PublishPartial(ctx context.Context, sessionID string, ev *models.TranscriptEvent) {
	p.publish(ctx, p.writerPartial, p.topicPartial, eventTypePartial, sessionID, ev)
}

// PublishFinal mirrors a final transcript event.
func (p *Publisher) PublishFinal(ctx context.Context, sessionID string, ev *models.TranscriptEvent) {
	p.publish(ctx, p.writerFinal, p.topicFinal, eventTypeFinal, sessionID, ev)
}

// publish writes one envelope to a topic. Publish failures are logged and
// counted, never propagated: eventing must not disturb the session.
func (p *Publisher) publish(ctx context.Context, writer *kafka.Writer, topic, eventType, sessionID string, ev *models.TranscriptEvent) {
	start := time.Now()

	env := Envelope{
		EventType: eventType,
		SessionID: sessionID,
		Principal: p.principal,
		Timestamp: time.Now().UnixMilli(),
		Text:      ev.Text,
		Result:    ev.Result,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		log.Error().Err(err).Str("topic", topic).Msg("Failed to marshal event")
		return
	}

	log.Debug().
		Str("topic", topic).
		Str("sessionId", sessionID).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || writer == nil {
		p.metrics.RecordKafkaPublish(topic, eventType, nil, time.Since(start).Seconds())
		return
	}

	msg := kafka.Message{
		Key:   []byte(sessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte(eventType)},
			{Key: "principal", Value: []byte(p.principal)},
		},
	}
	err = writer.WriteMessages(ctx, msg)
	if err != nil {
		log.Error().
			Err(err).
			Str("topic", topic).
			Str("sessionId", sessionID).
			Msg("Failed to write to Kafka")
	}
	p.metrics.RecordKafkaPublish(topic, eventType, err, time.Since(start).Seconds())
}

// Close closes both Kafka writers.
func (p *Publisher) Close() error {
	var err error
	if p.writerPartial != nil {
		if e := p.writerPartial.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing partial writer")
			err = e
		}
	}
	if p.writerFinal != nil {
		if e := p.writerFinal.Close(); e != nil {
			log.Error().Err(e).Msg("Error closing final writer")
			err = e
		}
	}
	return err
}
