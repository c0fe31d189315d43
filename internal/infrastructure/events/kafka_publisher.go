// Package events publica los eventos del carrito en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/eshop-api/internal/application/cart"
	"github.com/jhoicas/eshop-api/pkg/logger"
)

var _ cart.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher envía cada CartEvent como JSON. La clave del mensaje es la sesión,
// así los eventos de un mismo carrito caen en la misma partición y conservan el orden.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaPublisher crea un SyncProducer contra los brokers dados.
func NewKafkaPublisher(brokers []string, topic string, log *logger.Logger) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka: crear producer: %w", err)
	}
	log.Info().Strs("brokers", brokers).Str("topic", topic).Msg("kafka: publisher inicializado")
	return NewKafkaPublisherWithProducer(producer, topic, log), nil
}

// NewKafkaPublisherWithProducer usa un producer ya construido (tests con sarama/mocks).
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaPublisher{producer: producer, topic: topic, log: log}
}

// Publish serializa y envía el evento propagando el contexto de traza en los headers.
func (p *KafkaPublisher) Publish(ctx context.Context, ev cart.CartEvent) error {
	ctx, span := otel.Tracer("cart-events").Start(ctx, "kafka.publish."+ev.EventType,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", p.topic),
			attribute.String("event.type", ev.EventType),
			attribute.String("event.id", ev.EventID),
		),
	)
	defer span.End()

	body, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal")
		return fmt.Errorf("kafka: serializar evento: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(ev.EventType)},
		{Key: []byte("event_id"), Value: []byte(ev.EventID)},
	}
	for k, v := range carrier {
		headers = append(headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(ev.SessionKey),
		Value:   sarama.ByteEncoder(body),
		Headers: headers,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send")
		return fmt.Errorf("kafka: enviar evento: %w", err)
	}

	span.SetAttributes(
		attribute.Int("messaging.kafka.partition", int(partition)),
		attribute.Int64("messaging.kafka.offset", offset),
	)
	p.log.WithContext(ctx).Debug().
		Str("event_id", ev.EventID).
		Str("event_type", ev.EventType).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("kafka: evento publicado")
	return nil
}

// Close cierra el producer.
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
