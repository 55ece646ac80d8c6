package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/chaudhary-hadi27/usman-fast-food/models"
)

// ProducerAPI is what the order service depends on; tests supply fakes.
type ProducerAPI interface {
	SendOrderEvent(event models.OrderEvent) error
}

type Producer struct {
	writer *kafka.Writer
	topic  string
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// SendOrderEvent publishes an order lifecycle event keyed by order id.
func (p *Producer) SendOrderEvent(event models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
	}

	if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
		zap.L().Warn("failed to send Kafka message", zap.Error(err))
		return err
	}
	return nil
}

func (p *Producer) Close() {
	_ = p.writer.Close()
}
