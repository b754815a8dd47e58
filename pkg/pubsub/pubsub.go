package pubsub

import (
	"context"

	ckafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sirupsen/logrus"
)

type Publisher interface {
	Publish(ctx context.Context, topic string, key string, headers map[string]string, message []byte) error
	Close()
}

type kafkaPublisher struct {
	logger   *logrus.Logger
	producer *ckafka.Producer
}

func PublisherFromConfluentKafkaProducer(logger *logrus.Logger, producer *ckafka.Producer) Publisher {
	p := &kafkaPublisher{
		logger:   logger,
		producer: producer,
	}

	go p.watchDeliveries()

	return p
}

func (p *kafkaPublisher) watchDeliveries() {
	for e := range p.producer.Events() {
		if m, ok := e.(*ckafka.Message); ok && m.TopicPartition.Error != nil {
			p.logger.WithError(m.TopicPartition.Error).WithField("topic", *m.TopicPartition.Topic).Error()
		}
	}
}

// Publish implements Publisher.
func (p *kafkaPublisher) Publish(ctx context.Context, topic string, key string, headers map[string]string, message []byte) error {
	kafkaHeaders := make([]ckafka.Header, 0, len(headers))
	for k, v := range headers {
		kafkaHeaders = append(kafkaHeaders, ckafka.Header{Key: k, Value: []byte(v)})
	}

	msg := &ckafka.Message{
		TopicPartition: ckafka.TopicPartition{
			Topic:     &topic,
			Partition: ckafka.PartitionAny,
		},
		Key:     []byte(key),
		Value:   message,
		Headers: kafkaHeaders,
	}

	if err := p.producer.Produce(msg, nil); err != nil {
		p.logger.WithContext(ctx).WithError(err).Error()
		return err
	}

	return nil
}

// Close implements Publisher.
func (p *kafkaPublisher) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
