// Package kafka adapts a kafka-go consumer group reader to the worker's
// Consumer interface.
package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"github.com/tendant/simple-cms/pkg/simplecms/worker"
)

// Consumer reads upload events from a Kafka topic as part of a consumer
// group. Offsets are committed explicitly via Commit, never automatically.
type Consumer struct {
	reader *kafka.Reader
}

var _ worker.Consumer = (*Consumer)(nil)

// New creates a consumer for the given brokers, topic and consumer group.
// New consumer groups start from the earliest retained offset so events
// published before the first deployment are not lost.
func New(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.FirstOffset,
	})
	return &Consumer{reader: reader}
}

func (c *Consumer) Fetch(ctx context.Context) (worker.Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return worker.Message{}, err
	}
	return worker.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
	}, nil
}

func (c *Consumer) Commit(ctx context.Context, msg worker.Message) error {
	return c.reader.CommitMessages(ctx, kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	})
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
