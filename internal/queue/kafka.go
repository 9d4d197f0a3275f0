package queue

import (
	"context"
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/sirupsen/logrus"
)

const flushTimeoutMs = 5000

var _ RecipeQueue = (*KafkaQueue)(nil)

// KafkaQueue publishes recipe changes keyed by recipe id, so all changes of
// one recipe land on the same kafka partition in order.
type KafkaQueue struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaQueue(brokers, topic string) (*KafkaQueue, error) {
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": brokers,
		"acks":              "all",
	})
	if err != nil {
		return nil, err
	}

	if topic == "" {
		topic = RecipeChangeTopic
	}

	q := &KafkaQueue{producer: producer, topic: topic}
	go q.report()

	return q, nil
}

func (k *KafkaQueue) report() {
	for e := range k.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				logrus.Errorf("recipe change delivery failed: %v", ev.TopicPartition.Error)
			}
		case kafka.Error:
			logrus.Warnf("kafka: %v", ev)
		}
	}
}

func (k *KafkaQueue) PublishChange(ctx context.Context, change *RecipeChange) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(change)
	if err != nil {
		return err
	}

	return k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            []byte(change.ID),
		Value:          value,
		Timestamp:      change.At,
	}, nil)
}

func (k *KafkaQueue) Close() error {
	if remaining := k.producer.Flush(flushTimeoutMs); remaining > 0 {
		logrus.Warnf("%d recipe change(s) not delivered before close", remaining)
	}
	k.producer.Close()

	return nil
}
