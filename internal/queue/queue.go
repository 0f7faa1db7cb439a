package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JayKakadiya/ui-plugin-samples/internal/util"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	RetriesHeader     = "x-retries"
	DefaultMaxRetries = 5

	retryDelay = 10 * time.Second
)

// channel is the part of *amqp091.Channel used for publishing.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

func Init() *amqp091.Connection {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnvString("RABBITMQ_PORT", "5672")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

// SetupQueues declares every queue with its _dlq and _retry companions. The
// retry queue dead-letters back into the main queue after retryDelay.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declaring queue %s: %w", name, err)
		}

		dlqName := name + "_dlq"
		if _, err := ch.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declaring queue %s: %w", dlqName, err)
		}

		retryName := name + "_retry"
		_, err := ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(retryDelay.Milliseconds()),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("declaring queue %s: %w", retryName, err)
		}
	}

	return nil
}

func PublishFIFO(ctx context.Context, ch channel, queueName string, data []byte) error {
	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		Body:         data,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    time.Now(),
	}

	return ch.PublishWithContext(ctx, "", queueName, false, false, publishing)
}

// Publisher publishes to queues over one channel.
type Publisher struct {
	mu sync.Mutex
	ch channel
}

func NewPublisher(ch *amqp091.Channel) *Publisher {
	return &Publisher{ch: ch}
}

func (p *Publisher) Publish(ctx context.Context, queueName string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PublishFIFO(ctx, p.ch, queueName, body)
}
