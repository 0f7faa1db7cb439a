package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JayKakadiya/ui-plugin-samples/internal/util"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// Handler processes one message body. Errors wrapped with util.NewPermanent
// skip the retry queue.
type Handler func(ctx context.Context, body []byte) error

// Consume delivers messages of queueName to handle one at a time until ctx is
// done or the delivery channel closes.
func Consume(ctx context.Context, ch *amqp091.Channel, queueName string, maxRetries int, handle Handler) error {
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("setting qos: %w", err)
	}

	msgs, err := ch.Consume(
		queueName,
		queueName+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("consuming %s: %w", queueName, err)
	}

	logger.Info("[Queue] Listening for messages", "queue", queueName)
	for {
		select {
		case <-ctx.Done():
			logger.Info("[Queue] Stopping consumer", "queue", queueName)
			return nil
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("[Queue] Message channel closed", "queue", queueName)
				return nil
			}
			Deliver(ctx, ch, msg, queueName, maxRetries, handle)
		}
	}
}

// Deliver runs handle for msg and then acks it, or hands it to
// HandleProcessingError.
func Deliver(ctx context.Context, ch channel, msg amqp091.Delivery, queueName string, maxRetries int, handle Handler) {
	start := time.Now()
	logger.Info("[Queue] Received message", "queue", queueName, "retries", RetryCount(msg.Headers))

	if err := handle(ctx, msg.Body); err != nil {
		logger.Error("[Queue] Error processing message", "queue", queueName, "err", err)
		HandleProcessingError(ctx, ch, msg, queueName, maxRetries, err)
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
	}
	logger.Info("[Queue] Message processed", "queue", queueName, "took", time.Since(start))
}

// RetryCount reads the retries header. AMQP tables may hand back any integer
// width depending on who wrote the header.
func RetryCount(headers amqp091.Table) int {
	switch v := headers[RetriesHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	case int16:
		return int(v)
	case int8:
		return int(v)
	}
	return 0
}

// HandleProcessingError republishes msg to the retry queue, or to the dead
// letter queue once maxRetries is reached or cause is permanent.
func HandleProcessingError(ctx context.Context, ch channel, msg amqp091.Delivery, queueName string, maxRetries int, cause error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	retries := RetryCount(msg.Headers)

	var permanent *util.Permanent
	if retries >= maxRetries || errors.As(cause, &permanent) {
		dlqName := queueName + "_dlq"
		logger.Warn("[Queue] Sending message to DLQ", "dlq", dlqName, "retries", retries)
		republish(ctx, ch, msg, dlqName, msg.Headers)
		return
	}

	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[RetriesHeader] = int32(retries + 1)

	republish(ctx, ch, msg, queueName+"_retry", headers)
}

func republish(ctx context.Context, ch channel, msg amqp091.Delivery, target string, headers amqp091.Table) {
	pubErr := ch.PublishWithContext(
		ctx,
		"",
		target,
		false,
		false,
		amqp091.Publishing{
			ContentType:  msg.ContentType,
			Body:         msg.Body,
			Headers:      headers,
			DeliveryMode: amqp091.Persistent,
		},
	)
	if pubErr != nil {
		logger.Error("[Queue] Failed to republish message", "queue", target, "err", pubErr)
		if err := msg.Nack(false, true); err != nil {
			logger.Error("[Queue] Failed to nack message", "err", err)
		}
		return
	}
	if err := msg.Ack(false); err != nil {
		logger.Error("[Queue] Failed to ack message", "err", err)
	}
}
