package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"inventario/internal/models"

	"github.com/sirupsen/logrus"
	amqp "github.com/streadway/amqp"
)

// ProductEventsQueue receives every product lifecycle event.
const ProductEventsQueue = "product_events"

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel and declares the product events queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareProductEventsQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logrus.WithField("queue", ProductEventsQueue).Info("RabbitMQ client connected")

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

func declareProductEventsQueue(ch *amqp.Channel) (amqp.Queue, error) {
	queue, err := ch.QueueDeclare(
		ProductEventsQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare %s: %w", ProductEventsQueue, err)
	}
	return queue, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishProductEvent publishes event as persistent JSON to the product events queue.
func (c *Client) PublishProductEvent(event models.ProductEvent) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal product event: %w", err)
	}

	// amqp.Channel is not safe for concurrent publishes.
	c.mu.Lock()
	defer c.mu.Unlock()

	err = c.channel.Publish(
		"",                 // default exchange
		ProductEventsQueue, // routing key
		false,              // mandatory
		false,              // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         string(event.Type),
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish product event: %w", err)
	}

	logrus.WithField("event", event.Type).WithField("product_id", event.ProductID).Debug("Product event published")
	return nil
}

// ConsumeProductEvents delivers product events to messageHandler from a
// background goroutine. Messages are acked on success and requeued on error.
func (c *Client) ConsumeProductEvents(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return errors.New("RabbitMQ channel is not available for consumption")
	}

	queue, err := declareProductEventsQueue(c.channel)
	if err != nil {
		return err
	}

	msgs, err := c.channel.Consume(
		queue.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				logrus.WithError(err).WithField("delivery_tag", msg.DeliveryTag).Error("Error processing product event")
				if nackErr := msg.Nack(false, !msg.Redelivered); nackErr != nil {
					logrus.WithError(nackErr).Error("Error nacking product event")
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				logrus.WithError(ackErr).Error("Error acking product event")
			}
		}
	}()

	return nil
}

// HandleProductMessage decodes a product event and writes it to the log.
func HandleProductMessage(msg amqp.Delivery) error {
	event, err := DecodeProductEvent(msg.Body)
	if err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"event":      event.Type,
		"product_id": event.ProductID,
		"name":       event.Name,
		"price":      event.Price.StringFixed(2),
		"stock":      event.Stock,
	}).Info("Product event received")
	return nil
}

// DecodeProductEvent parses the JSON body of a product event message.
func DecodeProductEvent(body []byte) (models.ProductEvent, error) {
	var event models.ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return models.ProductEvent{}, fmt.Errorf("failed to decode product event: %w", err)
	}
	if event.Type == "" || event.ProductID == "" {
		return models.ProductEvent{}, errors.New("product event is missing type or product_id")
	}
	return event, nil
}
