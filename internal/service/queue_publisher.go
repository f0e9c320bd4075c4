package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/movie-club/internal/queue"
)

// Publisher delivers activity events to the broker.
type Publisher interface {
	Publish(ctx context.Context, ev queue.ActivityEvent) error
}

// NewPublisher returns an AMQP publisher for url, or a no-op publisher when
// url is empty.
func NewPublisher(url string) Publisher {
	if url == "" {
		return NopPublisher{}
	}
	return &AMQPPublisher{URL: url}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.ActivityEvent) error { return nil }

// AMQPPublisher dials the broker for each publish.  Activity traffic is
// low, so no connection is kept open between events.
type AMQPPublisher struct{ URL string }

// Publish sends ev as a persistent message to queue.ActivityQueue.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.ActivityEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.ActivityQueue, true, false, false, false, nil); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", queue.ActivityQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}

// Emit publishes ev in the background.  Failures are logged and never
// reach the request that caused the event.
func Emit(p Publisher, ev queue.ActivityEvent) {
	if p == nil {
		return
	}
	if _, ok := p.(NopPublisher); ok {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			log.Warnf("activity: publish %s failed: %v", ev.Type, err)
		}
	}()
}
