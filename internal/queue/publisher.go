package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/event-ticketing/internal/logging"
)

// Publisher announces committed purchases on RabbitMQ.  It dials per call;
// purchase volume is low and a dead broker must never hold a connection
// open across requests.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher { return &Publisher{url: url} }

// PublishPurchaseCommitted publishes ev to the purchase.committed queue.
// Errors are logged and returned so the caller can choose to ignore them.
// Messages are marked as persistent.
func (p *Publisher) PublishPurchaseCommitted(ctx context.Context, ev PurchaseCommittedEvent) error {
	log := logging.FromContext(ctx).WithFields(logrus.Fields{"queue": PurchaseCommittedQueue, "purchase_id": ev.PurchaseID})

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(PurchaseCommittedQueue, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Timestamp:     time.Now().UTC(),
		CorrelationId: ev.CorrelationID,
		Body:          body,
	}
	if err := ch.PublishWithContext(ctx, "", PurchaseCommittedQueue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}
