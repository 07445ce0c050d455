package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/MachogaKhumo/CLDV6212POE/internal/aws"
	"github.com/MachogaKhumo/CLDV6212POE/internal/config"
	"github.com/MachogaKhumo/CLDV6212POE/internal/store"
)

// Processor consumes order queue messages and materializes them into
// canonical order entities.
type Processor struct {
	entities *store.Store
	metrics  *aws.MetricsRecorder
	nowFunc  func() time.Time
	newID    func() string
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, cfg *config.Config) *Processor {
	return &Processor{
		entities: store.NewStore(clients.DynamoDB, cfg.EntityTable),
		metrics:  aws.NewMetricsRecorder(clients.CloudWatch, cfg.MetricsNamespace),
		nowFunc:  time.Now,
		newID:    store.NewID,
	}
}

// Handle receives an SQS batch event and processes each message. Any error
// is returned to the Lambda runtime, which retries the message and
// eventually dead-letters it.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.Printf("[worker] error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	order, err := decodeOrderMessage([]byte(rec.Body))
	if err != nil {
		// poison message: raise so the runtime applies its retry/DLQ policy
		return fmt.Errorf("message %s: %w", rec.MessageId, err)
	}

	p.normalize(order)

	if err := p.entities.Create(ctx, order); err != nil {
		return fmt.Errorf("persist order: %w", err)
	}

	p.metrics.Count(ctx, "OrdersIngested", 1)
	log.Printf("[worker] order saved id=%s customer=%s product=%s qty=%d",
		order.ID, order.CustomerID, order.ProductID, order.Quantity)
	return nil
}

// normalize runs unconditionally, whichever shape decoded. A fresh id is
// minted on every ingestion, so a redelivered message creates a second
// order record instead of overwriting the first: at-least-once delivery
// yields duplicates, not corruption. The order timestamp is the ingestion
// clock reading; the submission time is not preserved on this path.
func (p *Processor) normalize(o *store.Order) {
	o.ID = p.newID()
	o.Collection = store.CollectionOrder
	if o.Status == "" {
		o.Status = store.StatusProcessed
	}
	o.OrderDate = p.nowFunc().UTC()
	o.ETag = ""
}
