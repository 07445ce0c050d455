package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/MachogaKhumo/CLDV6212POE/internal/aws"
	"github.com/MachogaKhumo/CLDV6212POE/internal/config"
)

func main() {
	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	cfg := config.LoadWorker()
	p := NewProcessor(clients, cfg)

	// if environment variable RUN_LOCAL is set to "true", simulate a single
	// SQS event for local testing instead of starting the Lambda runtime.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"customerId":"local-c1","productId":"local-p1","quantity":1,"details":"local test"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{
				{MessageId: "local-1", Body: testBody},
			},
		}
		if err := p.Handle(context.Background(), event); err != nil {
			log.Fatalf("local handler error: %v", err)
		}
		return
	}

	lambda.Start(p.Handle)
}
