package config

import (
	"fmt"
	"os"
)

// Config holds the external inputs for the retail backend. It is built once
// at process start and passed by reference into each component.
type Config struct {
	// Region is the AWS region, used when composing blob addresses.
	Region string

	// EntityTable is the DynamoDB table backing customers, products and orders.
	EntityTable string

	// OrdersQueueURL is the SQS queue URL for order submissions.
	OrdersQueueURL string

	// PaymentProofsBucket receives proof-of-payment blobs.
	PaymentProofsBucket string

	// ProductImagesBucket receives product image blobs.
	ProductImagesBucket string

	// ShareBucket holds upload metadata records.
	ShareBucket string

	// ShareDir is the directory prefix for metadata records inside ShareBucket.
	ShareDir string

	// MetricsNamespace is the CloudWatch namespace for custom counters.
	MetricsNamespace string
}

// Load reads configuration from the environment, applying defaults where
// reasonable. The orders queue URL has no sensible default and is required.
func Load() (*Config, error) {
	cfg := &Config{
		Region:              getEnv("AWS_REGION", "us-east-1"),
		EntityTable:         getEnv("RETAIL_TABLE", "retail-entities"),
		OrdersQueueURL:      getEnv("ORDERS_QUEUE_URL", ""),
		PaymentProofsBucket: getEnv("BLOB_PAYMENT_PROOFS", "payment-proofs"),
		ProductImagesBucket: getEnv("BLOB_PRODUCT_IMAGES", "product-images"),
		ShareBucket:         getEnv("CONTRACTS_SHARE", "contracts"),
		ShareDir:            getEnv("FILESHARE_DIR_PAYMENTS", "payments"),
		MetricsNamespace:    getEnv("METRICS_NAMESPACE", "ABCRetail"),
	}

	if cfg.OrdersQueueURL == "" {
		return nil, fmt.Errorf("ORDERS_QUEUE_URL is required")
	}

	return cfg, nil
}

// LoadWorker is Load for the queue worker, which does not publish to the
// queue and therefore does not require the queue URL.
func LoadWorker() *Config {
	return &Config{
		Region:           getEnv("AWS_REGION", "us-east-1"),
		EntityTable:      getEnv("RETAIL_TABLE", "retail-entities"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "ABCRetail"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
