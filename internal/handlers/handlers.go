package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MachogaKhumo/CLDV6212POE/internal/aws"
	"github.com/MachogaKhumo/CLDV6212POE/internal/config"
	"github.com/MachogaKhumo/CLDV6212POE/internal/store"
	"github.com/MachogaKhumo/CLDV6212POE/internal/uploads"
	"github.com/MachogaKhumo/CLDV6212POE/internal/validation"
)

// HandlerConfig groups dependencies for the HTTP surface.
type HandlerConfig struct {
	DynamoDBClient aws.DynamoDBAPI
	SQSClient      aws.SQSAPI
	S3Client       aws.S3API
	App            *config.Config
}

// RegisterRoutes wires up the retail API.
func RegisterRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New()
	entities := store.NewStore(cfg.DynamoDBClient, cfg.App.EntityTable)
	publisher := aws.NewPublisher(cfg.SQSClient, cfg.App.OrdersQueueURL)
	coordinator := uploads.NewCoordinator(cfg.S3Client,
		cfg.App.PaymentProofsBucket, cfg.App.ShareBucket, cfg.App.ShareDir, cfg.App.Region)

	registerOrderRoutes(r, v, entities, publisher)
	registerCustomerRoutes(r, v, entities)
	registerProductRoutes(r, v, entities, coordinator, cfg.App)
	registerUploadRoutes(r, coordinator)
}
