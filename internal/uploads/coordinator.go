package uploads

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/MachogaKhumo/CLDV6212POE/internal/aws"
)

// Coordinator writes proof-of-payment blobs and their side-car metadata
// records. The blob goes to ProofsBucket; the metadata text record goes to
// ShareBucket under the ShareDir prefix. The two writes are not atomic: the
// metadata write only runs after the blob write succeeds, and a metadata
// failure after a successful blob write leaves a dangling blob behind.
type Coordinator struct {
	S3           aws.S3API
	ProofsBucket string
	ShareBucket  string
	ShareDir     string
	Region       string

	nowFunc   func() time.Time
	randomHex func() string
}

// NewCoordinator returns a Coordinator over the given buckets.
func NewCoordinator(client aws.S3API, proofsBucket, shareBucket, shareDir, region string) *Coordinator {
	return &Coordinator{
		S3:           client,
		ProofsBucket: proofsBucket,
		ShareBucket:  shareBucket,
		ShareDir:     shareDir,
		Region:       region,
		nowFunc:      time.Now,
		randomHex:    func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
}

// ProofOfPayment is a validated multipart submission.
type ProofOfPayment struct {
	FileName     string
	Data         []byte
	OrderID      string
	CustomerName string
}

// UploadResult reports where the blob landed.
type UploadResult struct {
	FileName string `json:"fileName"`
	BlobURL  string `json:"blobUrl"`
}

// SaveProofOfPayment uploads the binary payload and then writes the metadata
// record. If the blob write fails the metadata write is never attempted.
func (c *Coordinator) SaveProofOfPayment(ctx context.Context, in ProofOfPayment) (*UploadResult, error) {
	blobName := fmt.Sprintf("%s-%s", c.randomHex(), in.FileName)

	blobURL, err := c.putBlob(ctx, c.ProofsBucket, blobName, in.Data)
	if err != nil {
		return nil, fmt.Errorf("upload proof blob: %w", err)
	}

	meta := c.metadataRecord(in.OrderID, in.CustomerName, blobURL)
	metaKey := c.ShareDir + "/" + blobName + ".meta.txt"
	if err := c.ensureBucket(ctx, c.ShareBucket); err != nil {
		return nil, fmt.Errorf("ensure share bucket: %w", err)
	}
	_, err = c.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &c.ShareBucket,
		Key:         &metaKey,
		Body:        bytes.NewReader([]byte(meta)),
		ContentType: awsString("text/plain; charset=utf-8"),
	})
	if err != nil {
		// the blob exists but its metadata does not; reported as a failure
		log.Printf("[uploads] metadata write failed after blob %s: %v", blobName, err)
		return nil, fmt.Errorf("write metadata record: %w", err)
	}

	return &UploadResult{FileName: blobName, BlobURL: blobURL}, nil
}

// UploadImage stores a product image blob and returns its address. Shares
// the blob naming scheme with proof uploads.
func (c *Coordinator) UploadImage(ctx context.Context, bucket, fileName string, data []byte) (string, error) {
	blobName := fmt.Sprintf("%s-%s", c.randomHex(), fileName)
	return c.putBlob(ctx, bucket, blobName, data)
}

func (c *Coordinator) putBlob(ctx context.Context, bucket, key string, data []byte) (string, error) {
	if err := c.ensureBucket(ctx, bucket); err != nil {
		return "", fmt.Errorf("ensure bucket %s: %w", bucket, err)
	}
	_, err := c.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return c.blobURL(bucket, key), nil
}

// ensureBucket creates the bucket when missing; repeat calls are no-ops.
func (c *Coordinator) ensureBucket(ctx context.Context, bucket string) error {
	_, err := c.S3.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &bucket})
	if err != nil {
		var owned *s3types.BucketAlreadyOwnedByYou
		var exists *s3types.BucketAlreadyExists
		if errors.As(err, &owned) || errors.As(err, &exists) {
			return nil
		}
		return err
	}
	return nil
}

func (c *Coordinator) blobURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, c.Region, key)
}

// metadataRecord composes the newline-separated Key: value side-car record.
func (c *Coordinator) metadataRecord(orderID, customerName, blobURL string) string {
	return fmt.Sprintf("UploadedAtUtc: %s\nOrderId: %s\nCustomerName: %s\nBlobUrl: %s",
		c.nowFunc().UTC().Format(time.RFC3339Nano), orderID, customerName, blobURL)
}

func awsString(s string) *string { return &s }
