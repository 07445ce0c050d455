package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Collection tags. The tag doubles as the partition key, so every entity is
// addressed by the pair (collection, id).
const (
	CollectionCustomer = "Customer"
	CollectionProduct  = "Product"
	CollectionOrder    = "Order"
)

// Order statuses. Admin-entered orders walk Pending -> Processing ->
// Completed|Cancelled; orders materialized from the queue land directly in
// Processed.
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusProcessed  = "Processed"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// ETagAny is the wildcard concurrency token: an update carrying it skips the
// optimistic-lock check.
const ETagAny = "*"

// Meta carries the key and the store-managed fields shared by all entities.
// The store assigns ID (when blank), ETag and UpdatedAt on every write.
type Meta struct {
	Collection string    `json:"collection,omitempty" dynamodbav:"collection"`
	ID         string    `json:"id,omitempty" dynamodbav:"id"`
	ETag       string    `json:"etag,omitempty" dynamodbav:"etag"`
	UpdatedAt  time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

func (m *Meta) meta() *Meta { return m }

// Entity is implemented by all storable types via an embedded Meta.
type Entity interface {
	meta() *Meta

	// CollectionTag returns the canonical collection for the concrete type.
	CollectionTag() string
}

// Customer is a registered shopper. Username is informally unique; the store
// does not enforce it.
type Customer struct {
	Meta
	Name            string `json:"name,omitempty" dynamodbav:"name"`
	Username        string `json:"username,omitempty" dynamodbav:"username"`
	Email           string `json:"email,omitempty" dynamodbav:"email"`
	ShippingAddress string `json:"shippingAddress,omitempty" dynamodbav:"shipping_address"`
}

func (*Customer) CollectionTag() string { return CollectionCustomer }

// Product is a catalog item. ImageURL points into the blob store when an
// image has been uploaded.
type Product struct {
	Meta
	ProductName    string  `json:"productName,omitempty" dynamodbav:"product_name"`
	Description    string  `json:"description,omitempty" dynamodbav:"description"`
	Price          float64 `json:"price" dynamodbav:"price"`
	AvailableStock int     `json:"availableStock" dynamodbav:"available_stock"`
	ImageURL       string  `json:"imageUrl,omitempty" dynamodbav:"image_url"`
}

func (*Product) CollectionTag() string { return CollectionProduct }

// Order references a customer and a product. UnitPrice and TotalPrice are
// snapshots captured at order time and never recomputed, so later price
// changes do not rewrite history. Once persisted, only Status and Details
// are mutated.
type Order struct {
	Meta
	CustomerID string    `json:"customerId,omitempty" dynamodbav:"customer_id"`
	ProductID  string    `json:"productId,omitempty" dynamodbav:"product_id"`
	Quantity   int       `json:"quantity" dynamodbav:"quantity"`
	Details    string    `json:"details,omitempty" dynamodbav:"details"`
	Status     string    `json:"status,omitempty" dynamodbav:"status"`
	OrderDate  time.Time `json:"orderDate" dynamodbav:"order_date"`
	UnitPrice  float64   `json:"unitPrice,omitempty" dynamodbav:"unit_price,omitempty"`
	TotalPrice float64   `json:"totalPrice,omitempty" dynamodbav:"total_price,omitempty"`
}

func (*Order) CollectionTag() string { return CollectionOrder }

// statusNext lists the forward transitions for each order status.
var statusNext = map[string][]string{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
	StatusProcessed:  {StatusCompleted, StatusCancelled},
}

// ValidStatusTransition reports whether from -> to is a forward move in the
// order lifecycle. Admin overrides bypass this check at the call site.
func ValidStatusTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range statusNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NewID mints a globally-unique entity id.
func NewID() string { return uuid.NewString() }

// newETag mints an opaque concurrency token. Compact hex keeps the attribute
// small.
func newETag() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }
