package validation

// SubmitOrderRequest is the payload for POST /orders. Referential existence
// of the customer and product is deliberately not checked here; the queue
// consumer owns that concern.
type SubmitOrderRequest struct {
	CustomerID string `json:"customerId" validate:"required"`
	ProductID  string `json:"productId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gt=0"`
	Details    string `json:"details,omitempty"`
}

// CustomerRequest is the payload for creating or replacing a customer.
type CustomerRequest struct {
	Name            string `json:"name" validate:"required"`
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	ShippingAddress string `json:"shippingAddress,omitempty"`
}

// ProductRequest is the JSON payload for creating or replacing a product.
// Multipart product submissions bypass this and are parsed field by field.
type ProductRequest struct {
	ProductName    string  `json:"productName" validate:"required"`
	Description    string  `json:"description,omitempty"`
	Price          float64 `json:"price" validate:"gte=0"`
	AvailableStock int     `json:"availableStock" validate:"gte=0"`
	ImageURL       string  `json:"imageUrl,omitempty"`
}

// OrderUpdateRequest is the payload for PUT /orders/:id. Only status and
// details are mutable after an order is persisted.
type OrderUpdateRequest struct {
	Status  string `json:"status" validate:"required"`
	Details string `json:"details,omitempty"`
}
