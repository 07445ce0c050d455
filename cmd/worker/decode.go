package main

import (
	"encoding/json"
	"errors"

	"github.com/MachogaKhumo/CLDV6212POE/internal/store"
	"github.com/MachogaKhumo/CLDV6212POE/internal/validation"
)

// errUnknownShape marks a poison message: the body matched neither the
// canonical order shape nor the submission-request shape.
var errUnknownShape = errors.New("message matches no known order shape")

// decodeOrderMessage tolerantly decodes a queue message body. The canonical
// entity shape is tried first, discriminated by a non-empty id; failing
// that, the lighter submission-request shape is synthesized into an order.
// Field matching is case-insensitive per encoding/json.
func decodeOrderMessage(body []byte) (*store.Order, error) {
	var o store.Order
	if err := json.Unmarshal(body, &o); err == nil &&
		o.ID != "" && o.CustomerID != "" && o.ProductID != "" {
		return &o, nil
	}

	var req validation.SubmitOrderRequest
	if err := json.Unmarshal(body, &req); err == nil &&
		req.CustomerID != "" && req.ProductID != "" && req.Quantity > 0 {
		return &store.Order{
			CustomerID: req.CustomerID,
			ProductID:  req.ProductID,
			Quantity:   req.Quantity,
			Details:    req.Details,
		}, nil
	}

	return nil, errUnknownShape
}
