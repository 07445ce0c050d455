package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/MachogaKhumo/CLDV6212POE/internal/aws"
	"github.com/MachogaKhumo/CLDV6212POE/internal/store"
	"github.com/MachogaKhumo/CLDV6212POE/internal/validation"
)

// registerOrderRoutes wires the order submission gateway and the order read
// surface. Submission only touches the queue; the entity is created
// asynchronously by the worker.
func registerOrderRoutes(r *gin.Engine, v *validatorv10.Validate, entities *store.Store, publisher *aws.Publisher) {
	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.SubmitOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		payload, err := json.Marshal(req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "serialize_failed"})
			return
		}

		attrs := map[string]string{
			"customer_id":    req.CustomerID,
			"product_id":     req.ProductID,
			"correlation_id": c.GetHeader("X-Request-Id"),
		}
		if err := publisher.Send(ctx, string(payload), attrs); err != nil {
			log.Printf("[orders] enqueue failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "enqueue_failed"})
			return
		}

		// the order does not exist yet, so there is no entity to return
		c.Status(http.StatusAccepted)
	})

	r.GET("/orders", func(c *gin.Context) {
		orders := []store.Order{}
		if err := entities.List(c.Request.Context(), store.CollectionOrder, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
			return
		}
		c.JSON(http.StatusOK, orders)
	})

	r.GET("/orders/:id", func(c *gin.Context) {
		var o store.Order
		err := entities.Get(c.Request.Context(), store.CollectionOrder, c.Param("id"), &o)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
			return
		}
		c.JSON(http.StatusOK, o)
	})

	// Only status and details are mutable once an order is persisted. Status
	// moves forward through the lifecycle unless override=true is passed.
	r.PUT("/orders/:id", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.OrderUpdateRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		var o store.Order
		err := entities.Get(ctx, store.CollectionOrder, c.Param("id"), &o)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
			return
		}

		override := c.Query("override") == "true"
		if !override && !store.ValidStatusTransition(o.Status, req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "invalid_status_transition",
				"from":  o.Status,
				"to":    req.Status,
			})
			return
		}

		o.Status = req.Status
		if req.Details != "" {
			o.Details = req.Details
		}

		// token comes from the stored value just read: last write wins per request
		if err := entities.Update(ctx, &o, o.ETag); err != nil {
			if errors.Is(err, store.ErrConcurrencyConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "concurrent_modification"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
			return
		}
		c.JSON(http.StatusOK, o)
	})

	r.DELETE("/orders/:id", func(c *gin.Context) {
		if err := entities.Delete(c.Request.Context(), store.CollectionOrder, c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}
