package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/MachogaKhumo/CLDV6212POE/internal/store"
	"github.com/MachogaKhumo/CLDV6212POE/internal/validation"
)

func registerCustomerRoutes(r *gin.Engine, v *validatorv10.Validate, entities *store.Store) {
	r.GET("/customers", func(c *gin.Context) {
		customers := []store.Customer{}
		if err := entities.List(c.Request.Context(), store.CollectionCustomer, &customers); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
			return
		}
		c.JSON(http.StatusOK, customers)
	})

	r.GET("/customers/:id", func(c *gin.Context) {
		var cust store.Customer
		err := entities.Get(c.Request.Context(), store.CollectionCustomer, c.Param("id"), &cust)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer_not_found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
			return
		}
		c.JSON(http.StatusOK, cust)
	})

	r.POST("/customers", func(c *gin.Context) {
		var req validation.CustomerRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		cust := store.Customer{
			Name:            req.Name,
			Username:        req.Username,
			Email:           req.Email,
			ShippingAddress: req.ShippingAddress,
		}
		if err := entities.Create(c.Request.Context(), &cust); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
			return
		}
		c.JSON(http.StatusCreated, cust)
	})

	// Replace semantics. The concurrency token is taken from the stored
	// value, not the caller, so concurrent editors race last-write-wins.
	r.PUT("/customers/:id", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CustomerRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		var cust store.Customer
		err := entities.Get(ctx, store.CollectionCustomer, c.Param("id"), &cust)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "customer_not_found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
			return
		}

		cust.Name = req.Name
		cust.Username = req.Username
		cust.Email = req.Email
		cust.ShippingAddress = req.ShippingAddress

		if err := entities.Update(ctx, &cust, cust.ETag); err != nil {
			if errors.Is(err, store.ErrConcurrencyConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "concurrent_modification"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
			return
		}
		c.JSON(http.StatusOK, cust)
	})

	r.DELETE("/customers/:id", func(c *gin.Context) {
		if err := entities.Delete(c.Request.Context(), store.CollectionCustomer, c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}
