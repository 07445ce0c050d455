package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/MachogaKhumo/CLDV6212POE/internal/config"
	"github.com/MachogaKhumo/CLDV6212POE/internal/store"
	"github.com/MachogaKhumo/CLDV6212POE/internal/uploads"
	"github.com/MachogaKhumo/CLDV6212POE/internal/validation"
)

// registerProductRoutes wires product CRUD. Create and update accept either
// JSON or multipart/form-data; a multipart ImageFile field is uploaded to
// the product-images bucket before the entity write.
func registerProductRoutes(r *gin.Engine, v *validatorv10.Validate, entities *store.Store, coordinator *uploads.Coordinator, app *config.Config) {
	r.GET("/products", func(c *gin.Context) {
		products := []store.Product{}
		if err := entities.List(c.Request.Context(), store.CollectionProduct, &products); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
			return
		}
		c.JSON(http.StatusOK, products)
	})

	r.GET("/products/:id", func(c *gin.Context) {
		var p store.Product
		err := entities.Get(c.Request.Context(), store.CollectionProduct, c.Param("id"), &p)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	r.POST("/products", func(c *gin.Context) {
		ctx := c.Request.Context()

		var p store.Product
		if isMultipart(c) {
			form, ok := productFromForm(c)
			if !ok {
				return
			}
			p = form
			if url, ok := uploadFormImage(c, coordinator, app); ok && url != "" {
				p.ImageURL = url
			} else if !ok {
				return
			}
		} else {
			var req validation.ProductRequest
			if err := validation.BindAndValidate(c, &req, v); err != nil {
				return
			}
			p = store.Product{
				ProductName:    req.ProductName,
				Description:    req.Description,
				Price:          req.Price,
				AvailableStock: req.AvailableStock,
				ImageURL:       req.ImageURL,
			}
		}

		if p.ProductName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_name_required"})
			return
		}

		if err := entities.Create(ctx, &p); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "create_failed"})
			return
		}
		c.JSON(http.StatusCreated, p)
	})

	r.PUT("/products/:id", func(c *gin.Context) {
		ctx := c.Request.Context()

		var p store.Product
		err := entities.Get(ctx, store.CollectionProduct, c.Param("id"), &p)
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
			return
		}

		if isMultipart(c) {
			applyFormFields(c, &p)
			if url, ok := uploadFormImage(c, coordinator, app); ok && url != "" {
				p.ImageURL = url
			} else if !ok {
				return
			}
		} else {
			var req validation.ProductRequest
			if err := validation.BindAndValidate(c, &req, v); err != nil {
				return
			}
			p.ProductName = req.ProductName
			p.Description = req.Description
			p.Price = req.Price
			p.AvailableStock = req.AvailableStock
			if req.ImageURL != "" {
				p.ImageURL = req.ImageURL
			}
		}

		if err := entities.Update(ctx, &p, p.ETag); err != nil {
			if errors.Is(err, store.ErrConcurrencyConflict) {
				c.JSON(http.StatusConflict, gin.H{"error": "concurrent_modification"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update_failed"})
			return
		}
		c.JSON(http.StatusOK, p)
	})

	r.DELETE("/products/:id", func(c *gin.Context) {
		if err := entities.Delete(c.Request.Context(), store.CollectionProduct, c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete_failed"})
			return
		}
		c.Status(http.StatusNoContent)
	})
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// productFromForm builds a product from multipart text fields. Writes the
// error response itself when the form cannot be parsed.
func productFromForm(c *gin.Context) (store.Product, bool) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_multipart_form"})
		return store.Product{}, false
	}
	price, _ := strconv.ParseFloat(c.PostForm("Price"), 64)
	stock, _ := strconv.Atoi(c.PostForm("AvailableStock"))
	return store.Product{
		ProductName:    c.PostForm("ProductName"),
		Description:    c.PostForm("Description"),
		Price:          price,
		AvailableStock: stock,
		ImageURL:       c.PostForm("ImageURL"),
	}, true
}

// applyFormFields overlays only the multipart fields that were supplied.
func applyFormFields(c *gin.Context, p *store.Product) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return
	}
	form := c.Request.MultipartForm
	if form == nil {
		return
	}
	if vals, ok := form.Value["ProductName"]; ok && len(vals) > 0 {
		p.ProductName = vals[0]
	}
	if vals, ok := form.Value["Description"]; ok && len(vals) > 0 {
		p.Description = vals[0]
	}
	if vals, ok := form.Value["Price"]; ok && len(vals) > 0 {
		if price, err := strconv.ParseFloat(vals[0], 64); err == nil {
			p.Price = price
		}
	}
	if vals, ok := form.Value["AvailableStock"]; ok && len(vals) > 0 {
		if stock, err := strconv.Atoi(vals[0]); err == nil {
			p.AvailableStock = stock
		}
	}
	if vals, ok := form.Value["ImageURL"]; ok && len(vals) > 0 {
		p.ImageURL = vals[0]
	}
}

// uploadFormImage uploads the optional ImageFile field. Returns ("", true)
// when no file was attached; (url, true) on success; ("", false) after
// writing an error response.
func uploadFormImage(c *gin.Context, coordinator *uploads.Coordinator, app *config.Config) (string, bool) {
	file, header, err := c.Request.FormFile("ImageFile")
	if err != nil {
		return "", true // no image attached
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		return "", true
	}

	url, err := coordinator.UploadImage(c.Request.Context(), app.ProductImagesBucket, header.Filename, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "image_upload_failed"})
		return "", false
	}
	return url, true
}
