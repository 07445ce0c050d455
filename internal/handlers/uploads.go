package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MachogaKhumo/CLDV6212POE/internal/uploads"
)

// registerUploadRoutes wires the proof-of-payment upload endpoint.
func registerUploadRoutes(r *gin.Engine, coordinator *uploads.Coordinator) {
	r.POST("/uploads/proof-of-payment", func(c *gin.Context) {
		if !isMultipart(c) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "expected_multipart_form_data"})
			return
		}

		file, header, err := c.Request.FormFile("ProofOfPayment")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "proof_of_payment_file_required"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil || len(data) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "proof_of_payment_file_required"})
			return
		}

		res, err := coordinator.SaveProofOfPayment(c.Request.Context(), uploads.ProofOfPayment{
			FileName:     header.Filename,
			Data:         data,
			OrderID:      c.PostForm("OrderID"),
			CustomerName: c.PostForm("CustomerName"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "upload_failed"})
			return
		}

		c.JSON(http.StatusOK, res)
	})
}
