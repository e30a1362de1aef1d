package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/dealflow-api/internal/application/service"
	"github.com/sangkips/dealflow-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dealflow-api/internal/presentation/http/dto/response"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Get handles getting an invoice with its derived status
// @Summary Get Invoice
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.APIResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// RecordPayment handles registering a payment against an invoice
// @Summary Record Payment
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param request body request.RecordPaymentRequest true "Payment"
// @Success 200 {object} response.APIResponse
// @Router /invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, ok := pathID(c, "invoice")
	if !ok {
		return
	}

	var req request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.invoiceService.RecordPayment(c.Request.Context(), id, req.AmountMinor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded", result)
}
