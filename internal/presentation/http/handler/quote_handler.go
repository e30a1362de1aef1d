package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/dealflow-api/internal/application/service"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dealflow-api/internal/presentation/http/dto/response"
)

// QuoteHandler handles quote-related HTTP requests
type QuoteHandler struct {
	quoteService *service.QuoteService
	conversion   *service.ConversionService
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(quoteService *service.QuoteService, conversion *service.ConversionService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService, conversion: conversion}
}

// Create handles creating a quote with explicit lines
// @Summary Create Quote
// @Tags quotes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.CreateQuoteRequest true "Quote data"
// @Success 201 {object} response.APIResponse
// @Router /quotes [post]
func (h *QuoteHandler) Create(c *gin.Context) {
	var req request.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	issueDate, err := parseOptionalDate(req.IssueDate)
	if err != nil {
		response.BadRequest(c, "Invalid issue_date. Use YYYY-MM-DD")
		return
	}
	validUntil, err := parseOptionalDate(req.ValidUntil)
	if err != nil {
		response.BadRequest(c, "Invalid valid_until. Use YYYY-MM-DD")
		return
	}

	lines := make([]service.LineInput, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = service.LineInput{
			Description: line.Description,
			SKU:         line.SKU,
			Qty:         line.Qty,
			UnitMinor:   line.UnitMinor,
			TaxRatePct:  line.TaxRatePct,
			DiscountPct: line.DiscountPct,
		}
	}

	result, err := h.quoteService.CreateQuote(c.Request.Context(), &service.CreateQuoteInput{
		CompanyID:  req.CompanyID,
		ContactID:  req.ContactID,
		DealID:     req.DealID,
		Currency:   req.Currency,
		IssueDate:  issueDate,
		ValidUntil: validUntil,
		Notes:      req.Notes,
		Lines:      lines,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quote created successfully", result)
}

// Get handles getting a single quote
// @Summary Get Quote
// @Tags quotes
// @Security BearerAuth
// @Produce json
// @Param id path string true "Quote ID"
// @Success 200 {object} response.APIResponse
// @Router /quotes/{id} [get]
func (h *QuoteHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}

	quote, err := h.quoteService.GetQuote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote retrieved successfully", quote)
}

// UpdateStatus handles moving a quote to another status
func (h *QuoteHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}

	var req request.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.quoteService.UpdateQuoteStatus(c.Request.Context(), id, enum.QuoteStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote status updated", result)
}

// Convert handles turning a quote into an order. Converting twice returns
// the order created the first time.
func (h *QuoteHandler) Convert(c *gin.Context) {
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}

	result, err := h.conversion.EnsureOrderForQuote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Existing {
		response.OK(c, "Order already exists for quote", result)
		return
	}
	response.Created(c, "Order created from quote", result)
}

// Delete handles deleting a quote
func (h *QuoteHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "quote")
	if !ok {
		return
	}

	if err := h.quoteService.DeleteQuote(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
