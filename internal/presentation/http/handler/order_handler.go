package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/dealflow-api/internal/application/service"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dealflow-api/internal/presentation/http/dto/response"
)

// OrderHandler handles order-related HTTP requests
type OrderHandler struct {
	orderService *service.OrderService
	conversion   *service.ConversionService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, conversion *service.ConversionService) *OrderHandler {
	return &OrderHandler{orderService: orderService, conversion: conversion}
}

// Get handles getting a single order with its lines
// @Summary Get Order
// @Tags orders
// @Security BearerAuth
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} response.APIResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order retrieved successfully", order)
}

// UpdateStatus handles moving an order to another status
// @Summary Update Order Status
// @Tags orders
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body request.UpdateStatusRequest true "New status"
// @Success 200 {object} response.APIResponse
// @Router /orders/{id}/status [put]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}

	var req request.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	result, err := h.orderService.UpdateOrderStatus(c.Request.Context(), id, enum.OrderStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Order status updated", result)
}

// Convert handles creating the invoice for an order
func (h *OrderHandler) Convert(c *gin.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}

	result, err := h.conversion.EnsureInvoiceForOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Existing {
		response.OK(c, "Invoice already exists for order", result)
		return
	}
	response.Created(c, "Invoice created from order", result)
}
