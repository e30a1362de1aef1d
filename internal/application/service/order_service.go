package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/pkg/apperror"
	"go.uber.org/zap"
)

// OrderService handles order-related operations
type OrderService struct {
	orderRepo  repository.OrderRepository
	conversion *ConversionService
	automation *DealAutomationService
	activities *ActivityService
	log        *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store *repository.Store,
	conversion *ConversionService,
	automation *DealAutomationService,
	activities *ActivityService,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:  store.Orders,
		conversion: conversion,
		automation: automation,
		activities: activities,
		log:        log,
	}
}

// GetOrder retrieves an order with its lines
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return s.conversion.loadOrder(ctx, id)
}

// UpdateOrderStatus moves an order to status. Invoicing creates the invoice
// for the order; cancelling fires order_cancelled.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus) (*StatusChangeResult, error) {
	if !status.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid order status")
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	result := &StatusChangeResult{ID: order.ID, Status: status.String()}
	if order.Status == status {
		// Retrying invoiced finishes an invoice creation that failed earlier
		if status == enum.OrderStatusInvoiced {
			conversion, err := s.conversion.EnsureInvoiceForOrder(ctx, order.ID)
			if err != nil {
				return nil, err
			}
			result.Conversion = conversion
		}
		return result, nil
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, apperror.NewBadRequestError(fmt.Sprintf("Cannot change order status from %s to %s", order.Status, status))
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, err
	}
	result.Changed = true
	previous := order.Status
	order.Status = status

	fields := []zap.Field{zap.String("order_id", order.ID.String()), zap.String("status", status.String())}
	result.SideEffects.run(s.log, EffectActivityLog, func() error {
		return s.activities.Record(ctx, enum.ActivityOrderStatusChanged, order.DealID, map[string]interface{}{
			"order_id":     order.ID.String(),
			"order_number": order.Number,
			"from_status":  previous.String(),
			"to_status":    status.String(),
		})
	}, fields...)

	switch status {
	case enum.OrderStatusInvoiced:
		conversion, err := s.conversion.EnsureInvoiceForOrder(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		result.Conversion = conversion
	case enum.OrderStatusCancelled:
		if order.DealID != nil {
			result.SideEffects.run(s.log, EffectStageAutomation, func() error {
				_, err := s.automation.automateSafely(ctx, enum.TriggerOrderCancelled, *order.DealID, order)
				return err
			}, fields...)
		}
	}

	return result, nil
}
