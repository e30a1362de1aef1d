package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/dealflow-api/internal/application/service"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/internal/presentation/http/dto/request"
	"github.com/sangkips/dealflow-api/internal/presentation/http/dto/response"
)

// DealHandler handles deal automation and deal-scoped document requests
type DealHandler struct {
	automation *service.DealAutomationService
	conversion *service.ConversionService
	activities *service.ActivityService
}

// NewDealHandler creates a new deal handler
func NewDealHandler(automation *service.DealAutomationService, conversion *service.ConversionService, activities *service.ActivityService) *DealHandler {
	return &DealHandler{
		automation: automation,
		conversion: conversion,
		activities: activities,
	}
}

// CreateQuote handles drafting a quote from a deal
// @Summary Create Quote From Deal
// @Tags deals
// @Security BearerAuth
// @Produce json
// @Param id path string true "Deal ID"
// @Success 201 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /deals/{id}/quote [post]
func (h *DealHandler) CreateQuote(c *gin.Context) {
	dealID, ok := pathID(c, "deal")
	if !ok {
		return
	}

	result, err := h.conversion.CreateQuoteFromDeal(c.Request.Context(), dealID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Quote created successfully", result)
}

// Automate handles firing one trigger for a deal
// @Summary Automate Deal Stage
// @Tags deals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body request.AutomationRequest true "Trigger"
// @Success 200 {object} response.APIResponse
// @Router /deals/{id}/automation [post]
func (h *DealHandler) Automate(c *gin.Context) {
	dealID, ok := pathID(c, "deal")
	if !ok {
		return
	}

	var req request.AutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	trigger := enum.Trigger(req.Trigger)
	if !trigger.IsValid() {
		response.BadRequest(c, "Unknown trigger: "+req.Trigger)
		return
	}

	result, err := h.automation.AutomateDealStage(c.Request.Context(), trigger, dealID, nil)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result.Reason, result)
}

// Activities handles listing a deal's activity log
// @Summary List Deal Activities
// @Tags deals
// @Security BearerAuth
// @Produce json
// @Param id path string true "Deal ID"
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Success 200 {object} response.APIResponse
// @Router /deals/{id}/activities [get]
func (h *DealHandler) Activities(c *gin.Context) {
	dealID, ok := pathID(c, "deal")
	if !ok {
		return
	}

	result, err := h.activities.ListByDeal(c.Request.Context(), dealID, pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Activities retrieved successfully", result)
}

// Batch handles automating many deals in one request. Items run in order and
// a failed item does not stop the rest.
// @Summary Batch Automate Deal Stages
// @Tags automation
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.BatchAutomationRequest true "Items"
// @Success 200 {object} response.APIResponse
// @Router /automation/batch [post]
func (h *DealHandler) Batch(c *gin.Context) {
	var req request.BatchAutomationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	items := make([]service.BatchItem, len(req.Items))
	for i, item := range req.Items {
		trigger := enum.Trigger(item.Trigger)
		if !trigger.IsValid() {
			response.BadRequest(c, "Unknown trigger: "+item.Trigger)
			return
		}
		items[i] = service.BatchItem{DealID: item.DealID, Trigger: trigger}
	}

	result := h.automation.BatchAutomateDealStages(c.Request.Context(), items)
	response.OK(c, "Batch processed", result)
}
