package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/internal/domain/repository"
	"go.uber.org/zap"
)

// Stage names the project cascade reacts to
const (
	StageWon  = "Won"
	StageLost = "Lost"
)

// Automation outcomes reported when a deal is left where it is
const (
	ReasonDealNotFound        = "Deal not found"
	ReasonNoApplicableRules   = "No applicable rules"
	ReasonTargetStageNotFound = "Target stage not found in current pipeline"
	ReasonAlreadyInStage      = "Already in target stage"
)

// AutomationResult describes what one trigger did to one deal
type AutomationResult struct {
	DealID      uuid.UUID    `json:"deal_id"`
	Trigger     enum.Trigger `json:"trigger"`
	Updated     bool         `json:"updated"`
	FromStage   string       `json:"from_stage,omitempty"`
	ToStage     string       `json:"to_stage,omitempty"`
	Reason      string       `json:"reason"`
	SideEffects SideEffects  `json:"side_effects,omitempty"`
}

// BatchItem is one deal to automate in a batch
type BatchItem struct {
	DealID  uuid.UUID    `json:"deal_id"`
	Trigger enum.Trigger `json:"trigger"`
	Related any          `json:"-"`
}

// BatchItemResult is the outcome of one batch item. Error is set when the
// item failed.
type BatchItemResult struct {
	DealID  uuid.UUID         `json:"deal_id"`
	Trigger enum.Trigger      `json:"trigger"`
	Result  *AutomationResult `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// BatchResult tallies a batch run
type BatchResult struct {
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Results []BatchItemResult `json:"results"`
}

// DealAutomationService moves deals between pipeline stages in response to
// business events, following an ordered rule table
type DealAutomationService struct {
	dealRepo    repository.DealRepository
	projectRepo repository.ProjectRepository
	resolver    *StageResolver
	activities  *ActivityService
	rules       Rules
	log         *zap.Logger
}

// NewDealAutomationService creates a new deal automation service. A nil
// rules table falls back to DefaultRules.
func NewDealAutomationService(
	dealRepo repository.DealRepository,
	projectRepo repository.ProjectRepository,
	resolver *StageResolver,
	activities *ActivityService,
	log *zap.Logger,
	rules Rules,
) *DealAutomationService {
	if rules == nil {
		rules = DefaultRules()
	}
	return &DealAutomationService{
		dealRepo:    dealRepo,
		projectRepo: projectRepo,
		resolver:    resolver,
		activities:  activities,
		rules:       rules,
		log:         log,
	}
}

// Rules returns the rule table in use
func (s *DealAutomationService) Rules() Rules {
	return s.rules
}

// AutomateDealStage applies the first matching rule for trigger to the deal.
// Inapplicable automation is reported through the result; only store errors
// are returned.
func (s *DealAutomationService) AutomateDealStage(ctx context.Context, trigger enum.Trigger, dealID uuid.UUID, related any) (*AutomationResult, error) {
	result := &AutomationResult{DealID: dealID, Trigger: trigger}

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		result.Reason = ReasonDealNotFound
		return result, nil
	}

	var currentStage string
	name, err := s.resolver.ResolveStageName(ctx, deal.StageID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		currentStage = *name
	}
	pipelineID, err := s.resolver.ResolvePipelineID(ctx, deal.StageID)
	if err != nil {
		return nil, err
	}

	rule := s.rules.Match(trigger, currentStage, deal, related)
	if rule == nil {
		result.Reason = ReasonNoApplicableRules
		return result, nil
	}

	// Never search outside the deal's own pipeline
	if pipelineID == nil {
		result.Reason = ReasonTargetStageNotFound
		return result, nil
	}
	targetID, err := s.resolver.ResolveStageID(ctx, rule.ToStage, pipelineID)
	if err != nil {
		return nil, err
	}
	if targetID == nil {
		result.Reason = ReasonTargetStageNotFound
		return result, nil
	}
	if *targetID == deal.StageID {
		result.Reason = ReasonAlreadyInStage
		return result, nil
	}

	if err := s.dealRepo.UpdateStage(ctx, deal.ID, *targetID); err != nil {
		return nil, err
	}

	result.Updated = true
	result.FromStage = currentStage
	result.ToStage = rule.ToStage
	result.Reason = fmt.Sprintf("Moved by %s rule", trigger)

	fields := []zap.Field{zap.String("deal_id", deal.ID.String()), zap.String("trigger", trigger.String())}
	result.SideEffects.run(s.log, EffectActivityLog, func() error {
		return s.activities.Record(ctx, enum.ActivityStageChanged, &deal.ID, map[string]interface{}{
			"from_stage": result.FromStage,
			"to_stage":   result.ToStage,
			"trigger":    trigger.String(),
			"automated":  true,
		})
	}, fields...)
	result.SideEffects.run(s.log, EffectProjectCascade, func() error {
		return s.cascadeProjectStatus(ctx, deal.ID, rule.ToStage)
	}, fields...)

	s.log.Info("Deal stage automated",
		zap.String("deal_id", deal.ID.String()),
		zap.String("trigger", trigger.String()),
		zap.String("from_stage", result.FromStage),
		zap.String("to_stage", result.ToStage),
	)
	return result, nil
}

// TriggerDealStageAutomation runs AutomateDealStage as a side effect of
// another operation. It never fails: errors and panics are logged.
func (s *DealAutomationService) TriggerDealStageAutomation(ctx context.Context, trigger enum.Trigger, dealID uuid.UUID, related any) {
	if _, err := s.automateSafely(ctx, trigger, dealID, related); err != nil {
		s.log.Warn("Deal stage automation failed",
			zap.String("deal_id", dealID.String()),
			zap.String("trigger", trigger.String()),
			zap.Error(err),
		)
	}
}

// BatchAutomateDealStages automates every item independently. A failing item
// is counted and the batch carries on.
func (s *DealAutomationService) BatchAutomateDealStages(ctx context.Context, items []BatchItem) *BatchResult {
	batch := &BatchResult{Results: make([]BatchItemResult, 0, len(items))}

	for _, item := range items {
		itemResult := BatchItemResult{DealID: item.DealID, Trigger: item.Trigger}

		result, err := s.automateSafely(ctx, item.Trigger, item.DealID, item.Related)
		if err != nil {
			batch.Failed++
			itemResult.Error = err.Error()
			s.log.Warn("Batch automation item failed",
				zap.String("deal_id", item.DealID.String()),
				zap.String("trigger", item.Trigger.String()),
				zap.Error(err),
			)
		} else {
			batch.Success++
			itemResult.Result = result
		}
		batch.Results = append(batch.Results, itemResult)
	}

	s.log.Info("Batch automation finished",
		zap.Int("success", batch.Success),
		zap.Int("failed", batch.Failed),
	)
	return batch
}

// automateSafely turns a panic inside the engine into an error
func (s *DealAutomationService) automateSafely(ctx context.Context, trigger enum.Trigger, dealID uuid.UUID, related any) (result *AutomationResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("automation panic: %v", rec)
		}
	}()
	return s.AutomateDealStage(ctx, trigger, dealID, related)
}

// cascadeProjectStatus closes the deal's project when the deal is won or lost
func (s *DealAutomationService) cascadeProjectStatus(ctx context.Context, dealID uuid.UUID, toStage string) error {
	var status enum.ProjectStatus
	switch {
	case strings.EqualFold(toStage, StageWon):
		status = enum.ProjectStatusCompleted
	case strings.EqualFold(toStage, StageLost):
		status = enum.ProjectStatusCancelled
	default:
		return nil
	}

	project, err := s.projectRepo.GetByDealID(ctx, dealID)
	if err != nil {
		return err
	}
	if project == nil || project.Status == status {
		return nil
	}
	return s.projectRepo.UpdateStatus(ctx, project.ID, status)
}
