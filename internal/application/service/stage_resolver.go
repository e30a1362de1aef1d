package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/repository"
)

// StageResolver translates between stage names and ids. Automation rules
// address stages by name so that one rule table works for every pipeline.
type StageResolver struct {
	pipelineRepo repository.PipelineRepository
}

// NewStageResolver creates a new stage resolver
func NewStageResolver(pipelineRepo repository.PipelineRepository) *StageResolver {
	return &StageResolver{pipelineRepo: pipelineRepo}
}

// ResolveStageID returns the id of the first stage whose name equals name,
// ignoring case. A non-nil pipelineID restricts the search to that pipeline.
// No match yields nil without an error.
func (r *StageResolver) ResolveStageID(ctx context.Context, name string, pipelineID *uuid.UUID) (*uuid.UUID, error) {
	stages, err := r.pipelineRepo.ListStages(ctx, pipelineID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	for _, stage := range stages {
		if strings.EqualFold(stage.Name, name) {
			id := stage.ID
			return &id, nil
		}
	}
	return nil, nil
}

// ResolveStageName returns the name of a stage, or nil if it does not exist
func (r *StageResolver) ResolveStageName(ctx context.Context, stageID uuid.UUID) (*string, error) {
	stage, err := r.pipelineRepo.GetStage(ctx, stageID)
	if err != nil || stage == nil {
		return nil, err
	}
	return &stage.Name, nil
}

// ResolvePipelineID returns the pipeline a stage belongs to, or nil
func (r *StageResolver) ResolvePipelineID(ctx context.Context, stageID uuid.UUID) (*uuid.UUID, error) {
	stage, err := r.pipelineRepo.GetStage(ctx, stageID)
	if err != nil || stage == nil {
		return nil, err
	}
	return &stage.PipelineID, nil
}
