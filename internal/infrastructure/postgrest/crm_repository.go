package postgrest

import (
	"context"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/dealflow-api/internal/domain/entity"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	"github.com/sangkips/dealflow-api/pkg/pagination"
)

type companyRepository struct {
	c *Client
}

func (r *companyRepository) Create(ctx context.Context, company *entity.Company) error {
	prepare(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	if company.PaymentDays == 0 {
		company.PaymentDays = entity.DefaultPaymentDays
	}
	return insert(ctx, r.c, tableCompanies, company, eq("id", company.ID.String()))
}

func (r *companyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	return first[entity.Company](ctx, r.c, tableCompanies, active(eq("id", id.String())))
}

type dealRepository struct {
	c *Client
}

func (r *dealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	prepare(&deal.ID, &deal.CreatedAt, &deal.UpdatedAt)
	return insert(ctx, r.c, tableDeals, deal, eq("company_id", deal.CompanyID.String(), "title", deal.Title))
}

func (r *dealRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Deal, error) {
	return first[entity.Deal](ctx, r.c, tableDeals, active(eq("id", id.String())))
}

func (r *dealRepository) UpdateStage(ctx context.Context, id, stageID uuid.UUID) error {
	_, err := patch[entity.Deal](ctx, r.c, tableDeals, id, map[string]interface{}{
		"stage_id":   stageID,
		"updated_at": time.Now().UTC(),
	})
	return err
}

func (r *dealRepository) ListIDsByStage(ctx context.Context, stageID uuid.UUID) ([]uuid.UUID, error) {
	q := active(eq("stage_id", stageID.String()))
	q.Set("select", "id")
	q.Set("order", "created_at.asc")

	rows, err := find[struct {
		ID uuid.UUID `json:"id"`
	}](ctx, r.c, tableDeals, q)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids, nil
}

type pipelineRepository struct {
	c *Client
}

// Create stores the pipeline row, then each stage row
func (r *pipelineRepository) Create(ctx context.Context, pipeline *entity.Pipeline) error {
	stages := pipeline.Stages
	pipeline.Stages = nil
	prepare(&pipeline.ID, &pipeline.CreatedAt, &pipeline.UpdatedAt)
	if err := insert(ctx, r.c, tablePipelines, pipeline, eq("id", pipeline.ID.String())); err != nil {
		pipeline.Stages = stages
		return err
	}

	for i := range stages {
		stage := &stages[i]
		stage.PipelineID = pipeline.ID
		prepare(&stage.ID, &stage.CreatedAt, &stage.UpdatedAt)
		if err := insert(ctx, r.c, tableStages, stage, eq("id", stage.ID.String())); err != nil {
			pipeline.Stages = stages
			return err
		}
	}
	pipeline.Stages = stages
	return nil
}

func (r *pipelineRepository) GetStage(ctx context.Context, id uuid.UUID) (*entity.Stage, error) {
	return first[entity.Stage](ctx, r.c, tableStages, eq("id", id.String()))
}

func (r *pipelineRepository) ListStages(ctx context.Context, pipelineID *uuid.UUID) ([]entity.Stage, error) {
	q := url.Values{}
	if pipelineID != nil {
		q = eq("pipeline_id", pipelineID.String())
	}
	q.Set("order", "position.asc,id.asc")
	return find[entity.Stage](ctx, r.c, tableStages, q)
}

type projectRepository struct {
	c *Client
}

func (r *projectRepository) Create(ctx context.Context, project *entity.Project) error {
	prepare(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if project.Status == "" {
		project.Status = enum.ProjectStatusActive
	}
	return insert(ctx, r.c, tableProjects, project, eq("deal_id", project.DealID.String()))
}

func (r *projectRepository) GetByDealID(ctx context.Context, dealID uuid.UUID) (*entity.Project, error) {
	q := active(eq("deal_id", dealID.String()))
	q.Set("order", "created_at.asc")
	return first[entity.Project](ctx, r.c, tableProjects, q)
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.ProjectStatus) error {
	_, err := patch[entity.Project](ctx, r.c, tableProjects, id, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC(),
	})
	return err
}

type activityRepository struct {
	c *Client
}

func (r *activityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	prepare(&activity.ID, &activity.CreatedAt, nil)
	return insert(ctx, r.c, tableActivities, activity, eq("id", activity.ID.String()))
}

func (r *activityRepository) ListByDeal(ctx context.Context, dealID uuid.UUID, params *pagination.PaginationParams) ([]entity.Activity, int64, error) {
	params.Validate()
	q := eq("deal_id", dealID.String())
	q.Set("order", "created_at.desc")
	return findCounted[entity.Activity](ctx, r.c, tableActivities, q, params.Offset(), params.PerPage)
}

type idempotencyRepository struct {
	c *Client
}

func (r *idempotencyRepository) GetLive(ctx context.Context, key string, userID uuid.UUID, now time.Time) (*entity.IdempotencyKey, error) {
	q := eq("key", key, "user_id", userID.String())
	q.Set("expires_at", "gt."+now.UTC().Format(time.RFC3339))
	return first[entity.IdempotencyKey](ctx, r.c, tableIdempotencyKeys, q)
}

func (r *idempotencyRepository) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	prepare(&ikey.ID, &ikey.CreatedAt, nil)
	return insert(ctx, r.c, tableIdempotencyKeys, ikey, eq("key", ikey.Key, "user_id", ikey.UserID.String()))
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, before time.Time) error {
	return remove(ctx, r.c, tableIdempotencyKeys, url.Values{
		"expires_at": {"lt." + before.UTC().Format(time.RFC3339)},
	})
}

