package repository

import (
	"context"
	"errors"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStaleLead is returned when a guarded status update finds the lead no
// longer in the expected prior status (a concurrent transition won).
var ErrStaleLead = errors.New("lead was modified concurrently")

// LeadFilter narrows lead listings.
type LeadFilter struct {
	Status     string
	AssignedTo string
	Source     string
}

// LeadRepository defines the interface for data access of Lead entities
type LeadRepository interface {
	Create(ctx context.Context, lead *model.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	List(ctx context.Context, filter LeadFilter, page, limit int) ([]model.Lead, int64, error)
	Update(ctx context.Context, lead *model.Lead) error
	// UpdateStatusGuarded persists a transitioned lead only if its stored
	// status still equals fromStatus. At most one writer per transition;
	// losers get ErrStaleLead and must re-read.
	UpdateStatusGuarded(ctx context.Context, lead *model.Lead, fromStatus string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatuses(ctx context.Context, statuses []string) (int64, error)
	ListOverdueFollowUps(ctx context.Context, terminalStatuses []string) ([]model.Lead, error)
}

type leadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(ctx context.Context, lead *model.Lead) error {
	return GetDB(ctx, r.db).Create(lead).Error
}

func (r *leadRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	var lead model.Lead
	if err := GetDB(ctx, r.db).Preload("Assignee").First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) List(ctx context.Context, filter LeadFilter, page, limit int) ([]model.Lead, int64, error) {
	var leads []model.Lead
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Lead{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filter.AssignedTo)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Assignee").Offset(offset).Limit(limit).Order("created_at DESC").Find(&leads).Error; err != nil {
		return nil, 0, err
	}

	return leads, total, nil
}

func (r *leadRepository) Update(ctx context.Context, lead *model.Lead) error {
	return GetDB(ctx, r.db).Save(lead).Error
}

func (r *leadRepository) UpdateStatusGuarded(ctx context.Context, lead *model.Lead, fromStatus string) error {
	result := GetDB(ctx, r.db).Model(&model.Lead{}).
		Where("id = ? AND status = ?", lead.ID, fromStatus).
		Updates(map[string]interface{}{
			"status":            lead.Status,
			"status_timestamps": lead.StatusTimestamps,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleLead
	}
	return nil
}

func (r *leadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Lead{}).Error
}

func (r *leadRepository) CountByStatuses(ctx context.Context, statuses []string) (int64, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.Lead{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *leadRepository) ListOverdueFollowUps(ctx context.Context, terminalStatuses []string) ([]model.Lead, error) {
	var leads []model.Lead
	err := GetDB(ctx, r.db).
		Where("follow_up_date IS NOT NULL AND follow_up_date < NOW()").
		Where("status NOT IN ?", terminalStatuses).
		Order("follow_up_date ASC").
		Find(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}
