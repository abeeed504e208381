package service

import (
	"context"
	"encoding/json"
	"fmt"

	"crm-backend/internal/model"
	"crm-backend/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type AuditLogResponse struct {
	ID         string      `json:"id"`
	UserID     *string     `json:"user_id"`
	UserName   string      `json:"user_name,omitempty"`
	Action     string      `json:"action"`
	EntityID   string      `json:"entity_id"`
	EntityName string      `json:"entity_name,omitempty"`
	Details    interface{} `json:"details"`
	CreatedAt  string      `json:"created_at"`
}

// --- Interface ---

type AuditService interface {
	// Record writes an audit row. Best-effort: failures are logged, never
	// propagated, so business operations don't fail on audit plumbing.
	Record(ctx context.Context, userID, action, entityID, entityName string, details interface{})
	GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) AuditService {
	return &auditService{db: db}
}

// --- Implementation ---

func (s *auditService) Record(ctx context.Context, userID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    detailsJSON,
	}

	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		logger.Get().WithError(err).WithField("action", action).Warn("failed to write audit log")
	}
}

func (s *auditService) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []model.AuditLog
	offset := (page - 1) * limit
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		entry := AuditLogResponse{
			ID:         l.ID.String(),
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			CreatedAt:  l.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if l.UserID != nil {
			id := l.UserID.String()
			entry.UserID = &id
		}
		if l.User != nil {
			entry.UserName = l.User.Name
		}
		if len(l.Details) > 0 {
			var details interface{}
			if err := json.Unmarshal(l.Details, &details); err == nil {
				entry.Details = details
			}
		}
		res = append(res, entry)
	}

	return res, total, nil
}
