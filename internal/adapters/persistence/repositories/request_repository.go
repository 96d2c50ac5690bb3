package repositories

import (
	"context"

	"campus-rms/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// requestRepository implements RequestRepository interface
type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

// Create creates a new request
func (r *requestRepository) Create(ctx context.Context, request *models.Request) error {
	return translate(r.db.WithContext(ctx).Create(request).Error)
}

// GetByRequestID gets a request by external ID
func (r *requestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.Request, error) {
	var request models.Request
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&request).Error
	if err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

// List lists requests matching filter, oldest first
func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]*models.Request, error) {
	var requests []*models.Request
	q := r.db.WithContext(ctx).Model(&models.Request{})
	if filter.StudentID != "" {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.EquipmentID != "" {
		q = q.Where("equipment_id = ?", filter.EquipmentID)
	}
	if len(filter.Statuses) > 0 {
		q = q.Where("status IN ?", filter.Statuses)
	}
	if filter.RequestIDs != nil {
		if len(filter.RequestIDs) == 0 {
			return []*models.Request{}, nil
		}
		q = q.Where("request_id IN ?", filter.RequestIDs)
	}
	if err := q.Order("request_date, id").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Transition updates a request only while its status is one of from
func (r *requestRepository) Transition(ctx context.Context, requestID string, from []string, update RequestUpdate) error {
	updates := map[string]interface{}{
		"status": update.Status,
	}
	if update.ApprovedBy != nil {
		updates["approved_by"] = *update.ApprovedBy
	}
	if update.ApprovalDate != nil {
		updates["approval_date"] = *update.ApprovalDate
	}
	if update.ReturnDate != nil {
		updates["return_date"] = *update.ReturnDate
	}
	if update.Comments != nil {
		updates["comments"] = *update.Comments
	}

	res := r.db.WithContext(ctx).
		Model(&models.Request{}).
		Where("request_id = ?", requestID).
		Where("status IN ?", from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	return missingOrStale(r.db.WithContext(ctx).Model(&models.Request{}).Where("request_id = ?", requestID))
}
