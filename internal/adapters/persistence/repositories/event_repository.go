package repositories

import (
	"context"

	"campus-rms/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// eventRepository implements EventRepository interface
type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

func (r *eventRepository) GetByEventID(ctx context.Context, eventID string) (*models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		return nil, translate(err)
	}
	return &event, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*models.Event, error) {
	var events []*models.Event
	if err := r.db.WithContext(ctx).Order("created_date, id").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	return translate(r.db.WithContext(ctx).Save(event).Error)
}

func (r *eventRepository) Delete(ctx context.Context, eventID string) error {
	res := r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&models.Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// eventRequestRepository implements EventRequestRepository interface
type eventRequestRepository struct {
	db *gorm.DB
}

// NewEventRequestRepository creates a new event request repository
func NewEventRequestRepository(db *gorm.DB) EventRequestRepository {
	return &eventRequestRepository{db: db}
}

func (r *eventRequestRepository) Create(ctx context.Context, request *models.EventRequest) error {
	return translate(r.db.WithContext(ctx).Create(request).Error)
}

func (r *eventRequestRepository) GetByRequestID(ctx context.Context, requestID string) (*models.EventRequest, error) {
	var request models.EventRequest
	err := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&request).Error
	if err != nil {
		return nil, translate(err)
	}
	return &request, nil
}

func (r *eventRequestRepository) List(ctx context.Context, filter EventRequestFilter) ([]*models.EventRequest, error) {
	var requests []*models.EventRequest
	q := r.db.WithContext(ctx).Model(&models.EventRequest{})
	if filter.EventID != "" {
		q = q.Where("event_id = ?", filter.EventID)
	}
	if filter.StudentID != "" {
		q = q.Where("student_id = ?", filter.StudentID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if err := q.Order("request_date, id").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *eventRequestRepository) Transition(ctx context.Context, requestID, from, status, comments string) error {
	res := r.db.WithContext(ctx).
		Model(&models.EventRequest{}).
		Where("request_id = ? AND status = ?", requestID, from).
		Updates(map[string]interface{}{"status": status, "comments": comments})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.EventRequest{}).Where("request_id = ?", requestID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRecordNotFound
	}
	return ErrStaleWrite
}
