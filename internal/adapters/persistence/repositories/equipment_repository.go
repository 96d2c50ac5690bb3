package repositories

import (
	"context"

	"campus-rms/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// equipmentRepository implements EquipmentRepository interface
type equipmentRepository struct {
	db *gorm.DB
}

// NewEquipmentRepository creates a new equipment repository
func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

// Create creates new equipment
func (r *equipmentRepository) Create(ctx context.Context, equipment *models.Equipment) error {
	return translate(r.db.WithContext(ctx).Create(equipment).Error)
}

// GetByEquipmentID gets equipment by external ID
func (r *equipmentRepository) GetByEquipmentID(ctx context.Context, equipmentID string) (*models.Equipment, error) {
	var equipment models.Equipment
	err := r.db.WithContext(ctx).Where("equipment_id = ?", equipmentID).First(&equipment).Error
	if err != nil {
		return nil, translate(err)
	}
	return &equipment, nil
}

// List lists equipment filtered by department and status
func (r *equipmentRepository) List(ctx context.Context, department, status string) ([]*models.Equipment, error) {
	var items []*models.Equipment
	q := r.db.WithContext(ctx).Model(&models.Equipment{})
	if department != "" {
		q = q.Where("department = ?", department)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at, id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateDetails updates the descriptive columns of one equipment item
func (r *equipmentRepository) UpdateDetails(ctx context.Context, equipment *models.Equipment) error {
	res := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("equipment_id = ?", equipment.EquipmentID).
		Updates(map[string]interface{}{
			"name":          equipment.Name,
			"description":   equipment.Description,
			"category":      equipment.Category,
			"location":      equipment.Location,
			"purchase_date": equipment.PurchaseDate,
			"value":         equipment.Value,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// UpdateStatus sets the status of one equipment item if it is still in from
func (r *equipmentRepository) UpdateStatus(ctx context.Context, equipmentID string, from []string, status string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Equipment{}).
		Where("equipment_id = ? AND status IN ?", equipmentID, from).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return missingOrStale(r.db.WithContext(ctx).Model(&models.Equipment{}).Where("equipment_id = ?", equipmentID))
}

// Delete deletes equipment by external ID
func (r *equipmentRepository) Delete(ctx context.Context, equipmentID string) error {
	res := r.db.WithContext(ctx).Where("equipment_id = ?", equipmentID).Delete(&models.Equipment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
