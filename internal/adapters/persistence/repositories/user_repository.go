package repositories

import (
	"context"

	"campus-rms/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// GetByUserID gets a user by external ID
func (r *userRepository) GetByUserID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// List lists users, optionally of one department
func (r *userRepository) List(ctx context.Context, department string) ([]*models.User, error) {
	var users []*models.User
	q := r.db.WithContext(ctx).Model(&models.User{})
	if department != "" {
		q = q.Where("department = ?", department)
	}
	if err := q.Order("created_at, id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FirstByDepartmentAndRole gets the earliest user with the given role in a department
func (r *userRepository) FirstByDepartmentAndRole(ctx context.Context, department, role string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("department = ?", department).
		Where("role = ?", role).
		Order("created_at, id").
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Departments lists the distinct department names in use
func (r *userRepository) Departments(ctx context.Context) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Distinct("department").
		Where("department <> ''").
		Order("department").
		Pluck("department", &names).Error
	return names, err
}

// UpdateProfile updates name, email and department of a user
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("user_id = ?", user.UserID).
		Updates(map[string]interface{}{
			"name":       user.Name,
			"email":      user.Email,
			"department": user.Department,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete deletes a user by external ID
func (r *userRepository) Delete(ctx context.Context, userID string) error {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.User{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ExistsByEmail checks if email exists
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}
