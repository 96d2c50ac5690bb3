package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// gormStore implements Store on top of gorm (mysql or sqlite)
type gormStore struct {
	db *gorm.DB
}

// NewStore creates a new gorm backed entity store
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository                 { return &userRepository{db: s.db} }
func (s *gormStore) Equipment() EquipmentRepository        { return &equipmentRepository{db: s.db} }
func (s *gormStore) Requests() RequestRepository           { return &requestRepository{db: s.db} }
func (s *gormStore) Events() EventRepository               { return &eventRepository{db: s.db} }
func (s *gormStore) EventRequests() EventRequestRepository { return &eventRequestRepository{db: s.db} }

// WithSession runs fn in a transaction; gorm commits or rolls back and returns
// the connection to the pool on every path
func (s *gormStore) WithSession(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}

// Ping checks the underlying connection
func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *gormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// translate maps gorm and driver errors to the repository errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"),
		strings.Contains(err.Error(), "Duplicate entry"):
		return errors.Join(ErrDuplicateKey, err)
	}
	return err
}

// missingOrStale tells apart a conditional update that lost a race from one
// whose row does not exist. q selects the row by its external id.
func missingOrStale(q *gorm.DB) error {
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrRecordNotFound
	}
	return ErrStaleWrite
}
