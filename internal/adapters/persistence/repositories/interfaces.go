package repositories

import (
	"context"
	"errors"
	"time"

	"campus-rms/internal/adapters/persistence/models"
)

// Store-independent errors. Implementations translate their driver errors to these.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	ErrStaleWrite     = errors.New("record changed since it was read")
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, department string) ([]*models.User, error)
	// FirstByDepartmentAndRole returns the earliest created match
	FirstByDepartmentAndRole(ctx context.Context, department, role string) (*models.User, error)
	Departments(ctx context.Context) ([]string, error)
	// UpdateProfile writes name, email and department only
	UpdateProfile(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// EquipmentRepository defines equipment repository interface
type EquipmentRepository interface {
	Create(ctx context.Context, equipment *models.Equipment) error
	GetByEquipmentID(ctx context.Context, equipmentID string) (*models.Equipment, error)
	List(ctx context.Context, department, status string) ([]*models.Equipment, error)
	// UpdateDetails writes the descriptive fields only; status and
	// department are left as stored
	UpdateDetails(ctx context.Context, equipment *models.Equipment) error
	// UpdateStatus moves the equipment to status only if it is currently in
	// one of from, else ErrStaleWrite
	UpdateStatus(ctx context.Context, equipmentID string, from []string, status string) error
	Delete(ctx context.Context, equipmentID string) error
}

// RequestFilter narrows request listings. Empty fields match everything.
type RequestFilter struct {
	StudentID   string
	EquipmentID string
	Statuses    []string
	RequestIDs  []string
}

// RequestUpdate lists the fields a lifecycle transition writes. Nil fields are left alone.
type RequestUpdate struct {
	Status       string
	ApprovedBy   *string
	ApprovalDate *time.Time
	ReturnDate   *time.Time
	Comments     *string
}

// RequestRepository defines equipment request repository interface
type RequestRepository interface {
	Create(ctx context.Context, request *models.Request) error
	GetByRequestID(ctx context.Context, requestID string) (*models.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]*models.Request, error)
	// Transition applies update only if the stored status is one of from.
	// It returns ErrStaleWrite when the status moved on, ErrRecordNotFound when
	// the request does not exist.
	Transition(ctx context.Context, requestID string, from []string, update RequestUpdate) error
}

// EventRepository defines event repository interface
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByEventID(ctx context.Context, eventID string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, eventID string) error
}

// EventRequestFilter narrows event request listings
type EventRequestFilter struct {
	EventID   string
	StudentID string
	Status    string
}

// EventRequestRepository defines event request repository interface
type EventRequestRepository interface {
	Create(ctx context.Context, request *models.EventRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*models.EventRequest, error)
	List(ctx context.Context, filter EventRequestFilter) ([]*models.EventRequest, error)
	// Transition sets status and comments only if the stored status is from
	Transition(ctx context.Context, requestID, from, status, comments string) error
}

// Store is the entity store: one handle over every document repository
type Store interface {
	Users() UserRepository
	Equipment() EquipmentRepository
	Requests() RequestRepository
	Events() EventRepository
	EventRequests() EventRequestRepository

	// WithSession runs fn against a single scoped session of the store. The
	// session is released when fn returns, whatever the outcome. SQL backed
	// stores run fn inside a transaction.
	WithSession(ctx context.Context, fn func(ctx context.Context, s Store) error) error

	Ping(ctx context.Context) error
	Close() error
}
