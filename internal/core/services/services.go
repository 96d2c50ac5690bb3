package services

import (
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/config"
	"campus-rms/internal/core/graph"
)

// Services bundles every service wired to one pair of stores
type Services struct {
	Coordinator *Coordinator
	Auth        *AuthService
	Users       *UserService
	Equipment   *EquipmentService
	Departments *DepartmentService
	Requests    *RequestService
	Events      *EventService
	Drift       *DriftService
}

// New wires the services around the entity and relationship stores
func New(store repositories.Store, graphStore graph.Store, hasher PasswordHasher, jwtCfg config.JWTConfig) *Services {
	coord := NewCoordinator(graphStore, store)
	return &Services{
		Coordinator: coord,
		Auth:        NewAuthService(store, coord, hasher, jwtCfg),
		Users:       NewUserService(store, coord),
		Equipment:   NewEquipmentService(store, coord),
		Departments: NewDepartmentService(store, graphStore, coord),
		Requests:    NewRequestService(store, graphStore, coord),
		Events:      NewEventService(store, coord),
		Drift:       NewDriftService(store, graphStore),
	}
}
