package services

import (
	"context"
	"errors"
	"strings"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/graph"
)

// UserService handles user management business logic
type UserService struct {
	store repositories.Store
	coord *Coordinator
}

// NewUserService creates a new user service
func NewUserService(store repositories.Store, coord *Coordinator) *UserService {
	return &UserService{
		store: store,
		coord: coord,
	}
}

// UpdateUserInput represents update user input. Role cannot be changed.
type UpdateUserInput struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
}

// Get returns one user
func (s *UserService) Get(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.store.Users().GetByUserID(ctx, userID)
	if err != nil {
		return nil, readErr(err, "user %s not found", userID)
	}
	return user.ToResponse(), nil
}

// List returns users, optionally of one department
func (s *UserService) List(ctx context.Context, department string) ([]*models.UserResponse, error) {
	users, err := s.store.Users().List(ctx, department)
	if err != nil {
		return nil, domain.Unavailable("entity store", err)
	}
	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, nil
}

// Update changes name, email or department. A department change moves the
// BELONGS_TO edge.
func (s *UserService) Update(ctx context.Context, userID string, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.store.Users().GetByUserID(ctx, userID)
	if err != nil {
		return nil, readErr(err, "user %s not found", userID)
	}

	props := graph.Props{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.InvalidInput("name cannot be empty")
		}
		user.Name = name
		props["name"] = name
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if !strings.Contains(email, "@") {
			return nil, domain.InvalidInput("invalid email %q", email)
		}
		if email != user.Email {
			exists, err := s.store.Users().ExistsByEmail(ctx, email)
			if err != nil {
				return nil, domain.Unavailable("entity store", err)
			}
			if exists {
				return nil, domain.Conflict("email %s already registered", email)
			}
			user.Email = email
			props["email"] = email
		}
	}

	var moveOps []graph.Op
	if input.Department != nil {
		department := strings.TrimSpace(*input.Department)
		if department == "" {
			return nil, domain.InvalidInput("department cannot be empty")
		}
		if department != user.Department {
			user.Department = department
			props["department"] = department
			moveOps = append([]graph.Op{graph.DeleteEdges{Type: graph.BelongsTo, From: userNode(user.UserID)}},
				belongsTo(user.UserID, department)...)
		}
	}

	if len(props) == 0 {
		return user.ToResponse(), nil
	}

	ops := append([]graph.Op{graph.SetNodeProps{Node: userNode(user.UserID), Props: props}}, moveOps...)
	err = s.coord.Apply(ctx, "updateUser", ops, func(ctx context.Context, tx repositories.Store) error {
		if err := tx.Users().UpdateProfile(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrDuplicateKey) {
				return domain.Conflict("email %s already registered", user.Email)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// Delete removes a user from the entity store, then detach-deletes the node.
// Users with a live loan request cannot be deleted.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if _, err := s.store.Users().GetByUserID(ctx, userID); err != nil {
		return readErr(err, "user %s not found", userID)
	}

	open, err := s.store.Requests().List(ctx, repositories.RequestFilter{
		StudentID: userID,
		Statuses:  []string{string(domain.RequestPending), string(domain.RequestApproved)},
	})
	if err != nil {
		return domain.Unavailable("entity store", err)
	}
	if len(open) > 0 {
		return domain.Conflict("user %s has %d open request(s)", userID, len(open))
	}

	doc := func(ctx context.Context, tx repositories.Store) error {
		return tx.Users().Delete(ctx, userID)
	}
	return s.coord.ApplyDocumentFirst(ctx, "deleteUser", doc, []graph.Op{
		graph.DetachDeleteNode{Node: userNode(userID)},
	})
}
