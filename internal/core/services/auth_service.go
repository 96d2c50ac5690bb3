package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/config"
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/graph"
	"campus-rms/internal/pkg/jwt"
	"campus-rms/internal/pkg/password"

	"github.com/google/uuid"
)

// PasswordHasher is the one-way hash used for stored passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// AuthService registers and logs in users and resolves the caller of a request
type AuthService struct {
	store  repositories.Store
	coord  *Coordinator
	hasher PasswordHasher
	jwtCfg config.JWTConfig
}

// NewAuthService creates a new auth service
func NewAuthService(
	store repositories.Store,
	coord *Coordinator,
	hasher PasswordHasher,
	jwtCfg config.JWTConfig,
) *AuthService {
	return &AuthService{
		store:  store,
		coord:  coord,
		hasher: hasher,
		jwtCfg: jwtCfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	Token string               `json:"token"`
	User  *models.UserResponse `json:"user"`
}

// Register creates a user in both stores, links it to its department and
// returns a token for it
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Department = strings.TrimSpace(input.Department)

	if input.Name == "" || input.Department == "" {
		return nil, domain.InvalidInput("name and department are required")
	}
	if !strings.Contains(input.Email, "@") {
		return nil, domain.InvalidInput("invalid email %q", input.Email)
	}
	if !password.ValidatePassword(input.Password) {
		return nil, domain.InvalidInput("password must be at least %d characters", password.MinLength)
	}
	if !domain.Role(input.Role).Valid() {
		return nil, domain.InvalidInput("unknown role %q", input.Role)
	}

	exists, err := s.store.Users().ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, domain.Unavailable("entity store", err)
	}
	if exists {
		return nil, domain.Conflict("email %s already registered", input.Email)
	}

	hashed, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserID:     uuid.NewString(),
		Name:       input.Name,
		Password:   hashed,
		Email:      input.Email,
		Role:       input.Role,
		Department: input.Department,
	}

	ops := []graph.Op{
		graph.CreateNode{
			Node: userNode(user.UserID),
			Props: graph.Props{
				"name":       user.Name,
				"email":      user.Email,
				"role":       user.Role,
				"department": user.Department,
			},
		},
	}
	ops = append(ops, belongsTo(user.UserID, user.Department)...)

	err = s.coord.Apply(ctx, "createUser", ops, func(ctx context.Context, tx repositories.Store) error {
		if err := tx.Users().Create(ctx, user); err != nil {
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

	token, err := jwt.GenerateAccessToken(user.UserID, user.Role, s.jwtCfg.Secret, s.jwtCfg.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ User registered: %s (%s, %s)", user.Email, user.Role, user.Department)
	return &AuthResponse{Token: token, User: user.ToResponse()}, nil
}

// Login checks credentials and returns a fresh token
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.store.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, domain.Unavailable("entity store", err)
	}

	if !s.hasher.Verify(input.Password, user.Password) {
		return nil, invalidCredentials()
	}

	token, err := jwt.GenerateAccessToken(user.UserID, user.Role, s.jwtCfg.Secret, s.jwtCfg.AccessTokenMins)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user.ToResponse()}, nil
}

// Authenticate resolves the Authorization header to a principal. The token
// only names the user; the role comes from the entity store so that a stale
// claim grants nothing.
func (s *AuthService) Authenticate(ctx context.Context, authorization string) (*domain.Principal, error) {
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, domain.Unauthorized("missing bearer token")
	}

	claims, err := jwt.ValidateAccessToken(strings.TrimSpace(parts[1]), s.jwtCfg.Secret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.Unauthorized("token expired")
		}
		return nil, domain.Unauthorized("invalid token")
	}

	user, err := s.store.Users().GetByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrRecordNotFound) {
			return nil, domain.Unauthorized("user no longer exists")
		}
		return nil, domain.Unavailable("entity store", err)
	}

	return &domain.Principal{UserID: user.UserID, Role: domain.Role(user.Role)}, nil
}

func invalidCredentials() error {
	return domain.Unauthorized("invalid email or password")
}

// belongsTo links a user to its department node, creating the node on first use
func belongsTo(userID, department string) []graph.Op {
	if department == "" {
		return nil
	}
	return []graph.Op{
		graph.MergeNode{Node: departmentNode(department), Props: graph.Props{}},
		graph.CreateEdge{Type: graph.BelongsTo, From: userNode(userID), To: departmentNode(department)},
	}
}
