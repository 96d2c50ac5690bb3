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

// DepartmentService builds the department view. A department is not stored
// in the entity store: its name is the department string users carry, and
// its location and HOD pointer live on the graph Department node. Names are
// compared case-sensitively.
type DepartmentService struct {
	store repositories.Store
	graph graph.Store
	coord *Coordinator
}

// NewDepartmentService creates a new department service
func NewDepartmentService(store repositories.Store, graphStore graph.Store, coord *Coordinator) *DepartmentService {
	return &DepartmentService{
		store: store,
		graph: graphStore,
		coord: coord,
	}
}

// CreateDepartmentInput represents create department input
type CreateDepartmentInput struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	HODID    string `json:"hodId"`
}

// UpdateDepartmentInput represents update department input
type UpdateDepartmentInput struct {
	Location *string `json:"location"`
	HODID    *string `json:"hodId"`
}

// Create registers the graph Department node. It does not make the name
// valid anywhere else: users and equipment still carry free-form strings.
func (s *DepartmentService) Create(ctx context.Context, input *CreateDepartmentInput) (*models.DepartmentResponse, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.InvalidInput("name is required")
	}

	if _, err := s.graph.GetNode(ctx, departmentNode(name)); err == nil {
		return nil, domain.Conflict("department %s already exists", name)
	} else if !errors.Is(err, graph.ErrNoMatch) {
		return nil, graphReadErr(err)
	}

	if _, err := s.checkHOD(ctx, input.HODID); err != nil {
		return nil, err
	}

	ops := []graph.Op{
		graph.CreateNode{
			Node:  departmentNode(name),
			Props: graph.Props{"location": input.Location, "hodId": input.HODID},
		},
	}
	if err := s.coord.Apply(ctx, "createDepartment", ops, nil); err != nil {
		return nil, err
	}

	return s.resolve(ctx, name)
}

// Update changes location or HOD. A department only known from users'
// department strings gets its node on first update.
func (s *DepartmentService) Update(ctx context.Context, name string, input *UpdateDepartmentInput) (*models.DepartmentResponse, error) {
	known, err := s.exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, domain.NotFound("department %s not found", name)
	}

	props := graph.Props{}
	if input.Location != nil {
		props["location"] = *input.Location
	}
	if input.HODID != nil {
		if _, err := s.checkHOD(ctx, *input.HODID); err != nil {
			return nil, err
		}
		props["hodId"] = *input.HODID
	}

	if len(props) > 0 {
		ops := []graph.Op{
			graph.MergeNode{Node: departmentNode(name), Props: graph.Props{}},
			graph.SetNodeProps{Node: departmentNode(name), Props: props},
		}
		if err := s.coord.Apply(ctx, "updateDepartment", ops, nil); err != nil {
			return nil, err
		}
	}

	return s.Get(ctx, name)
}

// Get returns the department view or NotFound when neither a user nor a
// graph node carries the name
func (s *DepartmentService) Get(ctx context.Context, name string) (*models.DepartmentResponse, error) {
	known, err := s.exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !known {
		return nil, domain.NotFound("department %s not found", name)
	}
	return s.resolve(ctx, name)
}

// List returns a view for every department string in use by users
func (s *DepartmentService) List(ctx context.Context) ([]*models.DepartmentResponse, error) {
	names, err := s.graph.UserDepartments(ctx)
	if err != nil {
		return nil, graphReadErr(err)
	}

	out := make([]*models.DepartmentResponse, 0, len(names))
	for _, name := range names {
		dept, err := s.resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, dept)
	}
	return out, nil
}

func (s *DepartmentService) exists(ctx context.Context, name string) (bool, error) {
	names, err := s.graph.UserDepartments(ctx)
	if err != nil {
		return false, graphReadErr(err)
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}

	_, err = s.graph.GetNode(ctx, departmentNode(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, graph.ErrNoMatch):
		return false, nil
	}
	return false, graphReadErr(err)
}

// resolve picks the HOD: the node's hodId when it names an HOD of this
// department, otherwise the earliest created HOD user of the department
func (s *DepartmentService) resolve(ctx context.Context, name string) (*models.DepartmentResponse, error) {
	var location, hodID string
	node, err := s.graph.GetNode(ctx, departmentNode(name))
	switch {
	case err == nil:
		location = node.Props.String("location")
		hodID = node.Props.String("hodId")
	case !errors.Is(err, graph.ErrNoMatch):
		return nil, graphReadErr(err)
	}

	var hod *models.User
	if hodID != "" {
		if u, err := s.store.Users().GetByUserID(ctx, hodID); err == nil &&
			u.Role == string(domain.RoleHOD) && u.Department == name {
			hod = u
		}
	}
	if hod == nil {
		u, err := s.store.Users().FirstByDepartmentAndRole(ctx, name, string(domain.RoleHOD))
		switch {
		case err == nil:
			hod = u
		case !errors.Is(err, repositories.ErrRecordNotFound):
			return nil, domain.Unavailable("entity store", err)
		}
	}

	return s.view(ctx, name, location, hod)
}

func (s *DepartmentService) view(ctx context.Context, name, location string, hod *models.User) (*models.DepartmentResponse, error) {
	equipment, err := s.store.Equipment().List(ctx, name, "")
	if err != nil {
		return nil, domain.Unavailable("entity store", err)
	}
	return &models.DepartmentResponse{
		Name:      name,
		Location:  location,
		HOD:       hod.ToResponse(),
		Equipment: equipment,
	}, nil
}

// checkHOD validates an optional hodId
func (s *DepartmentService) checkHOD(ctx context.Context, hodID string) (*models.User, error) {
	if hodID == "" {
		return nil, nil
	}
	hod, err := s.store.Users().GetByUserID(ctx, hodID)
	if err != nil {
		return nil, readErr(err, "HOD %s not found", hodID)
	}
	if hod.Role != string(domain.RoleHOD) {
		return nil, domain.Conflict("user %s is not an HOD", hodID)
	}
	return hod, nil
}
