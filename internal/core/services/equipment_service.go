package services

import (
	"context"
	"strings"
	"time"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/graph"

	"github.com/google/uuid"
)

// equipmentTransitions are the status changes allowed outside the request
// lifecycle. IN_USE is entered and left only through requests; DISPOSED is final.
var equipmentTransitions = map[domain.EquipmentStatus][]domain.EquipmentStatus{
	domain.EquipmentAvailable:   {domain.EquipmentMaintenance, domain.EquipmentDisposed},
	domain.EquipmentMaintenance: {domain.EquipmentAvailable, domain.EquipmentDisposed},
}

// EquipmentService handles equipment inventory
type EquipmentService struct {
	store repositories.Store
	coord *Coordinator
}

// NewEquipmentService creates a new equipment service
func NewEquipmentService(store repositories.Store, coord *Coordinator) *EquipmentService {
	return &EquipmentService{
		store: store,
		coord: coord,
	}
}

// CreateEquipmentInput represents create equipment input
type CreateEquipmentInput struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Department   string     `json:"department"`
	Status       string     `json:"status"`
	PurchaseDate *time.Time `json:"purchaseDate"`
	Value        *float64   `json:"value"`
	Location     string     `json:"location"`
}

// UpdateEquipmentInput represents update equipment input. Status and
// department are not part of it.
type UpdateEquipmentInput struct {
	Name         *string    `json:"name"`
	Description  *string    `json:"description"`
	Category     *string    `json:"category"`
	Location     *string    `json:"location"`
	PurchaseDate *time.Time `json:"purchaseDate"`
	Value        *float64   `json:"value"`
}

// Create adds equipment owned by a department
func (s *EquipmentService) Create(ctx context.Context, input *CreateEquipmentInput) (*models.Equipment, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)
	input.Department = strings.TrimSpace(input.Department)
	if input.Name == "" || input.Category == "" || input.Department == "" {
		return nil, domain.InvalidInput("name, category and department are required")
	}

	status := domain.EquipmentStatus(input.Status)
	if status == "" {
		status = domain.EquipmentAvailable
	}
	if status != domain.EquipmentAvailable && status != domain.EquipmentMaintenance {
		return nil, domain.InvalidInput("new equipment must be AVAILABLE or MAINTENANCE, got %q", input.Status)
	}
	if input.Value != nil && *input.Value < 0 {
		return nil, domain.InvalidInput("value cannot be negative")
	}

	equipment := &models.Equipment{
		EquipmentID:  uuid.NewString(),
		Name:         input.Name,
		Description:  input.Description,
		Category:     input.Category,
		Department:   input.Department,
		Status:       string(status),
		PurchaseDate: input.PurchaseDate,
		Value:        input.Value,
		Location:     input.Location,
	}

	ops := []graph.Op{
		graph.CreateNode{
			Node: equipmentNode(equipment.EquipmentID),
			Props: graph.Props{
				"name":        equipment.Name,
				"description": equipment.Description,
				"category":    equipment.Category,
				"department":  equipment.Department,
				"status":      equipment.Status,
			},
		},
		graph.MergeNode{Node: departmentNode(equipment.Department), Props: graph.Props{}},
		graph.CreateEdge{Type: graph.OwnedBy, From: equipmentNode(equipment.EquipmentID), To: departmentNode(equipment.Department)},
	}
	err := s.coord.Apply(ctx, "createEquipment", ops, func(ctx context.Context, tx repositories.Store) error {
		return tx.Equipment().Create(ctx, equipment)
	})
	if err != nil {
		return nil, err
	}

	return equipment, nil
}

// Get returns one piece of equipment
func (s *EquipmentService) Get(ctx context.Context, equipmentID string) (*models.Equipment, error) {
	equipment, err := s.store.Equipment().GetByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, readErr(err, "equipment %s not found", equipmentID)
	}
	return equipment, nil
}

// List returns equipment filtered by department and status
func (s *EquipmentService) List(ctx context.Context, department, status string) ([]*models.Equipment, error) {
	if status != "" && !domain.EquipmentStatus(status).Valid() {
		return nil, domain.InvalidInput("unknown equipment status %q", status)
	}
	items, err := s.store.Equipment().List(ctx, department, status)
	if err != nil {
		return nil, domain.Unavailable("entity store", err)
	}
	return items, nil
}

// Update changes descriptive fields only
func (s *EquipmentService) Update(ctx context.Context, equipmentID string, input *UpdateEquipmentInput) (*models.Equipment, error) {
	equipment, err := s.store.Equipment().GetByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, readErr(err, "equipment %s not found", equipmentID)
	}

	props := graph.Props{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.InvalidInput("name cannot be empty")
		}
		equipment.Name = name
		props["name"] = name
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, domain.InvalidInput("category cannot be empty")
		}
		equipment.Category = category
		props["category"] = category
	}
	if input.Description != nil {
		equipment.Description = *input.Description
		props["description"] = *input.Description
	}
	if input.Location != nil {
		equipment.Location = *input.Location
	}
	if input.PurchaseDate != nil {
		equipment.PurchaseDate = input.PurchaseDate
	}
	if input.Value != nil {
		if *input.Value < 0 {
			return nil, domain.InvalidInput("value cannot be negative")
		}
		equipment.Value = input.Value
	}

	var ops []graph.Op
	if len(props) > 0 {
		ops = append(ops, graph.SetNodeProps{Node: equipmentNode(equipmentID), Props: props})
	}
	err = s.coord.Apply(ctx, "updateEquipment", ops, func(ctx context.Context, tx repositories.Store) error {
		return tx.Equipment().UpdateDetails(ctx, equipment)
	})
	if err != nil {
		return nil, err
	}

	return equipment, nil
}

// ChangeStatus moves equipment between AVAILABLE, MAINTENANCE and DISPOSED
func (s *EquipmentService) ChangeStatus(ctx context.Context, equipmentID, status string) (*models.Equipment, error) {
	target := domain.EquipmentStatus(status)
	if !target.Valid() {
		return nil, domain.InvalidInput("unknown equipment status %q", status)
	}

	equipment, err := s.store.Equipment().GetByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, readErr(err, "equipment %s not found", equipmentID)
	}
	current := domain.EquipmentStatus(equipment.Status)
	if !equipmentCanMove(current, target) {
		return nil, domain.Conflict("equipment %s cannot move from %s to %s", equipmentID, current, target)
	}
	if err := s.checkNoOpenRequests(ctx, equipmentID); err != nil {
		return nil, err
	}

	ops := []graph.Op{
		graph.SetNodeProps{Node: equipmentNode(equipmentID), Props: graph.Props{"status": string(target)}},
	}
	err = s.coord.Apply(ctx, "changeEquipmentStatus", ops, func(ctx context.Context, tx repositories.Store) error {
		err := tx.Equipment().UpdateStatus(ctx, equipmentID, []string{equipment.Status}, string(target))
		return equipmentStatusErr(err, equipmentID)
	})
	if err != nil {
		return nil, err
	}

	equipment.Status = string(target)
	return equipment, nil
}

func equipmentCanMove(from, to domain.EquipmentStatus) bool {
	for _, next := range equipmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Delete removes equipment that is not lent out or waiting on a request
func (s *EquipmentService) Delete(ctx context.Context, equipmentID string) error {
	equipment, err := s.store.Equipment().GetByEquipmentID(ctx, equipmentID)
	if err != nil {
		return readErr(err, "equipment %s not found", equipmentID)
	}
	if equipment.Status == string(domain.EquipmentInUse) {
		return domain.Conflict("equipment %s is IN_USE", equipmentID)
	}

	if err := s.checkNoOpenRequests(ctx, equipmentID); err != nil {
		return err
	}

	doc := func(ctx context.Context, tx repositories.Store) error {
		return tx.Equipment().Delete(ctx, equipmentID)
	}
	return s.coord.ApplyDocumentFirst(ctx, "deleteEquipment", doc, []graph.Op{
		graph.DetachDeleteNode{Node: equipmentNode(equipmentID)},
	})
}

// checkNoOpenRequests fails with Conflict while a PENDING or APPROVED request
// still points at the equipment
func (s *EquipmentService) checkNoOpenRequests(ctx context.Context, equipmentID string) error {
	open, err := s.store.Requests().List(ctx, repositories.RequestFilter{
		EquipmentID: equipmentID,
		Statuses:    []string{string(domain.RequestPending), string(domain.RequestApproved)},
	})
	if err != nil {
		return domain.Unavailable("entity store", err)
	}
	if len(open) > 0 {
		return domain.Conflict("equipment %s has %d open request(s)", equipmentID, len(open))
	}
	return nil
}
