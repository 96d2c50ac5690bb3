package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/graph"

	"github.com/google/uuid"
)

// RequestService drives the equipment loan request lifecycle
type RequestService struct {
	store repositories.Store
	graph graph.Store
	coord *Coordinator
}

// NewRequestService creates a new request service
func NewRequestService(store repositories.Store, graphStore graph.Store, coord *Coordinator) *RequestService {
	return &RequestService{
		store: store,
		graph: graphStore,
		coord: coord,
	}
}

// CreateRequestInput represents create request input
type CreateRequestInput struct {
	StudentID     string    `json:"-"`
	EquipmentID   string    `json:"equipmentId"`
	RequiredFrom  time.Time `json:"requiredFrom"`
	RequiredUntil time.Time `json:"requiredUntil"`
	Purpose       string    `json:"purpose"`
}

// Create files a new PENDING request for available equipment
func (s *RequestService) Create(ctx context.Context, input *CreateRequestInput) (*models.RequestResponse, error) {
	if input.EquipmentID == "" || strings.TrimSpace(input.Purpose) == "" {
		return nil, domain.InvalidInput("equipmentId and purpose are required")
	}
	if input.RequiredFrom.IsZero() || input.RequiredUntil.IsZero() {
		return nil, domain.InvalidInput("requiredFrom and requiredUntil are required")
	}
	if input.RequiredUntil.Before(input.RequiredFrom) {
		return nil, domain.InvalidInput("requiredUntil must not be before requiredFrom")
	}

	student, err := s.store.Users().GetByUserID(ctx, input.StudentID)
	if err != nil {
		return nil, readErr(err, "student %s not found", input.StudentID)
	}
	if student.Role != string(domain.RoleStudent) {
		return nil, domain.Conflict("user %s is not a student", student.UserID)
	}

	equipment, err := s.store.Equipment().GetByEquipmentID(ctx, input.EquipmentID)
	if err != nil {
		return nil, readErr(err, "equipment %s not found", input.EquipmentID)
	}
	if equipment.Status != string(domain.EquipmentAvailable) {
		return nil, domain.Conflict("equipment %s is not available (status %s)", equipment.EquipmentID, equipment.Status)
	}

	now := time.Now().UTC()
	request := &models.Request{
		RequestID:     uuid.NewString(),
		StudentID:     student.UserID,
		EquipmentID:   equipment.EquipmentID,
		Status:        string(domain.RequestPending),
		RequestDate:   now,
		RequiredFrom:  input.RequiredFrom.UTC(),
		RequiredUntil: input.RequiredUntil.UTC(),
		Purpose:       strings.TrimSpace(input.Purpose),
	}

	ops := []graph.Op{
		graph.CreateEdge{
			Type: graph.Requested,
			From: userNode(student.UserID),
			To:   equipmentNode(equipment.EquipmentID),
			Ref:  request.RequestID,
			Props: graph.Props{
				"status":        request.Status,
				"requestDate":   graph.Timestamp(request.RequestDate),
				"requiredFrom":  graph.Timestamp(request.RequiredFrom),
				"requiredUntil": graph.Timestamp(request.RequiredUntil),
				"purpose":       request.Purpose,
			},
		},
	}
	err = s.coord.Apply(ctx, "createRequest", ops, func(ctx context.Context, tx repositories.Store) error {
		return tx.Requests().Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	return s.resolve(ctx, request), nil
}

// checkReviewer loads the request and verifies that hodID may review it
func (s *RequestService) checkReviewer(ctx context.Context, requestID, hodID string) (*models.Request, *models.Equipment, error) {
	request, err := s.store.Requests().GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, nil, readErr(err, "request %s not found", requestID)
	}
	if request.Status != string(domain.RequestPending) {
		return nil, nil, domain.Conflict("request %s is not PENDING (status %s)", requestID, request.Status)
	}

	hod, err := s.store.Users().GetByUserID(ctx, hodID)
	if err != nil {
		return nil, nil, readErr(err, "HOD %s not found", hodID)
	}
	if hod.Role != string(domain.RoleHOD) {
		return nil, nil, domain.Conflict("user %s is not an HOD", hodID)
	}

	equipment, err := s.store.Equipment().GetByEquipmentID(ctx, request.EquipmentID)
	if err != nil {
		return nil, nil, readErr(err, "equipment %s not found", request.EquipmentID)
	}
	if hod.Department != equipment.Department {
		return nil, nil, domain.Conflict("HOD of %q cannot review equipment of %q", hod.Department, equipment.Department)
	}

	return request, equipment, nil
}

// Approve moves a PENDING request to APPROVED and puts the equipment IN_USE
func (s *RequestService) Approve(ctx context.Context, requestID, hodID, comments string) (*models.RequestResponse, error) {
	request, equipment, err := s.checkReviewer(ctx, requestID, hodID)
	if err != nil {
		return nil, err
	}
	if equipment.Status != string(domain.EquipmentAvailable) {
		return nil, domain.Conflict("equipment %s is %s, not AVAILABLE", equipment.EquipmentID, equipment.Status)
	}

	now := time.Now().UTC()
	ops := []graph.Op{
		graph.SetEdgeProps{
			Type: graph.Requested,
			Ref:  request.RequestID,
			Props: graph.Props{
				"status":       string(domain.RequestApproved),
				"approvalDate": graph.Timestamp(now),
				"approvedBy":   hodID,
			},
		},
	}
	err = s.coord.Apply(ctx, "approveRequest", ops, func(ctx context.Context, tx repositories.Store) error {
		err := tx.Requests().Transition(ctx, request.RequestID, []string{string(domain.RequestPending)}, repositories.RequestUpdate{
			Status:       string(domain.RequestApproved),
			ApprovedBy:   &hodID,
			ApprovalDate: &now,
			Comments:     &comments,
		})
		if err != nil {
			return transitionErr(err, request.RequestID)
		}
		return lend(ctx, tx, equipment.EquipmentID)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, request.RequestID)
}

// Reject moves a PENDING request to REJECTED and records an audit edge from
// the HOD to the equipment
func (s *RequestService) Reject(ctx context.Context, requestID, hodID, comments string) (*models.RequestResponse, error) {
	request, equipment, err := s.checkReviewer(ctx, requestID, hodID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ops := []graph.Op{
		graph.SetEdgeProps{
			Type: graph.Requested,
			Ref:  request.RequestID,
			Props: graph.Props{
				"status":       string(domain.RequestRejected),
				"approvalDate": graph.Timestamp(now),
				"approvedBy":   hodID,
			},
		},
		graph.CreateEdge{
			Type:  graph.Rejected,
			From:  userNode(hodID),
			To:    equipmentNode(equipment.EquipmentID),
			Ref:   request.RequestID,
			Props: graph.Props{"date": graph.Timestamp(now), "reason": comments},
		},
	}
	err = s.coord.Apply(ctx, "rejectRequest", ops, func(ctx context.Context, tx repositories.Store) error {
		err := tx.Requests().Transition(ctx, request.RequestID, []string{string(domain.RequestPending)}, repositories.RequestUpdate{
			Status:       string(domain.RequestRejected),
			ApprovedBy:   &hodID,
			ApprovalDate: &now,
			Comments:     &comments,
		})
		return transitionErr(err, request.RequestID)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, request.RequestID)
}

// Complete closes an APPROVED loan: the equipment is AVAILABLE again and a
// USED edge records the loan period
func (s *RequestService) Complete(ctx context.Context, requestID, comments string) (*models.RequestResponse, error) {
	request, err := s.store.Requests().GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, readErr(err, "request %s not found", requestID)
	}
	if request.Status != string(domain.RequestApproved) {
		return nil, domain.Conflict("request %s is not APPROVED (status %s)", requestID, request.Status)
	}

	now := time.Now().UTC()
	ops := []graph.Op{
		graph.SetEdgeProps{
			Type: graph.Requested,
			Ref:  request.RequestID,
			Props: graph.Props{
				"status":     string(domain.RequestCompleted),
				"returnDate": graph.Timestamp(now),
			},
		},
		graph.CreateEdge{
			Type: graph.Used,
			From: userNode(request.StudentID),
			To:   equipmentNode(request.EquipmentID),
			Ref:  request.RequestID,
			Props: graph.Props{
				"from": graph.Timestamp(request.RequiredFrom),
				"to":   graph.Timestamp(now),
			},
		},
	}
	err = s.coord.Apply(ctx, "completeRequest", ops, func(ctx context.Context, tx repositories.Store) error {
		err := tx.Requests().Transition(ctx, request.RequestID, []string{string(domain.RequestApproved)}, repositories.RequestUpdate{
			Status:     string(domain.RequestCompleted),
			ReturnDate: &now,
			Comments:   &comments,
		})
		if err != nil {
			return transitionErr(err, request.RequestID)
		}
		return giveBack(ctx, tx, request.EquipmentID)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, request.RequestID)
}

// Cancel withdraws a PENDING or APPROVED request. Cancelling an approved
// loan hands the equipment back.
func (s *RequestService) Cancel(ctx context.Context, requestID string) (*models.RequestResponse, error) {
	request, err := s.store.Requests().GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, readErr(err, "request %s not found", requestID)
	}
	prior := domain.RequestStatus(request.Status)
	if prior != domain.RequestPending && prior != domain.RequestApproved {
		return nil, domain.Conflict("request %s cannot be cancelled (status %s)", requestID, request.Status)
	}

	ops := []graph.Op{
		graph.SetEdgeProps{
			Type:  graph.Requested,
			Ref:   request.RequestID,
			Props: graph.Props{"status": string(domain.RequestCancelled)},
		},
	}
	err = s.coord.Apply(ctx, "cancelRequest", ops, func(ctx context.Context, tx repositories.Store) error {
		err := tx.Requests().Transition(ctx, request.RequestID, []string{string(prior)}, repositories.RequestUpdate{
			Status: string(domain.RequestCancelled),
		})
		if err != nil {
			return transitionErr(err, request.RequestID)
		}
		if prior == domain.RequestApproved {
			return giveBack(ctx, tx, request.EquipmentID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, request.RequestID)
}

// Get returns one request with student, equipment and approver resolved
func (s *RequestService) Get(ctx context.Context, requestID string) (*models.RequestResponse, error) {
	request, err := s.store.Requests().GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, readErr(err, "request %s not found", requestID)
	}
	return s.resolve(ctx, request), nil
}

// ListByUser returns the requests filed by a student
func (s *RequestService) ListByUser(ctx context.Context, userID, status string) ([]*models.RequestResponse, error) {
	filter, err := statusFilter(status)
	if err != nil {
		return nil, err
	}
	filter.StudentID = userID
	return s.list(ctx, filter)
}

// ListByEquipment returns the requests made for one piece of equipment
func (s *RequestService) ListByEquipment(ctx context.Context, equipmentID, status string) ([]*models.RequestResponse, error) {
	filter, err := statusFilter(status)
	if err != nil {
		return nil, err
	}
	filter.EquipmentID = equipmentID
	return s.list(ctx, filter)
}

// ListByDepartment finds the request ids through the graph (REQUESTED edges
// into the department's equipment) and loads the documents
func (s *RequestService) ListByDepartment(ctx context.Context, department, status string) ([]*models.RequestResponse, error) {
	if status != "" && !domain.RequestStatus(status).Valid() {
		return nil, domain.InvalidInput("unknown request status %q", status)
	}
	refs, err := s.graph.DepartmentRequestRefs(ctx, department, status)
	if err != nil {
		return nil, graphReadErr(err)
	}
	return s.list(ctx, repositories.RequestFilter{RequestIDs: refs})
}

func (s *RequestService) list(ctx context.Context, filter repositories.RequestFilter) ([]*models.RequestResponse, error) {
	requests, err := s.store.Requests().List(ctx, filter)
	if err != nil {
		return nil, domain.Unavailable("entity store", err)
	}
	out := make([]*models.RequestResponse, len(requests))
	for i, r := range requests {
		out[i] = s.resolve(ctx, r)
	}
	return out, nil
}

// resolve denormalizes a request. Missing related records resolve to nil.
func (s *RequestService) resolve(ctx context.Context, r *models.Request) *models.RequestResponse {
	resp := &models.RequestResponse{
		RequestID:     r.RequestID,
		Status:        r.Status,
		RequestDate:   r.RequestDate,
		RequiredFrom:  r.RequiredFrom,
		RequiredUntil: r.RequiredUntil,
		Purpose:       r.Purpose,
		ApprovalDate:  r.ApprovalDate,
		ReturnDate:    r.ReturnDate,
		Comments:      r.Comments,
	}
	if student, err := s.store.Users().GetByUserID(ctx, r.StudentID); err == nil {
		resp.Student = student.ToResponse()
	}
	if equipment, err := s.store.Equipment().GetByEquipmentID(ctx, r.EquipmentID); err == nil {
		resp.Equipment = equipment
	}
	if r.ApprovedBy != "" {
		if approver, err := s.store.Users().GetByUserID(ctx, r.ApprovedBy); err == nil {
			resp.ApprovedBy = approver.ToResponse()
		}
	}
	return resp
}

func statusFilter(status string) (repositories.RequestFilter, error) {
	if status == "" {
		return repositories.RequestFilter{}, nil
	}
	if !domain.RequestStatus(status).Valid() {
		return repositories.RequestFilter{}, domain.InvalidInput("unknown request status %q", status)
	}
	return repositories.RequestFilter{Statuses: []string{status}}, nil
}

// transitionErr turns a lost compare-and-set into a Conflict
func transitionErr(err error, requestID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrStaleWrite):
		return domain.Conflict("request %s changed status concurrently", requestID)
	case errors.Is(err, repositories.ErrRecordNotFound):
		return domain.NotFound("request %s not found", requestID)
	}
	return err
}

// lend puts AVAILABLE equipment IN_USE
func lend(ctx context.Context, tx repositories.Store, equipmentID string) error {
	err := tx.Equipment().UpdateStatus(ctx, equipmentID,
		[]string{string(domain.EquipmentAvailable)}, string(domain.EquipmentInUse))
	return equipmentStatusErr(err, equipmentID)
}

// giveBack returns IN_USE equipment to AVAILABLE
func giveBack(ctx context.Context, tx repositories.Store, equipmentID string) error {
	err := tx.Equipment().UpdateStatus(ctx, equipmentID,
		[]string{string(domain.EquipmentInUse)}, string(domain.EquipmentAvailable))
	return equipmentStatusErr(err, equipmentID)
}

func equipmentStatusErr(err error, equipmentID string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrStaleWrite):
		return domain.Conflict("equipment %s changed status concurrently", equipmentID)
	case errors.Is(err, repositories.ErrRecordNotFound):
		return domain.NotFound("equipment %s not found", equipmentID)
	}
	return err
}

func userNode(id string) graph.NodeRef      { return graph.NodeRef{Label: graph.LabelUser, Key: id} }
func equipmentNode(id string) graph.NodeRef { return graph.NodeRef{Label: graph.LabelEquipment, Key: id} }
func eventNode(id string) graph.NodeRef     { return graph.NodeRef{Label: graph.LabelEvent, Key: id} }
func departmentNode(name string) graph.NodeRef {
	return graph.NodeRef{Label: graph.LabelDepartment, Key: name}
}
