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

// eventTransitions lists the statuses an event may move to from each status
var eventTransitions = map[domain.EventStatus][]domain.EventStatus{
	domain.EventPending:  {domain.EventApproved, domain.EventRejected},
	domain.EventApproved: {domain.EventCompleted},
}

// EventService handles events and students' requests to join them. Event
// status and event request status are updated by separate operations and are
// not kept in step with each other.
type EventService struct {
	store repositories.Store
	coord *Coordinator
}

// NewEventService creates a new event service
func NewEventService(store repositories.Store, coord *Coordinator) *EventService {
	return &EventService{
		store: store,
		coord: coord,
	}
}

// CreateEventInput represents create event input
type CreateEventInput struct {
	EventName   string    `json:"eventName"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	CreatedBy   string    `json:"-"`
}

// UpdateEventStatusInput represents update event status input
type UpdateEventStatusInput struct {
	Status   string `json:"status"`
	HODID    string `json:"-"`
	Comments string `json:"comments"`
}

// Create proposes a new event in Pending status
func (s *EventService) Create(ctx context.Context, input *CreateEventInput) (*models.EventResponse, error) {
	if strings.TrimSpace(input.EventName) == "" {
		return nil, domain.InvalidInput("eventName is required")
	}
	if input.Date.IsZero() {
		return nil, domain.InvalidInput("date is required")
	}

	creator, err := s.store.Users().GetByUserID(ctx, input.CreatedBy)
	if err != nil {
		return nil, readErr(err, "user %s not found", input.CreatedBy)
	}

	event := &models.Event{
		EventID:     uuid.NewString(),
		EventName:   strings.TrimSpace(input.EventName),
		Description: input.Description,
		Date:        input.Date.UTC(),
		Location:    input.Location,
		Status:      string(domain.EventPending),
		CreatedBy:   creator.UserID,
		CreatedDate: time.Now().UTC(),
	}

	ops := []graph.Op{
		graph.CreateNode{
			Node: eventNode(event.EventID),
			Props: graph.Props{
				"eventName":   event.EventName,
				"description": event.Description,
				"date":        graph.Timestamp(event.Date),
				"location":    event.Location,
				"status":      event.Status,
				"createdBy":   event.CreatedBy,
				"comments":    "",
			},
		},
	}
	err = s.coord.Apply(ctx, "createEvent", ops, func(ctx context.Context, tx repositories.Store) error {
		return tx.Events().Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	return s.resolve(ctx, event), nil
}

// UpdateStatus approves, rejects or completes an event. Only HODs may do it;
// there is no department check for events.
func (s *EventService) UpdateStatus(ctx context.Context, eventID string, input *UpdateEventStatusInput) (*models.EventResponse, error) {
	target := domain.EventStatus(input.Status)
	if !target.Valid() {
		return nil, domain.InvalidInput("unknown event status %q", input.Status)
	}

	hod, err := s.store.Users().GetByUserID(ctx, input.HODID)
	if err != nil {
		return nil, readErr(err, "HOD %s not found", input.HODID)
	}
	if hod.Role != string(domain.RoleHOD) {
		return nil, domain.Conflict("user %s is not an HOD", hod.UserID)
	}

	event, err := s.store.Events().GetByEventID(ctx, eventID)
	if err != nil {
		return nil, readErr(err, "event %s not found", eventID)
	}
	if !eventCanMove(domain.EventStatus(event.Status), target) {
		return nil, domain.Conflict("event %s cannot move from %s to %s", eventID, event.Status, target)
	}

	event.Status = string(target)
	event.ApprovedBy = hod.UserID
	event.Comments = input.Comments

	ops := []graph.Op{
		graph.SetNodeProps{
			Node: eventNode(event.EventID),
			Props: graph.Props{
				"status":     event.Status,
				"approvedBy": event.ApprovedBy,
				"comments":   event.Comments,
			},
		},
	}
	err = s.coord.Apply(ctx, "updateEventStatus", ops, func(ctx context.Context, tx repositories.Store) error {
		return tx.Events().Update(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	return s.resolve(ctx, event), nil
}

func eventCanMove(from, to domain.EventStatus) bool {
	for _, next := range eventTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Delete removes the event document, then the graph node and its edges
func (s *EventService) Delete(ctx context.Context, eventID string) error {
	if _, err := s.store.Events().GetByEventID(ctx, eventID); err != nil {
		return readErr(err, "event %s not found", eventID)
	}

	doc := func(ctx context.Context, tx repositories.Store) error {
		return tx.Events().Delete(ctx, eventID)
	}
	return s.coord.ApplyDocumentFirst(ctx, "deleteEvent", doc, []graph.Op{
		graph.DetachDeleteNode{Node: eventNode(eventID)},
	})
}

// Get returns one event
func (s *EventService) Get(ctx context.Context, eventID string) (*models.EventResponse, error) {
	event, err := s.store.Events().GetByEventID(ctx, eventID)
	if err != nil {
		return nil, readErr(err, "event %s not found", eventID)
	}
	return s.resolve(ctx, event), nil
}

// List returns every event, oldest first
func (s *EventService) List(ctx context.Context) ([]*models.EventResponse, error) {
	events, err := s.store.Events().List(ctx)
	if err != nil {
		return nil, domain.Unavailable("entity store", err)
	}
	out := make([]*models.EventResponse, len(events))
	for i, e := range events {
		out[i] = s.resolve(ctx, e)
	}
	return out, nil
}

func (s *EventService) resolve(ctx context.Context, e *models.Event) *models.EventResponse {
	resp := &models.EventResponse{
		EventID:     e.EventID,
		EventName:   e.EventName,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Status:      e.Status,
		CreatedDate: e.CreatedDate,
		Comments:    e.Comments,
	}
	if creator, err := s.store.Users().GetByUserID(ctx, e.CreatedBy); err == nil {
		resp.CreatedBy = creator.ToResponse()
	}
	if e.ApprovedBy != "" {
		if approver, err := s.store.Users().GetByUserID(ctx, e.ApprovedBy); err == nil {
			resp.ApprovedBy = approver.ToResponse()
		}
	}
	return resp
}

// ============================================================
// Event requests
// ============================================================

// CreateRequest records a student's request to take part in an event
func (s *EventService) CreateRequest(ctx context.Context, eventID, studentID, comments string) (*models.EventRequestResponse, error) {
	event, err := s.store.Events().GetByEventID(ctx, eventID)
	if err != nil {
		return nil, readErr(err, "event %s not found", eventID)
	}
	student, err := s.store.Users().GetByUserID(ctx, studentID)
	if err != nil {
		return nil, readErr(err, "student %s not found", studentID)
	}

	request := &models.EventRequest{
		RequestID:   uuid.NewString(),
		EventID:     event.EventID,
		StudentID:   student.UserID,
		Status:      string(domain.EventRequestPending),
		RequestDate: time.Now().UTC(),
		Comments:    comments,
	}

	ops := []graph.Op{
		graph.CreateEdge{
			Type: graph.Requested,
			From: userNode(student.UserID),
			To:   eventNode(event.EventID),
			Ref:  request.RequestID,
			Props: graph.Props{
				"status":      request.Status,
				"requestDate": graph.Timestamp(request.RequestDate),
				"comments":    comments,
			},
		},
	}
	err = s.coord.Apply(ctx, "createEventRequest", ops, func(ctx context.Context, tx repositories.Store) error {
		return tx.EventRequests().Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	return s.resolveRequest(ctx, request), nil
}

// ApproveRequest approves a Pending event request
func (s *EventService) ApproveRequest(ctx context.Context, requestID, hodID, comments string) (*models.EventRequestResponse, error) {
	return s.reviewRequest(ctx, "approveEventRequest", requestID, hodID, comments, domain.EventRequestApproved)
}

// RejectRequest rejects a Pending event request
func (s *EventService) RejectRequest(ctx context.Context, requestID, hodID, comments string) (*models.EventRequestResponse, error) {
	return s.reviewRequest(ctx, "rejectEventRequest", requestID, hodID, comments, domain.EventRequestRejected)
}

func (s *EventService) reviewRequest(ctx context.Context, name, requestID, hodID, comments string, to domain.EventRequestStatus) (*models.EventRequestResponse, error) {
	hod, err := s.store.Users().GetByUserID(ctx, hodID)
	if err != nil {
		return nil, readErr(err, "HOD %s not found", hodID)
	}
	if hod.Role != string(domain.RoleHOD) {
		return nil, domain.Conflict("user %s is not an HOD", hodID)
	}

	request, err := s.store.EventRequests().GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, readErr(err, "event request %s not found", requestID)
	}
	if request.Status != string(domain.EventRequestPending) {
		return nil, domain.Conflict("event request %s is not Pending (status %s)", requestID, request.Status)
	}

	ops := []graph.Op{
		graph.SetEdgeProps{
			Type: graph.Requested,
			Ref:  request.RequestID,
			Props: graph.Props{
				"status":     string(to),
				"approvedBy": hod.UserID,
				"comments":   comments,
			},
		},
	}
	err = s.coord.Apply(ctx, name, ops, func(ctx context.Context, tx repositories.Store) error {
		err := tx.EventRequests().Transition(ctx, request.RequestID, string(domain.EventRequestPending), string(to), comments)
		switch {
		case errors.Is(err, repositories.ErrStaleWrite):
			return domain.Conflict("event request %s changed status concurrently", requestID)
		case errors.Is(err, repositories.ErrRecordNotFound):
			return domain.NotFound("event request %s not found", requestID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	request.Status = string(to)
	request.Comments = comments
	return s.resolveRequest(ctx, request), nil
}

// ListRequests returns the requests for one event
func (s *EventService) ListRequests(ctx context.Context, eventID, status string) ([]*models.EventRequestResponse, error) {
	return s.listRequests(ctx, repositories.EventRequestFilter{EventID: eventID, Status: status})
}

// ListUserRequests returns a student's event requests
func (s *EventService) ListUserRequests(ctx context.Context, userID, status string) ([]*models.EventRequestResponse, error) {
	return s.listRequests(ctx, repositories.EventRequestFilter{StudentID: userID, Status: status})
}

func (s *EventService) listRequests(ctx context.Context, filter repositories.EventRequestFilter) ([]*models.EventRequestResponse, error) {
	if filter.Status != "" && !domain.EventRequestStatus(filter.Status).Valid() {
		return nil, domain.InvalidInput("unknown event request status %q", filter.Status)
	}
	requests, err := s.store.EventRequests().List(ctx, filter)
	if err != nil {
		return nil, domain.Unavailable("entity store", err)
	}
	out := make([]*models.EventRequestResponse, len(requests))
	for i, r := range requests {
		out[i] = s.resolveRequest(ctx, r)
	}
	return out, nil
}

func (s *EventService) resolveRequest(ctx context.Context, r *models.EventRequest) *models.EventRequestResponse {
	resp := &models.EventRequestResponse{
		RequestID:   r.RequestID,
		Status:      r.Status,
		RequestDate: r.RequestDate,
		Comments:    r.Comments,
	}
	if student, err := s.store.Users().GetByUserID(ctx, r.StudentID); err == nil {
		resp.Student = student.ToResponse()
	}
	if event, err := s.store.Events().GetByEventID(ctx, r.EventID); err == nil {
		resp.Event = event
	}
	return resp
}
