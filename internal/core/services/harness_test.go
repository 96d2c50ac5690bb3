package services

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/adapters/persistence/sqlgraph"
	"campus-rms/internal/core/graph"
	"campus-rms/internal/testutil"
)

var errBoom = errors.New("boom")

type harness struct {
	t     *testing.T
	ctx   context.Context
	svc   *Services
	store repositories.Store
	graph *sqlgraph.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, g := testutil.Stores(t)
	return &harness{
		t:     t,
		ctx:   context.Background(),
		svc:   New(store, g, testutil.Hasher(), testutil.JWT),
		store: store,
		graph: g,
	}
}

// with rebuilds the services over wrapped stores that share the harness databases
func (h *harness) with(store repositories.Store, g graph.Store) *Services {
	return New(store, g, testutil.Hasher(), testutil.JWT)
}

var userSeq atomic.Int64

func (h *harness) user(role, department string) *models.UserResponse {
	h.t.Helper()
	n := userSeq.Add(1)
	resp, err := h.svc.Auth.Register(h.ctx, &RegisterInput{
		Name:       role + " user",
		Email:      role + "-" + strconv.FormatInt(n, 10) + "@campus.test",
		Password:   "password123",
		Role:       role,
		Department: department,
	})
	if err != nil {
		h.t.Fatalf("register %s: %v", role, err)
	}
	return resp.User
}

func (h *harness) equipment(department string) *models.Equipment {
	h.t.Helper()
	e, err := h.svc.Equipment.Create(h.ctx, &CreateEquipmentInput{
		Name:       "Microscope",
		Category:   "Optics",
		Department: department,
	})
	if err != nil {
		h.t.Fatalf("create equipment: %v", err)
	}
	return e
}

var loanFrom = time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

func (h *harness) request(studentID, equipmentID string) *models.RequestResponse {
	h.t.Helper()
	r, err := h.svc.Requests.Create(h.ctx, &CreateRequestInput{
		StudentID:     studentID,
		EquipmentID:   equipmentID,
		RequiredFrom:  loanFrom,
		RequiredUntil: loanFrom.Add(48 * time.Hour),
		Purpose:       "lab work",
	})
	if err != nil {
		h.t.Fatalf("create request: %v", err)
	}
	return r
}

func (h *harness) equipmentStatus(id string) string {
	h.t.Helper()
	e, err := h.store.Equipment().GetByEquipmentID(h.ctx, id)
	if err != nil {
		h.t.Fatalf("get equipment: %v", err)
	}
	return e.Status
}

func (h *harness) requestStatus(id string) string {
	h.t.Helper()
	r, err := h.store.Requests().GetByRequestID(h.ctx, id)
	if err != nil {
		h.t.Fatalf("get request: %v", err)
	}
	return r.Status
}

func (h *harness) edges(filter graph.EdgeFilter) []graph.Edge {
	h.t.Helper()
	edges, err := h.graph.ListEdges(h.ctx, filter)
	if err != nil {
		h.t.Fatalf("list edges: %v", err)
	}
	return edges
}

func (h *harness) requestEdge(requestID string) graph.Edge {
	h.t.Helper()
	edges := h.edges(graph.EdgeFilter{Type: graph.Requested, Ref: requestID})
	if len(edges) != 1 {
		h.t.Fatalf("expected one REQUESTED edge for %s, got %d", requestID, len(edges))
	}
	return edges[0]
}

func (h *harness) assertSessionsReleased() {
	h.t.Helper()
	if n := h.graph.OpenSessions(); n != 0 {
		h.t.Fatalf("graph sessions still open: %d", n)
	}
}

// failingGraph fails the failAt-th Apply across all sessions (1-based)
type failingGraph struct {
	graph.Store
	failAt  int
	applied int
}

func (f *failingGraph) Session(ctx context.Context) (graph.Session, error) {
	inner, err := f.Store.Session(ctx)
	if err != nil {
		return nil, err
	}
	return &failingSession{Session: inner, parent: f}, nil
}

type failingSession struct {
	graph.Session
	parent *failingGraph
}

func (s *failingSession) Apply(ctx context.Context, op graph.Op) error {
	s.parent.applied++
	if s.parent.applied == s.parent.failAt {
		return errBoom
	}
	return s.Session.Apply(ctx, op)
}

// failingEntities fails every entity store session
type failingEntities struct {
	repositories.Store
}

func (f *failingEntities) WithSession(ctx context.Context, fn func(ctx context.Context, s repositories.Store) error) error {
	return errBoom
}

// staleReads serves request and equipment reads from snapshots, as a
// concurrent caller that read before another writer committed would see them.
// Writes inside WithSession reach the live store.
type staleReads struct {
	repositories.Store
	requests  map[string]*models.Request
	equipment map[string]*models.Equipment
}

func (s *staleReads) Requests() repositories.RequestRepository {
	return &staleRequestRepo{RequestRepository: s.Store.Requests(), snapshot: s.requests}
}

func (s *staleReads) Equipment() repositories.EquipmentRepository {
	return &staleEquipmentRepo{EquipmentRepository: s.Store.Equipment(), snapshot: s.equipment}
}

func (s *staleReads) WithSession(ctx context.Context, fn func(ctx context.Context, s repositories.Store) error) error {
	return s.Store.WithSession(ctx, fn)
}

type staleRequestRepo struct {
	repositories.RequestRepository
	snapshot map[string]*models.Request
}

func (r *staleRequestRepo) GetByRequestID(ctx context.Context, id string) (*models.Request, error) {
	if req, ok := r.snapshot[id]; ok {
		copied := *req
		return &copied, nil
	}
	return r.RequestRepository.GetByRequestID(ctx, id)
}

type staleEquipmentRepo struct {
	repositories.EquipmentRepository
	snapshot map[string]*models.Equipment
}

func (r *staleEquipmentRepo) GetByEquipmentID(ctx context.Context, id string) (*models.Equipment, error) {
	if e, ok := r.snapshot[id]; ok {
		copied := *e
		return &copied, nil
	}
	return r.EquipmentRepository.GetByEquipmentID(ctx, id)
}

func (h *harness) snapshotRequest(id string) *models.Request {
	h.t.Helper()
	r, err := h.store.Requests().GetByRequestID(h.ctx, id)
	if err != nil {
		h.t.Fatalf("get request: %v", err)
	}
	return r
}

func (h *harness) snapshotEquipment(id string) *models.Equipment {
	h.t.Helper()
	e, err := h.store.Equipment().GetByEquipmentID(h.ctx, id)
	if err != nil {
		h.t.Fatalf("get equipment: %v", err)
	}
	return e
}

func requestsOf(studentID string) repositories.RequestFilter {
	return repositories.RequestFilter{StudentID: studentID}
}
