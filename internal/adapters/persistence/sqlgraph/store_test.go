package sqlgraph

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"campus-rms/internal/core/graph"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "graph.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func apply(t *testing.T, s *Store, ops ...graph.Op) {
	t.Helper()
	ctx := context.Background()
	session, err := s.Session(ctx)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer session.Close(ctx)
	for _, op := range ops {
		if err := session.Apply(ctx, op); err != nil {
			t.Fatalf("apply %s: %v", op.Name(), err)
		}
	}
}

var (
	alice = graph.NodeRef{Label: graph.LabelUser, Key: "u-1"}
	scope = graph.NodeRef{Label: graph.LabelEquipment, Key: "e-1"}
	cs    = graph.NodeRef{Label: graph.LabelDepartment, Key: "CS"}
)

func TestNodesAndEdges(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	apply(t, s,
		graph.CreateNode{Node: alice, Props: graph.Props{"name": "Alice", "department": "CS"}},
		graph.CreateNode{Node: scope, Props: graph.Props{"department": "CS", "status": "AVAILABLE"}},
		graph.MergeNode{Node: cs, Props: graph.Props{"location": "A"}},
		graph.MergeNode{Node: cs, Props: graph.Props{"location": "B"}},
		graph.CreateEdge{Type: graph.BelongsTo, From: alice, To: cs},
		graph.CreateEdge{Type: graph.Requested, From: alice, To: scope, Ref: "r-1", Props: graph.Props{"status": "PENDING"}},
		graph.SetEdgeProps{Type: graph.Requested, Ref: "r-1", Props: graph.Props{"status": "APPROVED"}},
		graph.SetNodeProps{Node: alice, Props: graph.Props{"name": "Alice B"}},
	)

	dept, err := s.GetNode(ctx, cs)
	if err != nil {
		t.Fatalf("get department: %v", err)
	}
	if dept.Props.String("location") != "A" {
		t.Fatalf("merge must not overwrite existing props, location = %q", dept.Props.String("location"))
	}

	node, err := s.GetNode(ctx, alice)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if node.Props.String("name") != "Alice B" || node.Props.String("department") != "CS" {
		t.Fatalf("user props = %v", node.Props)
	}

	edges, err := s.ListEdges(ctx, graph.EdgeFilter{Type: graph.Requested, Ref: "r-1"})
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(edges) != 1 || edges[0].From != alice || edges[0].To != scope {
		t.Fatalf("edges = %+v", edges)
	}
	if edges[0].Props.String("status") != "APPROVED" {
		t.Fatalf("edge status = %q", edges[0].Props.String("status"))
	}
	if edges[0].CreatedAt.IsZero() || time.Since(edges[0].CreatedAt) > time.Minute {
		t.Fatalf("createdAt = %v", edges[0].CreatedAt)
	}

	refs, err := s.DepartmentRequestRefs(ctx, "CS", "APPROVED")
	if err != nil {
		t.Fatalf("department refs: %v", err)
	}
	if len(refs) != 1 || refs[0] != "r-1" {
		t.Fatalf("refs = %v", refs)
	}
	if refs, _ := s.DepartmentRequestRefs(ctx, "CS", "PENDING"); len(refs) != 0 {
		t.Fatalf("status filter ignored: %v", refs)
	}

	depts, err := s.UserDepartments(ctx)
	if err != nil {
		t.Fatalf("user departments: %v", err)
	}
	if len(depts) != 1 || depts[0] != "CS" {
		t.Fatalf("departments = %v", depts)
	}

	if n := s.OpenSessions(); n != 0 {
		t.Fatalf("open sessions = %d", n)
	}
}

func TestNoMatch(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	session, err := s.Session(ctx)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer session.Close(ctx)

	for _, op := range []graph.Op{
		graph.SetNodeProps{Node: alice, Props: graph.Props{"name": "x"}},
		graph.CreateEdge{Type: graph.BelongsTo, From: alice, To: cs},
		graph.SetEdgeProps{Type: graph.Requested, Ref: "r-404", Props: graph.Props{"status": "x"}},
	} {
		if err := session.Apply(ctx, op); !errors.Is(err, graph.ErrNoMatch) {
			t.Fatalf("%s: expected ErrNoMatch, got %v", op.Name(), err)
		}
	}

	for _, op := range []graph.Op{
		graph.DetachDeleteNode{Node: alice},
		graph.DeleteEdges{Type: graph.BelongsTo, From: alice},
	} {
		if err := session.Apply(ctx, op); err != nil {
			t.Fatalf("%s on a missing node should be a no-op: %v", op.Name(), err)
		}
	}
}

func TestDetachDeleteAndSessionClose(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	apply(t, s,
		graph.CreateNode{Node: alice, Props: graph.Props{}},
		graph.CreateNode{Node: scope, Props: graph.Props{}},
		graph.CreateEdge{Type: graph.Used, From: alice, To: scope, Ref: "r-1"},
	)

	session, err := s.Session(ctx)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if s.OpenSessions() != 1 {
		t.Fatalf("open sessions = %d", s.OpenSessions())
	}
	if err := session.Apply(ctx, graph.DetachDeleteNode{Node: scope}); err != nil {
		t.Fatalf("detach delete: %v", err)
	}
	_ = session.Close(ctx)
	_ = session.Close(ctx)
	if s.OpenSessions() != 0 {
		t.Fatalf("double close released twice: %d", s.OpenSessions())
	}
	if err := session.Apply(ctx, graph.DetachDeleteNode{Node: alice}); !errors.Is(err, graph.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}

	edges, err := s.ListEdges(ctx, graph.EdgeFilter{})
	if err != nil {
		t.Fatalf("list edges: %v", err)
	}
	if len(edges) != 0 {
		t.Fatalf("incident edges left behind: %+v", edges)
	}
	if _, err := s.GetNode(ctx, alice); err != nil {
		t.Fatalf("other endpoint removed: %v", err)
	}
}
