package services

import (
	"errors"
	"testing"

	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/graph"
)

func TestUpdateUserMovesDepartmentEdge(t *testing.T) {
	h := newHarness(t)
	user := h.user("STAFF", "CS")

	name := "Renamed"
	dept := "Physics"
	updated, err := h.svc.Users.Update(h.ctx, user.UserID, &UpdateUserInput{Name: &name, Department: &dept})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.Name != "Renamed" || updated.Department != "Physics" {
		t.Fatalf("updated = %+v", updated)
	}

	node, err := h.graph.GetNode(h.ctx, userNode(user.UserID))
	if err != nil {
		t.Fatalf("user node: %v", err)
	}
	if node.Props.String("department") != "Physics" || node.Props.String("name") != "Renamed" {
		t.Fatalf("user node props = %v", node.Props)
	}

	from := userNode(user.UserID)
	edges := h.edges(graph.EdgeFilter{Type: graph.BelongsTo, From: &from})
	if len(edges) != 1 || edges[0].To != departmentNode("Physics") {
		t.Fatalf("BELONGS_TO edges = %+v", edges)
	}

	users, err := h.svc.Users.List(h.ctx, "Physics")
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].UserID != user.UserID {
		t.Fatalf("Physics users = %+v", users)
	}
	h.assertSessionsReleased()
}

func TestUpdateUserGuards(t *testing.T) {
	h := newHarness(t)
	a := h.user("STAFF", "CS")
	b := h.user("STAFF", "CS")

	taken := b.Email
	if _, err := h.svc.Users.Update(h.ctx, a.UserID, &UpdateUserInput{Email: &taken}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("taken email: expected Conflict, got %v", err)
	}
	blank := " "
	if _, err := h.svc.Users.Update(h.ctx, a.UserID, &UpdateUserInput{Name: &blank}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank name: expected InvalidInput, got %v", err)
	}
	if _, err := h.svc.Users.Update(h.ctx, "missing", &UpdateUserInput{Name: &blank}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing user: expected NotFound, got %v", err)
	}

	same, err := h.svc.Users.Update(h.ctx, a.UserID, &UpdateUserInput{})
	if err != nil {
		t.Fatalf("empty update: %v", err)
	}
	if same.Email != a.Email {
		t.Fatalf("empty update changed the user: %+v", same)
	}
}

func TestUpdateProfileLeavesCredentials(t *testing.T) {
	h := newHarness(t)
	user := h.user("STUDENT", "CS")

	stored, err := h.store.Users().GetByUserID(h.ctx, user.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	stored.Name = "Renamed"
	stored.Role = "HOD"
	stored.Password = "not-a-hash"
	if err := h.store.Users().UpdateProfile(h.ctx, stored); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	got, err := h.svc.Users.Get(h.ctx, user.UserID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Name != "Renamed" || got.Role != "STUDENT" {
		t.Fatalf("user after profile update = %+v", got)
	}
	if _, err := h.svc.Auth.Login(h.ctx, &LoginInput{Email: user.Email, Password: "password123"}); err != nil {
		t.Fatalf("password changed by profile update: %v", err)
	}

	stored.UserID = "missing"
	if err := h.store.Users().UpdateProfile(h.ctx, stored); !errors.Is(err, repositories.ErrRecordNotFound) {
		t.Fatalf("missing user: expected ErrRecordNotFound, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	h := newHarness(t)
	student := h.user("STUDENT", "CS")
	eq := h.equipment("CS")
	req := h.request(student.UserID, eq.EquipmentID)

	if err := h.svc.Users.Delete(h.ctx, student.UserID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("open request: expected Conflict, got %v", err)
	}

	if _, err := h.svc.Requests.Cancel(h.ctx, req.RequestID); err != nil {
		t.Fatalf("cancel request: %v", err)
	}
	if err := h.svc.Users.Delete(h.ctx, student.UserID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := h.svc.Users.Get(h.ctx, student.UserID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound after delete, got %v", err)
	}
	if _, err := h.graph.GetNode(h.ctx, userNode(student.UserID)); !errors.Is(err, graph.ErrNoMatch) {
		t.Fatalf("user node still present: %v", err)
	}
	if edges := h.edges(graph.EdgeFilter{Ref: req.RequestID}); len(edges) != 0 {
		t.Fatalf("edges of the deleted user remain: %d", len(edges))
	}

	// the cancelled request stays and resolves without a student
	got, err := h.svc.Requests.Get(h.ctx, req.RequestID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if got.Student != nil {
		t.Fatalf("deleted student still resolves: %+v", got.Student)
	}

	if err := h.svc.Users.Delete(h.ctx, student.UserID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected NotFound, got %v", err)
	}
	h.assertSessionsReleased()
}
