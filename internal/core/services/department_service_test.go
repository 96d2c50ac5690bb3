package services

import (
	"errors"
	"testing"

	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/graph"
)

func TestDepartmentViewFromUsers(t *testing.T) {
	h := newHarness(t)
	first := h.user("HOD", "CS")
	h.user("HOD", "CS")
	h.user("STUDENT", "CS")
	h.user("STUDENT", "Physics")
	eq := h.equipment("CS")

	dept, err := h.svc.Departments.Get(h.ctx, "CS")
	if err != nil {
		t.Fatalf("get department: %v", err)
	}
	if dept.HOD == nil || dept.HOD.UserID != first.UserID {
		t.Fatalf("HOD should be the earliest HOD of the department, got %+v", dept.HOD)
	}
	if len(dept.Equipment) != 1 || dept.Equipment[0].EquipmentID != eq.EquipmentID {
		t.Fatalf("equipment = %+v", dept.Equipment)
	}

	physics, err := h.svc.Departments.Get(h.ctx, "Physics")
	if err != nil {
		t.Fatalf("get department: %v", err)
	}
	if physics.HOD != nil {
		t.Fatalf("Physics has no HOD, got %+v", physics.HOD)
	}

	if _, err := h.svc.Departments.Get(h.ctx, "cs"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("names are case-sensitive: expected NotFound, got %v", err)
	}

	all, err := h.svc.Departments.List(h.ctx)
	if err != nil {
		t.Fatalf("list departments: %v", err)
	}
	if len(all) != 2 || all[0].Name != "CS" || all[1].Name != "Physics" {
		t.Fatalf("departments = %+v", all)
	}

	member := userNode(first.UserID)
	edges := h.edges(graph.EdgeFilter{Type: graph.BelongsTo, From: &member})
	if len(edges) != 1 || edges[0].To != departmentNode("CS") {
		t.Fatalf("BELONGS_TO edges = %+v", edges)
	}
}

func TestCreateAndUpdateDepartment(t *testing.T) {
	h := newHarness(t)
	bioHOD := h.user("HOD", "Biology")
	student := h.user("STUDENT", "Biology")

	dept, err := h.svc.Departments.Create(h.ctx, &CreateDepartmentInput{Name: "Chemistry", Location: "Block C", HODID: bioHOD.UserID})
	if err != nil {
		t.Fatalf("create department: %v", err)
	}
	if dept.Location != "Block C" {
		t.Fatalf("location = %q", dept.Location)
	}
	if dept.HOD != nil {
		t.Fatalf("an HOD of another department must not resolve, got %+v", dept.HOD)
	}

	if _, err := h.svc.Departments.Create(h.ctx, &CreateDepartmentInput{Name: "Chemistry"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate: expected Conflict, got %v", err)
	}
	if _, err := h.svc.Departments.Create(h.ctx, &CreateDepartmentInput{Name: "Maths", HODID: student.UserID}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("student as HOD: expected Conflict, got %v", err)
	}
	if _, err := h.svc.Departments.Create(h.ctx, &CreateDepartmentInput{Name: " "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("empty name: expected InvalidInput, got %v", err)
	}

	chemHOD := h.user("HOD", "Chemistry")
	later := h.user("HOD", "Chemistry")
	location := "Block D"
	updated, err := h.svc.Departments.Update(h.ctx, "Chemistry", &UpdateDepartmentInput{Location: &location, HODID: &later.UserID})
	if err != nil {
		t.Fatalf("update department: %v", err)
	}
	if updated.Location != "Block D" || updated.HOD == nil || updated.HOD.UserID != later.UserID {
		t.Fatalf("updated = %+v (first HOD %s)", updated, chemHOD.UserID)
	}

	// a department only known from users gets its node on first update
	loc := "Lab wing"
	bio, err := h.svc.Departments.Update(h.ctx, "Biology", &UpdateDepartmentInput{Location: &loc})
	if err != nil {
		t.Fatalf("update Biology: %v", err)
	}
	if bio.Location != "Lab wing" || bio.HOD == nil || bio.HOD.UserID != bioHOD.UserID {
		t.Fatalf("Biology = %+v", bio)
	}

	if _, err := h.svc.Departments.Update(h.ctx, "Astronomy", &UpdateDepartmentInput{Location: &loc}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown department: expected NotFound, got %v", err)
	}
	h.assertSessionsReleased()
}
