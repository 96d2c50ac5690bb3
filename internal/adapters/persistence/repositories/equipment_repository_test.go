package repositories_test

import (
	"context"
	"errors"
	"testing"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/testutil"
)

func seedEquipment(t *testing.T, store repositories.Store, id, status string) {
	t.Helper()
	err := store.Equipment().Create(context.Background(), &models.Equipment{
		EquipmentID: id,
		Name:        "Microscope",
		Category:    "Optics",
		Department:  "CS",
		Status:      status,
	})
	if err != nil {
		t.Fatalf("create equipment: %v", err)
	}
}

func TestEquipmentUpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewStore(testutil.OpenDB(t))
	seedEquipment(t, store, "e-1", "AVAILABLE")

	if err := store.Equipment().UpdateStatus(ctx, "e-1", []string{"AVAILABLE"}, "IN_USE"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	err := store.Equipment().UpdateStatus(ctx, "e-1", []string{"AVAILABLE", "MAINTENANCE"}, "DISPOSED")
	if !errors.Is(err, repositories.ErrStaleWrite) {
		t.Fatalf("expected ErrStaleWrite, got %v", err)
	}
	err = store.Equipment().UpdateStatus(ctx, "missing", []string{"AVAILABLE"}, "IN_USE")
	if !errors.Is(err, repositories.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	got, err := store.Equipment().GetByEquipmentID(ctx, "e-1")
	if err != nil {
		t.Fatalf("get equipment: %v", err)
	}
	if got.Status != "IN_USE" {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestEquipmentUpdateDetailsSkipsStatus(t *testing.T) {
	ctx := context.Background()
	store := repositories.NewStore(testutil.OpenDB(t))
	seedEquipment(t, store, "e-1", "AVAILABLE")

	stale, err := store.Equipment().GetByEquipmentID(ctx, "e-1")
	if err != nil {
		t.Fatalf("get equipment: %v", err)
	}
	if err := store.Equipment().UpdateStatus(ctx, "e-1", []string{"AVAILABLE"}, "MAINTENANCE"); err != nil {
		t.Fatalf("update status: %v", err)
	}

	value := 250.0
	stale.Name = "Stereo microscope"
	stale.Value = &value
	stale.Department = "Physics"
	if err := store.Equipment().UpdateDetails(ctx, stale); err != nil {
		t.Fatalf("update details: %v", err)
	}

	got, err := store.Equipment().GetByEquipmentID(ctx, "e-1")
	if err != nil {
		t.Fatalf("get equipment: %v", err)
	}
	if got.Status != "MAINTENANCE" || got.Department != "CS" {
		t.Fatalf("details write touched status or department: %+v", got)
	}
	if got.Name != "Stereo microscope" || got.Value == nil || *got.Value != 250 {
		t.Fatalf("equipment = %+v", got)
	}

	stale.EquipmentID = "missing"
	if err := store.Equipment().UpdateDetails(ctx, stale); !errors.Is(err, repositories.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
