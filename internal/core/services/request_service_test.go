package services

import (
	"errors"
	"testing"
	"time"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/graph"
)

func TestLoanLifecycleEndToEnd(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	eq := h.equipment("CS")

	req := h.request(student.UserID, eq.EquipmentID)
	if req.Status != "PENDING" {
		t.Fatalf("new request status = %s", req.Status)
	}
	if req.Student == nil || req.Student.UserID != student.UserID {
		t.Fatalf("student not resolved: %+v", req.Student)
	}
	if req.Equipment == nil || req.Equipment.EquipmentID != eq.EquipmentID {
		t.Fatalf("equipment not resolved: %+v", req.Equipment)
	}
	if edge := h.requestEdge(req.RequestID); edge.From.Key != student.UserID || edge.To.Key != eq.EquipmentID {
		t.Fatalf("REQUESTED edge = %+v", edge)
	}

	hod := h.user("HOD", "CS")
	approved, err := h.svc.Requests.Approve(h.ctx, req.RequestID, hod.UserID, "ok")
	if err != nil {
		t.Fatalf("approve request: %v", err)
	}
	if approved.Status != "APPROVED" || approved.ApprovedBy == nil || approved.ApprovedBy.UserID != hod.UserID {
		t.Fatalf("approved = %+v", approved)
	}
	if approved.ApprovalDate == nil {
		t.Fatalf("approval date not set")
	}
	if got := h.equipmentStatus(eq.EquipmentID); got != "IN_USE" {
		t.Fatalf("equipment after approve = %s", got)
	}
	if got := h.requestEdge(req.RequestID).Props.String("status"); got != "APPROVED" {
		t.Fatalf("edge status after approve = %s", got)
	}

	completed, err := h.svc.Requests.Complete(h.ctx, req.RequestID, "returned")
	if err != nil {
		t.Fatalf("complete request: %v", err)
	}
	if completed.Status != "COMPLETED" || completed.ReturnDate == nil || completed.Comments != "returned" {
		t.Fatalf("completed = %+v", completed)
	}
	if got := h.equipmentStatus(eq.EquipmentID); got != "AVAILABLE" {
		t.Fatalf("equipment after complete = %s", got)
	}

	used := h.edges(graph.EdgeFilter{Type: graph.Used, Ref: req.RequestID})
	if len(used) != 1 {
		t.Fatalf("expected one USED edge, got %d", len(used))
	}
	if used[0].From.Key != student.UserID || used[0].To.Key != eq.EquipmentID {
		t.Fatalf("USED edge = %+v", used[0])
	}
	if got := used[0].Props.String("from"); got != graph.Timestamp(loanFrom) {
		t.Fatalf("USED.from = %s, want %s", got, graph.Timestamp(loanFrom))
	}

	h.assertSessionsReleased()
}

func TestCreateRequestNeedsAvailableEquipment(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	hod := h.user("HOD", "CS")
	eq := h.equipment("CS")

	first := h.request(student.UserID, eq.EquipmentID)
	if _, err := h.svc.Requests.Approve(h.ctx, first.RequestID, hod.UserID, ""); err != nil {
		t.Fatalf("approve request: %v", err)
	}

	other := h.user("STUDENT", "CS")
	_, err := h.svc.Requests.Create(h.ctx, &CreateRequestInput{
		StudentID:     other.UserID,
		EquipmentID:   eq.EquipmentID,
		RequiredFrom:  loanFrom,
		RequiredUntil: loanFrom.Add(time.Hour),
		Purpose:       "thesis",
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected Conflict for IN_USE equipment, got %v", err)
	}

	requests, err := h.store.Requests().List(h.ctx, requestsOf(other.UserID))
	if err != nil {
		t.Fatalf("list requests: %v", err)
	}
	if len(requests) != 0 {
		t.Fatalf("request document created despite conflict")
	}
	from := userNode(other.UserID)
	if edges := h.edges(graph.EdgeFilter{Type: graph.Requested, From: &from}); len(edges) != 0 {
		t.Fatalf("REQUESTED edge created despite conflict")
	}
	h.assertSessionsReleased()
}

func TestCreateRequestGuards(t *testing.T) {
	h := newHarness(t)
	student := h.user("STUDENT", "CS")
	hod := h.user("HOD", "CS")
	eq := h.equipment("CS")

	tests := []struct {
		name  string
		input CreateRequestInput
		want  error
	}{
		{"hod cannot request", CreateRequestInput{StudentID: hod.UserID, EquipmentID: eq.EquipmentID}, domain.ErrConflict},
		{"unknown student", CreateRequestInput{StudentID: "missing", EquipmentID: eq.EquipmentID}, domain.ErrNotFound},
		{"unknown equipment", CreateRequestInput{StudentID: student.UserID, EquipmentID: "missing"}, domain.ErrNotFound},
		{"no purpose", CreateRequestInput{StudentID: student.UserID, EquipmentID: eq.EquipmentID, Purpose: " "}, domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.input
			in.RequiredFrom = loanFrom
			in.RequiredUntil = loanFrom.Add(time.Hour)
			if in.Purpose == "" {
				in.Purpose = "lab"
			}
			if _, err := h.svc.Requests.Create(h.ctx, &in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	_, err := h.svc.Requests.Create(h.ctx, &CreateRequestInput{
		StudentID:     student.UserID,
		EquipmentID:   eq.EquipmentID,
		RequiredFrom:  loanFrom,
		RequiredUntil: loanFrom.Add(-time.Hour),
		Purpose:       "lab",
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for reversed window, got %v", err)
	}
}

func TestApproveRequiresSameDepartment(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	eq := h.equipment("CS")
	req := h.request(student.UserID, eq.EquipmentID)
	outsider := h.user("HOD", "Physics")

	if _, err := h.svc.Requests.Approve(h.ctx, req.RequestID, outsider.UserID, ""); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if got := h.requestStatus(req.RequestID); got != "PENDING" {
		t.Fatalf("request status = %s", got)
	}
	if got := h.equipmentStatus(eq.EquipmentID); got != "AVAILABLE" {
		t.Fatalf("equipment status = %s", got)
	}
}

func TestRejectByOtherDepartmentLeavesPending(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	eq := h.equipment("CS")
	req := h.request(student.UserID, eq.EquipmentID)
	outsider := h.user("HOD", "cs")

	if _, err := h.svc.Requests.Reject(h.ctx, req.RequestID, outsider.UserID, "no"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected Conflict (department names are case-sensitive), got %v", err)
	}
	if got := h.requestStatus(req.RequestID); got != "PENDING" {
		t.Fatalf("request status = %s", got)
	}
	if got := h.requestEdge(req.RequestID).Props.String("status"); got != "PENDING" {
		t.Fatalf("edge status = %s", got)
	}
	if edges := h.edges(graph.EdgeFilter{Type: graph.Rejected}); len(edges) != 0 {
		t.Fatalf("REJECTED edge created on guard failure")
	}
}

func TestApproveByStudentIsConflict(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	eq := h.equipment("CS")
	req := h.request(student.UserID, eq.EquipmentID)

	if _, err := h.svc.Requests.Approve(h.ctx, req.RequestID, student.UserID, ""); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if _, err := h.svc.Requests.Approve(h.ctx, "missing", student.UserID, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestApproveTwiceIsConflict(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	hod := h.user("HOD", "CS")
	eq := h.equipment("CS")
	req := h.request(student.UserID, eq.EquipmentID)

	if _, err := h.svc.Requests.Approve(h.ctx, req.RequestID, hod.UserID, ""); err != nil {
		t.Fatalf("first approve: %v", err)
	}
	_, err := h.svc.Requests.Approve(h.ctx, req.RequestID, hod.UserID, "")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected Conflict on second approve, got %v", err)
	}
	if errors.Is(err, domain.ErrDocumentWriteFailed) || errors.Is(err, domain.ErrGraphWriteFailed) {
		t.Fatalf("second approve must fail before any write: %v", err)
	}
}

func TestRejectRecordsAuditEdge(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	hod := h.user("HOD", "CS")
	eq := h.equipment("CS")
	req := h.request(student.UserID, eq.EquipmentID)

	rejected, err := h.svc.Requests.Reject(h.ctx, req.RequestID, hod.UserID, "broken lens")
	if err != nil {
		t.Fatalf("reject request: %v", err)
	}
	if rejected.Status != "REJECTED" || rejected.Comments != "broken lens" {
		t.Fatalf("rejected = %+v", rejected)
	}
	if got := h.equipmentStatus(eq.EquipmentID); got != "AVAILABLE" {
		t.Fatalf("equipment status = %s", got)
	}

	audit := h.edges(graph.EdgeFilter{Type: graph.Rejected})
	if len(audit) != 1 {
		t.Fatalf("expected one REJECTED edge, got %d", len(audit))
	}
	if audit[0].From.Key != hod.UserID || audit[0].To.Key != eq.EquipmentID {
		t.Fatalf("REJECTED edge = %+v", audit[0])
	}
	if audit[0].Props.String("reason") != "broken lens" {
		t.Fatalf("REJECTED reason = %q", audit[0].Props.String("reason"))
	}
	if got := h.requestEdge(req.RequestID).Props.String("status"); got != "REJECTED" {
		t.Fatalf("REQUESTED status = %s", got)
	}
}

func TestCancelApprovedReleasesEquipment(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	hod := h.user("HOD", "CS")
	eq := h.equipment("CS")
	req := h.request(student.UserID, eq.EquipmentID)

	if _, err := h.svc.Requests.Approve(h.ctx, req.RequestID, hod.UserID, ""); err != nil {
		t.Fatalf("approve request: %v", err)
	}
	cancelled, err := h.svc.Requests.Cancel(h.ctx, req.RequestID)
	if err != nil {
		t.Fatalf("cancel request: %v", err)
	}
	if cancelled.Status != "CANCELLED" {
		t.Fatalf("status = %s", cancelled.Status)
	}
	if got := h.equipmentStatus(eq.EquipmentID); got != "AVAILABLE" {
		t.Fatalf("equipment status = %s", got)
	}
	if got := h.requestEdge(req.RequestID).Props.String("status"); got != "CANCELLED" {
		t.Fatalf("edge status = %s", got)
	}
}

func TestCancelPendingKeepsEquipmentStatus(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	eq := h.equipment("CS")
	req := h.request(student.UserID, eq.EquipmentID)

	if _, err := h.svc.Requests.Cancel(h.ctx, req.RequestID); err != nil {
		t.Fatalf("cancel request: %v", err)
	}
	if got := h.equipmentStatus(eq.EquipmentID); got != "AVAILABLE" {
		t.Fatalf("cancelling a pending request changed equipment to %s", got)
	}
	if _, err := h.svc.Equipment.ChangeStatus(h.ctx, eq.EquipmentID, "MAINTENANCE"); err != nil {
		t.Fatalf("change status after cancel: %v", err)
	}
}

func TestDisposedEquipmentCannotBeLent(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	hod := h.user("HOD", "CS")
	eq := h.equipment("CS")
	req := h.request(student.UserID, eq.EquipmentID)

	for _, status := range []string{"DISPOSED", "MAINTENANCE"} {
		if _, err := h.svc.Equipment.ChangeStatus(h.ctx, eq.EquipmentID, status); !errors.Is(err, domain.ErrConflict) {
			t.Fatalf("move to %s with a pending request: expected Conflict, got %v", status, err)
		}
	}

	// equipment that left AVAILABLE through a path that skipped the guard
	if err := h.store.Equipment().UpdateStatus(h.ctx, eq.EquipmentID, []string{"AVAILABLE"}, "DISPOSED"); err != nil {
		t.Fatalf("set status: %v", err)
	}
	if _, err := h.svc.Requests.Approve(h.ctx, req.RequestID, hod.UserID, ""); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("approve on DISPOSED equipment: expected Conflict, got %v", err)
	}
	if got := h.requestStatus(req.RequestID); got != "PENDING" {
		t.Fatalf("request status = %s", got)
	}
	if got := h.equipmentStatus(eq.EquipmentID); got != "DISPOSED" {
		t.Fatalf("equipment status = %s", got)
	}

	// rejecting does not depend on the equipment status
	if _, err := h.svc.Requests.Reject(h.ctx, req.RequestID, hod.UserID, "disposed"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	h.assertSessionsReleased()
}

func TestSecondLoanOfSameEquipmentLoses(t *testing.T) {
	h := newHarness(t)

	s1 := h.user("STUDENT", "CS")
	s2 := h.user("STUDENT", "CS")
	hod := h.user("HOD", "CS")
	eq := h.equipment("CS")
	r1 := h.request(s1.UserID, eq.EquipmentID)
	r2 := h.request(s2.UserID, eq.EquipmentID)

	// a reviewer that loaded r2 and the equipment before r1 was approved
	late := h.with(&staleReads{
		Store:     h.store,
		requests:  map[string]*models.Request{r2.RequestID: h.snapshotRequest(r2.RequestID)},
		equipment: map[string]*models.Equipment{eq.EquipmentID: h.snapshotEquipment(eq.EquipmentID)},
	}, h.graph)

	if _, err := h.svc.Requests.Approve(h.ctx, r1.RequestID, hod.UserID, ""); err != nil {
		t.Fatalf("approve first: %v", err)
	}
	if _, err := h.svc.Requests.Approve(h.ctx, r2.RequestID, hod.UserID, ""); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("approve second on IN_USE equipment: expected Conflict, got %v", err)
	}

	_, err := late.Requests.Approve(h.ctx, r2.RequestID, hod.UserID, "")
	if !errors.Is(err, domain.ErrDocumentWriteFailed) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("stale approve: expected DocumentWriteFailed wrapping Conflict, got %v", err)
	}
	if got := h.requestStatus(r2.RequestID); got != "PENDING" {
		t.Fatalf("losing approve committed its request row: %s", got)
	}

	if _, err := h.svc.Requests.Complete(h.ctx, r1.RequestID, ""); err != nil {
		t.Fatalf("complete first: %v", err)
	}
	if got := h.equipmentStatus(eq.EquipmentID); got != "AVAILABLE" {
		t.Fatalf("equipment status = %s", got)
	}
	h.assertSessionsReleased()
}

func TestTerminalRequestsCannotMove(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	hod := h.user("HOD", "CS")

	terminal := map[string]string{}

	eq1 := h.equipment("CS")
	r1 := h.request(student.UserID, eq1.EquipmentID)
	if _, err := h.svc.Requests.Reject(h.ctx, r1.RequestID, hod.UserID, "no"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	terminal["REJECTED"] = r1.RequestID

	eq2 := h.equipment("CS")
	r2 := h.request(student.UserID, eq2.EquipmentID)
	if _, err := h.svc.Requests.Approve(h.ctx, r2.RequestID, hod.UserID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := h.svc.Requests.Complete(h.ctx, r2.RequestID, ""); err != nil {
		t.Fatalf("complete: %v", err)
	}
	terminal["COMPLETED"] = r2.RequestID

	eq3 := h.equipment("CS")
	r3 := h.request(student.UserID, eq3.EquipmentID)
	if _, err := h.svc.Requests.Cancel(h.ctx, r3.RequestID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	terminal["CANCELLED"] = r3.RequestID

	for status, id := range terminal {
		t.Run(status, func(t *testing.T) {
			moves := map[string]func() error{
				"approve":  func() error { _, err := h.svc.Requests.Approve(h.ctx, id, hod.UserID, ""); return err },
				"reject":   func() error { _, err := h.svc.Requests.Reject(h.ctx, id, hod.UserID, ""); return err },
				"complete": func() error { _, err := h.svc.Requests.Complete(h.ctx, id, ""); return err },
				"cancel":   func() error { _, err := h.svc.Requests.Cancel(h.ctx, id); return err },
			}
			for name, move := range moves {
				if err := move(); !errors.Is(err, domain.ErrConflict) {
					t.Fatalf("%s from %s: expected Conflict, got %v", name, status, err)
				}
			}
			if got := h.requestStatus(id); got != status {
				t.Fatalf("status moved from %s to %s", status, got)
			}
		})
	}

	if _, err := h.svc.Requests.Complete(h.ctx, h.request(student.UserID, h.equipment("CS").EquipmentID).RequestID, ""); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("complete from PENDING: expected Conflict, got %v", err)
	}
	h.assertSessionsReleased()
}

func TestStaleReadLosesConditionalWrite(t *testing.T) {
	h := newHarness(t)

	student := h.user("STUDENT", "CS")
	hod := h.user("HOD", "CS")
	eq := h.equipment("CS")
	req := h.request(student.UserID, eq.EquipmentID)

	// a second approver that read the request while it was still PENDING
	late := h.with(&staleReads{
		Store:     h.store,
		requests:  map[string]*models.Request{req.RequestID: h.snapshotRequest(req.RequestID)},
		equipment: map[string]*models.Equipment{eq.EquipmentID: h.snapshotEquipment(eq.EquipmentID)},
	}, h.graph)

	if _, err := h.svc.Requests.Approve(h.ctx, req.RequestID, hod.UserID, "first"); err != nil {
		t.Fatalf("approve request: %v", err)
	}
	_, err := late.Requests.Approve(h.ctx, req.RequestID, hod.UserID, "second")
	if !errors.Is(err, domain.ErrDocumentWriteFailed) || !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected DocumentWriteFailed wrapping Conflict, got %v", err)
	}

	stored, err := h.store.Requests().GetByRequestID(h.ctx, req.RequestID)
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if stored.Comments != "first" {
		t.Fatalf("losing write overwrote the request: comments = %q", stored.Comments)
	}
	h.assertSessionsReleased()
}

func TestRequestQueries(t *testing.T) {
	h := newHarness(t)

	s1 := h.user("STUDENT", "CS")
	s2 := h.user("STUDENT", "Physics")
	hod := h.user("HOD", "CS")
	csEq := h.equipment("CS")
	physEq := h.equipment("Physics")

	r1 := h.request(s1.UserID, csEq.EquipmentID)
	r2 := h.request(s2.UserID, physEq.EquipmentID)
	if _, err := h.svc.Requests.Approve(h.ctx, r1.RequestID, hod.UserID, ""); err != nil {
		t.Fatalf("approve: %v", err)
	}

	cs, err := h.svc.Requests.ListByDepartment(h.ctx, "CS", "")
	if err != nil {
		t.Fatalf("department requests: %v", err)
	}
	if len(cs) != 1 || cs[0].RequestID != r1.RequestID {
		t.Fatalf("CS requests = %+v", cs)
	}

	pending, err := h.svc.Requests.ListByDepartment(h.ctx, "CS", "PENDING")
	if err != nil {
		t.Fatalf("department requests: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending CS requests, got %d", len(pending))
	}

	mine, err := h.svc.Requests.ListByUser(h.ctx, s2.UserID, "")
	if err != nil {
		t.Fatalf("user requests: %v", err)
	}
	if len(mine) != 1 || mine[0].RequestID != r2.RequestID {
		t.Fatalf("user requests = %+v", mine)
	}

	byEq, err := h.svc.Requests.ListByEquipment(h.ctx, csEq.EquipmentID, "APPROVED")
	if err != nil {
		t.Fatalf("equipment requests: %v", err)
	}
	if len(byEq) != 1 || byEq[0].ApprovedBy == nil {
		t.Fatalf("equipment requests = %+v", byEq)
	}

	if _, err := h.svc.Requests.ListByUser(h.ctx, s1.UserID, "LOST"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for unknown status, got %v", err)
	}
	if _, err := h.svc.Requests.Get(h.ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
