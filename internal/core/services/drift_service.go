package services

import (
	"context"
	"log"
	"time"

	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/core/domain"
	"campus-rms/internal/core/graph"
)

// DriftService compares loan requests in the two stores. It reports and
// never repairs.
type DriftService struct {
	store repositories.Store
	graph graph.Store
}

// NewDriftService creates a new drift checker
func NewDriftService(store repositories.Store, graphStore graph.Store) *DriftService {
	return &DriftService{
		store: store,
		graph: graphStore,
	}
}

// StatusMismatch is a request whose edge and document disagree on status
type StatusMismatch struct {
	RequestID      string `json:"requestId" yaml:"requestId"`
	GraphStatus    string `json:"graphStatus" yaml:"graphStatus"`
	DocumentStatus string `json:"documentStatus" yaml:"documentStatus"`
}

// DriftReport is the outcome of one check
type DriftReport struct {
	CheckedAt        time.Time        `json:"checkedAt" yaml:"checkedAt"`
	Edges            int              `json:"edges" yaml:"edges"`
	Documents        int              `json:"documents" yaml:"documents"`
	OrphanEdges      []string         `json:"orphanEdges" yaml:"orphanEdges"`
	MissingEdges     []string         `json:"missingEdges" yaml:"missingEdges"`
	StatusMismatches []StatusMismatch `json:"statusMismatches" yaml:"statusMismatches"`
}

// Consistent reports whether nothing drifted
func (r *DriftReport) Consistent() bool {
	return len(r.OrphanEdges) == 0 && len(r.MissingEdges) == 0 && len(r.StatusMismatches) == 0
}

// Check walks every REQUESTED edge into equipment and every request
// document. An orphan edge is what a failed document write leaves behind.
func (s *DriftService) Check(ctx context.Context) (*DriftReport, error) {
	edges, err := s.graph.ListEdges(ctx, graph.EdgeFilter{Type: graph.Requested, ToLabel: graph.LabelEquipment})
	if err != nil {
		return nil, graphReadErr(err)
	}
	requests, err := s.store.Requests().List(ctx, repositories.RequestFilter{})
	if err != nil {
		return nil, domain.Unavailable("entity store", err)
	}

	report := &DriftReport{
		CheckedAt:        time.Now().UTC(),
		Edges:            len(edges),
		Documents:        len(requests),
		OrphanEdges:      []string{},
		MissingEdges:     []string{},
		StatusMismatches: []StatusMismatch{},
	}

	documents := make(map[string]string, len(requests))
	for _, r := range requests {
		documents[r.RequestID] = r.Status
	}

	seen := make(map[string]bool, len(edges))
	for _, e := range edges {
		seen[e.Ref] = true
		status, ok := documents[e.Ref]
		if !ok {
			report.OrphanEdges = append(report.OrphanEdges, e.Ref)
			continue
		}
		if graphStatus := e.Props.String("status"); graphStatus != status {
			report.StatusMismatches = append(report.StatusMismatches, StatusMismatch{
				RequestID:      e.Ref,
				GraphStatus:    graphStatus,
				DocumentStatus: status,
			})
		}
	}

	for _, r := range requests {
		if !seen[r.RequestID] {
			report.MissingEdges = append(report.MissingEdges, r.RequestID)
		}
	}

	return report, nil
}

// Run checks once and logs the outcome
func (s *DriftService) Run(ctx context.Context) {
	report, err := s.Check(ctx)
	if err != nil {
		log.Printf("❌ Drift check failed: %v", err)
		return
	}
	if report.Consistent() {
		log.Printf("✅ Drift check: %d edges, %d requests, stores agree", report.Edges, report.Documents)
		return
	}
	log.Printf("⚠️ Drift check: %d orphan edges, %d missing edges, %d status mismatches",
		len(report.OrphanEdges), len(report.MissingEdges), len(report.StatusMismatches))
}
