// Package neo4jgraph implements the relationship store on Neo4j
package neo4jgraph

import (
	"context"
	"fmt"
	"log"
	"time"

	"campus-rms/internal/core/graph"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var _ graph.Store = (*Store)(nil)

// Store implements graph.Store
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	now      func() time.Time
}

// Open connects to Neo4j and verifies connectivity
func Open(ctx context.Context, uri, user, pass, database string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, pass, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to reach neo4j: %w", err)
	}

	log.Printf("✅ Neo4j connected successfully [%s]", uri)
	return &Store{driver: driver, database: database, now: time.Now}, nil
}

func (s *Store) sessionConfig(mode neo4j.AccessMode) neo4j.SessionConfig {
	return neo4j.SessionConfig{DatabaseName: s.database, AccessMode: mode}
}

// Session opens a write session. Every op runs as its own auto-commit query.
func (s *Store) Session(ctx context.Context) (graph.Session, error) {
	return &session{
		inner: s.driver.NewSession(ctx, s.sessionConfig(neo4j.AccessModeWrite)),
		now:   s.now,
	}, nil
}

type session struct {
	inner  neo4j.SessionWithContext
	now    func() time.Time
	closed bool
}

func (ss *session) Apply(ctx context.Context, op graph.Op) error {
	if ss.closed {
		return graph.ErrSessionClosed
	}

	stmt, err := render(op, ss.now())
	if err != nil {
		return err
	}

	result, err := ss.inner.Run(ctx, stmt.cypher, stmt.params)
	if err != nil {
		return err
	}

	if !stmt.mustMatch {
		_, err = result.Consume(ctx)
		return err
	}

	record, err := result.Single(ctx)
	if err != nil {
		return err
	}
	matched, _, err := neo4j.GetRecordValue[int64](record, "matched")
	if err != nil {
		return err
	}
	if matched == 0 {
		return fmt.Errorf("%w: %s", graph.ErrNoMatch, op.Name())
	}
	return nil
}

func (ss *session) Close(ctx context.Context) error {
	if ss.closed {
		return nil
	}
	ss.closed = true
	return ss.inner.Close(ctx)
}

// read runs a query on a short-lived read session
func (s *Store) read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	sess := s.driver.NewSession(ctx, s.sessionConfig(neo4j.AccessModeRead))
	defer sess.Close(ctx)

	result, err := sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}

func (s *Store) GetNode(ctx context.Context, ref graph.NodeRef) (*graph.Node, error) {
	key, err := nodeKey(ref)
	if err != nil {
		return nil, err
	}
	records, err := s.read(ctx, fmt.Sprintf(getNodeQuery, ref.Label, key), map[string]any{"key": ref.Key})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s %s", graph.ErrNoMatch, ref.Label, ref.Key)
	}
	props, _, err := neo4j.GetRecordValue[map[string]any](records[0], "props")
	if err != nil {
		return nil, err
	}
	return &graph.Node{Ref: ref, Props: graph.Props(props)}, nil
}

func (s *Store) ListEdges(ctx context.Context, filter graph.EdgeFilter) ([]graph.Edge, error) {
	stmt, err := renderEdgeQuery(filter)
	if err != nil {
		return nil, err
	}
	records, err := s.read(ctx, stmt.cypher, stmt.params)
	if err != nil {
		return nil, err
	}

	edges := make([]graph.Edge, 0, len(records))
	for _, rec := range records {
		edge, err := decodeEdge(rec)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, nil
}

func decodeEdge(rec *neo4j.Record) (graph.Edge, error) {
	typ, _, err := neo4j.GetRecordValue[string](rec, "type")
	if err != nil {
		return graph.Edge{}, err
	}
	props, _, err := neo4j.GetRecordValue[map[string]any](rec, "props")
	if err != nil {
		return graph.Edge{}, err
	}
	from, err := decodeRef(rec, "fromLabels", "fromProps")
	if err != nil {
		return graph.Edge{}, err
	}
	to, err := decodeRef(rec, "toLabels", "toProps")
	if err != nil {
		return graph.Edge{}, err
	}

	p := graph.Props(props)
	edge := graph.Edge{Type: graph.EdgeType(typ), From: from, To: to, Ref: p.String(refProperty), Props: p}
	if ts, err := time.Parse(time.RFC3339Nano, p.String("createdAt")); err == nil {
		edge.CreatedAt = ts
	}
	return edge, nil
}

func decodeRef(rec *neo4j.Record, labelsKey, propsKey string) (graph.NodeRef, error) {
	labels, _, err := neo4j.GetRecordValue[[]any](rec, labelsKey)
	if err != nil {
		return graph.NodeRef{}, err
	}
	props, _, err := neo4j.GetRecordValue[map[string]any](rec, propsKey)
	if err != nil {
		return graph.NodeRef{}, err
	}
	for _, l := range labels {
		label := graph.Label(fmt.Sprint(l))
		if key, ok := keyProperty[label]; ok {
			return graph.NodeRef{Label: label, Key: graph.Props(props).String(key)}, nil
		}
	}
	return graph.NodeRef{}, fmt.Errorf("neo4jgraph: node with unknown labels %v", labels)
}

func (s *Store) DepartmentRequestRefs(ctx context.Context, department, status string) ([]string, error) {
	records, err := s.read(ctx, departmentRequestsQuery, map[string]any{"department": department, "status": status})
	if err != nil {
		return nil, err
	}
	return collectStrings(records, "requestId")
}

func (s *Store) UserDepartments(ctx context.Context) ([]string, error) {
	records, err := s.read(ctx, userDepartmentsQuery, nil)
	if err != nil {
		return nil, err
	}
	return collectStrings(records, "name")
}

func collectStrings(records []*neo4j.Record, key string) ([]string, error) {
	out := make([]string, 0, len(records))
	for _, rec := range records {
		v, isNil, err := neo4j.GetRecordValue[string](rec, key)
		if err != nil {
			return nil, err
		}
		if !isNil {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.driver.Close(ctx)
}
