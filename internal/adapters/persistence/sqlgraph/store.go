// Package sqlgraph implements the relationship store on SQLite: nodes and
// typed edges in two tables, with JSON property maps.
package sqlgraph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"campus-rms/internal/core/graph"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

var _ graph.Store = (*Store)(nil)

// Store implements graph.Store
type Store struct {
	db   *gorm.DB
	open atomic.Int64
}

// Open opens (or creates) the SQLite file at path and applies the migrations
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
	}, &gorm.Config{Logger: logger.Default.LogMode(logger.Error)})
	if err != nil {
		return nil, fmt.Errorf("failed to open graph store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate graph store: %w", err)
	}

	return New(db), nil
}

// New wraps an already migrated database
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// OpenSessions reports how many sessions are currently acquired
func (s *Store) OpenSessions() int64 {
	return s.open.Load()
}

// Session acquires a scoped session
func (s *Store) Session(ctx context.Context) (graph.Session, error) {
	s.open.Add(1)
	return &session{store: s, db: s.db.WithContext(ctx)}, nil
}

type session struct {
	store  *Store
	db     *gorm.DB
	closed bool
}

func (ss *session) Close(ctx context.Context) error {
	if ss.closed {
		return nil
	}
	ss.closed = true
	ss.store.open.Add(-1)
	return nil
}

func (ss *session) Apply(ctx context.Context, op graph.Op) error {
	if ss.closed {
		return graph.ErrSessionClosed
	}
	db := ss.db.WithContext(ctx)

	switch o := op.(type) {
	case graph.CreateNode:
		m := NodeModel{Label: string(o.Node.Label), NodeKey: o.Node.Key, Props: toJSON(o.Props)}
		return db.Create(&m).Error

	case graph.MergeNode:
		var m NodeModel
		return db.Where(NodeModel{Label: string(o.Node.Label), NodeKey: o.Node.Key}).
			Attrs(NodeModel{Props: toJSON(o.Props)}).
			FirstOrCreate(&m).Error

	case graph.SetNodeProps:
		m, err := findNode(db, o.Node)
		if err != nil {
			return err
		}
		return db.Model(m).Update("props", merge(m.Props, o.Props)).Error

	case graph.DetachDeleteNode:
		m, err := findNode(db, o.Node)
		if errors.Is(err, graph.ErrNoMatch) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := db.Where("from_node_id = ? OR to_node_id = ?", m.ID, m.ID).Delete(&EdgeModel{}).Error; err != nil {
			return err
		}
		return db.Delete(m).Error

	case graph.CreateEdge:
		from, err := findNode(db, o.From)
		if err != nil {
			return err
		}
		to, err := findNode(db, o.To)
		if err != nil {
			return err
		}
		e := EdgeModel{Type: string(o.Type), FromNodeID: from.ID, ToNodeID: to.ID, Ref: o.Ref, Props: toJSON(o.Props)}
		return db.Create(&e).Error

	case graph.SetEdgeProps:
		var edges []EdgeModel
		if err := db.Where("type = ? AND ref = ?", string(o.Type), o.Ref).Find(&edges).Error; err != nil {
			return err
		}
		if len(edges) == 0 {
			return graph.ErrNoMatch
		}
		for i := range edges {
			if err := db.Model(&edges[i]).Update("props", merge(edges[i].Props, o.Props)).Error; err != nil {
				return err
			}
		}
		return nil

	case graph.DeleteEdges:
		from, err := findNode(db, o.From)
		if errors.Is(err, graph.ErrNoMatch) {
			return nil
		}
		if err != nil {
			return err
		}
		return db.Where("type = ? AND from_node_id = ?", string(o.Type), from.ID).Delete(&EdgeModel{}).Error
	}

	return fmt.Errorf("sqlgraph: unsupported op %T", op)
}

func findNode(db *gorm.DB, ref graph.NodeRef) (*NodeModel, error) {
	var m NodeModel
	err := db.Where("label = ? AND node_key = ?", string(ref.Label), ref.Key).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s %s", graph.ErrNoMatch, ref.Label, ref.Key)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetNode returns the node or graph.ErrNoMatch
func (s *Store) GetNode(ctx context.Context, ref graph.NodeRef) (*graph.Node, error) {
	m, err := findNode(s.db.WithContext(ctx), ref)
	if err != nil {
		return nil, err
	}
	return &graph.Node{Ref: ref, Props: fromJSON(m.Props)}, nil
}

type edgeRow struct {
	Type      string
	Ref       string
	Props     datatypes.JSONMap
	FromLabel string
	FromKey   string
	ToLabel   string
	ToKey     string
	ToProps   datatypes.JSONMap
	CreatedAt sqliteTime
}

func (s *Store) edgeRows(ctx context.Context, filter graph.EdgeFilter) ([]edgeRow, error) {
	q := s.db.WithContext(ctx).
		Table("graph_edges AS e").
		Select(`e.type, e.ref, e.props, e.created_at,
       fn.label AS from_label, fn.node_key AS from_key,
       tn.label AS to_label, tn.node_key AS to_key, tn.props AS to_props`).
		Joins("JOIN graph_nodes fn ON fn.id = e.from_node_id").
		Joins("JOIN graph_nodes tn ON tn.id = e.to_node_id")

	if filter.Type != "" {
		q = q.Where("e.type = ?", string(filter.Type))
	}
	if filter.Ref != "" {
		q = q.Where("e.ref = ?", filter.Ref)
	}
	if filter.From != nil {
		q = q.Where("fn.label = ? AND fn.node_key = ?", string(filter.From.Label), filter.From.Key)
	}
	if filter.To != nil {
		q = q.Where("tn.label = ? AND tn.node_key = ?", string(filter.To.Label), filter.To.Key)
	}
	if filter.ToLabel != "" {
		q = q.Where("tn.label = ?", string(filter.ToLabel))
	}

	rows := make([]edgeRow, 0)
	if err := q.Order("e.id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListEdges returns the edges matching filter in insertion order
func (s *Store) ListEdges(ctx context.Context, filter graph.EdgeFilter) ([]graph.Edge, error) {
	rows, err := s.edgeRows(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := make([]graph.Edge, 0, len(rows))
	for _, r := range rows {
		result = append(result, graph.Edge{
			Type:      graph.EdgeType(r.Type),
			From:      graph.NodeRef{Label: graph.Label(r.FromLabel), Key: r.FromKey},
			To:        graph.NodeRef{Label: graph.Label(r.ToLabel), Key: r.ToKey},
			Ref:       r.Ref,
			Props:     fromJSON(r.Props),
			CreatedAt: r.CreatedAt.Time,
		})
	}
	return result, nil
}

// DepartmentRequestRefs follows REQUESTED edges into equipment of department
func (s *Store) DepartmentRequestRefs(ctx context.Context, department, status string) ([]string, error) {
	rows, err := s.edgeRows(ctx, graph.EdgeFilter{Type: graph.Requested, ToLabel: graph.LabelEquipment})
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0)
	for _, r := range rows {
		if fromJSON(r.ToProps).String("department") != department {
			continue
		}
		if status != "" && fromJSON(r.Props).String("status") != status {
			continue
		}
		refs = append(refs, r.Ref)
	}
	return refs, nil
}

// UserDepartments lists the distinct department property of User nodes
func (s *Store) UserDepartments(ctx context.Context) ([]string, error) {
	var nodes []NodeModel
	if err := s.db.WithContext(ctx).Where("label = ?", string(graph.LabelUser)).Find(&nodes).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	names := make([]string, 0)
	for _, n := range nodes {
		d := fromJSON(n.Props).String("department")
		if d == "" {
			continue
		}
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		names = append(names, d)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toJSON(p graph.Props) datatypes.JSONMap {
	m := datatypes.JSONMap{}
	for k, v := range p {
		m[k] = v
	}
	return m
}

func fromJSON(m datatypes.JSONMap) graph.Props {
	p := graph.Props{}
	for k, v := range m {
		p[k] = v
	}
	return p
}

func merge(current datatypes.JSONMap, updates graph.Props) datatypes.JSONMap {
	out := datatypes.JSONMap{}
	for k, v := range current {
		out[k] = v
	}
	for k, v := range updates {
		out[k] = v
	}
	return out
}
