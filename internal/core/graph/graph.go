// Package graph defines the Relationship Store port: the labeled nodes and typed
// edges that mirror who requested what and who belongs where.
//
// Writes are expressed as Ops and applied through a Session so that the
// coordinator can run several of them against one logical connection. A
// Session is not a transaction: when the third op of a batch fails, the first
// two stay applied.
package graph

import (
	"context"
	"errors"
	"time"
)

// Label names a node kind
type Label string

const (
	LabelUser       Label = "User"
	LabelEquipment  Label = "Equipment"
	LabelDepartment Label = "Department"
	LabelEvent      Label = "Event"
)

// EdgeType names a relationship kind
type EdgeType string

const (
	BelongsTo EdgeType = "BELONGS_TO"
	OwnedBy   EdgeType = "OWNED_BY"
	Requested EdgeType = "REQUESTED"
	Used      EdgeType = "USED"
	Rejected  EdgeType = "REJECTED"
)

// Props is the property map carried by nodes and edges
type Props map[string]any

var (
	// ErrNoMatch is returned when an op's MATCH part finds nothing to act on
	ErrNoMatch = errors.New("graph: no matching node or edge")
	// ErrSessionClosed is returned when a closed session is used
	ErrSessionClosed = errors.New("graph: session closed")
)

// NodeRef identifies a node by label and external key (userId, equipmentId,
// eventId, or the department name)
type NodeRef struct {
	Label Label
	Key   string
}

// Op is a single relationship store write
type Op interface {
	// Name is used in logs and error messages
	Name() string
}

// CreateNode inserts a new node
type CreateNode struct {
	Node  NodeRef
	Props Props
}

// MergeNode creates the node if it does not exist, leaving existing properties alone
type MergeNode struct {
	Node  NodeRef
	Props Props
}

// SetNodeProps overwrites the given properties on an existing node
type SetNodeProps struct {
	Node  NodeRef
	Props Props
}

// DetachDeleteNode removes a node and every incident edge
type DetachDeleteNode struct {
	Node NodeRef
}

// CreateEdge connects two existing nodes. Ref, when set, is the business key
// of the edge (the requestId of a REQUESTED edge).
type CreateEdge struct {
	Type  EdgeType
	From  NodeRef
	To    NodeRef
	Ref   string
	Props Props
}

// SetEdgeProps updates the edge of the given type whose Ref matches
type SetEdgeProps struct {
	Type  EdgeType
	Ref   string
	Props Props
}

// DeleteEdges removes every edge of the given type leaving From
type DeleteEdges struct {
	Type EdgeType
	From NodeRef
}

func (o CreateNode) Name() string       { return "create " + string(o.Node.Label) }
func (o MergeNode) Name() string        { return "merge " + string(o.Node.Label) }
func (o SetNodeProps) Name() string     { return "update " + string(o.Node.Label) }
func (o DetachDeleteNode) Name() string { return "detach delete " + string(o.Node.Label) }
func (o CreateEdge) Name() string       { return "create " + string(o.Type) }
func (o SetEdgeProps) Name() string     { return "update " + string(o.Type) }
func (o DeleteEdges) Name() string      { return "delete " + string(o.Type) }

// Node is a read model of a graph node
type Node struct {
	Ref   NodeRef
	Props Props
}

// Edge is a read model of a graph edge
type Edge struct {
	Type      EdgeType
	From      NodeRef
	To        NodeRef
	Ref       string
	Props     Props
	CreatedAt time.Time
}

// EdgeFilter narrows ListEdges. Zero fields match everything.
type EdgeFilter struct {
	Type    EdgeType
	From    *NodeRef
	To      *NodeRef
	ToLabel Label
	Ref     string
}

// Session is one scoped connection to the relationship store. Callers must
// Close it on every path; Close is idempotent.
type Session interface {
	Apply(ctx context.Context, op Op) error
	Close(ctx context.Context) error
}

// Store is the relationship store
type Store interface {
	Session(ctx context.Context) (Session, error)

	GetNode(ctx context.Context, ref NodeRef) (*Node, error)
	ListEdges(ctx context.Context, filter EdgeFilter) ([]Edge, error)
	// DepartmentRequestRefs returns the requestIds of REQUESTED edges that point
	// at equipment of the given department, optionally filtered by edge status.
	DepartmentRequestRefs(ctx context.Context, department, status string) ([]string, error)
	// UserDepartments returns the distinct department property across User nodes
	UserDepartments(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}

// String returns a property as string, empty when missing
func (p Props) String(key string) string {
	if v, ok := p[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Timestamp formats t the way edge and node properties store dates
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
