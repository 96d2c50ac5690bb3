package neo4jgraph

import (
	"fmt"
	"time"

	"campus-rms/internal/core/graph"
)

// refProperty holds an edge's business key
const refProperty = "requestId"

// keyProperty is the identifying property of each node label
var keyProperty = map[graph.Label]string{
	graph.LabelUser:       "userId",
	graph.LabelEquipment:  "equipmentId",
	graph.LabelEvent:      "eventId",
	graph.LabelDepartment: "name",
}

var edgeTypes = map[graph.EdgeType]bool{
	graph.BelongsTo: true,
	graph.OwnedBy:   true,
	graph.Requested: true,
	graph.Used:      true,
	graph.Rejected:  true,
}

// statement is one rendered cypher query. When mustMatch is set the query
// returns a "matched" count and zero means the op found nothing to act on.
type statement struct {
	cypher    string
	params    map[string]any
	mustMatch bool
}

// render turns an op into cypher. Labels and relationship types cannot be
// parameters, so they are checked against the known sets before being
// interpolated.
func render(op graph.Op, now time.Time) (statement, error) {
	switch o := op.(type) {
	case graph.CreateNode:
		key, err := nodeKey(o.Node)
		if err != nil {
			return statement{}, err
		}
		props := withKey(o.Props, key, o.Node.Key)
		return statement{
			cypher: fmt.Sprintf("CREATE (n:%s) SET n = $props", o.Node.Label),
			params: map[string]any{"props": props},
		}, nil

	case graph.MergeNode:
		key, err := nodeKey(o.Node)
		if err != nil {
			return statement{}, err
		}
		return statement{
			cypher: fmt.Sprintf("MERGE (n:%s {%s: $key}) ON CREATE SET n += $props", o.Node.Label, key),
			params: map[string]any{"key": o.Node.Key, "props": copyProps(o.Props)},
		}, nil

	case graph.SetNodeProps:
		key, err := nodeKey(o.Node)
		if err != nil {
			return statement{}, err
		}
		return statement{
			cypher:    fmt.Sprintf("MATCH (n:%s {%s: $key}) SET n += $props RETURN count(n) AS matched", o.Node.Label, key),
			params:    map[string]any{"key": o.Node.Key, "props": copyProps(o.Props)},
			mustMatch: true,
		}, nil

	case graph.DetachDeleteNode:
		key, err := nodeKey(o.Node)
		if err != nil {
			return statement{}, err
		}
		return statement{
			cypher: fmt.Sprintf("MATCH (n:%s {%s: $key}) DETACH DELETE n", o.Node.Label, key),
			params: map[string]any{"key": o.Node.Key},
		}, nil

	case graph.CreateEdge:
		if !edgeTypes[o.Type] {
			return statement{}, fmt.Errorf("neo4jgraph: unknown relationship type %q", o.Type)
		}
		fromKey, err := nodeKey(o.From)
		if err != nil {
			return statement{}, err
		}
		toKey, err := nodeKey(o.To)
		if err != nil {
			return statement{}, err
		}
		props := copyProps(o.Props)
		if o.Ref != "" {
			props[refProperty] = o.Ref
		}
		if _, ok := props["createdAt"]; !ok {
			props["createdAt"] = graph.Timestamp(now)
		}
		return statement{
			cypher: fmt.Sprintf(
				"MATCH (a:%s {%s: $from}) MATCH (b:%s {%s: $to}) CREATE (a)-[r:%s]->(b) SET r = $props RETURN count(r) AS matched",
				o.From.Label, fromKey, o.To.Label, toKey, o.Type,
			),
			params:    map[string]any{"from": o.From.Key, "to": o.To.Key, "props": props},
			mustMatch: true,
		}, nil

	case graph.SetEdgeProps:
		if !edgeTypes[o.Type] {
			return statement{}, fmt.Errorf("neo4jgraph: unknown relationship type %q", o.Type)
		}
		return statement{
			cypher: fmt.Sprintf(
				"MATCH ()-[r:%s {%s: $ref}]->() SET r += $props RETURN count(r) AS matched",
				o.Type, refProperty,
			),
			params:    map[string]any{"ref": o.Ref, "props": copyProps(o.Props)},
			mustMatch: true,
		}, nil

	case graph.DeleteEdges:
		if !edgeTypes[o.Type] {
			return statement{}, fmt.Errorf("neo4jgraph: unknown relationship type %q", o.Type)
		}
		key, err := nodeKey(o.From)
		if err != nil {
			return statement{}, err
		}
		return statement{
			cypher: fmt.Sprintf("MATCH (n:%s {%s: $key})-[r:%s]->() DELETE r", o.From.Label, key, o.Type),
			params: map[string]any{"key": o.From.Key},
		}, nil
	}

	return statement{}, fmt.Errorf("neo4jgraph: unsupported op %T", op)
}

// renderEdgeQuery builds the read query behind ListEdges
func renderEdgeQuery(filter graph.EdgeFilter) (statement, error) {
	rel := "r"
	if filter.Type != "" {
		if !edgeTypes[filter.Type] {
			return statement{}, fmt.Errorf("neo4jgraph: unknown relationship type %q", filter.Type)
		}
		rel = "r:" + string(filter.Type)
	}

	from, to := "a", "b"
	params := map[string]any{}
	where := ""
	and := func(cond string) {
		if where == "" {
			where = " WHERE " + cond
			return
		}
		where += " AND " + cond
	}

	if filter.From != nil {
		key, err := nodeKey(*filter.From)
		if err != nil {
			return statement{}, err
		}
		from = fmt.Sprintf("a:%s {%s: $from}", filter.From.Label, key)
		params["from"] = filter.From.Key
	}
	if filter.To != nil {
		key, err := nodeKey(*filter.To)
		if err != nil {
			return statement{}, err
		}
		to = fmt.Sprintf("b:%s {%s: $to}", filter.To.Label, key)
		params["to"] = filter.To.Key
	} else if filter.ToLabel != "" {
		if _, ok := keyProperty[filter.ToLabel]; !ok {
			return statement{}, fmt.Errorf("neo4jgraph: unknown label %q", filter.ToLabel)
		}
		to = "b:" + string(filter.ToLabel)
	}
	if filter.Ref != "" {
		and("r." + refProperty + " = $ref")
		params["ref"] = filter.Ref
	}

	cypher := fmt.Sprintf(
		"MATCH (%s)-[%s]->(%s)%s RETURN type(r) AS type, labels(a) AS fromLabels, properties(a) AS fromProps, labels(b) AS toLabels, properties(b) AS toProps, properties(r) AS props ORDER BY r.createdAt",
		from, rel, to, where,
	)
	return statement{cypher: cypher, params: params}, nil
}

const departmentRequestsQuery = `MATCH (e:Equipment {department: $department})<-[r:REQUESTED]-(:User)
WHERE $status = '' OR r.status = $status
RETURN r.requestId AS requestId ORDER BY r.createdAt`

const userDepartmentsQuery = `MATCH (u:User) WHERE u.department IS NOT NULL AND u.department <> ''
RETURN DISTINCT u.department AS name ORDER BY name`

const getNodeQuery = "MATCH (n:%s {%s: $key}) RETURN properties(n) AS props LIMIT 1"

func nodeKey(ref graph.NodeRef) (string, error) {
	key, ok := keyProperty[ref.Label]
	if !ok {
		return "", fmt.Errorf("neo4jgraph: unknown label %q", ref.Label)
	}
	return key, nil
}

func withKey(p graph.Props, key, value string) map[string]any {
	out := copyProps(p)
	out[key] = value
	return out
}

func copyProps(p graph.Props) map[string]any {
	out := make(map[string]any, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}
