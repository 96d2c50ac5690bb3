package sqlgraph

import (
	"time"

	"gorm.io/datatypes"
)

type NodeModel struct {
	ID        uint              `gorm:"primaryKey"`
	Label     string            `gorm:"not null;uniqueIndex:idx_graph_nodes_label_key"`
	NodeKey   string            `gorm:"not null;uniqueIndex:idx_graph_nodes_label_key"`
	Props     datatypes.JSONMap `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NodeModel) TableName() string { return "graph_nodes" }

type EdgeModel struct {
	ID         uint              `gorm:"primaryKey"`
	Type       string            `gorm:"not null;index"`
	FromNodeID uint              `gorm:"not null;index"`
	ToNodeID   uint              `gorm:"not null;index"`
	Ref        string            `gorm:"not null;default:''"`
	Props      datatypes.JSONMap `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (EdgeModel) TableName() string { return "graph_edges" }
