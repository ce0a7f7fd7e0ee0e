package models

import "time"

// FlowStatus represents the lifecycle state of a flow.
type FlowStatus string

const (
	FlowStatusDraft       FlowStatus = "draft"       // Editable, not executable
	FlowStatusPublished   FlowStatus = "published"   // Current active, executable
	FlowStatusUnpublished FlowStatus = "unpublished" // Historical, not executable
)

// Flow represents a versioned, directed graph of nodes describing an
// automated conversation. A published flow is immutable; edits produce a new
// version linked through FlowGroupID.
type Flow struct {
	ID          string      `json:"id"`
	WorkspaceID string      `json:"workspace_id" validate:"required"`
	Name        string      `json:"name"         validate:"required,min=3"`
	Version     int         `json:"version"`
	Status      FlowStatus  `json:"status"       validate:"required"`
	FlowGroupID string      `json:"flow_group_id"` // Stable ID linking all versions
	Nodes       []*FlowNode `json:"nodes"`
	Edges       []*FlowEdge `json:"edges"`
	CreatedBy   string      `json:"created_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	PublishedAt *time.Time  `json:"published_at,omitempty"`
}

// FlowEdge connects two nodes. Label selects the edge when the source node
// produces a branch key; an empty label marks the default path.
type FlowEdge struct {
	From      string `json:"from" validate:"required"`
	To        string `json:"to"   validate:"required"`
	Label     string `json:"label,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// NodeByID returns the node with the given ID, or nil.
func (f *Flow) NodeByID(id string) *FlowNode {
	for _, node := range f.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// TriggerNodes returns the flow's trigger nodes in declaration order.
// Declaration order is the tie-break when more than one trigger matches.
func (f *Flow) TriggerNodes() []*FlowNode {
	var triggers []*FlowNode

	for _, node := range f.Nodes {
		if node.Type == NodeTypeTrigger {
			triggers = append(triggers, node)
		}
	}

	return triggers
}
