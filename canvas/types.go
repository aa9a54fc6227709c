package canvas

import (
	"encoding/json"
	"fmt"

	"github.com/playbooklab/sdk/catalog"
	"github.com/playbooklab/sdk/optimize"
)

// Position is a point in canvas (graph-space) coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Handle names a connection point on a node. Edges attach to handles.
type Handle string

// The four handles every node exposes.
const (
	HandleTop    Handle = "top"
	HandleBottom Handle = "bottom"
	HandleLeft   Handle = "left"
	HandleRight  Handle = "right"
)

// NodeKind discriminates the closed set of node payload types.
type NodeKind string

const (
	// NodeKindTool is a tool the user placed (or seeding placed) on the
	// canvas as a workflow step.
	NodeKindTool NodeKind = "tool"

	// NodeKindOptimization is a system-proposed alternative attached
	// beneath a tool node.
	NodeKindOptimization NodeKind = "optimization"
)

// Payload is the node data sum type. It is a closed interface: the only
// implementations are ToolPayload and OptimizationPayload, so a switch over
// the concrete types (or Kind) is exhaustive.
type Payload interface {
	// Kind returns the payload's discriminator.
	Kind() NodeKind

	isPayload()
}

// ToolPayload is the payload of a placed tool node.
type ToolPayload struct {
	// Tool is the catalog record the node was created from.
	Tool catalog.ToolRecord `json:"tool"`
}

// Kind implements Payload.
func (ToolPayload) Kind() NodeKind { return NodeKindTool }

func (ToolPayload) isPayload() {}

// OptimizationPayload is the payload of a derived suggestion node. It
// carries the alternative tool's display data together with the suggestion
// that proposed it.
type OptimizationPayload struct {
	// Tool is the catalog record of the suggested alternative.
	Tool catalog.ToolRecord `json:"tool"`

	// Suggestion explains why the alternative is proposed.
	Suggestion optimize.Suggestion `json:"suggestion"`
}

// Kind implements Payload.
func (OptimizationPayload) Kind() NodeKind { return NodeKindOptimization }

func (OptimizationPayload) isPayload() {}

// Node is a single node in a canvas session's graph.
type Node struct {
	// ID is unique within the owning session.
	ID string

	// Position is the node's location in canvas coordinates.
	Position Position

	// Payload is the node's kind-discriminated data.
	Payload Payload

	// Rating is the user's 1-5 rating of this placement; 0 means unrated.
	Rating int
}

// ToolID returns the id of the tool the node displays, for either payload
// kind.
func (n Node) ToolID() string {
	switch p := n.Payload.(type) {
	case ToolPayload:
		return p.Tool.ID
	case OptimizationPayload:
		return p.Tool.ID
	default:
		return ""
	}
}

// Kind returns the node's payload kind.
func (n Node) Kind() NodeKind {
	if n.Payload == nil {
		return ""
	}
	return n.Payload.Kind()
}

// EdgeStyle carries the presentation hints attached to an edge.
type EdgeStyle struct {
	// Color is the stroke color as a CSS hex string.
	Color string `json:"color,omitempty"`

	// Dashed renders the edge with a dashed stroke.
	Dashed bool `json:"dashed,omitempty"`

	// Animated renders the edge with a flowing animation.
	Animated bool `json:"animated,omitempty"`
}

// Edge connects two node handles in a canvas session.
type Edge struct {
	// ID is unique within the owning session.
	ID string `json:"id"`

	// Source and Target are the node ids at either end. Both always
	// reference live nodes; deleting a node removes its incident edges.
	Source string `json:"source"`
	Target string `json:"target"`

	// SourceHandle and TargetHandle name the attachment points.
	SourceHandle Handle `json:"source_handle,omitempty"`
	TargetHandle Handle `json:"target_handle,omitempty"`

	// Label is the optional connection annotation ("how do these tools
	// work together"). Empty when the user skipped naming the connection.
	Label string `json:"label,omitempty"`

	// Description is the optional longer annotation saved with the label.
	Description string `json:"description,omitempty"`

	// Style carries presentation hints.
	Style EdgeStyle `json:"style,omitempty"`
}

// ConnectionMeta is the optional annotation captured when committing a
// pending connection.
type ConnectionMeta struct {
	// Name becomes the edge label.
	Name string `json:"name"`

	// Description is stored in the edge metadata.
	Description string `json:"description,omitempty"`
}

// Connection describes a proposed, not-yet-committed edge.
type Connection struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle Handle `json:"source_handle,omitempty"`
	TargetHandle Handle `json:"target_handle,omitempty"`
}

// nodeJSON is the wire form of Node with an explicit kind discriminator.
type nodeJSON struct {
	ID       string          `json:"id"`
	Position Position        `json:"position"`
	Kind     NodeKind        `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
	Rating   int             `json:"rating,omitempty"`
}

// MarshalJSON encodes the node with its payload kind as a discriminator.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.Payload == nil {
		return nil, fmt.Errorf("canvas: node %q has no payload", n.ID)
	}

	payload, err := json.Marshal(n.Payload)
	if err != nil {
		return nil, fmt.Errorf("canvas: failed to marshal payload of node %q: %w", n.ID, err)
	}

	return json.Marshal(nodeJSON{
		ID:       n.ID,
		Position: n.Position,
		Kind:     n.Payload.Kind(),
		Payload:  payload,
		Rating:   n.Rating,
	})
}

// UnmarshalJSON decodes a node, dispatching on the kind discriminator.
// Unknown kinds are an error: the payload set is closed.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw nodeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("canvas: failed to unmarshal node: %w", err)
	}

	var payload Payload
	switch raw.Kind {
	case NodeKindTool:
		var p ToolPayload
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return fmt.Errorf("canvas: failed to unmarshal tool payload: %w", err)
		}
		payload = p
	case NodeKindOptimization:
		var p OptimizationPayload
		if err := json.Unmarshal(raw.Payload, &p); err != nil {
			return fmt.Errorf("canvas: failed to unmarshal optimization payload: %w", err)
		}
		payload = p
	default:
		return fmt.Errorf("canvas: unknown node kind %q", raw.Kind)
	}

	n.ID = raw.ID
	n.Position = raw.Position
	n.Payload = payload
	n.Rating = raw.Rating
	return nil
}
