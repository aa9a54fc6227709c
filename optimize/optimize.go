// Package optimize provides the optimization-suggestion map: a static lookup
// from a tool id to a single suggested alternative, categorized as a cost,
// speed, or capability improvement.
//
// The map is reference data like the catalog; suggestions are not symmetric
// (A suggesting B does not imply B suggests A) and at most one suggestion
// exists per source tool.
package optimize

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Type categorizes an optimization suggestion.
type Type string

const (
	// TypeCost marks the alternative as cheaper than the source tool.
	TypeCost Type = "cost"

	// TypeSpeed marks the alternative as faster or more current.
	TypeSpeed Type = "speed"

	// TypeCapability marks the alternative as more capable.
	TypeCapability Type = "capability"
)

// Valid reports whether t is one of the known suggestion types.
func (t Type) Valid() bool {
	switch t {
	case TypeCost, TypeSpeed, TypeCapability:
		return true
	}
	return false
}

// EdgeColor returns the canvas edge stroke color for this suggestion type.
func (t Type) EdgeColor() string {
	switch t {
	case TypeCost:
		return "#10b981"
	case TypeSpeed:
		return "#3b82f6"
	case TypeCapability:
		return "#8b5cf6"
	}
	return "#8b5cf6"
}

// EdgeLabel returns the canvas edge label for this suggestion type.
func (t Type) EdgeLabel() string {
	switch t {
	case TypeCost:
		return "💸 Alternative"
	case TypeSpeed:
		return "⚡ Alternative"
	case TypeCapability:
		return "✨ Alternative"
	}
	return "✨ Alternative"
}

// Suggestion is a single proposed alternative for a source tool.
type Suggestion struct {
	// AltToolID is the id of the suggested alternative tool.
	AltToolID string `json:"alt_tool_id" yaml:"alt_tool_id"`

	// Type categorizes the improvement the alternative offers.
	Type Type `json:"type" yaml:"type"`

	// Metric is the headline claim (e.g. "Save ~$40/mo").
	Metric string `json:"metric" yaml:"metric"`

	// Detail is a one-line explanation of the suggestion.
	Detail string `json:"detail" yaml:"detail"`
}

// Map holds optimization suggestions keyed by source tool id.
type Map struct {
	suggestions map[string]Suggestion
}

//go:embed dataset/optimizations.yaml
var defaultDataset []byte

// Default returns the embedded optimization map.
// Panics if the embedded data is invalid, which the package tests guard.
func Default() *Map {
	m, err := Parse(defaultDataset)
	if err != nil {
		panic(fmt.Sprintf("optimize: embedded dataset invalid: %v", err))
	}
	return m
}

// Parse builds a Map from YAML bytes of the shape:
//
//	suggestions:
//	  chatgpt:
//	    alt_tool_id: claude
//	    type: capability
//	    metric: Better reasoning
//	    detail: Stronger on complex, multi-step analysis tasks
func Parse(data []byte) (*Map, error) {
	var f struct {
		Suggestions map[string]Suggestion `yaml:"suggestions"`
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("optimize: failed to parse dataset: %w", err)
	}
	return NewMap(f.Suggestions)
}

// NewMap builds a Map from the given suggestions, validating each entry's
// type and alternative id.
func NewMap(suggestions map[string]Suggestion) (*Map, error) {
	m := &Map{suggestions: make(map[string]Suggestion, len(suggestions))}
	for toolID, s := range suggestions {
		if s.AltToolID == "" {
			return nil, fmt.Errorf("optimize: suggestion for %q has no alternative tool id", toolID)
		}
		if !s.Type.Valid() {
			return nil, fmt.Errorf("optimize: suggestion for %q has unknown type %q", toolID, s.Type)
		}
		m.suggestions[toolID] = s
	}
	return m, nil
}

// Lookup returns the suggestion for the given source tool id.
// The second return is false when the tool has no suggestion.
func (m *Map) Lookup(toolID string) (Suggestion, bool) {
	s, ok := m.suggestions[toolID]
	return s, ok
}

// Len returns the number of suggestions in the map.
func (m *Map) Len() int { return len(m.suggestions) }
