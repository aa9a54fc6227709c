// Package catalog provides the immutable AI-tool and playbook reference
// catalogs that back discovery, search, and canvas seeding.
//
// A Catalog is constructed once — from the embedded default dataset or from
// a YAML file — validated, and then only read. All methods are safe for
// concurrent use.
package catalog

import (
	"errors"
	"fmt"
)

// Common errors returned by catalog lookups.
var (
	// ErrToolNotFound is returned when a tool id does not resolve.
	ErrToolNotFound = errors.New("catalog: tool not found")

	// ErrPlaybookNotFound is returned when a playbook id does not resolve.
	ErrPlaybookNotFound = errors.New("catalog: playbook not found")

	// ErrDuplicateID is returned by New when two records share an id.
	ErrDuplicateID = errors.New("catalog: duplicate id")

	// ErrEmptyID is returned by New when a record has an empty id.
	ErrEmptyID = errors.New("catalog: empty id")
)

// Catalog holds the tool and playbook reference data.
type Catalog struct {
	tools     []ToolRecord
	playbooks []PlaybookRecord

	toolsByID     map[string]int
	playbooksByID map[string]int
}

// New builds a Catalog from the given records, preserving their order.
//
// Ids must be non-empty and unique within each record kind; a violation
// returns ErrEmptyID or ErrDuplicateID. Dangling RelatedIDs and
// step/ToolIDs divergence are display-data concerns and are not validated.
func New(tools []ToolRecord, playbooks []PlaybookRecord) (*Catalog, error) {
	c := &Catalog{
		tools:         make([]ToolRecord, len(tools)),
		playbooks:     make([]PlaybookRecord, len(playbooks)),
		toolsByID:     make(map[string]int, len(tools)),
		playbooksByID: make(map[string]int, len(playbooks)),
	}
	copy(c.tools, tools)
	copy(c.playbooks, playbooks)

	for i, t := range c.tools {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: tool at index %d", ErrEmptyID, i)
		}
		if _, dup := c.toolsByID[t.ID]; dup {
			return nil, fmt.Errorf("%w: tool %q", ErrDuplicateID, t.ID)
		}
		c.toolsByID[t.ID] = i
	}
	for i, p := range c.playbooks {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: playbook at index %d", ErrEmptyID, i)
		}
		if _, dup := c.playbooksByID[p.ID]; dup {
			return nil, fmt.Errorf("%w: playbook %q", ErrDuplicateID, p.ID)
		}
		c.playbooksByID[p.ID] = i
	}

	return c, nil
}

// Tools returns all tool records in catalog order.
// The returned slice is a copy and may be modified by the caller.
func (c *Catalog) Tools() []ToolRecord {
	out := make([]ToolRecord, len(c.tools))
	copy(out, c.tools)
	return out
}

// Playbooks returns all playbook records in catalog order.
// The returned slice is a copy and may be modified by the caller.
func (c *Catalog) Playbooks() []PlaybookRecord {
	out := make([]PlaybookRecord, len(c.playbooks))
	copy(out, c.playbooks)
	return out
}

// ToolByID returns the tool with the given id.
// Returns ErrToolNotFound if the id does not resolve.
func (c *Catalog) ToolByID(id string) (ToolRecord, error) {
	i, ok := c.toolsByID[id]
	if !ok {
		return ToolRecord{}, fmt.Errorf("%w: %q", ErrToolNotFound, id)
	}
	return c.tools[i], nil
}

// PlaybookByID returns the playbook with the given id.
// Returns ErrPlaybookNotFound if the id does not resolve.
func (c *Catalog) PlaybookByID(id string) (PlaybookRecord, error) {
	i, ok := c.playbooksByID[id]
	if !ok {
		return PlaybookRecord{}, fmt.Errorf("%w: %q", ErrPlaybookNotFound, id)
	}
	return c.playbooks[i], nil
}

// RelatedTools resolves a tool's RelatedIDs in declared order.
// Ids that do not resolve are skipped rather than reported; the reference
// data is allowed to carry dangling entries.
func (c *Catalog) RelatedTools(id string) ([]ToolRecord, error) {
	t, err := c.ToolByID(id)
	if err != nil {
		return nil, err
	}

	related := make([]ToolRecord, 0, len(t.RelatedIDs))
	for _, rid := range t.RelatedIDs {
		if i, ok := c.toolsByID[rid]; ok {
			related = append(related, c.tools[i])
		}
	}
	return related, nil
}

// Trending returns the first n tools in catalog order. Catalog order doubles
// as the trending order; if n exceeds the catalog size the whole catalog is
// returned.
func (c *Catalog) Trending(n int) []ToolRecord {
	if n < 0 {
		n = 0
	}
	if n > len(c.tools) {
		n = len(c.tools)
	}
	out := make([]ToolRecord, n)
	copy(out, c.tools[:n])
	return out
}

// ToolCount returns the number of tools in the catalog.
func (c *Catalog) ToolCount() int { return len(c.tools) }

// PlaybookCount returns the number of playbooks in the catalog.
func (c *Catalog) PlaybookCount() int { return len(c.playbooks) }
