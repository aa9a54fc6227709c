// Package search implements the discovery search index: a linear,
// case-insensitive substring matcher over the tool and playbook catalogs,
// plus compiled CEL filter expressions for the advanced-filter surface.
//
// Matching is deliberately naive. Fields are ORed, there is no ranking or
// fuzziness, and results keep catalog order. An empty or whitespace-only
// query returns the leading catalog entries as a trending fallback rather
// than an empty result.
package search

import (
	"strings"

	"github.com/playbooklab/sdk/catalog"
)

// DefaultLimit is the number of leading catalog entries returned for an
// empty query.
const DefaultLimit = 5

// Index answers search queries against a catalog.
// An Index is read-only after construction and safe for concurrent use.
type Index struct {
	catalog *catalog.Catalog
}

// NewIndex builds an Index over the given catalog.
func NewIndex(c *catalog.Catalog) *Index {
	return &Index{catalog: c}
}

// Tools returns tool records matching the query, in catalog order.
//
// An empty query returns the first DefaultLimit tools. A non-empty query
// matches case-insensitively against name, tags, category, and description;
// any single field match includes the record.
func (ix *Index) Tools(query string) []catalog.ToolRecord {
	q := normalize(query)
	if q == "" {
		return ix.catalog.Trending(DefaultLimit)
	}

	var out []catalog.ToolRecord
	for _, t := range ix.catalog.Tools() {
		if toolMatches(t, q) {
			out = append(out, t)
		}
	}
	return out
}

// Playbooks returns playbook records matching the query, in catalog order.
//
// An empty query returns the first DefaultLimit playbooks. A non-empty
// query matches case-insensitively against title, company, description,
// constituent tool ids, and author.
func (ix *Index) Playbooks(query string) []catalog.PlaybookRecord {
	q := normalize(query)
	if q == "" {
		all := ix.catalog.Playbooks()
		if len(all) > DefaultLimit {
			all = all[:DefaultLimit]
		}
		return all
	}

	var out []catalog.PlaybookRecord
	for _, p := range ix.catalog.Playbooks() {
		if playbookMatches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func toolMatches(t catalog.ToolRecord, q string) bool {
	if strings.Contains(strings.ToLower(t.Name), q) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(tag, q) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(t.Category), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

func playbookMatches(p catalog.PlaybookRecord, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Company), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Author), q) {
		return true
	}
	for _, id := range p.ToolIDs {
		if strings.Contains(id, q) {
			return true
		}
	}
	return false
}
