package catalog

// ToolRecord describes a single AI tool in the catalog.
//
// Records are immutable reference data: the catalog hands out copies and
// callers must not rely on mutating them. The zero value is not a valid
// record; tools always come from a Catalog.
type ToolRecord struct {
	// ID uniquely identifies the tool within the catalog (e.g. "claude").
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable tool name (e.g. "Claude").
	Name string `json:"name" yaml:"name"`

	// Domain is the tool vendor's web domain, used for logo resolution
	// (e.g. "claude.ai").
	Domain string `json:"domain" yaml:"domain"`

	// Category is the tool's discovery category (e.g. "Generative", "Coding").
	Category string `json:"category" yaml:"category"`

	// ShortDescription is a one-line summary shown in compact listings.
	ShortDescription string `json:"short_description" yaml:"short_description"`

	// Description is the full tool description.
	Description string `json:"description" yaml:"description"`

	// Rating is the aggregate community rating on a 0-5 scale.
	Rating float64 `json:"rating" yaml:"rating"`

	// ReviewCount is the number of reviews behind Rating.
	ReviewCount int `json:"review_count" yaml:"review_count"`

	// Tags are lowercase search keywords associated with the tool.
	Tags []string `json:"tags" yaml:"tags"`

	// RelatedIDs lists ids of related tools in display order. Entries that
	// do not resolve to a catalog tool are tolerated and skipped on lookup.
	RelatedIDs []string `json:"related_ids" yaml:"related_ids"`
}

// PlaybookStep is a single step in a playbook: a tool and how it is used.
type PlaybookStep struct {
	// ToolID references the tool used in this step.
	ToolID string `json:"tool_id" yaml:"tool_id"`

	// Action describes how the tool is used at this step.
	Action string `json:"action" yaml:"action"`
}

// PlaybookRecord describes a published playbook: an author-attributed,
// ordered sequence of AI-tool usage steps.
//
// Steps conceptually walk a subset of ToolIDs in usage order, but the two
// are independent display data and are not cross-validated; they may
// diverge.
type PlaybookRecord struct {
	// ID uniquely identifies the playbook within the catalog.
	ID string `json:"id" yaml:"id"`

	// Title is the playbook's display title.
	Title string `json:"title" yaml:"title"`

	// Author is the playbook author's name.
	Author string `json:"author" yaml:"author"`

	// AuthorRole is the author's job title (e.g. "Staff Engineer").
	AuthorRole string `json:"author_role" yaml:"author_role"`

	// Company is the organization the playbook is attributed to.
	Company string `json:"company" yaml:"company"`

	// ToolIDs lists the tools featured by the playbook in display order.
	ToolIDs []string `json:"tool_ids" yaml:"tool_ids"`

	// Rating is the aggregate community rating on a 0-5 scale.
	Rating float64 `json:"rating" yaml:"rating"`

	// RatingCount is the number of ratings behind Rating.
	RatingCount int `json:"rating_count" yaml:"rating_count"`

	// Description summarizes the playbook.
	Description string `json:"description" yaml:"description"`

	// Steps is the ordered usage sequence.
	Steps []PlaybookStep `json:"steps" yaml:"steps"`
}
