// Package logo resolves display logos for catalog tools.
//
// Logos are resolved from the tool's company domain through an external
// image service; tools without a domain (or with an unreachable logo) fall
// back to an initial-letter badge rendered by the client.
package logo

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/playbooklab/sdk/catalog"
)

// DefaultSize is the pixel size requested when a caller passes size <= 0.
const DefaultSize = 64

// Logo is a resolved tool logo. Exactly one presentation applies: when URL
// is set the client renders the image, otherwise it renders Initial as a
// letter badge.
type Logo struct {
	// URL is the logo image location, empty when falling back to a badge.
	URL string `json:"url,omitempty"`

	// Initial is the badge letter, the upper-cased first rune of the tool
	// name ("?" when the name is empty).
	Initial string `json:"initial,omitempty"`
}

// Resolver resolves a logo for a tool.
type Resolver interface {
	Resolve(ctx context.Context, tool catalog.ToolRecord, size int) Logo
}

// URLResolver builds logo URLs without any network traffic.
//
// With a Logo.dev token configured it uses Logo.dev; otherwise it uses
// Google's favicon service, which needs no auth.
type URLResolver struct {
	// Token is an optional Logo.dev public token.
	Token string
}

// Resolve builds the logo URL for the tool's domain. Tools without a
// domain get a badge.
func (r *URLResolver) Resolve(_ context.Context, tool catalog.ToolRecord, size int) Logo {
	if size <= 0 {
		size = DefaultSize
	}
	if tool.Domain == "" {
		return Badge(tool.Name)
	}

	if r.Token != "" {
		return Logo{URL: fmt.Sprintf("https://img.logo.dev/%s?token=%s&size=%d&format=png", tool.Domain, r.Token, size)}
	}

	// Google's favicon service serves small sizes poorly; request at
	// least 64px.
	if size < 64 {
		size = 64
	}
	return Logo{URL: fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=%d", tool.Domain, size)}
}

// CheckedResolver wraps another resolver and verifies the resolved URL is
// reachable before returning it, falling back to a badge otherwise. It is
// the server-side equivalent of the client's image onError fallback.
type CheckedResolver struct {
	// Next produces the candidate logo. Required.
	Next Resolver

	// Client is the HTTP client used for the reachability check.
	// Default: a client with a 3 second timeout.
	Client *http.Client
}

// Resolve verifies the candidate logo URL with a HEAD request.
func (r *CheckedResolver) Resolve(ctx context.Context, tool catalog.ToolRecord, size int) Logo {
	candidate := r.Next.Resolve(ctx, tool, size)
	if candidate.URL == "" {
		return candidate
	}

	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, candidate.URL, nil)
	if err != nil {
		return Badge(tool.Name)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Badge(tool.Name)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Badge(tool.Name)
	}
	return candidate
}

// Badge returns the initial-letter fallback for a tool name.
func Badge(name string) Logo {
	name = strings.TrimSpace(name)
	if name == "" {
		return Logo{Initial: "?"}
	}
	runes := []rune(name)
	return Logo{Initial: strings.ToUpper(string(runes[0]))}
}
