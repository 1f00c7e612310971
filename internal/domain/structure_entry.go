package domain

import (
	"strings"
	"time"
)

// DomainRole is the node's position in the authority graph.
type DomainRole string

const (
	RoleMain       DomainRole = "main"
	RoleSupporting DomainRole = "supporting"
)

// NodeStatus is the node's on-page/redirect disposition.
type NodeStatus string

const (
	StatusPrimary     NodeStatus = "primary"
	StatusCanonical   NodeStatus = "canonical"
	StatusRedirect301 NodeStatus = "301_redirect"
	StatusRedirect302 NodeStatus = "302_redirect"
	StatusRestore     NodeStatus = "restore"
)

// Label returns the human-readable hop label used in structure snapshots
// and rendered change notifications, e.g. "Canonical", "301 Redirect".
func (s NodeStatus) Label() string {
	switch s {
	case StatusPrimary:
		return "Primary"
	case StatusCanonical:
		return "Canonical"
	case StatusRedirect301:
		return "301 Redirect"
	case StatusRedirect302:
		return "302 Redirect"
	case StatusRestore:
		return "Restore"
	default:
		return string(s)
	}
}

// IsRedirectOrCanonical reports whether this status participates in
// authority-flow edges considered by the redirect_loop detector.
func (s NodeStatus) IsRedirectOrCanonical() bool {
	switch s {
	case StatusCanonical, StatusRedirect301, StatusRedirect302:
		return true
	default:
		return false
	}
}

// IndexStatus controls whether a node is eligible for search indexing.
type IndexStatus string

const (
	IndexIndex   IndexStatus = "index"
	IndexNoindex IndexStatus = "noindex"
)

// StructureEntry is one vertex ("node") in a network's SEO graph.
type StructureEntry struct {
	ID              string      `json:"id" db:"id"`
	NetworkID       string      `json:"network_id" db:"network_id"`
	AssetDomainID   string      `json:"asset_domain_id" db:"asset_domain_id"`
	OptimizedPath   *string     `json:"optimized_path" db:"optimized_path"`
	DomainRole      DomainRole  `json:"domain_role" db:"domain_role"`
	DomainStatus    NodeStatus  `json:"domain_status" db:"domain_status"`
	IndexStatus     IndexStatus `json:"index_status" db:"index_status"`
	TargetEntryID   *string     `json:"target_entry_id" db:"target_entry_id"`
	RankingPosition *int        `json:"ranking_position,omitempty" db:"ranking_position"`
	PrimaryKeyword  string      `json:"primary_keyword,omitempty" db:"primary_keyword"`
	RankingURL      string      `json:"ranking_url,omitempty" db:"ranking_url"`
	Notes           string      `json:"notes,omitempty" db:"notes"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// NormalizePath implements the path-normalization rule: empty,
// whitespace-only, or "/" normalizes to nil (domain root); otherwise the
// result has a leading slash and no trailing slash. Idempotent.
func NormalizePath(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "/" {
		return nil
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	for len(trimmed) > 1 && strings.HasSuffix(trimmed, "/") {
		trimmed = strings.TrimSuffix(trimmed, "/")
	}
	return &trimmed
}

// PathOrRoot returns the optimized path for display, or "/" for a root node.
func (e *StructureEntry) PathOrRoot() string {
	if e.OptimizedPath == nil {
		return "/"
	}
	return *e.OptimizedPath
}

// IsMain reports whether this entry is the network's main node.
func (e *StructureEntry) IsMain() bool { return e.DomainRole == RoleMain }
