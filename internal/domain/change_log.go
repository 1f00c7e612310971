package domain

import "time"

// ActionType classifies a single change-ledger row, derived from the diff
// that produced it (see the ledger service's classification rules).
type ActionType string

const (
	ActionCreateNode    ActionType = "create_node"
	ActionUpdateNode    ActionType = "update_node"
	ActionDeleteNode    ActionType = "delete_node"
	ActionRelinkNode    ActionType = "relink_node"
	ActionChangeRole    ActionType = "change_role"
	ActionChangePath    ActionType = "change_path"
	ActionCreateNetwork ActionType = "create_network"
)

// Label returns a human-readable label for rendering in notifications.
func (a ActionType) Label() string {
	switch a {
	case ActionCreateNode:
		return "Node Created"
	case ActionUpdateNode:
		return "Node Updated"
	case ActionDeleteNode:
		return "Node Deleted"
	case ActionRelinkNode:
		return "Node Relinked"
	case ActionChangeRole:
		return "Role Changed"
	case ActionChangePath:
		return "Path Changed"
	case ActionCreateNetwork:
		return "Network Created"
	default:
		return string(a)
	}
}

// NotificationStatus tracks whether the ledger row's paired notification
// send ultimately succeeded.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationSuccess NotificationStatus = "success"
	NotificationFailed  NotificationStatus = "failed"
)

// StructureEntrySnapshot is a tagged, typed stand-in for the source's bare
// before/after snapshots as typed values rather than loose maps.
type StructureEntrySnapshot struct {
	ID             string      `json:"id"`
	NetworkID      string      `json:"network_id"`
	AssetDomainID  string      `json:"asset_domain_id"`
	OptimizedPath  *string     `json:"optimized_path"`
	DomainRole     DomainRole  `json:"domain_role"`
	DomainStatus   NodeStatus  `json:"domain_status"`
	IndexStatus    IndexStatus `json:"index_status"`
	TargetEntryID  *string     `json:"target_entry_id"`
	PrimaryKeyword string      `json:"primary_keyword,omitempty"`
}

// SnapshotOf builds a StructureEntrySnapshot from a live entry.
func SnapshotOf(e *StructureEntry) *StructureEntrySnapshot {
	if e == nil {
		return nil
	}
	return &StructureEntrySnapshot{
		ID:             e.ID,
		NetworkID:      e.NetworkID,
		AssetDomainID:  e.AssetDomainID,
		OptimizedPath:  e.OptimizedPath,
		DomainRole:     e.DomainRole,
		DomainStatus:   e.DomainStatus,
		IndexStatus:    e.IndexStatus,
		TargetEntryID:  e.TargetEntryID,
		PrimaryKeyword: e.PrimaryKeyword,
	}
}

// ChangeLog is an immutable record of one mutation to the SEO graph.
type ChangeLog struct {
	ID                 string                  `json:"id" db:"id"`
	NetworkID          string                  `json:"network_id" db:"network_id"`
	BrandID            string                  `json:"brand_id" db:"brand_id"`
	EntryID             *string                `json:"entry_id,omitempty" db:"entry_id"`
	ActionType          ActionType             `json:"action_type" db:"action_type"`
	AffectedNode        string                 `json:"affected_node" db:"affected_node"`
	ActorUserID         string                 `json:"actor_user_id" db:"actor_user_id"`
	ActorEmail          string                 `json:"actor_email" db:"actor_email"`
	ChangeNote          string                 `json:"change_note" db:"change_note"`
	BeforeSnapshot      *StructureEntrySnapshot `json:"before_snapshot,omitempty" db:"before_snapshot"`
	AfterSnapshot       *StructureEntrySnapshot `json:"after_snapshot,omitempty" db:"after_snapshot"`
	CreatedAt           time.Time              `json:"created_at" db:"created_at"`
	NotificationStatus  NotificationStatus     `json:"notification_status" db:"notification_status"`
	Archived            bool                   `json:"archived" db:"archived"`
}
