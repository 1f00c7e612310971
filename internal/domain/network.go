package domain

import "time"

// NetworkVisibility controls which actors may write to a network.
type NetworkVisibility string

const (
	VisibilityBrandBased NetworkVisibility = "brand_based"
	VisibilityRestricted NetworkVisibility = "restricted"
)

// NetworkStatus is the operational state of a network.
type NetworkStatus string

const (
	NetworkStatusActive   NetworkStatus = "active"
	NetworkStatusArchived NetworkStatus = "archived"
)

// Network is a named graph container belonging to one brand. Exactly one
// node inside a network has DomainRoleMain (enforced by the graph service,
// not by this type).
type Network struct {
	ID             string            `json:"id" db:"id"`
	BrandID        string            `json:"brand_id" db:"brand_id"`
	Name           string            `json:"name" db:"name"`
	Status         NetworkStatus     `json:"status" db:"status"`
	VisibilityMode NetworkVisibility `json:"visibility_mode" db:"visibility_mode"`
	ManagerIDs     []string          `json:"manager_ids" db:"manager_ids"`
	CreatedBy      string            `json:"created_by" db:"created_by"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// IsManager reports whether the given user id is one of the network's managers.
func (n *Network) IsManager(userID string) bool {
	for _, id := range n.ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
