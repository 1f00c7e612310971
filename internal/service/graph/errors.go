package graph

import "errors"

// Sentinel errors for the graph service layer: invariant conflicts and
// missing-reference lookups.
var (
	ErrNetworkNotFound   = errors.New("network not found")
	ErrEntryNotFound     = errors.New("structure entry not found")
	ErrMultipleMains     = errors.New("network already has a main node")
	ErrNoMain            = errors.New("network has no main node")
	ErrMainMustBeRootless = errors.New("main node must have target_entry_id=null and domain_status=primary")
	ErrSelfReference     = errors.New("a node cannot target itself")
	ErrCrossNetworkTarget = errors.New("target_entry_id must reference a node in the same network")
	ErrCrossBrandDomain  = errors.New("node's domain must share the network's brand")
	ErrDuplicatePath     = errors.New("(network_id, asset_domain_id, optimized_path) must be unique")
	ErrDeleteMainWithChildren = errors.New("cannot delete the main node while other nodes exist in the network")
	ErrNoChange          = errors.New("no tracked field changed")
	ErrNetworkNameRequired = errors.New("network name is required")
	ErrMainSwitchContended = errors.New("another main switch is already in progress for this network")
)
