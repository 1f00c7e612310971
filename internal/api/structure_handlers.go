package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/httputil"
)

// StructureWriter is the narrow write into the change ledger that drives a
// structure mutation through the atomic pipeline (entity write + changelog
// + best-effort notification). Satisfied by ledger.Service.
type StructureWriter interface {
	CreateNetwork(ctx context.Context, actor domain.ActorRef, n *domain.Network, changeNote string) (*domain.ChangeLog, error)
	CreateNode(ctx context.Context, actor domain.ActorRef, brandID string, e *domain.StructureEntry, changeNote string) (*domain.ChangeLog, error)
	UpdateNode(ctx context.Context, actor domain.ActorRef, brandID string, before, after *domain.StructureEntry, changeNote string) (*domain.ChangeLog, error)
	DeleteNode(ctx context.Context, actor domain.ActorRef, brandID string, e *domain.StructureEntry, changeNote string) (*domain.ChangeLog, error)
	MainSwitch(ctx context.Context, actor domain.ActorRef, brandID, networkID, newMainEntryID, changeNote string) (*domain.ChangeLog, error)
}

// EntryReader resolves a single structure entry, needed to load the "before"
// half of an update. Satisfied by graph.Service.
type EntryReader interface {
	GetEntry(ctx context.Context, entryID string) (*domain.StructureEntry, error)
}

// createNetworkRequest is the body for creating a new network container.
type createNetworkRequest struct {
	Actor          domain.ActorRef          `json:"actor"`
	BrandID        string                   `json:"brand_id"`
	Name           string                   `json:"name"`
	VisibilityMode domain.NetworkVisibility `json:"visibility_mode"`
	ManagerIDs     []string                 `json:"manager_ids"`
	ChangeNote     string                   `json:"change_note"`
}

// CreateNetwork creates an empty network, writing a create_network
// changelog row and sending the network-created notification.
//
//	POST /api/networks
func (h *Handlers) CreateNetwork(w http.ResponseWriter, r *http.Request) {
	var req createNetworkRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	n := &domain.Network{
		BrandID:        req.BrandID,
		Name:           req.Name,
		VisibilityMode: req.VisibilityMode,
		ManagerIDs:     req.ManagerIDs,
		CreatedBy:      req.Actor.UserID,
	}
	row, err := h.Ledger.CreateNetwork(r.Context(), req.Actor, n, req.ChangeNote)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.Created(w, row)
}

// structureNodeRequest is the body shared by the create/update node routes.
// Actor is operator-supplied: this surface has no auth/session layer,
// so the caller identifies itself on every write.
type structureNodeRequest struct {
	Actor         domain.ActorRef    `json:"actor"`
	BrandID       string             `json:"brand_id"`
	ChangeNote    string             `json:"change_note"`
	AssetDomainID string             `json:"asset_domain_id"`
	OptimizedPath *string            `json:"optimized_path"`
	DomainRole    domain.DomainRole  `json:"domain_role"`
	DomainStatus  domain.NodeStatus  `json:"domain_status"`
	IndexStatus   domain.IndexStatus `json:"index_status"`
	TargetEntryID *string            `json:"target_entry_id"`
}

func (req structureNodeRequest) toEntry(networkID, entryID string) *domain.StructureEntry {
	return &domain.StructureEntry{
		ID:            entryID,
		NetworkID:     networkID,
		AssetDomainID: req.AssetDomainID,
		OptimizedPath: req.OptimizedPath,
		DomainRole:    req.DomainRole,
		DomainStatus:  req.DomainStatus,
		IndexStatus:   req.IndexStatus,
		TargetEntryID: req.TargetEntryID,
	}
}

// CreateStructureNode adds a node to a network's structure, writing an
// immutable changelog row and sending a best-effort change notification.
//
//	POST /api/networks/{id}/nodes
func (h *Handlers) CreateStructureNode(w http.ResponseWriter, r *http.Request) {
	networkID := chi.URLParam(r, "id")
	var req structureNodeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	row, err := h.Ledger.CreateNode(r.Context(), req.Actor, req.BrandID, req.toEntry(networkID, ""), req.ChangeNote)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.Created(w, row)
}

// UpdateStructureNode applies a field change to an existing node, loading
// the current stored state first so the ledger can classify what changed.
//
//	PUT /api/networks/{id}/nodes/{nodeId}
func (h *Handlers) UpdateStructureNode(w http.ResponseWriter, r *http.Request) {
	networkID := chi.URLParam(r, "id")
	entryID := chi.URLParam(r, "nodeId")
	var req structureNodeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	before, err := h.Entries.GetEntry(r.Context(), entryID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if before == nil {
		httputil.NotFound(w, "structure entry not found")
		return
	}
	after := req.toEntry(networkID, entryID)
	row, err := h.Ledger.UpdateNode(r.Context(), req.Actor, req.BrandID, before, after, req.ChangeNote)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, row)
}

// deleteStructureNodeRequest is the body for a node deletion.
type deleteStructureNodeRequest struct {
	Actor      domain.ActorRef `json:"actor"`
	BrandID    string          `json:"brand_id"`
	ChangeNote string          `json:"change_note"`
}

// DeleteStructureNode removes a node, refusing to delete a main node that
// still has dependents (enforced by the graph engine underneath).
//
//	DELETE /api/networks/{id}/nodes/{nodeId}
func (h *Handlers) DeleteStructureNode(w http.ResponseWriter, r *http.Request) {
	networkID := chi.URLParam(r, "id")
	entryID := chi.URLParam(r, "nodeId")
	var req deleteStructureNodeRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	existing, err := h.Entries.GetEntry(r.Context(), entryID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if existing == nil {
		httputil.NotFound(w, "structure entry not found")
		return
	}
	existing.NetworkID = networkID
	row, err := h.Ledger.DeleteNode(r.Context(), req.Actor, req.BrandID, existing, req.ChangeNote)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, row)
}

// mainSwitchRequest is the body for reassigning a network's main node.
type mainSwitchRequest struct {
	Actor          domain.ActorRef `json:"actor"`
	BrandID        string          `json:"brand_id"`
	ChangeNote     string          `json:"change_note"`
	NewMainEntryID string          `json:"new_main_entry_id"`
}

// SwitchMainNode promotes a different node to the network's main, demoting
// the current main to canonical/supporting in the same atomic write.
//
//	POST /api/networks/{id}/main-switch
func (h *Handlers) SwitchMainNode(w http.ResponseWriter, r *http.Request) {
	networkID := chi.URLParam(r, "id")
	var req mainSwitchRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	row, err := h.Ledger.MainSwitch(r.Context(), req.Actor, req.BrandID, networkID, req.NewMainEntryID, req.ChangeNote)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.OK(w, row)
}
