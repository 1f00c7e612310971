package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/httputil"
	"github.com/ignite/seo-noc/internal/service/complaints"
)

// ComplaintManager is the narrow write surface into the complaint service.
// Satisfied by complaints.Service.
type ComplaintManager interface {
	File(ctx context.Context, optimizationID, reason, priority string, responsibleUserIDs []string) (*domain.OptimizationComplaint, error)
	StartReview(ctx context.Context, complaintID string) (*domain.OptimizationComplaint, error)
	Resolve(ctx context.Context, complaintID, resolutionNote string) (*domain.OptimizationComplaint, error)
	FileProjectComplaint(ctx context.Context, networkID, reason, priority string) (*domain.ProjectComplaint, error)
}

// fileComplaintRequest is the body for filing a complaint against an
// optimization.
type fileComplaintRequest struct {
	Reason             string   `json:"reason"`
	Priority           string   `json:"priority"`
	ResponsibleUserIDs []string `json:"responsible_user_ids"`
}

// FileComplaint records a complaint against an optimization and notifies
// the SEO channel.
//
//	POST /api/optimizations/{id}/complaints
func (h *Handlers) FileComplaint(w http.ResponseWriter, r *http.Request) {
	optimizationID := chi.URLParam(r, "id")
	var req fileComplaintRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	c, err := h.Complaints.File(r.Context(), optimizationID, req.Reason, req.Priority, req.ResponsibleUserIDs)
	if err != nil {
		writeComplaintError(w, err)
		return
	}
	httputil.Created(w, c)
}

// ReviewComplaint moves a complaint to under_review.
//
//	POST /api/complaints/{id}/review
func (h *Handlers) ReviewComplaint(w http.ResponseWriter, r *http.Request) {
	c, err := h.Complaints.StartReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeComplaintError(w, err)
		return
	}
	httputil.OK(w, c)
}

// resolveComplaintRequest is the body for resolving a complaint.
type resolveComplaintRequest struct {
	ResolutionNote string `json:"resolution_note"`
}

// ResolveComplaint closes a complaint with a mandatory resolution note.
//
//	POST /api/complaints/{id}/resolve
func (h *Handlers) ResolveComplaint(w http.ResponseWriter, r *http.Request) {
	var req resolveComplaintRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	c, err := h.Complaints.Resolve(r.Context(), chi.URLParam(r, "id"), req.ResolutionNote)
	if err != nil {
		writeComplaintError(w, err)
		return
	}
	httputil.OK(w, c)
}

// fileProjectComplaintRequest is the body for a network-level complaint.
type fileProjectComplaintRequest struct {
	Reason   string `json:"reason"`
	Priority string `json:"priority"`
}

// FileProjectComplaint records a network-level complaint.
//
//	POST /api/networks/{id}/complaints
func (h *Handlers) FileProjectComplaint(w http.ResponseWriter, r *http.Request) {
	networkID := chi.URLParam(r, "id")
	var req fileProjectComplaintRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	c, err := h.Complaints.FileProjectComplaint(r.Context(), networkID, req.Reason, req.Priority)
	if err != nil {
		writeComplaintError(w, err)
		return
	}
	httputil.Created(w, c)
}

func writeComplaintError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, complaints.ErrComplaintNotFound),
		errors.Is(err, complaints.ErrOptimizationNotFound),
		errors.Is(err, complaints.ErrNetworkNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, complaints.ErrReasonRequired),
		errors.Is(err, complaints.ErrResolutionNoteTooShort):
		httputil.BadRequest(w, err.Error())
	default:
		httputil.InternalError(w, err)
	}
}
