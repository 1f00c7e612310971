package complaints

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

const minResolutionNoteLen = 10

// Service owns the complaint lifecycle: file → under_review → resolved,
// with the complaint_status rollup kept in step on the owning optimization
// at every transition. Notifications are best-effort and never roll back
// the complaint write, the same contract the change ledger follows.
type Service struct {
	repo     Repository
	renderer Renderer
	notifier Notifier
}

// NewService builds a complaint Service. renderer/notifier may be nil, in
// which case filing still persists but sends nothing.
func NewService(repo Repository, renderer Renderer, notifier Notifier) *Service {
	return &Service{repo: repo, renderer: renderer, notifier: notifier}
}

// File records a complaint against an optimization, marks the optimization
// complained, and sends the complaint notification.
func (s *Service) File(ctx context.Context, optimizationID, reason, priority string, responsibleUserIDs []string) (*domain.OptimizationComplaint, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	opt, err := s.repo.GetOptimization(ctx, optimizationID)
	if err != nil {
		return nil, err
	}
	if opt == nil {
		return nil, ErrOptimizationNotFound
	}

	c := &domain.OptimizationComplaint{
		ID:                 uuid.NewString(),
		OptimizationID:     optimizationID,
		Reason:             strings.TrimSpace(reason),
		Priority:           orDefaultPriority(priority),
		ResponsibleUserIDs: responsibleUserIDs,
		Status:             domain.ComplaintCaseOpen,
		CreatedAt:          time.Now(),
	}
	if err := s.repo.InsertComplaint(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOptimizationComplaintStatus(ctx, optimizationID, domain.OptComplaintFiled); err != nil {
		logger.Warn("complaints: optimization complaint_status rollup failed", "optimization_id", optimizationID, "error", err.Error())
	}

	s.notify(ctx, domain.EventComplaint, s.buildContext(ctx, c, opt, nil))
	return c, nil
}

// StartReview moves an open complaint to under_review and rolls the status
// up onto the optimization.
func (s *Service) StartReview(ctx context.Context, complaintID string) (*domain.OptimizationComplaint, error) {
	c, err := s.repo.GetComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrComplaintNotFound
	}
	if c.Status != domain.ComplaintCaseOpen {
		return c, nil
	}
	c.Status = domain.ComplaintCaseUnderReview
	if err := s.repo.UpdateComplaint(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOptimizationComplaintStatus(ctx, c.OptimizationID, domain.OptComplaintUnderReview); err != nil {
		logger.Warn("complaints: optimization complaint_status rollup failed", "optimization_id", c.OptimizationID, "error", err.Error())
	}
	return c, nil
}

// Resolve closes a complaint with a mandatory resolution note (≥10 chars),
// recording time-to-resolution and rolling the resolved status up onto the
// optimization. Resolving an already-resolved complaint is a no-op.
func (s *Service) Resolve(ctx context.Context, complaintID, resolutionNote string) (*domain.OptimizationComplaint, error) {
	if len(strings.TrimSpace(resolutionNote)) < minResolutionNoteLen {
		return nil, ErrResolutionNoteTooShort
	}
	c, err := s.repo.GetComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrComplaintNotFound
	}
	if c.Status == domain.ComplaintCaseResolved {
		return c, nil
	}

	now := time.Now()
	hours := now.Sub(c.CreatedAt).Hours()
	c.Status = domain.ComplaintCaseResolved
	c.ResolvedAt = &now
	c.ResolutionNote = strings.TrimSpace(resolutionNote)
	c.TimeToResolutionHours = &hours
	if err := s.repo.UpdateComplaint(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateOptimizationComplaintStatus(ctx, c.OptimizationID, domain.OptComplaintResolved); err != nil {
		logger.Warn("complaints: optimization complaint_status rollup failed", "optimization_id", c.OptimizationID, "error", err.Error())
	}
	return c, nil
}

// FileProjectComplaint records a network-level complaint (no owning
// optimization) and sends the project-complaint notification.
func (s *Service) FileProjectComplaint(ctx context.Context, networkID, reason, priority string) (*domain.ProjectComplaint, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, ErrReasonRequired
	}
	net, err := s.repo.GetNetwork(ctx, networkID)
	if err != nil {
		return nil, err
	}
	if net == nil {
		return nil, ErrNetworkNotFound
	}

	c := &domain.ProjectComplaint{
		ID:        uuid.NewString(),
		NetworkID: networkID,
		Reason:    strings.TrimSpace(reason),
		Priority:  orDefaultPriority(priority),
		Status:    domain.ComplaintCaseOpen,
		CreatedAt: time.Now(),
	}
	if err := s.repo.InsertProjectComplaint(ctx, c); err != nil {
		return nil, err
	}

	s.notify(ctx, domain.EventProjectComplaint, map[string]interface{}{
		"network": map[string]interface{}{"name": net.Name, "id": net.ID},
		"complaint": map[string]interface{}{
			"reason":         c.Reason,
			"priority":       c.Priority,
			"priority_label": priorityLabel(c.Priority),
			"status":         c.Status,
		},
	})
	return c, nil
}

// buildContext assembles the complaint.*/optimization.*/network.* render
// context for the complaint notification.
func (s *Service) buildContext(ctx context.Context, c *domain.OptimizationComplaint, opt *domain.Optimization, net *domain.Network) map[string]interface{} {
	networkName := opt.NetworkID
	if net == nil {
		var err error
		net, err = s.repo.GetNetwork(ctx, opt.NetworkID)
		if err != nil {
			logger.Warn("complaints: network lookup failed for notification context", "network_id", opt.NetworkID, "error", err.Error())
		}
	}
	if net != nil {
		networkName = net.Name
	}
	return map[string]interface{}{
		"network": map[string]interface{}{"name": networkName, "id": opt.NetworkID},
		"optimization": map[string]interface{}{
			"title":       opt.Title,
			"description": opt.Description,
			"status":      string(opt.Status),
		},
		"complaint": map[string]interface{}{
			"reason":         c.Reason,
			"priority":       c.Priority,
			"priority_label": priorityLabel(c.Priority),
			"status":         c.Status,
		},
	}
}

// notify renders and sends best-effort; a disabled template, render error,
// or failed send only logs.
func (s *Service) notify(ctx context.Context, event domain.EventType, ctxData map[string]interface{}) {
	if s.renderer == nil || s.notifier == nil {
		return
	}
	body, err := s.renderer.Render(ctx, domain.ChannelChat, event, ctxData)
	if errors.Is(err, domain.ErrNotificationDisabled) {
		return
	}
	if err != nil {
		logger.Warn("complaints: render failed", "event_type", string(event), "error", err.Error())
		return
	}
	if _, err := s.notifier.SendEvent(ctx, event, "", body); err != nil {
		logger.Warn("complaints: send failed", "event_type", string(event), "error", err.Error())
	}
}

func orDefaultPriority(p string) string {
	if strings.TrimSpace(p) == "" {
		return "medium"
	}
	return strings.ToLower(strings.TrimSpace(p))
}

func priorityLabel(p string) string {
	switch p {
	case "low":
		return "Low"
	case "medium":
		return "Medium"
	case "high":
		return "High"
	case "critical":
		return "Critical"
	default:
		return p
	}
}
