package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/seo-noc/internal/domain"
	"github.com/ignite/seo-noc/internal/pkg/logger"
)

const (
	minSEOChangeNoteLen     = 10
	minOptimizationNoteLen  = 20
	minResolutionNoteLen    = 10
	defaultRateLimitWindow  = 60 * time.Second
)

// gmt7 is the default operator-facing timezone (Asia/Jakarta, the
// system_timezone setting's default), used to render timestamp.gmt7/date/time.
var gmt7 = time.FixedZone("GMT+7", 7*60*60)

// Service is the change-ledger pipeline: validate rationale, persist the
// entity, write the immutable ledger row, then best-effort render, send,
// and record the paired notification.
type Service struct {
	graph    GraphWriter
	repo     Repository
	renderer Renderer
	notifier Notifier
	limiter  RateLimiter
	audit    AuditRecorder
	reader   GraphReader
	brands   BrandReader
	impact   ImpactScorer
}

// NewService builds a ledger Service. renderer/notifier may be nil, in which
// case step 5-7 (render, send, record delivery) is skipped entirely — useful
// for callers that only need the entity+ledger atomicity contract (tests,
// backfills). audit, reader, brands, and impact may also be nil; each
// missing dependency only narrows the rendered notification context, never
// blocks the write.
func NewService(graph GraphWriter, repo Repository, renderer Renderer, notifier Notifier, limiter RateLimiter, audit AuditRecorder, reader GraphReader, brands BrandReader, impact ImpactScorer) *Service {
	if limiter == nil {
		limiter = NewInMemoryRateLimiter(defaultRateLimitWindow)
	}
	return &Service{
		graph: graph, repo: repo, renderer: renderer, notifier: notifier, limiter: limiter, audit: audit,
		reader: reader, brands: brands, impact: impact,
	}
}

// ValidateRationale enforces the minimum trimmed length for the
// three kinds of operator-supplied rationale text.
func ValidateRationale(note string, minLen int) error {
	if len(strings.TrimSpace(note)) < minLen {
		return ErrRationaleTooShort
	}
	return nil
}

// CreateNetwork runs the full pipeline for a new network container,
// rendering the seo_network_created event instead of seo_change.
func (s *Service) CreateNetwork(ctx context.Context, actor domain.ActorRef, n *domain.Network, changeNote string) (*domain.ChangeLog, error) {
	if err := ValidateRationale(changeNote, minSEOChangeNoteLen); err != nil {
		return nil, err
	}
	if err := s.graph.CreateNetwork(ctx, n); err != nil {
		return nil, err
	}
	row := &domain.ChangeLog{
		ID:           uuid.NewString(),
		NetworkID:    n.ID,
		BrandID:      n.BrandID,
		ActionType:   domain.ActionCreateNetwork,
		AffectedNode: n.Name,
		ActorUserID:  actor.UserID,
		ActorEmail:   actor.Email,
		ChangeNote:   changeNote,
		CreatedAt:    time.Now(),
	}
	return s.commit(ctx, row, domain.EventNetworkCreated, false, actor, n.BrandID, nil, "")
}

// CreateNode runs the full pipeline for a new structure entry.
func (s *Service) CreateNode(ctx context.Context, actor domain.ActorRef, brandID string, e *domain.StructureEntry, changeNote string) (*domain.ChangeLog, error) {
	if err := ValidateRationale(changeNote, minSEOChangeNoteLen); err != nil {
		return nil, err
	}
	if err := s.graph.CreateEntry(ctx, e); err != nil {
		return nil, err
	}
	row := &domain.ChangeLog{
		ID:            uuid.NewString(),
		NetworkID:     e.NetworkID,
		BrandID:       brandID,
		EntryID:       &e.ID,
		ActionType:    domain.ActionCreateNode,
		AffectedNode:  e.PathOrRoot(),
		ActorUserID:   actor.UserID,
		ActorEmail:    actor.Email,
		ChangeNote:    changeNote,
		AfterSnapshot: domain.SnapshotOf(e),
		CreatedAt:     time.Now(),
	}
	return s.commit(ctx, row, domain.EventSEOChange, false, actor, brandID, e, "")
}

// UpdateNode runs the full pipeline for an update to an existing entry. The
// strict-diff "no-change save" rejection happens inside the graph engine
// (ErrNoChange) and is propagated unchanged.
func (s *Service) UpdateNode(ctx context.Context, actor domain.ActorRef, brandID string, before, after *domain.StructureEntry, changeNote string) (*domain.ChangeLog, error) {
	if err := ValidateRationale(changeNote, minSEOChangeNoteLen); err != nil {
		return nil, err
	}
	if err := s.graph.UpdateEntry(ctx, after); err != nil {
		return nil, err
	}
	row := &domain.ChangeLog{
		ID:             uuid.NewString(),
		NetworkID:      after.NetworkID,
		BrandID:        brandID,
		EntryID:        &after.ID,
		ActionType:     classifyAction(before, after),
		AffectedNode:   after.PathOrRoot(),
		ActorUserID:    actor.UserID,
		ActorEmail:     actor.Email,
		ChangeNote:     changeNote,
		BeforeSnapshot: domain.SnapshotOf(before),
		AfterSnapshot:  domain.SnapshotOf(after),
		CreatedAt:      time.Now(),
	}
	return s.commit(ctx, row, domain.EventSEOChange, false, actor, brandID, after, "")
}

// DeleteNode runs the full pipeline for a node deletion. Deletion is a
// critical action and bypasses the per-network rate limit.
func (s *Service) DeleteNode(ctx context.Context, actor domain.ActorRef, brandID string, e *domain.StructureEntry, changeNote string) (*domain.ChangeLog, error) {
	if err := ValidateRationale(changeNote, minSEOChangeNoteLen); err != nil {
		return nil, err
	}
	beforeDeletion := s.formatBeforeDeletion(ctx, e)
	if err := s.graph.DeleteEntry(ctx, e.ID); err != nil {
		return nil, err
	}
	row := &domain.ChangeLog{
		ID:             uuid.NewString(),
		NetworkID:      e.NetworkID,
		BrandID:        brandID,
		EntryID:        &e.ID,
		ActionType:     domain.ActionDeleteNode,
		AffectedNode:   e.PathOrRoot(),
		ActorUserID:    actor.UserID,
		ActorEmail:     actor.Email,
		ChangeNote:     changeNote,
		BeforeSnapshot: domain.SnapshotOf(e),
		CreatedAt:      time.Now(),
	}
	return s.commit(ctx, row, domain.EventNodeDeleted, true, actor, brandID, e, beforeDeletion)
}

// formatBeforeDeletion captures the node's authority chain while it still
// exists, for the structure.before_deletion field — the node is gone by the
// time commit builds the rest of the notification context.
func (s *Service) formatBeforeDeletion(ctx context.Context, e *domain.StructureEntry) string {
	if s.reader == nil {
		return ""
	}
	groups, err := s.reader.BuildStructureSnapshot(ctx, e.NetworkID)
	if err != nil {
		logger.Warn("ledger: structure snapshot failed before deletion", "network_id", e.NetworkID, "error", err.Error())
		return ""
	}
	if node := findSnapshotNode(groups, e.ID); node != nil {
		return formatChainReversed(node.Chain)
	}
	return ""
}

// MainSwitch runs the full pipeline for reassigning a network's main node.
// The switch is two entity writes (demote the old main, promote the new),
// and each step gets its own ledger row under the shared rationale; the
// notification is attached to the promotion row. Main-switch is a critical
// action and bypasses the per-network rate limit.
func (s *Service) MainSwitch(ctx context.Context, actor domain.ActorRef, brandID, networkID, newMainEntryID, changeNote string) (*domain.ChangeLog, error) {
	if err := ValidateRationale(changeNote, minSEOChangeNoteLen); err != nil {
		return nil, err
	}
	oldMainID, err := s.graph.MainSwitch(ctx, networkID, newMainEntryID)
	if err != nil {
		return nil, err
	}

	var newMain *domain.StructureEntry
	affectedNode := newMainEntryID
	demotedNode := oldMainID
	if s.reader != nil {
		if groups, err := s.reader.BuildStructureSnapshot(ctx, networkID); err != nil {
			logger.Warn("ledger: structure snapshot failed after main switch", "network_id", networkID, "error", err.Error())
		} else {
			if node := findSnapshotNode(groups, newMainEntryID); node != nil {
				newMain = node.Entry
				affectedNode = newMain.PathOrRoot()
			}
			if node := findSnapshotNode(groups, oldMainID); node != nil {
				demotedNode = node.Entry.PathOrRoot()
			}
		}
	}

	demotion := &domain.ChangeLog{
		ID:           uuid.NewString(),
		NetworkID:    networkID,
		BrandID:      brandID,
		EntryID:      &oldMainID,
		ActionType:   domain.ActionChangeRole,
		AffectedNode: demotedNode,
		ActorUserID:  actor.UserID,
		ActorEmail:   actor.Email,
		ChangeNote:   changeNote,
		CreatedAt:    time.Now(),
	}
	if err := s.insertRow(ctx, demotion); err != nil {
		return nil, err
	}

	row := &domain.ChangeLog{
		ID:           uuid.NewString(),
		NetworkID:    networkID,
		BrandID:      brandID,
		EntryID:      &newMainEntryID,
		ActionType:   domain.ActionChangeRole,
		AffectedNode: affectedNode,
		ActorUserID:  actor.UserID,
		ActorEmail:   actor.Email,
		ChangeNote:   changeNote,
		CreatedAt:    time.Now(),
	}
	return s.commit(ctx, row, domain.EventSEOChange, true, actor, brandID, newMain, "")
}

// commit persists the ledger row (the atomicity contract's second half) and
// then best-effort renders and sends the paired notification. entry is the
// structure entry the row describes (nil when no live entry exists, e.g. a
// main-switch whose new main couldn't be resolved); beforeDeletion carries
// DeleteNode's pre-computed structure.before_deletion value and is "" for
// every other caller.
func (s *Service) commit(ctx context.Context, row *domain.ChangeLog, event domain.EventType, bypassRateLimit bool, actor domain.ActorRef, brandID string, entry *domain.StructureEntry, beforeDeletion string) (*domain.ChangeLog, error) {
	if err := s.insertRow(ctx, row); err != nil {
		return nil, err
	}

	if s.renderer == nil || s.notifier == nil {
		return row, nil
	}

	allowed, err := s.limiter.Allow(ctx, row.NetworkID, bypassRateLimit)
	if err != nil {
		logger.Warn("ledger: rate limiter error, notification skipped", "network_id", row.NetworkID, "error", err.Error())
		return row, nil
	}
	if !allowed {
		logger.Info("ledger: notification suppressed by rate limit", "network_id", row.NetworkID)
		return row, nil
	}

	ctxData := s.buildChangeContext(ctx, row, actor, brandID, entry, beforeDeletion)
	body, err := s.renderer.RenderChange(ctx, row.NetworkID, event, ctxData)
	if errors.Is(err, ErrNotificationDisabled) {
		logger.Info("ledger: notification skipped, template disabled", "network_id", row.NetworkID)
		return row, nil
	}
	if err != nil {
		logger.Warn("ledger: notification render failed", "network_id", row.NetworkID, "error", err.Error())
		s.markNotification(ctx, row, domain.NotificationFailed)
		return row, nil
	}

	sent, err := s.notifier.NotifyChange(ctx, row.NetworkID, body)
	if err != nil || !sent {
		s.markNotification(ctx, row, domain.NotificationFailed)
		return row, nil
	}
	s.markNotification(ctx, row, domain.NotificationSuccess)
	return row, nil
}

// insertRow persists one immutable ledger row and records the paired audit
// event. A failed insert after the entity write has already landed is the
// inconsistency the pipeline can't hide: it is logged at ERROR, written to
// the audit log, and surfaced to the caller as ErrLedgerWriteFailed.
func (s *Service) insertRow(ctx context.Context, row *domain.ChangeLog) error {
	row.NotificationStatus = domain.NotificationPending
	if err := s.repo.InsertChangeLog(ctx, row); err != nil {
		logger.Error("ledger: write failed after entity write succeeded", "network_id", row.NetworkID, "entry_id", row.EntryID, "error", err.Error())
		if s.audit != nil {
			details := fmt.Sprintf("entity write committed but ledger write failed for %s on %s: %s", row.ActionType, row.AffectedNode, err.Error())
			if aerr := s.audit.Record(ctx, "ledger_write_failed", row.ActorEmail, fmt.Sprintf("seo_network:%s", row.NetworkID), details, domain.AuditError, false); aerr != nil {
				logger.Warn("ledger: audit record failed", "ledger_id", row.ID, "error", aerr.Error())
			}
		}
		return ErrLedgerWriteFailed
	}
	s.recordAudit(ctx, row, true, "")
	return nil
}

// buildChangeContext assembles the full nested render context
// (actor, network, brand, node, change, impact, structure) so it
// resolves against the dotted-path allow-list the same way every other
// event's context does (compare templates.SampleContext). Every lookup here
// is best-effort: a missing dependency or a failed read just narrows the
// section it would have populated, it never blocks the notification.
func (s *Service) buildChangeContext(ctx context.Context, row *domain.ChangeLog, actor domain.ActorRef, brandID string, entry *domain.StructureEntry, beforeDeletion string) map[string]interface{} {
	networkName := row.NetworkID
	if s.reader != nil {
		if net, err := s.reader.GetNetwork(ctx, row.NetworkID); err != nil {
			logger.Warn("ledger: network lookup failed for notification context", "network_id", row.NetworkID, "error", err.Error())
		} else if net != nil {
			networkName = net.Name
		}
	}

	brandName := brandID
	if s.brands != nil && brandID != "" {
		if b, err := s.brands.Get(ctx, brandID); err != nil {
			logger.Warn("ledger: brand lookup failed for notification context", "brand_id", brandID, "error", err.Error())
		} else if b != nil {
			brandName = b.Name
		}
	}

	node := map[string]interface{}{
		"id": "", "domain": "", "domain_name": "", "full_path": row.AffectedNode,
		"role": "", "domain_role": "", "tier": "", "status": "", "domain_status": "",
		"index_status": "", "target": "",
	}
	current, upstream := "", ""
	var downstreamCount int
	var reachesMoneySite bool

	if entry != nil && s.reader != nil {
		domainName := entry.AssetDomainID
		if names, err := s.reader.DomainNames(ctx, row.NetworkID); err != nil {
			logger.Warn("ledger: domain name lookup failed for notification context", "network_id", row.NetworkID, "error", err.Error())
		} else if name := names[entry.AssetDomainID]; name != "" {
			domainName = name
		}
		node["id"] = entry.ID
		node["domain"] = domainName
		node["domain_name"] = domainName
		node["full_path"] = nodeFullPath(domainName, entry.OptimizedPath)
		node["role"] = roleLabel(entry.DomainRole)
		node["domain_role"] = string(entry.DomainRole)
		node["status"] = entry.DomainStatus.Label()
		node["domain_status"] = string(entry.DomainStatus)
		node["index_status"] = string(entry.IndexStatus)

		if tiers, err := s.reader.ComputeTiers(ctx, row.NetworkID); err != nil {
			logger.Warn("ledger: tier computation failed for notification context", "network_id", row.NetworkID, "error", err.Error())
		} else {
			for _, t := range tiers {
				if t.Entry.ID == entry.ID {
					node["tier"] = tierDisplay(t)
					break
				}
			}
		}

		if groups, err := s.reader.BuildStructureSnapshot(ctx, row.NetworkID); err != nil {
			logger.Warn("ledger: structure snapshot failed for notification context", "network_id", row.NetworkID, "error", err.Error())
		} else if snapNode := findSnapshotNode(groups, entry.ID); snapNode != nil {
			upstream = formatChain(snapNode.Chain)
			current = formatChainReversed(snapNode.Chain)
			if len(snapNode.Chain) > 0 && snapNode.Chain[0].TargetLabel != "" {
				node["target"] = snapNode.Chain[0].TargetLabel
			}
		}
	}

	severity, severityEmoji := "", ""
	if entry != nil && s.impact != nil {
		if sev, err := s.impact.DomainSeverity(ctx, entry.AssetDomainID); err != nil {
			logger.Warn("ledger: severity lookup failed for notification context", "asset_domain_id", entry.AssetDomainID, "error", err.Error())
		} else {
			severity, severityEmoji = string(sev), sev.Emoji()
		}
		if enrichment, err := s.impact.Enrich(ctx, entry.AssetDomainID); err != nil {
			logger.Warn("ledger: enrichment lookup failed for notification context", "asset_domain_id", entry.AssetDomainID, "error", err.Error())
		} else if enrichment != nil {
			downstreamCount = enrichment.Impact.DownstreamNodesCount
			reachesMoneySite = enrichment.Impact.ReachesMoneySite
		}
	}
	impactDesc := ""
	if reachesMoneySite {
		impactDesc = "Reaches the network's money site"
	}

	return map[string]interface{}{
		"user": map[string]interface{}{
			"display_name": actor.DisplayName,
			"email":        actor.Email,
			"id":           actor.UserID,
		},
		"network": map[string]interface{}{
			"name": networkName,
			"id":   row.NetworkID,
		},
		"brand": map[string]interface{}{
			"name": brandName,
			"id":   brandID,
		},
		"node": node,
		"change": map[string]interface{}{
			"action":       string(row.ActionType),
			"action_label": row.ActionType.Label(),
			"reason":       row.ChangeNote,
			"before":       snapshotSummary(row.BeforeSnapshot),
			"after":        snapshotSummary(row.AfterSnapshot),
			"details":      row.ActionType.Label(),
		},
		"impact": map[string]interface{}{
			"severity":       severity,
			"severity_emoji": severityEmoji,
			"description":    impactDesc,
			"affected_count": fmt.Sprintf("%d", downstreamCount),
		},
		"structure": map[string]interface{}{
			"current":           current,
			"upstream_chain":    upstream,
			"downstream_impact": fmt.Sprintf("%d nodes", downstreamCount),
			"before_deletion":   beforeDeletion,
		},
		"timestamp": timestampContext(row.CreatedAt),
	}
}

// nodeFullPath joins a domain name with its optimized path the same way the
// graph package's structure-snapshot labels do, e.g. "support.com/blog".
func nodeFullPath(domainName string, path *string) string {
	if path == nil {
		return domainName
	}
	return domainName + *path
}

func roleLabel(r domain.DomainRole) string {
	if r == domain.RoleMain {
		return "Main"
	}
	return "Supporting"
}

func tierDisplay(t domain.NodeTier) string {
	if t.Orphan {
		return "Orphan"
	}
	return fmt.Sprintf("%d", t.Tier)
}

// findSnapshotNode locates a structure-snapshot node by entry id across
// every tier group.
func findSnapshotNode(groups []domain.StructureSnapshotGroup, entryID string) *domain.StructureSnapshotNode {
	for _, g := range groups {
		for i := range g.Nodes {
			if g.Nodes[i].Entry.ID == entryID {
				return &g.Nodes[i]
			}
		}
	}
	return nil
}

// formatChain renders an authority chain node-first, e.g.
// "support.com/blog [Canonical] → money.com [Primary]" — the exact shape
// a rendered change notification is expected to contain.
func formatChain(chain []domain.AuthorityHop) string {
	if len(chain) == 0 {
		return ""
	}
	parts := []string{fmt.Sprintf("%s [%s]", chain[0].NodeLabel, chain[0].StatusLabel)}
	for _, hop := range chain {
		if hop.TargetLabel == "" {
			if hop.EndReason != "" {
				parts[len(parts)-1] += " (" + hop.EndReason + ")"
			}
			continue
		}
		label := fmt.Sprintf("%s [%s]", hop.TargetLabel, hop.TargetStatusLabel)
		if hop.IsEnd && hop.EndReason == "CIRCULAR REFERENCE" {
			label += " (CIRCULAR REFERENCE)"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " → ")
}

// formatChainReversed renders the same chain main-first (root to node), for
// the structure.current / structure.before_deletion view.
func formatChainReversed(chain []domain.AuthorityHop) string {
	joined := formatChain(chain)
	if joined == "" {
		return ""
	}
	parts := strings.Split(joined, " → ")
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " → ")
}

// snapshotSummary renders a before/after structure-entry snapshot as a
// short human-readable line for the change.before / change.after fields.
func snapshotSummary(s *domain.StructureEntrySnapshot) string {
	if s == nil {
		return ""
	}
	path := "/"
	if s.OptimizedPath != nil {
		path = *s.OptimizedPath
	}
	target := ""
	if s.TargetEntryID != nil {
		target = *s.TargetEntryID
	}
	return fmt.Sprintf("path: %s, status: %s, target: %s", path, s.DomainStatus.Label(), target)
}

// timestampContext pre-formats the change's timestamp in every shape the
// allow-list exposes, in the operator-facing GMT+7 timezone (rendering must
// stay pure — no formatting happens inside the template itself).
func timestampContext(t time.Time) map[string]interface{} {
	if t.IsZero() {
		t = time.Now()
	}
	return map[string]interface{}{
		"gmt7": t.In(gmt7).Format("2006-01-02 15:04 GMT+7"),
		"iso":  t.UTC().Format(time.RFC3339),
		"date": t.In(gmt7).Format("2006-01-02"),
		"time": t.In(gmt7).Format("15:04"),
	}
}

func (s *Service) markNotification(ctx context.Context, row *domain.ChangeLog, status domain.NotificationStatus) {
	row.NotificationStatus = status
	if err := s.repo.UpdateNotificationStatus(ctx, row.ID, status); err != nil {
		logger.Warn("ledger: failed to record notification status", "ledger_id", row.ID, "error", err.Error())
	}
	if status == domain.NotificationFailed {
		s.recordAudit(ctx, row, false, "notification delivery failed")
	}
}

// recordAudit writes a best-effort audit row for the ledger's two
// event shapes: the SEO change event paired with every committed write, and
// the notification-failed event raised when delivery doesn't succeed.
// Failure here never affects the ledger write it describes.
func (s *Service) recordAudit(ctx context.Context, row *domain.ChangeLog, success bool, detailOverride string) {
	if s.audit == nil {
		return
	}
	eventType := "seo_change_event"
	details := fmt.Sprintf("%s on %s: %s", row.ActionType, row.AffectedNode, row.ChangeNote)
	severity := domain.AuditInfo
	if !success {
		eventType = "notification_failed_event"
		details = detailOverride
		severity = domain.AuditWarning
	}
	resource := fmt.Sprintf("seo_network:%s", row.NetworkID)
	if err := s.audit.Record(ctx, eventType, row.ActorEmail, resource, details, severity, success); err != nil {
		logger.Warn("ledger: audit record failed", "ledger_id", row.ID, "error", err.Error())
	}
}

// classifyAction implements the diff-derived action classification:
// role changes win, then path changes, then target-only relinks, else a
// generic update.
func classifyAction(before, after *domain.StructureEntry) domain.ActionType {
	if before == nil {
		return domain.ActionCreateNode
	}
	if before.DomainRole != after.DomainRole {
		return domain.ActionChangeRole
	}
	if !samePath(before.OptimizedPath, after.OptimizedPath) {
		return domain.ActionChangePath
	}
	if !sameTarget(before.TargetEntryID, after.TargetEntryID) && sameOtherFields(before, after) {
		return domain.ActionRelinkNode
	}
	return domain.ActionUpdateNode
}

func samePath(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func sameTarget(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func sameOtherFields(a, b *domain.StructureEntry) bool {
	return a.DomainStatus == b.DomainStatus &&
		a.IndexStatus == b.IndexStatus &&
		a.PrimaryKeyword == b.PrimaryKeyword &&
		a.RankingURL == b.RankingURL &&
		a.Notes == b.Notes
}
