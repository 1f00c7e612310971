package graph

import (
	"sort"
	"strings"

	"github.com/ignite/seo-noc/internal/domain"
)

// detectConflicts runs all ten structural detectors over a
// whole network and returns the union, ordered by severity then type then
// node label as required.
func detectConflicts(entries []domain.StructureEntry, domainNames map[string]string) []domain.DetectedConflict {
	tiers := computeTiers(entries)
	byTier := tierByID(tiers)
	byID := make(map[string]*domain.StructureEntry, len(entries))
	for i := range entries {
		byID[entries[i].ID] = &entries[i]
	}

	var out []domain.DetectedConflict
	out = append(out, detectKeywordCannibalization(entries, domainNames)...)
	out = append(out, detectCompetingTargets(entries, domainNames)...)
	out = append(out, detectCanonicalMismatch(entries, byID, domainNames)...)
	out = append(out, detectTierInversion(entries, byID, byTier, domainNames)...)
	out = append(out, detectRedirectLoop(entries, byID, domainNames)...)
	out = append(out, detectMultipleParentsToMain(entries, domainNames)...)
	out = append(out, detectIndexNoindexMismatch(entries, byID, byTier, domainNames)...)
	out = append(out, detectCanonicalRedirectConflict(entries, byID, domainNames)...)
	out = append(out, detectOrphan(entries, byTier, domainNames)...)
	out = append(out, detectNoindexHighTier(entries, byTier, domainNames)...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Severity.Rank() != out[j].Severity.Rank() {
			return out[i].Severity.Rank() < out[j].Severity.Rank()
		}
		if out[i].ConflictType != out[j].ConflictType {
			return out[i].ConflictType < out[j].ConflictType
		}
		return out[i].NodeALabel < out[j].NodeALabel
	})
	return out
}

func nodeLabel(e *domain.StructureEntry, domainNames map[string]string) string {
	name := domainNames[e.AssetDomainID]
	if name == "" {
		name = e.AssetDomainID
	}
	if e.OptimizedPath == nil {
		return name
	}
	return name + *e.OptimizedPath
}

func detectKeywordCannibalization(entries []domain.StructureEntry, names map[string]string) []domain.DetectedConflict {
	var out []domain.DetectedConflict
	byDomainKeyword := make(map[string][]*domain.StructureEntry)
	for i := range entries {
		e := &entries[i]
		kw := strings.ToLower(strings.TrimSpace(e.PrimaryKeyword))
		if kw == "" {
			continue
		}
		key := e.AssetDomainID + "|" + kw
		byDomainKeyword[key] = append(byDomainKeyword[key], e)
	}
	for key, group := range byDomainKeyword {
		if len(group) < 2 {
			continue
		}
		kw := strings.SplitN(key, "|", 2)[1]
		for i := 1; i < len(group); i++ {
			out = append(out, domain.DetectedConflict{
				ConflictType: domain.ConflictKeywordCannibalization,
				Severity:     domain.SeverityHigh,
				NodeAID:      group[0].ID,
				NodeALabel:   nodeLabel(group[0], names),
				NodeBID:      group[i].ID,
				NodeBLabel:   nodeLabel(group[i], names),
				DomainName:   names[group[0].AssetDomainID],
				DomainID:     group[0].AssetDomainID,
				NodePath:     group[0].PathOrRoot(),
				TargetPath:   group[i].PathOrRoot(),
				Description:  "Nodes " + nodeLabel(group[0], names) + " and " + nodeLabel(group[i], names) + " share primary keyword \"" + kw + "\"",
				Suggestion:   "Consolidate or differentiate the primary keyword between these nodes to avoid cannibalization.",
			})
		}
	}
	return out
}

func detectCompetingTargets(entries []domain.StructureEntry, names map[string]string) []domain.DetectedConflict {
	var out []domain.DetectedConflict
	byDomain := make(map[string][]*domain.StructureEntry)
	for i := range entries {
		e := &entries[i]
		if e.TargetEntryID == nil {
			continue
		}
		byDomain[e.AssetDomainID] = append(byDomain[e.AssetDomainID], e)
	}
	for _, group := range byDomain {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				if *group[i].TargetEntryID == *group[j].TargetEntryID {
					continue
				}
				out = append(out, domain.DetectedConflict{
					ConflictType: domain.ConflictCompetingTargets,
					Severity:     domain.SeverityMedium,
					NodeAID:      group[i].ID,
					NodeALabel:   nodeLabel(group[i], names),
					NodeBID:      group[j].ID,
					NodeBLabel:   nodeLabel(group[j], names),
					DomainName:   names[group[i].AssetDomainID],
					DomainID:     group[i].AssetDomainID,
					NodePath:     group[i].PathOrRoot(),
					TargetPath:   group[j].PathOrRoot(),
					Description:  "Nodes on the same domain target different entries",
					Suggestion:   "Align both nodes on a single authority target.",
				})
			}
		}
	}
	return out
}

func detectCanonicalMismatch(entries []domain.StructureEntry, byID map[string]*domain.StructureEntry, names map[string]string) []domain.DetectedConflict {
	var out []domain.DetectedConflict
	for i := range entries {
		x := &entries[i]
		if x.DomainStatus != domain.StatusRedirect301 && x.DomainStatus != domain.StatusRedirect302 {
			continue
		}
		if x.TargetEntryID == nil {
			continue
		}
		y, ok := byID[*x.TargetEntryID]
		if !ok || y.IndexStatus != domain.IndexIndex {
			continue
		}
		out = append(out, domain.DetectedConflict{
			ConflictType: domain.ConflictCanonicalMismatch,
			Severity:     domain.SeverityHigh,
			NodeAID:      x.ID,
			NodeALabel:   nodeLabel(x, names),
			NodeBID:      y.ID,
			NodeBLabel:   nodeLabel(y, names),
			DomainName:   names[x.AssetDomainID],
			DomainID:     x.AssetDomainID,
			NodePath:     x.PathOrRoot(),
			TargetPath:   y.PathOrRoot(),
			Description:  nodeLabel(x, names) + " redirects to " + nodeLabel(y, names) + ", which is indexed",
			Suggestion:   "A redirect target should typically be canonical/primary, not independently indexed.",
		})
	}
	return out
}

func detectTierInversion(entries []domain.StructureEntry, byID map[string]*domain.StructureEntry, byTier map[string]domain.NodeTier, names map[string]string) []domain.DetectedConflict {
	var out []domain.DetectedConflict
	for i := range entries {
		src := &entries[i]
		if src.IsMain() || src.TargetEntryID == nil {
			continue
		}
		dst, ok := byID[*src.TargetEntryID]
		if !ok {
			continue
		}
		srcTier, sOK := byTier[src.ID]
		dstTier, dOK := byTier[dst.ID]
		if !sOK || !dOK {
			continue
		}
		if dstTier.Tier > srcTier.Tier {
			t := dstTier.Tier
			out = append(out, domain.DetectedConflict{
				ConflictType: domain.ConflictTierInversion,
				Severity:     domain.SeverityCritical,
				NodeAID:      src.ID,
				NodeALabel:   nodeLabel(src, names),
				NodeBID:      dst.ID,
				NodeBLabel:   nodeLabel(dst, names),
				DomainName:   names[src.AssetDomainID],
				DomainID:     src.AssetDomainID,
				NodePath:     src.PathOrRoot(),
				Tier:         &t,
				TargetPath:   dst.PathOrRoot(),
				Description:  nodeLabel(src, names) + " (tier " + itoa(srcTier.Tier) + ") supports " + nodeLabel(dst, names) + " (tier " + itoa(dstTier.Tier) + "), a lower-authority node",
				Suggestion:   "Re-point the higher-tier node toward a node of equal or lower tier number.",
			})
		}
	}
	return out
}

func detectRedirectLoop(entries []domain.StructureEntry, byID map[string]*domain.StructureEntry, names map[string]string) []domain.DetectedConflict {
	var out []domain.DetectedConflict
	seenGlobal := make(map[string]bool)
	for i := range entries {
		start := &entries[i]
		if !start.DomainStatus.IsRedirectOrCanonical() {
			continue
		}
		if seenGlobal[start.ID] {
			continue
		}
		visited := make(map[string]bool)
		cur := start
		for {
			if visited[cur.ID] {
				t := 0
				out = append(out, domain.DetectedConflict{
					ConflictType: domain.ConflictRedirectLoop,
					Severity:     domain.SeverityCritical,
					NodeAID:      start.ID,
					NodeALabel:   nodeLabel(start, names),
					DomainName:   names[start.AssetDomainID],
					DomainID:     start.AssetDomainID,
					NodePath:     start.PathOrRoot(),
					Tier:         &t,
					Description:  "Following redirect/canonical targets from " + nodeLabel(start, names) + " revisits an already-visited node",
					Suggestion:   "Break the cycle by re-pointing one of the involved nodes toward main.",
				})
				break
			}
			visited[cur.ID] = true
			seenGlobal[cur.ID] = true
			if cur.TargetEntryID == nil || !cur.DomainStatus.IsRedirectOrCanonical() {
				break
			}
			next, ok := byID[*cur.TargetEntryID]
			if !ok {
				break
			}
			cur = next
		}
	}
	return out
}

func detectMultipleParentsToMain(entries []domain.StructureEntry, names map[string]string) []domain.DetectedConflict {
	var mainID string
	for i := range entries {
		if entries[i].IsMain() {
			mainID = entries[i].ID
			break
		}
	}
	if mainID == "" {
		return nil
	}
	var direct []*domain.StructureEntry
	for i := range entries {
		e := &entries[i]
		if e.TargetEntryID != nil && *e.TargetEntryID == mainID && !e.DomainStatus.IsRedirectOrCanonical() {
			direct = append(direct, e)
		}
	}
	if len(direct) <= 1 {
		return nil
	}
	var out []domain.DetectedConflict
	for i := 1; i < len(direct); i++ {
		out = append(out, domain.DetectedConflict{
			ConflictType: domain.ConflictMultipleParentsToMain,
			Severity:     domain.SeverityMedium,
			NodeAID:      direct[0].ID,
			NodeALabel:   nodeLabel(direct[0], names),
			NodeBID:      direct[i].ID,
			NodeBLabel:   nodeLabel(direct[i], names),
			DomainName:   names[direct[0].AssetDomainID],
			DomainID:     direct[0].AssetDomainID,
			Description:  "More than one non-redirect node points directly at the main node",
			Suggestion:   "Route supporting nodes through a single canonical parent before main.",
		})
	}
	return out
}

func detectIndexNoindexMismatch(entries []domain.StructureEntry, byID map[string]*domain.StructureEntry, byTier map[string]domain.NodeTier, names map[string]string) []domain.DetectedConflict {
	var out []domain.DetectedConflict
	for i := range entries {
		src := &entries[i]
		if src.IndexStatus != domain.IndexIndex || src.TargetEntryID == nil {
			continue
		}
		dst, ok := byID[*src.TargetEntryID]
		if !ok || dst.IndexStatus != domain.IndexNoindex {
			continue
		}
		srcTier, sOK := byTier[src.ID]
		dstTier, dOK := byTier[dst.ID]
		if !sOK || !dOK || dstTier.Tier >= srcTier.Tier {
			continue
		}
		out = append(out, domain.DetectedConflict{
			ConflictType: domain.ConflictIndexNoindexMismatch,
			Severity:     domain.SeverityHigh,
			NodeAID:      src.ID,
			NodeALabel:   nodeLabel(src, names),
			NodeBID:      dst.ID,
			NodeBLabel:   nodeLabel(dst, names),
			DomainName:   names[src.AssetDomainID],
			DomainID:     src.AssetDomainID,
			Description:  "Indexed node " + nodeLabel(src, names) + " targets noindex node " + nodeLabel(dst, names) + " at a lower tier",
			Suggestion:   "Either index the target node or point the source elsewhere.",
		})
	}
	return out
}

func detectCanonicalRedirectConflict(entries []domain.StructureEntry, byID map[string]*domain.StructureEntry, names map[string]string) []domain.DetectedConflict {
	var out []domain.DetectedConflict
	byDomain := make(map[string][]*domain.StructureEntry)
	for i := range entries {
		e := &entries[i]
		byDomain[e.AssetDomainID] = append(byDomain[e.AssetDomainID], e)
	}
	for _, group := range byDomain {
		for _, a := range group {
			if a.DomainStatus != domain.StatusCanonical || a.TargetEntryID == nil {
				continue
			}
			b, ok := byID[*a.TargetEntryID]
			if !ok {
				continue
			}
			isInGroup := false
			for _, g := range group {
				if g.ID == b.ID {
					isInGroup = true
					break
				}
			}
			if !isInGroup {
				continue
			}
			if (b.DomainStatus == domain.StatusRedirect301 || b.DomainStatus == domain.StatusRedirect302) && b.TargetEntryID != nil && *b.TargetEntryID != a.ID {
				out = append(out, domain.DetectedConflict{
					ConflictType: domain.ConflictCanonicalRedirect,
					Severity:     domain.SeverityHigh,
					NodeAID:      a.ID,
					NodeALabel:   nodeLabel(a, names),
					NodeBID:      b.ID,
					NodeBLabel:   nodeLabel(b, names),
					DomainName:   names[a.AssetDomainID],
					DomainID:     a.AssetDomainID,
					Description:  nodeLabel(a, names) + " canonicalizes to " + nodeLabel(b, names) + ", which itself redirects elsewhere",
					Suggestion:   "Canonicalize directly to the final redirect destination.",
				})
			}
		}
	}
	return out
}

func detectOrphan(entries []domain.StructureEntry, byTier map[string]domain.NodeTier, names map[string]string) []domain.DetectedConflict {
	var out []domain.DetectedConflict
	for i := range entries {
		e := &entries[i]
		if e.IsMain() || e.TargetEntryID != nil {
			continue
		}
		t, ok := byTier[e.ID]
		if !ok || !t.Orphan {
			continue
		}
		out = append(out, domain.DetectedConflict{
			ConflictType: domain.ConflictOrphan,
			Severity:     domain.SeverityMedium,
			NodeAID:      e.ID,
			NodeALabel:   nodeLabel(e, names),
			DomainName:   names[e.AssetDomainID],
			DomainID:     e.AssetDomainID,
			NodePath:     e.PathOrRoot(),
			Description:  nodeLabel(e, names) + " is unreachable from the network's main node",
			Suggestion:   "Link this node to the authority chain or remove it.",
		})
	}
	return out
}

func detectNoindexHighTier(entries []domain.StructureEntry, byTier map[string]domain.NodeTier, names map[string]string) []domain.DetectedConflict {
	var out []domain.DetectedConflict
	for i := range entries {
		e := &entries[i]
		if e.IndexStatus != domain.IndexNoindex {
			continue
		}
		t, ok := byTier[e.ID]
		if !ok || t.Orphan || t.Tier > 2 {
			continue
		}
		tier := t.Tier
		out = append(out, domain.DetectedConflict{
			ConflictType: domain.ConflictNoindexHighTier,
			Severity:     domain.SeverityHigh,
			NodeAID:      e.ID,
			NodeALabel:   nodeLabel(e, names),
			DomainName:   names[e.AssetDomainID],
			DomainID:     e.AssetDomainID,
			NodePath:     e.PathOrRoot(),
			Tier:         &tier,
			Description:  nodeLabel(e, names) + " is noindex but sits at tier " + itoa(t.Tier),
			Suggestion:   "High-tier nodes carrying authority should generally be indexed.",
		})
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
