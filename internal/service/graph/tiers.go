package graph

import "github.com/ignite/seo-noc/internal/domain"

// computeTiers assigns each node its tier: BFS from every
// domain_role=main node, following the reverse of target_entry_id edges
// (from a target back to its sources). Ties are broken by first visit —
// since BFS processes nodes level by level starting from a deterministic
// seed order, the first assignment for a node wins and is never revisited.
func computeTiers(entries []domain.StructureEntry) []domain.NodeTier {
	byID := make(map[string]*domain.StructureEntry, len(entries))
	reverseEdges := make(map[string][]string) // target id -> source ids
	var mains []string

	for i := range entries {
		e := &entries[i]
		byID[e.ID] = e
		if e.TargetEntryID != nil {
			reverseEdges[*e.TargetEntryID] = append(reverseEdges[*e.TargetEntryID], e.ID)
		}
		if e.IsMain() {
			mains = append(mains, e.ID)
		}
	}

	tierOf := make(map[string]int, len(entries))
	queue := make([]string, 0, len(mains))
	for _, id := range mains {
		tierOf[id] = 0
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, srcID := range reverseEdges[id] {
			if _, visited := tierOf[srcID]; visited {
				continue
			}
			tierOf[srcID] = tierOf[id] + 1
			queue = append(queue, srcID)
		}
	}

	result := make([]domain.NodeTier, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		tier, reached := tierOf[e.ID]
		if !reached {
			result = append(result, domain.NodeTier{Entry: e, Tier: domain.OrphanTier, Orphan: true})
			continue
		}
		if tier > domain.OrphanTier {
			tier = domain.OrphanTier
		}
		result = append(result, domain.NodeTier{Entry: e, Tier: tier, Orphan: false})
	}
	return result
}

// tierByID returns a lookup map from entry id to its computed NodeTier.
func tierByID(tiers []domain.NodeTier) map[string]domain.NodeTier {
	m := make(map[string]domain.NodeTier, len(tiers))
	for _, t := range tiers {
		m[t.Entry.ID] = t
	}
	return m
}
