package graph

import (
	"sort"

	"github.com/ignite/seo-noc/internal/domain"
)

// buildStructureSnapshot groups a network's entries by computed tier
// (main first, then Tier 1..4, then "Tier 5+", then orphans), sorts main
// first and the rest alphabetically by path within each group, and walks
// each node's upstream authority chain back to main for display.
func buildStructureSnapshot(entries []domain.StructureEntry, domainNames map[string]string) []domain.StructureSnapshotGroup {
	tiers := computeTiers(entries)
	byID := make(map[string]*domain.StructureEntry, len(entries))
	for i := range entries {
		byID[entries[i].ID] = &entries[i]
	}
	tierOf := tierByID(tiers)

	groupKeys := make(map[string][]domain.NodeTier)
	var order []string
	for _, t := range tiers {
		label := domain.TierGroupLabel(t.Tier, t.Orphan)
		if _, ok := groupKeys[label]; !ok {
			order = append(order, label)
		}
		groupKeys[label] = append(groupKeys[label], t)
	}

	rank := map[string]int{
		"LP/Money Site": 0,
		"Tier 1":        1,
		"Tier 2":        2,
		"Tier 3":        3,
		"Tier 4":        4,
		"Tier 5+":       5,
		"Orphan":        6,
	}
	sort.Slice(order, func(i, j int) bool { return rank[order[i]] < rank[order[j]] })

	var out []domain.StructureSnapshotGroup
	for _, label := range order {
		nodes := groupKeys[label]
		sort.SliceStable(nodes, func(i, j int) bool {
			a, b := nodes[i].Entry, nodes[j].Entry
			if a.IsMain() != b.IsMain() {
				return a.IsMain()
			}
			return a.PathOrRoot() < b.PathOrRoot()
		})
		group := domain.StructureSnapshotGroup{Label: label}
		for _, t := range nodes {
			group.Nodes = append(group.Nodes, domain.StructureSnapshotNode{
				Entry: t.Entry,
				Chain: buildAuthorityChain(t.Entry, byID, tierOf, domainNames),
			})
		}
		out = append(out, group)
	}
	return out
}

// buildAuthorityChain walks target_entry_id edges from a node up to main,
// guarding against cycles (reported as an early-terminated hop rather than
// an infinite loop) and against orphans (no target at all).
func buildAuthorityChain(start *domain.StructureEntry, byID map[string]*domain.StructureEntry, tierOf map[string]domain.NodeTier, domainNames map[string]string) []domain.AuthorityHop {
	var chain []domain.AuthorityHop
	visited := map[string]bool{start.ID: true}
	cur := start

	for {
		if cur.IsMain() {
			break
		}
		if cur.TargetEntryID == nil {
			chain = append(chain, domain.AuthorityHop{
				NodeLabel:   nodeLabel(cur, domainNames),
				StatusLabel: cur.DomainStatus.Label(),
				IsEnd:       true,
				EndReason:   "ORPHAN NODE",
			})
			break
		}
		target, ok := byID[*cur.TargetEntryID]
		if !ok {
			chain = append(chain, domain.AuthorityHop{
				NodeLabel:   nodeLabel(cur, domainNames),
				StatusLabel: cur.DomainStatus.Label(),
				IsEnd:       true,
				EndReason:   "ORPHAN NODE",
			})
			break
		}
		hop := domain.AuthorityHop{
			NodeLabel:         nodeLabel(cur, domainNames),
			StatusLabel:       cur.DomainStatus.Label(),
			TargetLabel:       nodeLabel(target, domainNames),
			TargetStatusLabel: target.DomainStatus.Label(),
		}
		if target.IsMain() {
			hop.IsEnd = true
			hop.EndReason = "MONEY SITE"
			chain = append(chain, hop)
			break
		}
		if visited[target.ID] {
			hop.IsEnd = true
			hop.EndReason = "CIRCULAR REFERENCE"
			chain = append(chain, hop)
			break
		}
		chain = append(chain, hop)
		visited[target.ID] = true
		cur = target
	}

	return chain
}
