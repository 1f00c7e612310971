package enrich

import "github.com/ignite/seo-noc/internal/domain"

// buildUpstreamChain walks target_entry_id edges from start up to the
// network's main node, guarding against cycles and orphan endpoints —
// the same walk the graph package's structure-snapshot formatter
// performs, adapted here to not require a domain-name label map since the
// enricher's output is consumed by notification context, not the
// structure-snapshot view.
func buildUpstreamChain(start *domain.StructureEntry, byID map[string]*domain.StructureEntry) []domain.AuthorityHop {
	var chain []domain.AuthorityHop
	visited := map[string]bool{start.ID: true}
	cur := start

	for {
		if cur.IsMain() {
			break
		}
		if cur.TargetEntryID == nil {
			chain = append(chain, domain.AuthorityHop{
				NodeLabel:   cur.PathOrRoot(),
				StatusLabel: cur.DomainStatus.Label(),
				IsEnd:       true,
				EndReason:   "ORPHAN NODE",
			})
			break
		}
		target, ok := byID[*cur.TargetEntryID]
		if !ok {
			chain = append(chain, domain.AuthorityHop{
				NodeLabel:   cur.PathOrRoot(),
				StatusLabel: cur.DomainStatus.Label(),
				IsEnd:       true,
				EndReason:   "ORPHAN NODE",
			})
			break
		}
		hop := domain.AuthorityHop{
			NodeLabel:         cur.PathOrRoot(),
			StatusLabel:       cur.DomainStatus.Label(),
			TargetLabel:       target.PathOrRoot(),
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

// reachesMoneySite reports whether an upstream chain terminates at the
// network's main node.
func reachesMoneySite(chain []domain.AuthorityHop) bool {
	if len(chain) == 0 {
		return false
	}
	last := chain[len(chain)-1]
	return last.IsEnd && last.EndReason == "MONEY SITE"
}

// downstreamImpact returns the ids of every entry in entries whose
// transitive target_entry_id chain resolves to startID — the "downstream
// impact set" reported alongside it.
func downstreamImpact(startID string, entries []domain.StructureEntry) []string {
	reverseEdges := make(map[string][]string, len(entries))
	for i := range entries {
		e := &entries[i]
		if e.TargetEntryID != nil {
			reverseEdges[*e.TargetEntryID] = append(reverseEdges[*e.TargetEntryID], e.ID)
		}
	}

	var out []string
	visited := map[string]bool{startID: true}
	queue := append([]string(nil), reverseEdges[startID]...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		out = append(out, id)
		queue = append(queue, reverseEdges[id]...)
	}
	return out
}
