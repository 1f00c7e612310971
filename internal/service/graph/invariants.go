package graph

import "github.com/ignite/seo-noc/internal/domain"

// validateInvariants checks the structural invariants for a
// candidate entry against the rest of the network's already-loaded entries.
// An entry in others with the candidate's own ID (the entry being updated)
// is skipped in the duplicate-path and main-count checks.
func validateInvariants(candidate *domain.StructureEntry, others []domain.StructureEntry, networkBrandID, candidateDomainBrandID string) error {
	if candidateDomainBrandID != networkBrandID {
		return ErrCrossBrandDomain
	}

	if candidate.TargetEntryID != nil && *candidate.TargetEntryID == candidate.ID {
		return ErrSelfReference
	}

	if candidate.IsMain() {
		if candidate.TargetEntryID != nil || candidate.DomainStatus != domain.StatusPrimary {
			return ErrMainMustBeRootless
		}
	}

	var mainCount int
	for _, o := range others {
		if o.ID == candidate.ID {
			continue
		}
		if o.IsMain() {
			mainCount++
		}
		if o.AssetDomainID == candidate.AssetDomainID && samePath(o.OptimizedPath, candidate.OptimizedPath) {
			return ErrDuplicatePath
		}
		if candidate.TargetEntryID != nil && *candidate.TargetEntryID == o.ID {
			// target exists in network — fine.
		}
	}
	if candidate.IsMain() {
		mainCount++
	}
	if mainCount > 1 {
		return ErrMultipleMains
	}
	if mainCount == 0 {
		return ErrNoMain
	}

	if candidate.TargetEntryID != nil {
		found := false
		for _, o := range others {
			if o.ID == *candidate.TargetEntryID {
				found = true
				break
			}
		}
		if !found && *candidate.TargetEntryID != candidate.ID {
			return ErrCrossNetworkTarget
		}
	}

	return nil
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

// canDeleteMain reports whether the main node of a network may be deleted:
// only when it is the sole remaining node.
func canDeleteMain(entries []domain.StructureEntry) bool {
	return len(entries) <= 1
}
