// Package threatdiff computes which threat matches are new between two snapshots
package threatdiff

import (
	"sort"

	"spec11/internal/services/spec11/domain"
)

// Diff returns the matches in current that are not cancelled by previous.
//
// Per registrar email, each occurrence in previous cancels at most one equal
// occurrence in current. Remaining matches keep their order from current.
// Registrars absent from current or left with no matches are dropped. Inputs
// are never modified; the result shares no slices with them
func Diff(previous, current domain.Snapshot) domain.Snapshot {
	prev := make(map[string][]domain.ThreatMatch, len(previous.Registrars))
	for _, r := range previous.Registrars {
		prev[r.RegistrarEmail] = r.Matches
	}

	out := domain.Snapshot{Date: current.Date}
	for _, cur := range current.Registrars {
		kept := subtract(cur.Matches, prev[cur.RegistrarEmail])
		if len(kept) == 0 {
			continue
		}
		out.Registrars = append(out.Registrars, domain.RegistrarThreatMatches{
			RegistrarID:    cur.RegistrarID,
			RegistrarEmail: cur.RegistrarEmail,
			Matches:        kept,
		})
	}
	sortByEmail(out.Registrars)
	return out
}

// subtract removes one occurrence from cur for every occurrence in prev
func subtract(cur, prev []domain.ThreatMatch) []domain.ThreatMatch {
	if len(cur) == 0 {
		return nil
	}
	remaining := make(map[domain.ThreatMatch]int, len(prev))
	for _, m := range prev {
		remaining[m]++
	}
	kept := make([]domain.ThreatMatch, 0, len(cur))
	for _, m := range cur {
		if remaining[m] > 0 {
			remaining[m]--
			continue
		}
		kept = append(kept, m)
	}
	return kept
}

// NonEmpty returns a copy of s without registrars that have no matches
func NonEmpty(s domain.Snapshot) domain.Snapshot {
	out := domain.Snapshot{Date: s.Date}
	for _, r := range s.Registrars {
		if len(r.Matches) == 0 {
			continue
		}
		out.Registrars = append(out.Registrars, domain.RegistrarThreatMatches{
			RegistrarID:    r.RegistrarID,
			RegistrarEmail: r.RegistrarEmail,
			Matches:        append([]domain.ThreatMatch(nil), r.Matches...),
		})
	}
	sortByEmail(out.Registrars)
	return out
}

func sortByEmail(rs []domain.RegistrarThreatMatches) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].RegistrarEmail < rs[j].RegistrarEmail })
}
