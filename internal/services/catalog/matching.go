// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import (
	"github.com/Falcaol/ledflix/internal/titles"
)

// BestMatch picks the catalog entry whose best title variant is most
// similar to target. An exact normalized match wins immediately; ties
// keep the earlier entry; anything below threshold is rejected.
func BestMatch(target string, entries []Entry, threshold float64) *Entry {
	normalized := titles.Normalize(target)
	if normalized == "" {
		return nil
	}

	var best *Entry
	var bestScore float64

	for i := range entries {
		entry := &entries[i]
		for _, name := range entry.Names() {
			candidate := titles.Normalize(name)
			if candidate == normalized {
				return entry
			}

			if score := titles.Similarity(normalized, candidate); score > bestScore {
				bestScore = score
				best = entry
			}
		}
	}

	if bestScore < threshold {
		return nil
	}

	return best
}
