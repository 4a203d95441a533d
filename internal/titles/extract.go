// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package titles

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	trailingNumberRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:\b(?:VOSTFR|VF|VO|OVA|OAV)\b\s*)*$`)
	seasonWordRe     = regexp.MustCompile(`(?i)(?:Season|Saison)\s*(\d+)`)
	seasonShortRe    = regexp.MustCompile(`(?i)\bS(\d+)\b`)
)

// ExtractEpisode pulls the episode number out of a release title.
// It tries, in order: an explicit episode marker (Episode, Ep., or a
// dash before the number), a literal "episode N" scan when the marker
// number exceeds the series' known episode count, and finally a bare
// trailing number, which may carry a release-tag suffix. Returns 0 when
// no number can be found; fractional numbers (recap episodes like 12.5)
// are preserved.
func ExtractEpisode(title string, totalEpisodes int) float64 {
	if m := episodeMarkerRe.FindStringSubmatch(title); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil {
			if totalEpisodes > 0 && n > float64(totalEpisodes) {
				// A marker number past the series length usually means
				// the regex grabbed noise (resolution, year). Rescan
				// for a plausible episode phrase instead.
				if v, ok := scanEpisodePhrase(title, totalEpisodes); ok {
					return v
				}
			} else {
				return n
			}
		}
	}

	if m := trailingNumberRe.FindStringSubmatch(title); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil {
			return n
		}
	}

	return 0
}

// scanEpisodePhrase looks for the literal phrase "episode i" (or the
// French "épisode i") for i from 1 up to the series' episode count.
func scanEpisodePhrase(title string, totalEpisodes int) (float64, bool) {
	lower := strings.ToLower(title)
	for i := 1; i <= totalEpisodes; i++ {
		if strings.Contains(lower, fmt.Sprintf("episode %d", i)) ||
			strings.Contains(lower, fmt.Sprintf("épisode %d", i)) {
			return float64(i), true
		}
	}
	return 0, false
}

// ExtractSeason reads a season marker from a release title, defaulting
// to season 1 when the title carries none.
func ExtractSeason(title string) int {
	if m := seasonWordRe.FindStringSubmatch(title); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}

	if m := seasonShortRe.FindStringSubmatch(title); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return n
		}
	}

	return 1
}
