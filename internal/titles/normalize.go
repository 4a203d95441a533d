// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package titles turns scraped release titles into comparable anime
// titles and pulls episode and season numbers out of them.
package titles

import (
	"regexp"
	"strings"
	"time"

	"github.com/autobrr/autobrr/pkg/ttlcache"
)

var (
	episodeMarkerRe = regexp.MustCompile(`(?i)(?:Episode|Ep\.?|[-–])\s*(\d+(?:\.\d+)?)`)
	shortEpisodeRe  = regexp.MustCompile(`(?i)\bE\s?\d+(?:\.\d+)?\b`)
	episodeSuffixRe = regexp.MustCompile(`(?i)[-–]\s*(?:Episode)?\s*\d+(?:\.\d+)?.*$`)
	languageTagRe   = regexp.MustCompile(`(?i)\b(?:VOSTFR|VF|VO|OVA|OAV)\b`)
	seasonTagRe     = regexp.MustCompile(`(?i)\b(?:Season|Saison)\s*\d+\b|\bS\d+\b`)
	yearTagRe       = regexp.MustCompile(`\(\s*\d{4}\s*\)`)
	punctuationRe   = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// normalizeCache memoizes Normalize results. Scraped titles repeat on
// every scheduler pass, so the same handful of keys dominate.
var normalizeCache = ttlcache.New(ttlcache.Options[string, string]{}.SetDefaultTTL(5 * time.Minute))

// Normalize reduces a title to a canonical comparison form: episode
// markers, language tags, season tags, years and punctuation removed,
// whitespace collapsed, lowercased.
func Normalize(title string) string {
	if v, ok := normalizeCache.Get(title); ok {
		return v
	}

	s := episodeSuffixRe.ReplaceAllString(title, " ")
	s = episodeMarkerRe.ReplaceAllString(s, " ")
	s = shortEpisodeRe.ReplaceAllString(s, " ")
	s = languageTagRe.ReplaceAllString(s, " ")
	s = seasonTagRe.ReplaceAllString(s, " ")
	s = yearTagRe.ReplaceAllString(s, " ")
	s = punctuationRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = strings.ToLower(strings.TrimSpace(s))

	normalizeCache.Set(title, s, ttlcache.DefaultTTL)
	return s
}

// AnimeTitle strips the episode suffix and language tags from a scraped
// release title, leaving the bare series title for display and storage.
func AnimeTitle(raw string) string {
	s := episodeSuffixRe.ReplaceAllString(raw, "")
	s = languageTagRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
