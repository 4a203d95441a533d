// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package titles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Falcaol/ledflix/internal/titles"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "episode marker and language tag stripped",
			input: "Frieren – Episode 12 VOSTFR",
			want:  "frieren",
		},
		{
			name:  "season word and year stripped",
			input: "One Piece (1999) Saison 2",
			want:  "one piece",
		},
		{
			name:  "short season tag stripped",
			input: "Mushoku Tensei S2 VF",
			want:  "mushoku tensei",
		},
		{
			name:  "punctuation collapsed",
			input: "Re:Zero - Starting Life in Another World",
			want:  "re zero starting life in another world",
		},
		{
			name:  "already clean",
			input: "bleach",
			want:  "bleach",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles.Normalize(tt.input))
		})
	}
}

func TestNormalizeIsStableAcrossRepeatedCalls(t *testing.T) {
	// Second call is served from the memo and must agree with the first.
	first := titles.Normalize("Frieren – Episode 3 VOSTFR")
	second := titles.Normalize("Frieren – Episode 3 VOSTFR")
	assert.Equal(t, first, second)
}

func TestAnimeTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Frieren - Episode 12 VOSTFR", "Frieren"},
		{"One Piece – 1087 VOSTFR", "One Piece"},
		{"Dandadan - Episode 5.5 VF (720p)", "Dandadan"},
		{"Bleach VOSTFR", "Bleach"},
		{"Solo Leveling", "Solo Leveling"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, titles.AnimeTitle(tt.input), "input: %q", tt.input)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, titles.Similarity("", ""))
	assert.Equal(t, 1.0, titles.Similarity("one piece", "one piece"))
	assert.Equal(t, 0.0, titles.Similarity("abc", "xyz"))
	assert.InDelta(t, 10.0/15.0, titles.Similarity("apple", "applesauce"), 1e-9)
	assert.InDelta(t, 18.0/27.0, titles.Similarity("one piece", "one piece film red"), 1e-9)
}

func TestSimilarityIsSymmetric(t *testing.T) {
	a, b := "shingeki no kyojin", "attack on titan"
	assert.InDelta(t, titles.Similarity(a, b), titles.Similarity(b, a), 1e-9)
}

func TestExtractEpisode(t *testing.T) {
	tests := []struct {
		name          string
		title         string
		totalEpisodes int
		want          float64
	}{
		{
			name:  "explicit marker",
			title: "Frieren - Episode 12 VOSTFR",
			want:  12,
		},
		{
			name:  "fractional recap",
			title: "Dandadan - Episode 5.5 VOSTFR",
			want:  5.5,
		},
		{
			name:  "short marker",
			title: "Naruto Ep. 7",
			want:  7,
		},
		{
			name:  "dash marker",
			title: "One Piece – 1087 VOSTFR",
			want:  1087,
		},
		{
			name:          "marker past series length falls back to phrase scan",
			title:         "Frieren - 1080 épisode 3",
			totalEpisodes: 28,
			want:          3,
		},
		{
			name:  "trailing bare number",
			title: "Solo Leveling 12",
			want:  12,
		},
		{
			name:  "trailing number with tag suffix",
			title: "Solo Leveling 12 VOSTFR",
			want:  12,
		},
		{
			name:  "trailing fractional number with two tags",
			title: "Solo Leveling 7.5 VOSTFR VF",
			want:  7.5,
		},
		{
			name:  "no number at all",
			title: "Frieren le film",
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles.ExtractEpisode(tt.title, tt.totalEpisodes))
		})
	}
}

func TestExtractSeason(t *testing.T) {
	assert.Equal(t, 2, titles.ExtractSeason("Mushoku Tensei Season 2 - Episode 3"))
	assert.Equal(t, 3, titles.ExtractSeason("Kingdom Saison 3 VOSTFR"))
	assert.Equal(t, 4, titles.ExtractSeason("Overlord S4 - Episode 1"))
	assert.Equal(t, 1, titles.ExtractSeason("Frieren - Episode 12"))
}
