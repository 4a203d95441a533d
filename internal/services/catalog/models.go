// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package catalog

import "time"

// Entry is one show as the catalog reports it, either from the weekly
// timetable or from a search.
type Entry struct {
	Route             string            `json:"route"`
	Title             string            `json:"title"`
	English           string            `json:"english"`
	Romaji            string            `json:"romaji"`
	Native            string            `json:"native"`
	Episodes          int               `json:"episodes"`
	EpisodeNumber     int               `json:"episodeNumber"`
	EpisodeDate       *time.Time        `json:"episodeDate"`
	ImageVersionRoute string            `json:"imageVersionRoute"`
	Streams           map[string]string `json:"streams"`
}

// Names returns every non-empty title variant the catalog knows for
// this entry, in preference order.
func (e *Entry) Names() []string {
	var names []string
	for _, n := range []string{e.Title, e.English, e.Romaji, e.Native} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// CanonicalTitle is the catalog's primary title, falling back through
// the English and romaji variants when the catalog leaves it empty.
// Resolved shows are stored and looked up under this title.
func (e *Entry) CanonicalTitle() string {
	for _, n := range []string{e.Title, e.English, e.Romaji} {
		if n != "" {
			return n
		}
	}
	return e.Route
}

const imageBaseURL = "https://img.animeschedule.net/production/assets/public/"

// ImageURL resolves the entry's poster, or "" when the catalog has none.
func (e *Entry) ImageURL() string {
	if e.ImageVersionRoute == "" {
		return ""
	}
	return imageBaseURL + e.ImageVersionRoute
}

// Crunchyroll returns the entry's Crunchyroll stream URL, if any.
func (e *Entry) Crunchyroll() string {
	return e.Streams["crunchyroll"]
}

type searchResponse struct {
	Anime []Entry `json:"anime"`
}

// Detail is the catalog's full record for one show.
type Detail struct {
	Route    string  `json:"route"`
	Title    string  `json:"title"`
	English  string  `json:"english"`
	Episodes int     `json:"episodes"`
	Genres   []Genre `json:"genres"`
}

type Genre struct {
	Name  string `json:"name"`
	Route string `json:"route"`
}

// GenreNames flattens the detail's genres to their display names.
func (d *Detail) GenreNames() []string {
	var names []string
	for _, g := range d.Genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	return names
}
