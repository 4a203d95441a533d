// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package scraper reads the source site's front page into raw episode
// items: title, link, poster, and the player URLs embedded in each
// episode page.
package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/gocolly/colly"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/Falcaol/ledflix/internal/buildinfo"
)

// Item is one scraped episode listing, untouched by any resolution.
type Item struct {
	Title      string
	Link       string
	Image      string
	VideoLinks []string
}

type Scraper struct {
	sourceURL string
	maxItems  int
}

func New(sourceURL string, maxItems int) *Scraper {
	return &Scraper{
		sourceURL: strings.TrimRight(sourceURL, "/"),
		maxItems:  maxItems,
	}
}

func (s *Scraper) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(buildinfo.UserAgent),
	)
	c.SetRequestTimeout(30 * time.Second)
	return c
}

// LatestEpisodes scrapes the front page's episode cards, then follows
// each card's link to collect player URLs. Duplicate titles within one
// pass are dropped; a failed episode page leaves that item with no
// player links rather than failing the pass.
func (s *Scraper) LatestEpisodes(ctx context.Context) ([]Item, error) {
	var items []Item
	seen := make(map[string]struct{})

	c := s.newCollector()

	c.OnHTML("article.episode-card", func(e *colly.HTMLElement) {
		if s.maxItems > 0 && len(items) >= s.maxItems {
			return
		}

		title := strings.TrimSpace(e.ChildText("h2.entry-title"))
		if title == "" {
			return
		}

		if _, dup := seen[title]; dup {
			return
		}
		seen[title] = struct{}{}

		items = append(items, Item{
			Title: title,
			Link:  e.Request.AbsoluteURL(e.ChildAttr("a[href]", "href")),
			Image: e.Request.AbsoluteURL(e.ChildAttr("img[src]", "src")),
		})
	})

	if err := c.Visit(s.sourceURL + "/"); err != nil {
		return nil, errors.Wrapf(err, "failed to scrape source: %s", s.sourceURL)
	}

	for i := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		items[i].VideoLinks = s.videoLinks(items[i].Link)
	}

	log.Debug().Int("items", len(items)).Msg("Scraped source front page")
	return items, nil
}

// videoLinks collects the player iframes and video sources embedded in
// an episode page. Any failure degrades to an empty list.
func (s *Scraper) videoLinks(link string) []string {
	if link == "" {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})

	add := func(e *colly.HTMLElement, attr string) {
		src := e.Request.AbsoluteURL(e.Attr(attr))
		if src == "" {
			return
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		links = append(links, src)
	}

	c := s.newCollector()
	c.OnHTML("iframe[src]", func(e *colly.HTMLElement) { add(e, "src") })
	c.OnHTML("video source[src]", func(e *colly.HTMLElement) { add(e, "src") })

	if err := c.Visit(link); err != nil {
		log.Warn().Err(err).Str("link", link).Msg("Failed to scrape episode page")
		return nil
	}

	return links
}
