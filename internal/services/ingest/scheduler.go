// Copyright (c) 2025, Falcaol and the ledflix contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler triggers pipeline runs on a fixed interval.
type Scheduler struct {
	service  *Service
	interval time.Duration
}

func NewScheduler(service *Service, interval time.Duration) *Scheduler {
	return &Scheduler{
		service:  service,
		interval: interval,
	}
}

// Start launches the scheduling loop. An initial run fires immediately
// so a fresh database fills without waiting a full interval. The loop
// stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Msg("Starting ingestion scheduler")

	s.service.Run(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Ingestion scheduler stopped")
			return
		case <-ticker.C:
			s.service.Run(ctx)
		}
	}
}
