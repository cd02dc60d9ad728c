package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/drift-desk/driftdesk/db"
	"github.com/drift-desk/driftdesk/internal/services"
)

// Sweeper periodically deletes read notifications that fell out of the
// retention window. It is the only background task in the process.
type Sweeper struct {
	retentionDays int
	interval      time.Duration
	ctx           context.Context
	cancel        context.CancelFunc
}

func NewSweeper(retentionDays int) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		retentionDays: retentionDays,
		interval:      24 * time.Hour,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start runs one sweep immediately, then sweeps on the interval until Stop.
func (s *Sweeper) Start() {
	log.Printf("Starting notification sweeper (retention %d days)", s.retentionDays)

	go func() {
		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	log.Println("Stopping notification sweeper...")
	s.cancel()
}

func (s *Sweeper) sweep() {
	count, err := services.CleanupNotifications(db.DB, s.retentionDays)

	if err != nil {
		log.Printf("Notification cleanup failed: %v", err)
		return
	}

	if count > 0 {
		log.Printf("Notification cleanup removed %d rows", count)
	}
}
