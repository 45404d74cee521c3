/**
 * @description
 * Background sweep that expires stale pending transfers. Pending transfers
 * carry an expires_at deadline; once it passes without the client's payment
 * arriving, the sweep fails them through the normal transition path so the
 * history records the expiry like any other status change.
 *
 * @dependencies
 * - github.com/robfig/cron/v3: Schedule parsing and job execution.
 * - internal/app: The service whose FailExpiredTransfers does the work.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const sweepBatchSize = 100

// Sweeper runs the expiry job on a cron schedule.
type Sweeper struct {
	service *Service
	cron    *cron.Cron
}

// NewSweeper creates a sweeper bound to the service.
func NewSweeper(service *Service) *Sweeper {
	return &Sweeper{
		service: service,
		cron:    cron.New(),
	}
}

// Start registers the sweep under schedule (standard 5-field cron expression) and
// begins running it.
func (sw *Sweeper) Start(schedule string) error {
	_, err := sw.cron.AddFunc(schedule, sw.runSweep)
	if err != nil {
		return err
	}
	sw.cron.Start()
	log.Printf("level=info component=sweeper msg=\"expiry sweep scheduled\" schedule=%q", schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (sw *Sweeper) Stop() {
	ctx := sw.cron.Stop()
	<-ctx.Done()
}

func (sw *Sweeper) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	failed, err := sw.service.FailExpiredTransfers(ctx, sweepBatchSize)
	if err != nil {
		log.Printf("level=error component=sweeper msg=\"expiry sweep failed\" error=%q", err)
		return
	}
	if failed > 0 {
		log.Printf("level=info component=sweeper msg=\"expired pending transfers failed\" count=%d", failed)
	}
}
