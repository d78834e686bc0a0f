// Package scheduler runs periodic cache maintenance.
package scheduler

import (
	"fmt"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"
)

// Clearer empties a cache
type Clearer interface {
	ClearCache()
}

// Flusher empties a snapshot store
type Flusher interface {
	Flush()
}

// CacheClearJob clears the report cache, and the snapshot store when set
type CacheClearJob struct {
	Reports   Clearer
	Snapshots Flusher // Optional
	Logger    *log.Logger
}

// Run implements cron.Job
func (j *CacheClearJob) Run() {
	j.Reports.ClearCache()
	if j.Snapshots != nil {
		j.Snapshots.Flush()
	}
	j.Logger.Info().Msg("scheduled cache clear")
}

// New returns a cron runner with job registered on a standard five-field schedule.
// The runner is not started.
func New(schedule string, job cron.Job) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(schedule, job); err != nil {
		return nil, fmt.Errorf("failed to schedule cache clear %q: %w", schedule, err)
	}
	return c, nil
}
