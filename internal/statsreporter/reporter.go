// Package statsreporter periodically logs an engine.Engine's processing
// counters on a cron schedule. Strictly additive: an embedding service
// can ignore this package entirely.
package statsreporter

import (
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/voltaicdb/tscore/internal/engine"
)

// StatSource is the subset of engine.Engine the reporter reads.
type StatSource interface {
	Stats() engine.Stats
}

// Reporter logs a StatSource's counters on a cron schedule.
type Reporter struct {
	source StatSource
	logger *slog.Logger
	cron   *cron.Cron
	id     cron.EntryID
}

// New builds a Reporter. schedule is a standard 5-field cron expression
// (e.g. "*/5 * * * *" for every 5 minutes).
func New(source StatSource, schedule string, logger *slog.Logger) (*Reporter, error) {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))
	r := &Reporter{source: source, logger: logger, cron: c}

	id, err := c.AddFunc(schedule, r.report)
	if err != nil {
		return nil, err
	}
	r.id = id
	return r, nil
}

// Start begins the cron scheduler in the background.
func (r *Reporter) Start() {
	r.cron.Start()
	r.logger.Info("stats reporter started", "entry_id", r.id)
}

// Stop cancels the scheduler and blocks until the running job, if any,
// finishes.
func (r *Reporter) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("stats reporter stopped")
}

func (r *Reporter) report() {
	s := r.source.Stats()
	r.logger.Info("engine stats",
		"request_id", s.RequestID,
		"processed_messages", s.ProcessedMessageCount,
		"processed_bytes", s.ProcessedByteCount,
		"decomposed_requests", s.DecomposedRequests,
	)
}
