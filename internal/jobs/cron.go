package jobs

import (
	"context"
	"time"

	"github.com/HamedShams/pulse-reports/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type pruner interface {
	PruneSuperseded(ctx context.Context) (int64, error)
}

// Cron runs the superseded-report retention sweep. The sweep is idempotent
// and per-document atomic, so overlapping runs from multiple replicas are
// harmless.
type Cron struct {
	cfg    config.Config
	log    zerolog.Logger
	stores pruner
	c      *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, stores pruner) *Cron {
	loc, _ := time.LoadLocation(cfg.TZ)
	c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
	cr := &Cron{cfg: cfg, log: log, stores: stores, c: c}
	if cfg.RetentionCron != "" {
		_, _ = c.AddFunc(cfg.RetentionCron, cr.sweep)
	}
	return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	cr.log.Info().Msg("cron: retention sweep")
	n, err := cr.stores.PruneSuperseded(ctx)
	if err != nil {
		cr.log.Error().Err(err).Msg("cron: retention sweep failed")
		return
	}
	cr.log.Info().Int64("removed", n).Msg("cron: retention sweep done")
}
