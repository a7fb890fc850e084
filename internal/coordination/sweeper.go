package coordination

import (
	"context"
	"net/http"
	"time"

	"pressroom/pkg/logger"
	"pressroom/pkg/metrics"
)

// Cleaner removes one kind of expired record and reports how many went.
type Cleaner interface {
	Cleanup(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper runs lazy garbage collection: expired locks, stale sessions
// and expired notifications are reaped before a request is served, so
// reads never observe records past their deadline. There is no
// background timer; an idle system collects on its next request.
type Sweeper struct {
	targets map[string]Cleaner
	metrics metrics.Collector
	log     *logger.Logger
}

func NewSweeper(metricsCollector metrics.Collector, log *logger.Logger) *Sweeper {
	return &Sweeper{
		targets: make(map[string]Cleaner),
		metrics: metricsCollector,
		log:     log,
	}
}

func (s *Sweeper) Register(name string, cleaner Cleaner) {
	s.targets[name] = cleaner
}

// Sweep reaps every registered target. Failures are logged and skipped;
// a broken sweep must not fail the request that triggered it.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) {
	for name, cleaner := range s.targets {
		removed, err := cleaner.Cleanup(ctx, now)
		if err != nil {
			s.log.Warn("Sweep failed", "target", name, "error", err)
			continue
		}
		if removed > 0 {
			s.metrics.RecordGCRemovals(name, int(removed))
			s.log.Debug("Sweep removed expired records",
				"target", name,
				"removed", removed,
			)
		}
	}
}

// Middleware sweeps before the wrapped handler runs.
func (s *Sweeper) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.Sweep(r.Context(), time.Now().UTC())
			next.ServeHTTP(w, r)
		})
	}
}
