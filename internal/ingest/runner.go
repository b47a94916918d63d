// Package ingest runs store syncs: fetch a feed, filter it, and replace the
// store's catalog with the result.
package ingest

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vintagefeed/internal/catalog"
	"vintagefeed/internal/crawler"
	"vintagefeed/internal/model"
	"vintagefeed/internal/observability"
)

const defaultWorkers = 4

// Report is the outcome of one store sync. Failures are reported here, never
// returned as errors.
type Report struct {
	RunID    string            `json:"run_id"`
	Store    string            `json:"store"`
	Slug     string            `json:"slug"`
	Success  bool              `json:"success"`
	Products int               `json:"products"`
	Skipped  int               `json:"skipped"`
	Error    string            `json:"error,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
	Duration time.Duration     `json:"duration_ns"`
}

type Runner struct {
	Catalog   *catalog.Service
	Options   crawler.Options
	Log       *zap.Logger
	Workers   int
	NewSource func(model.StoreConfig, crawler.Options) (crawler.Source, error)
}

func NewRunner(svc *catalog.Service, opts crawler.Options, log *zap.Logger, workers int) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Logger == nil {
		opts.Logger = log
	}
	return &Runner{Catalog: svc, Options: opts, Log: log, Workers: workers, NewSource: crawler.NewSource}
}

// SyncStore fetches one store and syncs its catalog.
func (r *Runner) SyncStore(ctx context.Context, cfg model.StoreConfig) Report {
	start := time.Now()
	rep := Report{RunID: uuid.NewString(), Store: cfg.Name, Slug: cfg.StoreSlug()}
	log := r.Log.With(zap.String("run_id", rep.RunID), zap.String("store", rep.Store), zap.String("slug", rep.Slug))

	err := r.syncStore(ctx, cfg, &rep, log)
	rep.Duration = time.Since(start)
	observability.SyncDuration.Observe(rep.Duration.Seconds())

	if err != nil {
		rep.Error = err.Error()
		rep.Details = errorDetails(err)
		observability.SyncRuns.WithLabelValues("failure").Inc()
		log.Error("store sync failed", zap.Error(err), zap.Duration("duration", rep.Duration))
		return rep
	}

	rep.Success = true
	observability.SyncRuns.WithLabelValues("success").Inc()
	observability.ProductsSynced.Add(float64(rep.Products))
	log.Info("store sync finished",
		zap.Int("products", rep.Products),
		zap.Int("skipped", rep.Skipped),
		zap.Duration("duration", rep.Duration))
	return rep
}

func (r *Runner) syncStore(ctx context.Context, cfg model.StoreConfig, rep *Report, log *zap.Logger) error {
	newSource := r.NewSource
	if newSource == nil {
		newSource = crawler.NewSource
	}
	opts := r.Options
	opts.Logger = log

	src, err := newSource(cfg, opts)
	if err != nil {
		return err
	}

	res, err := src.Fetch(ctx)
	if err != nil {
		return err
	}
	listings := crawler.FilterPriced(res.Listings)
	rep.Skipped = res.Skipped
	observability.ListingsFetched.WithLabelValues(src.Name()).Add(float64(len(listings)))
	observability.ListingsSkipped.WithLabelValues(src.Name()).Add(float64(res.Skipped))
	log.Debug("feed fetched",
		zap.String("source", src.Name()),
		zap.Int("products", len(listings)),
		zap.Int("skipped", res.Skipped))

	n, err := r.Catalog.SyncProducts(ctx, rep.Slug, cfg.Name, listings)
	if err != nil {
		return err
	}
	rep.Products = n
	return nil
}

// SyncAll syncs every store with at most Workers in flight. Reports keep the
// order of stores; one store failing does not stop the others.
func (r *Runner) SyncAll(ctx context.Context, stores []model.StoreConfig) []Report {
	workers := r.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	reports := make([]Report, len(stores))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, s := range stores {
		g.Go(func() error {
			reports[i] = r.SyncStore(gctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

// Failed reports whether any report is unsuccessful.
func Failed(reports []Report) bool {
	for _, rep := range reports {
		if !rep.Success {
			return true
		}
	}
	return false
}

func errorDetails(err error) map[string]string {
	var fe *crawler.FetchError
	if errors.As(err, &fe) {
		d := map[string]string{"source": fe.Source, "url": fe.URL}
		if fe.StatusCode != 0 {
			d["status"] = strconv.Itoa(fe.StatusCode)
		}
		if errors.Is(err, crawler.ErrUseGraphQL) {
			d["hint"] = "set access_token to use the storefront API"
		}
		return d
	}
	var pe *crawler.ParseError
	if errors.As(err, &pe) {
		return map[string]string{"source": pe.Source, "url": pe.URL}
	}
	var ae *crawler.APIError
	if errors.As(err, &ae) {
		return map[string]string{"source": ae.Source}
	}
	return nil
}
