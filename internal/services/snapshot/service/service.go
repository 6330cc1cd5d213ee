// Package service contains the snapshot workflows: fetch traffic, clones and
// repository metadata and persist them as dated JSON files
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"repotraffic/internal/core/timestamp"
	perr "repotraffic/internal/platform/errors"
	"repotraffic/internal/platform/logger"
	"repotraffic/internal/platform/validate"
	"repotraffic/internal/services/snapshot/domain"

	"github.com/sourcegraph/conc/pool"
)

// Options control service behavior
type Options struct {
	// Now is the clock used to date repository snapshots; defaults to time.Now
	Now func() time.Time
}

// Svc runs snapshot commands against a Fetcher and a Writer
type Svc struct {
	fetch domain.Fetcher
	out   domain.Writer
	now   func() time.Time
}

// New constructs the service
func New(f domain.Fetcher, w domain.Writer, opt Options) *Svc {
	if f == nil {
		panic("snapshot.Service requires a non nil Fetcher")
	}
	if w == nil {
		panic("snapshot.Service requires a non nil Writer")
	}
	now := opt.Now
	if now == nil {
		now = time.Now
	}
	return &Svc{fetch: f, out: w, now: now}
}

// TrafficPath is the API path of the views series for repo at per
func TrafficPath(repo domain.RepoID, per domain.Frequency) string {
	return fmt.Sprintf("repos/%s/traffic/views?per=%s", repo.Slug(), per)
}

// ClonesPath is the API path of the clones series for repo at per
func ClonesPath(repo domain.RepoID, per domain.Frequency) string {
	return fmt.Sprintf("repos/%s/traffic/clones?per=%s", repo.Slug(), per)
}

// RepoPath is the API path of the repository resource
func RepoPath(repo domain.RepoID) string { return "repos/" + repo.Slug() }

// FetchTraffic retrieves and decodes the views series
func (s *Svc) FetchTraffic(ctx context.Context, repo domain.RepoID, per domain.Frequency) (*domain.TrafficContainer, error) {
	payload, err := get[domain.Traffic](ctx, s.fetch, TrafficPath(repo, per))
	if err != nil {
		return nil, err
	}
	return &domain.TrafficContainer{Repo: repo, Per: per, Payload: payload}, nil
}

// FetchClones retrieves and decodes the clones series
func (s *Svc) FetchClones(ctx context.Context, repo domain.RepoID, per domain.Frequency) (*domain.ClonesContainer, error) {
	payload, err := get[domain.Clones](ctx, s.fetch, ClonesPath(repo, per))
	if err != nil {
		return nil, err
	}
	return &domain.ClonesContainer{Repo: repo, Per: per, Payload: payload}, nil
}

// FetchRepo retrieves and decodes the repository metadata
func (s *Svc) FetchRepo(ctx context.Context, repo domain.RepoID) (*domain.RepoContainer, error) {
	payload, err := get[domain.RepoMetadata](ctx, s.fetch, RepoPath(repo))
	if err != nil {
		return nil, err
	}
	return &domain.RepoContainer{Repo: repo, Payload: payload}, nil
}

func get[T any](ctx context.Context, f domain.Fetcher, path string) (T, error) {
	var zero T
	b, err := f.Fetch(ctx, path)
	if err != nil {
		return zero, err
	}
	v, err := validate.JSON[T](b)
	if err != nil {
		return zero, perr.WithOp(perr.Wrapf(err, perr.ErrorCodeDecode, "decode %s", path), "decode")
	}
	return v, nil
}

// WritePartitioned writes every record of st to root/<freq>/<date_key>.json in order.
// A series holding a record without a timestamp writes nothing. The first
// failed write aborts; files already written stay in place
func (s *Svc) WritePartitioned(ctx context.Context, root string, st domain.Stats) error {
	recs := st.Records()
	for i, rec := range recs {
		if rec.Timestamp.IsZero() {
			return perr.WithField(perr.Decodef("%s record %d has no timestamp", st.Frequency(), i), "timestamp")
		}
	}
	dir := filepath.Join(root, st.Frequency().String())
	for _, rec := range recs {
		path := filepath.Join(dir, rec.Timestamp.DateKey()+".json")
		if err := s.out.WriteJSON(ctx, path, rec); err != nil {
			return err
		}
	}
	return nil
}

// WriteSnapshot writes payload to root/<date_key of at>.json
func (s *Svc) WriteSnapshot(ctx context.Context, root string, at timestamp.Timestamp, payload any) error {
	return s.out.WriteJSON(ctx, filepath.Join(root, at.DateKey()+".json"), payload)
}

// Run executes one command below outDir. Traffic and clones fetch the weekly
// and daily series concurrently, persist whichever succeeded and then report
// every fetch failure. KindAll runs traffic, clones and repo in turn
func (s *Svc) Run(ctx context.Context, cmd domain.Command, outDir string) error {
	if outDir == "" {
		return perr.InvalidArgf("missing --out-dir option")
	}
	switch cmd.Kind {
	case domain.KindTraffic:
		return s.runSeries(ctx, cmd.Kind, cmd.Repo, outDir, func(ctx context.Context, per domain.Frequency) (domain.Stats, error) {
			c, err := s.FetchTraffic(ctx, cmd.Repo, per)
			if err != nil {
				return nil, err
			}
			return c, nil
		})
	case domain.KindClones:
		return s.runSeries(ctx, cmd.Kind, cmd.Repo, outDir, func(ctx context.Context, per domain.Frequency) (domain.Stats, error) {
			c, err := s.FetchClones(ctx, cmd.Repo, per)
			if err != nil {
				return nil, err
			}
			return c, nil
		})
	case domain.KindRepo:
		return s.runRepo(ctx, cmd.Repo, outDir)
	case domain.KindAll:
		return s.runAll(ctx, cmd.Repo, outDir)
	}
	return perr.InvalidArgf("command %s does not exist", cmd.Kind)
}

// Root is the directory a command kind writes to for repo
func Root(outDir string, repo domain.RepoID, k domain.Kind) string {
	return filepath.Join(outDir, repo.Owner, repo.Name, k.String())
}

type seriesFetch func(ctx context.Context, per domain.Frequency) (domain.Stats, error)

func (s *Svc) runSeries(ctx context.Context, k domain.Kind, repo domain.RepoID, outDir string, fetch seriesFetch) error {
	log := logger.C(ctx).With().Str("component", "snapshot").Str("kind", k.String()).Logger()
	root := Root(outDir, repo, k)

	var (
		stats [len(domain.Frequencies)]domain.Stats
		errs  [len(domain.Frequencies)]error
	)
	p := pool.New()
	for i, per := range domain.Frequencies {
		i, per := i, per
		p.Go(func() {
			st, err := fetch(ctx, per)
			if err != nil {
				errs[i] = perr.Wrapf(err, perr.CodeOf(err), "fetch %s %s", per, k)
				return
			}
			stats[i] = st
		})
	}
	p.Wait()

	for i, st := range stats {
		if errs[i] != nil {
			log.Warn().Err(errs[i]).Str("per", domain.Frequencies[i].String()).Msg("fetch failed, skipping series")
			continue
		}
		if err := s.WritePartitioned(ctx, root, st); err != nil {
			return err
		}
		ev := log.Info().
			Str("per", st.Frequency().String()).
			Str("root", root).
			Int("records", len(st.Records()))
		if t, ok := st.(domain.Totals); ok {
			count, uniques := t.Totals()
			ev = ev.Uint32("count", count).Uint32("uniques", uniques)
		}
		ev.Msg("series written")
	}
	return errors.Join(errs[:]...)
}

func (s *Svc) runRepo(ctx context.Context, repo domain.RepoID, outDir string) error {
	log := logger.C(ctx).With().Str("component", "snapshot").Str("kind", domain.KindRepo.String()).Logger()
	root := Root(outDir, repo, domain.KindRepo)

	c, err := s.FetchRepo(ctx, repo)
	if err != nil {
		return perr.Wrapf(err, perr.CodeOf(err), "fetch %s", domain.KindRepo)
	}
	at := timestamp.FromTime(s.now())
	if err := s.WriteSnapshot(ctx, root, at, c.Payload); err != nil {
		return err
	}
	log.Info().
		Str("root", root).
		Str("date", at.DateKey()).
		Uint32("stars", c.Payload.StargazersCount).
		Uint32("forks", c.Payload.ForksCount).
		Msg("snapshot written")
	return nil
}

// runAll keeps going after a failed kind so one bad resource does not hide the others
func (s *Svc) runAll(ctx context.Context, repo domain.RepoID, outDir string) error {
	var errs []error
	for _, k := range []domain.Kind{domain.KindTraffic, domain.KindClones, domain.KindRepo} {
		if err := ctx.Err(); err != nil {
			errs = append(errs, perr.Wrap(err, perr.ErrorCodeUnavailable, "cancelled"))
			break
		}
		if err := s.Run(ctx, domain.Command{Kind: k, Repo: repo}, outDir); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
