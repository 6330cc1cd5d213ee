package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"repotraffic/internal/core/version"
	"repotraffic/internal/modkit"
	"repotraffic/internal/platform/config"
	perr "repotraffic/internal/platform/errors"
	"repotraffic/internal/platform/logger"
	"repotraffic/internal/services/snapshot/domain"
	snapmod "repotraffic/internal/services/snapshot/module"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit status
func run(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...modkit.Option) int {
	if err := config.LoadDotenv(); err != nil {
		logger.Get().Warn().Err(err).Msg("dotenv load failed")
	}

	l := logger.Get()
	mod := snapmod.New(modkit.Deps{Log: *l, Cfg: config.New()}, opts...)

	root := newRootCmd(ctx, mod)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	if perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		fmt.Fprintln(stderr, "Run 'repotraffic --help' for usage.")
	}
	return perr.ExitCode(err)
}

func newRootCmd(ctx context.Context, mod *snapmod.Module) *cobra.Command {
	var outDir string

	root := &cobra.Command{
		Use:   "repotraffic [--out-dir DIR] <command> <owner/name>",
		Short: "Snapshot GitHub traffic, clones and repository stats into dated JSON files",
		Long: `repotraffic fetches GitHub's rolling 14 day traffic and clone series plus a
repository metadata snapshot and stores each data point as its own JSON file:

  <out-dir>/<owner>/<name>/traffic/{day,week}/<YYYY-MM-DD>.json
  <out-dir>/<owner>/<name>/clones/{day,week}/<YYYY-MM-DD>.json
  <out-dir>/<owner>/<name>/repo/<YYYY-MM-DD>.json

Running it periodically accumulates history beyond GitHub's retention window.`,
		Version:       version.Info().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return perr.InvalidArgf("no command provided")
			}
			repo := ""
			if len(args) > 1 {
				repo = args[1]
			}
			c, err := domain.ParseCommand(args[0], repo)
			if err != nil {
				return err
			}
			return execute(ctx, mod, c, outDir)
		},
	}
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&outDir, "out-dir", mod.Options().OutDir,
		"root directory for output files (env REPOTRAFFIC_OUT_DIR)")

	for _, k := range []struct {
		kind  domain.Kind
		short string
	}{
		{domain.KindTraffic, "Fetch traffic data (page views)"},
		{domain.KindClones, "Fetch clones data"},
		{domain.KindRepo, "Fetch repo data (stars, forks, watchers, subscribers)"},
		{domain.KindAll, "Fetch traffic, clones and repo data"},
	} {
		k := k
		root.AddCommand(&cobra.Command{
			Use:   k.kind.String() + " <owner/name>",
			Short: k.short,
			Args:  repoArg,
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := domain.ParseCommand(k.kind.String(), args[0])
				if err != nil {
					return err
				}
				return execute(ctx, mod, c, outDir)
			},
		})
	}
	return root
}

// repoArg requires exactly one owner/name argument
func repoArg(_ *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return perr.InvalidArgf("no repository provided")
	case 1:
		return nil
	}
	return perr.InvalidArgf("expected one repository, got %d arguments", len(args))
}

func execute(ctx context.Context, mod *snapmod.Module, c domain.Command, outDir string) error {
	if outDir == "" {
		return perr.InvalidArgf("missing --out-dir option")
	}
	ctx = logger.WithRun(ctx, uuid.NewString(), c.Repo.Slug())
	log := logger.C(ctx)
	log.Info().Str("command", c.Kind.String()).Str("out_dir", outDir).Msg("run started")

	err := mod.Service().Run(ctx, c, outDir)
	if err != nil {
		ev := log.Error().Err(err)
		if e, ok := perr.As(err); ok {
			ev = ev.Str("code", e.Code().String()).Str("op", e.Op()).Str("field", e.Field())
		}
		ev.Msg("run failed")
		return err
	}
	log.Info().Str("command", c.Kind.String()).Msg("run finished")
	return nil
}
