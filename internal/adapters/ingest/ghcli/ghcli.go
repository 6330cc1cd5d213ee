// Package ghcli fetches GitHub API resources by shelling out to `gh api`,
// reusing whatever authentication the gh CLI already holds
package ghcli

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	perr "repotraffic/internal/platform/errors"
	"repotraffic/internal/platform/logger"
)

// execCommand is swapped in tests
var execCommand = exec.CommandContext

// diagLimit bounds how much subprocess output is echoed into errors
const diagLimit = 2048

// Fetcher runs `<bin> api <path>` per request
type Fetcher struct {
	bin string
	log *logger.Logger
}

// New returns a Fetcher invoking bin, "gh" when empty
func New(bin string) *Fetcher {
	if strings.TrimSpace(bin) == "" {
		bin = "gh"
	}
	return &Fetcher{bin: bin, log: logger.Named("ghcli")}
}

// Fetch returns stdout of a successful `gh api` call.
// A spawn failure or non-zero exit is an Unavailable error carrying gh's output
func (f *Fetcher) Fetch(ctx context.Context, apiPath string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := execCommand(ctx, f.bin, "api", apiPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	f.log.Debug().
		Str("path", apiPath).
		Dur("latency", time.Since(start)).
		Int("bytes", stdout.Len()).
		Err(err).
		Msg("gh api call")

	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "failed to spawn `%s`", f.bin)
	}
	// gh prints the API error document on stdout and its own message on stderr
	diag := strings.TrimSpace(clip(stdout.String()) + "\n" + clip(stderr.String()))
	if diag == "" {
		diag = "unable to read `gh` error"
	}
	return nil, perr.Unavailablef(
		"failed to execute GitHub API call to %s (exit %d):\n%s", apiPath, exitErr.ExitCode(), diag)
}

func clip(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > diagLimit {
		return s[:diagLimit] + "..."
	}
	return s
}
