package format

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/chainfmt/chainfmt/config"
	"github.com/chainfmt/chainfmt/editor"
	"github.com/chainfmt/chainfmt/matcher"
	"github.com/chainfmt/chainfmt/stats"
	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// ErrCommandNotFound is returned when the Command for a stage is not available.
var ErrCommandNotFound = errors.New("formatter command not found in PATH")

// stage binds one formatter config to the document being processed.
type stage struct {
	cfg   *config.Formatter
	doc   *editor.Document
	statz *stats.Stats

	log *log.Logger
	env expand.Environ
}

func newStage(cfg *config.Formatter, doc *editor.Document, statz *stats.Stats) *stage {
	return &stage{
		cfg:   cfg,
		doc:   doc,
		statz: statz,
		log:   log.WithPrefix("format | " + cfg.Command),
		env:   expand.ListEnviron(os.Environ()...),
	}
}

// run performs the gate check and, unless the stage is skipped, executes the
// formatter. It returns the text to hand to the next stage.
func (s *stage) run(input string) (string, error) {
	workDir, err := config.FindWorkDir(s.doc.Path(), s.cfg.RootPatterns)
	if err != nil {
		return "", err
	}

	if s.shouldSkip(workDir, s.relPath(workDir)) {
		s.statz.Add(stats.Skipped, 1)

		return input, nil
	}

	s.statz.Add(stats.Executed, 1)

	return s.execute(workDir, input)
}

// relPath returns the document's path relative to the working directory.
// A document which cannot be addressed relative to workDir keeps its absolute
// path, which exempts it from ignore matching.
func (s *stage) relPath(workDir string) string {
	rel, err := filepath.Rel(workDir, s.doc.Path())
	if err != nil {
		return s.doc.Path()
	}

	return rel
}

// shouldSkip decides whether the formatter should run at all for this
// document. A skipped stage hands its input to the next stage untouched.
func (s *stage) shouldSkip(workDir string, relPath string) bool {
	if !filepath.IsAbs(relPath) && len(s.cfg.Ignore) > 0 {
		m, err := matcher.New(s.cfg.Ignore)
		if err != nil {
			// a malformed pattern must not skip the stage
			s.log.Errorf("failed to evaluate ignore patterns: %v", err)
		} else if m.Ignores(relPath) {
			s.log.Debugf("document matched ignore patterns: %s", relPath)

			return true
		}
	}

	if len(s.cfg.RequiredFiles) > 0 && !config.AnyFileExists(workDir, s.cfg.RequiredFiles) {
		s.log.Debugf("none of the required files %v found in %s", s.cfg.RequiredFiles, workDir)

		return true
	}

	return false
}

// execute invokes the external formatter with input on stdin and reduces its
// outcome to the stage's output text.
// The process is deliberately not bound to a context: cancellation is only
// observed between stages, so a formatter that has started is left to finish
// and its result discarded afterwards.
func (s *stage) execute(workDir string, input string) (string, error) {
	executable, err := interp.LookPathDir(workDir, s.env, s.cfg.Command)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCommandNotFound, s.cfg.Command)
	}

	cmd := exec.Command(executable, s.cfg.Args...) //nolint:gosec
	cmd.Dir = workDir
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.log.Debugf("executing: %s", cmd.String())

	code := 0

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return "", fmt.Errorf("formatter '%s' failed to run: %w", s.cfg.Command, err)
		}

		code = exitErr.ExitCode()
	}

	// an exit code the stage does not tolerate makes it a no-op
	if code > 0 && !s.cfg.IgnoreExitCode.Tolerates(code) {
		s.log.Debugf("exit code %d not tolerated, passing input through", code)

		return input, nil
	}

	// the formatter mutated the file in place, re-read it for the next stage
	if s.cfg.WriteToFile {
		contents, err := os.ReadFile(s.doc.Path())
		if err != nil {
			return "", fmt.Errorf("failed to re-read '%s': %w", s.doc.Path(), err)
		}

		return string(contents), nil
	}

	if !s.cfg.Stdout && !s.cfg.Stderr {
		return stdout.String(), nil
	}

	var out strings.Builder

	if s.cfg.Stdout {
		out.Write(stdout.Bytes())
	}

	if s.cfg.Stderr {
		out.Write(stderr.Bytes())
	}

	return out.String(), nil
}
