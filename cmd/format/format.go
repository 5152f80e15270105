package format

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"

	"github.com/chainfmt/chainfmt/config"
	"github.com/chainfmt/chainfmt/editor"
	"github.com/chainfmt/chainfmt/format"
	"github.com/chainfmt/chainfmt/stats"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func Run(v *viper.Viper, statz *stats.Stats, cmd *cobra.Command, paths []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.FromViper(v)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// check all paths exist and are regular files, resolving them to absolute paths
	for idx, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for %s: %w", path, err)
		}

		info, err := os.Stat(absPath)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		} else if !info.Mode().IsRegular() {
			return fmt.Errorf("%s is not a regular file", path)
		}

		paths[idx] = absPath
	}

	// create an app context and listen for shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		exit := make(chan os.Signal, 1)
		signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
		<-exit
		cancel()
	}()

	// Documents are independent of one another, so we process them
	// concurrently. Each document's chain of stages remains strictly
	// sequential.
	eg := errgroup.Group{}
	eg.SetLimit(runtime.NumCPU())

	// serialise writes to stdout
	var stdoutMu sync.Mutex

	for _, path := range paths {
		path := path
		eg.Go(func() error {
			return formatDocument(ctx, cfg, statz, path, &stdoutMu)
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	statz.Print(os.Stderr)

	return nil
}

func formatDocument(
	ctx context.Context,
	cfg *config.Config,
	statz *stats.Stats,
	path string,
	stdoutMu *sync.Mutex,
) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc := editor.NewDocument(path, string(contents))

	edits := format.Whole(ctx, cfg.Stages, doc, statz)

	// no edit means the document is left untouched
	output := doc.Text()
	if len(edits) > 0 {
		output = edits[0].NewText
	}

	if cfg.Write {
		// nothing to do unless the chain changed something
		if len(edits) == 0 || output == doc.Text() {
			return nil
		}

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		if err := os.WriteFile(path, []byte(output), info.Mode().Perm()); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		return nil
	}

	stdoutMu.Lock()
	defer stdoutMu.Unlock()

	if _, err := io.WriteString(os.Stdout, output); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	return nil
}
