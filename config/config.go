package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrMissingCommand = errors.New("formatter stage must specify a command")

// Config describes a formatting chain: an ordered list of formatter stages
// plus the runtime options of the host process.
type Config struct {
	Verbose          uint8  `mapstructure:"verbose" toml:"verbose,omitempty"`
	Write            bool   `mapstructure:"write" toml:"-"` // not allowed in config
	WorkingDirectory string `mapstructure:"working-dir" toml:"-"`

	// Stages are applied in declaration order, each one fed the output of the
	// previous stage.
	Stages []*Formatter `mapstructure:"stage" toml:"stage,omitempty"`
}

// Formatter is the declarative description of a single stage.
// A stage's config is immutable for the duration of a pipeline run.
type Formatter struct {
	// Command is the executable to invoke for this stage.
	Command string `mapstructure:"command" toml:"command"`
	// Args are passed to Command in order.
	Args []string `mapstructure:"args,omitempty" toml:"args,omitempty"`
	// RootPatterns are glob markers used to locate the stage's working
	// directory, searching upward from the document (e.g. "go.mod", ".git").
	RootPatterns []string `mapstructure:"root-patterns,omitempty" toml:"root-patterns,omitempty"`
	// Stdout and Stderr select which process streams feed the stage output.
	// If neither is set, stdout is used.
	Stdout bool `mapstructure:"stdout,omitempty" toml:"stdout,omitempty"`
	Stderr bool `mapstructure:"stderr,omitempty" toml:"stderr,omitempty"`
	// IgnoreExitCode tolerates nonzero exit codes: either all of them, or a
	// specific list. An intolerable exit code makes the stage a no-op.
	IgnoreExitCode ExitCodes `mapstructure:"ignore-exit-code,omitempty" toml:"ignore-exit-code,omitempty"`
	// Ignore lists glob patterns for documents this stage should not touch.
	Ignore []string `mapstructure:"ignore,omitempty" toml:"ignore,omitempty"`
	// RequiredFiles skips the stage unless at least one of these filenames
	// exists directly under the working directory.
	RequiredFiles []string `mapstructure:"required-files,omitempty" toml:"required-files,omitempty"`
	// WriteToFile indicates the formatter mutates the file on disk instead of
	// emitting output; the stage output is re-read from disk afterwards.
	WriteToFile bool `mapstructure:"write-to-file,omitempty" toml:"write-to-file,omitempty"`
}

// SetFlags appends our flags to the provided flag set.
// Flag names match the field names defined in the mapstructure tags so viper
// can merge them with config file values.
func SetFlags(fs *pflag.FlagSet) {
	fs.CountP(
		"verbose", "v",
		"Set the verbosity of logs e.g. -vv. (env $CHAINFMT_VERBOSE)",
	)
	fs.BoolP(
		"write", "w", false,
		"Write the formatted result back to the file instead of printing it to stdout.",
	)
	fs.StringP(
		"working-dir", "C", ".",
		"Run as if chainfmt was started in the specified working directory instead of the current working "+
			"directory. (env $CHAINFMT_WORKING_DIR)",
	)
}

// NewViper creates a Viper instance pre-configured with the following options:
// * TOML config type
// * automatic env enabled
// * `CHAINFMT_` env prefix for environment variables
// * replacement of `-` and `.` with `_` when mapping flags to env e.g. `working-dir` => `CHAINFMT_WORKING_DIR`.
func NewViper() (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigType("toml")

	// Allow env overrides for config and flags.
	v.SetEnvPrefix("chainfmt")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// unset some env variables that we don't want automatically applied
	if err := os.Unsetenv("CHAINFMT_WRITE"); err != nil {
		return nil, fmt.Errorf("failed to unset CHAINFMT_WRITE: %w", err)
	}

	return v, nil
}

// FromViper takes a viper instance and produces a Config instance.
func FromViper(v *viper.Viper) (*Config, error) {
	configReset := map[string]any{
		"write":       false,
		"working-dir": ".",
	}

	// reset certain values which are not allowed to be specified in the config file
	if err := v.MergeConfigMap(configReset); err != nil {
		return nil, fmt.Errorf("failed to overwrite config values: %w", err)
	}

	var err error

	cfg := &Config{}

	if err = v.Unmarshal(cfg, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			ExitCodesDecodeHook(),
			mapstructure.StringToSliceHookFunc(","),
		),
	)); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// resolve the working directory to an absolute path
	cfg.WorkingDirectory, err = filepath.Abs(cfg.WorkingDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for working directory: %w", err)
	}

	// every stage needs a command; everything else is optional
	for idx, stage := range cfg.Stages {
		if stage.Command == "" {
			return nil, fmt.Errorf("%w: stage %d", ErrMissingCommand, idx)
		}
	}

	return cfg, nil
}

// FindUp searches searchDir and each of its ancestors for one of the provided
// filenames, returning the path of the first match and the directory it was
// found in.
func FindUp(searchDir string, fileNames ...string) (path string, dir string, err error) {
	for _, dir := range eachDir(searchDir) {
		for _, f := range fileNames {
			path := filepath.Join(dir, f)
			if fileExists(path) {
				return path, dir, nil
			}
		}
	}

	return "", "", fmt.Errorf("could not find %s in %s", fileNames, searchDir)
}

// AnyFileExists reports whether at least one of the filenames exists directly
// under dir.
func AnyFileExists(dir string, fileNames []string) bool {
	for _, f := range fileNames {
		if fileExists(filepath.Join(dir, f)) {
			return true
		}
	}

	return false
}

func eachDir(path string) (paths []string) {
	path, err := filepath.Abs(path)
	if err != nil {
		return
	}

	paths = []string{path}

	if path == "/" {
		return
	}

	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == os.PathSeparator {
			path = path[:i]
			if path == "" {
				path = "/"
			}

			paths = append(paths, path)
		}
	}

	return
}

func fileExists(path string) bool {
	// Some broken filesystems like SSHFS return file information on stat() but
	// then cannot open the file. So we use os.Open.
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	// Next, check that the file is a regular file.
	fi, err := f.Stat()
	if err != nil {
		return false
	}

	return fi.Mode().IsRegular()
}
