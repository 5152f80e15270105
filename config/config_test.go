package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/chainfmt/chainfmt/config"
	"github.com/chainfmt/chainfmt/test"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T, configFile string) *config.Config {
	t.Helper()

	as := require.New(t)

	v, err := config.NewViper()
	as.NoError(err)

	v.SetConfigFile(configFile)
	as.NoError(v.ReadInConfig())

	cfg, err := config.FromViper(v)
	as.NoError(err)

	return cfg
}

func TestStagesPreserveOrder(t *testing.T) {
	as := require.New(t)

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "chainfmt.toml")

	cfg := &config.Config{
		Stages: []*config.Formatter{
			{Command: "fmt-one", Args: []string{"-a"}},
			{Command: "fmt-two", Ignore: []string{"*.md"}},
			{Command: "fmt-three", RequiredFiles: []string{"go.mod"}},
		},
	}

	test.WriteConfig(t, configPath, cfg)

	loaded := newViper(t, configPath)

	as.Len(loaded.Stages, 3)
	as.Equal("fmt-one", loaded.Stages[0].Command)
	as.Equal([]string{"-a"}, loaded.Stages[0].Args)
	as.Equal("fmt-two", loaded.Stages[1].Command)
	as.Equal([]string{"*.md"}, loaded.Stages[1].Ignore)
	as.Equal("fmt-three", loaded.Stages[2].Command)
	as.Equal([]string{"go.mod"}, loaded.Stages[2].RequiredFiles)
}

func TestExitCodesDecode(t *testing.T) {
	as := require.New(t)

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "chainfmt.toml")

	contents := `
[[stage]]
command = "fmt-bool"
ignore-exit-code = true

[[stage]]
command = "fmt-list"
ignore-exit-code = [2, 3]

[[stage]]
command = "fmt-unset"
`
	as.NoError(os.WriteFile(configPath, []byte(contents), 0o644))

	cfg := newViper(t, configPath)
	as.Len(cfg.Stages, 3)

	// boolean form tolerates everything
	as.True(cfg.Stages[0].IgnoreExitCode.Tolerates(1))
	as.True(cfg.Stages[0].IgnoreExitCode.Tolerates(127))

	// list form tolerates only the listed codes
	as.True(cfg.Stages[1].IgnoreExitCode.Tolerates(2))
	as.True(cfg.Stages[1].IgnoreExitCode.Tolerates(3))
	as.False(cfg.Stages[1].IgnoreExitCode.Tolerates(1))

	// unset tolerates nothing
	as.False(cfg.Stages[2].IgnoreExitCode.Tolerates(1))
}

func TestExitCodesRoundTrip(t *testing.T) {
	as := require.New(t)

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "chainfmt.toml")

	cfg := &config.Config{
		Stages: []*config.Formatter{
			{Command: "fmt-all", IgnoreExitCode: config.ExitCodes{All: true}},
			{Command: "fmt-some", IgnoreExitCode: config.ExitCodes{Codes: []int{2, 3}}},
		},
	}

	test.WriteConfig(t, configPath, cfg)

	loaded := newViper(t, configPath)

	as.True(loaded.Stages[0].IgnoreExitCode.Tolerates(9))
	as.True(loaded.Stages[1].IgnoreExitCode.Tolerates(2))
	as.False(loaded.Stages[1].IgnoreExitCode.Tolerates(9))
}

func TestMissingCommand(t *testing.T) {
	as := require.New(t)

	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "chainfmt.toml")

	contents := `
[[stage]]
args = ["-w"]
`
	as.NoError(os.WriteFile(configPath, []byte(contents), 0o644))

	v, err := config.NewViper()
	as.NoError(err)

	v.SetConfigFile(configPath)
	as.NoError(v.ReadInConfig())

	_, err = config.FromViper(v)
	as.ErrorIs(err, config.ErrMissingCommand)
}

func TestFindUp(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)

	path, dir, err := config.FindUp(filepath.Join(tempDir, "project", "nested"), "go.mod")
	as.NoError(err)
	as.Equal(filepath.Join(tempDir, "project"), dir)
	as.Equal(filepath.Join(tempDir, "project", "go.mod"), path)

	_, _, err = config.FindUp(tempDir, "does-not-exist.toml")
	as.Error(err)
}

func TestAnyFileExists(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)

	as.True(config.AnyFileExists(tempDir, []string{"missing.txt", "hello.txt"}))
	as.False(config.AnyFileExists(tempDir, []string{"missing.txt"}))
	as.False(config.AnyFileExists(tempDir, nil))

	// directories don't count as files
	as.False(config.AnyFileExists(tempDir, []string{"docs"}))
}

func TestFindWorkDir(t *testing.T) {
	as := require.New(t)

	tempDir := test.TempExamples(t)
	docPath := filepath.Join(tempDir, "project", "nested", "data.txt")

	// no patterns falls back to the document's directory
	dir, err := config.FindWorkDir(docPath, nil)
	as.NoError(err)
	as.Equal(filepath.Join(tempDir, "project", "nested"), dir)

	// a matching marker selects the nearest ancestor containing it
	dir, err = config.FindWorkDir(docPath, []string{"go.mod"})
	as.NoError(err)
	as.Equal(filepath.Join(tempDir, "project"), dir)

	// glob markers work too
	dir, err = config.FindWorkDir(docPath, []string{"go.*"})
	as.NoError(err)
	as.Equal(filepath.Join(tempDir, "project"), dir)

	// an invalid pattern is an error
	_, err = config.FindWorkDir(docPath, []string{"["})
	as.Error(err)

	// no marker found anywhere falls back to the document's directory
	dir, err = config.FindWorkDir(docPath, []string{"this-file-should-not-exist-anywhere.xyz"})
	as.NoError(err)
	as.Equal(filepath.Join(tempDir, "project", "nested"), dir)
}
