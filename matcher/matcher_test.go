package matcher_test

import (
	"testing"

	"github.com/chainfmt/chainfmt/matcher"
	"github.com/stretchr/testify/require"
)

func TestMatcher(t *testing.T) {
	as := require.New(t)

	m, err := matcher.New([]string{"*.md", "vendor/**"})
	as.NoError(err)

	as.True(m.Ignores("README.md"))
	as.True(m.Ignores("vendor/foo/bar.go"))
	as.False(m.Ignores("docs/README.md"), "* should not cross directory boundaries")
	as.False(m.Ignores("main.go"))
}

func TestMatcherNoPatterns(t *testing.T) {
	as := require.New(t)

	m, err := matcher.New(nil)
	as.NoError(err)
	as.False(m.Ignores("anything"))
}

func TestMatcherInvalidPattern(t *testing.T) {
	as := require.New(t)

	_, err := matcher.New([]string{"["})
	as.Error(err)
	as.ErrorContains(err, "failed to compile ignore pattern")
}
