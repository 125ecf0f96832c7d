package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	limits := DefaultLimits()

	t.Run("two stages", func(t *testing.T) {
		p, err := Parse("ls | wc -l", limits)
		require.NoError(t, err)
		require.Len(t, p.Stages, 2)

		assert.Equal(t, Stage{Program: "ls", Args: []string{"ls"}}, p.Stages[0])
		assert.Equal(t, Stage{Program: "wc", Args: []string{"wc", "-l"}}, p.Stages[1])
	})

	t.Run("redirections", func(t *testing.T) {
		p, err := Parse("sort < in.txt > out.txt", limits)
		require.NoError(t, err)
		require.Len(t, p.Stages, 1)

		assert.Equal(t, "sort", p.Stages[0].Program)
		assert.Equal(t, []string{"sort"}, p.Stages[0].Args)
		assert.Equal(t, "in.txt", p.Stages[0].InputFile)
		assert.Equal(t, "out.txt", p.Stages[0].OutputFile)
	})

	t.Run("interior redirection", func(t *testing.T) {
		// Redirection and pipe wiring are independent; the model does not
		// forbid redirection on interior stages.
		p, err := Parse("a | b > mid.txt | c", limits)
		require.NoError(t, err)
		require.Len(t, p.Stages, 3)
		assert.Equal(t, "mid.txt", p.Stages[1].OutputFile)
	})

	t.Run("dangling operator leaves redirection unset", func(t *testing.T) {
		p, err := Parse("cat <", limits)
		require.NoError(t, err)
		assert.Equal(t, "", p.Stages[0].InputFile)
		assert.Equal(t, []string{"cat"}, p.Stages[0].Args)
	})

	t.Run("redirection files are not arguments", func(t *testing.T) {
		p, err := Parse("grep x < log.txt", limits)
		require.NoError(t, err)
		assert.Equal(t, []string{"grep", "x"}, p.Stages[0].Args)
	})

	t.Run("too many arguments", func(t *testing.T) {
		tight := Limits{MaxLineLen: 1024, MaxStages: 8, MaxArgs: 3}
		_, err := Parse("prog a b c", tight)
		assert.ErrorIs(t, err, ErrTooManyArgs)

		_, err = Parse("prog a b", tight)
		assert.NoError(t, err)
	})

	t.Run("independent results", func(t *testing.T) {
		first, err := Parse("ls -l | wc", limits)
		require.NoError(t, err)
		second, err := Parse("ls -l | wc", limits)
		require.NoError(t, err)

		// Each parse owns its storage; mutating one result must not leak
		// into another.
		first.Stages[0].Args[1] = "-a"
		assert.Equal(t, "-l", second.Stages[0].Args[1])
	})
}

func TestParseGolden(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	cases := map[string]string{
		"two_stage":         "ls | wc -l",
		"redirected_sort":   "sort < in.txt > out.txt",
		"interior_redirect": "grep x < log.txt | sort -r | uniq > out.txt",
	}

	for tn, line := range cases {
		t.Run(tn, func(t *testing.T) {
			p, err := Parse(line, DefaultLimits())
			require.NoError(t, err)
			g.Assert(t, tn, []byte(p.String()))
		})
	}
}
