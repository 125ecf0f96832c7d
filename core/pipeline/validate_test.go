package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	limits := DefaultLimits()

	cases := []struct {
		name string
		line string
		want error
	}{
		{"single command", "ls", nil},
		{"pipeline", "ls | wc -l", nil},
		{"redirections", "sort < in.txt > out.txt", nil},
		{"surrounding whitespace", "  ls -l  ", nil},
		{"empty", "", ErrEmptyLine},
		{"whitespace only", "   \t ", ErrEmptyLine},
		{"too long", strings.Repeat("a", 1024), ErrLineTooLong},
		{"too long from padding", strings.Repeat("a", 1000) + strings.Repeat(" ", 50), ErrLineTooLong},
		{"leading pipe", "| ls", ErrPipeAtEdge},
		{"trailing pipe", "ls |", ErrPipeAtEdge},
		{"double pipe", "ls||wc", ErrPipeSyntax},
		{"spaced double pipe", "ls | | wc", ErrPipeSyntax},
		{"only pipes and spaces", "| | |", ErrPipeAtEdge},
		{"seven stages", strings.Repeat("a | ", 6) + "a", nil},
		{"eight stages", strings.Repeat("a | ", 7) + "a", ErrTooManyStages},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.line, limits)
			if tc.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.want)
			}
		})
	}
}

func TestValidateSpawnsNothing(t *testing.T) {
	// Rejection must leave nothing to execute: the validator only ever
	// inspects the string.
	limits := DefaultLimits()
	for _, line := range []string{"| ls", "ls |", "ls||wc", " | | "} {
		assert.Error(t, Validate(line, limits), "line %q", line)
	}
}
