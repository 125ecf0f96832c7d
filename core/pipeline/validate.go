package pipeline

import (
	"errors"
	"strings"
)

// Validation errors reported to the user before anything is executed.
var (
	ErrEmptyLine     = errors.New("input is empty or contains only spaces")
	ErrLineTooLong   = errors.New("input too long")
	ErrPipeAtEdge    = errors.New("input cannot start or end with a pipe")
	ErrPipeSyntax    = errors.New("improper use of pipes")
	ErrOnlyPipes     = errors.New("input contains only pipes and spaces")
	ErrTooManyStages = errors.New("too many commands")
	ErrTooManyArgs   = errors.New("too many arguments")
)

// Validate checks a raw input line (trailing newline already stripped) for
// structural problems and returns the specific rejection reason, or nil if
// the line may be parsed. No execution happens on rejection.
func Validate(raw string, limits Limits) error {
	line := strings.TrimSpace(raw)

	if line == "" {
		return ErrEmptyLine
	}
	// The length bound applies to the line as typed, surrounding
	// whitespace included.
	if len(raw) >= limits.MaxLineLen {
		return ErrLineTooLong
	}
	if strings.HasPrefix(line, "|") || strings.HasSuffix(line, "|") {
		return ErrPipeAtEdge
	}
	if strings.Trim(line, "| \t") == "" {
		return ErrOnlyPipes
	}

	// An all-whitespace segment means adjacent pipes, with or without
	// spaces between them. Rejecting it here guarantees the parser only
	// ever sees non-empty stages.
	segments := strings.Split(line, "|")
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			return ErrPipeSyntax
		}
	}

	if len(segments)-1 >= limits.MaxStages-1 {
		return ErrTooManyStages
	}

	return nil
}
