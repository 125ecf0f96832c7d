package pipeline

import (
	"fmt"
	"strings"
)

// Parse splits a validated line into a Pipeline. The line must already have
// passed Validate with the same limits; Parse can still fail when a stage's
// argument vector exceeds limits.MaxArgs.
func Parse(raw string, limits Limits) (*Pipeline, error) {
	segments := strings.Split(strings.TrimSpace(raw), "|")

	p := &Pipeline{Stages: make([]Stage, 0, len(segments))}
	for _, segment := range segments {
		stage, err := parseStage(segment, limits.MaxArgs)
		if err != nil {
			return nil, err
		}
		p.Stages = append(p.Stages, stage)
	}
	return p, nil
}

// parseStage tokenizes one pipe-delimited segment by whitespace. The first
// token is the program and argv[0]. A "<" or ">" consumes the next token as
// the input or output file; a dangling operator at the end of the segment
// leaves that redirection unset.
func parseStage(segment string, maxArgs int) (Stage, error) {
	tokens := strings.Fields(segment)
	if len(tokens) == 0 {
		// Unreachable after Validate, kept so parseStage stands alone.
		return Stage{}, ErrPipeSyntax
	}

	stage := Stage{
		Program: tokens[0],
		Args:    []string{tokens[0]},
	}

	for i := 1; i < len(tokens); i++ {
		switch tokens[i] {
		case "<":
			if i+1 < len(tokens) {
				i++
				stage.InputFile = tokens[i]
			}
		case ">":
			if i+1 < len(tokens) {
				i++
				stage.OutputFile = tokens[i]
			}
		default:
			if len(stage.Args) >= maxArgs {
				return Stage{}, fmt.Errorf("%s: %w", stage.Program, ErrTooManyArgs)
			}
			stage.Args = append(stage.Args, tokens[i])
		}
	}

	return stage, nil
}
