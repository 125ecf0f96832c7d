// Package pipeline parses one line of input into an executable pipeline
// description: an ordered list of stages connected by pipes, each stage an
// external program invocation with optional input/output redirection.
package pipeline

import (
	"fmt"
	"strings"
)

// Limits bound the size of a single input line and the pipeline parsed from
// it. The zero value is not usable; see DefaultLimits.
type Limits struct {
	// MaxLineLen is the maximum accepted line length after trimming.
	MaxLineLen int
	// MaxStages is the maximum number of stages in one pipeline.
	MaxStages int
	// MaxArgs is the maximum argument vector length per stage, including
	// the program name in position zero.
	MaxArgs int
}

// DefaultLimits returns the historical defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxLineLen: 1024,
		MaxStages:  8,
		MaxArgs:    32,
	}
}

// Stage is a single external program invocation within a pipeline.
//
// Args always has the program's invocation name in position zero and is
// never empty for a parsed stage. InputFile and OutputFile are empty when
// the stage has no redirection in that direction.
type Stage struct {
	Program    string
	Args       []string
	InputFile  string
	OutputFile string
}

func (s Stage) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s argv=%q", s.Program, s.Args)
	if s.InputFile != "" {
		fmt.Fprintf(&b, " <%s", s.InputFile)
	}
	if s.OutputFile != "" {
		fmt.Fprintf(&b, " >%s", s.OutputFile)
	}
	return b.String()
}

// Pipeline is an ordered sequence of stages parsed from one input line.
// Stage i writes into stage i+1 through a pipe. A Pipeline is freshly
// allocated per input line and owns all of its strings.
type Pipeline struct {
	Stages []Stage
}

// Programs returns the program path of every stage, in order.
func (p *Pipeline) Programs() []string {
	out := make([]string, 0, len(p.Stages))
	for _, s := range p.Stages {
		out = append(out, s.Program)
	}
	return out
}

func (p *Pipeline) String() string {
	var b strings.Builder
	for i, s := range p.Stages {
		fmt.Fprintf(&b, "[%d] %s\n", i, s)
	}
	return b.String()
}
