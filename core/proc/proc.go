// Package proc realizes a parsed pipeline as concurrently running OS
// processes. One process is started per stage with its stdio wired to the
// kernel pipes connecting adjacent stages; the parent then releases every
// pipe descriptor it holds and reaps children until none remain.
//
// Descriptor discipline: os.StartProcess duplicates exactly the three
// descriptors listed in ProcAttr.Files into each child, and every
// descriptor the os package creates is close-on-exec, so a child can never
// hold a stray end of a link it is not adjacent to. A single leaked write
// end would keep the link's reader from ever seeing EOF.
package proc

import (
	"fmt"
	"io"
	"os"

	"github.com/pipesh/pipesh/core/pipeline"
)

// Runner executes pipelines. Endpoints that are *os.File values are
// inherited by the boundary stages directly; other readers and writers are
// bridged through pipes. A nil endpoint means /dev/null.
type Runner struct {
	// Stdin feeds the first stage unless it redirects its input.
	Stdin io.Reader
	// Stdout receives the last stage's output unless it redirects.
	Stdout io.Writer
	// Stderr receives every stage's diagnostics and the runner's own
	// per-stage failure reports.
	Stderr io.Writer
}

// StageStatus records how a single stage fared.
type StageStatus struct {
	Program string
	Pid     int
	// ExitCode is the stage's exit status, -1 when the stage never ran or
	// was killed by a signal.
	ExitCode int
	// Err holds the redirection or start failure that kept the stage from
	// running, or a reap failure. Nil for a stage that ran to completion.
	Err error
}

// Result reports the outcome of one pipeline execution. Execution is
// complete when Run returns: no child remains unreaped and the parent
// holds no pipeline descriptors.
type Result struct {
	Stages []StageStatus
}

// ExitCodes returns the per-stage exit codes in stage order.
func (r *Result) ExitCodes() []int {
	out := make([]int, 0, len(r.Stages))
	for _, s := range r.Stages {
		out = append(out, s.ExitCode)
	}
	return out
}

// Run executes p and blocks until every started stage has been reaped.
//
// A pipe or bridging failure aborts the whole pipeline before any process
// starts and is returned as an error. A per-stage failure (unopenable
// redirection file, unresolvable or non-executable program) is reported to
// Stderr and recorded in the Result; the remaining stages still run, and
// the neighbors of the failed stage observe EOF on their shared links once
// the parent releases its descriptor copies.
func (r *Runner) Run(p *pipeline.Pipeline) (*Result, error) {
	n := len(p.Stages)
	if n == 0 {
		return &Result{}, nil
	}

	stdio, err := newStdioSet(r.Stdin, r.Stdout, r.Stderr)
	if err != nil {
		return nil, err
	}

	links, err := newPipeSet(n - 1)
	if err != nil {
		stdio.closeParentEnds()
		stdio.wait()
		return nil, err
	}

	res := &Result{Stages: make([]StageStatus, n)}
	procs := make([]*os.Process, n)

	for i, stage := range p.Stages {
		status := &res.Stages[i]
		status.Program = stage.Program
		status.ExitCode = -1

		files, owned, err := wireStage(stage, i, n, links, stdio)
		if err != nil {
			status.Err = err
			r.reportf("pipesh: %v\n", err)
			continue
		}

		// Process replacement with the parsed argument vector and an
		// empty environment: nothing from the parent is passed through
		// and no PATH search happens.
		proc, err := os.StartProcess(stage.Program, stage.Args, &os.ProcAttr{
			Env:   []string{},
			Files: files[:],
		})
		for _, f := range owned {
			f.Close()
		}
		if err != nil {
			status.Err = err
			r.reportf("pipesh: %v\n", err)
			continue
		}
		procs[i] = proc
		status.Pid = proc.Pid
	}

	// The parent never reads or writes pipeline data itself; release every
	// link end so readers can observe end-of-stream.
	closeLinks(links)
	stdio.closeParentEnds()

	// Reap until no children remain.
	for i, proc := range procs {
		if proc == nil {
			continue
		}
		state, err := proc.Wait()
		if err != nil {
			res.Stages[i].Err = err
			continue
		}
		res.Stages[i].ExitCode = state.ExitCode()
	}

	stdio.wait()
	return res, nil
}

// wireStage assembles the three stdio descriptors for stage i of n. Pipe
// wiring happens first, then redirection overrides the descriptor for its
// direction. The returned owned list holds the redirection files the
// parent must close once the child has its duplicates.
func wireStage(stage pipeline.Stage, i, n int, links []pipeLink, stdio *stdioSet) (files [3]*os.File, owned []*os.File, err error) {
	files = stdio.files
	if i > 0 {
		files[0] = links[i-1].r
	}
	if i < n-1 {
		files[1] = links[i].w
	}

	if stage.InputFile != "" {
		f, err := os.Open(stage.InputFile)
		if err != nil {
			return files, nil, fmt.Errorf("%s: %w", stage.Program, err)
		}
		files[0] = f
		owned = append(owned, f)
	}

	if stage.OutputFile != "" {
		f, err := os.OpenFile(stage.OutputFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
		if err != nil {
			for _, o := range owned {
				o.Close()
			}
			return files, nil, fmt.Errorf("%s: %w", stage.Program, err)
		}
		files[1] = f
		owned = append(owned, f)
	}

	return files, owned, nil
}

func (r *Runner) reportf(format string, args ...interface{}) {
	if r.Stderr != nil {
		fmt.Fprintf(r.Stderr, format, args...)
	}
}
