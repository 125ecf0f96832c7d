package proc

import (
	"io"
	"os"
	"sync"
)

// stdioSet turns the runner's endpoint readers and writers into real file
// descriptors a child process can inherit. An *os.File endpoint is passed
// through untouched and never closed by the set; anything else is bridged
// through a kernel pipe with a copy goroutine on the parent side. A nil
// endpoint becomes /dev/null.
type stdioSet struct {
	files [3]*os.File

	// parent-held descriptors to release once every stage has started.
	parentEnds []*os.File
	pumps      sync.WaitGroup
}

func newStdioSet(stdin io.Reader, stdout, stderr io.Writer) (*stdioSet, error) {
	s := &stdioSet{}

	in, err := s.inputFile(stdin)
	if err == nil {
		s.files[0] = in
		s.files[1], err = s.outputFile(stdout)
	}
	if err == nil {
		s.files[2], err = s.outputFile(stderr)
	}
	if err != nil {
		s.closeParentEnds()
		return nil, err
	}
	return s, nil
}

func (s *stdioSet) inputFile(r io.Reader) (*os.File, error) {
	if r == nil {
		f, err := os.Open(os.DevNull)
		if err != nil {
			return nil, err
		}
		s.parentEnds = append(s.parentEnds, f)
		return f, nil
	}
	if f, ok := r.(*os.File); ok {
		return f, nil
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	s.pumps.Add(1)
	go func() {
		defer s.pumps.Done()
		defer pw.Close()
		io.Copy(pw, r)
	}()
	s.parentEnds = append(s.parentEnds, pr)
	return pr, nil
}

func (s *stdioSet) outputFile(w io.Writer) (*os.File, error) {
	if w == nil {
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, err
		}
		s.parentEnds = append(s.parentEnds, f)
		return f, nil
	}
	if f, ok := w.(*os.File); ok {
		return f, nil
	}

	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	s.pumps.Add(1)
	go func() {
		defer s.pumps.Done()
		io.Copy(w, pr)
		pr.Close()
	}()
	s.parentEnds = append(s.parentEnds, pw)
	return pw, nil
}

// closeParentEnds releases the parent's copies of the bridged descriptors.
// Must run after every stage has started and before reaping: a bridged
// stdout pump only sees EOF once the last write end is gone.
func (s *stdioSet) closeParentEnds() {
	for _, f := range s.parentEnds {
		f.Close()
	}
	s.parentEnds = nil
}

// wait blocks until every pump goroutine has drained. Call only after
// closeParentEnds, otherwise the output pumps never observe EOF.
func (s *stdioSet) wait() {
	s.pumps.Wait()
}
