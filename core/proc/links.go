package proc

import (
	"fmt"
	"os"
)

// pipeLink is one kernel pipe connecting two adjacent stages: the upstream
// stage holds the write end as stdout, the downstream stage holds the read
// end as stdin.
type pipeLink struct {
	r *os.File
	w *os.File
}

// newPipeSet allocates n pipes, all or nothing. On failure every pipe
// created so far is closed and the pipeline is abandoned; the session
// itself keeps running.
func newPipeSet(n int) ([]pipeLink, error) {
	links := make([]pipeLink, 0, n)
	for i := 0; i < n; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			closeLinks(links)
			return nil, fmt.Errorf("creating pipe %d: %w", i, err)
		}
		links = append(links, pipeLink{r: r, w: w})
	}
	return links, nil
}

// closeLinks releases the parent's copy of every link descriptor. Children
// hold their own duplicates; a reader observes EOF only once every copy of
// the write end is closed, so this must run before reaping.
func closeLinks(links []pipeLink) {
	for _, l := range links {
		l.r.Close()
		l.w.Close()
	}
}
