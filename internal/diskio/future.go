package diskio

import "sync"

// Future is a one-shot completion promise for a scheduled disk request.
// It resolves exactly once, with either nil (success) or the error the
// gateway returned.
type Future struct {
	once sync.Once
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Wait blocks until the request has been executed and returns its result.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}
