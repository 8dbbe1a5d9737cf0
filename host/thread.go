package host

import (
	"sync/atomic"
)

type goThread struct {
	done      chan struct{}
	gid       atomic.Int64
	destroyed atomic.Bool
}

func (t *goThread) Join() Status {
	if t.destroyed.Load() {
		return StatusInvalid
	}
	<-t.done
	return StatusOK
}

func (t *goThread) Done() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

func (t *goThread) Destroy() {
	t.destroyed.Store(true)
}
