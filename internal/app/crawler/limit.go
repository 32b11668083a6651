package crawler

import "sync/atomic"

// PageLimit is a max-pages bound shared by a worker factory. Raising it
// affects workers built afterwards. Zero means unlimited and stays so.
type PageLimit struct {
	n int32
}

func NewPageLimit(n int) *PageLimit {
	return &PageLimit{n: int32(n)}
}

// Inc raises the bound by delta and returns the new value.
func (l *PageLimit) Inc(delta int32) int32 {
	for {
		cur := atomic.LoadInt32(&l.n)
		if cur == 0 {
			return 0
		}
		if atomic.CompareAndSwapInt32(&l.n, cur, cur+delta) {
			return cur + delta
		}
	}
}

func (l *PageLimit) Load() int {
	return int(atomic.LoadInt32(&l.n))
}
