package frontier

// Frontier is the FIFO queue of targets waiting to be crawled.
// A target is queued at most once over the frontier's lifetime.
type Frontier struct {
	MaxLinks int
	queue    []string
	seen     map[string]struct{}
}

// New returns a frontier bounded by maxLinks. Seeds are queued regardless of the bound.
func New(maxLinks int, seeds ...string) *Frontier {
	f := &Frontier{
		MaxLinks: maxLinks,
		seen:     make(map[string]struct{}),
	}
	for _, s := range seeds {
		if _, ok := f.seen[s]; ok {
			continue
		}
		f.seen[s] = struct{}{}
		f.queue = append(f.queue, s)
	}
	return f
}

// AddLinks queues the given targets and returns how many were actually added.
// Once the queue holds MaxLinks targets further additions are dropped.
func (f *Frontier) AddLinks(links ...string) int {
	added := 0
	for _, l := range links {
		if len(f.queue) >= f.MaxLinks {
			break
		}
		if _, ok := f.seen[l]; ok {
			continue
		}
		f.seen[l] = struct{}{}
		f.queue = append(f.queue, l)
		added++
	}
	return added
}

func (f *Frontier) Dequeue() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	head := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return head, true
}

func (f *Frontier) Len() int {
	return len(f.queue)
}

// Pending returns a copy of the queued targets in processing order.
func (f *Frontier) Pending() []string {
	out := make([]string, len(f.queue))
	copy(out, f.queue)
	return out
}

// Seen reports whether the target was ever queued.
func (f *Frontier) Seen(link string) bool {
	_, ok := f.seen[link]
	return ok
}
