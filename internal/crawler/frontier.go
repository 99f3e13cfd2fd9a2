package crawler

// Frontier is the FIFO queue of discovered-but-unprocessed URLs plus the
// visited set of URLs that reached a terminal outcome. It is owned exclusively
// by the engine's single control loop, so no locking is needed.
type Frontier struct {
	queue   []FrontierEntry
	visited map[string]struct{}
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{visited: make(map[string]struct{})}
}

// Push appends an entry to the tail of the queue.
func (f *Frontier) Push(url string, depth int) {
	f.queue = append(f.queue, FrontierEntry{URL: url, Depth: depth})
}

// Pop removes and returns the head of the queue.
func (f *Frontier) Pop() (FrontierEntry, bool) {
	if len(f.queue) == 0 {
		return FrontierEntry{}, false
	}
	e := f.queue[0]
	f.queue = f.queue[1:]
	return e, true
}

// Len returns the number of queued entries.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// MarkVisited records a terminal outcome for url. Entries are never removed.
func (f *Frontier) MarkVisited(url string) {
	f.visited[url] = struct{}{}
}

// Visited reports whether url already reached a terminal outcome.
func (f *Frontier) Visited(url string) bool {
	_, ok := f.visited[url]
	return ok
}

// VisitedCount returns the size of the visited set.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}
