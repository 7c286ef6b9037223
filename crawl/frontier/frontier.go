// Package frontier implements the URL Frontier (C8): a depth-bounded,
// rate-limited FIFO queue of URLs to crawl, with seen/in-progress tracking.
// Grounded on codepr-webcrawler's CrawlingRules (mutex-guarded shared crawl
// state, delay-on-dequeue) and original_source's queue_manager.py.
package frontier

import (
	"math"
	"sync"
	"time"
)

// Entry is one URL admitted to the frontier.
type Entry struct {
	URL       string
	Depth     int
	ParentURL string
}

// Frontier is the URL Frontier (C8) described in spec §4.8: a FIFO queue,
// a seen set, an in-progress set, a depth map, and a mutex guarding all of
// it. Safe for concurrent use.
type Frontier struct {
	mu sync.Mutex

	queue      []Entry
	seen       map[string]struct{}
	inProgress map[string]struct{}
	depth      map[string]int

	maxDepth int
	maxPages int

	rateLimitDelay time.Duration
	lastRequest    time.Time
	lastDelay      time.Duration
}

// New creates a Frontier bounded to maxDepth and maxPages, with
// rateLimitDelay enforced between dequeues (0 disables rate limiting).
func New(maxDepth, maxPages int, rateLimitDelay time.Duration) *Frontier {
	return &Frontier{
		seen:           make(map[string]struct{}),
		inProgress:     make(map[string]struct{}),
		depth:          make(map[string]int),
		maxDepth:       maxDepth,
		maxPages:       maxPages,
		rateLimitDelay: rateLimitDelay,
	}
}

// Enqueue admits url at depth iff it hasn't been seen, depth <= maxDepth,
// and the seen set hasn't yet reached maxPages. Returns whether it was
// admitted.
func (f *Frontier) Enqueue(url string, depth int, parentURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.seen[url]; ok {
		return false
	}
	if depth > f.maxDepth {
		return false
	}
	if len(f.seen) >= f.maxPages {
		return false
	}

	f.seen[url] = struct{}{}
	f.depth[url] = depth
	f.queue = append(f.queue, Entry{URL: url, Depth: depth, ParentURL: parentURL})
	return true
}

// Dequeue pops the next URL, sleeping as needed to respect the larger of
// rateLimitDelay and the adaptive lastDelay (see UpdateLastDelay) relative
// to the last dequeue. Returns ok=false if the queue is empty.
func (f *Frontier) Dequeue() (Entry, bool) {
	f.mu.Lock()
	if len(f.queue) == 0 {
		f.mu.Unlock()
		return Entry{}, false
	}

	delay := f.rateLimitDelay
	if f.lastDelay > delay {
		delay = f.lastDelay
	}
	if delay > 0 {
		wait := delay - time.Since(f.lastRequest)
		if wait > 0 {
			f.mu.Unlock()
			time.Sleep(wait)
			f.mu.Lock()
			if len(f.queue) == 0 {
				f.mu.Unlock()
				return Entry{}, false
			}
		}
	}

	entry := f.queue[0]
	f.queue = f.queue[1:]
	f.inProgress[entry.URL] = struct{}{}
	f.lastRequest = time.Now()
	f.mu.Unlock()

	return entry, true
}

// DrainUpTo pops up to n entries at once — the crawler's batch-drain step.
// Each popped entry respects the same rate limiting as Dequeue.
func (f *Frontier) DrainUpTo(n int) []Entry {
	batch := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		entry, ok := f.Dequeue()
		if !ok {
			break
		}
		batch = append(batch, entry)
	}
	return batch
}

// Complete removes url from the in-progress set.
func (f *Frontier) Complete(url string) {
	f.mu.Lock()
	delete(f.inProgress, url)
	f.mu.Unlock()
}

// IsDone reports whether the queue and in-progress set are both empty.
func (f *Frontier) IsDone() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) == 0 && len(f.inProgress) == 0
}

// SeenCount returns the number of URLs ever admitted, whether or not they
// have been dequeued or produced a page yet.
func (f *Frontier) SeenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// UpdateLastDelay squares the last response time (in seconds) and stores it
// as the adaptive backoff Dequeue respects on the next pop — a slow server
// earns a longer gap before its next request, per codepr-webcrawler's
// CrawlingRules.UpdateLastDelay.
func (f *Frontier) UpdateLastDelay(responseTime time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDelay = time.Duration(math.Pow(responseTime.Seconds(), 2) * float64(time.Second))
}
