package crawler

// crawlState is owned by one Crawl call and only touched by its goroutine.
type crawlState struct {
	visited map[string]struct{}
	queue   []FrontierEntry
	fetched int
	pages   []Page
}

func newCrawlState(start string) *crawlState {
	s := &crawlState{visited: make(map[string]struct{})}
	s.enqueue(FrontierEntry{URL: start, Depth: 0})
	return s
}

// enqueue marks the URL visited and appends it. It returns false for a URL
// already seen.
func (s *crawlState) enqueue(entry FrontierEntry) bool {
	if entry.URL == "" {
		return false
	}
	if _, seen := s.visited[entry.URL]; seen {
		return false
	}
	s.visited[entry.URL] = struct{}{}
	s.queue = append(s.queue, entry)
	return true
}

// dequeue pops up to n entries in discovery order.
func (s *crawlState) dequeue(n int) []FrontierEntry {
	if n > len(s.queue) {
		n = len(s.queue)
	}
	if n <= 0 {
		return nil
	}
	batch := append([]FrontierEntry(nil), s.queue[:n]...)
	s.queue = s.queue[n:]
	return batch
}

func (s *crawlState) pending() int {
	return len(s.queue)
}

func (s *crawlState) record(page Page) {
	s.pages = append(s.pages, page)
	s.fetched++
}
