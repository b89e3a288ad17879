package crawlerimpl

// DedupTracker is the union of ids already persisted at run start and ids
// emitted during this run. It is rebuilt from a single store snapshot per run
// and is owned by the run's single in-flight scrape, so it needs no locking.
type DedupTracker struct {
	seen map[string]struct{}
}

func NewDedupTracker(snapshot []string) *DedupTracker {
	seen := make(map[string]struct{}, len(snapshot))
	for _, id := range snapshot {
		seen[id] = struct{}{}
	}
	return &DedupTracker{seen: seen}
}

func (t *DedupTracker) Contains(id string) bool {
	_, ok := t.seen[id]
	return ok
}

func (t *DedupTracker) Add(id string) {
	t.seen[id] = struct{}{}
}

func (t *DedupTracker) Size() int {
	return len(t.seen)
}
