package discovery

import (
	"context"
	"slices"
	"time"
)

// Watcher tracks which addresses are alive from their announcements. An
// address holds a lease that every announcement renews.
type Watcher struct {
	lease time.Duration
	seen  map[string]time.Time
}

const defaultLease = 5 * time.Second

func NewWatcher(lease time.Duration) *Watcher {
	if lease <= 0 {
		lease = defaultLease
	}
	return &Watcher{lease: lease, seen: make(map[string]time.Time)}
}

// Observe renews the lease of addr and reports whether addr is new.
func (w *Watcher) Observe(addr string, at time.Time) bool {
	_, known := w.seen[addr]
	w.seen[addr] = at
	return !known
}

// Expire forgets and returns, sorted, the addresses whose lease ran out at now.
func (w *Watcher) Expire(now time.Time) []string {
	var gone []string
	for addr, last := range w.seen {
		if now.Sub(last) > w.lease {
			gone = append(gone, addr)
			delete(w.seen, addr)
		}
	}
	slices.Sort(gone)
	return gone
}

// Run feeds entries into w and calls join and leave on membership changes
// until ctx is done or entries is closed.
func (w *Watcher) Run(ctx context.Context, entries <-chan Entry, join, leave func(addr string)) error {
	ticker := time.NewTicker(w.lease / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-entries:
			if !ok {
				return nil
			}
			if addr := string(e.Info); w.Observe(addr, e.Time) {
				join(addr)
			}
		case now := <-ticker.C:
			for _, addr := range w.Expire(now) {
				leave(addr)
			}
		}
	}
}
