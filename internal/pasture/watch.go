package pasture

import "sync"

// Watcher receives roster snapshots as they are published.
// Only the newest snapshot is kept; a slow reader skips intermediate ones.
type Watcher struct {
	updates  chan *Roster
	done     chan struct{}
	doneOnce sync.Once
}

func newWatcher() *Watcher {
	return &Watcher{
		updates: make(chan *Roster, 1),
		done:    make(chan struct{}),
	}
}

// Updates returns the channel of published snapshots.
func (w *Watcher) Updates() <-chan *Roster {
	return w.updates
}

// Done returns a channel that closes when the watcher is stopped.
func (w *Watcher) Done() <-chan struct{} {
	return w.done
}

// send delivers r without blocking, replacing an unread snapshot.
func (w *Watcher) send(r *Roster) {
	select {
	case <-w.done:
		return
	default:
	}

	select {
	case w.updates <- r:
	default:
		// Drop the stale snapshot and retry once.
		select {
		case <-w.updates:
		default:
		}
		select {
		case w.updates <- r:
		default:
		}
	}
}

func (w *Watcher) close() {
	w.doneOnce.Do(func() {
		close(w.done)
	})
}

// watchers is the set of live watchers of one pasture.
type watchers struct {
	mu  sync.Mutex
	set map[*Watcher]struct{}
}

func (ws *watchers) add() *Watcher {
	w := newWatcher()
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.set == nil {
		ws.set = make(map[*Watcher]struct{})
	}
	ws.set[w] = struct{}{}
	return w
}

func (ws *watchers) remove(w *Watcher) {
	ws.mu.Lock()
	delete(ws.set, w)
	ws.mu.Unlock()
	w.close()
}

func (ws *watchers) broadcast(r *Roster) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for w := range ws.set {
		w.send(r)
	}
}

func (ws *watchers) count() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.set)
}
