package pathfind

import "container/heap"

// frontierEntry is a snapshot of a record at the time it was pushed. The
// entry is stale once the record has since been improved.
type frontierEntry[N comparable] struct {
	record *Record[N]
	g      float64
	f      float64
	seq    uint64
}

func (e frontierEntry[N]) stale() bool { return e.g != e.record.G }

// entryHeap orders entries by ascending f, FIFO among equal f.
type entryHeap[N comparable] []frontierEntry[N]

func (h entryHeap[N]) Len() int { return len(h) }

func (h entryHeap[N]) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap[N]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap[N]) Push(x any) { *h = append(*h, x.(frontierEntry[N])) }

func (h *entryHeap[N]) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = frontierEntry[N]{}
	*h = old[:n-1]
	return entry
}

// frontier is the open set. Improved records are re-inserted rather than
// updated in place; stale entries are dropped when popped.
type frontier[N comparable] struct {
	entries entryHeap[N]
	seq     uint64
}

func (f *frontier[N]) push(rec *Record[N]) {
	heap.Push(&f.entries, frontierEntry[N]{record: rec, g: rec.G, f: rec.F, seq: f.seq})
	f.seq++
}

// pop returns the live record with the smallest f, skipping stale entries.
func (f *frontier[N]) pop() (*Record[N], bool) {
	for f.entries.Len() > 0 {
		entry := heap.Pop(&f.entries).(frontierEntry[N])
		if entry.stale() {
			continue
		}
		return entry.record, true
	}
	return nil, false
}

func (f *frontier[N]) len() int { return f.entries.Len() }
