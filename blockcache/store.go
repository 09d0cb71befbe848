package blockcache

// entryStore keeps cached IDs in insertion order.
type entryStore interface {
	contains(id BlockID) bool

	// push inserts id as the most recent entry. When the store is full the
	// oldest entry makes room and is returned.
	push(id BlockID) (evicted BlockID, ok bool)

	len() int
	list() []BlockID
}

// ring is a fixed-size circular buffer. It grows by appending until it
// reaches its capacity; from then on every push overwrites the oldest slot.
type ring struct {
	slots    []BlockID
	capacity int
	oldest   int
}

func newRing(capacity int) ring {
	initial := capacity
	if initial > 64 {
		initial = 64
	}

	return ring{
		slots:    make([]BlockID, 0, initial),
		capacity: capacity,
	}
}

func (r *ring) len() int {
	return len(r.slots)
}

// at returns the i-th entry counting from the most recent one.
func (r *ring) at(i int) BlockID {
	n := len(r.slots)
	return r.slots[(r.oldest+n-1-i)%n]
}

func (r *ring) push(id BlockID) (BlockID, bool) {
	if len(r.slots) < r.capacity {
		r.slots = append(r.slots, id)
		return 0, false
	}

	evicted := r.slots[r.oldest]
	r.slots[r.oldest] = id
	r.oldest = (r.oldest + 1) % r.capacity

	return evicted, true
}

func (r *ring) list() []BlockID {
	ids := make([]BlockID, len(r.slots))
	for i := range ids {
		ids[i] = r.at(i)
	}

	return ids
}

// scanStore answers membership by walking the ring from the most recent
// entry. This is the default for the small capacities blocks caches use.
type scanStore struct {
	ring
}

func newScanStore(capacity int) *scanStore {
	return &scanStore{ring: newRing(capacity)}
}

func (s *scanStore) contains(id BlockID) bool {
	for i := 0; i < s.ring.len(); i++ {
		if s.at(i) == id {
			return true
		}
	}

	return false
}

// indexedStore pairs the ring with a presence index.
type indexedStore struct {
	ring
	index map[BlockID]struct{}
}

func newIndexedStore(capacity int) *indexedStore {
	return &indexedStore{
		ring:  newRing(capacity),
		index: make(map[BlockID]struct{}),
	}
}

func (s *indexedStore) contains(id BlockID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *indexedStore) push(id BlockID) (BlockID, bool) {
	evicted, ok := s.ring.push(id)
	if ok {
		delete(s.index, evicted)
	}

	s.index[id] = struct{}{}

	return evicted, ok
}
