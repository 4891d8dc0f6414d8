package session

import (
	"container/list"
	"net/netip"
	"sync"
	"time"

	"github.com/ricardo-zabir/udp-peer2peer/internal/models"
)

// Store holds in-flight inbound sessions keyed by transfer id only.
// It is bounded: sessions idle for longer than idleTimeout are dropped by
// Evict and, past capacity, the least recently touched session goes.
type Store struct {
	capacity    int
	idleTimeout time.Duration
	mu          sync.Mutex
	sessions    map[string]*list.Element
	lru         *list.List
}

func NewStore(capacity int, idleTimeout time.Duration) *Store {
	return &Store{
		capacity:    capacity,
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*list.Element),
		lru:         list.New(),
	}
}

// Open creates a session, replacing any session with the same id.
// It returns the id of a session pushed out by the capacity limit, if any.
func (st *Store) Open(id, filename string, size int64, src netip.AddrPort, now time.Time) string {
	st.mu.Lock()
	defer st.mu.Unlock()

	sess := newSession(id, filename, size, src, now)

	if elem, exists := st.sessions[id]; exists {
		elem.Value = sess
		st.lru.MoveToFront(elem)
		return ""
	}

	st.sessions[id] = st.lru.PushFront(sess)

	if st.capacity > 0 && st.lru.Len() > st.capacity {
		oldest := st.lru.Back()
		if oldest != nil {
			st.lru.Remove(oldest)
			evicted := oldest.Value.(*Session).ID
			delete(st.sessions, evicted)
			return evicted
		}
	}

	return ""
}

// PutChunk stores data at seq, overwriting a previous chunk with the same
// seq. It reports false when no session with id exists.
func (st *Store) PutChunk(id string, seq int, data []byte, now time.Time) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	elem, exists := st.sessions[id]
	if !exists {
		return false
	}

	elem.Value.(*Session).put(seq, data, now)
	st.lru.MoveToFront(elem)
	return true
}

// Take removes the session and hands it to the caller.
func (st *Store) Take(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	elem, exists := st.sessions[id]
	if !exists {
		return nil, false
	}

	st.lru.Remove(elem)
	delete(st.sessions, id)
	return elem.Value.(*Session), true
}

// Evict drops sessions idle for longer than the idle timeout.
func (st *Store) Evict(now time.Time) []string {
	if st.idleTimeout <= 0 {
		return nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	var evicted []string
	// back of the list is least recently touched
	for elem := st.lru.Back(); elem != nil; {
		sess := elem.Value.(*Session)
		if now.Sub(sess.lastActivity) <= st.idleTimeout {
			break
		}

		prev := elem.Prev()
		st.lru.Remove(elem)
		delete(st.sessions, sess.ID)
		evicted = append(evicted, sess.ID)
		elem = prev
	}

	return evicted
}

// Snapshot lists the sessions, most recently touched first.
func (st *Store) Snapshot() []models.SessionInfo {
	st.mu.Lock()
	defer st.mu.Unlock()

	result := make([]models.SessionInfo, 0, st.lru.Len())
	for elem := st.lru.Front(); elem != nil; elem = elem.Next() {
		result = append(result, elem.Value.(*Session).info())
	}
	return result
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.lru.Len()
}
