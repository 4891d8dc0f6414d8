package session

import (
	"bytes"
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ricardo-zabir/udp-peer2peer/internal/peerlink/constants"
	"github.com/ricardo-zabir/udp-peer2peer/internal/utils"
)

var (
	base = time.Unix(1_700_000_000, 0)
	src  = netip.MustParseAddrPort("192.168.1.5:50000")
)

func TestStoreOpenPutTake(t *testing.T) {
	st := NewStore(8, time.Minute)
	st.Open("42", "notes.txt", 5, src, base)

	if !st.PutChunk("42", 1, []byte("lo"), base) {
		t.Fatal("PutChunk on open session returned false")
	}
	if !st.PutChunk("42", 0, []byte("hel"), base) {
		t.Fatal("PutChunk on open session returned false")
	}
	if st.PutChunk("99", 0, []byte("x"), base) {
		t.Error("PutChunk on unknown session returned true")
	}

	sess, ok := st.Take("42")
	if !ok {
		t.Fatal("expected to take session 42")
	}
	if got := sess.Assemble(); string(got) != "hello" {
		t.Errorf("Assemble() = %q; want 'hello'", got)
	}

	if _, ok := st.Take("42"); ok {
		t.Error("session 42 should be gone after Take")
	}
	if st.PutChunk("42", 2, []byte("!"), base) {
		t.Error("PutChunk after Take returned true")
	}
}

func TestAssembleSkipsGaps(t *testing.T) {
	st := NewStore(8, time.Minute)
	st.Open("1", "f", 6, src, base)
	st.PutChunk("1", 2, []byte("cc"), base)
	st.PutChunk("1", 0, []byte("aa"), base)

	sess, _ := st.Take("1")
	if got := sess.Assemble(); string(got) != "aacc" {
		t.Errorf("Assemble() = %q; want 'aacc'", got)
	}
}

func TestDuplicateChunkLastWriteWins(t *testing.T) {
	st := NewStore(8, time.Minute)
	st.Open("1", "f", 4, src, base)
	st.PutChunk("1", 0, []byte("ab"), base)
	st.PutChunk("1", 1, []byte("cd"), base)
	st.PutChunk("1", 1, []byte("cd"), base)

	snap := st.Snapshot()
	if snap[0].Bytes != 4 || snap[0].Chunks != 2 {
		t.Errorf("snapshot = %+v; want 2 chunks / 4 bytes", snap[0])
	}

	st.PutChunk("1", 1, []byte("XY"), base)
	sess, _ := st.Take("1")
	if got := sess.Assemble(); string(got) != "abXY" {
		t.Errorf("Assemble() = %q; want 'abXY'", got)
	}
}

func TestOpenReplacesSession(t *testing.T) {
	st := NewStore(8, time.Minute)
	st.Open("1", "first.txt", 3, src, base)
	st.PutChunk("1", 0, []byte("old"), base)

	other := netip.MustParseAddrPort("192.168.1.9:50000")
	st.Open("1", "second.txt", 3, other, base)

	if st.Len() != 1 {
		t.Errorf("Len() = %d; want 1", st.Len())
	}

	sess, _ := st.Take("1")
	if sess.Filename != "second.txt" || sess.Source != other {
		t.Errorf("session = %s from %v; want second.txt from %v", sess.Filename, sess.Source, other)
	}
	if len(sess.Assemble()) != 0 {
		t.Error("replaced session kept old chunks")
	}
}

func TestStoreEvictIdle(t *testing.T) {
	st := NewStore(8, time.Minute)
	st.Open("stale", "a", 1, src, base)
	st.Open("busy", "b", 1, src, base)
	st.PutChunk("busy", 0, []byte("x"), base.Add(50*time.Second))

	evicted := st.Evict(base.Add(90 * time.Second))
	if len(evicted) != 1 || evicted[0] != "stale" {
		t.Errorf("evicted = %v; want [stale]", evicted)
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d; want 1", st.Len())
	}

	if got := NewStore(8, 0).Evict(base.Add(time.Hour)); got != nil {
		t.Errorf("Evict with no timeout = %v; want nil", got)
	}
}

func TestStoreCapacityEvictsLeastRecent(t *testing.T) {
	st := NewStore(2, time.Minute)
	st.Open("1", "a", 1, src, base)
	st.Open("2", "b", 1, src, base)

	// touch 1 so 2 becomes the oldest
	st.PutChunk("1", 0, []byte("x"), base)

	evicted := st.Open("3", "c", 1, src, base)
	if evicted != "2" {
		t.Errorf("Open evicted %q; want '2'", evicted)
	}
	if _, ok := st.Take("2"); ok {
		t.Error("session 2 should have been evicted")
	}
	for _, id := range []string{"1", "3"} {
		if _, ok := st.Take(id); !ok {
			t.Errorf("expected session %s to remain", id)
		}
	}
}

func TestFinalize(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(8, time.Minute)
	st.Open("42", "notes.txt", 5, src, base)
	st.PutChunk("42", 0, []byte("hello"), base)
	sess, _ := st.Take("42")

	path, err := sess.Finalize(dir, utils.SHA256ofBytes([]byte("hello")))
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if path != filepath.Join(dir, "received_notes.txt") {
		t.Errorf("path = %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !bytes.Equal(data, []byte("hello")) {
		t.Errorf("artifact = %q; want 'hello'", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir holds %d entries; want only the artifact", len(entries))
	}
}

func TestFinalizeHashMismatch(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(8, time.Minute)
	st.Open("42", "notes.txt", 5, src, base)
	st.PutChunk("42", 0, []byte("hello"), base)
	sess, _ := st.Take("42")

	_, err := sess.Finalize(dir, "deadbeef")
	if !errors.Is(err, constants.ErrHashMismatch) {
		t.Errorf("Finalize error = %v; want ErrHashMismatch", err)
	}
}

func TestFinalizeStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	st := NewStore(8, time.Minute)
	st.Open("7", "../../etc/passwd", 1, src, base)
	st.PutChunk("7", 0, []byte("x"), base)
	sess, _ := st.Take("7")

	path, err := sess.Finalize(dir, utils.SHA256ofBytes([]byte("x")))
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("artifact written to %q; want inside %q", path, dir)
	}
	if filepath.Base(path) != "received_passwd" {
		t.Errorf("artifact name = %q; want received_passwd", filepath.Base(path))
	}
}

func TestFinalizeOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "received_a.txt"), []byte("stale content"), 0o644); err != nil {
		t.Fatal(err)
	}

	st := NewStore(8, time.Minute)
	st.Open("1", "a.txt", 3, src, base)
	st.PutChunk("1", 0, []byte("new"), base)
	sess, _ := st.Take("1")

	path, err := sess.Finalize(dir, utils.SHA256ofBytes([]byte("new")))
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("artifact = %q; want 'new'", data)
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	st := NewStore(4, time.Minute)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			id := strconv.Itoa(w)
			for i := 0; i < 100; i++ {
				st.Open(id, "f", 1, src, base)
				st.PutChunk(id, i, []byte("x"), base)
				st.Snapshot()
				st.Evict(base)
				st.Take(id)
			}
		}(w)
	}
	wg.Wait()

	if st.Len() > 4 {
		t.Errorf("Len() = %d; want at most the capacity", st.Len())
	}
}
