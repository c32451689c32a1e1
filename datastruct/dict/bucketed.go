package dict

import (
	"io"

	"github.com/llxisdsh/pb"
)

// BucketedHashMap 的底层表把多个 Entry 放在同一个缓存行大小的桶里，只能在单个 goroutine 中使用
type BucketedHashMap struct {
	data     *pb.MapOf[string, *Entry]
	hashFunc HashFunc
	status   Status
	hint     int
	modCount uint64
	freed    bool
	config   *Config
	cursors  *cursorPool
}

func NewBucketedHashMap(hint int, hashFunc HashFunc, opts ...Option) (*BucketedHashMap, error) {
	hint = computeShardCount(hint)
	c := newConfig(opts)
	if err := c.allocator.Alloc(hint * mapSlotSize); err != nil {
		return nil, &StatusError{Status: Status{StatusOutOfMemory, "hash map"}, Cause: err}
	}
	return &BucketedHashMap{
		data:     pb.NewMapOf[string, *Entry](pb.WithPresize(hint)),
		hashFunc: defaultHashFunc(hashFunc),
		hint:     hint,
		config:   c,
		cursors:  newCursorPool(c, snapshotIteratorSize, newSnapshotCursor),
	}, nil
}

// computeShardCount 计算不小于 n 的 2 的整数次幂，最小为 16
func computeShardCount(n int) int {
	if n <= 16 {
		return 16
	}
	return tableSizeFor(n, maxCapacity)
}

func (m *BucketedHashMap) mustBeLive() {
	if m == nil {
		panic("Nil BucketedHashMap")
	}
	if m.freed {
		panic("BucketedHashMap has been freed")
	}
}

func (m *BucketedHashMap) fail(kind StatusKind, context string, cause error) error {
	m.status = Status{Kind: kind, Context: context}
	return &StatusError{Status: m.status, Cause: cause}
}

func (m *BucketedHashMap) Size() int {
	m.mustBeLive()
	return m.data.Size()
}

func (m *BucketedHashMap) Put(key string, value int) error {
	m.mustBeLive()
	if m.config.policy == ModCountEveryPut {
		m.modCount++
	}
	if e, ok := m.data.Load(key); ok {
		e.value = value
		return nil
	}
	allocator := m.config.allocator
	if err := allocator.Alloc(keySize(key)); err != nil {
		return m.fail(StatusOutOfMemory, "key copy", err)
	}
	if err := allocator.Alloc(entrySize); err != nil {
		allocator.Free(keySize(key))
		return m.fail(StatusOutOfMemory, "entry", err)
	}
	e := newEntry(key, value, m.hashFunc(key))
	m.data.Store(e.key, e)
	if m.config.policy == ModCountStructural {
		m.modCount++
	}
	return nil
}

func (m *BucketedHashMap) Get(key string) (*int, bool) {
	m.mustBeLive()
	e, ok := m.data.Load(key)
	if !ok {
		return nil, false
	}
	return &e.value, true
}

func (m *BucketedHashMap) Clear() {
	m.mustBeLive()
	m.modCount++
	m.data.Range(func(_ string, e *Entry) bool {
		m.config.allocator.Free(keySize(e.key))
		m.config.allocator.Free(entrySize)
		return true
	})
	m.data.Clear()
}

func (m *BucketedHashMap) Free() {
	if m == nil || m.freed {
		return
	}
	m.Clear()
	m.config.allocator.Free(m.hint * mapSlotSize)
	m.freed = true
	m.cursors.close()
}

func (m *BucketedHashMap) Status() Status {
	return m.status
}

// Stats 中 Capacity 和 ChainCount 取自底层表的桶统计，一个桶可以容纳多个 Entry
func (m *BucketedHashMap) Stats() Stats {
	m.mustBeLive()
	s := m.data.Stats()
	chains := s.TotalBuckets - s.EmptyBuckets
	return Stats{
		Capacity:           s.Capacity,
		Threshold:          -1,
		Size:               s.Size,
		ChainCount:         chains,
		AverageChainLength: averageChainLength(s.Size, chains),
		ModCount:           m.modCount,
	}
}

func (m *BucketedHashMap) FprintStats(w io.Writer) (int, error) {
	n, err := fprintStats(w, "BucketedHashMap", m.Stats())
	if err != nil {
		return n, m.fail(StatusPrintError, "stats", err)
	}
	return n, nil
}

func (m *BucketedHashMap) Iterator() (EntryIterator, error) {
	m.mustBeLive()
	entries := make([]*Entry, 0, m.data.Size())
	m.data.Range(func(_ string, e *Entry) bool {
		entries = append(entries, e)
		return true
	})
	it, err := borrowSnapshot(m, m.modCount, entries)
	if err != nil {
		return nil, m.fail(StatusOutOfMemory, "entry iterator", err)
	}
	return it, nil
}

func (m *BucketedHashMap) currentModCount() uint64 {
	return m.modCount
}

func (m *BucketedHashMap) markConcurrentModification() {
	m.status = Status{StatusConcurrentModification, "entry iterator"}
}

func (m *BucketedHashMap) cursorPool() *cursorPool {
	return m.cursors
}
