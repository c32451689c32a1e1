package dict

import (
	"io"
	"unsafe"
)

// mapSlotSize 是内置 map 中每个槽位大致占用的字节数
const mapSlotSize = int(unsafe.Sizeof("")) + int(unsafe.Sizeof((*Entry)(nil)))

// SimpleHashMap 基于 Go 内置 map，只能在单个 goroutine 中使用
type SimpleHashMap struct {
	data     map[string]*Entry
	hashFunc HashFunc
	status   Status
	hint     int
	modCount uint64
	config   *Config
	cursors  *cursorPool
}

// NewSimpleHashMap 创建预留 hint 个槽位的 map，hashFunc 只用于填充 Entry 的哈希值
func NewSimpleHashMap(hint int, hashFunc HashFunc, opts ...Option) (*SimpleHashMap, error) {
	if hint < 0 {
		hint = 0
	}
	c := newConfig(opts)
	if err := c.allocator.Alloc(hint * mapSlotSize); err != nil {
		return nil, &StatusError{Status: Status{StatusOutOfMemory, "hash map"}, Cause: err}
	}
	return &SimpleHashMap{
		data:     make(map[string]*Entry, hint),
		hashFunc: defaultHashFunc(hashFunc),
		hint:     hint,
		config:   c,
		cursors:  newCursorPool(c, snapshotIteratorSize, newSnapshotCursor),
	}, nil
}

func (m *SimpleHashMap) mustBeLive() {
	if m == nil {
		panic("Nil SimpleHashMap")
	}
	if m.data == nil {
		panic("SimpleHashMap has been freed")
	}
}

func (m *SimpleHashMap) fail(kind StatusKind, context string, cause error) error {
	m.status = Status{Kind: kind, Context: context}
	return &StatusError{Status: m.status, Cause: cause}
}

func (m *SimpleHashMap) Size() int {
	m.mustBeLive()
	return len(m.data)
}

func (m *SimpleHashMap) Put(key string, value int) error {
	m.mustBeLive()
	if m.config.policy == ModCountEveryPut {
		m.modCount++
	}
	if e, exists := m.data[key]; exists {
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
	m.data[e.key] = e
	if m.config.policy == ModCountStructural {
		m.modCount++
	}
	return nil
}

func (m *SimpleHashMap) Get(key string) (*int, bool) {
	m.mustBeLive()
	e, ok := m.data[key]
	if !ok {
		return nil, false
	}
	return &e.value, true
}

func (m *SimpleHashMap) Clear() {
	m.mustBeLive()
	m.modCount++
	for _, e := range m.data {
		m.config.allocator.Free(keySize(e.key))
		m.config.allocator.Free(entrySize)
	}
	clear(m.data)
}

func (m *SimpleHashMap) Free() {
	if m == nil || m.data == nil {
		return
	}
	m.Clear()
	m.config.allocator.Free(m.hint * mapSlotSize)
	m.data = nil
	m.cursors.close()
}

func (m *SimpleHashMap) Status() Status {
	return m.status
}

// Stats 中 Capacity 为创建时预留的槽位数，内置 map 的链信息不可见，ChainCount 按 Size 计算
func (m *SimpleHashMap) Stats() Stats {
	m.mustBeLive()
	size := len(m.data)
	return Stats{
		Capacity:           m.hint,
		Threshold:          -1,
		Size:               size,
		ChainCount:         size,
		AverageChainLength: averageChainLength(size, size),
		ModCount:           m.modCount,
	}
}

func (m *SimpleHashMap) FprintStats(w io.Writer) (int, error) {
	n, err := fprintStats(w, "SimpleHashMap", m.Stats())
	if err != nil {
		return n, m.fail(StatusPrintError, "stats", err)
	}
	return n, nil
}

func (m *SimpleHashMap) Iterator() (EntryIterator, error) {
	m.mustBeLive()
	entries := make([]*Entry, 0, len(m.data))
	for _, e := range m.data {
		entries = append(entries, e)
	}
	it, err := borrowSnapshot(m, m.modCount, entries)
	if err != nil {
		return nil, m.fail(StatusOutOfMemory, "entry iterator", err)
	}
	return it, nil
}

func (m *SimpleHashMap) currentModCount() uint64 {
	return m.modCount
}

func (m *SimpleHashMap) markConcurrentModification() {
	m.status = Status{StatusConcurrentModification, "entry iterator"}
}

func (m *SimpleHashMap) cursorPool() *cursorPool {
	return m.cursors
}
