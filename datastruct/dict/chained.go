package dict

import (
	"io"
	"math"
	"unsafe"
)

// maxCapacity 满足：对所有 x < maxCapacity，2x 不溢出 int，x 不溢出 uint32
const maxCapacity = 1 + min(math.MaxUint32, math.MaxInt/2)

const bucketSize = int(unsafe.Sizeof((*Entry)(nil)))

// ChainedHashMap 是拉链法哈希表，只能在单个 goroutine 中使用
type ChainedHashMap struct {
	buckets  []*Entry
	hashFunc HashFunc
	status   Status
	// capacity 一定是 2 的幂且不为 0
	capacity int
	// modCount 每次结构性修改都会增加，让过期的迭代器快速失败
	modCount uint64
	size     int
	// threshold 和 loadFactor 为负数表示禁止扩容
	threshold   float64
	loadFactor  float64
	maxCapacity int
	config      *Config
	cursors     *cursorPool
}

// NewChainedHashMap 创建容量不小于 capacity 的哈希表，loadFactor 为负数时不会扩容。
// hashFunc 为 nil 时使用多项式哈希。分配不到桶数组时返回 ErrOutOfMemory。
func NewChainedHashMap(capacity int, loadFactor float64, hashFunc HashFunc, opts ...Option) (*ChainedHashMap, error) {
	c := newConfig(opts)
	m := &ChainedHashMap{
		hashFunc:    defaultHashFunc(hashFunc),
		capacity:    tableSizeFor(capacity, maxCapacity),
		maxCapacity: maxCapacity,
		config:      c,
	}
	if err := c.allocator.Alloc(m.capacity * bucketSize); err != nil {
		return nil, &StatusError{Status: Status{StatusOutOfMemory, "hash map"}, Cause: err}
	}
	m.buckets = make([]*Entry, m.capacity)
	if loadFactor < 0 || math.IsNaN(loadFactor) {
		m.loadFactor = -1
	} else {
		m.loadFactor = loadFactor
	}
	m.updateThreshold()
	m.cursors = newCursorPool(c, int(unsafe.Sizeof(chainedIterator{})), func() any {
		return &chainedIterator{}
	})
	return m, nil
}

// tableSizeFor 计算不小于 n 的 2 的整数次幂，结果在 [1, limit] 之间
func tableSizeFor(n, limit int) int {
	if n <= 1 {
		return 1
	}
	if n >= limit {
		return limit
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	if n+1 > limit {
		return limit
	}
	return n + 1
}

func (m *ChainedHashMap) mustBeLive() {
	if m == nil {
		panic("Nil ChainedHashMap")
	}
	if m.buckets == nil {
		panic("ChainedHashMap has been freed")
	}
}

func (m *ChainedHashMap) fail(kind StatusKind, context string, cause error) error {
	m.status = Status{Kind: kind, Context: context}
	return &StatusError{Status: m.status, Cause: cause}
}

// slot 返回 key 所在链上指向匹配 Entry 的指针，找不到时指向链尾的 nil
func (m *ChainedHashMap) slot(key string, hash uint32) **Entry {
	p := &m.buckets[int(hash&uint32(m.capacity-1))]
	for *p != nil {
		if (*p).hash == hash && (*p).key == key {
			return p
		}
		p = &(*p).next
	}
	return p
}

func (m *ChainedHashMap) updateThreshold() {
	if m.capacity >= m.maxCapacity || m.loadFactor < 0 {
		m.threshold = -1
	} else {
		m.threshold = float64(m.capacity) * m.loadFactor
	}
}

// doubleCapacity 把每条旧链就地拆成高低两条子链，不重新计算哈希
func (m *ChainedHashMap) doubleCapacity() error {
	oldCapacity := m.capacity
	newCapacity := oldCapacity << 1
	if newCapacity > m.maxCapacity {
		m.threshold = -1
		return nil
	}
	if err := m.config.allocator.Alloc(newCapacity * bucketSize); err != nil {
		return m.fail(StatusOutOfMemory, "resized table", err)
	}
	newBuckets := make([]*Entry, newCapacity)
	highBit := uint32(oldCapacity)
	for i := 0; i < oldCapacity; i++ {
		var lowHead, lowTail, highHead, highTail *Entry
		for e := m.buckets[i]; e != nil; e = e.next {
			if e.hash&highBit != 0 {
				if highTail == nil {
					highHead = e
				} else {
					highTail.next = e
				}
				highTail = e
			} else {
				if lowTail == nil {
					lowHead = e
				} else {
					lowTail.next = e
				}
				lowTail = e
			}
		}
		if lowTail != nil {
			lowTail.next = nil
			newBuckets[i] = lowHead
		}
		if highTail != nil {
			highTail.next = nil
			newBuckets[i+oldCapacity] = highHead
		}
	}
	m.config.allocator.Free(oldCapacity * bucketSize)
	m.buckets = newBuckets
	m.capacity = newCapacity
	m.modCount++
	m.updateThreshold()
	return nil
}

func (m *ChainedHashMap) Size() int {
	m.mustBeLive()
	return m.size
}

func (m *ChainedHashMap) Capacity() int {
	m.mustBeLive()
	return m.capacity
}

// Put 使 key 映射到 value。
// 分配失败时状态被置为 OUT_OF_MEMORY 并返回错误，容器保持原样；
// 但扩容失败时新 key 已经插入，只是容量没有变化。
func (m *ChainedHashMap) Put(key string, value int) error {
	m.mustBeLive()
	if m.config.policy == ModCountEveryPut {
		m.modCount++
	}
	hash := m.hashFunc(key)
	p := m.slot(key, hash)
	if *p != nil {
		(*p).value = value
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
	*p = newEntry(key, value, hash)
	m.size++
	if m.config.policy == ModCountStructural {
		m.modCount++
	}
	if m.threshold >= 0 && float64(m.size) > m.threshold {
		return m.doubleCapacity()
	}
	return nil
}

// Get 返回指向 value 的指针，可以通过它直接修改 value
func (m *ChainedHashMap) Get(key string) (*int, bool) {
	m.mustBeLive()
	e := *m.slot(key, m.hashFunc(key))
	if e == nil {
		return nil, false
	}
	return &e.value, true
}

// Clear 删除所有映射，之前返回的 Entry 和值指针全部失效
func (m *ChainedHashMap) Clear() {
	m.mustBeLive()
	m.modCount++
	m.size = 0
	allocator := m.config.allocator
	for i, e := range m.buckets {
		if e == nil {
			continue
		}
		m.buckets[i] = nil
		for e != nil {
			next := e.next
			allocator.Free(keySize(e.key))
			allocator.Free(entrySize)
			e.next = nil
			e = next
		}
	}
}

// Free 释放容器持有的全部资源，对 nil 调用是安全的
func (m *ChainedHashMap) Free() {
	if m == nil || m.buckets == nil {
		return
	}
	m.Clear()
	m.config.allocator.Free(m.capacity * bucketSize)
	m.buckets = nil
	m.cursors.close()
}

func (m *ChainedHashMap) Status() Status {
	return m.status
}

func (m *ChainedHashMap) Stats() Stats {
	m.mustBeLive()
	chains := 0
	for _, e := range m.buckets {
		if e != nil {
			chains++
		}
	}
	return Stats{
		Capacity:           m.capacity,
		Threshold:          m.threshold,
		Size:               m.size,
		ChainCount:         chains,
		AverageChainLength: averageChainLength(m.size, chains),
		ModCount:           m.modCount,
	}
}

// FprintStats 写入统计信息，写入失败时状态被置为 PRINT_ERROR
func (m *ChainedHashMap) FprintStats(w io.Writer) (int, error) {
	n, err := fprintStats(w, "ChainedHashMap", m.Stats())
	if err != nil {
		return n, m.fail(StatusPrintError, "stats", err)
	}
	return n, nil
}

// Iterator 从游标池借一个游标，游标不够时状态被置为 OUT_OF_MEMORY
func (m *ChainedHashMap) Iterator() (EntryIterator, error) {
	m.mustBeLive()
	obj, err := m.cursors.borrow()
	if err != nil {
		return nil, m.fail(StatusOutOfMemory, "entry iterator", err)
	}
	it := obj.(*chainedIterator)
	it.m = m
	it.expectedModCount = m.modCount
	it.nextIndex = 0
	it.nextEntry = nil
	it.invalidated = false
	it.freed = false
	it.advance()
	return it, nil
}

type chainedIterator struct {
	m                *ChainedHashMap
	expectedModCount uint64
	nextIndex        int
	nextEntry        *Entry
	invalidated      bool
	freed            bool
}

// advance 移动到下一个非空桶
func (it *chainedIterator) advance() {
	for it.nextIndex < it.m.capacity {
		it.nextEntry = it.m.buckets[it.nextIndex]
		it.nextIndex++
		if it.nextEntry != nil {
			return
		}
	}
}

func (it *chainedIterator) Next() *Entry {
	if it.m.modCount != it.expectedModCount {
		it.invalidated = true
		_ = it.m.fail(StatusConcurrentModification, "entry iterator", nil)
		return nil
	}
	if it.nextEntry == nil {
		return nil
	}
	current := it.nextEntry
	if it.nextEntry = current.next; it.nextEntry == nil {
		it.advance()
	}
	return current
}

func (it *chainedIterator) Err() error {
	if it.invalidated {
		return &StatusError{Status: Status{StatusConcurrentModification, "entry iterator"}}
	}
	return nil
}

// Free 把游标还给池，重复调用没有效果
func (it *chainedIterator) Free() {
	if it == nil || it.freed {
		return
	}
	it.freed = true
	it.nextEntry = nil
	it.m.cursors.giveBack(it)
}
