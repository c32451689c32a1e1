package dict

import (
	"io"
	"strings"
	"unsafe"
)

// HashFunc 对同一个 key 必须始终返回相同的值
type HashFunc func(key string) uint32

// Processor 返回 false 时停止遍历
type Processor func(e *Entry) bool

// Map 是字符串到整数的映射容器。
// Get 返回的值指针和迭代器返回的 Entry 在下一次结构性修改（插入新 key、Clear、扩容）
// 或 Free 之前有效，之后再使用属于调用方违约。
type Map interface {
	Size() int
	Put(key string, value int) error
	Get(key string) (value *int, ok bool)
	Clear()
	Free()
	Iterator() (EntryIterator, error)
	Status() Status
	Stats() Stats
	FprintStats(w io.Writer) (int, error)
}

// EntryIterator 遍历所有 Entry，顺序不确定。
// 创建之后容器若被直接修改，Next 会把容器状态置为 CONCURRENT_MODIFICATION 并返回 nil。
// 通过 Entry 或值指针修改 value 不算直接修改。
type EntryIterator interface {
	Next() *Entry
	// Err 在迭代因并发修改而中止时返回非 nil
	Err() error
	Free()
}

type Entry struct {
	key   string
	value int
	hash  uint32
	next  *Entry
}

const entrySize = int(unsafe.Sizeof(Entry{}))

func newEntry(key string, value int, hash uint32) *Entry {
	return &Entry{
		key:   strings.Clone(key),
		value: value,
		hash:  hash,
	}
}

func (e *Entry) Key() string {
	return e.key
}

func (e *Entry) Value() int {
	return e.value
}

func (e *Entry) SetValue(value int) {
	e.value = value
}

// keySize 是 key 副本占用的字节数
func keySize(key string) int {
	return len(key)
}

// ForEach 用一个新的迭代器遍历 m，遍历结束后释放迭代器
func ForEach(m Map, p Processor) error {
	it, err := m.Iterator()
	if err != nil {
		return err
	}
	defer it.Free()
	for e := it.Next(); e != nil; e = it.Next() {
		if !p(e) {
			return nil
		}
	}
	return it.Err()
}

// Keys 返回所有 key，顺序不确定
func Keys(m Map) ([]string, error) {
	res := make([]string, 0, m.Size())
	err := ForEach(m, func(e *Entry) bool {
		res = append(res, e.key)
		return true
	})
	return res, err
}

func IsOK(m Map) bool {
	return m.Status().IsOK()
}

// LogOnError 在容器之前的使用中出现过错误时记录日志并返回 true
func LogOnError(m Map) bool {
	return m.Status().LogIfError("map")
}

// LogAndFreeOnError 在出错时记录日志、释放容器并返回 true
func LogAndFreeOnError(m Map) bool {
	hasError := LogOnError(m)
	if hasError {
		m.Free()
	}
	return hasError
}
