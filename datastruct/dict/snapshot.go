package dict

import "unsafe"

// snapshotOwner 是使用快照迭代器的容器
type snapshotOwner interface {
	currentModCount() uint64
	markConcurrentModification()
	cursorPool() *cursorPool
}

// snapshotIterator 遍历创建时的 Entry 快照，容器在此之后发生结构性修改就会快速失败
type snapshotIterator struct {
	owner            snapshotOwner
	entries          []*Entry
	pos              int
	expectedModCount uint64
	invalidated      bool
	freed            bool
}

const snapshotIteratorSize = int(unsafe.Sizeof(snapshotIterator{}))

func newSnapshotCursor() any {
	return &snapshotIterator{}
}

func borrowSnapshot(owner snapshotOwner, modCount uint64, entries []*Entry) (*snapshotIterator, error) {
	obj, err := owner.cursorPool().borrow()
	if err != nil {
		return nil, err
	}
	it := obj.(*snapshotIterator)
	it.owner = owner
	it.entries = entries
	it.pos = 0
	it.expectedModCount = modCount
	it.invalidated = false
	it.freed = false
	return it, nil
}

func (it *snapshotIterator) Next() *Entry {
	if it.owner.currentModCount() != it.expectedModCount {
		it.invalidated = true
		it.owner.markConcurrentModification()
		return nil
	}
	if it.pos >= len(it.entries) {
		return nil
	}
	e := it.entries[it.pos]
	it.pos++
	return e
}

func (it *snapshotIterator) Err() error {
	if it.invalidated {
		return &StatusError{Status: Status{StatusConcurrentModification, "entry iterator"}}
	}
	return nil
}

func (it *snapshotIterator) Free() {
	if it == nil || it.freed {
		return
	}
	it.freed = true
	it.entries = nil
	it.owner.cursorPool().giveBack(it)
}
