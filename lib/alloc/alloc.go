// Package alloc 为容器提供可计量的内存分配器。
// Go 的 make/new 不会返回失败，容器把每次逻辑上的分配都先向 Allocator 申请额度，
// 这样内存不足的路径才是真实可达、可测试的。
package alloc

import (
	"errors"
	"fmt"
)

var ErrExhausted = errors.New("allocation budget exhausted")

type Allocator interface {
	// Alloc 申请 size 字节的额度，额度不足时返回 ErrExhausted 且不占用任何额度
	Alloc(size int) error
	// Free 归还之前申请过的额度
	Free(size int)
}

type unlimited struct{}

func (unlimited) Alloc(int) error { return nil }

func (unlimited) Free(int) {}

// Unlimited 返回一个永远不会失败的分配器
func Unlimited() Allocator {
	return unlimited{}
}

// Budget 是有上限的分配器，不是线程安全的
type Budget struct {
	limit int
	used  int
	peak  int
}

func NewBudget(limit int) *Budget {
	if limit < 0 {
		limit = 0
	}
	return &Budget{limit: limit}
}

func (b *Budget) Alloc(size int) error {
	if size < 0 {
		panic("negative allocation size")
	}
	if size > b.limit-b.used {
		return fmt.Errorf("%w: want %d, %d of %d in use", ErrExhausted, size, b.used, b.limit)
	}
	b.used += size
	if b.used > b.peak {
		b.peak = b.used
	}
	return nil
}

func (b *Budget) Free(size int) {
	b.used -= size
	if b.used < 0 {
		panic("allocation budget freed more than allocated")
	}
}

func (b *Budget) Used() int {
	return b.used
}

func (b *Budget) Peak() int {
	return b.peak
}

func (b *Budget) Limit() int {
	return b.limit
}
