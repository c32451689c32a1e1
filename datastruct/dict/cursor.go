package dict

import (
	"context"

	pool "github.com/jolestar/go-commons-pool/v2"

	"hashmap-learn/lib/alloc"
)

// cursorFactory 创建迭代器游标，每个游标都向分配器申请 size 字节
type cursorFactory struct {
	allocator alloc.Allocator
	size      int
	newCursor func() any
}

func (f *cursorFactory) MakeObject(_ context.Context) (*pool.PooledObject, error) {
	if err := f.allocator.Alloc(f.size); err != nil {
		return nil, err
	}
	return pool.NewPooledObject(f.newCursor()), nil
}

func (f *cursorFactory) DestroyObject(_ context.Context, _ *pool.PooledObject) error {
	f.allocator.Free(f.size)
	return nil
}

func (f *cursorFactory) ValidateObject(_ context.Context, _ *pool.PooledObject) bool {
	return true
}

func (f *cursorFactory) ActivateObject(_ context.Context, _ *pool.PooledObject) error {
	return nil
}

func (f *cursorFactory) PassivateObject(_ context.Context, _ *pool.PooledObject) error {
	return nil
}

// cursorPool 复用迭代器游标，并限制同时借出的数量
type cursorPool struct {
	objects *pool.ObjectPool
}

func newCursorPool(c *Config, size int, newCursor func() any) *cursorPool {
	poolConfig := pool.NewDefaultPoolConfig()
	poolConfig.BlockWhenExhausted = false
	poolConfig.MaxTotal = -1
	if c.maxIterators > 0 {
		poolConfig.MaxTotal = c.maxIterators
		poolConfig.MaxIdle = c.maxIterators
	}
	factory := &cursorFactory{
		allocator: c.allocator,
		size:      size,
		newCursor: newCursor,
	}
	return &cursorPool{
		objects: pool.NewObjectPool(context.Background(), factory, poolConfig),
	}
}

func (p *cursorPool) borrow() (any, error) {
	return p.objects.BorrowObject(context.Background())
}

func (p *cursorPool) giveBack(cursor any) {
	_ = p.objects.ReturnObject(context.Background(), cursor)
}

// close 销毁所有空闲游标，未归还的游标不受影响
func (p *cursorPool) close() {
	p.objects.Close(context.Background())
}
