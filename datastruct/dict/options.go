package dict

import (
	"hashmap-learn/lib/alloc"
	"hashmap-learn/lib/hashfunc"
)

const DefaultLoadFactor = 0.75

// ModCountPolicy 决定只修改已有 key 的 value 时是否推进修改计数
type ModCountPolicy int

const (
	// ModCountStructural 只在插入新 key、Clear、扩容时推进，修改 value 不会让迭代器失效
	ModCountStructural ModCountPolicy = iota
	// ModCountEveryPut 每次 Put 都推进，包括只修改 value 的 Put
	ModCountEveryPut
)

type Config struct {
	allocator    alloc.Allocator
	maxIterators int
	policy       ModCountPolicy
}

type Option func(*Config)

// WithAllocator 让容器的所有分配都向 a 申请额度
func WithAllocator(a alloc.Allocator) Option {
	return func(c *Config) {
		if a != nil {
			c.allocator = a
		}
	}
}

// WithMaxIterators 限制同时存在的迭代器数量，n <= 0 表示不限制
func WithMaxIterators(n int) Option {
	return func(c *Config) {
		c.maxIterators = n
	}
}

func WithModCountPolicy(p ModCountPolicy) Option {
	return func(c *Config) {
		c.policy = p
	}
}

func newConfig(opts []Option) *Config {
	c := &Config{
		allocator: alloc.Unlimited(),
		policy:    ModCountStructural,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultHashFunc(f HashFunc) HashFunc {
	if f == nil {
		return hashfunc.Polynomial
	}
	return f
}
