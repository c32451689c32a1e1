package dict

import (
	"errors"
	"io"
	"math/rand"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hashmap-learn/lib/alloc"
	"hashmap-learn/lib/utils"
)

func forEachImpl(t *testing.T, fn func(t *testing.T, newMap func(opts ...Option) Map)) {
	for _, impl := range Implementations() {
		t.Run(impl, func(t *testing.T) {
			fn(t, func(opts ...Option) Map {
				m, err := MakeMap(impl, 4, DefaultLoadFactor, nil, opts...)
				require.NoError(t, err)
				t.Cleanup(m.Free)
				return m
			})
		})
	}
}

func TestMakeMapUnknown(t *testing.T) {
	m, err := MakeMap("btree", 4, DefaultLoadFactor, nil)
	require.Error(t, err)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), "chained")
}

func TestMakeMapOutOfMemoryReturnsNilInterface(t *testing.T) {
	m, err := MakeMap(ImplChained, 1024, DefaultLoadFactor, nil, WithAllocator(alloc.NewBudget(0)))
	require.ErrorIs(t, err, ErrOutOfMemory)
	assert.True(t, m == nil)
}

func TestLastPutWins(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		model := make(map[string]int)
		r := rand.New(rand.NewSource(1))
		for i := 0; i < 2000; i++ {
			key := strconv.Itoa(r.Intn(300))
			require.NoError(t, m.Put(key, i))
			model[key] = i
		}
		assert.Equal(t, len(model), m.Size())
		for k, want := range model {
			v, ok := m.Get(k)
			require.True(t, ok, k)
			assert.Equal(t, want, *v)
		}
		_, ok := m.Get("absent")
		assert.False(t, ok)
		assert.True(t, IsOK(m))
	})
}

func TestPutIsIdempotent(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		require.NoError(t, m.Put("k", 5))
		require.NoError(t, m.Put("k", 5))
		assert.Equal(t, 1, m.Size())
		v, _ := m.Get("k")
		assert.Equal(t, 5, *v)
	})
}

func TestEmptyKey(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		require.NoError(t, m.Put("", 42))
		v, ok := m.Get("")
		require.True(t, ok)
		assert.Equal(t, 42, *v)
	})
}

func TestKeyIsCopied(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		buf := []byte("hello")
		require.NoError(t, m.Put(string(buf), 1))
		buf[0] = 'j'
		_, ok := m.Get("hello")
		assert.True(t, ok)
		keys, err := Keys(m)
		require.NoError(t, err)
		assert.Equal(t, []string{"hello"}, keys)
	})
}

func TestValueHandle(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		require.NoError(t, m.Put("w", 1))
		v, _ := m.Get("w")
		*v++
		*v++
		got, _ := m.Get("w")
		assert.Equal(t, 3, *got)
	})
}

func TestIteratorCompleteness(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		keys := utils.AlnumStrings(500, 8)
		for i, k := range keys {
			require.NoError(t, m.Put(k, i))
		}
		seen := make(map[string]int)
		err := ForEach(m, func(e *Entry) bool {
			seen[e.Key()]++
			return true
		})
		require.NoError(t, err)
		assert.Len(t, seen, len(keys))
		for _, k := range keys {
			assert.Equal(t, 1, seen[k], k)
		}

		got, err := Keys(m)
		require.NoError(t, err)
		sort.Strings(got)
		sorted := append([]string(nil), keys...)
		sort.Strings(sorted)
		assert.Equal(t, sorted, got)
	})
}

func TestEmptyIterator(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		it, err := m.Iterator()
		require.NoError(t, err)
		defer it.Free()
		assert.Nil(t, it.Next())
		assert.Nil(t, it.Next())
		assert.NoError(t, it.Err())
	})
}

func TestIteratorSetValue(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		for i := 0; i < 10; i++ {
			require.NoError(t, m.Put(strconv.Itoa(i), i))
		}
		require.NoError(t, ForEach(m, func(e *Entry) bool {
			e.SetValue(e.Value() * 10)
			return true
		}))
		v, _ := m.Get("7")
		assert.Equal(t, 70, *v)
		assert.True(t, IsOK(m))
	})
}

func TestFailFastOnNewKey(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		require.NoError(t, m.Put("a", 1))
		require.NoError(t, m.Put("b", 2))
		it, err := m.Iterator()
		require.NoError(t, err)
		defer it.Free()

		require.NoError(t, m.Put("a", 10))
		assert.NotNil(t, it.Next(), "value update must not invalidate the iterator")
		assert.True(t, IsOK(m))

		require.NoError(t, m.Put("c", 3))
		assert.Nil(t, it.Next())
		assert.ErrorIs(t, it.Err(), ErrConcurrentModification)
		assert.Equal(t, Status{StatusConcurrentModification, "entry iterator"}, m.Status())
	})
}

func TestFailFastOnClear(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		require.NoError(t, m.Put("a", 1))
		it, err := m.Iterator()
		require.NoError(t, err)
		defer it.Free()
		m.Clear()
		assert.Nil(t, it.Next())
		assert.Equal(t, StatusConcurrentModification, m.Status().Kind)
	})
}

func TestModCountEveryPut(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap(WithModCountPolicy(ModCountEveryPut))
		require.NoError(t, m.Put("a", 1))
		it, err := m.Iterator()
		require.NoError(t, err)
		defer it.Free()
		require.NoError(t, m.Put("a", 2))
		assert.Nil(t, it.Next())
		assert.ErrorIs(t, it.Err(), ErrConcurrentModification)
	})
}

func TestClear(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		for i := 0; i < 100; i++ {
			require.NoError(t, m.Put(strconv.Itoa(i), i))
		}
		before := m.Stats().ModCount
		m.Clear()
		assert.Equal(t, 0, m.Size())
		assert.Greater(t, m.Stats().ModCount, before)
		_, ok := m.Get("5")
		assert.False(t, ok)
		keys, err := Keys(m)
		require.NoError(t, err)
		assert.Empty(t, keys)
		require.NoError(t, m.Put("5", 1))
		assert.Equal(t, 1, m.Size())
	})
}

func TestMaxIterators(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap(WithMaxIterators(1))
		first, err := m.Iterator()
		require.NoError(t, err)
		_, err = m.Iterator()
		require.ErrorIs(t, err, ErrOutOfMemory)
		assert.Equal(t, Status{StatusOutOfMemory, "entry iterator"}, m.Status())

		first.Free()
		first.Free()
		again, err := m.Iterator()
		require.NoError(t, err)
		again.Free()
	})
}

func TestAllocatorBalanced(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		budget := alloc.NewBudget(1 << 24)
		m := newMap(WithAllocator(budget))
		base := budget.Used()
		for i := 0; i < 300; i++ {
			require.NoError(t, m.Put(strconv.Itoa(i), i))
		}
		assert.Greater(t, budget.Used(), base)
		m.Clear()
		if _, ok := m.(*ChainedHashMap); !ok {
			assert.Equal(t, base, budget.Used())
		}
		m.Free()
		assert.Equal(t, 0, budget.Used())
	})
}

type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestFprintStatsError(t *testing.T) {
	forEachImpl(t, func(t *testing.T, newMap func(opts ...Option) Map) {
		m := newMap()
		_, err := m.FprintStats(brokenWriter{})
		require.ErrorIs(t, err, ErrPrint)
		assert.True(t, errors.Is(err, io.ErrClosedPipe))
		assert.Equal(t, Status{StatusPrintError, "stats"}, m.Status())
	})
}

func TestResizeTransparency(t *testing.T) {
	growing, err := NewChainedHashMap(1, DefaultLoadFactor, nil)
	require.NoError(t, err)
	defer growing.Free()
	fixed, err := NewChainedHashMap(64, -1, nil)
	require.NoError(t, err)
	defer fixed.Free()

	keys := utils.AlnumStrings(3000, 6)
	for i, k := range keys {
		require.NoError(t, growing.Put(k, i))
		require.NoError(t, fixed.Put(k, i))
	}
	assert.Equal(t, fixed.Size(), growing.Size())
	for _, k := range keys {
		a, ok := growing.Get(k)
		require.True(t, ok)
		b, _ := fixed.Get(k)
		assert.Equal(t, *b, *a)
	}
	assert.LessOrEqual(t, float64(growing.Size()), growing.Stats().Threshold)
}

func TestBucketedHashMapStats(t *testing.T) {
	m, err := NewBucketedHashMap(3, nil)
	require.NoError(t, err)
	defer m.Free()
	assert.Equal(t, 16, m.hint)
	for i := 0; i < 100; i++ {
		require.NoError(t, m.Put(strconv.Itoa(i), i))
	}
	s := m.Stats()
	assert.Equal(t, 100, s.Size)
	assert.Equal(t, -1.0, s.Threshold)
	assert.GreaterOrEqual(t, s.Capacity, s.Size)
	assert.Positive(t, s.ChainCount)
	assert.LessOrEqual(t, s.ChainCount, s.Size)
	assert.Equal(t, uint64(100), s.ModCount)
}

func BenchmarkPut(b *testing.B) {
	keys := utils.AlnumStrings(1<<14, 10)
	for _, impl := range Implementations() {
		b.Run(impl, func(b *testing.B) {
			m, err := MakeMap(impl, 16, DefaultLoadFactor, nil)
			require.NoError(b, err)
			defer m.Free()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = m.Put(keys[i&(len(keys)-1)], i)
			}
		})
	}
}

func BenchmarkGet(b *testing.B) {
	keys := utils.AlnumStrings(1<<14, 10)
	for _, impl := range Implementations() {
		b.Run(impl, func(b *testing.B) {
			m, err := MakeMap(impl, 16, DefaultLoadFactor, nil)
			require.NoError(b, err)
			defer m.Free()
			for i, k := range keys {
				_ = m.Put(k, i)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				m.Get(keys[i&(len(keys)-1)])
			}
		})
	}
}
