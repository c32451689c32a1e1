// Package wordcount 用 dict.Map 统计文本中每个单词出现的次数
package wordcount

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"hashmap-learn/config"
	"hashmap-learn/datastruct/dict"
	"hashmap-learn/lib/alloc"
	"hashmap-learn/lib/hashfunc"
	"hashmap-learn/lib/logger"
)

var (
	ErrNoWords         = errors.New("no words were found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Settings 描述如何创建计数用的 map
type Settings struct {
	Implementation string
	LoadFactor     float64
	HashFunction   string
	// MemoryLimit 为 0 表示不限制
	MemoryLimit    int
	MaxIterators   int
	StrictModCount bool
	PrintStats     bool
	Parallelism    int
}

func SettingsFrom(p *config.CounterProperties) Settings {
	return Settings{
		Implementation: p.Implementation,
		LoadFactor:     p.LoadFactor,
		HashFunction:   p.HashFunction,
		MemoryLimit:    p.MemoryLimit,
		MaxIterators:   p.MaxIterators,
		StrictModCount: p.StrictModCount,
		PrintStats:     p.PrintStats,
		Parallelism:    p.Parallelism,
	}
}

// NewMap 按配置创建初始容量为 capacity 的 map
func (s Settings) NewMap(capacity int) (dict.Map, error) {
	var hash dict.HashFunc
	if s.HashFunction != "" {
		f, err := hashfunc.ByName(s.HashFunction)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		hash = f
	}
	opts := []dict.Option{dict.WithMaxIterators(s.MaxIterators)}
	if s.MemoryLimit > 0 {
		opts = append(opts, dict.WithAllocator(alloc.NewBudget(s.MemoryLimit)))
	}
	if s.StrictModCount {
		opts = append(opts, dict.WithModCountPolicy(dict.ModCountEveryPut))
	}
	return dict.MakeMap(s.Implementation, capacity, s.LoadFactor, hash, opts...)
}

// Count 把 r 中的单词累加到 m 中，返回读到的单词数。m 出错时立即停止。
func Count(r io.Reader, m dict.Map) (int, error) {
	scanner := NewScanner(r)
	words := 0
	for scanner.Scan() {
		word := scanner.Word()
		if count, ok := m.Get(word); ok {
			*count++
		} else if err := m.Put(word, 1); err != nil {
			return words, err
		}
		words++
	}
	return words, scanner.Err()
}

// MostCommon 返回出现次数最多的单词，次数相同时取迭代顺序中第一个
func MostCommon(m dict.Map) (string, int, error) {
	var best *dict.Entry
	err := dict.ForEach(m, func(e *dict.Entry) bool {
		if best == nil || e.Value() > best.Value() {
			best = e
		}
		return true
	})
	if err != nil {
		dict.LogOnError(m)
		return "", 0, err
	}
	if best == nil {
		return "", 0, ErrNoWords
	}
	return best.Key(), best.Value(), nil
}

// CountWords 创建 map 并统计 r 中的单词，出错时 map 已被释放
func CountWords(r io.Reader, capacity int, s Settings) (dict.Map, error) {
	m, err := s.NewMap(capacity)
	if err != nil {
		return nil, err
	}
	if _, err := Count(r, m); err != nil {
		if !dict.LogAndFreeOnError(m) {
			m.Free()
		}
		return nil, err
	}
	return m, nil
}

// Result 是一次统计的结果
type Result struct {
	Capacity    int
	UniqueWords int
	Word        string
	Count       int
	Stats       dict.Stats
	// StatsBlock 是 FprintStats 的输出
	StatsBlock string
	Elapsed    time.Duration
}

// Summarize 汇总 m 的统计结果，不会释放 m
func Summarize(m dict.Map, capacity int) (*Result, error) {
	word, count, err := MostCommon(m)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if _, err := m.FprintStats(&buf); err != nil {
		return nil, err
	}
	return &Result{
		Capacity:    capacity,
		UniqueWords: m.Size(),
		Word:        word,
		Count:       count,
		Stats:       m.Stats(),
		StatsBlock:  buf.String(),
	}, nil
}

// Run 完成一次完整的统计，Elapsed 包含建表和释放的时间
func Run(r io.Reader, capacity int, s Settings) (*Result, error) {
	start := time.Now()
	m, err := CountWords(r, capacity, s)
	if err != nil {
		return nil, err
	}
	res, err := Summarize(m, capacity)
	m.Free()
	if err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	logger.Debugf("capacity %d: %d unique words in %s", capacity, res.UniqueWords, res.Elapsed)
	return res, nil
}

// Fprint 按实验报告的格式写入结果
func (r *Result) Fprint(w io.Writer, printStats bool) error {
	if _, err := fmt.Fprintf(w, "\nInitial capacity: %d\n", r.Capacity); err != nil {
		return fmt.Errorf("print initial capacity: %w", err)
	}
	if printStats {
		if _, err := io.WriteString(w, r.StatsBlock); err != nil {
			return &dict.StatusError{Status: dict.Status{Kind: dict.StatusPrintError, Context: "stats"}, Cause: err}
		}
	}
	if err := r.FprintSummary(w); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Time taken: %f seconds\n\n", r.Elapsed.Seconds()); err != nil {
		return fmt.Errorf("print execution time: %w", err)
	}
	return nil
}

// FprintSummary 只写入单词数和最常见的单词
func (r *Result) FprintSummary(w io.Writer) error {
	_, err := fmt.Fprintf(w, "Unique word count: %d\nMost common word: %s (appears %d times)\n",
		r.UniqueWords, r.Word, r.Count)
	if err != nil {
		return fmt.Errorf("print results: %w", err)
	}
	return nil
}

// ParseCapacity 支持十进制、0x 十六进制和 0 开头的八进制
func ParseCapacity(str string) (int, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(str), 0, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%w: capacity %s is too large", ErrInvalidArgument, str)
		}
		return 0, fmt.Errorf("%w: capacity %q is not a valid number", ErrInvalidArgument, str)
	}
	if v > math.MaxInt {
		return 0, fmt.Errorf("%w: capacity %s is too large", ErrInvalidArgument, str)
	}
	return int(v), nil
}

func ParseCapacities(strs []string) ([]int, error) {
	res := make([]int, 0, len(strs))
	for _, str := range strs {
		c, err := ParseCapacity(str)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, nil
}

func ParseLoadFactor(str string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: load factor %q is not a valid number", ErrInvalidArgument, str)
	}
	return v, nil
}
