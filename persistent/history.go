package persistent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var ErrHistoryClosed = errors.New("history is closed")

// timeLayout 固定小数位数，字符串顺序与时间顺序一致
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const historySchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id            TEXT PRIMARY KEY,
	started_at        TEXT NOT NULL,
	input             TEXT NOT NULL,
	implementation    TEXT NOT NULL,
	hash_function     TEXT NOT NULL,
	load_factor       REAL NOT NULL,
	initial_capacity  INTEGER NOT NULL,
	final_capacity    INTEGER NOT NULL,
	unique_words      INTEGER NOT NULL,
	most_common_word  TEXT NOT NULL,
	most_common_count INTEGER NOT NULL,
	chain_count       INTEGER NOT NULL,
	avg_chain_length  REAL NOT NULL,
	mod_count         INTEGER NOT NULL,
	elapsed_ns        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs (started_at);
`

// RunRecord 是一次统计的记录
type RunRecord struct {
	RunID              string
	StartedAt          time.Time
	Input              string
	Implementation     string
	HashFunction       string
	LoadFactor         float64
	InitialCapacity    int
	FinalCapacity      int
	UniqueWords        int
	MostCommonWord     string
	MostCommonCount    int
	ChainCount         int
	AverageChainLength float64
	ModCount           uint64
	Elapsed            time.Duration
}

// History 把每次统计的结果保存到 SQLite 中，可以被多个 goroutine 同时使用
type History struct {
	mu sync.Mutex
	db *sql.DB
}

func OpenHistory(path string) (*History, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &History{db: db}, nil
}

func generateRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Record 保存 r，RunID 为空时生成一个新的 ID，返回最终使用的 ID
func (h *History) Record(ctx context.Context, r RunRecord) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.db == nil {
		return "", ErrHistoryClosed
	}
	if r.RunID == "" {
		r.RunID = generateRunID()
	}
	if r.StartedAt.IsZero() {
		r.StartedAt = time.Now()
	}
	_, err := h.db.ExecContext(ctx, `INSERT INTO runs (
		run_id, started_at, input, implementation, hash_function, load_factor,
		initial_capacity, final_capacity, unique_words, most_common_word, most_common_count,
		chain_count, avg_chain_length, mod_count, elapsed_ns
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.StartedAt.UTC().Format(timeLayout), r.Input, r.Implementation, r.HashFunction,
		r.LoadFactor, r.InitialCapacity, r.FinalCapacity, r.UniqueWords, r.MostCommonWord,
		r.MostCommonCount, r.ChainCount, r.AverageChainLength, int64(r.ModCount), int64(r.Elapsed))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return r.RunID, nil
}

// Recent 按开始时间倒序返回最多 limit 条记录，limit <= 0 表示全部
func (h *History) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.db == nil {
		return nil, ErrHistoryClosed
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.db.QueryContext(ctx, `SELECT
		run_id, started_at, input, implementation, hash_function, load_factor,
		initial_capacity, final_capacity, unique_words, most_common_word, most_common_count,
		chain_count, avg_chain_length, mod_count, elapsed_ns
	FROM runs ORDER BY started_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var res []RunRecord
	for rows.Next() {
		var (
			r         RunRecord
			startedAt string
			modCount  int64
			elapsed   int64
		)
		err := rows.Scan(&r.RunID, &startedAt, &r.Input, &r.Implementation, &r.HashFunction,
			&r.LoadFactor, &r.InitialCapacity, &r.FinalCapacity, &r.UniqueWords, &r.MostCommonWord,
			&r.MostCommonCount, &r.ChainCount, &r.AverageChainLength, &modCount, &elapsed)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parse start time of run %s: %w", r.RunID, err)
		}
		r.ModCount = uint64(modCount)
		r.Elapsed = time.Duration(elapsed)
		res = append(res, r)
	}
	return res, rows.Err()
}

// Close 可以重复调用
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}
