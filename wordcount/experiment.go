package wordcount

import (
	"bytes"
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"hashmap-learn/lib/logger"
)

// RunExperiments 对每个初始容量各统计一次 input，结果按 capacities 的顺序写入 out。
// s.Parallelism 大于 1 时多次统计并发执行，第一个错误会取消其余的统计。
func RunExperiments(ctx context.Context, input []byte, out io.Writer, s Settings, capacities []int) ([]*Result, error) {
	results := make([]*Result, len(capacities))
	g, ctx := errgroup.WithContext(ctx)
	limit := s.Parallelism
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)
	for i, capacity := range capacities {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Run(bytes.NewReader(input), capacity, s)
			if err != nil {
				logger.Errorf("experiment with initial capacity %d failed: %v", capacity, err)
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, res := range results {
		if err := res.Fprint(out, s.PrintStats); err != nil {
			return results, err
		}
	}
	return results, nil
}
