package dict

import (
	"fmt"
	"io"
)

// Stats 只用于诊断
type Stats struct {
	Capacity int
	// Threshold 为负数表示不会再扩容
	Threshold float64
	Size      int
	// ChainCount 是非空桶的数量
	ChainCount         int
	AverageChainLength float64
	ModCount           uint64
}

func averageChainLength(size, chains int) float64 {
	if chains == 0 {
		return 0
	}
	return float64(size) / float64(chains)
}

func (s Stats) String() string {
	return fmt.Sprintf("capacity: %d\n"+
		"threshold: %.0f\n"+
		"size: %d\n"+
		"chain count: %d\n"+
		"average chain length: %f\n"+
		"modification count: %d\n",
		s.Capacity, s.Threshold, s.Size, s.ChainCount, s.AverageChainLength, s.ModCount)
}

func fprintStats(w io.Writer, name string, s Stats) (int, error) {
	return fmt.Fprintf(w, "============\n%s stats:\n%s============\n", name, s.String())
}
