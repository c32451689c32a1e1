package dict

import (
	"fmt"
	"strings"
)

const (
	ImplChained  = "chained"
	ImplSimple   = "simple"
	ImplBucketed = "bucketed"
)

// Implementations 返回 MakeMap 支持的所有实现名称
func Implementations() []string {
	return []string{ImplChained, ImplSimple, ImplBucketed}
}

// MakeMap 按名称创建容器，capacity 对没有桶数组的实现只作为预留大小，loadFactor 只对 chained 有效
func MakeMap(impl string, capacity int, loadFactor float64, hashFunc HashFunc, opts ...Option) (Map, error) {
	var (
		m   Map
		err error
	)
	switch strings.ToLower(strings.TrimSpace(impl)) {
	case "", ImplChained:
		m, err = NewChainedHashMap(capacity, loadFactor, hashFunc, opts...)
	case ImplSimple:
		m, err = NewSimpleHashMap(capacity, hashFunc, opts...)
	case ImplBucketed:
		m, err = NewBucketedHashMap(capacity, hashFunc, opts...)
	default:
		return nil, fmt.Errorf("unknown map implementation %q, expected one of %s",
			impl, strings.Join(Implementations(), ", "))
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
