// Package hashfunc 收集可供哈希表使用的 32 位字符串哈希函数
package hashfunc

import (
	"fmt"
	"hash/crc32"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const (
	polynomialBase = uint32(31)
	initialHash    = uint32(2166136261)
	prime32        = uint32(16777619)
)

// Polynomial 返回 s[0]*31^(n-1) + s[1]*31^(n-2) + ... + s[n-1]，按 2^32 取模
func Polynomial(key string) uint32 {
	hash := uint32(0)
	for i := 0; i < len(key); i++ {
		hash = polynomialBase*hash + uint32(key[i])
	}
	return hash
}

// FNV32 是 FNV-1：先乘后异或
func FNV32(key string) uint32 {
	hash := initialHash
	// 按字节而不是按字符处理
	for i := 0; i < len(key); i++ {
		hash *= prime32
		hash ^= uint32(key[i])
	}
	return hash
}

// FNV32a 是 FNV-1a：先异或后乘
func FNV32a(key string) uint32 {
	hash := initialHash
	for i := 0; i < len(key); i++ {
		hash ^= uint32(key[i])
		hash *= prime32
	}
	return hash
}

func CRC32(key string) uint32 {
	return crc32.ChecksumIEEE([]byte(key))
}

// XXHash 取 xxhash64 的低 32 位
func XXHash(key string) uint32 {
	return uint32(xxhash.Sum64String(key))
}

var registry = map[string]func(string) uint32{
	"polynomial": Polynomial,
	"fnv32":      FNV32,
	"fnv32a":     FNV32a,
	"crc32":      CRC32,
	"xxhash":     XXHash,
}

// ByName 根据名称（不区分大小写）查找哈希函数
func ByName(name string) (func(string) uint32, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown hash function %q, expected one of %s", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

func Names() []string {
	res := make([]string, 0, len(registry))
	for name := range registry {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}
