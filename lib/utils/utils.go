package utils

import "math/rand"

// AlnumString 生成长度为 l 的随机字母数字串
func AlnumString(l int) string {
	a := make([]byte, l)
	for i := 0; i < l; i++ {
		index := rand.Intn(62)
		if index < 10 {
			a[i] = byte('0' + index)
		} else if index < 36 {
			a[i] = byte('A' + index - 10)
		} else {
			a[i] = byte('a' + index - 36)
		}
	}
	return string(a)
}

// AlnumStrings 生成 n 个互不相同的随机串
func AlnumStrings(n, l int) []string {
	seen := make(map[string]struct{}, n)
	res := make([]string, 0, n)
	for len(res) < n {
		s := AlnumString(l)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		res = append(res, s)
	}
	return res
}

func IsASCIILetter(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// ToLowerASCII 只转换 ASCII 大写字母
func ToLowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
