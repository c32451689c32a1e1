package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlnumString(t *testing.T) {
	s := AlnumString(64)
	assert.Len(t, s, 64)
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := c >= '0' && c <= '9' || IsASCIILetter(c)
		assert.True(t, ok, "unexpected byte %q", c)
	}
}

func TestAlnumStringsDistinct(t *testing.T) {
	strs := AlnumStrings(500, 3)
	seen := make(map[string]bool)
	for _, s := range strs {
		assert.False(t, seen[s], "duplicate %s", s)
		seen[s] = true
	}
	assert.Len(t, seen, 500)
}

func TestASCIIHelpers(t *testing.T) {
	assert.True(t, IsASCIILetter('q'))
	assert.True(t, IsASCIILetter('Q'))
	assert.False(t, IsASCIILetter('1'))
	assert.False(t, IsASCIILetter(0xC3))
	assert.Equal(t, byte('a'), ToLowerASCII('A'))
	assert.Equal(t, byte('z'), ToLowerASCII('z'))
	assert.Equal(t, byte('-'), ToLowerASCII('-'))
}
