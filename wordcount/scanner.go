package wordcount

import (
	"bufio"
	"errors"
	"io"

	"hashmap-learn/lib/utils"
)

// MaxWordLength 是单词的最大字节数，更长的字母串会被拆成多个单词
const MaxWordLength = 1023

// Scanner 从输入中依次读出单词。单词是连续的 ASCII 字母，读出时已转为小写。
type Scanner struct {
	reader *bufio.Reader
	buf    []byte
	word   string
	err    error
}

func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReader(r),
		buf:    make([]byte, 0, 64),
	}
}

// Scan 读取下一个单词，没有更多单词或出错时返回 false
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	var b byte
	for {
		c, err := s.reader.ReadByte()
		if err != nil {
			s.setErr(err)
			return false
		}
		if utils.IsASCIILetter(c) {
			b = c
			break
		}
	}
	s.buf = s.buf[:0]
	for {
		s.buf = append(s.buf, utils.ToLowerASCII(b))
		if len(s.buf) == MaxWordLength {
			break
		}
		c, err := s.reader.ReadByte()
		if err != nil {
			s.setErr(err)
			break
		}
		if !utils.IsASCIILetter(c) {
			break
		}
		b = c
	}
	s.word = string(s.buf)
	return true
}

func (s *Scanner) setErr(err error) {
	if errors.Is(err, io.EOF) {
		s.err = io.EOF
		return
	}
	s.err = err
}

// Word 返回最近一次 Scan 读到的单词
func (s *Scanner) Word() string {
	return s.word
}

// Err 返回读取过程中遇到的第一个非 EOF 错误
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}
