package dict

import (
	"errors"
	"fmt"
	"io"

	"hashmap-learn/lib/logger"
)

type StatusKind int

const (
	StatusOK StatusKind = iota
	// Context 为无法分配内存的对象名称
	StatusOutOfMemory
	// Context 为无法处理并发修改的对象名称
	StatusConcurrentModification
	// Context 为无法输出的内容名称
	StatusPrintError
)

var (
	ErrOutOfMemory            = errors.New("out of memory")
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrPrint                  = errors.New("print error")
)

func (k StatusKind) String() string {
	switch k {
	case StatusOK:
		return "OK"
	case StatusOutOfMemory:
		return "OUT_OF_MEMORY"
	case StatusConcurrentModification:
		return "CONCURRENT_MODIFICATION"
	case StatusPrintError:
		return "PRINT_ERROR"
	default:
		return fmt.Sprintf("StatusKind(%d)", int(k))
	}
}

func (k StatusKind) sentinel() error {
	switch k {
	case StatusOutOfMemory:
		return ErrOutOfMemory
	case StatusConcurrentModification:
		return ErrConcurrentModification
	case StatusPrintError:
		return ErrPrint
	default:
		return nil
	}
}

// Status 是附着在容器上的错误记录，一旦被设置为非 OK 就不会被自动清除
type Status struct {
	Kind    StatusKind
	Context string
}

func (s Status) IsOK() bool {
	return s.Kind == StatusOK
}

func (s Status) Message() string {
	switch s.Kind {
	case StatusOK:
		return "No errors"
	case StatusOutOfMemory:
		return fmt.Sprintf("Unable to allocate memory for %s", s.Context)
	case StatusConcurrentModification:
		return fmt.Sprintf("Concurrent modification occurred while using %s", s.Context)
	case StatusPrintError:
		return fmt.Sprintf("Unable to print %s", s.Context)
	default:
		return "Unknown error"
	}
}

// Fprint 把状态信息写入 w，返回写入的字节数
func (s Status) Fprint(w io.Writer) (int, error) {
	return fmt.Fprintln(w, s.Message())
}

// LogIfError 在状态不是 OK 时记录错误日志并返回 true，owner 为空时省略来源；不会重置状态
func (s Status) LogIfError(owner string) bool {
	if s.IsOK() {
		return false
	}
	if owner != "" {
		logger.Errorf("Error occurred in %s: %s", owner, s.Message())
	} else {
		logger.Error(s.Message())
	}
	return true
}

// Err 在状态为 OK 时返回 nil
func (s Status) Err() error {
	if s.IsOK() {
		return nil
	}
	return &StatusError{Status: s}
}

// StatusError 是容器操作失败时返回的错误，可以用 errors.Is 匹配 ErrOutOfMemory 等哨兵错误
type StatusError struct {
	Status Status
	Cause  error
}

func (e *StatusError) Error() string {
	if e.Cause != nil {
		return e.Status.Message() + ": " + e.Cause.Error()
	}
	return e.Status.Message()
}

func (e *StatusError) Unwrap() []error {
	res := make([]error, 0, 2)
	if sentinel := e.Status.Kind.sentinel(); sentinel != nil {
		res = append(res, sentinel)
	}
	if e.Cause != nil {
		res = append(res, e.Cause)
	}
	return res
}
