package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

type Settings struct {
	Output io.Writer
	Level  string
}

type logLevel int

const (
	DEBUG logLevel = iota
	INFO
	WARNING
	ERROR
	FATAL
)

const (
	flags              = log.LstdFlags
	defaultCallerDepth = 2
)

var (
	levelFlags = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}
	mu         sync.Mutex
	logger     = log.New(os.Stderr, "", flags)
	minLevel   = INFO
)

// Setup 按照 settings 重新设置输出位置和最低日志级别
func Setup(settings *Settings) {
	mu.Lock()
	defer mu.Unlock()
	if settings == nil {
		return
	}
	if settings.Output != nil {
		logger = log.New(settings.Output, "", flags)
	}
	if settings.Level != "" {
		minLevel = ParseLevel(settings.Level)
	}
}

// SetOutput 只替换输出位置，测试中用来捕获日志
func SetOutput(w io.Writer) {
	Setup(&Settings{Output: w})
}

// ParseLevel 将级别名称转换为 logLevel，无法识别时返回 INFO
func ParseLevel(name string) logLevel {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		name = "WARN"
	}
	for i, flag := range levelFlags {
		if flag == name {
			return logLevel(i)
		}
	}
	return INFO
}

func output(level logLevel, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if level < minLevel {
		return
	}
	_, file, line, ok := runtime.Caller(defaultCallerDepth)
	if ok {
		logger.SetPrefix(fmt.Sprintf("[%s][%s:%d] ", levelFlags[level], filepath.Base(file), line))
	} else {
		logger.SetPrefix(fmt.Sprintf("[%s] ", levelFlags[level]))
	}
	logger.Println(msg)
}

func Debug(v ...any) {
	output(DEBUG, fmt.Sprint(v...))
}

func Debugf(format string, v ...any) {
	output(DEBUG, fmt.Sprintf(format, v...))
}

func Info(v ...any) {
	output(INFO, fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	output(INFO, fmt.Sprintf(format, v...))
}

func Warn(v ...any) {
	output(WARNING, fmt.Sprint(v...))
}

func Warnf(format string, v ...any) {
	output(WARNING, fmt.Sprintf(format, v...))
}

func Error(v ...any) {
	output(ERROR, fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	output(ERROR, fmt.Sprintf(format, v...))
}

// Fatal 输出日志后以状态码 1 退出进程
func Fatal(v ...any) {
	output(FATAL, fmt.Sprint(v...))
	os.Exit(1)
}
