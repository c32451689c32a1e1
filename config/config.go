package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"
)

type CounterProperties struct {
	InitialCapacity int     `cfg:"initial-capacity"`
	LoadFactor      float64 `cfg:"load-factor"`
	HashFunction    string  `cfg:"hash-function"`
	Implementation  string  `cfg:"implementation"`
	// MemoryLimit 为 0 表示不限制
	MemoryLimit int `cfg:"memory-limit"`
	// MaxIterators 为 0 表示不限制
	MaxIterators   int    `cfg:"max-iterators"`
	StrictModCount bool   `cfg:"strict-modcount"`
	PrintStats     bool   `cfg:"print-stats"`
	Parallelism    int    `cfg:"parallelism"`
	HistoryFile    string `cfg:"history-file"`
	LogLevel       string `cfg:"loglevel"`
	// Capacities 是 experiment 命令默认使用的初始容量列表
	Capacities []string `cfg:"capacities"`
}

var Properties *CounterProperties

func init() {
	Properties = Defaults()
}

func Defaults() *CounterProperties {
	return &CounterProperties{
		InitialCapacity: 16,
		LoadFactor:      0.75,
		HashFunction:    "polynomial",
		Implementation:  "chained",
		PrintStats:      true,
		Parallelism:     1,
		LogLevel:        "info",
		Capacities:      []string{"1", "16", "256", "4096", "65536"},
	}
}

// SetupConfigProperties 读取 redis 风格的配置文件，未出现的配置项保留默认值
func SetupConfigProperties(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer func(f *os.File) {
		_ = f.Close()
	}(file)
	p, err := Parse(file)
	if err != nil {
		return fmt.Errorf("load config %s: %w", filename, err)
	}
	Properties = p
	return nil
}

// Parse 每行格式为 "key value"，# 开头的行是注释
func Parse(reader io.Reader) (*CounterProperties, error) {
	res := Defaults()
	m := make(map[string]string)
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		pivot := strings.IndexAny(line, " \t")
		if pivot > 0 && pivot < len(line)-1 {
			key := line[0:pivot]
			val := strings.TrimSpace(line[pivot+1:])
			m[strings.ToLower(key)] = val
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	err := fillProperties(res, func(key string) (string, bool) {
		val, ok := m[key]
		return val, ok
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Overlay 用 lookup 找到的值覆盖 p 中对应的配置项，lookup 的参数是小写的配置名
func Overlay(p *CounterProperties, lookup func(key string) (string, bool)) error {
	return fillProperties(p, lookup)
}

// Keys 返回所有配置名
func Keys() []string {
	fields := reflect.TypeOf(CounterProperties{})
	res := make([]string, 0, fields.NumField())
	for i := 0; i < fields.NumField(); i++ {
		res = append(res, keyOf(fields.Field(i)))
	}
	return res
}

func keyOf(field reflect.StructField) string {
	key, ok := field.Tag.Lookup("cfg")
	if !ok {
		key = field.Name
	}
	return strings.ToLower(key)
}

func parseBool(val string) (bool, error) {
	switch strings.ToLower(val) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	default:
		return strconv.ParseBool(val)
	}
}

func fillProperties(p *CounterProperties, lookup func(key string) (string, bool)) error {
	fields := reflect.TypeOf(p).Elem()
	values := reflect.ValueOf(p).Elem()
	n := fields.NumField()
	for i := 0; i < n; i++ {
		field := fields.Field(i)
		fieldVal := values.Field(i)
		key := keyOf(field)
		val, ok := lookup(key)
		if !ok {
			continue
		}
		switch field.Type.Kind() {
		case reflect.String:
			fieldVal.SetString(val)
		case reflect.Int:
			intV, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, val, err)
			}
			fieldVal.SetInt(intV)
		case reflect.Float64:
			floatV, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, val, err)
			}
			fieldVal.SetFloat(floatV)
		case reflect.Bool:
			boolV, err := parseBool(val)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", key, val, err)
			}
			fieldVal.SetBool(boolV)
		case reflect.Slice:
			if field.Type.Elem().Kind() == reflect.String {
				sliceV := strings.Split(val, ",")
				for j := range sliceV {
					sliceV[j] = strings.TrimSpace(sliceV[j])
				}
				fieldVal.Set(reflect.ValueOf(sliceV))
			}
		}
	}
	return nil
}
