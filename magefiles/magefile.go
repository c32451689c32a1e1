//go:build mage

// Package main 是 mage 构建脚本
//
//	mage build    编译 wordcount 到 bin/
//	mage test     运行全部测试
//	mage bench    运行 dict 的基准测试
//	mage lint     运行 golangci-lint
//	mage clean    删除构建产物
//	mage install  安装到 GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "wordcount"
	binaryDir  = "bin"
	cmdDir     = "./cmd/wordcount"
)

func versionFlags() string {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	return "-X hashmap-learn/internal/cli.Version=" + version
}

// Build 编译 wordcount 到 bin/
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-ldflags", versionFlags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Test 运行全部测试
func Test() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Bench 运行 dict 的基准测试
func Bench() error {
	return sh.RunV(binGo, "test", "-run", "^$", "-bench", ".", "-benchmem", "./datastruct/dict/")
}

func Lint() error {
	return sh.RunV(binLint, "run", "./...")
}

// Clean 删除构建产物
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install 先构建再复制到 GOPATH/bin
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), filepath.Join(binaryDir, binaryName))
}
