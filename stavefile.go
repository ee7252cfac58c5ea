//go:build stave

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
)

var Default = Build

var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"i": Install,
	"c": Clean,
	"h": Hunt,
}

const (
	mainPkg   = "./cmd/sherlock"
	outDir    = "bin"
	coverFile = "coverage.out"
)

// All lints, tests and builds.
func All() {
	st.Deps(Lint, Test)
	st.Deps(Build)
}

// Build compiles bin/sherlock with version information stamped in.
func Build() error {
	out := filepath.Join(outDir, "sherlock")
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	return sh.RunV(st.GoCmd(), "build", "-trimpath", "-ldflags", ldflags(), "-o", out, mainPkg)
}

// Hunt runs a fresh build against this checkout.
func Hunt() error {
	st.Deps(Build)
	return sh.RunV(filepath.Join(outDir, "sherlock"), "--no-history", "--no-cache", "-o", "plain", ".")
}

// Install puts a stamped sherlock into GOBIN.
func Install() error {
	return sh.RunV(st.GoCmd(), "install", "-trimpath", "-ldflags", ldflags(), mainPkg)
}

// Uninstall removes the binary Install put in place.
func Uninstall() error {
	target, err := sh.Output(st.GoCmd(), "list", "-f", "{{.Target}}", mainPkg)
	if err != nil {
		return fmt.Errorf("locating installed binary: %w", err)
	}
	if st.Verbose() {
		fmt.Println("removing", target)
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Test runs the suite under the race detector and writes coverage.out.
func Test() error {
	return sh.RunV(st.GoCmd(), "test", "-race", "-coverprofile="+coverFile, "./...")
}

// Cover prints per-function coverage.
func Cover() error {
	st.Deps(Test)
	return sh.RunV(st.GoCmd(), "tool", "cover", "-func="+coverFile)
}

func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes bin/ and coverage output.
func Clean() error {
	for _, p := range []string{outDir, coverFile} {
		if err := sh.Rm(p); err != nil {
			return err
		}
	}
	return nil
}

// Fmt runs gofmt and goimports over the tree.
func Fmt() error {
	for _, tool := range []string{"gofmt", "goimports"} {
		if err := sh.Run(tool, "-w", "."); err != nil {
			return fmt.Errorf("%s: %w", tool, err)
		}
	}
	return nil
}

func Tidy() error {
	return sh.RunV(st.GoCmd(), "mod", "tidy")
}

// ldflags stamps main.version, main.commit and main.date from git. Outside
// a checkout the binary reports the defaults in version.go.
func ldflags() string {
	flags := []string{"-s", "-w", "-X main.date=" + time.Now().UTC().Format(time.RFC3339)}
	for name, args := range map[string][]string{
		"version": {"describe", "--tags", "--always", "--dirty"},
		"commit":  {"rev-parse", "--short", "HEAD"},
	} {
		if v, err := sh.Output("git", args...); err == nil && strings.TrimSpace(v) != "" {
			flags = append(flags, fmt.Sprintf("-X main.%s=%s", name, strings.TrimSpace(v)))
		}
	}
	return strings.Join(flags, " ")
}
