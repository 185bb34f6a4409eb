package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"

	lox "github.com/jprochazk/tslox"
)

const (
	appName     = "lox"
	historyFile = ".lox_history"
	prompt      = "> "
)

func main() {
	args := os.Args[1:]
	for _, a := range args {
		if a == "--help" || a == "-h" {
			usage()
			return
		}
	}

	switch len(args) {
	case 0:
		os.Exit(repl())
	case 1:
		os.Exit(runFile(args[0]))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Usage:
  %s            Start the REPL.
  %s <file>     Run a script.
  %s -h|--help  Print this help.
`, appName, appName, appName)
}

func runFile(path string) int {
	session := lox.NewSession(os.Stdout, os.Stderr)
	ok, err := session.RunFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return 1
	}
	if !ok {
		return 1
	}
	return 0
}

func repl() int {
	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	session := lox.NewSession(os.Stdout, os.Stderr)
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		if line == "exit" {
			return 0
		}
		if line == "" {
			continue
		}

		session.RunREPL(line)
		ln.AppendHistory(line)
	}
}
