package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	slate "github.com/slate-lang/slate"
)

const (
	appName     = "slate"
	historyFile = ".slate_history"
	promptMain  = "==> "
)

var banner = fmt.Sprintf("Slate %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", slate.Version)

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }
func blue(s string) string  { return "\x1b[94m" + s + "\x1b[0m" }

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	switch cmd {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl(os.Args[2:]))
	case "version":
		fmt.Println(slate.Version)
		return
	case "-h", "--help", "help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, cmd)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`Slate %s (built %s)

Usage:
  %s run <file.sl>      Run a script.
  %s repl               Start the REPL.
  %s version            Print the compiled version

`, slate.Version, slate.BuildDate, appName, appName, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.sl>\n", appName)
		return 2
	}

	file := args[0]
	src, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read %s: %v\n", appName, file, err)
		return 1
	}

	sess := slate.NewSession()
	block, rep := sess.Parse(string(src))
	if rep.HadError() {
		for _, d := range rep.Diagnostics() {
			fmt.Fprintln(os.Stderr, red(d.Render(string(src))))
		}
		return 1
	}

	prog, err := sess.Build(block)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(slate.WrapErrorWithSource(err, string(src)).Error()))
		return 1
	}
	if _, err := prog.Run(); err != nil {
		fmt.Fprintln(os.Stderr, red(slate.WrapErrorWithSource(err, string(src)).Error()))
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func cmdRepl(_ []string) int {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	sess := slate.NewSession()
	timing := false

	for {
		code, err := ln.Prompt(promptMain)
		if errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return 1
		}

		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, ":") {
			switch strings.ToLower(trimmed) {
			case ":quit":
				return 0
			case ":time":
				timing = !timing
				if timing {
					fmt.Println("timing on")
				} else {
					fmt.Println("timing off")
				}
			default:
				fmt.Printf("unknown command. Type :quit to exit.\n")
			}
			continue
		}

		ln.AppendHistory(code)

		// Bare expressions get an implicit trailing ';' so the echo path
		// works without ceremony.
		src := code
		if !strings.HasSuffix(trimmed, ";") {
			src = code + ";"
		}

		start := time.Now()
		block, rep := sess.Parse(src)
		if rep.HadError() {
			for _, d := range rep.Diagnostics() {
				fmt.Fprintln(os.Stderr, red(d.Render(src)))
			}
			continue
		}

		prog, err := sess.Build(block)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(slate.WrapErrorWithSource(err, src).Error()))
			continue
		}
		v, err := prog.Run()
		if err != nil {
			fmt.Fprintln(os.Stderr, red(slate.WrapErrorWithSource(err, src).Error()))
			continue
		}
		elapsed := time.Since(start)

		if prog.ResultType() != slate.TypeVoid {
			fmt.Println(blue(slate.FormatValue(v)) + " " + green(": "+prog.ResultType().String()))
		}
		if timing {
			fmt.Println(green(fmt.Sprintf("(%s)", elapsed)))
		}
	}
}
