package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/titivuk/golox/config"
	"github.com/titivuk/golox/lox"
)

const appName = "golox"

func red(s string) string { return "\x1b[31m" + s + "\x1b[0m" }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet(appName, flag.ContinueOnError)
	fset.SetOutput(stderr)
	configPath := fset.String("config", "", "path to a TOML config file (default ./"+config.FileName+")")
	logLevel := fset.String("log-level", "", "log level: debug, info, warn, error")
	noColor := fset.Bool("no-color", false, "disable colored diagnostics in the REPL")
	dumpTokens := fset.Bool("tokens", false, "print the tokens of the script instead of running it")
	fset.Usage = func() {
		fmt.Fprintf(stderr, "Usage: %s [flags] [script]\n", appName)
		fset.PrintDefaults()
	}

	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return lox.ExitOK
		}
		return lox.ExitUsage
	}
	if fset.NArg() > 1 {
		fset.Usage()
		return lox.ExitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return lox.ExitUsage
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *noColor {
		cfg.REPL.Color = false
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return lox.ExitUsage
	}

	if fset.NArg() == 1 {
		return runFile(fset.Arg(0), *dumpTokens, stdout, stderr, logger)
	}
	return runPrompt(cfg.REPL, stdout, stderr, logger)
}

func newLogger(c config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := c.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func runFile(path string, dumpTokens bool, stdout, stderr io.Writer, logger *slog.Logger) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return lox.ExitUsage
	}

	runner := lox.NewRunner(stdout, stderr, lox.WithLogger(logger))

	if dumpTokens {
		for _, tok := range runner.Tokens(string(src)) {
			fmt.Fprintln(stdout, tok.Display())
		}
		return lox.ExitOK
	}

	status := runner.Run(string(src))
	logger.Debug("script finished", "path", path, "status", status)
	return status.ExitCode()
}

// runPrompt reads and runs one line at a time. Errors on one line are
// reported and forgotten; globals survive.
func runPrompt(c config.REPLConfig, stdout, stderr io.Writer, logger *slog.Logger) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath(c.HistoryFile)
	if histPath != "" {
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
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	opts := []lox.Option{lox.WithLogger(logger)}
	if c.Color {
		opts = append(opts, lox.WithDiagnosticColor(red))
	}
	runner := lox.NewRunner(stdout, stderr, opts...)

	for {
		line, err := ln.Prompt(c.Prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(stdout)
			return lox.ExitOK
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return lox.ExitUsage
		}

		if strings.TrimSpace(line) == ":quit" {
			return lox.ExitOK
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)

		status := runner.Run(line)
		logger.Debug("line finished", "status", status)
		runner.Reset()
	}
}

func historyPath(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, name)
}
