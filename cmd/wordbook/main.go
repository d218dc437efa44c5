// Package main is the entry point for the wordbook tool.
//
// wordbook serves a vocabulary review set kept in two Notion databases, words
// and example sentences. It lists what is not yet mastered and records review
// progress back into Notion. Configuration is read from CLI flags, a YAML
// file (see the schema command) and, for the Notion token, the environment
// or a .env file next to the configuration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/maruel/wordbook/internal/config"
	"github.com/maruel/wordbook/internal/notion"
	"github.com/maruel/wordbook/internal/wordbook"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "wordbook: %v\n", err)
		os.Exit(1)
	}
}

const usage = `usage: wordbook [flags] <command> [args]

Commands:
  serve                      run the HTTP API
  words [-section N] [-json] list the words not yet mastered
  sentences [-q text] [-json]
                             list the sentences with unmastered words
  sentence <id>...           print example sentence texts
  set-status <id> <status>   set a word's status
  check                      verify the token and both databases
  schema                     print the config file JSON Schema
  version                    print version and exit

Flags:
`

func mainImpl() error {
	configPath := flag.String("config", config.DefaultPath, "Configuration file")
	token := flag.String("token", "", "Notion integration token (default: $"+config.TokenEnv+" or .env next to -config)")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("missing command")
	}

	level, err := parseLevel(*logLevel)
	if err != nil {
		return err
	}
	initLogger(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "version":
		printVersion()
		return nil
	case "schema":
		return cmdSchema(args)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.Getenv)
	a := &app{cfg: cfg, configPath: *configPath, token: *token}
	switch cmd {
	case "serve":
		return a.serve(ctx, stop, args)
	case "words":
		return a.words(ctx, args)
	case "sentences":
		return a.sentences(ctx, args)
	case "sentence":
		return a.sentence(ctx, args)
	case "set-status":
		return a.setStatus(ctx, args)
	case "check":
		return a.check(ctx, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid -log-level %q", s)
	}
	return l, nil
}

func initLogger(level slog.Level) {
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000", // Like time.TimeOnly plus milliseconds.
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			skip := false
			switch t := a.Value.Any().(type) {
			case string:
				skip = t == ""
			case bool:
				skip = !t
			case int64:
				skip = t == 0
			case float64:
				skip = t == 0
			case time.Time:
				skip = t.IsZero()
			case time.Duration:
				skip = t == 0
			case nil:
				skip = true
			}
			if skip {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)
}

// app holds what every Notion-backed command needs.
type app struct {
	cfg        *config.Config
	configPath string
	token      string
}

func (a *app) newClient() (*notion.Client, error) {
	tok, err := config.Token(a.token, os.Getenv, filepath.Dir(a.configPath))
	if err != nil {
		return nil, err
	}
	return notion.NewClient(tok, a.cfg.NotionOptions()), nil
}

func (a *app) newService() (*wordbook.Service, error) {
	cols, err := a.cfg.Collections()
	if err != nil {
		return nil, err
	}
	connect := func() (wordbook.Upstream, error) {
		c, err := a.newClient()
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return wordbook.NewService(connect, wordbook.NewCache(nil, a.cfg.Cache.TTL), cols, a.cfg.Cache.SentenceLookupCap), nil
}

func printVersion() {
	version, goVersion, revision, dirty := getBuildInfo()
	fmt.Printf("wordbook %s\n", version)
	fmt.Printf("  Go version: %s\n", goVersion)
	fmt.Printf("  Revision:   %s\n", revision)
	if dirty {
		fmt.Printf("  Modified:   true\n")
	}
}

func getBuildInfo() (version, goVersion, revision string, dirty bool) {
	version = "unknown"
	goVersion = "unknown"
	revision = "unknown"
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	version = info.Main.Version
	if version == "" || version == "(devel)" {
		version = "dev"
	}
	goVersion = info.GoVersion
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	return
}

// watchExecutable watches the current executable for modifications and calls
// stop to trigger graceful shutdown when detected. This enables seamless
// restarts during development.
func watchExecutable(ctx context.Context, stop context.CancelFunc) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(exe); err != nil {
		_ = w.Close()
		return err
	}
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Chmod) {
					slog.InfoContext(ctx, "Executable modified, initiating shutdown")
					stop()
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.WarnContext(ctx, "Error watching executable", "err", err)
			}
		}
	}()
	return nil
}

// parseFlags parses a subcommand's flags, rejecting unexpected positional
// arguments when maxArgs is zero.
func parseFlags(fs *flag.FlagSet, args []string, maxArgs int) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if maxArgs == 0 && fs.NArg() > 0 {
		return fmt.Errorf("unknown arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}
