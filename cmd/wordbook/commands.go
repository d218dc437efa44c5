package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/maruel/wordbook/internal/config"
	"github.com/maruel/wordbook/internal/notion"
	"github.com/maruel/wordbook/internal/server"
	"github.com/maruel/wordbook/internal/wordbook"
)

func (a *app) serve(ctx context.Context, stop context.CancelFunc, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	httpAddr := fs.String("http", a.cfg.HTTP.Addr, "Address to listen on (e.g., localhost:8080, :8080)")
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	svc, err := a.newService()
	if err != nil {
		return err
	}

	// Watch own executable for modifications (for development restarts)
	if err := watchExecutable(ctx, stop); err != nil {
		return fmt.Errorf("failed to watch executable: %w", err)
	}
	err = config.Watch(ctx, a.configPath, func(cfg *config.Config) {
		cfg.ApplyEnv(os.Getenv)
		cols, err := cfg.Collections()
		if err != nil {
			slog.WarnContext(ctx, "Ignoring config", "err", err)
			return
		}
		svc.SetCollections(cols)
	})
	if err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}

	version, _, _, _ := getBuildInfo()
	httpServer := &http.Server{
		Addr:              *httpAddr,
		Handler:           server.NewRouter(svc, version),
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Starting server", "addr", *httpAddr, "version", version)
		serverErr <- httpServer.ListenAndServe()
	}()

	// Wait for either context cancellation or server error
	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.InfoContext(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		slog.InfoContext(ctx, "Server stopped")
	}
	return nil
}

func (a *app) words(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("words", flag.ContinueOnError)
	section := fs.Int("section", -1, "Only list this section")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	svc, err := a.newService()
	if err != nil {
		return err
	}
	words, err := svc.GetWords(ctx)
	if err != nil {
		return err
	}
	if *section >= 0 {
		words = wordbook.FilterSection(words, *section)
	}
	if *asJSON {
		return printJSON(os.Stdout, words)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tNO\tWORD\tSTATUS\tPAGE")
	for i := range words {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", optInt(words[i].Section), optInt(words[i].SequenceNo), words[i].Text, words[i].Status, words[i].PageID)
	}
	return w.Flush()
}

func (a *app) sentences(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sentences", flag.ContinueOnError)
	query := fs.String("q", "", "Only list sentences whose unmastered words contain this text")
	asJSON := fs.Bool("json", false, "Print JSON")
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	svc, err := a.newService()
	if err != nil {
		return err
	}
	sentences, err := svc.GetSentences(ctx, *query)
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(os.Stdout, sentences)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tNO\tSENTENCE\tUNMASTERED")
	for i := range sentences {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", optInt(sentences[i].Section), optInt(sentences[i].SequenceNo), sentences[i].Text, sentences[i].UnmasteredWords)
	}
	return w.Flush()
}

func (a *app) sentence(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sentence", flag.ContinueOnError)
	if err := parseFlags(fs, args, -1); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("sentence: at least one page id is required")
	}
	svc, err := a.newService()
	if err != nil {
		return err
	}
	for _, id := range fs.Args() {
		text, err := svc.GetSentenceText(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", id, text)
	}
	return nil
}

func (a *app) setStatus(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("set-status", flag.ContinueOnError)
	if err := parseFlags(fs, args, -1); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("set-status: expected <page-id> <status>")
	}
	status, err := wordbook.ParseStatus(fs.Arg(1))
	if err != nil {
		return err
	}
	svc, err := a.newService()
	if err != nil {
		return err
	}
	if err := svc.UpdateWordStatus(ctx, fs.Arg(0), status); err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", fs.Arg(0), status)
	return nil
}

func (a *app) check(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	c, err := a.newClient()
	if err != nil {
		return err
	}
	users, err := c.ListUsersAll(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	fmt.Printf("token ok: %d users visible\n", len(users))
	for _, db := range []struct{ name, id string }{
		{"words", a.cfg.Words.DatabaseID},
		{"sentences", a.cfg.Sentences.DatabaseID},
	} {
		if _, err := c.QueryDatabase(ctx, db.id, &notion.QueryOptions{PageSize: 1}); err != nil {
			return fmt.Errorf("%s database %s: %w", db.name, db.id, err)
		}
		fmt.Printf("%s database ok\n", db.name)
	}
	return nil
}

func cmdSchema(args []string) error {
	fs := flag.NewFlagSet("schema", flag.ContinueOnError)
	if err := parseFlags(fs, args, 0); err != nil {
		return err
	}
	data, err := config.JSONSchema()
	if err != nil {
		return err
	}
	_, err = fmt.Printf("%s\n", data)
	return err
}

func printJSON(w io.Writer, v any) error {
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}

func optInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
