package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joseph-ayodele/credit-audit/internal/bootstrap"
	"github.com/joseph-ayodele/credit-audit/internal/common"
	"github.com/joseph-ayodele/credit-audit/internal/entity"
	repo "github.com/joseph-ayodele/credit-audit/internal/repository"
)

const usage = `usage: credit-audit <command> [flags]

commands:
  extract   extract structured fields from a PDF or image report
  analyze   detect violations in a report document or structured report JSON
  strategy  build a dispute plan from a violations JSON array
  export    write an XLSX audit workbook for a stored or saved result
  batch     process every report in a directory and export a summary workbook

run "credit-audit <command> -h" for command flags
`

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type env struct {
	cfg    *common.Config
	logger *slog.Logger
}

func main() {
	if len(os.Args) < 2 {
		printError(usage)
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	// Logs go to stderr so stdout carries only command output.
	e := env{cfg: cfg, logger: bootstrap.Logger(os.Stderr, cfg)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	commands := map[string]func(context.Context, env, []string) error{
		"extract":  runExtract,
		"analyze":  runAnalyze,
		"strategy": runStrategy,
		"export":   runExport,
		"batch":    runBatch,
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		printError("unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err := run(ctx, e, os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		printError("Error: %v\n", err)
		// Bad input exits 2, like a usage error.
		if common.IsValidation(err) || errors.Is(err, common.ErrInvalidInput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// dbFlags registers the storage flags shared by commands that touch the result store.
type dbFlags struct {
	driver *string
	dsn    *string
}

func addDBFlags(fs *flag.FlagSet, cfg *common.Config) dbFlags {
	return dbFlags{
		driver: fs.String("db", cfg.Database.Driver, "result store driver: postgres or sqlite"),
		dsn:    fs.String("dsn", cfg.Database.DSN, "database DSN (sqlite defaults to file:credit-audit.db)"),
	}
}

func (f dbFlags) open(ctx context.Context, e env) (*repo.Store, error) {
	dbc := e.cfg.Database
	dbc.Driver, dbc.DSN = *f.driver, *f.dsn
	if dbc.Driver == repo.DriverPostgres && dbc.DSN == "" {
		return nil, fmt.Errorf("-dsn or DB_URL is required for postgres: %w", common.ErrInvalidInput)
	}
	store, err := repo.Open(ctx, dbc, e.logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func clientFlags(fs *flag.FlagSet) (id, name *string) {
	id = fs.String("client-id", "", "client id; a dispute plan is built only when set")
	name = fs.String("client-name", "", "client full name")
	return id, name
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func client(id, name string) entity.Client {
	return entity.Client{ID: id, FullName: name}
}
