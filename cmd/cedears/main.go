// Package main is the entry point of the Cedears valuation pipeline.
// It values a Balanz "resultados por lotes" workbook against current BYMA
// quotes and dollar rates and stores the ledger and daily history snapshots.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/clients/dolarapi"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/clients/yahoo"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/config"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/database"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/pipeline"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/quotes"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/snapshots"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/valuation"
	"github.com/proyectofinalunicorn/Proyecto-Final/internal/workbook"
	"github.com/proyectofinalunicorn/Proyecto-Final/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "cedears",
		Usage: "Value a Balanz Cedears report and store the daily snapshots",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db-driver", Usage: "postgres or sqlite (overrides DB_DRIVER)"},
			&cli.StringFlag{Name: "sqlite-path", Usage: "SQLite file (overrides SQLITE_PATH)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides LOG_LEVEL)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Process a workbook end to end",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the .xlsx report",
						Required: true,
					},
					&cli.StringFlag{Name: "sheet", Usage: "Sheet name (overrides SHEET_NAME)"},
				},
				Action: runPipeline,
			},
			{
				Name:  "migrate",
				Usage: "Create the snapshot tables",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "reset-history",
						Usage: "Drop and recreate datos_historicos_cedears with its natural key (deletes all history)",
					},
				},
				Action: runMigrate,
			},
		},
	}
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load configuration: %w", err)
	}

	if v := c.String("db-driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := c.String("sqlite-path"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if c.IsSet("sheet") {
		cfg.SheetName = c.String("sheet")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)

	if err := cfg.Validate(); err != nil {
		return nil, log, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, log, nil
}

func openDatabase(cfg *config.Config) (*database.DB, error) {
	dsn, err := cfg.Database.DSN()
	if err != nil {
		return nil, err
	}
	return database.New(database.Config{
		Dialect: database.Dialect(cfg.Database.Driver),
		DSN:     dsn,
		Name:    cfg.Database.Name,
	})
}

func runPipeline(c *cli.Context) error {
	path := c.String("file")
	if err := workbook.CheckFormat(path); err != nil {
		fmt.Println(pipeline.UserMessage(err))
		return cli.Exit("", 1)
	}

	cfg, log, err := setup(c)
	if err != nil {
		return err
	}

	loader := workbook.NewLoader(cfg.SheetName, log)
	collector := quotes.NewCollector(yahoo.NewClient(cfg.Quotes.Suffix, cfg.Quotes.Timeout, log), cfg.Quotes.Delay, log)
	rates := dolarapi.NewClient(cfg.Rates.URL, cfg.Rates.Timeout, log)
	engine := valuation.NewEngine(collector, rates, log)

	// The connection is opened by the run's Ping, after the workbook loaded.
	store := snapshots.NewLazyRepository(func() (*database.DB, error) { return openDatabase(cfg) }, log)
	defer store.Close()

	svc := pipeline.NewService(loader, engine, store, log)
	res := svc.Run(c.Context, pipeline.Input{Path: path}, newLogProgress(log))

	fmt.Println(res.Message)
	if !res.Success {
		return cli.Exit("", 1)
	}
	if s := res.Summary; s != nil {
		fmt.Printf("Posiciones: %d | Histórico: %d nuevas, %d ya cargadas | Dólar oficial %.2f, MEP %.2f\n",
			s.Positions, s.HistoryInserted, s.HistorySkipped, s.Rates.Oficial, s.Rates.MEP)
	}
	return nil
}

func runMigrate(c *cli.Context) error {
	cfg, log, err := setup(c)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", pipeline.UserMessage(err), err)
	}
	defer db.Close()

	repo := snapshots.NewRepository(db, log)
	if err := repo.EnsureSchema(c.Context); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if c.Bool("reset-history") {
		if err := repo.ResetHistory(c.Context); err != nil {
			return fmt.Errorf("failed to reset history table: %w", err)
		}
	}

	log.Info().Str("database", db.Name()).Msg("Schema ready")
	return nil
}
