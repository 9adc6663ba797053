package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/rivalhq/rival/openai"
	"github.com/rivalhq/rival/sqlite"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Analyze AnalyzeCmd `cmd:"" help:"Analyze competitor product or pricing pages."`
	List    ListCmd    `cmd:"" help:"List stored analysis reports."`
	Show    ShowCmd    `cmd:"" help:"Show a stored report as JSON."`
	Delete  DeleteCmd  `cmd:"" help:"Delete a stored report."`
	MCP     MCPCmd     `cmd:"" name:"mcp" help:"Serve the analysis pipeline over the Model Context Protocol on stdio."`
}

// Config holds environment-derived settings shared by all commands.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Headless   bool
	DBPath     string
	LogsDir    string
	ReportsDir string

	// RatePerSecond caps page fetches per second. Zero means unthrottled.
	RatePerSecond float64
}

// ConfigFromEnv reads configuration from the environment, applying
// defaults for anything unset.
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey:     os.Getenv("OPENAI_API_KEY"),
		BaseURL:    os.Getenv("OPENAI_BASE_URL"),
		Model:      os.Getenv("OPENAI_MODEL"),
		Headless:   true,
		DBPath:     os.Getenv("RIVAL_DB"),
		LogsDir:    os.Getenv("RIVAL_LOGS_DIR"),
		ReportsDir: os.Getenv("RIVAL_REPORTS_DIR"),
	}
	if cfg.Model == "" {
		cfg.Model = openai.DefaultModel
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "rival.db"
	}
	if cfg.LogsDir == "" {
		cfg.LogsDir = "logs"
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "reports"
	}
	if v := os.Getenv("RIVAL_HEADLESS"); v != "" {
		if headless, err := strconv.ParseBool(v); err == nil {
			cfg.Headless = headless
		}
	}
	if v := os.Getenv("RIVAL_RATE"); v != "" {
		if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
			cfg.RatePerSecond = r
		}
	}
	return cfg
}

// Dependencies carries the wiring each command needs.
type Dependencies struct {
	Ctx     context.Context
	Config  Config
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
	Version string
}

// OpenDB opens the report database, creating the schema if needed. The
// caller owns the returned DB and must close it.
func (d *Dependencies) OpenDB() (*sqlite.DB, *sqlite.ReportService, error) {
	db := sqlite.NewDB(d.Config.DBPath)
	if err := db.Open(); err != nil {
		return nil, nil, err
	}
	return db, sqlite.NewReportService(db), nil
}
