// rota 命令行：读取偏好文件，生成并输出一周排班
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paiban/shiftweek/internal/config"
	"github.com/paiban/shiftweek/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var (
		input    = flag.String("input", cfg.Rota.Input, "Preference file (.txt, .csv or .xlsx)")
		seed     = flag.Int64("seed", cfg.Rota.Seed, "Random seed for fair-fill tie breaks (0 = time based)")
		csvOut   = flag.String("csv", "", "Write the schedule as CSV to this path")
		xlsxOut  = flag.String("xlsx", "", "Write the schedule as an Excel workbook to this path")
		showStat = flag.Bool("stats", false, "Print run statistics")
		quiet    = flag.Bool("quiet", false, "Do not print the schedule grid")
		archive  = flag.Bool("db", cfg.Database.Enabled, "Archive the schedule to PostgreSQL (DB_* env)")
		strict   = flag.Bool("strict", false, "Exit with status 2 when any shift is understaffed")
		logLevel = flag.String("log-level", cfg.App.LogLevel, "Log level: debug, info, warn, error, off")
		metricsF = flag.String("metrics-file", "", "Write Prometheus text metrics to this path after the run")
	)
	flag.Parse()

	logger.Init(logger.Config{
		Level:      *logLevel,
		Format:     cfg.App.LogFormat,
		Output:     "stderr",
		TimeFormat: time.RFC3339,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := Options{
		Input:   *input,
		Seed:    *seed,
		CSV:     *csvOut,
		XLSX:    *xlsxOut,
		Stats:   *showStat,
		Quiet:   *quiet,
		Strict:  *strict,
		Archive: *archive,
		DB:      cfg.Database,

		MetricsFile: *metricsF,
	}

	os.Exit(run(ctx, opts, os.Stdout, os.Stderr))
}
