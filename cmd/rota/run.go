package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/paiban/shiftweek/internal/config"
	"github.com/paiban/shiftweek/internal/database"
	"github.com/paiban/shiftweek/internal/metrics"
	"github.com/paiban/shiftweek/internal/repository"
	"github.com/paiban/shiftweek/pkg/export"
	"github.com/paiban/shiftweek/pkg/importer"
	"github.com/paiban/shiftweek/pkg/logger"
	"github.com/paiban/shiftweek/pkg/model"
	"github.com/paiban/shiftweek/pkg/scheduler/solver"
	"github.com/paiban/shiftweek/pkg/stats"
	"github.com/paiban/shiftweek/pkg/validator"
)

// 退出码
const (
	exitOK           = 0
	exitError        = 1
	exitUnderstaffed = 2
)

// Options 命令行选项
type Options struct {
	Input   string
	Seed    int64
	CSV     string
	XLSX    string
	Stats   bool
	Quiet   bool
	Strict  bool
	Archive bool
	DB      config.DatabaseConfig

	// MetricsFile 运行结束后写出 Prometheus 文本格式指标，供 node_exporter textfile 采集
	MetricsFile string
}

// run 执行一次排班，返回退出码
// 人手不足不算失败，除非指定了 Strict
func run(ctx context.Context, opts Options, stdout, stderr io.Writer) int {
	code := schedule(ctx, opts, stdout, stderr)

	if opts.MetricsFile != "" {
		if err := writeMetrics(opts.MetricsFile); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			if code == exitOK {
				code = exitError
			}
		}
	}
	return code
}

func schedule(ctx context.Context, opts Options, stdout, stderr io.Writer) int {
	imported, err := importer.LoadFile(opts.Input)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	for _, w := range imported.Warnings {
		fmt.Fprintf(stderr, "Warning: %s\n", w)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	reporter := &validator.CollectReporter{}
	engine := solver.NewEngine(solver.WithSeed(seed), solver.WithReporter(reporter))

	result, err := engine.Run(ctx, imported.Roster)
	if err != nil {
		metrics.RecordScheduleRun(metrics.RunSummary{Source: "cli", Status: "error"})
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	roster := imported.Roster

	if !opts.Quiet {
		if err := export.WriteGrid(stdout, roster); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
	}

	for _, n := range reporter.Notices {
		fmt.Fprintln(stdout, n.String())
	}
	if result.Success {
		fmt.Fprintln(stdout, "\nAll shifts properly staffed!")
	} else {
		fmt.Fprintln(stdout, "\nSome shifts understaffed - check warnings above")
	}

	summary := stats.Analyze(roster)
	if opts.Stats {
		fmt.Fprintf(stdout, "\nSeed: %d\n", result.Seed)
		fmt.Fprint(stdout, summary.Report())
	}

	status := "staffed"
	if !result.Success {
		status = "understaffed"
	}
	metrics.RecordScheduleRun(metrics.RunSummary{
		Source:       "cli",
		Status:       status,
		Duration:     result.Duration,
		Preference:   result.Statistics.PreferenceAssignments,
		FairFill:     result.Statistics.FairFillAssignments,
		Resolver:     result.Statistics.ResolverAssignments,
		Understaffed: len(reporter.Notices),
		FillRate:     summary.FillRate.InexactFloat64(),
	})

	if err := writeExports(opts, roster); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if opts.Archive {
		if err := archiveRun(ctx, opts.DB, result, summary, roster); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitError
		}
		fmt.Fprintf(stdout, "Archived run %s\n", result.RunID)
	}

	if opts.Strict && !result.Success {
		return exitUnderstaffed
	}
	return exitOK
}

// writeExports 写出 CSV 和 Excel 文件
func writeExports(opts Options, roster *model.Roster) error {
	if opts.CSV != "" {
		if err := writeFile(opts.CSV, roster, export.WriteCSV); err != nil {
			return err
		}
		logger.Info().Str("path", opts.CSV).Msg("已导出 CSV")
	}
	if opts.XLSX != "" {
		if err := writeFile(opts.XLSX, roster, export.WriteXLSX); err != nil {
			return err
		}
		logger.Info().Str("path", opts.XLSX).Msg("已导出 Excel")
	}
	return nil
}

func writeFile(path string, roster *model.Roster, write func(io.Writer, *model.Roster) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 %s 失败: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("关闭 %s 失败: %w", path, cerr)
		}
	}()

	if err := write(f, roster); err != nil {
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return nil
}

// writeMetrics 先写临时文件再改名，采集方不会读到半个文件
func writeMetrics(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("创建 %s 失败: %w", tmp, err)
	}
	metrics.GetRegistry().Expose(f)
	if err := f.Close(); err != nil {
		return fmt.Errorf("关闭 %s 失败: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("写入指标文件失败: %w", err)
	}
	logger.Info().Str("path", path).Msg("已写出指标")
	return nil
}

// archiveRun 将排班写入数据库
func archiveRun(ctx context.Context, cfg config.DatabaseConfig, result *solver.Result, summary *stats.Summary, roster *model.Roster) error {
	db, err := database.New(ctx, &cfg)
	if err != nil {
		metrics.RecordArchive(false)
		return err
	}
	defer db.Close()

	err = repository.Archive(ctx, db,
		repository.NewRun(result, summary),
		repository.NewSlotRecords(export.Rows(roster)),
	)
	metrics.RecordArchive(err == nil)
	return err
}
