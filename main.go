package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"payroll-engine/internal/baremes"
	"payroll-engine/internal/config"
	"payroll-engine/internal/engine"
	"payroll-engine/internal/handler"
	"payroll-engine/internal/logging"
	"payroll-engine/internal/model"
	"payroll-engine/internal/model/payerr"
	"payroll-engine/internal/sources"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitInput   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "usage: payroll-engine <serve|compute> [args]")
		return exitInput
	}

	switch args[0] {
	case "serve":
		return serve(args[1:], stderr)
	case "compute":
		return compute(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown subcommand: %s\n", args[0])
		return exitInput
	}
}

func setup(configPath string, stderr io.Writer) (config.Config, func(), bool) {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return config.Config{}, nil, false
	}
	_, done, err := logging.Install(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return config.Config{}, nil, false
	}
	return cfg, done, true
}

func serve(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "optional YAML config file")
	if err := fs.Parse(args); err != nil {
		return exitInput
	}

	cfg, done, ok := setup(*configPath, stderr)
	if !ok {
		return exitInput
	}
	defer done()
	logger := zap.L()

	h := handler.New(baremes.NewRegistry(cfg.TablesDir))
	server := &fasthttp.Server{
		Handler:      h.Serve,
		Name:         "payroll-engine",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("payroll engine listening", zap.String("port", cfg.Port), zap.String("tables", cfg.TablesDir))
		errCh <- server.ListenAndServe(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return exitFailure
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		if err := server.Shutdown(); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
			return exitFailure
		}
	}
	return exitOK
}

func compute(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("compute", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  string
		root        string
		tablesDir   string
		employee    string
		year, month int
		writeCumuls bool
	)
	fs.StringVar(&configPath, "config", "", "optional YAML config file")
	fs.StringVar(&root, "root", "", "data directory (defaults to data_dir)")
	fs.StringVar(&tablesDir, "tables", "", "rule tables directory (defaults to tables_dir, or <root>/baremes with --root)")
	fs.StringVar(&employee, "employee", "", "employee folder name under employes/")
	fs.IntVar(&year, "year", 0, "year")
	fs.IntVar(&month, "month", 0, "month 1-12")
	fs.BoolVar(&writeCumuls, "write-cumuls", false, "write cumuls_MM.json for the computed month")
	if err := fs.Parse(args); err != nil {
		return exitInput
	}
	if employee == "" || year == 0 || month < 1 || month > 12 {
		fmt.Fprintln(stderr, "compute requires --employee, --year and --month (1-12)")
		return exitInput
	}

	cfg, done, ok := setup(configPath, stderr)
	if !ok {
		return exitInput
	}
	defer done()

	if tablesDir == "" {
		tablesDir = cfg.TablesDir
		if root != "" {
			tablesDir = filepath.Join(root, "baremes")
		}
	}
	if root == "" {
		root = cfg.DataDir
	}

	ym := model.YearMonth{Year: year, Month: month}
	src := sources.NewDirSource(root, baremes.NewRegistry(tablesDir))
	resp := engine.Run(src, employee, ym)

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "encode: %v\n", err)
		return exitFailure
	}
	fmt.Fprintln(stdout, string(out))

	if f := resp.CalculationResult.Error; f != nil {
		if payerr.IsInputKind(payerr.Kind(f.Kind)) {
			return exitInput
		}
		return exitFailure
	}

	if writeCumuls {
		if err := src.WriteCumuls(employee, ym, resp.CalculationResult.Cumuls); err != nil {
			zap.L().Error("writing cumuls failed", zap.Error(err))
			return exitFailure
		}
	}
	return exitOK
}
