// Package main provides the Born surrogate CLI.
//
// Usage:
//
//	born evaluate -config experiment.yaml -input params.csv -output solutions.csv
//	born train    -config experiment.yaml -input params.csv -output solutions.csv -model out/
//	born serve    -config experiment.yaml -model out/ -addr :50051
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/born-ml/surrogate/internal/config"
	"github.com/born-ml/surrogate/internal/serve"
	"github.com/born-ml/surrogate/internal/surrogate"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("Born surrogate %s\n", version)
	case "evaluate":
		err = runEvaluate(ctx, os.Args[2:])
	case "train":
		err = runTrain(ctx, os.Args[2:])
	case "serve":
		err = runServe(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "born %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Born surrogate - parametric surrogate models for Go")
	fmt.Fprintf(os.Stderr, "Version: %s\n\n", version)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  evaluate   Retrain a surrogate over several splits and log its errors")
	fmt.Fprintln(os.Stderr, "  train      Train one surrogate and save its checkpoints")
	fmt.Fprintln(os.Stderr, "  serve      Serve a saved surrogate over gRPC")
	fmt.Fprintln(os.Stderr, "  version    Show version")
}

// loadConfig reads path, or returns the defaults when path is empty.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runEvaluate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evaluate", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML experiment file (defaults when empty)")
	inputPath := fs.String("input", "", "CSV file of simulation parameters, one sample per row")
	outputPath := fs.String("output", "", "CSV file of solutions, one sample per row")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	input, output, err := loadDataset(*inputPath, *outputPath)
	if err != nil {
		return err
	}

	ev, closeLog, err := cfg.Evaluator()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeLog(); cerr != nil {
			log.Printf("close error log: %v", cerr)
		}
	}()

	if _, err := ev.RunExperiments(ctx, input, output); err != nil {
		return err
	}
	summaries, err := ev.Summaries()
	if err != nil {
		return err
	}
	for _, name := range []string{surrogate.CAEError, surrogate.SurrogateError} {
		fmt.Printf("%-16s %s\n", name, summaries[name])
	}
	return nil
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML experiment file (defaults when empty)")
	inputPath := fs.String("input", "", "CSV file of simulation parameters, one sample per row")
	outputPath := fs.String("output", "", "CSV file of solutions, one sample per row")
	modelDir := fs.String("model", "model", "directory for the checkpoints")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	input, output, err := loadDataset(*inputPath, *outputPath)
	if err != nil {
		return err
	}

	sc := cfg.Surrogate
	sc.Logger = cfg.Logger()
	m, err := surrogate.NewCAEFFNN(sc)
	if err != nil {
		return err
	}
	splitter, err := cfg.Splitter(0)
	if err != nil {
		return err
	}
	errs, err := m.TrainAndEvaluate(ctx, input, output, splitter)
	if err != nil {
		return err
	}
	for _, name := range m.ErrorNames() {
		fmt.Printf("%-16s %g\n", name, errs[name])
	}
	if err := m.Save(*modelDir); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", *modelDir)
	return nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "YAML experiment file (defaults when empty)")
	modelDir := fs.String("model", "model", "directory written by train")
	addr := fs.String("addr", ":50051", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		return err
	}
	m, err := surrogate.NewCAEFFNN(cfg.Surrogate)
	if err != nil {
		return err
	}
	if err := m.Load(*modelDir); err != nil {
		return err
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", *addr, err)
	}
	logger := cfg.Logger()
	if logger == nil {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return serve.Serve(ctx, lis, serve.NewServer(m, logger))
}
