// Command schedulerctl runs one optimisation solve from a JSON input file,
// without the HTTP gateway, for scripted or offline use.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ashgrove/schedcore/internal/dto"
	"github.com/ashgrove/schedcore/internal/engine"
	"github.com/ashgrove/schedcore/internal/intake"
)

func main() {
	inputPath := flag.String("input", "", "path to a JSON file containing {config, courses, instructors, rooms}")
	outputPath := flag.String("output", "", "path to write the JSON result to (default: stdout)")
	engineChoice := flag.String("engine", "", "override the input's engine choice: cp, evo, or auto")
	timeBudget := flag.Float64("time-budget", 0, "override the solver's time budget in seconds")
	fallback := flag.Bool("fallback-to-evo", false, "fall back to the evolutionary engine when the exact solver returns UNKNOWN")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "schedulerctl: -input is required")
		os.Exit(2)
	}

	raw, err := os.ReadFile(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "schedulerctl: read input: %v\n", err)
		os.Exit(1)
	}

	var req dto.OptimiseRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		fmt.Fprintf(os.Stderr, "schedulerctl: parse input: %v\n", err)
		os.Exit(1)
	}

	logr, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "schedulerctl: init logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync() //nolint:errcheck

	pm, err := intake.New(logr).Transform(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "schedulerctl: invalid input: %v\n", err)
		os.Exit(1)
	}

	opts := engine.Options{
		Engine:            engine.EngineChoice(req.Config.Engine),
		TimeBudgetSeconds: float64(req.Config.TimeBudgetSeconds),
		FallbackToEvo:     *fallback,
	}
	if *engineChoice != "" {
		opts.Engine = engine.EngineChoice(*engineChoice)
	}
	if *timeBudget > 0 {
		opts.TimeBudgetSeconds = *timeBudget
	}
	if opts.TimeBudgetSeconds <= 0 {
		opts.TimeBudgetSeconds = 300
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(opts.TimeBudgetSeconds*float64(time.Second))+30*time.Second)
	defer cancel()

	result, err := engine.New(logr).Optimise(ctx, pm, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "schedulerctl: solve failed: %v\n", err)
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "schedulerctl: encode result: %v\n", err)
		os.Exit(1)
	}

	if *outputPath == "" {
		fmt.Println(string(encoded))
		return
	}
	if err := os.WriteFile(*outputPath, encoded, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "schedulerctl: write output: %v\n", err)
		os.Exit(1)
	}
}
