// lca - material lifecycle analysis CLI
//
// Usage:
//   lca analyze --input process.json [--type full] [--format table]
//   lca gaps --input process.json
//   lca predict --input process.json
//   lca feedback --parameter recycling_rate --predicted 0.62 --actual 0.70
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/urfave/cli/v2"

	"material-lca/internal/artifacts"
	"material-lca/internal/engine"
	"material-lca/internal/feedback"
	"material-lca/internal/policy"
	"material-lca/internal/predict"
	"material-lca/pkg/api"
	"material-lca/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
)

// Exit codes for CI gating.
const (
	exitOK           = 0
	exitError        = 1
	exitPolicyDenied = 2
)

func main() {
	app := &cli.App{
		Name:    "lca",
		Usage:   "Analysis and gap-filling engine for industrial material flows",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "artifacts",
				Value:   "models",
				Usage:   "Directory holding predictor artifacts",
				EnvVars: []string{"ARTIFACTS_DIR"},
			},
			&cli.StringFlag{
				Name:    "policies",
				Value:   "policies",
				Usage:   "Directory holding OPA policies",
				EnvVars: []string{"POLICIES_DIR"},
			},
		},

		Commands: []*cli.Command{
			analyzeCommand(),
			gapsCommand(),
			predictCommand(),
			feedbackCommand(),
			performanceCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
}

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Run a full analysis over a process description",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to process description JSON",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Value:   string(api.AnalysisFull),
				Usage:   "Analysis type (environmental, circularity, full)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
			&cli.BoolFlag{
				Name:  "skip-policy",
				Usage: "Skip OPA policy evaluation",
			},
		},
		Action: runAnalyze,
	}
}

func runAnalyze(c *cli.Context) error {
	ctx := context.Background()

	raw, err := readProcess(c.String("input"))
	if err != nil {
		return err
	}
	analysisType := api.AnalysisType(c.String("type"))
	if !analysisType.Valid() {
		return fmt.Errorf("unknown analysis type: %s", c.String("type"))
	}

	eng, err := buildEngine(ctx, c)
	if err != nil {
		return err
	}

	result, err := eng.Analyze(ctx, raw, analysisType)
	if err != nil {
		return err
	}

	var verdict *policy.Result
	if !c.Bool("skip-policy") {
		evaluator := policy.NewEvaluator(c.String("policies"))
		verdict, err = evaluator.Evaluate(ctx, result)
		if err != nil {
			return fmt.Errorf("policy evaluation failed: %w", err)
		}
	}

	if c.String("format") == "json" {
		if err := outputJSON(map[string]any{"result": result, "policy": verdict}); err != nil {
			return err
		}
	} else {
		outputResultTable(result, verdict)
	}

	if verdict != nil && !verdict.Passed {
		return cli.Exit("policy denied the analysis result", exitPolicyDenied)
	}
	return nil
}

func gapsCommand() *cli.Command {
	return &cli.Command{
		Name:  "gaps",
		Usage: "List missing or suspect parameters without filling them",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Path to process description JSON", Required: true},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: string(api.AnalysisFull), Usage: "Analysis type"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "Output format (table, json)"},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			raw, err := readProcess(c.String("input"))
			if err != nil {
				return err
			}
			eng, err := buildEngine(ctx, c)
			if err != nil {
				return err
			}
			gapList, err := eng.DetectGaps(ctx, raw, api.AnalysisType(c.String("type")))
			if err != nil {
				return err
			}
			if c.String("format") == "json" {
				return outputJSON(gapList)
			}
			if len(gapList) == 0 {
				fmt.Println("No gaps detected.")
				return nil
			}
			fmt.Printf("%-28s %-14s %-8s %s\n", "PARAMETER", "CATEGORY", "PRIORITY", "DETAIL")
			for _, gap := range gapList {
				fmt.Printf("%-28s %-14s %-8d %s\n", gap.Parameter, gap.Category, gap.Priority, gap.Detail)
			}
			return nil
		},
	}
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:  "predict",
		Usage: "Fill detected gaps with estimates and show their provenance",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Path to process description JSON", Required: true},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: string(api.AnalysisFull), Usage: "Analysis type"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table", Usage: "Output format (table, json)"},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			raw, err := readProcess(c.String("input"))
			if err != nil {
				return err
			}
			eng, err := buildEngine(ctx, c)
			if err != nil {
				return err
			}
			gapList, filled, err := eng.Predict(ctx, raw, api.AnalysisType(c.String("type")))
			if err != nil {
				return err
			}
			if c.String("format") == "json" {
				return outputJSON(map[string]any{"gaps": gapList, "parameters": filled})
			}
			names := make([]string, 0, len(filled))
			for name := range filled {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Printf("%-28s %12s %-10s %-10s %s\n", "PARAMETER", "VALUE", "METHOD", "CONF", "PREDICTOR")
			for _, name := range names {
				p := filled[name]
				fmt.Printf("%-28s %12.4g %-10s %-10.2f %s\n", p.Name, p.Value, p.Method, p.Confidence, p.Predictor)
			}
			return nil
		},
	}
}

func feedbackCommand() *cli.Command {
	return &cli.Command{
		Name:  "feedback",
		Usage: "Submit a confirmed actual for a previously predicted parameter",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "parameter", Aliases: []string{"p"}, Usage: "Parameter name", Required: true},
			&cli.Float64Flag{Name: "predicted", Usage: "Predicted value", Required: true},
			&cli.Float64Flag{Name: "actual", Usage: "Confirmed actual value", Required: true},
		},
		Action: func(c *cli.Context) error {
			ctx := context.Background()
			eng, err := buildEngine(ctx, c)
			if err != nil {
				return err
			}
			perf, err := eng.RecordFeedback(ctx, c.String("parameter"), c.Float64("predicted"), c.Float64("actual"), time.Now().UTC())
			if err != nil {
				return err
			}
			return outputJSON(perf)
		},
	}
}

func performanceCommand() *cli.Command {
	return &cli.Command{
		Name:      "performance",
		Usage:     "Show the accuracy aggregate for a predictor",
		ArgsUsage: "<predictor>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one predictor name")
			}
			ctx := context.Background()
			eng, err := buildEngine(ctx, c)
			if err != nil {
				return err
			}
			perf, err := eng.GetPerformance(ctx, c.Args().First())
			if err != nil {
				return err
			}
			return outputJSON(perf)
		},
	}
}

func buildEngine(ctx context.Context, c *cli.Context) (*engine.Engine, error) {
	adapter, err := predict.LoadAll(ctx, artifacts.NewLocalStore(c.String("artifacts")))
	if err != nil {
		return nil, fmt.Errorf("failed to load predictor artifacts: %w", err)
	}
	log := platform.InitLogger(platform.GetEnv("ENV", "production"))
	return engine.New(adapter, feedback.NewTracker(), engine.Options{Logger: log}), nil
}

func readProcess(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid process JSON: %w", err)
	}
	return raw, nil
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputResultTable(result *api.AnalysisResult, verdict *policy.Result) {
	fmt.Printf("Material: %s   Type: %s   Rating: %s\n", result.Material, result.AnalysisType, result.Rating)
	fmt.Printf("Overall confidence: %.2f", result.OverallConfidence)
	if result.LowConfidence {
		fmt.Print("  (low confidence)")
	}
	fmt.Println()
	fmt.Println()

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("%-28s %14s %-10s %-10s %s\n", "METRIC", "VALUE", "UNIT", "SOURCE", "CONF")
	for _, name := range names {
		m := result.Metrics[name]
		value := fmt.Sprintf("%.4g", m.Value)
		if m.Label != "" {
			value = m.Label
		}
		fmt.Printf("%-28s %14s %-10s %-10s %.2f\n", name, value, m.Unit, m.Source, m.Confidence)
	}

	if len(result.Gaps) > 0 {
		fmt.Println()
		fmt.Printf("Gaps filled: %d\n", len(result.Gaps))
	}
	if len(result.Recommendations) > 0 {
		fmt.Println()
		fmt.Println("Recommendations:")
		for _, rec := range result.Recommendations {
			fmt.Printf("  [%s] %s: %s (%s)\n", rec.Priority, rec.Category, rec.Action, rec.Impact)
		}
	}
	if verdict != nil {
		fmt.Println()
		status := "PASSED"
		if !verdict.Passed {
			status = "DENIED"
		}
		fmt.Printf("Policy: %s\n", status)
		for _, d := range verdict.Denials {
			fmt.Printf("  deny: %s\n", d)
		}
		for _, w := range verdict.Warnings {
			fmt.Printf("  warn: %s\n", w)
		}
	}
}
