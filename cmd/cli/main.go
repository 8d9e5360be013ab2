package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"outcomelab/adapters/glm"
	"outcomelab/adapters/postgres"
	"outcomelab/adapters/tabular"
	"outcomelab/app"
	"outcomelab/internal"
	"outcomelab/internal/config"
	"outcomelab/ports"
)

func main() {
	// Optional .env for local runs; real env vars win.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "outcomelab",
		Short: "One-shot binary-outcome analysis reports over tabular datasets",
	}
	rootCmd.AddCommand(newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var dataFile string
	var outcomeColumn string
	var outputDir string
	var seed int64
	var forestTrees int
	var lassoLambda float64

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full analysis pipeline once and render the report",
		Long: `Load a CSV/XLSX dataset with a binary outcome column, clean and impute it,
select predictors by backward stepwise elimination over a logistic model
(AIC), fit companion tree/forest/lasso models, and write a markdown/HTML
report.

Example: outcomelab analyze --data cohort.csv --outcome outcome --out ./report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags override the environment so .env defaults still apply.
			if dataFile != "" {
				os.Setenv("DATA_FILE", dataFile)
			}
			if outcomeColumn != "" {
				os.Setenv("OUTCOME_COLUMN", outcomeColumn)
			}
			if outputDir != "" {
				os.Setenv("OUTPUT_DIR", outputDir)
			}
			if cmd.Flags().Changed("seed") {
				os.Setenv("SEED", fmt.Sprint(seed))
			}
			if cmd.Flags().Changed("forest-trees") {
				os.Setenv("FOREST_TREES", fmt.Sprint(forestTrees))
			}
			if cmd.Flags().Changed("lasso-lambda") {
				os.Setenv("LASSO_LAMBDA", fmt.Sprint(lassoLambda))
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := internal.NewDefaultLogger()

			var archive ports.RunArchive
			if cfg.Database.URL != "" {
				archive, err = postgres.NewRunArchive(cfg.Database.URL)
				if err != nil {
					return err
				}
			}

			service := app.NewReportService(
				cfg,
				tabular.NewReader(cfg.Data.File),
				glm.NewFitter(),
				archive,
				logger,
			)

			summary, err := service.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("run %s finished in %s\n", summary.RunID, summary.Duration().Round(time.Millisecond))
			fmt.Printf("AIC %.3f -> %.3f, %d predictor(s) retained\n",
				summary.BaselineScore, summary.FinalScore, len(summary.Selected))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "Path to the CSV/XLSX dataset (or DATA_FILE)")
	cmd.Flags().StringVar(&outcomeColumn, "outcome", "", "Binary outcome column name (or OUTCOME_COLUMN)")
	cmd.Flags().StringVar(&outputDir, "out", "", "Report output directory (default ./report)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the forest")
	cmd.Flags().IntVar(&forestTrees, "forest-trees", 200, "Number of trees in the random forest")
	cmd.Flags().Float64Var(&lassoLambda, "lasso-lambda", 0.05, "L1 penalty weight")

	return cmd
}
