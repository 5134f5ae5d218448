package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cadencelearn/cadence/learning/curve"
	"github.com/cadencelearn/cadence/learning/difficulty"
	"github.com/cadencelearn/cadence/learning/observability/logging"
	"github.com/cadencelearn/cadence/learning/personalize"
)

var (
	flagUser      int32
	flagObjective string
	flagQuestion  string
	flagContext   string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()
		fmt.Println("migrations applied")
		return nil
	},
}

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Fit the forgetting curve for a user and print the parameters",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		analyzer := curve.NewAnalyzer(st.Reviews, nil, logging.ForComponent("curve"))
		params, err := analyzer.FitCurve(cmd.Context(), flagUser, flagObjective)
		if err != nil {
			return err
		}
		intervals, err := analyzer.AnalyzeRetentionByTimeInterval(cmd.Context(), flagUser)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"parameters": params, "intervals": intervals})
	},
}

var difficultyCmd = &cobra.Command{
	Use:   "difficulty",
	Short: "Difficulty calibration utilities",
}

var difficultyInitialCmd = &cobra.Command{
	Use:   "initial",
	Short: "Compute the initial difficulty for a user and objective",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		engine := difficulty.NewEngine(st.Responses, st.Questions, nil, logging.ForComponent("difficulty"))
		value, err := engine.CalculateInitialDifficulty(cmd.Context(), flagUser, flagObjective)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"difficulty": value})
	},
}

var difficultyDiscriminationCmd = &cobra.Command{
	Use:   "discrimination",
	Short: "Recompute and persist a question's discrimination index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		engine := difficulty.NewEngine(st.Responses, st.Questions, nil, logging.ForComponent("difficulty"))
		if err := engine.RefreshDiscrimination(cmd.Context(), flagQuestion); err != nil {
			return err
		}
		question, err := st.Questions.GetQuestion(cmd.Context(), flagQuestion)
		if err != nil {
			return err
		}
		return printJSON(question)
	},
}

var personalizeCmd = &cobra.Command{
	Use:   "personalize",
	Short: "Build the personalization config for a user and context",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		engine := personalize.NewEngine(st.Insights, st.LoadMetrics, nil)
		cfg := engine.Apply(cmd.Context(), flagUser, personalize.Context(flagContext))
		return printJSON(cfg)
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, cmd := range []*cobra.Command{curveCmd, difficultyInitialCmd, personalizeCmd} {
		cmd.Flags().Int32Var(&flagUser, "user", 0, "user id")
	}
	curveCmd.Flags().StringVar(&flagObjective, "objective", "", "objective id (empty for all)")
	difficultyInitialCmd.Flags().StringVar(&flagObjective, "objective", "", "objective id (empty for all)")
	difficultyDiscriminationCmd.Flags().StringVar(&flagQuestion, "question", "", "question id")
	personalizeCmd.Flags().StringVar(&flagContext, "context", "mission", "context: mission, content, assessment, session")

	difficultyCmd.AddCommand(difficultyInitialCmd, difficultyDiscriminationCmd)
	rootCmd.AddCommand(migrateCmd, curveCmd, difficultyCmd, personalizeCmd)
}
