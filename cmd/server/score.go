package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"appraisal/internal/domain/evaluation"
	"appraisal/internal/platform/config"
)

var (
	scoreCriteriaFile string
	scoreScoresFile   string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a set of raw criterion scores offline",
	Long: `Reads criteria and raw scores from YAML or JSON files and prints the weighted
percentage and rating band using the configured rating scale.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreCriteriaFile, "criteria", "", "Path to a criteria list")
	scoreCmd.Flags().StringVar(&scoreScoresFile, "scores", "", "Path to a map of criterion id to raw score")
	_ = scoreCmd.MarkFlagRequired("criteria")
	_ = scoreCmd.MarkFlagRequired("scores")
	rootCmd.AddCommand(scoreCmd)
}

type criterionFile struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Weight   float64 `yaml:"weight"`
	MaxScore int     `yaml:"maxScore"`
}

func runScore(cmd *cobra.Command, _ []string) error {
	var rows []criterionFile
	if err := readYAML(scoreCriteriaFile, &rows); err != nil {
		return err
	}
	var raw map[string]any
	if err := readYAML(scoreScoresFile, &raw); err != nil {
		return err
	}

	criteria := make([]evaluation.Criterion, 0, len(rows))
	for _, row := range rows {
		criteria = append(criteria, evaluation.Criterion{ID: row.ID, Name: row.Name, Weight: row.Weight, MaxScore: row.MaxScore})
	}
	scores := make(map[string]string, len(raw))
	for id, value := range raw {
		scores[id] = fmt.Sprint(value)
	}

	scale := evaluation.DefaultRatingScale()
	if path := config.Load().RatingScaleFile; path != "" {
		loaded, err := evaluation.LoadRatingScale(path)
		if err != nil {
			return err
		}
		scale = loaded
	}

	result, err := evaluation.NewScoringEngine(scale).Score(criteria, scores)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// readYAML decodes path into out. JSON files parse too, being valid YAML.
func readYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
