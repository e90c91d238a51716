package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"appraisal/internal/domain/evaluation"
	"appraisal/internal/platform/config"
)

var checkCatalogFile string

var checkCatalogCmd = &cobra.Command{
	Use:   "check-catalog",
	Short: "Validate a catalog seed file without touching a database",
	RunE:  runCheckCatalog,
}

func init() {
	checkCatalogCmd.Flags().StringVarP(&checkCatalogFile, "file", "f", "", "Path to the catalog seed YAML")
	_ = checkCatalogCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(checkCatalogCmd)
}

func runCheckCatalog(cmd *cobra.Command, _ []string) error {
	seed, err := evaluation.LoadCatalogSeed(checkCatalogFile)
	if err != nil {
		return err
	}
	cfg := config.Load()
	if err := seed.Check(evaluation.NewCatalogValidator(cfg.EmployeeClasses)); err != nil {
		var verr *evaluation.ValidationError
		if errors.As(err, &verr) {
			for _, issue := range verr.Issues {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", issue.Field, issue.Reason)
			}
		}
		return fmt.Errorf("catalog %s is invalid: %w", checkCatalogFile, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "catalog ok: %d types, %d cycles, %d criteria\n", len(seed.Types), len(seed.Cycles), len(seed.Criteria))
	return nil
}
