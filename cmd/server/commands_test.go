package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appraisal/internal/domain/evaluation"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testCommand() (*cobra.Command, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	return cmd, out
}

func TestScoreCommand(t *testing.T) {
	t.Setenv("RATING_SCALE_FILE", "")
	scoreCriteriaFile = writeFile(t, "criteria.yaml", `
- id: c1
  name: Quality
  weight: 0.5
  maxScore: 4
- id: c2
  name: Delivery
  weight: 0.5
  maxScore: 10
`)
	scoreScoresFile = writeFile(t, "scores.json", `{"c1": "3", "c2": 4}`)

	cmd, out := testCommand()
	require.NoError(t, runScore(cmd, nil))

	var result evaluation.ScoreResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.InDelta(t, 57.5, result.OverallPercentage, 1e-9)
	assert.Equal(t, evaluation.RatingWeak, result.Rating)
}

func TestScoreCommandRejectsOutOfRange(t *testing.T) {
	scoreCriteriaFile = writeFile(t, "criteria.yaml", "- {id: c1, name: Quality, weight: 1, maxScore: 4}\n")
	scoreScoresFile = writeFile(t, "scores.yaml", "c1: 9\n")

	cmd, _ := testCommand()
	err := runScore(cmd, nil)
	assert.ErrorIs(t, err, evaluation.ErrValidation)
}

func TestCheckCatalogCommand(t *testing.T) {
	t.Setenv("EMPLOYEE_CLASSES", "")
	checkCatalogFile = writeFile(t, "seed.yaml", `
types:
  - {key: first, typeName: first, displayName: First}
  - {key: second, typeName: second, displayName: Second, prerequisite: first}
criteria:
  - {name: Quality, weight: 1, maxScore: 5, employeeClass: A}
`)
	cmd, out := testCommand()
	require.NoError(t, runCheckCatalog(cmd, nil))
	assert.Contains(t, out.String(), "catalog ok: 2 types")
}

func TestCheckCatalogCommandReportsIssues(t *testing.T) {
	t.Setenv("EMPLOYEE_CLASSES", "")
	checkCatalogFile = writeFile(t, "seed.yaml", `
criteria:
  - {name: Quality, weight: 2, maxScore: 5, employeeClass: Z}
`)
	cmd, out := testCommand()
	require.Error(t, runCheckCatalog(cmd, nil))
	assert.Contains(t, out.String(), "criteria[0].weight")
	assert.Contains(t, out.String(), "criteria[0].employeeClass")
}
