package evaluation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// CreateEvaluation writes the evaluation and its details in one transaction.
// For non-repeatable types once_key carries the type id, so the unique index
// rejects a second evaluation of the same employee even under concurrency.
func (s *Store) CreateEvaluation(ctx context.Context, e Evaluation, details []Detail) (string, error) {
	var id string
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var repeatable bool
		if err := tx.QueryRow(ctx, "SELECT is_repeatable FROM evaluation_types WHERE id = $1 FOR SHARE", e.EvaluationTypeID).Scan(&repeatable); err != nil {
			return err
		}
		var onceKey any
		if !repeatable {
			onceKey = e.EvaluationTypeID
		}

		if err := tx.QueryRow(ctx, `
      INSERT INTO evaluations (employee_id, evaluator_id, evaluation_type_id, once_key, comments,
                               recommendation_id, training_course_id, overall_score, overall_rating, evaluated_at)
      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
      RETURNING id::text
    `, e.EmployeeID, e.EvaluatorID, e.EvaluationTypeID, onceKey, e.Comments,
			nullIfEmpty(e.RecommendationID), nullIfEmpty(e.TrainingCourseID), e.OverallScore, string(e.OverallRating), e.EvaluatedAt).Scan(&id); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, d := range details {
			batch.Queue(`
        INSERT INTO evaluation_details (evaluation_id, criterion_id, score_given, weight, max_score, position)
        VALUES ($1,$2,$3,$4,$5,$6)
      `, id, d.CriterionID, d.ScoreGiven, d.Weight, d.MaxScore, d.Position)
		}
		results := tx.SendBatch(ctx, batch)
		for range details {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("insert evaluation detail: %w", err)
			}
		}
		return results.Close()
	})
	if err != nil {
		return "", mapPgError(err)
	}
	return id, nil
}

const pgEvaluationSelect = `
    SELECT e.id::text, e.employee_id, e.evaluator_id, e.evaluation_type_id::text, t.display_name, e.comments,
           COALESCE(e.recommendation_id::text, ''), COALESCE(e.training_course_id::text, ''),
           e.overall_score, e.overall_rating, e.evaluated_at
    FROM evaluations e
    JOIN evaluation_types t ON t.id = e.evaluation_type_id`

func scanEvaluation(row pgx.Row) (Evaluation, error) {
	var e Evaluation
	var rating string
	err := row.Scan(&e.ID, &e.EmployeeID, &e.EvaluatorID, &e.EvaluationTypeID, &e.TypeDisplayName, &e.Comments,
		&e.RecommendationID, &e.TrainingCourseID, &e.OverallScore, &rating, &e.EvaluatedAt)
	e.OverallRating = RatingBand(rating)
	return e, err
}

func (s *Store) GetEvaluation(ctx context.Context, evaluationID string) (Evaluation, error) {
	e, err := scanEvaluation(s.DB.QueryRow(ctx, pgEvaluationSelect+" WHERE e.id = $1", evaluationID))
	if err != nil {
		return Evaluation{}, mapPgError(err)
	}

	rows, err := s.DB.Query(ctx, `
    SELECT d.criterion_id::text, c.name, d.weight, d.max_score, d.score_given, d.position
    FROM evaluation_details d
    JOIN evaluation_criteria c ON c.id = d.criterion_id
    WHERE d.evaluation_id = $1
    ORDER BY d.position
  `, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	defer rows.Close()

	e.Details = []Detail{}
	for rows.Next() {
		d := Detail{EvaluationID: e.ID}
		if err := rows.Scan(&d.CriterionID, &d.CriterionName, &d.Weight, &d.MaxScore, &d.ScoreGiven, &d.Position); err != nil {
			return Evaluation{}, err
		}
		e.Details = append(e.Details, d)
	}
	return e, rows.Err()
}

func (s *Store) ListEvaluations(ctx context.Context, filter ListFilter) ([]Evaluation, error) {
	query, args := buildEvaluationQuery(pgEvaluationSelect, filter, func(n int) string { return fmt.Sprintf("$%d", n) })
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return emptyOnMalformedID(err)
	}
	defer rows.Close()

	out := []Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return emptyOnMalformedID(err)
	}
	return out, nil
}

// emptyOnMalformedID treats a filter id that is not a uuid as matching nothing.
func emptyOnMalformedID(err error) ([]Evaluation, error) {
	if errors.Is(mapPgError(err), ErrNotFound) {
		return []Evaluation{}, nil
	}
	return nil, err
}

func (s *Store) DeleteEvaluation(ctx context.Context, evaluationID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM evaluations WHERE id = $1", evaluationID)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildEvaluationQuery appends the filter to base. placeholder renders the
// n-th bind parameter for the target driver.
func buildEvaluationQuery(base string, filter ListFilter, placeholder func(n int) string) (string, []any) {
	var where []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, strings.Replace(cond, "?", placeholder(len(args)), 1))
	}
	if filter.EmployeeID != "" {
		add("e.employee_id = ?", filter.EmployeeID)
	}
	if filter.EvaluatorID != "" {
		add("e.evaluator_id = ?", filter.EvaluatorID)
	}
	if filter.EvaluationTypeID != "" {
		add("e.evaluation_type_id = ?", filter.EvaluationTypeID)
	}
	if filter.RecommendationID != "" {
		add("e.recommendation_id = ?", filter.RecommendationID)
	}
	if filter.TrainingCourseID != "" {
		add("e.training_course_id = ?", filter.TrainingCourseID)
	}
	lower, upper := dayRange(filter.From, filter.To)
	if lower != nil {
		add("e.evaluated_at >= ?", *lower)
	}
	if upper != nil {
		add("e.evaluated_at < ?", *upper)
	}

	query := base
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.evaluated_at DESC, e.id"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT %s OFFSET %s", placeholder(len(args)-1), placeholder(len(args)))
	}
	return query, args
}
