package evaluation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
)

const (
	sqliteConstraintUnique     = 2067
	sqliteConstraintForeignKey = 787

	sqliteDateLayout = "2006-01-02"
	// Fixed width keeps lexical order equal to time order.
	sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

// SQLiteStore is the embedded StoreAPI used for single-node deployments and tests.
type SQLiteStore struct {
	DB *sql.DB
}

// NewSQLiteStore applies the schema to db and returns the store.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func sqliteCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}

func mapSQLiteError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func sqliteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func parseSQLiteTime(value string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, value)
}

func sqliteDate(t time.Time) string {
	return DateOnly(t).Format(sqliteDateLayout)
}

func parseSQLiteDate(value string) (time.Time, error) {
	return time.Parse(sqliteDateLayout, value)
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CompletedTypeIDs(ctx context.Context, employeeID string) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT DISTINCT evaluation_type_id FROM evaluations WHERE employee_id = ?", employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) EmployeeProfile(ctx context.Context, employeeID string) (EmployeeProfile, error) {
	var p EmployeeProfile
	err := s.DB.QueryRowContext(ctx, "SELECT id, name, department_id, employee_class FROM employees WHERE id = ?", employeeID).
		Scan(&p.EmployeeID, &p.Name, &p.DepartmentID, &p.ClassTags)
	if err != nil {
		return EmployeeProfile{}, mapSQLiteError(err)
	}
	return p, nil
}

func (s *SQLiteStore) EvaluatorDepartment(ctx context.Context, evaluatorID string) (string, error) {
	var dept string
	if err := s.DB.QueryRowContext(ctx, "SELECT department_id FROM employees WHERE id = ?", evaluatorID).Scan(&dept); err != nil {
		return "", mapSQLiteError(err)
	}
	return dept, nil
}

func (s *SQLiteStore) UpsertEmployee(ctx context.Context, p EmployeeProfile) error {
	_, err := s.DB.ExecContext(ctx, `
    INSERT INTO employees (id, name, department_id, employee_class)
    VALUES (?,?,?,?)
    ON CONFLICT (id) DO UPDATE SET name = excluded.name, department_id = excluded.department_id, employee_class = excluded.employee_class
  `, p.EmployeeID, p.Name, p.DepartmentID, CanonicalClass(p.ClassTags))
	return err
}

const sqliteTypeColumns = "id, type_name, display_name, is_repeatable, COALESCE(prerequisite_type_id, ''), sort_order, created_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteType(row rowScanner) (EvaluationType, error) {
	var t EvaluationType
	var created string
	if err := row.Scan(&t.ID, &t.TypeName, &t.DisplayName, &t.IsRepeatable, &t.PrerequisiteTypeID, &t.SortOrder, &created); err != nil {
		return EvaluationType{}, err
	}
	at, err := parseSQLiteTime(created)
	if err != nil {
		return EvaluationType{}, fmt.Errorf("evaluation type %s created_at: %w", t.ID, err)
	}
	t.CreatedAt = at
	return t, nil
}

type rowsQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLiteStore) ListTypes(ctx context.Context) ([]EvaluationType, error) {
	return listSQLiteTypes(ctx, s.DB)
}

func listSQLiteTypes(ctx context.Context, q rowsQuerier) ([]EvaluationType, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+sqliteTypeColumns+" FROM evaluation_types ORDER BY sort_order, display_name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []EvaluationType{}
	for rows.Next() {
		t, err := scanSQLiteType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *SQLiteStore) GetType(ctx context.Context, typeID string) (EvaluationType, error) {
	t, err := scanSQLiteType(s.DB.QueryRowContext(ctx, "SELECT "+sqliteTypeColumns+" FROM evaluation_types WHERE id = ?", typeID))
	if err != nil {
		return EvaluationType{}, mapSQLiteError(err)
	}
	return t, nil
}

// The store runs on one connection, so a transaction holds it exclusively
// and type writers cannot interleave between the catalog read and the write.

func (s *SQLiteStore) CreateType(ctx context.Context, t EvaluationType) (string, error) {
	id := uuid.NewString()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		catalog, err := listSQLiteTypes(ctx, tx)
		if err != nil {
			return err
		}
		if err := CheckTypeWrite(catalog, t); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
      INSERT INTO evaluation_types (id, type_name, display_name, is_repeatable, prerequisite_type_id, sort_order, created_at)
      VALUES (?,?,?,?,?,?,?)
    `, id, t.TypeName, t.DisplayName, t.IsRepeatable, nullIfEmpty(t.PrerequisiteTypeID), t.SortOrder, sqliteTime(time.Now()))
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) UpdateType(ctx context.Context, t EvaluationType) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		catalog, err := listSQLiteTypes(ctx, tx)
		if err != nil {
			return err
		}
		if err := CheckTypeWrite(catalog, t); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
      UPDATE evaluation_types
      SET type_name = ?, display_name = ?, is_repeatable = ?, prerequisite_type_id = ?, sort_order = ?
      WHERE id = ?
    `, t.TypeName, t.DisplayName, t.IsRepeatable, nullIfEmpty(t.PrerequisiteTypeID), t.SortOrder, t.ID)
		if err != nil {
			return err
		}
		return affectedOrNotFound(res)
	})
}

func (s *SQLiteStore) DeleteType(ctx context.Context, typeID string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var refs int
		if err := tx.QueryRowContext(ctx, `
      SELECT (SELECT COUNT(1) FROM evaluations WHERE evaluation_type_id = ?1)
           + (SELECT COUNT(1) FROM evaluation_types WHERE prerequisite_type_id = ?1)
           + (SELECT COUNT(1) FROM evaluation_cycles WHERE evaluation_type_id = ?1)
    `, typeID).Scan(&refs); err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM evaluation_types WHERE id = ?", typeID)
		if err != nil {
			return err
		}
		return affectedOrNotFound(res)
	})
	if sqliteCode(err) == sqliteConstraintForeignKey {
		return ErrInUse
	}
	return err
}

func scanSQLiteCycle(row rowScanner) (Cycle, error) {
	var c Cycle
	var start, end string
	if err := row.Scan(&c.ID, &c.Name, &c.EvaluationTypeID, &start, &end, &c.IsEnabled); err != nil {
		return Cycle{}, err
	}
	var err error
	if c.StartDate, err = parseSQLiteDate(start); err != nil {
		return Cycle{}, fmt.Errorf("cycle %s start_date: %w", c.ID, err)
	}
	if c.EndDate, err = parseSQLiteDate(end); err != nil {
		return Cycle{}, fmt.Errorf("cycle %s end_date: %w", c.ID, err)
	}
	c.DepartmentIDs = []string{}
	return c, nil
}

// ListCycles reads cycles and links in two passes; the single connection
// cannot serve a nested query while rows are open.
func (s *SQLiteStore) ListCycles(ctx context.Context) ([]Cycle, error) {
	rows, err := s.DB.QueryContext(ctx, `
    SELECT id, name, evaluation_type_id, start_date, end_date, is_enabled
    FROM evaluation_cycles
    ORDER BY start_date, name
  `)
	if err != nil {
		return nil, err
	}
	cycles := []Cycle{}
	index := map[string]int{}
	for rows.Next() {
		c, err := scanSQLiteCycle(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		index[c.ID] = len(cycles)
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	links, err := s.DB.QueryContext(ctx, "SELECT cycle_id, department_id FROM cycle_departments ORDER BY cycle_id, department_id")
	if err != nil {
		return nil, err
	}
	defer links.Close()
	for links.Next() {
		var cycleID, dept string
		if err := links.Scan(&cycleID, &dept); err != nil {
			return nil, err
		}
		if i, ok := index[cycleID]; ok {
			cycles[i].DepartmentIDs = append(cycles[i].DepartmentIDs, dept)
		}
	}
	return cycles, links.Err()
}

func (s *SQLiteStore) GetCycle(ctx context.Context, cycleID string) (Cycle, error) {
	c, err := scanSQLiteCycle(s.DB.QueryRowContext(ctx, `
    SELECT id, name, evaluation_type_id, start_date, end_date, is_enabled
    FROM evaluation_cycles
    WHERE id = ?
  `, cycleID))
	if err != nil {
		return Cycle{}, mapSQLiteError(err)
	}
	rows, err := s.DB.QueryContext(ctx, "SELECT department_id FROM cycle_departments WHERE cycle_id = ? ORDER BY department_id", cycleID)
	if err != nil {
		return Cycle{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var dept string
		if err := rows.Scan(&dept); err != nil {
			return Cycle{}, err
		}
		c.DepartmentIDs = append(c.DepartmentIDs, dept)
	}
	return c, rows.Err()
}

func (s *SQLiteStore) CreateCycle(ctx context.Context, c Cycle) (string, error) {
	id := uuid.NewString()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
      INSERT INTO evaluation_cycles (id, name, evaluation_type_id, start_date, end_date, is_enabled)
      VALUES (?,?,?,?,?,?)
    `, id, c.Name, c.EvaluationTypeID, sqliteDate(c.StartDate), sqliteDate(c.EndDate), c.IsEnabled); err != nil {
			return err
		}
		return insertSQLiteCycleDepartments(ctx, tx, id, c.DepartmentIDs)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) UpdateCycle(ctx context.Context, c Cycle) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
      UPDATE evaluation_cycles
      SET name = ?, evaluation_type_id = ?, start_date = ?, end_date = ?, is_enabled = ?
      WHERE id = ?
    `, c.Name, c.EvaluationTypeID, sqliteDate(c.StartDate), sqliteDate(c.EndDate), c.IsEnabled, c.ID)
		if err != nil {
			return err
		}
		if err := affectedOrNotFound(res); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM cycle_departments WHERE cycle_id = ?", c.ID); err != nil {
			return err
		}
		return insertSQLiteCycleDepartments(ctx, tx, c.ID, c.DepartmentIDs)
	})
}

func insertSQLiteCycleDepartments(ctx context.Context, tx *sql.Tx, cycleID string, departmentIDs []string) error {
	for _, dept := range departmentIDs {
		if _, err := tx.ExecContext(ctx, "INSERT INTO cycle_departments (cycle_id, department_id) VALUES (?, ?)", cycleID, dept); err != nil {
			return fmt.Errorf("link cycle department: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) DeleteCycle(ctx context.Context, cycleID string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM evaluation_cycles WHERE id = ?", cycleID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

const sqliteCriterionColumns = "id, name, weight, max_score, COALESCE(applies_to_department_id, ''), employee_class, created_at"

func scanSQLiteCriterion(row rowScanner) (Criterion, error) {
	var c Criterion
	var created string
	if err := row.Scan(&c.ID, &c.Name, &c.Weight, &c.MaxScore, &c.AppliesToDepartmentID, &c.EmployeeClass, &created); err != nil {
		return Criterion{}, err
	}
	at, err := parseSQLiteTime(created)
	if err != nil {
		return Criterion{}, fmt.Errorf("criterion %s created_at: %w", c.ID, err)
	}
	c.CreatedAt = at
	return c, nil
}

// ListCriteria returns criteria in creation order. rowid breaks ties between
// inserts that share a timestamp.
func (s *SQLiteStore) ListCriteria(ctx context.Context) ([]Criterion, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+sqliteCriterionColumns+" FROM evaluation_criteria ORDER BY created_at, rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	criteria := []Criterion{}
	for rows.Next() {
		c, err := scanSQLiteCriterion(rows)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}

func (s *SQLiteStore) GetCriterion(ctx context.Context, criterionID string) (Criterion, error) {
	c, err := scanSQLiteCriterion(s.DB.QueryRowContext(ctx, "SELECT "+sqliteCriterionColumns+" FROM evaluation_criteria WHERE id = ?", criterionID))
	if err != nil {
		return Criterion{}, mapSQLiteError(err)
	}
	return c, nil
}

func (s *SQLiteStore) CreateCriterion(ctx context.Context, c Criterion) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx, `
    INSERT INTO evaluation_criteria (id, name, weight, max_score, applies_to_department_id, employee_class, created_at)
    VALUES (?,?,?,?,?,?,?)
  `, id, c.Name, c.Weight, c.MaxScore, nullIfEmpty(c.AppliesToDepartmentID), c.EmployeeClass, sqliteTime(time.Now()))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) UpdateCriterion(ctx context.Context, c Criterion) error {
	res, err := s.DB.ExecContext(ctx, `
    UPDATE evaluation_criteria
    SET name = ?, weight = ?, max_score = ?, applies_to_department_id = ?, employee_class = ?
    WHERE id = ?
  `, c.Name, c.Weight, c.MaxScore, nullIfEmpty(c.AppliesToDepartmentID), c.EmployeeClass, c.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (s *SQLiteStore) DeleteCriterion(ctx context.Context, criterionID string) error {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var used int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM evaluation_details WHERE criterion_id = ?", criterionID).Scan(&used); err != nil {
			return err
		}
		if used > 0 {
			return ErrInUse
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM evaluation_criteria WHERE id = ?", criterionID)
		if err != nil {
			return err
		}
		return affectedOrNotFound(res)
	})
	if sqliteCode(err) == sqliteConstraintForeignKey {
		return ErrInUse
	}
	return err
}

func (s *SQLiteStore) ListRecommendations(ctx context.Context) ([]Recommendation, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, text, COALESCE(applies_to_department_id, '') FROM recommendations ORDER BY text, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Recommendation{}
	for rows.Next() {
		var r Recommendation
		if err := rows.Scan(&r.ID, &r.Text, &r.AppliesToDepartmentID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateRecommendation(ctx context.Context, r Recommendation) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx, "INSERT INTO recommendations (id, text, applies_to_department_id) VALUES (?,?,?)",
		id, r.Text, nullIfEmpty(r.AppliesToDepartmentID))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) ListTrainingCourses(ctx context.Context) ([]TrainingCourse, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT id, text, COALESCE(applies_to_department_id, ''), is_active FROM training_courses ORDER BY text, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TrainingCourse{}
	for rows.Next() {
		var c TrainingCourse
		if err := rows.Scan(&c.ID, &c.Text, &c.AppliesToDepartmentID, &c.IsActive); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateTrainingCourse(ctx context.Context, c TrainingCourse) (string, error) {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx, "INSERT INTO training_courses (id, text, applies_to_department_id, is_active) VALUES (?,?,?,?)",
		id, c.Text, nullIfEmpty(c.AppliesToDepartmentID), c.IsActive)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *SQLiteStore) CreateEvaluation(ctx context.Context, e Evaluation, details []Detail) (string, error) {
	id := uuid.NewString()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var repeatable bool
		if err := tx.QueryRowContext(ctx, "SELECT is_repeatable FROM evaluation_types WHERE id = ?", e.EvaluationTypeID).Scan(&repeatable); err != nil {
			return mapSQLiteError(err)
		}
		var onceKey any
		if !repeatable {
			onceKey = e.EvaluationTypeID
		}
		var score any
		if e.OverallScore != nil {
			score = *e.OverallScore
		}
		if _, err := tx.ExecContext(ctx, `
      INSERT INTO evaluations (id, employee_id, evaluator_id, evaluation_type_id, once_key, comments,
                               recommendation_id, training_course_id, overall_score, overall_rating, evaluated_at)
      VALUES (?,?,?,?,?,?,?,?,?,?,?)
    `, id, e.EmployeeID, e.EvaluatorID, e.EvaluationTypeID, onceKey, e.Comments,
			nullIfEmpty(e.RecommendationID), nullIfEmpty(e.TrainingCourseID), score, string(e.OverallRating), sqliteTime(e.EvaluatedAt)); err != nil {
			if sqliteCode(err) == sqliteConstraintUnique {
				return ErrAlreadyCompleted
			}
			return err
		}
		for _, d := range details {
			if _, err := tx.ExecContext(ctx, `
        INSERT INTO evaluation_details (evaluation_id, criterion_id, score_given, weight, max_score, position)
        VALUES (?,?,?,?,?,?)
      `, id, d.CriterionID, d.ScoreGiven, d.Weight, d.MaxScore, d.Position); err != nil {
				return fmt.Errorf("insert evaluation detail: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

const sqliteEvaluationSelect = `
    SELECT e.id, e.employee_id, e.evaluator_id, e.evaluation_type_id, t.display_name, e.comments,
           COALESCE(e.recommendation_id, ''), COALESCE(e.training_course_id, ''),
           e.overall_score, e.overall_rating, e.evaluated_at
    FROM evaluations e
    JOIN evaluation_types t ON t.id = e.evaluation_type_id`

func scanSQLiteEvaluation(row rowScanner) (Evaluation, error) {
	var e Evaluation
	var score sql.NullFloat64
	var rating, evaluatedAt string
	if err := row.Scan(&e.ID, &e.EmployeeID, &e.EvaluatorID, &e.EvaluationTypeID, &e.TypeDisplayName, &e.Comments,
		&e.RecommendationID, &e.TrainingCourseID, &score, &rating, &evaluatedAt); err != nil {
		return Evaluation{}, err
	}
	if score.Valid {
		v := score.Float64
		e.OverallScore = &v
	}
	e.OverallRating = RatingBand(rating)
	at, err := parseSQLiteTime(evaluatedAt)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluation %s evaluated_at: %w", e.ID, err)
	}
	e.EvaluatedAt = at
	return e, nil
}

func (s *SQLiteStore) GetEvaluation(ctx context.Context, evaluationID string) (Evaluation, error) {
	e, err := scanSQLiteEvaluation(s.DB.QueryRowContext(ctx, sqliteEvaluationSelect+" WHERE e.id = ?", evaluationID))
	if err != nil {
		return Evaluation{}, mapSQLiteError(err)
	}

	rows, err := s.DB.QueryContext(ctx, `
    SELECT d.criterion_id, c.name, d.weight, d.max_score, d.score_given, d.position
    FROM evaluation_details d
    JOIN evaluation_criteria c ON c.id = d.criterion_id
    WHERE d.evaluation_id = ?
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

func (s *SQLiteStore) ListEvaluations(ctx context.Context, filter ListFilter) ([]Evaluation, error) {
	query, args := buildEvaluationQuery(sqliteEvaluationSelect, filter, func(int) string { return "?" })
	for i, arg := range args {
		if t, ok := arg.(time.Time); ok {
			args[i] = sqliteTime(t)
		}
	}
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Evaluation{}
	for rows.Next() {
		e, err := scanSQLiteEvaluation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteEvaluation(ctx context.Context, evaluationID string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM evaluations WHERE id = ?", evaluationID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}
