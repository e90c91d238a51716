package evaluation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"appraisal/internal/platform/querier"
)

func (s *Store) CompletedTypeIDs(ctx context.Context, employeeID string) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT DISTINCT evaluation_type_id::text
    FROM evaluations
    WHERE employee_id = $1
  `, employeeID)
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

func (s *Store) EmployeeProfile(ctx context.Context, employeeID string) (EmployeeProfile, error) {
	var p EmployeeProfile
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, department_id, employee_class
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&p.EmployeeID, &p.Name, &p.DepartmentID, &p.ClassTags)
	if err != nil {
		return EmployeeProfile{}, mapPgError(err)
	}
	return p, nil
}

func (s *Store) EvaluatorDepartment(ctx context.Context, evaluatorID string) (string, error) {
	var dept string
	if err := s.DB.QueryRow(ctx, "SELECT department_id FROM employees WHERE id = $1", evaluatorID).Scan(&dept); err != nil {
		return "", mapPgError(err)
	}
	return dept, nil
}

func (s *Store) UpsertEmployee(ctx context.Context, p EmployeeProfile) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO employees (id, name, department_id, employee_class)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, department_id = EXCLUDED.department_id, employee_class = EXCLUDED.employee_class
  `, p.EmployeeID, p.Name, p.DepartmentID, CanonicalClass(p.ClassTags))
	return err
}

const pgTypeColumns = "id::text, type_name, display_name, is_repeatable, COALESCE(prerequisite_type_id::text, ''), sort_order, created_at"

func scanType(row pgx.Row) (EvaluationType, error) {
	var t EvaluationType
	err := row.Scan(&t.ID, &t.TypeName, &t.DisplayName, &t.IsRepeatable, &t.PrerequisiteTypeID, &t.SortOrder, &t.CreatedAt)
	return t, err
}

func (s *Store) ListTypes(ctx context.Context) ([]EvaluationType, error) {
	return listPgTypes(ctx, s.DB)
}

func listPgTypes(ctx context.Context, q querier.Querier) ([]EvaluationType, error) {
	rows, err := q.Query(ctx, "SELECT "+pgTypeColumns+" FROM evaluation_types ORDER BY sort_order, display_name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []EvaluationType{}
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) GetType(ctx context.Context, typeID string) (EvaluationType, error) {
	t, err := scanType(s.DB.QueryRow(ctx, "SELECT "+pgTypeColumns+" FROM evaluation_types WHERE id = $1", typeID))
	if err != nil {
		return EvaluationType{}, mapPgError(err)
	}
	return t, nil
}

// lockTypes blocks other type writers until tx ends and returns the catalog
// as committed by the previous holder. Plain reads are not blocked.
func lockTypes(ctx context.Context, tx pgx.Tx) ([]EvaluationType, error) {
	if _, err := tx.Exec(ctx, "LOCK TABLE evaluation_types IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return nil, err
	}
	return listPgTypes(ctx, tx)
}

func (s *Store) CreateType(ctx context.Context, t EvaluationType) (string, error) {
	var id string
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		catalog, err := lockTypes(ctx, tx)
		if err != nil {
			return err
		}
		if err := CheckTypeWrite(catalog, t); err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
      INSERT INTO evaluation_types (type_name, display_name, is_repeatable, prerequisite_type_id, sort_order)
      VALUES ($1,$2,$3,$4,$5)
      RETURNING id::text
    `, t.TypeName, t.DisplayName, t.IsRepeatable, nullIfEmpty(t.PrerequisiteTypeID), t.SortOrder).Scan(&id)
	})
	if err != nil {
		return "", mapPgError(err)
	}
	return id, nil
}

func (s *Store) UpdateType(ctx context.Context, t EvaluationType) error {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		catalog, err := lockTypes(ctx, tx)
		if err != nil {
			return err
		}
		if err := CheckTypeWrite(catalog, t); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
      UPDATE evaluation_types
      SET type_name = $2, display_name = $3, is_repeatable = $4, prerequisite_type_id = $5, sort_order = $6
      WHERE id = $1
    `, t.ID, t.TypeName, t.DisplayName, t.IsRepeatable, nullIfEmpty(t.PrerequisiteTypeID), t.SortOrder)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	return mapPgError(err)
}

// DeleteType refuses types that evaluations, cycles or other types still reference.
func (s *Store) DeleteType(ctx context.Context, typeID string) error {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var refs int
		if err := tx.QueryRow(ctx, `
      SELECT (SELECT COUNT(1) FROM evaluations WHERE evaluation_type_id = $1)
           + (SELECT COUNT(1) FROM evaluation_types WHERE prerequisite_type_id = $1)
           + (SELECT COUNT(1) FROM evaluation_cycles WHERE evaluation_type_id = $1)
    `, typeID).Scan(&refs); err != nil {
			return err
		}
		if refs > 0 {
			return ErrInUse
		}
		tag, err := tx.Exec(ctx, "DELETE FROM evaluation_types WHERE id = $1", typeID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	return mapPgDeleteError(err)
}

const pgCycleSelect = `
    SELECT c.id::text, c.name, c.evaluation_type_id::text, c.start_date, c.end_date, c.is_enabled,
           COALESCE(array_agg(cd.department_id ORDER BY cd.department_id) FILTER (WHERE cd.department_id IS NOT NULL), '{}')
    FROM evaluation_cycles c
    LEFT JOIN cycle_departments cd ON cd.cycle_id = c.id`

func scanCycle(row pgx.Row) (Cycle, error) {
	var c Cycle
	err := row.Scan(&c.ID, &c.Name, &c.EvaluationTypeID, &c.StartDate, &c.EndDate, &c.IsEnabled, &c.DepartmentIDs)
	return c, err
}

func (s *Store) ListCycles(ctx context.Context) ([]Cycle, error) {
	rows, err := s.DB.Query(ctx, pgCycleSelect+`
    GROUP BY c.id
    ORDER BY c.start_date, c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cycles := []Cycle{}
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	return cycles, rows.Err()
}

func (s *Store) GetCycle(ctx context.Context, cycleID string) (Cycle, error) {
	c, err := scanCycle(s.DB.QueryRow(ctx, pgCycleSelect+`
    WHERE c.id = $1
    GROUP BY c.id`, cycleID))
	if err != nil {
		return Cycle{}, mapPgError(err)
	}
	return c, nil
}

func (s *Store) CreateCycle(ctx context.Context, c Cycle) (string, error) {
	var id string
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
      INSERT INTO evaluation_cycles (name, evaluation_type_id, start_date, end_date, is_enabled)
      VALUES ($1,$2,$3,$4,$5)
      RETURNING id::text
    `, c.Name, c.EvaluationTypeID, DateOnly(c.StartDate), DateOnly(c.EndDate), c.IsEnabled).Scan(&id); err != nil {
			return err
		}
		return insertCycleDepartments(ctx, tx, id, c.DepartmentIDs)
	})
	if err != nil {
		return "", mapPgError(err)
	}
	return id, nil
}

// UpdateCycle replaces the cycle row and its department links together.
func (s *Store) UpdateCycle(ctx context.Context, c Cycle) error {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
      UPDATE evaluation_cycles
      SET name = $2, evaluation_type_id = $3, start_date = $4, end_date = $5, is_enabled = $6
      WHERE id = $1
    `, c.ID, c.Name, c.EvaluationTypeID, DateOnly(c.StartDate), DateOnly(c.EndDate), c.IsEnabled)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, "DELETE FROM cycle_departments WHERE cycle_id = $1", c.ID); err != nil {
			return err
		}
		return insertCycleDepartments(ctx, tx, c.ID, c.DepartmentIDs)
	})
	return mapPgError(err)
}

func insertCycleDepartments(ctx context.Context, tx pgx.Tx, cycleID string, departmentIDs []string) error {
	if len(departmentIDs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, dept := range departmentIDs {
		batch.Queue("INSERT INTO cycle_departments (cycle_id, department_id) VALUES ($1, $2)", cycleID, dept)
	}
	results := tx.SendBatch(ctx, batch)
	for range departmentIDs {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("link cycle department: %w", err)
		}
	}
	return results.Close()
}

func (s *Store) DeleteCycle(ctx context.Context, cycleID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM evaluation_cycles WHERE id = $1", cycleID)
	if err != nil {
		return mapPgDeleteError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const pgCriterionColumns = "id::text, name, weight, max_score, COALESCE(applies_to_department_id, ''), employee_class, created_at"

func scanCriterion(row pgx.Row) (Criterion, error) {
	var c Criterion
	err := row.Scan(&c.ID, &c.Name, &c.Weight, &c.MaxScore, &c.AppliesToDepartmentID, &c.EmployeeClass, &c.CreatedAt)
	return c, err
}

// ListCriteria returns criteria in creation order.
func (s *Store) ListCriteria(ctx context.Context) ([]Criterion, error) {
	rows, err := s.DB.Query(ctx, "SELECT "+pgCriterionColumns+" FROM evaluation_criteria ORDER BY created_at, created_seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	criteria := []Criterion{}
	for rows.Next() {
		c, err := scanCriterion(rows)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}

func (s *Store) GetCriterion(ctx context.Context, criterionID string) (Criterion, error) {
	c, err := scanCriterion(s.DB.QueryRow(ctx, "SELECT "+pgCriterionColumns+" FROM evaluation_criteria WHERE id = $1", criterionID))
	if err != nil {
		return Criterion{}, mapPgError(err)
	}
	return c, nil
}

func (s *Store) CreateCriterion(ctx context.Context, c Criterion) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO evaluation_criteria (name, weight, max_score, applies_to_department_id, employee_class)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id::text
  `, c.Name, c.Weight, c.MaxScore, nullIfEmpty(c.AppliesToDepartmentID), c.EmployeeClass).Scan(&id); err != nil {
		return "", mapPgError(err)
	}
	return id, nil
}

func (s *Store) UpdateCriterion(ctx context.Context, c Criterion) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluation_criteria
    SET name = $2, weight = $3, max_score = $4, applies_to_department_id = $5, employee_class = $6
    WHERE id = $1
  `, c.ID, c.Name, c.Weight, c.MaxScore, nullIfEmpty(c.AppliesToDepartmentID), c.EmployeeClass)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteCriterion(ctx context.Context, criterionID string) error {
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		var used int
		if err := tx.QueryRow(ctx, "SELECT COUNT(1) FROM evaluation_details WHERE criterion_id = $1", criterionID).Scan(&used); err != nil {
			return err
		}
		if used > 0 {
			return ErrInUse
		}
		tag, err := tx.Exec(ctx, "DELETE FROM evaluation_criteria WHERE id = $1", criterionID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	return mapPgDeleteError(err)
}

func (s *Store) ListRecommendations(ctx context.Context) ([]Recommendation, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, text, COALESCE(applies_to_department_id, '')
    FROM recommendations
    ORDER BY text, id
  `)
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

func (s *Store) CreateRecommendation(ctx context.Context, r Recommendation) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO recommendations (text, applies_to_department_id)
    VALUES ($1,$2)
    RETURNING id::text
  `, r.Text, nullIfEmpty(r.AppliesToDepartmentID)).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListTrainingCourses(ctx context.Context) ([]TrainingCourse, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id::text, text, COALESCE(applies_to_department_id, ''), is_active
    FROM training_courses
    ORDER BY text, id
  `)
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

func (s *Store) CreateTrainingCourse(ctx context.Context, c TrainingCourse) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO training_courses (text, applies_to_department_id, is_active)
    VALUES ($1,$2,$3)
    RETURNING id::text
  `, c.Text, nullIfEmpty(c.AppliesToDepartmentID), c.IsActive).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}
