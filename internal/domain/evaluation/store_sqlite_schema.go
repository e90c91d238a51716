package evaluation

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS employees (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL DEFAULT '',
  department_id TEXT NOT NULL DEFAULT '',
  employee_class TEXT NOT NULL DEFAULT 'unassigned'
);

CREATE TABLE IF NOT EXISTS evaluation_types (
  id TEXT PRIMARY KEY,
  type_name TEXT NOT NULL,
  display_name TEXT NOT NULL,
  is_repeatable INTEGER NOT NULL DEFAULT 0,
  prerequisite_type_id TEXT REFERENCES evaluation_types(id),
  sort_order INTEGER NOT NULL DEFAULT 100,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluation_cycles (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  evaluation_type_id TEXT NOT NULL REFERENCES evaluation_types(id),
  start_date TEXT NOT NULL,
  end_date TEXT NOT NULL,
  is_enabled INTEGER NOT NULL DEFAULT 1,
  CHECK (end_date >= start_date)
);

CREATE TABLE IF NOT EXISTS cycle_departments (
  cycle_id TEXT NOT NULL REFERENCES evaluation_cycles(id) ON DELETE CASCADE,
  department_id TEXT NOT NULL,
  PRIMARY KEY (cycle_id, department_id)
);

CREATE TABLE IF NOT EXISTS evaluation_criteria (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  weight REAL NOT NULL CHECK (weight > 0 AND weight <= 1),
  max_score INTEGER NOT NULL CHECK (max_score > 0),
  applies_to_department_id TEXT,
  employee_class TEXT NOT NULL DEFAULT 'unassigned',
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS recommendations (
  id TEXT PRIMARY KEY,
  text TEXT NOT NULL,
  applies_to_department_id TEXT
);

CREATE TABLE IF NOT EXISTS training_courses (
  id TEXT PRIMARY KEY,
  text TEXT NOT NULL,
  applies_to_department_id TEXT,
  is_active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS evaluations (
  id TEXT PRIMARY KEY,
  employee_id TEXT NOT NULL,
  evaluator_id TEXT NOT NULL,
  evaluation_type_id TEXT NOT NULL REFERENCES evaluation_types(id),
  once_key TEXT,
  comments TEXT NOT NULL DEFAULT '',
  recommendation_id TEXT REFERENCES recommendations(id),
  training_course_id TEXT REFERENCES training_courses(id),
  overall_score REAL,
  overall_rating TEXT NOT NULL DEFAULT '',
  evaluated_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS evaluations_once_per_employee ON evaluations (employee_id, once_key);
CREATE INDEX IF NOT EXISTS evaluations_evaluator_idx ON evaluations (evaluator_id, evaluated_at);

CREATE TABLE IF NOT EXISTS evaluation_details (
  evaluation_id TEXT NOT NULL REFERENCES evaluations(id) ON DELETE CASCADE,
  criterion_id TEXT NOT NULL REFERENCES evaluation_criteria(id),
  score_given INTEGER NOT NULL CHECK (score_given >= 0),
  weight REAL NOT NULL,
  max_score INTEGER NOT NULL CHECK (max_score > 0),
  position INTEGER NOT NULL,
  PRIMARY KEY (evaluation_id, criterion_id),
  CHECK (score_given <= max_score)
);

CREATE TABLE IF NOT EXISTS audit_events (
  id TEXT PRIMARY KEY,
  actor_id TEXT NOT NULL,
  action TEXT NOT NULL,
  entity_type TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  after_json TEXT,
  request_id TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
`
