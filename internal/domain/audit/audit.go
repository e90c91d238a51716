package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"appraisal/internal/platform/querier"
	"appraisal/internal/requestctx"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	CreatedAt  time.Time       `json:"createdAt"`
	After      json.RawMessage `json:"after,omitempty"`
}

// Service writes audit events to postgres.
type Service struct {
	DB querier.Querier
}

func New(db querier.Querier) *Service {
	return &Service{DB: db}
}

// actor prefers the explicit actor id and falls back to the authenticated
// caller of the current request.
func actor(ctx context.Context, actorID string) string {
	if actorID != "" {
		return actorID
	}
	return requestctx.Subject(ctx)
}

func marshalAfter(after any) ([]byte, error) {
	if after == nil {
		return nil, nil
	}
	return json.Marshal(after)
}

func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID string, after any) error {
	afterJSON, err := marshalAfter(after)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO audit_events (actor_id, action, entity_type, entity_id, after_json, request_id)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, actor(ctx, actorID), action, entityType, entityID, afterJSON, requestctx.GetRequestID(ctx))
	return err
}

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteService writes audit events to the embedded store's audit table.
type SQLiteService struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewSQLite(db *sql.DB) *SQLiteService {
	return &SQLiteService{DB: db, Now: time.Now}
}

func (s *SQLiteService) Record(ctx context.Context, actorID, action, entityType, entityID string, after any) error {
	afterJSON, err := marshalAfter(after)
	if err != nil {
		return err
	}
	var payload any
	if afterJSON != nil {
		payload = string(afterJSON)
	}
	_, err = s.DB.ExecContext(ctx, `
    INSERT INTO audit_events (id, actor_id, action, entity_type, entity_id, after_json, request_id, created_at)
    VALUES (?,?,?,?,?,?,?,?)
  `, uuid.NewString(), actor(ctx, actorID), action, entityType, entityID, payload, requestctx.GetRequestID(ctx), s.Now().UTC().Format(timeLayout))
	return err
}

// Events lists recorded events newest first.
func (s *SQLiteService) Events(ctx context.Context, entityType string) ([]Event, error) {
	rows, err := s.DB.QueryContext(ctx, `
    SELECT id, actor_id, action, entity_type, entity_id, request_id, created_at, COALESCE(after_json, '')
    FROM audit_events
    WHERE entity_type = ?
    ORDER BY created_at DESC
  `, entityType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var evt Event
		var created, after string
		if err := rows.Scan(&evt.ID, &evt.ActorID, &evt.Action, &evt.EntityType, &evt.EntityID, &evt.RequestID, &created, &after); err != nil {
			return nil, err
		}
		if evt.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, err
		}
		if after != "" {
			evt.After = json.RawMessage(after)
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}
