package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/acutie/store"
)

func (d *DB) UpsertConversationState(ctx context.Context, upsert *store.ConversationState) (*store.ConversationState, error) {
	fields := []string{"session_id", "phase", "questions_asked", "risk_level", "payload", "created_ts", "updated_ts"}
	args := []any{upsert.SessionID, upsert.Phase, upsert.QuestionsAsked, upsert.RiskLevel, upsert.Payload, upsert.CreatedTs, upsert.UpdatedTs}

	stmt := `INSERT INTO conversation_state (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT (session_id) DO UPDATE SET
			phase = EXCLUDED.phase,
			questions_asked = EXCLUDED.questions_asked,
			risk_level = EXCLUDED.risk_level,
			payload = EXCLUDED.payload,
			updated_ts = EXCLUDED.updated_ts
		RETURNING created_ts`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&upsert.CreatedTs); err != nil {
		return nil, errors.Wrapf(err, "failed to upsert conversation_state %s", upsert.SessionID)
	}
	return upsert, nil
}

func (d *DB) GetConversationState(ctx context.Context, sessionID string) (*store.ConversationState, error) {
	query := `SELECT session_id, phase, questions_asked, risk_level, payload, created_ts, updated_ts
		FROM conversation_state WHERE session_id = ` + placeholder(1)
	s := &store.ConversationState{}
	err := d.db.QueryRowContext(ctx, query, sessionID).Scan(
		&s.SessionID, &s.Phase, &s.QuestionsAsked, &s.RiskLevel, &s.Payload, &s.CreatedTs, &s.UpdatedTs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get conversation_state %s", sessionID)
	}
	return s, nil
}

func (d *DB) CreateConversationMessage(ctx context.Context, create *store.ConversationMessage) (*store.ConversationMessage, error) {
	fields := []string{"uid", "session_id", "role", "content", "created_ts"}
	args := []any{create.UID, create.SessionID, string(create.Role), create.Content, create.CreatedTs}

	stmt := `INSERT INTO conversation_message (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING id`
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create conversation_message")
	}
	return create, nil
}

func (d *DB) ListConversationMessages(ctx context.Context, find *store.FindConversationMessage) ([]*store.ConversationMessage, error) {
	args := []any{find.SessionID}
	query := `SELECT id, uid, session_id, role, content, created_ts FROM conversation_message
		WHERE session_id = ` + placeholder(1) + ` ORDER BY id DESC`
	if find.Limit > 0 {
		args = append(args, find.Limit)
		query += ` LIMIT ` + placeholder(len(args))
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversation_messages")
	}
	defer rows.Close()

	list := make([]*store.ConversationMessage, 0)
	for rows.Next() {
		m := &store.ConversationMessage{}
		var role string
		if err := rows.Scan(&m.ID, &m.UID, &m.SessionID, &role, &m.Content, &m.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan conversation_message")
		}
		m.Role = store.MessageRole(role)
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate conversation_messages")
	}

	// Oldest first.
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

func (d *DB) DeleteStaleConversations(ctx context.Context, delete *store.DeleteStaleConversations) ([]string, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `SELECT session_id FROM conversation_state WHERE updated_ts < `+placeholder(1), delete.UpdatedBefore)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list stale conversation_states")
	}
	sessionIDs := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, errors.Wrap(err, "failed to scan stale session id")
		}
		sessionIDs = append(sessionIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate stale conversation_states")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_message WHERE session_id IN (
			SELECT session_id FROM conversation_state WHERE updated_ts < `+placeholder(1)+`)`, delete.UpdatedBefore); err != nil {
		return nil, errors.Wrap(err, "failed to delete stale conversation_messages")
	}
	// Messages whose state row never landed.
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_message WHERE created_ts < `+placeholder(1)+`
			AND session_id NOT IN (SELECT session_id FROM conversation_state)`, delete.UpdatedBefore); err != nil {
		return nil, errors.Wrap(err, "failed to delete orphaned conversation_messages")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_state WHERE updated_ts < `+placeholder(1), delete.UpdatedBefore); err != nil {
		return nil, errors.Wrap(err, "failed to delete stale conversation_states")
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit stale conversation cleanup")
	}
	return sessionIDs, nil
}
