package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/store"
)

const conversationColumns = `id, user_id, document_id, session_id, mode, status, duration_ms,
	created_at, end_time, summary, turns, metadata`

// ConversationStore implements store.ConversationStore. Transcripts and
// metadata are stored as JSON text so one schema serves both dialects.
type ConversationStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

var _ store.ConversationStore = (*ConversationStore)(nil)

// NewConversationStore creates a ConversationStore over db. It panics if db
// is nil; a nil logger falls back to slog.Default().
func NewConversationStore(db store.DBTX, dialect Dialect, log *slog.Logger) *ConversationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ConversationStore{
		db:      db,
		dialect: dialect,
		logger:  log.With(slog.String("component", "conversation_store")),
	}
}

// WithTx implements store.ConversationStore.
func (s *ConversationStore) WithTx(tx *sql.Tx) store.ConversationStore {
	return &ConversationStore{db: tx, dialect: s.dialect, logger: s.logger}
}

// Create implements store.ConversationStore.
func (s *ConversationStore) Create(ctx context.Context, rec *domain.ConversationRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := rec.Validate(); err != nil {
		log.Warn("conversation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("conversation_id", rec.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	turns, err := json.Marshal(nonNilTurns(rec.Turns))
	if err != nil {
		return fmt.Errorf("failed to encode turns: %w", err)
	}
	meta, err := json.Marshal(nonNilMap(rec.Metadata))
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	query := rebind(s.dialect, `
		INSERT INTO conversations (`+conversationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query,
		rec.ID.String(),
		rec.UserID.String(),
		rec.DocumentID.String(),
		rec.SessionID.String(),
		string(rec.Mode),
		string(rec.Status),
		nullInt64(rec.DurationMS),
		rec.CreatedAt.UTC(),
		nullTime(rec.EndTime),
		rec.Summary,
		string(turns),
		string(meta),
	)
	if err != nil {
		log.Error("failed to create conversation",
			slog.String("error", err.Error()),
			slog.String("conversation_id", rec.ID.String()))
		return MapError(err)
	}

	log.Debug("conversation created",
		slog.String("conversation_id", rec.ID.String()),
		slog.String("user_id", rec.UserID.String()))
	return nil
}

// AppendTurns implements store.ConversationStore. The transcript is read,
// extended and written back; callers hold the single-writer guarantee for
// a record, so no row lock is taken.
func (s *ConversationStore) AppendTurns(ctx context.Context, id uuid.UUID, turns []domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	for _, t := range turns {
		if !t.Role.IsValid() {
			return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidRole)
		}
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		rebind(s.dialect, `SELECT turns FROM conversations WHERE id = ?`), id.String()).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrConversationNotFound
		}
		log.Error("failed to read transcript", slog.String("error", err.Error()), slog.String("conversation_id", id.String()))
		return MapError(err)
	}

	var existing []domain.Turn
	if err := json.Unmarshal([]byte(raw), &existing); err != nil {
		return store.NewStoreError("conversation", "append_turns", "corrupt transcript", err)
	}

	encoded, err := json.Marshal(append(existing, turns...))
	if err != nil {
		return fmt.Errorf("failed to encode turns: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		rebind(s.dialect, `UPDATE conversations SET turns = ? WHERE id = ?`), string(encoded), id.String())
	if err != nil {
		log.Error("failed to append turns", slog.String("error", err.Error()), slog.String("conversation_id", id.String()))
		return MapError(err)
	}
	if err := checkRowsAffected(result, store.ErrConversationNotFound); err != nil {
		return err
	}

	log.Debug("turns appended",
		slog.String("conversation_id", id.String()),
		slog.Int("appended", len(turns)),
		slog.Int("total", len(existing)+len(turns)))
	return nil
}

// Finalize implements store.ConversationStore. Metadata keys in fin
// overwrite existing keys; other keys are kept.
func (s *ConversationStore) Finalize(ctx context.Context, id uuid.UUID, fin domain.Finalization) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !fin.Status.IsValid() {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrInvalidConversationStatus)
	}

	var raw string
	err := s.db.QueryRowContext(ctx,
		rebind(s.dialect, `SELECT metadata FROM conversations WHERE id = ?`), id.String()).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrConversationNotFound
		}
		return MapError(err)
	}

	meta := map[string]any{}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return store.NewStoreError("conversation", "finalize", "corrupt metadata", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}
	maps.Copy(meta, fin.Metadata)

	encoded, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	result, err := s.db.ExecContext(ctx, rebind(s.dialect, `
		UPDATE conversations
		SET status = ?, end_time = ?, duration_ms = ?, summary = ?, metadata = ?
		WHERE id = ?`),
		string(fin.Status),
		fin.EndTime.UTC(),
		fin.DurationMS,
		fin.Summary,
		string(encoded),
		id.String(),
	)
	if err != nil {
		log.Error("failed to finalize conversation", slog.String("error", err.Error()), slog.String("conversation_id", id.String()))
		return MapError(err)
	}
	if err := checkRowsAffected(result, store.ErrConversationNotFound); err != nil {
		return err
	}

	log.Info("conversation finalized",
		slog.String("conversation_id", id.String()),
		slog.String("status", string(fin.Status)),
		slog.Int64("duration_ms", fin.DurationMS))
	return nil
}

// GetByID implements store.ConversationStore.
func (s *ConversationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConversationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		rebind(s.dialect, `SELECT `+conversationColumns+` FROM conversations WHERE id = ?`), id.String())

	rec, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrConversationNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get conversation",
			slog.String("error", err.Error()),
			slog.String("conversation_id", id.String()))
		return nil, MapError(err)
	}
	return rec, nil
}

// ListRecent implements store.ConversationStore.
func (s *ConversationStore) ListRecent(
	ctx context.Context,
	userID uuid.UUID,
	limit int,
	filter store.ListFilter,
) ([]domain.ConversationRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if limit <= 0 {
		return []domain.ConversationRecord{}, nil
	}

	var q strings.Builder
	q.WriteString(`SELECT ` + conversationColumns + ` FROM conversations WHERE user_id = ?`)
	args := []any{userID.String()}
	if filter.DocumentID != nil {
		q.WriteString(` AND document_id = ?`)
		args = append(args, filter.DocumentID.String())
	}
	q.WriteString(` ORDER BY created_at DESC, id DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, rebind(s.dialect, q.String()), args...)
	if err != nil {
		log.Error("failed to list conversations", slog.String("error", err.Error()), slog.String("user_id", userID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]domain.ConversationRecord, 0, limit)
	for rows.Next() {
		rec, err := scanConversation(rows)
		if err != nil {
			return nil, MapError(err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("listed conversations",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(records)))
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*domain.ConversationRecord, error) {
	var (
		rec                     domain.ConversationRecord
		mode, status            string
		duration                sql.NullInt64
		endTime                 sql.NullTime
		turnsJSON, metadataJSON string
	)
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.DocumentID,
		&rec.SessionID,
		&mode,
		&status,
		&duration,
		&rec.CreatedAt,
		&endTime,
		&rec.Summary,
		&turnsJSON,
		&metadataJSON,
	)
	if err != nil {
		return nil, err
	}

	rec.Mode = domain.SessionMode(mode)
	rec.Status = domain.ConversationStatus(status)
	rec.CreatedAt = rec.CreatedAt.UTC()
	if duration.Valid {
		d := duration.Int64
		rec.DurationMS = &d
	}
	if endTime.Valid {
		t := endTime.Time.UTC()
		rec.EndTime = &t
	}
	if err := json.Unmarshal([]byte(turnsJSON), &rec.Turns); err != nil {
		return nil, store.NewStoreError("conversation", "scan", "corrupt transcript", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &rec.Metadata); err != nil {
		return nil, store.NewStoreError("conversation", "scan", "corrupt metadata", err)
	}
	rec.Turns = nonNilTurns(rec.Turns)
	rec.Metadata = nonNilMap(rec.Metadata)
	return &rec, nil
}

func nonNilTurns(t []domain.Turn) []domain.Turn {
	if t == nil {
		return []domain.Turn{}
	}
	return t
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
