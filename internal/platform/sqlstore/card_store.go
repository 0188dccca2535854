package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-tutor/internal/domain"
	"github.com/phrazzld/scry-tutor/internal/platform/logger"
	"github.com/phrazzld/scry-tutor/internal/store"
)

// CardStore implements store.CardStore.
type CardStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

var _ store.CardStore = (*CardStore)(nil)

// NewCardStore creates a CardStore over db. It panics if db is nil.
func NewCardStore(db store.DBTX, dialect Dialect, log *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &CardStore{
		db:      db,
		dialect: dialect,
		logger:  log.With(slog.String("component", "card_store")),
	}
}

// WithTx implements store.CardStore.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{db: tx, dialect: s.dialect, logger: s.logger}
}

// ListByDocument implements store.CardStore.
func (s *CardStore) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]domain.FlashcardCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, rebind(s.dialect, `
		SELECT id, document_id, position, front, back, hint, card_type, difficulty, subject, created_at
		FROM flashcards
		WHERE document_id = ?
		ORDER BY position ASC, id ASC`), documentID.String())
	if err != nil {
		log.Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.String("document_id", documentID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := []domain.FlashcardCard{}
	for rows.Next() {
		var c domain.FlashcardCard
		if err := rows.Scan(
			&c.ID,
			&c.DocumentID,
			&c.Position,
			&c.Front,
			&c.Back,
			&c.Hint,
			&c.Type,
			&c.Difficulty,
			&c.Subject,
			&c.CreatedAt,
		); err != nil {
			return nil, MapError(err)
		}
		c.CreatedAt = c.CreatedAt.UTC()
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("cards listed",
		slog.String("document_id", documentID.String()),
		slog.Int("count", len(cards)))
	return cards, nil
}

// CreateMultiple implements store.CardStore. All rows go in one INSERT, so
// the batch is atomic even outside a transaction.
func (s *CardStore) CreateMultiple(ctx context.Context, cards []domain.FlashcardCard) error {
	if len(cards) == 0 {
		return nil
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	var q strings.Builder
	q.WriteString(`INSERT INTO flashcards
		(id, document_id, position, front, back, hint, card_type, difficulty, subject, created_at)
		VALUES `)
	args := make([]any, 0, len(cards)*10)
	for i := range cards {
		c := &cards[i]
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w: card %d: %w", store.ErrInvalidEntity, i, err)
		}
		if c.DocumentID == uuid.Nil {
			return fmt.Errorf("%w: card %d: %w", store.ErrInvalidEntity, i, domain.ErrCardDocumentIDEmpty)
		}
		if i > 0 {
			q.WriteString(", ")
		}
		q.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			c.ID.String(), c.DocumentID.String(), c.Position, c.Front, c.Back,
			c.Hint, c.Type, c.Difficulty, c.Subject, c.CreatedAt.UTC())
	}

	if _, err := s.db.ExecContext(ctx, rebind(s.dialect, q.String()), args...); err != nil {
		log.Error("failed to create cards",
			slog.String("error", err.Error()),
			slog.Int("count", len(cards)))
		return MapError(err)
	}

	log.Info("cards created", slog.Int("count", len(cards)))
	return nil
}
