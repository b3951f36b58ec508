package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// RoutineDocumentRepository stores routine documents as JSONB rows, one per
// routine per user. Replace-by-collection semantics live in the store layer;
// the repository only exposes list, upsert and delete-all.
type RoutineDocumentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRoutineDocumentRepository(db *pgxpool.Pool, logger *zap.Logger) *RoutineDocumentRepository {
	return &RoutineDocumentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *RoutineDocumentRepository) List(ctx context.Context, userID int) ([]json.RawMessage, error) {
	r.logger.Debug("Listing routine documents", zap.Int("user_id", userID))

	query := `
        SELECT doc
        FROM routine_documents
        WHERE user_id = $1
        ORDER BY created_at ASC
    `

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list routine documents", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var doc json.RawMessage
		if err := rows.Scan(&doc); err != nil {
			r.logger.Error("Failed to scan routine document", zap.Error(err))
			return nil, err
		}
		docs = append(docs, doc)
	}

	r.logger.Debug("Listed routine documents",
		zap.Int("user_id", userID),
		zap.Int("count", len(docs)),
	)
	return docs, nil
}

func (r *RoutineDocumentRepository) Upsert(ctx context.Context, userID int, routineID string, doc json.RawMessage) error {
	query := `
        INSERT INTO routine_documents (user_id, routine_id, doc, created_at, updated_at)
        VALUES ($1, $2, $3, NOW(), NOW())
        ON CONFLICT (user_id, routine_id)
        DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()
    `
	if _, err := r.db.Exec(ctx, query, userID, routineID, doc); err != nil {
		r.logger.Error("Failed to upsert routine document",
			zap.Int("user_id", userID),
			zap.String("routine_id", routineID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *RoutineDocumentRepository) DeleteAll(ctx context.Context, userID int) error {
	query := `
        DELETE FROM routine_documents
        WHERE user_id = $1
    `
	if _, err := r.db.Exec(ctx, query, userID); err != nil {
		r.logger.Error("Failed to delete routine documents",
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		return err
	}
	return nil
}
