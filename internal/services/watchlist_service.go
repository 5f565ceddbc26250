package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/liamwears/marquee/internal/models"
)

// WatchListService handles per-user "my list" documents
type WatchListService struct {
	db *pgxpool.Pool
}

// NewWatchListService creates a new WatchListService
func NewWatchListService(db *pgxpool.Pool) *WatchListService {
	return &WatchListService{db: db}
}

// ensureList creates an empty list for the user if none exists
func ensureList(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO "WatchList" ("userId", items)
		VALUES ($1, '[]'::jsonb)
		ON CONFLICT ("userId") DO NOTHING
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to create watch list: %w", err)
	}
	return nil
}

func scanWatchList(row pgx.Row) (*models.WatchList, error) {
	var list models.WatchList
	var raw []byte
	if err := row.Scan(&list.UserID, &raw, &list.CreatedAt, &list.UpdatedAt); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &list.Items); err != nil {
			return nil, fmt.Errorf("failed to decode watch list items: %w", err)
		}
	}
	if list.Items == nil {
		list.Items = []models.WatchListItem{}
	}
	return &list, nil
}

// Get retrieves the user's list, creating an empty one on first access
func (s *WatchListService) Get(ctx context.Context, userID string) (*models.WatchList, error) {
	var list *models.WatchList

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if err := ensureList(ctx, tx, userID); err != nil {
			return err
		}

		var err error
		list, err = scanWatchList(tx.QueryRow(ctx, `
			SELECT "userId", items, "createdAt", "updatedAt"
			FROM "WatchList"
			WHERE "userId" = $1
		`, userID))
		if err != nil {
			return fmt.Errorf("failed to get watch list: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}

// Add appends an item to the user's list. models.ErrDuplicateItem is returned,
// and nothing is written, when the external ID is already listed.
func (s *WatchListService) Add(ctx context.Context, userID string, item models.WatchListItem) (*models.WatchList, error) {
	return s.mutate(ctx, userID, func(list *models.WatchList) error {
		return list.Add(item)
	})
}

// Remove drops an item from the user's list. models.ErrItemNotFound is
// returned, and nothing is written, when the external ID is not listed.
func (s *WatchListService) Remove(ctx context.Context, userID, externalID string) (*models.WatchList, error) {
	return s.mutate(ctx, userID, func(list *models.WatchList) error {
		return list.Remove(externalID)
	})
}

// mutate runs a read-modify-write of one list inside a transaction holding
// the row lock. Any error from fn rolls the whole request back.
func (s *WatchListService) mutate(ctx context.Context, userID string, fn func(*models.WatchList) error) (*models.WatchList, error) {
	var list *models.WatchList

	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if err := ensureList(ctx, tx, userID); err != nil {
			return err
		}

		var err error
		list, err = scanWatchList(tx.QueryRow(ctx, `
			SELECT "userId", items, "createdAt", "updatedAt"
			FROM "WatchList"
			WHERE "userId" = $1
			FOR UPDATE
		`, userID))
		if err != nil {
			return fmt.Errorf("failed to lock watch list: %w", err)
		}

		if err := fn(list); err != nil {
			return err
		}

		raw, err := json.Marshal(list.Items)
		if err != nil {
			return fmt.Errorf("failed to encode watch list items: %w", err)
		}

		err = tx.QueryRow(ctx, `
			UPDATE "WatchList"
			SET items = $2::jsonb, "updatedAt" = NOW()
			WHERE "userId" = $1
			RETURNING "updatedAt"
		`, userID, raw).Scan(&list.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to save watch list: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return list, nil
}
