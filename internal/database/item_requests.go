package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	request.Created = request.Created.UTC()
	query := `INSERT INTO item_requests (description, requester_id, created) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query, request.Description, request.RequesterID, request.Created)
	if err != nil {
		return fmt.Errorf("failed to create item request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var request models.ItemRequest
	query := `SELECT id, description, requester_id, created FROM item_requests WHERE id = ?`
	if err := db.GetContext(ctx, &request, query, id); err != nil {
		return nil, fmt.Errorf("failed to get item request %d: %w", id, translate(err))
	}
	return &request, nil
}

func (db *DB) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	requests := []*models.ItemRequest{}
	query := `SELECT id, description, requester_id, created FROM item_requests
              WHERE requester_id = ? ORDER BY created DESC, id DESC`
	if err := db.SelectContext(ctx, &requests, query, requesterID); err != nil {
		return nil, fmt.Errorf("failed to list own item requests: %w", err)
	}
	return requests, nil
}

// ListRequestsExcept pages through requests made by anyone but userID,
// newest first. offset counts rows, not pages.
func (db *DB) ListRequestsExcept(ctx context.Context, userID int64, offset, limit int) ([]*models.ItemRequest, error) {
	requests := []*models.ItemRequest{}
	query := `SELECT id, description, requester_id, created FROM item_requests
              WHERE requester_id <> ? ORDER BY created DESC, id DESC LIMIT ? OFFSET ?`
	if err := db.SelectContext(ctx, &requests, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list item requests: %w", err)
	}
	return requests, nil
}
