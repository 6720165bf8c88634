package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/jmoiron/sqlx"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.Created = comment.Created.UTC()
	query := `INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query, comment.Text, comment.ItemID, comment.AuthorID, comment.Created)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id

	if err := db.GetContext(ctx, &comment.AuthorName, `SELECT name FROM users WHERE id = ?`, comment.AuthorID); err != nil {
		return fmt.Errorf("failed to load comment author: %w", translate(err))
	}
	return nil
}

// ListCommentsByItemIDs returns the comments of all given items, oldest first.
func (db *DB) ListCommentsByItemIDs(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	if len(itemIDs) == 0 {
		return comments, nil
	}

	query, args, err := sqlx.In(`SELECT c.id, c.text, c.item_id, c.author_id, u.name AS author_name, c.created
              FROM comments c JOIN users u ON u.id = c.author_id
              WHERE c.item_id IN (?) ORDER BY c.created, c.id`, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to expand item ids: %w", err)
	}
	if err := db.SelectContext(ctx, &comments, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
