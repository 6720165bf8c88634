package database

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"
)

var itemColumns = []interface{}{"id", "name", "description", "available", "owner_id", "request_id"}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (name, description, available, owner_id, request_id) VALUES (?, ?, ?, ?, ?)`
	result, err := db.ExecContext(ctx, query,
		item.Name,
		item.Description,
		item.Available,
		item.OwnerID,
		item.RequestID,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	query := `SELECT id, name, description, available, owner_id, request_id FROM items WHERE id = ?`
	if err := db.GetContext(ctx, &item, query, id); err != nil {
		return nil, fmt.Errorf("failed to get item %d: %w", id, translate(err))
	}
	return &item, nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query := `UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, item.Name, item.Description, item.Available, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("failed to update item %d: %w", item.ID, ErrNotFound)
	}
	return nil
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64) ([]*models.Item, error) {
	items := []*models.Item{}
	query := `SELECT id, name, description, available, owner_id, request_id FROM items WHERE owner_id = ? ORDER BY id`
	if err := db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list owner items: %w", err)
	}
	return items, nil
}

// SearchItems matches available items whose name or description contains
// text, ignoring case. LIKE wildcards in text match literally.
func (db *DB) SearchItems(ctx context.Context, text string) ([]*models.Item, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"

	query, args, err := db.dialect.From("items").Prepared(true).
		Select(itemColumns...).
		Where(
			goqu.C("available").Eq(1),
			goqu.Or(
				goqu.L(`fold(name) LIKE ? ESCAPE '\'`, pattern),
				goqu.L(`fold(description) LIKE ? ESCAPE '\'`, pattern),
			),
		).
		Order(goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build search query: %w", err)
	}

	items := []*models.Item{}
	if err := db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

func (db *DB) ListItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.RequestItem, error) {
	items := []*models.RequestItem{}
	if len(requestIDs) == 0 {
		return items, nil
	}

	query, args, err := sqlx.In(`SELECT id, name, owner_id, request_id FROM items WHERE request_id IN (?) ORDER BY id`, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to expand request ids: %w", err)
	}
	if err := db.SelectContext(ctx, &items, db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list request items: %w", err)
	}
	return items, nil
}
