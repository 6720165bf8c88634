package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

// bookingRow is the flattened result of the bookings/items/users join.
type bookingRow struct {
	ID         int64     `db:"id"`
	Start      time.Time `db:"start_at"`
	End        time.Time `db:"end_at"`
	Status     string    `db:"status"`
	ItemID     int64     `db:"item_id"`
	BookerID   int64     `db:"booker_id"`
	ItemName   string    `db:"item_name"`
	OwnerID    int64     `db:"owner_id"`
	BookerName string    `db:"booker_name"`
}

func (r *bookingRow) toModel() *models.Booking {
	return &models.Booking{
		ID:       r.ID,
		Start:    r.Start.UTC(),
		End:      r.End.UTC(),
		Status:   models.BookingStatus(r.Status),
		ItemID:   r.ItemID,
		BookerID: r.BookerID,
		Item:     models.BookingItem{ID: r.ItemID, Name: r.ItemName, OwnerID: r.OwnerID},
		Booker:   models.BookingUser{ID: r.BookerID, Name: r.BookerName},
	}
}

func (db *DB) bookingSelect() *goqu.SelectDataset {
	return db.dialect.From(goqu.T("bookings").As("b")).Prepared(true).
		Join(goqu.T("items").As("i"), goqu.On(goqu.I("i.id").Eq(goqu.I("b.item_id")))).
		Join(goqu.T("users").As("u"), goqu.On(goqu.I("u.id").Eq(goqu.I("b.booker_id")))).
		Select(
			goqu.I("b.id").As("id"),
			goqu.I("b.start_at").As("start_at"),
			goqu.I("b.end_at").As("end_at"),
			goqu.I("b.status").As("status"),
			goqu.I("b.item_id").As("item_id"),
			goqu.I("b.booker_id").As("booker_id"),
			goqu.I("i.name").As("item_name"),
			goqu.I("i.owner_id").As("owner_id"),
			goqu.I("u.name").As("booker_name"),
		)
}

func (db *DB) queryBookings(ctx context.Context, ds *goqu.SelectDataset) ([]*models.Booking, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build booking query: %w", err)
	}

	var rows []bookingRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}

	bookings := make([]*models.Booking, 0, len(rows))
	for i := range rows {
		bookings = append(bookings, rows[i].toModel())
	}
	return bookings, nil
}

// stateFilter translates a list filter into a condition on the joined query.
// ALL yields no condition.
func stateFilter(state models.BookingState, now time.Time) (exp.Expression, error) {
	now = now.UTC()
	switch state {
	case models.StateAll:
		return nil, nil
	case models.StateCurrent:
		return goqu.And(
			goqu.I("b.start_at").Lte(now),
			goqu.I("b.end_at").Gte(now),
		), nil
	case models.StatePast:
		return goqu.I("b.end_at").Lt(now), nil
	case models.StateFuture:
		return goqu.I("b.start_at").Gt(now), nil
	case models.StateWaiting:
		return goqu.I("b.status").Eq(string(models.StatusWaiting)), nil
	case models.StateRejected:
		return goqu.I("b.status").Eq(string(models.StatusRejected)), nil
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownState, state)
	}
}

func (db *DB) listBookings(ctx context.Context, scope exp.Expression, state models.BookingState, now time.Time) ([]*models.Booking, error) {
	filter, err := stateFilter(state, now)
	if err != nil {
		return nil, err
	}

	conditions := []exp.Expression{scope}
	if filter != nil {
		conditions = append(conditions, filter)
	}

	ds := db.bookingSelect().
		Where(conditions...).
		Order(goqu.I("b.start_at").Desc(), goqu.I("b.id").Desc())
	return db.queryBookings(ctx, ds)
}

func (db *DB) ListBookingsByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time) ([]*models.Booking, error) {
	return db.listBookings(ctx, goqu.I("b.booker_id").Eq(bookerID), state, now)
}

func (db *DB) ListBookingsByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time) ([]*models.Booking, error) {
	return db.listBookings(ctx, goqu.I("i.owner_id").Eq(ownerID), state, now)
}

// ListBookingsByItemIDs loads every booking of the given items in one query,
// ordered by start.
func (db *DB) ListBookingsByItemIDs(ctx context.Context, itemIDs []int64) ([]*models.Booking, error) {
	if len(itemIDs) == 0 {
		return []*models.Booking{}, nil
	}
	ds := db.bookingSelect().
		Where(goqu.I("b.item_id").In(itemIDs)).
		Order(goqu.I("b.start_at").Asc(), goqu.I("b.id").Asc())
	return db.queryBookings(ctx, ds)
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	bookings, err := db.queryBookings(ctx, db.bookingSelect().Where(goqu.I("b.id").Eq(id)))
	if err != nil {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, err)
	}
	if len(bookings) == 0 {
		return nil, fmt.Errorf("failed to get booking %d: %w", id, ErrNotFound)
	}
	return bookings[0], nil
}

// CreateBookingWithLock checks availability and inserts the booking in one
// transaction, so an item flipped to unavailable in between cannot be booked.
func (db *DB) CreateBookingWithLock(ctx context.Context, booking *models.NewBooking) (*models.Booking, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var available bool
	err = tx.GetContext(ctx, &available, `SELECT available FROM items WHERE id = ?`, booking.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability in tx: %w", translate(err))
	}
	if !available {
		return nil, ErrNotAvailable
	}

	query := `INSERT INTO bookings (start_at, end_at, item_id, booker_id, status) VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query,
		booking.Start.UTC(),
		booking.End.UTC(),
		booking.ItemID,
		booking.BookerID,
		string(models.StatusWaiting),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert booking in tx: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id in tx: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit booking: %w", err)
	}

	return db.GetBooking(ctx, id)
}

// UpdateBookingStatusFrom moves a booking from one status to another only if
// it still holds the expected status.
func (db *DB) UpdateBookingStatusFrom(ctx context.Context, id int64, from, to models.BookingStatus) error {
	query := `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return ErrConcurrentModification
	}
	return nil
}

// HasCompletedBooking reports whether the user has booked the item for a
// period that ended before now. Any status counts, rejected included.
func (db *DB) HasCompletedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM bookings WHERE booker_id = ? AND item_id = ? AND end_at < ?)`
	if err := db.GetContext(ctx, &exists, query, bookerID, itemID, now.UTC()); err != nil {
		return false, fmt.Errorf("failed to check completed bookings: %w", err)
	}
	return exists, nil
}
