package postgres

import (
	"context"

	"devevent/internal/domain"
)

type bookingRepository struct {
	conn Conn
}

// NewBookingRepository returns a domain.BookingRepository implemented with Postgres.
func NewBookingRepository(conn Conn) domain.BookingRepository {
	return &bookingRepository{
		conn: conn,
	}
}

// Create relies on bookings_event_id_fkey, so a booking can never outlive the
// existence check done by the caller even if the event disappears in between.
func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	db, err := r.conn.Ensure(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO bookings (event_id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err = db.QueryRowContext(ctx, query, b.EventID, b.Email, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	if err != nil {
		switch code, _ := pqErrorCode(err); code {
		case codeForeignKeyViolation, codeInvalidTextRep:
			return domain.ErrEventReference
		}
		return err
	}
	return nil
}

func (r *bookingRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	db, err := r.conn.Ensure(ctx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE event_id = $1`, eventID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
