package repository

import (
	"context"
	"errors"
	"log/slog"

	domain "casita-reservations/internal/domain/reservation"
	"casita-reservations/internal/infra"
	"casita-reservations/internal/usecase/readmodel"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReservationRepository(pool *pgxpool.Pool, logger *slog.Logger) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		logger: logger,
	}
}

const reservationColumns = `id, token, name, email, phone, date, time, diners, seating, pickup, status, denial_reason, created_at, updated_at`

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) (*readmodel.ReservationRM, error) {
	d := res.Details()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO reservations (id, token, name, email, phone, date, time, diners, seating, pickup, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+reservationColumns,
		res.ID(), res.Token(), d.Name, d.Email, d.Phone, d.Date, d.Time, d.Diners, d.Seating, d.Pickup, res.Status().String(),
	)

	rm, err := scanReservation(row)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, infra.WrapRepoErr(infra.KindDuplicateKey, "reservation already exists", err)
		}
		r.logger.Error("failed to insert reservation", "error", err)
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to create reservation", err)
	}
	return rm, nil
}

func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*readmodel.ReservationRM, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE id = $1`,
		id,
	)

	rm, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr(infra.KindNotFound, "reservation not found", err)
		}
		r.logger.Error("failed to find reservation", "error", err, "reservation_id", id)
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to find reservation", err)
	}
	return rm, nil
}

func (r *ReservationRepository) List(ctx context.Context) ([]*readmodel.ReservationListRM, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, date, time, diners, status
		FROM reservations
		ORDER BY date, time`,
	)
	if err != nil {
		r.logger.Error("failed to list reservations", "error", err)
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to list reservations", err)
	}
	defer rows.Close()

	var items []*readmodel.ReservationListRM
	for rows.Next() {
		var rm readmodel.ReservationListRM
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Date, &rm.Time, &rm.Diners, &rm.Status); err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan reservation row", err)
		}
		items = append(items, &rm)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to iterate reservation rows", err)
	}
	return items, nil
}

// UpdateStatus finalizes a decision. The update is conditional on the row
// still being Pending, so a terminal status can never be overwritten even if
// two decisions race past the in-memory guard.
func (r *ReservationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, denialReason *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reservations
		SET status = $2, denial_reason = $3, updated_at = now()
		WHERE id = $1 AND status = $4`,
		id, status.String(), denialReason, domain.StatusPending.String(),
	)
	if err != nil {
		r.logger.Error("failed to update reservation status", "error", err, "reservation_id", id)
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update reservation status", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = $1)`, id).Scan(&exists); err != nil {
			return infra.WrapRepoErr(infra.KindDBFailure, "failed to check reservation existence", err)
		}
		if !exists {
			return infra.WrapRepoErr(infra.KindNotFound, "reservation not found", nil)
		}
		return infra.WrapRepoErr(infra.KindConflict, "reservation already decided", nil)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*readmodel.ReservationRM, error) {
	var rm readmodel.ReservationRM
	err := row.Scan(
		&rm.ID, &rm.Token,
		&rm.Name, &rm.Email, &rm.Phone,
		&rm.Date, &rm.Time, &rm.Diners, &rm.Seating, &rm.Pickup,
		&rm.Status, &rm.DenialReason,
		&rm.CreatedAt, &rm.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rm, nil
}
