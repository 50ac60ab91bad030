package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/crm-backend/internal/domain"
)

type TaxiRepository interface {
	Create(ctx context.Context, t *domain.Taxi) (*domain.Taxi, error)
	// Update and Delete filter by owner unless ownerID is "" (admin override).
	Update(ctx context.Context, t *domain.Taxi, ownerID string) (*domain.Taxi, error)
	Delete(ctx context.Context, id int64, ownerID string) (*domain.Taxi, error)
	FindByID(ctx context.Context, id int64, ownerID string) (*domain.Taxi, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Taxi, error)
	List(ctx context.Context) ([]domain.Taxi, error)
}

type taxiRepository struct {
	pool *pgxpool.Pool
}

func NewTaxiRepository(pool *pgxpool.Pool) TaxiRepository {
	return &taxiRepository{pool: pool}
}

const taxiCols = `id, user_id, trip_date, pickup, drop_off, trip_days, route, vehicle_type,
	amount, distance, kilo_fare, user_name, is_local, company_name, created_at`

func scanTaxi(row pgx.Row) (*domain.Taxi, error) {
	var t domain.Taxi
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.TripDate, &t.Pickup, &t.Drop, &t.TripDays, &t.Route,
		&t.VehicleType, &t.Amount, &t.Distance, &t.KiloFare, &t.UserName, &t.IsLocal,
		&t.CompanyName, &t.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taxiRepository) Create(ctx context.Context, t *domain.Taxi) (*domain.Taxi, error) {
	const q = `
		INSERT INTO taxis (user_id, trip_date, pickup, drop_off, trip_days, route,
			vehicle_type, amount, distance, kilo_fare, user_name, is_local, company_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + taxiCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanTaxi(r.pool.QueryRow(ctx, q,
		t.OwnerID, t.TripDate, t.Pickup, t.Drop, t.TripDays, t.Route,
		t.VehicleType, t.Amount, t.Distance, t.KiloFare, t.UserName, t.IsLocal, t.CompanyName,
	))
}

func (r *taxiRepository) Update(ctx context.Context, t *domain.Taxi, ownerID string) (*domain.Taxi, error) {
	const q = `
		UPDATE taxis
		SET trip_date = $2, pickup = $3, drop_off = $4, trip_days = $5, route = $6,
			vehicle_type = $7, amount = $8, distance = $9, kilo_fare = $10,
			user_name = $11, is_local = $12, company_name = $13
		WHERE id = $1 AND ($14 = '' OR user_id = $14)
		RETURNING ` + taxiCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanTaxi(r.pool.QueryRow(ctx, q,
		t.ID, t.TripDate, t.Pickup, t.Drop, t.TripDays, t.Route,
		t.VehicleType, t.Amount, t.Distance, t.KiloFare, t.UserName, t.IsLocal, t.CompanyName,
		ownerID,
	))
}

func (r *taxiRepository) Delete(ctx context.Context, id int64, ownerID string) (*domain.Taxi, error) {
	const q = `
		DELETE FROM taxis
		WHERE id = $1 AND ($2 = '' OR user_id = $2)
		RETURNING ` + taxiCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanTaxi(r.pool.QueryRow(ctx, q, id, ownerID))
}

func (r *taxiRepository) FindByID(ctx context.Context, id int64, ownerID string) (*domain.Taxi, error) {
	const q = `SELECT ` + taxiCols + ` FROM taxis WHERE id = $1 AND ($2 = '' OR user_id = $2)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanTaxi(r.pool.QueryRow(ctx, q, id, ownerID))
}

func (r *taxiRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.Taxi, error) {
	const q = `SELECT ` + taxiCols + ` FROM taxis WHERE user_id = $1 ORDER BY created_at DESC`
	return r.query(ctx, q, ownerID)
}

func (r *taxiRepository) List(ctx context.Context) ([]domain.Taxi, error) {
	const q = `SELECT ` + taxiCols + ` FROM taxis ORDER BY created_at DESC`
	return r.query(ctx, q)
}

func (r *taxiRepository) query(ctx context.Context, query string, args ...any) ([]domain.Taxi, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taxis []domain.Taxi
	for rows.Next() {
		t, err := scanTaxi(rows)
		if err != nil {
			return nil, err
		}
		taxis = append(taxis, *t)
	}
	return taxis, rows.Err()
}
