package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tripdesk/crm-backend/internal/domain"
)

type QuotationRepository interface {
	Create(ctx context.Context, q *domain.Quotation) (*domain.Quotation, error)
	// Update rewrites the document fields by id. ownerID filters to the
	// owning identity; pass "" to skip the owner check (admin override).
	Update(ctx context.Context, q *domain.Quotation, ownerID string) (*domain.Quotation, error)
	FindByID(ctx context.Context, id int64) (*domain.Quotation, error)
	FindByOwner(ctx context.Context, ownerID string) ([]domain.Quotation, error)
	List(ctx context.Context) ([]domain.Quotation, error)
	Delete(ctx context.Context, id int64, ownerID string) (*domain.Quotation, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	// IncrementCounter bumps the view/download counter and reports the
	// stored PDF URL; found is false when the id is not in this partition.
	IncrementCounter(ctx context.Context, id int64, action string) (pdfURL string, found bool, err error)
}

type quotationRepository struct {
	pool *pgxpool.Pool
}

func NewQuotationRepository(pool *pgxpool.Pool) QuotationRepository {
	return &quotationRepository{pool: pool}
}

const quotationCols = `id, user_id, quotation_name, travel_info, cities_hotels_info, transport_info,
	total_amount, status, pdf_url, view_count, download_count, created_at, updated_at`

func scanQuotation(row pgx.Row) (*domain.Quotation, error) {
	var q domain.Quotation
	err := row.Scan(
		&q.ID, &q.OwnerID, &q.QuotationName, &q.TravelInfo, &q.CitiesHotelsInfo, &q.TransportInfo,
		&q.TotalAmount, &q.Status, &q.PDFURL, &q.ViewCount, &q.DownloadCount, &q.CreatedAt, &q.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *quotationRepository) Create(ctx context.Context, q *domain.Quotation) (*domain.Quotation, error) {
	const query = `
		INSERT INTO quotations (user_id, quotation_name, travel_info, cities_hotels_info,
			transport_info, total_amount, status, pdf_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + quotationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanQuotation(r.pool.QueryRow(ctx, query,
		q.OwnerID, q.QuotationName, q.TravelInfo, q.CitiesHotelsInfo,
		q.TransportInfo, q.TotalAmount, q.Status, q.PDFURL,
	))
}

func (r *quotationRepository) Update(ctx context.Context, q *domain.Quotation, ownerID string) (*domain.Quotation, error) {
	const query = `
		UPDATE quotations
		SET quotation_name = $2, travel_info = $3, cities_hotels_info = $4, transport_info = $5,
			total_amount = $6, status = $7, pdf_url = $8, updated_at = now()
		WHERE id = $1 AND ($9 = '' OR user_id = $9)
		RETURNING ` + quotationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanQuotation(r.pool.QueryRow(ctx, query,
		q.ID, q.QuotationName, q.TravelInfo, q.CitiesHotelsInfo, q.TransportInfo,
		q.TotalAmount, q.Status, q.PDFURL, ownerID,
	))
}

func (r *quotationRepository) FindByID(ctx context.Context, id int64) (*domain.Quotation, error) {
	const query = `SELECT ` + quotationCols + ` FROM quotations WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanQuotation(r.pool.QueryRow(ctx, query, id))
}

func (r *quotationRepository) FindByOwner(ctx context.Context, ownerID string) ([]domain.Quotation, error) {
	const query = `SELECT ` + quotationCols + ` FROM quotations WHERE user_id = $1 ORDER BY created_at DESC`
	return r.query(ctx, query, ownerID)
}

func (r *quotationRepository) List(ctx context.Context) ([]domain.Quotation, error) {
	const query = `SELECT ` + quotationCols + ` FROM quotations ORDER BY created_at DESC`
	return r.query(ctx, query)
}

func (r *quotationRepository) query(ctx context.Context, query string, args ...any) ([]domain.Quotation, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotations []domain.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, *q)
	}
	return quotations, rows.Err()
}

func (r *quotationRepository) Delete(ctx context.Context, id int64, ownerID string) (*domain.Quotation, error) {
	const query = `
		DELETE FROM quotations
		WHERE id = $1 AND ($2 = '' OR user_id = $2)
		RETURNING ` + quotationCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanQuotation(r.pool.QueryRow(ctx, query, id, ownerID))
}

func (r *quotationRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	const query = `SELECT count(*) FROM quotations WHERE user_id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var count int64
	err := r.pool.QueryRow(ctx, query, ownerID).Scan(&count)
	return count, err
}

func (r *quotationRepository) IncrementCounter(ctx context.Context, id int64, action string) (string, bool, error) {
	var col string
	switch action {
	case domain.TrackActionView:
		col = "view_count"
	case domain.TrackActionDownload:
		col = "download_count"
	default:
		return "", false, fmt.Errorf("unknown track action %q", action)
	}

	// col comes from the whitelist above, never from user input directly.
	query := `UPDATE quotations SET ` + col + ` = ` + col + ` + 1 WHERE id = $1 RETURNING pdf_url`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var pdfURL string
	err := r.pool.QueryRow(ctx, query, id).Scan(&pdfURL)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return pdfURL, true, nil
}
