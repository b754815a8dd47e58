package promotion

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

type PromotionRepository interface {
	FindActiveByID(ctx context.Context, ID int64, tx *sql.Tx) (Promotion, error)
	FindManyActive(ctx context.Context, tx *sql.Tx) ([]Promotion, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type promotionRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewPromotionRepository(logger *logrus.Logger, db *sql.DB) PromotionRepository {
	return &promotionRepository{
		logger: logger,
		db:     db,
	}
}

const promotionSelect = `
	SELECT
		p.id, p.name, p.type, p.active, p.discount_percent, p.discount_amount,
		p.free_service_id, p.free_service_qty, p.birthday_days_before, p.membership_tier, p.event_code,
		COALESCE(ARRAY_AGG(ps.service_id) FILTER (WHERE ps.service_id IS NOT NULL), '{}')
	FROM promotions p
	LEFT JOIN promotion_service ps
		ON ps.promotion_id = p.id
`

func scanPromotion(scan func(dest ...interface{}) error) (Promotion, error) {
	var data Promotion
	var discountPercent sql.NullInt64
	var discountAmount sql.NullFloat64
	var freeServiceID sql.NullInt64
	var freeServiceQty sql.NullInt64
	var birthdayDaysBefore sql.NullInt64
	var membershipTier sql.NullString
	var eventCode sql.NullString
	var scopedServiceIDs pq.Int64Array

	err := scan(
		&data.ID, &data.Name, &data.Type, &data.Active, &discountPercent, &discountAmount,
		&freeServiceID, &freeServiceQty, &birthdayDaysBefore, &membershipTier, &eventCode,
		&scopedServiceIDs,
	)
	if err != nil {
		return Promotion{}, err
	}

	if discountPercent.Valid {
		data.DiscountPercent = &discountPercent.Int64
	}
	if discountAmount.Valid {
		data.DiscountAmount = &discountAmount.Float64
	}
	if freeServiceID.Valid {
		data.FreeServiceID = &freeServiceID.Int64
	}
	if freeServiceQty.Valid {
		data.FreeServiceQty = &freeServiceQty.Int64
	}
	if birthdayDaysBefore.Valid {
		data.BirthdayDaysBefore = &birthdayDaysBefore.Int64
	}
	if membershipTier.Valid {
		data.MembershipTier = &membershipTier.String
	}
	if eventCode.Valid {
		data.EventCode = &eventCode.String
	}
	data.ScopedServiceIDs = scopedServiceIDs

	return data, nil
}

// FindActiveByID implements PromotionRepository.
func (r *promotionRepository) FindActiveByID(ctx context.Context, ID int64, tx *sql.Tx) (Promotion, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := promotionSelect + `
		WHERE p.id = $1 AND p.active = TRUE
		GROUP BY p.id
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Promotion{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting promotion's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	data, err := scanPromotion(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return Promotion{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("active promotion with id '%d' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Promotion{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting promotion's properties")
	}

	return data, nil
}

// FindManyActive implements PromotionRepository.
func (r *promotionRepository) FindManyActive(ctx context.Context, tx *sql.Tx) ([]Promotion, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := promotionSelect + `
		WHERE p.active = TRUE
		GROUP BY p.id
		ORDER BY p.id
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of promotion's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of promotion's properties")
	}
	defer rows.Close()

	var data = make([]Promotion, 0)

	for rows.Next() {
		p, err := scanPromotion(rows.Scan)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of promotion's properties")
		}

		data = append(data, p)
	}

	return data, nil
}
