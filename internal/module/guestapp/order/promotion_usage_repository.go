package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

type PromotionUsageRepository interface {
	Save(ctx context.Context, usage PromotionUsage, tx *sql.Tx) error
}

type promotionUsageRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewPromotionUsageRepository(logger *logrus.Logger, db *sql.DB) PromotionUsageRepository {
	return &promotionUsageRepository{
		logger: logger,
		db:     db,
	}
}

// Save implements PromotionUsageRepository.
func (r *promotionUsageRepository) Save(ctx context.Context, usage PromotionUsage, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO promotion_usages
		(
			order_id, promotion_id, discount_applied, free_service_id, free_service_qty, snapshot, created_at
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, NOW()
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving promotion usage's properties")
	}
	defer stmt.Close()

	snapshot, err := json.Marshal(usage.Snapshot)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving promotion usage's properties")
	}

	var freeServiceID sql.NullInt64
	if usage.FreeServiceID != nil {
		freeServiceID.Int64 = *usage.FreeServiceID
		freeServiceID.Valid = true
	}

	_, err = stmt.ExecContext(ctx, usage.OrderID, usage.PromotionID, usage.DiscountApplied, freeServiceID, usage.FreeServiceQty, snapshot)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving promotion usage's properties")
	}

	return nil
}
