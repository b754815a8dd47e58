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

type ItemRepository interface {
	Save(ctx context.Context, item Item, tx *sql.Tx) error
	FindManyByOrderID(ctx context.Context, orderID int64, tx *sql.Tx) ([]Item, error)
}

type itemRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewItemRepository(logger *logrus.Logger, db *sql.DB) ItemRepository {
	return &itemRepository{
		logger: logger,
		db:     db,
	}
}

// Save implements ItemRepository.
func (r *itemRepository) Save(ctx context.Context, item Item, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO order_items
		(
			order_id, service_id, service_name, quantity, price_per_unit,
			line_total, details, answers_data
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order item's properties")
	}
	defer stmt.Close()

	details, err := json.Marshal(item.Details)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order item's properties")
	}

	var answers sql.NullString
	if item.Answers != nil {
		buff, err := json.Marshal(item.Answers)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order item's properties")
		}
		answers.String = string(buff)
		answers.Valid = true
	}

	_, err = stmt.ExecContext(ctx, item.OrderID, item.ServiceID, item.ServiceName, item.Quantity, item.PricePerUnit,
		item.LineTotal, details, answers,
	)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order item's properties")
	}

	return nil
}

// FindManyByOrderID implements ItemRepository.
func (r *itemRepository) FindManyByOrderID(ctx context.Context, orderID int64, tx *sql.Tx) ([]Item, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, order_id, service_id, service_name, quantity, price_per_unit,
			line_total, details, answers_data
		FROM order_items
		WHERE
			order_id = $1
		ORDER BY id ASC
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order item's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, orderID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order item's properties")
	}

	defer rows.Close()

	var data = make([]Item, 0)

	for rows.Next() {
		var item Item
		var details []byte
		var answers sql.NullString

		if err := rows.Scan(
			&item.ID, &item.OrderID, &item.ServiceID, &item.ServiceName, &item.Quantity, &item.PricePerUnit,
			&item.LineTotal, &details, &answers,
		); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order item's properties")
		}

		if len(details) > 0 {
			if err := json.Unmarshal(details, &item.Details); err != nil {
				r.logger.WithContext(ctx).WithError(err).Error()
				return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order item's properties")
			}
		}

		if answers.Valid {
			var snapshot AnswersSnapshot
			if err := json.Unmarshal([]byte(answers.String), &snapshot); err != nil {
				r.logger.WithContext(ctx).WithError(err).Error()
				return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order item's properties")
			}
			item.Answers = &snapshot
		}

		data = append(data, item)
	}

	return data, nil
}
