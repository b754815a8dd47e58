package order

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

type OrderRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(ctx context.Context, tx *sql.Tx) error
	Rollback(ctx context.Context, tx *sql.Tx) error

	Save(ctx context.Context, o Order, tx *sql.Tx) (int64, error)
	ExistsByOrderCode(ctx context.Context, orderCode string, tx *sql.Tx) (bool, error)
	UpdateOrderCode(ctx context.Context, ID int64, orderCode string, tx *sql.Tx) error
	FindByOrderCode(ctx context.Context, orderCode string, tx *sql.Tx) (Order, error)
	UpdateStatus(ctx context.Context, ID int64, orderStatus string, tx *sql.Tx) error
	FindManyByStayID(ctx context.Context, stayID int64, offset, limit int64, tx *sql.Tx) ([]Order, error)
	CountByStayID(ctx context.Context, stayID int64, tx *sql.Tx) (int64, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type orderRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewOrderRepository(logger *logrus.Logger, db *sql.DB) OrderRepository {
	return &orderRepository{
		logger: logger,
		db:     db,
	}
}

// BeginTx implements OrderRepository.
func (r *orderRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to begin transaction")
	}

	return tx, nil
}

// CommitTx implements OrderRepository.
func (r *orderRepository) CommitTx(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to commit transaction")
	}

	return nil
}

// Rollback implements OrderRepository.
func (r *orderRepository) Rollback(ctx context.Context, tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred trying to rollback transaction")
	}

	return nil
}

// Save implements OrderRepository.
func (r *orderRepository) Save(ctx context.Context, o Order, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO orders
		(
			customer_id, stay_id, order_code, payment_preference, status,
			subtotal, discount_total, grand_total, notes, created_at, updated_at
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
		RETURNING id
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order's properties")
	}
	defer stmt.Close()

	var notes sql.NullString
	if o.Notes != nil {
		notes.String = *o.Notes
		notes.Valid = true
	}

	row := stmt.QueryRowContext(ctx, o.CustomerID, o.StayID, o.OrderCode, o.PaymentPreference, o.Status,
		o.Subtotal, o.DiscountTotal, o.GrandTotal, notes, o.CreatedAt, o.UpdatedAt,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving order's properties")
	}

	return id, nil
}

// ExistsByOrderCode implements OrderRepository.
func (r *orderRepository) ExistsByOrderCode(ctx context.Context, orderCode string, tx *sql.Tx) (bool, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM orders
			WHERE order_code = $1
		)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while checking order's code")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, orderCode)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return false, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while checking order's code")
	}

	return exists, nil
}

// UpdateOrderCode implements OrderRepository.
func (r *orderRepository) UpdateOrderCode(ctx context.Context, ID int64, orderCode string, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE orders
		SET
			order_code = $1
		WHERE id = $2
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's code")
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, orderCode, ID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's code")
	}

	return nil
}

// FindByOrderCode implements OrderRepository.
func (r *orderRepository) FindByOrderCode(ctx context.Context, orderCode string, tx *sql.Tx) (Order, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, customer_id, stay_id, order_code, payment_preference, status,
			subtotal, discount_total, grand_total, notes, created_at, updated_at
		FROM orders
		WHERE
			order_code = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, orderCode)

	var data Order
	var notes sql.NullString

	err = row.Scan(
		&data.ID, &data.CustomerID, &data.StayID, &data.OrderCode, &data.PaymentPreference, &data.Status,
		&data.Subtotal, &data.DiscountTotal, &data.GrandTotal, &notes, &data.CreatedAt, &data.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Order{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("order with code '%s' is not found", orderCode))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Order{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting order's properties")
	}

	if notes.Valid {
		data.Notes = &notes.String
	}

	return data, nil
}

// UpdateStatus implements OrderRepository.
func (r *orderRepository) UpdateStatus(ctx context.Context, ID int64, orderStatus string, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE orders
		SET
			status = $1,
			updated_at = NOW()
		WHERE id = $2
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's properties")
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, orderStatus, ID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating order's properties")
	}

	return nil
}

// FindManyByStayID implements OrderRepository.
func (r *orderRepository) FindManyByStayID(ctx context.Context, stayID int64, offset, limit int64, tx *sql.Tx) ([]Order, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, customer_id, stay_id, order_code, payment_preference, status,
			subtotal, discount_total, grand_total, notes, created_at, updated_at
		FROM orders
		WHERE
			stay_id = $1
		ORDER BY id DESC
		OFFSET $2
		LIMIT $3
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, stayID, offset, limit)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
	}

	defer rows.Close()

	var data = make([]Order, 0)

	for rows.Next() {
		var o Order
		var notes sql.NullString

		if err := rows.Scan(
			&o.ID, &o.CustomerID, &o.StayID, &o.OrderCode, &o.PaymentPreference, &o.Status,
			&o.Subtotal, &o.DiscountTotal, &o.GrandTotal, &notes, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of order's properties")
		}

		if notes.Valid {
			o.Notes = &notes.String
		}

		data = append(data, o)
	}

	return data, nil
}

// CountByStayID implements OrderRepository.
func (r *orderRepository) CountByStayID(ctx context.Context, stayID int64, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT count(id)
		FROM orders
		WHERE
			stay_id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting order's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, stayID)

	var count int64

	err = row.Scan(&count)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while counting order's properties")
	}

	return count, nil
}
