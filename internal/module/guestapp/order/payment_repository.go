package order

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

type PaymentRepository interface {
	Save(ctx context.Context, p Payment, tx *sql.Tx) (int64, error)
	FindLatestByOrderID(ctx context.Context, orderID int64, tx *sql.Tx) (Payment, error)
	UpdateExternalReference(ctx context.Context, ID int64, externalID, invoiceURL string, tx *sql.Tx) error
	UpdateStatus(ctx context.Context, ID int64, paymentStatus string, paidAt *time.Time, tx *sql.Tx) error
}

type paymentRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewPaymentRepository(logger *logrus.Logger, db *sql.DB) PaymentRepository {
	return &paymentRepository{
		logger: logger,
		db:     db,
	}
}

// Save implements PaymentRepository.
func (r *paymentRepository) Save(ctx context.Context, p Payment, tx *sql.Tx) (int64, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		INSERT INTO payments
		(
			order_id, method, amount, currency, status, created_at, updated_at
		)
		VALUES
		(
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING id
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving payment's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, p.OrderID, p.Method, p.Amount, p.Currency, p.Status, p.CreatedAt, p.UpdatedAt)

	var id int64
	if err := row.Scan(&id); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return 0, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while saving payment's properties")
	}

	return id, nil
}

// FindLatestByOrderID implements PaymentRepository.
func (r *paymentRepository) FindLatestByOrderID(ctx context.Context, orderID int64, tx *sql.Tx) (Payment, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			id, order_id, method, amount, currency, status, external_id, invoice_url,
			paid_at, created_at, updated_at
		FROM payments
		WHERE
			order_id = $1
		ORDER BY id DESC
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Payment{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting payment's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, orderID)

	var data Payment
	var externalID sql.NullString
	var invoiceURL sql.NullString
	var paidAt sql.NullTime

	err = row.Scan(
		&data.ID, &data.OrderID, &data.Method, &data.Amount, &data.Currency, &data.Status, &externalID, &invoiceURL,
		&paidAt, &data.CreatedAt, &data.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Payment{}, errors.New(http.StatusNotFound, status.NOT_FOUND, "payment for the order is not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Payment{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting payment's properties")
	}

	if externalID.Valid {
		data.ExternalID = &externalID.String
	}
	if invoiceURL.Valid {
		data.InvoiceURL = &invoiceURL.String
	}
	if paidAt.Valid {
		data.PaidAt = &paidAt.Time
	}

	return data, nil
}

// UpdateExternalReference implements PaymentRepository.
func (r *paymentRepository) UpdateExternalReference(ctx context.Context, ID int64, externalID, invoiceURL string, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE payments
		SET
			external_id = $1,
			invoice_url = $2,
			updated_at = NOW()
		WHERE id = $3
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating payment's properties")
	}
	defer stmt.Close()

	_, err = stmt.ExecContext(ctx, externalID, invoiceURL, ID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating payment's properties")
	}

	return nil
}

// UpdateStatus implements PaymentRepository.
func (r *paymentRepository) UpdateStatus(ctx context.Context, ID int64, paymentStatus string, paidAt *time.Time, tx *sql.Tx) error {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		UPDATE payments
		SET
			status = $1,
			paid_at = $2,
			updated_at = NOW()
		WHERE id = $3
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating payment's properties")
	}
	defer stmt.Close()

	var nullPaidAt sql.NullTime
	if paidAt != nil {
		nullPaidAt.Time = *paidAt
		nullPaidAt.Valid = true
	}

	_, err = stmt.ExecContext(ctx, paymentStatus, nullPaidAt, ID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while updating payment's properties")
	}

	return nil
}
