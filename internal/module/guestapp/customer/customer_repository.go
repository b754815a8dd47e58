package customer

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Customer, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type customerRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewCustomerRepository(logger *logrus.Logger, db *sql.DB) CustomerRepository {
	return &customerRepository{
		logger: logger,
		db:     db,
	}
}

// FindByID implements CustomerRepository.
func (r *customerRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Customer, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			c.id, c.name, c.phone, c.email, c.birth_date, m.membership_type
		FROM customers c
		LEFT JOIN memberships m
			ON m.customer_id = c.id
		WHERE c.id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Customer{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting customer's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	var data Customer
	var phone sql.NullString
	var email sql.NullString
	var birthDate sql.NullTime
	var membershipTier sql.NullString

	err = row.Scan(&data.ID, &data.Name, &phone, &email, &birthDate, &membershipTier)
	if err != nil {
		if err == sql.ErrNoRows {
			return Customer{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("customer with id '%d' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Customer{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting customer's properties")
	}

	if phone.Valid {
		data.Phone = &phone.String
	}
	if email.Valid {
		data.Email = &email.String
	}
	if birthDate.Valid {
		bd := birthDate.Time
		data.BirthDate = &bd
	}
	if membershipTier.Valid {
		data.MembershipTier = &membershipTier.String
	}

	return data, nil
}
