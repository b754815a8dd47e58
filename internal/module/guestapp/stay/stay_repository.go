package stay

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

type StayRepository interface {
	FindByAccessToken(ctx context.Context, token string, tx *sql.Tx) (Stay, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type stayRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewStayRepository(logger *logrus.Logger, db *sql.DB) StayRepository {
	return &stayRepository{
		logger: logger,
		db:     db,
	}
}

// FindByAccessToken implements StayRepository.
func (r *stayRepository) FindByAccessToken(ctx context.Context, token string, tx *sql.Tx) (Stay, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT
			st.id, st.customer_id, st.access_token, st.room_label, st.status, st.checkin_at, st.checkout_at
		FROM stays st
		WHERE st.access_token = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Stay{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting stay's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, token)

	var data Stay
	var roomLabel sql.NullString
	var checkinAt sql.NullTime
	var checkoutAt sql.NullTime

	err = row.Scan(&data.ID, &data.CustomerID, &data.AccessToken, &roomLabel, &data.Status, &checkinAt, &checkoutAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Stay{}, errors.New(http.StatusNotFound, status.NOT_FOUND, "stay with the given access token is not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Stay{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting stay's properties")
	}

	if roomLabel.Valid {
		data.RoomLabel = &roomLabel.String
	}
	if checkinAt.Valid {
		t := checkinAt.Time
		data.CheckinAt = &t
	}
	if checkoutAt.Valid {
		t := checkoutAt.Time
		data.CheckoutAt = &t
	}

	return data, nil
}
