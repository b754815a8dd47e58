package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

type ServiceRepository interface {
	FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Service, error)
	FindManyByIDs(ctx context.Context, IDs []int64, tx *sql.Tx) (map[int64]Service, error)
}

type sqlCommand interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

type serviceRepository struct {
	logger *logrus.Logger
	db     *sql.DB
}

func NewServiceRepository(logger *logrus.Logger, db *sql.DB) ServiceRepository {
	return &serviceRepository{
		logger: logger,
		db:     db,
	}
}

const serviceColumns = `
	s.id, s.name, s.slug, s.type, s.price, s.unit_name, s.options_json, q.questions_json
`

const serviceFromClause = `
	FROM services s
	LEFT JOIN service_questions q
		ON q.service_id = s.id AND q.active = TRUE
`

func scanService(scan func(dest ...interface{}) error) (Service, error) {
	var svc Service
	var unitName sql.NullString
	var optionsJSON []byte
	var questionsJSON []byte

	if err := scan(&svc.ID, &svc.Name, &svc.Slug, &svc.Type, &svc.Price, &unitName, &optionsJSON, &questionsJSON); err != nil {
		return Service{}, err
	}

	if unitName.Valid {
		svc.UnitName = &unitName.String
	}
	if len(optionsJSON) > 0 {
		if err := json.Unmarshal(optionsJSON, &svc.Options); err != nil {
			return Service{}, err
		}
	}
	if len(questionsJSON) > 0 {
		if err := json.Unmarshal(questionsJSON, &svc.ActiveQuestions); err != nil {
			return Service{}, err
		}
	}

	return svc, nil
}

// FindByID implements ServiceRepository.
func (r *serviceRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (Service, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT ` + serviceColumns + serviceFromClause + `
		WHERE s.id = $1
		LIMIT 1
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return Service{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting service's properties")
	}
	defer stmt.Close()

	row := stmt.QueryRowContext(ctx, ID)

	svc, err := scanService(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return Service{}, errors.New(http.StatusNotFound, status.NOT_FOUND, fmt.Sprintf("service with id '%d' is not found", ID))
		}
		r.logger.WithContext(ctx).WithError(err).Error()
		return Service{}, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting service's properties")
	}

	return svc, nil
}

// FindManyByIDs implements ServiceRepository.
func (r *serviceRepository) FindManyByIDs(ctx context.Context, IDs []int64, tx *sql.Tx) (map[int64]Service, error) {
	var cmd sqlCommand = r.db

	if tx != nil {
		cmd = tx
	}

	query := `
		SELECT ` + serviceColumns + serviceFromClause + `
		WHERE s.id = ANY($1)
	`

	stmt, err := cmd.PrepareContext(ctx, query)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of service's properties")
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, pq.Array(IDs))
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of service's properties")
	}
	defer rows.Close()

	data := make(map[int64]Service)

	for rows.Next() {
		svc, err := scanService(rows.Scan)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error()
			return nil, errors.New(http.StatusInternalServerError, status.INTERNAL_SERVER_ERROR, "an error occurred while getting bunch of service's properties")
		}

		data[svc.ID] = svc
	}

	return data, nil
}
