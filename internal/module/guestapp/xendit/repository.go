package xendit

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

type XenditRepository interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (CreateInvoiceResponse, error)
}

type xenditRepository struct {
	baseURL   string
	secretKey string
	logger    *logrus.Logger
	hc        *http.Client
}

func NewXenditRepository(baseURL string, secretKey string, logger *logrus.Logger, hc *http.Client) XenditRepository {
	return &xenditRepository{
		baseURL:   baseURL,
		secretKey: secretKey,
		logger:    logger,
		hc:        hc,
	}
}

// CreateInvoice implements XenditRepository.
func (r *xenditRepository) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (CreateInvoiceResponse, error) {
	reqBuff, _ := json.Marshal(req)
	body := bytes.NewBuffer(reqBuff)
	url := fmt.Sprintf("%s/v2/invoices", r.baseURL)

	hr, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return CreateInvoiceResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while creating invoice through xendit")
	}

	basicAuth := base64.StdEncoding.EncodeToString([]byte(r.secretKey + ":"))

	hr.Header.Add("Content-Type", "application/json")
	hr.Header.Add("Accept", "application/json")
	hr.Header.Add("Authorization", fmt.Sprintf("Basic %s", basicAuth))

	hresp, err := r.hc.Do(hr)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return CreateInvoiceResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while creating invoice through xendit")
	}

	defer hresp.Body.Close()

	respBody, err := io.ReadAll(hresp.Body)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return CreateInvoiceResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while creating invoice through xendit")
	}

	if hresp.StatusCode < 200 || hresp.StatusCode > 299 {
		err := fmt.Errorf("xendit responded with status %d: %s", hresp.StatusCode, string(respBody))
		r.logger.WithContext(ctx).WithError(err).Error()
		return CreateInvoiceResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while creating invoice through xendit")
	}

	var resp CreateInvoiceResponse

	if err := json.Unmarshal(respBody, &resp); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error()
		return CreateInvoiceResponse{}, errors.New(http.StatusBadGateway, status.BAD_GATEWAY, "an error occurred while creating invoice through xendit")
	}

	return resp, nil
}
