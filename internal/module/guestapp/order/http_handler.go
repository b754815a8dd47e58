package order

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	internalMiddleware "github.com/mangogik/catalog-hotel/internal/pkg/middleware"
	"github.com/mangogik/catalog-hotel/pkg/errors"
	publicMiddleware "github.com/mangogik/catalog-hotel/pkg/middleware"
	"github.com/mangogik/catalog-hotel/pkg/response"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

const callbackTokenHeader = "x-callback-token"

type HTTPHandler struct {
	Validate      *validator.Validate
	CallbackToken string
	OrderUseCase  OrderUseCase
}

func InitHTTPHandler(router *mux.Router, staySession *internalMiddleware.StaySession, validate *validator.Validate, callbackToken string, orderUseCase OrderUseCase) {
	handler := &HTTPHandler{
		Validate:      validate,
		CallbackToken: callbackToken,
		OrderUseCase:  orderUseCase,
	}

	router.HandleFunc("/catalog-hotel/v1/guestapp/cart/preview", publicMiddleware.SetRouteChain(handler.Preview, staySession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/catalog-hotel/v1/guestapp/orders", publicMiddleware.SetRouteChain(handler.Checkout, staySession.Verify)).Methods(http.MethodPost)
	router.HandleFunc("/catalog-hotel/v1/guestapp/orders", publicMiddleware.SetRouteChain(handler.GetManyOrder, staySession.Verify)).Methods(http.MethodGet)
	router.HandleFunc("/catalog-hotel/v1/xendit/notification", publicMiddleware.SetRouteChain(handler.OnPaymentNotification)).Methods(http.MethodPost)
}

func (handler HTTPHandler) validate(ctx context.Context, payload interface{}) error {
	err := handler.Validate.StructCtx(ctx, payload)
	if err == nil {
		return nil
	}

	errorFields := err.(validator.ValidationErrors)

	errMessages := make([]string, len(errorFields))

	for k, errorField := range errorFields {
		errMessages[k] = fmt.Sprintf("invalid '%s' with value '%v'", errorField.Field(), errorField.Value())
	}

	return fmt.Errorf("%s", strings.Join(errMessages, ", "))
}

func (handler HTTPHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := PreviewRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.OrderUseCase.Preview(ctx, req)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "cart preview",
		Data:    resp,
	})
}

func (handler HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := CheckoutRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.JSON(w, http.StatusUnprocessableEntity, response.RESTEnvelope{
			Status:  status.UNPROCESSABLE_ENTITY,
			Message: err.Error(),
		})

		return
	}

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, err := handler.OrderUseCase.Checkout(ctx, req)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusCreated, response.RESTEnvelope{
		Status:  status.CREATED,
		Message: "order has been placed",
		Data:    resp,
	})
}

func (handler HTTPHandler) GetManyOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	qs := r.URL.Query()

	req := GetManyOrderRequest{}
	req.Page, _ = strconv.ParseInt(qs.Get("page"), 10, 64)
	req.Size, _ = strconv.ParseInt(qs.Get("size"), 10, 64)

	if err := handler.validate(ctx, req); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	resp, meta, err := handler.OrderUseCase.GetManyOrder(ctx, req)
	if err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "list of orders",
		Data:    resp,
		Meta:    meta,
	})
}

func (handler HTTPHandler) OnPaymentNotification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Header.Get(callbackTokenHeader) != handler.CallbackToken {
		response.JSON(w, http.StatusForbidden, response.RESTEnvelope{
			Status:  status.FORBIDDEN,
			Message: "callback token mismatch",
		})

		return
	}

	event := PaymentNotificationEvent{}
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: err.Error(),
		})

		return
	}

	if event.ExternalID == "" || event.Status == "" {
		response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
			Status:  status.BAD_REQUEST,
			Message: "notification requires 'external_id' and 'status'",
		})

		return
	}

	if err := handler.OrderUseCase.OnPaymentNotification(ctx, event); err != nil {
		ae := errors.Destruct(err)
		response.JSON(w, ae.HTTPStatusCode, response.RESTEnvelope{
			Status:  ae.Status,
			Message: ae.Message,
		})

		return
	}

	response.JSON(w, http.StatusOK, response.RESTEnvelope{
		Status:  status.OK,
		Message: "notification processed",
	})
}
