package promotion

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	internalMiddleware "github.com/mangogik/catalog-hotel/internal/pkg/middleware"
	"github.com/mangogik/catalog-hotel/pkg/errors"
	publicMiddleware "github.com/mangogik/catalog-hotel/pkg/middleware"
	"github.com/mangogik/catalog-hotel/pkg/response"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

type HTTPHandler struct {
	Validate         *validator.Validate
	PromotionUseCase PromotionUseCase
}

func InitHTTPHandler(router *mux.Router, staySession *internalMiddleware.StaySession, validate *validator.Validate, promotionUseCase PromotionUseCase) {
	handler := &HTTPHandler{
		Validate:         validate,
		PromotionUseCase: promotionUseCase,
	}

	router.HandleFunc("/catalog-hotel/v1/guestapp/promotions/eligible", publicMiddleware.SetRouteChain(handler.ListEligible, staySession.Verify)).Methods(http.MethodGet)
}

func (handler HTTPHandler) ListEligible(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := ListEligibleRequest{}
	if raw := r.URL.Query().Get("service_id"); raw != "" {
		serviceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.JSON(w, http.StatusBadRequest, response.RESTEnvelope{
				Status:  status.BAD_REQUEST,
				Message: "invalid 'service_id' query parameter",
			})

			return
		}
		req.ServiceID = &serviceID
	}

	resp, err := handler.PromotionUseCase.ListEligible(ctx, req)
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
		Message: "list of eligible promotions",
		Data:    resp,
	})
}
