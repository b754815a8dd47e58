package middleware

import (
	"context"
	"net/http"

	"github.com/mangogik/catalog-hotel/internal/pkg/session"
	"github.com/mangogik/catalog-hotel/pkg/response"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

const stayTokenHeader = "X-Stay-Token"

// StayResolver looks a stay up by its possession token when the session
// cache misses.
type StayResolver interface {
	ResolveByToken(ctx context.Context, token string) (session.Stay, error)
}

type StaySession struct {
	store    session.Store
	resolver StayResolver
}

func NewStaySessionMiddleware(store session.Store, resolver StayResolver) *StaySession {
	return &StaySession{
		store:    store,
		resolver: resolver,
	}
}

// Verify authenticates a request by its stay access token and injects the
// stay context for downstream handlers.
func (m *StaySession) Verify(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := r.Header.Get(stayTokenHeader)
		if token == "" {
			response.JSON(w, http.StatusUnauthorized, response.RESTEnvelope{
				Status:  status.UNAUTHORIZED,
				Message: "missing stay access token",
			})

			return
		}

		stay, ok := m.store.Get(ctx, token)
		if !ok {
			resolved, err := m.resolver.ResolveByToken(ctx, token)
			if err != nil {
				response.JSON(w, http.StatusUnauthorized, response.RESTEnvelope{
					Status:  status.UNAUTHORIZED,
					Message: "invalid stay access token",
				})

				return
			}

			stay = resolved
			m.store.Set(ctx, token, stay)
		}

		next(w, r.WithContext(session.SetStayToCtx(ctx, stay)))
	}
}
