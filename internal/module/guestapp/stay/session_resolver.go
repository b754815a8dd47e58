package stay

import (
	"context"

	"github.com/mangogik/catalog-hotel/internal/pkg/session"
)

type sessionResolver struct {
	repository StayRepository
}

// NewSessionResolver adapts the stay repository to the session middleware's
// token lookup contract.
func NewSessionResolver(repository StayRepository) *sessionResolver {
	return &sessionResolver{repository: repository}
}

func (r *sessionResolver) ResolveByToken(ctx context.Context, token string) (session.Stay, error) {
	s, err := r.repository.FindByAccessToken(ctx, token, nil)
	if err != nil {
		return session.Stay{}, err
	}

	return session.Stay{
		ID:         s.ID,
		CustomerID: s.CustomerID,
		Token:      s.AccessToken,
		RoomLabel:  s.RoomLabel,
		Status:     s.Status,
	}, nil
}
