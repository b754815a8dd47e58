package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

type contextKey string

const stayContextKey contextKey = "stay"

// Stay is the reservation context resolved from a guest's access token. It
// is the only identity this service knows about a request.
type Stay struct {
	ID         int64   `json:"id"`
	CustomerID int64   `json:"customer_id"`
	Token      string  `json:"token"`
	RoomLabel  *string `json:"room_label"`
	Status     string  `json:"status"`
}

func SetStayToCtx(ctx context.Context, s Stay) context.Context {
	return context.WithValue(ctx, stayContextKey, s)
}

func GetStayFromCtx(ctx context.Context) (Stay, error) {
	s, ok := ctx.Value(stayContextKey).(Stay)
	if !ok {
		return Stay{}, errors.New(http.StatusUnauthorized, status.UNAUTHORIZED, "no active stay on this request")
	}

	return s, nil
}

type Store interface {
	Get(ctx context.Context, token string) (Stay, bool)
	Set(ctx context.Context, token string, s Stay)
	Delete(ctx context.Context, token string)
}

type redisSessionStore struct {
	logger *logrus.Logger
	client *goredis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(logger *logrus.Logger, client *goredis.Client, ttl time.Duration) Store {
	return &redisSessionStore{
		logger: logger,
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(token string) string {
	return "catalog-hotel:stay-session:" + token
}

// Get implements Store.
func (s *redisSessionStore) Get(ctx context.Context, token string) (Stay, bool) {
	raw, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			s.logger.WithContext(ctx).WithError(err).Error()
		}
		return Stay{}, false
	}

	var stay Stay
	if err := json.Unmarshal(raw, &stay); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
		return Stay{}, false
	}

	return stay, true
}

// Set implements Store.
func (s *redisSessionStore) Set(ctx context.Context, token string, stay Stay) {
	raw, _ := json.Marshal(stay)

	if err := s.client.Set(ctx, sessionKey(token), raw, s.ttl).Err(); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
	}
}

// Delete implements Store.
func (s *redisSessionStore) Delete(ctx context.Context, token string) {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		s.logger.WithContext(ctx).WithError(err).Error()
	}
}
