package server

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

type Server struct {
	http.Server
	Logger *logrus.Logger
}

func (s *Server) ListenAndServe() {
	s.Logger.WithField("address", s.Addr).Info("http server is listening")

	if err := s.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.Logger.WithError(err).Error()
	}
}

func (s *Server) Shutdown(ctx context.Context) {
	if err := s.Server.Shutdown(ctx); err != nil {
		s.Logger.WithError(err).Error()
	}

	s.Logger.Info("http server has been shut down")
}
