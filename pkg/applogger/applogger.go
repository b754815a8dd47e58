package applogger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/config"
)

var (
	once   sync.Once
	logger *logrus.Logger
)

func GetLogrus() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()
		logger.SetOutput(os.Stdout)
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetReportCaller(true)

		if config.Get().Application.Debug {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.InfoLevel)
		}
	})

	return logger
}
