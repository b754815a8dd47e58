package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/mangogik/catalog-hotel/config"
	"github.com/mangogik/catalog-hotel/internal/module/guestapp/catalog"
	"github.com/mangogik/catalog-hotel/internal/module/guestapp/customer"
	"github.com/mangogik/catalog-hotel/internal/module/guestapp/order"
	"github.com/mangogik/catalog-hotel/internal/module/guestapp/promotion"
	"github.com/mangogik/catalog-hotel/internal/module/guestapp/stay"
	"github.com/mangogik/catalog-hotel/internal/module/guestapp/xendit"
	internalMiddleware "github.com/mangogik/catalog-hotel/internal/pkg/middleware"
	"github.com/mangogik/catalog-hotel/internal/pkg/session"
	"github.com/mangogik/catalog-hotel/internal/pkg/webhook"
	"github.com/mangogik/catalog-hotel/pkg/applogger"
	"github.com/mangogik/catalog-hotel/pkg/kafka"
	"github.com/mangogik/catalog-hotel/pkg/middleware"
	"github.com/mangogik/catalog-hotel/pkg/monitoring"
	"github.com/mangogik/catalog-hotel/pkg/postgresql"
	"github.com/mangogik/catalog-hotel/pkg/pubsub"
	"github.com/mangogik/catalog-hotel/pkg/redis"
	"github.com/mangogik/catalog-hotel/pkg/server"
	"github.com/mangogik/catalog-hotel/pkg/validator"
)

var c *config.Config

func init() {
	c = config.Get()
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := applogger.GetLogrus()

	if err := c.Validate(); err != nil {
		logger.WithError(err).Fatal("configuration is incomplete")
	}

	mon := monitoring.NewOpenTelemetry(
		logger,
		c.Application.Name,
		c.Application.Environment,
		c.Jaeger.Endpoint,
	)

	mon.Start(ctx)

	validate := validator.Get()

	hc := http.DefaultClient

	psqldb := postgresql.GetDatabase()
	if err := psqldb.Ping(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	publisher := pubsub.PublisherFromConfluentKafkaProducer(logger, kafka.NewProducer())

	rc := redis.GetClient()
	if err := rc.Ping(context.Background()).Err(); err != nil {
		logger.WithContext(ctx).WithError(err).Error()
	}

	sessionStore := session.NewRedisSessionStore(logger, rc, c.Session.TTL)

	notifier := webhook.NewNotifier(webhook.NotifierProperty{
		Logger:      logger,
		URL:         c.Webhook.OrderURL,
		MaxAttempts: c.Webhook.MaxAttempts,
		RetryDelay:  c.Webhook.RetryDelay,
		Timeout:     c.Webhook.Timeout,
	})

	stayRepo := stay.NewStayRepository(logger, psqldb)
	staySessionMiddleware := internalMiddleware.NewStaySessionMiddleware(sessionStore, stay.NewSessionResolver(stayRepo))

	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(c.Application.Name),
		middleware.HTTPResponseTraceInjection,
		middleware.NewHTTPRequestLogger(logger, c.Application.Debug, http.StatusInternalServerError).Middleware,
	)

	// guest's app
	serviceRepo := catalog.NewServiceRepository(logger, psqldb)
	customerRepo := customer.NewCustomerRepository(logger, psqldb)
	promotionRepo := promotion.NewPromotionRepository(logger, psqldb)
	orderRepo := order.NewOrderRepository(logger, psqldb)
	orderItemRepo := order.NewItemRepository(logger, psqldb)
	promotionUsageRepo := order.NewPromotionUsageRepository(logger, psqldb)
	paymentRepo := order.NewPaymentRepository(logger, psqldb)
	xenditRepo := xendit.NewXenditRepository(c.Xendit.BaseURL, c.Xendit.SecretKey, logger, hc)

	pricing := order.NewPricingCalculator(logger, serviceRepo, c.Order.StrictItems)

	promotionUseCase := promotion.NewPromotionUseCase(promotion.PromotionUseCaseProperty{
		Logger:              logger,
		Timeout:             c.Application.Timeout,
		PromotionRepository: promotionRepo,
		CustomerRepository:  customerRepo,
		ServiceRepository:   serviceRepo,
	})
	promotion.InitHTTPHandler(router, staySessionMiddleware, validate, promotionUseCase)

	orderUseCase := order.NewOrderUseCase(order.OrderUseCaseProperty{
		Logger:                   logger,
		Timeout:                  c.Application.Timeout,
		Currency:                 c.Order.Currency,
		SuccessRedirectURL:       c.Xendit.SuccessRedirectURL,
		FailureRedirectURL:       c.Xendit.FailureRedirectURL,
		Pricing:                  pricing,
		CustomerRepository:       customerRepo,
		PromotionRepository:      promotionRepo,
		OrderRepository:          orderRepo,
		ItemRepository:           orderItemRepo,
		PromotionUsageRepository: promotionUsageRepo,
		PaymentRepository:        paymentRepo,
		XenditRepository:         xenditRepo,
		Publisher:                publisher,
		Notifier:                 notifier,
	})
	order.InitHTTPHandler(router, staySessionMiddleware, validate, c.Xendit.CallbackToken, orderUseCase)

	handler := middleware.SetChain(
		router,
		cors.New(cors.Options{
			AllowedOrigins:   c.CORS.AllowedOrigins,
			AllowedMethods:   c.CORS.AllowedMethods,
			AllowedHeaders:   c.CORS.AllowedHeaders,
			ExposedHeaders:   c.CORS.ExposedHeaders,
			MaxAge:           c.CORS.MaxAge,
			AllowCredentials: c.CORS.AllowCredentials,
		}).Handler,
	)

	srv := &server.Server{
		Server: http.Server{
			Addr:    fmt.Sprintf(":%d", c.Application.Port),
			Handler: handler,
		},
		Logger: logger,
	}

	go func() {
		srv.ListenAndServe()
	}()

	sigterm := make(chan os.Signal, 1)
	signal.Notify(sigterm, syscall.SIGINT, syscall.SIGTERM)
	<-sigterm

	srv.Shutdown(ctx)
	notifier.Close()
	publisher.Close()
	psqldb.Close()
	rc.Close()
	mon.Stop(ctx)
}
