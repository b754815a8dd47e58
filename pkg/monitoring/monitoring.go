package monitoring

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

type Monitoring interface {
	Start(ctx context.Context)
	Stop(ctx context.Context)
}

type openTelemetry struct {
	logger         *logrus.Logger
	serviceName    string
	environment    string
	jaegerEndpoint string
	provider       *tracesdk.TracerProvider
}

func NewOpenTelemetry(logger *logrus.Logger, serviceName, environment, jaegerEndpoint string) Monitoring {
	return &openTelemetry{
		logger:         logger,
		serviceName:    serviceName,
		environment:    environment,
		jaegerEndpoint: jaegerEndpoint,
	}
}

// Start implements Monitoring.
func (m *openTelemetry) Start(ctx context.Context) {
	exporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(m.jaegerEndpoint)))
	if err != nil {
		m.logger.WithContext(ctx).WithError(err).Error()
		return
	}

	m.provider = tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exporter),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(m.serviceName),
			attribute.String("environment", m.environment),
		)),
	)

	otel.SetTracerProvider(m.provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Stop implements Monitoring.
func (m *openTelemetry) Stop(ctx context.Context) {
	if m.provider == nil {
		return
	}

	if err := m.provider.Shutdown(ctx); err != nil {
		m.logger.WithContext(ctx).WithError(err).Error()
	}
}
