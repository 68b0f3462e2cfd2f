package observability

import "time"

// Config - параметры экспорта трасс и метрик inventory в OTLP collector
type Config struct {
	Enabled bool
	// OTLPEndpoint - gRPC адрес collector-а, например "otel-collector:4317"
	OTLPEndpoint string
	// SamplingRatio - доля корневых трасс (0..1)
	SamplingRatio float64
	// MetricInterval - период выгрузки счётчиков резервов, по умолчанию 10s
	MetricInterval time.Duration

	ServiceName           string
	DeploymentEnvironment string
	ServiceVersion        string
}
