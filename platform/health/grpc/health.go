package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Health - обёртка над стандартным gRPC health service (readiness для оркестратора)
type Health struct {
	srv *health.Server
}

// New создаёт Health с указанным начальным статусом.
// Для readiness используется NOT_SERVING до проверки зависимостей.
func New(initialStatus grpc_health_v1.HealthCheckResponse_ServingStatus) *Health {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", initialStatus)
	return &Health{srv: healthServer}
}

// Register регистрирует health service на gRPC сервере (до grpcSrv.Serve)
func (h *Health) Register(grpcSrv *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(grpcSrv, h.srv)
}

// SetServing переводит serviceName ("" - весь сервер) в SERVING
func (h *Health) SetServing(serviceName string) {
	h.srv.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
}

// SetNotServing переводит serviceName ("" - весь сервер) в NOT_SERVING
func (h *Health) SetNotServing(serviceName string) {
	h.srv.SetServingStatus(serviceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
}

// Probe выставляет статус сервера по результату ping зависимостей.
// Возвращает первую ошибку, статус при этом NOT_SERVING.
func (h *Health) Probe(ctx context.Context, timeout time.Duration, pings ...func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for _, ping := range pings {
		if err := ping(ctx); err != nil {
			h.SetNotServing("")
			return err
		}
	}
	h.SetServing("")
	return nil
}
