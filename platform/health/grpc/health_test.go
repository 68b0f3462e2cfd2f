package grpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func status(t *testing.T, h *Health) grpc_health_v1.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := h.srv.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_Probe(t *testing.T) {
	h := New(grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	require.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, h))

	ok := func(context.Context) error { return nil }
	require.NoError(t, h.Probe(context.Background(), time.Second, ok, ok))
	require.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, status(t, h))

	pingErr := errors.New("mongo unavailable")
	err := h.Probe(context.Background(), time.Second, ok, func(context.Context) error { return pingErr })
	require.ErrorIs(t, err, pingErr)
	require.Equal(t, grpc_health_v1.HealthCheckResponse_NOT_SERVING, status(t, h))
}
