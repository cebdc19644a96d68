package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"fundvote/internal/config"
)

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MinIOConfig
		wantErr string
	}{
		{name: "missing endpoint", cfg: config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}, wantErr: "endpoint is required"},
		{name: "missing access key", cfg: config.MinIOConfig{Endpoint: "localhost:9000", SecretKey: "s", Bucket: "b"}, wantErr: "credentials are required"},
		{name: "missing secret", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", Bucket: "b"}, wantErr: "credentials are required"},
		{name: "missing bucket", cfg: config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}, wantErr: "bucket is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(context.Background(), tt.cfg)
			assert.Nil(t, s)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewMinIO_TracesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.URL.Query()["location"]; ok {
			w.Header().Set("Content-Type", "application/xml")
			_, _ = w.Write([]byte(`<LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/"></LocationConstraint>`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	s, err := NewMinIO(context.Background(), config.MinIOConfig{
		Endpoint:  u.Host,
		AccessKey: "access",
		SecretKey: "secret",
		Bucket:    "snapshots",
	})
	require.NoError(t, err)
	assert.NotNil(t, s)

	spans := rec.Ended()
	require.NotEmpty(t, spans)
	for _, sp := range spans {
		assert.Equal(t, trace.SpanKindClient, sp.SpanKind())
	}
}
