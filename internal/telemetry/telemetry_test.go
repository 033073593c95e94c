// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framegrace/texelgrid/internal/telemetry"
	"github.com/framegrace/texelgrid/window"
)

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	return rec.Body.String()
}

func TestExporter_ServesTargetInfo(t *testing.T) {
	t.Parallel()

	e, err := telemetry.NewExporter()
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })

	assert.Contains(t, scrape(t, e.Handler), "target_info")
}

func TestExporter_WindowMetricsExported(t *testing.T) {
	t.Parallel()

	e, err := telemetry.NewExporter()
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })

	m, err := window.NewMetrics(e.Meter())
	require.NoError(t, err)

	src := window.SourceFunc[int](func(ctx context.Context, offset, length int) (window.Page[int], error) {
		return window.Page[int]{Total: 10, Items: make([]int, min(length, 10))}, nil
	})
	eng := window.NewEngine[int](context.Background(), src, window.Options{Metrics: m})
	t.Cleanup(eng.Close)

	require.NoError(t, eng.Measure(window.Measurement{ContainerWidth: 30, ViewportHeight: 20}))
	eng.Flush()
	eng.Wait()

	assert.Contains(t, scrape(t, e.Handler), "fetches")
}

func TestServer_ServesHealthAndMetrics(t *testing.T) {
	t.Parallel()

	e, err := telemetry.NewExporter()
	require.NoError(t, err)

	srv, err := telemetry.Listen(context.Background(), "127.0.0.1:0", e)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve() }()

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	require.NoError(t, srv.Close(context.Background()))
	require.NoError(t, <-done)
}
