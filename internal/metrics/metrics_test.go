package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axonops/protodesc-core/internal/descriptor"
)

func testCounterValue(c prometheus.Counter) float64 {
	return testutil.ToFloat64(c)
}

func TestNew(t *testing.T) {
	m := New()
	require.NotNil(t, m)
	assert.NotNil(t, m.IngestTotal)
	assert.NotNil(t, m.IngestErrors)
	assert.NotNil(t, m.StorageOperations)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.RecordIngest(5*time.Millisecond, 3, nil)

	handler := m.Handler()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "descriptor_loader_ingest_total"))
}

func TestMetrics_RecordIngest_Success(t *testing.T) {
	m := New()
	m.RecordIngest(time.Millisecond, 2, nil)
	assert.Equal(t, float64(1), testCounterValue(m.IngestTotal.WithLabelValues("success")))
}

func TestMetrics_RecordIngest_ClassifiesErrors(t *testing.T) {
	m := New()

	m.RecordIngest(time.Millisecond, 1, descriptor.ErrSchemaIncomplete)
	assert.Equal(t, float64(1), testCounterValue(m.IngestErrors.WithLabelValues("schema_incomplete")))

	m.RecordIngest(time.Millisecond, 1, descriptor.ErrSchemaInvalid)
	assert.Equal(t, float64(1), testCounterValue(m.IngestErrors.WithLabelValues("schema_invalid")))

	m.RecordIngest(time.Millisecond, 1, descriptor.ErrDefaultParse)
	assert.Equal(t, float64(1), testCounterValue(m.IngestErrors.WithLabelValues("default_parse_error")))
}

func TestMetrics_RecordCacheAccess(t *testing.T) {
	m := New()
	m.RecordCacheAccess("defs", true)
	m.RecordCacheAccess("defs", false)
	assert.Equal(t, float64(1), testCounterValue(m.CacheHits.WithLabelValues("defs")))
	assert.Equal(t, float64(1), testCounterValue(m.CacheMisses.WithLabelValues("defs")))
}

func TestMetrics_RecordStorageOperation(t *testing.T) {
	m := New()
	m.RecordStorageOperation("memory", "put", time.Millisecond, nil)
	m.RecordStorageOperation("memory", "put", time.Millisecond, assertErr{})
	assert.Equal(t, float64(2), testCounterValue(m.StorageOperations.WithLabelValues("memory", "put")))
	assert.Equal(t, float64(1), testCounterValue(m.StorageErrors.WithLabelValues("memory", "put")))
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
