package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Outcome(nil))
	assert.Equal(t, OutcomeFailure, Outcome(errors.New("boom")))
}

func TestCascadeRuns(t *testing.T) {
	counter := CascadeRuns.WithLabelValues("post", OutcomeFailure)
	before := testutil.ToFloat64(counter)
	counter.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestHandler(t *testing.T) {
	BlobOperations.WithLabelValues("upload", OutcomeSuccess).Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "campustrack_blob_operations_total")
}
