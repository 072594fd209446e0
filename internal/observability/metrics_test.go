package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/danmuck/sonicctl/internal/restconf"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("sonicctl", "GET", "/health", 200, 12*time.Millisecond)
	RecordRun("dhcp_relay", "merged", OutcomeChanged, 24*time.Millisecond)
	RecordTransportFailure("dhcp_relay")
}

func TestRecordRequestsCountsByMethod(t *testing.T) {
	before := testutil.ToFloat64(restconfRequests.WithLabelValues("metrics_test", "delete"))
	RecordRequests("metrics_test", []restconf.Request{
		restconf.Delete("a"),
		restconf.Patch("b", "k", 1),
		restconf.Delete("c"),
	})
	after := testutil.ToFloat64(restconfRequests.WithLabelValues("metrics_test", "delete"))
	if after-before != 2 {
		t.Fatalf("expected 2 delete requests recorded, got %v", after-before)
	}
	if got := testutil.ToFloat64(restconfRequests.WithLabelValues("metrics_test", "patch")); got != 1 {
		t.Fatalf("expected 1 patch request recorded, got %v", got)
	}
}
