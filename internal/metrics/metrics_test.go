package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/troikacore/trailcore/internal/metrics"
)

func TestCountersIncrement(t *testing.T) {
	c := metrics.New()

	c.VisitNode("KN.FromForwardExtension")
	c.VisitNode("KN.FromForwardExtension")
	c.FoundTrailCore("KN")
	c.AppendedRecord()
	c.AppendedRecord()
	c.UniqueRecord()

	if got := testutil.ToFloat64(c.NodesVisited.WithLabelValues("KN.FromForwardExtension")); got != 2 {
		t.Fatalf("NodesVisited = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.TrailCoresFound.WithLabelValues("KN")); got != 1 {
		t.Fatalf("TrailCoresFound = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.RecordsAppended); got != 2 {
		t.Fatalf("RecordsAppended = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.RecordsUnique); got != 1 {
		t.Fatalf("RecordsUnique = %v, want 1", got)
	}
}

func TestNilCountersAreNoOps(t *testing.T) {
	var c *metrics.Counters
	c.VisitNode("stage")
	c.FoundTrailCore("generator")
	c.AppendedRecord()
	c.UniqueRecord()
}
