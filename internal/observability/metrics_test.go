package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveQuery(t *testing.T) {
	before := testutil.CollectAndCount(DatabaseQueryLatency)

	ObserveQuery("get", "posts", time.Now().Add(-5*time.Millisecond))
	ObserveQuery("get", "posts", time.Now())
	ObserveQuery("list", "users", time.Now())

	after := testutil.CollectAndCount(DatabaseQueryLatency)
	assert.Equal(t, before+2, after, "expected one series per operation/table pair")
}
