package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveFetch("ok", 120*time.Millisecond)
	m.ObserveFetch("ok", 80*time.Millisecond)
	m.ObserveFetch("network_error", time.Second)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetches.WithLabelValues("network_error")))

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.sessionsTotal))

	m.Notify("s1", "cart", "updated", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("cart", "updated")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveFetch("ok", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `dinemenu_menu_fetches_total{outcome="ok"} 1`), body)
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
