package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/domain/meal"
	"github.com/nutriplan/mealengine/internal/ports/outbound"
)

func TestVerdictCacheRoundTrip(t *testing.T) {
	c := NewVerdictCache(time.Minute)

	_, ok := c.Get()
	assert.False(t, ok)

	v := meal.HealthVerdict{Reachable: true, AuthOK: true, Diagnosis: meal.DiagnosisOK}
	c.Set(v, 0)

	got, ok := c.Get()
	require.True(t, ok)
	assert.Equal(t, v, got)

	c.Clear()
	_, ok = c.Get()
	assert.False(t, ok)
}

func TestVerdictCacheExpiry(t *testing.T) {
	c := NewVerdictCache(time.Minute)
	c.Set(meal.HealthVerdict{Diagnosis: meal.DiagnosisOK}, 10*time.Millisecond)

	_, ok := c.Get()
	assert.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get()
	assert.False(t, ok)
}

func TestVerdictCacheDefaultTTL(t *testing.T) {
	c := NewVerdictCache(0)
	assert.Equal(t, DefaultVerdictTTL, c.ttl)
}

// geoServer answers the country lookup so probes stay offline.
func geoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"country_name": "Vietnam"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// providerServer fakes the provider: root GET answers rootStatus, the
// completions endpoint answers authStatus.
func providerServer(t *testing.T, rootStatus, authStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(authStatus)
			return
		}
		w.WriteHeader(rootStatus)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestProber(t *testing.T, provider *httptest.Server) *HealthProber {
	t.Helper()
	return NewHealthProber(ProbeConfig{
		APIKey:  "test-key",
		BaseURL: provider.URL,
		GeoURL:  geoServer(t).URL,
	}, zap.NewNop())
}

func TestProbeHealthyProvider(t *testing.T) {
	p := newTestProber(t, providerServer(t, http.StatusOK, http.StatusOK))

	v := p.Probe(context.Background())

	assert.True(t, v.Reachable)
	assert.True(t, v.AuthOK)
	assert.Equal(t, meal.DiagnosisOK, v.Diagnosis)
	assert.False(t, v.LastChecked.IsZero())
}

func TestProbeRegionBlocked(t *testing.T) {
	p := newTestProber(t, providerServer(t, http.StatusForbidden, http.StatusForbidden))

	v := p.Probe(context.Background())

	assert.False(t, v.Reachable)
	assert.False(t, v.AuthOK)
	assert.Equal(t, meal.DiagnosisRegionBlocked, v.Diagnosis)
	assert.False(t, v.UsableForLLM())
}

func TestProbeUnauthorized(t *testing.T) {
	p := newTestProber(t, providerServer(t, http.StatusOK, http.StatusUnauthorized))

	v := p.Probe(context.Background())

	assert.True(t, v.Reachable)
	assert.False(t, v.AuthOK)
	assert.Equal(t, meal.DiagnosisUnauthorized, v.Diagnosis)
	assert.False(t, v.UsableForLLM())
}

func TestProbeRateLimited(t *testing.T) {
	p := newTestProber(t, providerServer(t, http.StatusOK, http.StatusTooManyRequests))

	v := p.Probe(context.Background())

	assert.Equal(t, meal.DiagnosisRateLimited, v.Diagnosis)
}

func TestProbeNetworkError(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	p := newTestProber(t, dead)
	v := p.Probe(context.Background())

	assert.False(t, v.Reachable)
	assert.Equal(t, meal.DiagnosisNetworkError, v.Diagnosis)
}

func TestVerdictUsesCache(t *testing.T) {
	var probes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			probes.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	p := newTestProber(t, srv)

	first := p.Verdict(context.Background())
	second := p.Verdict(context.Background())

	assert.Equal(t, first.Diagnosis, second.Diagnosis)
	assert.Equal(t, int32(1), probes.Load())

	p.Invalidate()
	p.Verdict(context.Background())
	assert.Equal(t, int32(2), probes.Load())
}

// pinnedCache always answers with a fixed verdict and records writes.
type pinnedCache struct {
	verdict meal.HealthVerdict
	sets    int
	cleared bool
}

func (c *pinnedCache) Get() (meal.HealthVerdict, bool) { return c.verdict, true }
func (c *pinnedCache) Set(v meal.HealthVerdict, ttl time.Duration) {
	c.verdict = v
	c.sets++
}
func (c *pinnedCache) Clear() { c.cleared = true }

func TestProberAcceptsInjectedCache(t *testing.T) {
	var _ outbound.ProbeCache = (*VerdictCache)(nil)

	cache := &pinnedCache{verdict: meal.HealthVerdict{Reachable: true, AuthOK: true, Diagnosis: meal.DiagnosisOK}}
	p := NewHealthProberWithCache(ProbeConfig{APIKey: "test-key"}, cache, zap.NewNop())

	// A warm injected cache answers without any network probe.
	v := p.Verdict(context.Background())
	assert.Equal(t, meal.DiagnosisOK, v.Diagnosis)

	p.Record(meal.HealthVerdict{Diagnosis: meal.DiagnosisRateLimited})
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, meal.DiagnosisRateLimited, cache.verdict.Diagnosis)

	p.Invalidate()
	assert.True(t, cache.cleared)
}

func TestRecordPinsVerdict(t *testing.T) {
	// Provider would report healthy, but the recorded verdict binds.
	p := newTestProber(t, providerServer(t, http.StatusOK, http.StatusOK))

	p.Record(meal.HealthVerdict{Reachable: true, Diagnosis: meal.DiagnosisUnauthorized})

	v := p.Verdict(context.Background())
	assert.Equal(t, meal.DiagnosisUnauthorized, v.Diagnosis)
	assert.False(t, v.LastChecked.IsZero())
}

func TestDiagnoseOptimisticWhenCompletionEndpointMisbehaves(t *testing.T) {
	v := diagnose(http.StatusOK, nil, http.StatusNotFound, nil)
	assert.True(t, v.Reachable)
	assert.Equal(t, meal.DiagnosisUnknown, v.Diagnosis)
	assert.True(t, v.UsableForLLM())
}
