// Package llm provides provider health probing and the process-wide
// health verdict cache consumed by the engine.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/domain/meal"
	"github.com/nutriplan/mealengine/internal/ports/outbound"
)

const (
	probeTimeout = 10 * time.Second

	// geoLookupURL records the caller's country. Diagnostic only; Groq is
	// region-blocked in several markets and the country makes the verdict
	// logs actionable.
	geoLookupURL = "https://ipapi.co/json/"

	// DefaultVerdictTTL is how long a verdict binds before re-probing.
	DefaultVerdictTTL = 5 * time.Minute
)

// VerdictCache stores the current health verdict with a TTL. Reads are
// lock-free; writes are atomic swaps.
type VerdictCache struct {
	entry atomic.Pointer[verdictEntry]
	ttl   time.Duration
}

type verdictEntry struct {
	verdict   meal.HealthVerdict
	expiresAt time.Time
}

var _ outbound.ProbeCache = (*VerdictCache)(nil)

// NewVerdictCache creates a verdict cache with the given TTL.
func NewVerdictCache(ttl time.Duration) *VerdictCache {
	if ttl <= 0 {
		ttl = DefaultVerdictTTL
	}
	return &VerdictCache{ttl: ttl}
}

// Get returns the cached verdict if it has not expired.
func (c *VerdictCache) Get() (meal.HealthVerdict, bool) {
	e := c.entry.Load()
	if e == nil || time.Now().After(e.expiresAt) {
		return meal.HealthVerdict{Diagnosis: meal.DiagnosisUnknown}, false
	}
	return e.verdict, true
}

// Set stores a verdict with the given TTL; a non-positive TTL uses the
// cache default.
func (c *VerdictCache) Set(v meal.HealthVerdict, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	c.entry.Store(&verdictEntry{verdict: v, expiresAt: time.Now().Add(ttl)})
}

// Clear drops the cached verdict.
func (c *VerdictCache) Clear() {
	c.entry.Store(nil)
}

// ProbeConfig holds probe configuration
type ProbeConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	GeoURL     string
	VerdictTTL time.Duration
}

// HealthProber performs region and connectivity checks against the
// provider and caches a binding verdict. Safe for concurrent use.
type HealthProber struct {
	cfg    ProbeConfig
	cache  outbound.ProbeCache
	client *http.Client
	logger *zap.Logger
}

// NewHealthProber creates a new health prober
func NewHealthProber(cfg ProbeConfig, logger *zap.Logger) *HealthProber {
	return NewHealthProberWithCache(cfg, NewVerdictCache(cfg.VerdictTTL), logger)
}

// NewHealthProberWithCache creates a prober backed by the given cache.
func NewHealthProberWithCache(cfg ProbeConfig, cache outbound.ProbeCache, logger *zap.Logger) *HealthProber {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3-8b-8192"
	}
	if cfg.GeoURL == "" {
		cfg.GeoURL = geoLookupURL
	}
	return &HealthProber{
		cfg:    cfg,
		cache:  cache,
		client: &http.Client{Timeout: probeTimeout},
		logger: logger.Named("llm-health"),
	}
}

// Verdict returns the cached verdict, probing when the cache is cold.
func (p *HealthProber) Verdict(ctx context.Context) meal.HealthVerdict {
	if v, ok := p.cache.Get(); ok {
		return v
	}
	return p.Probe(ctx)
}

// Invalidate clears the cached verdict so the next consult re-probes.
func (p *HealthProber) Invalidate() {
	p.cache.Clear()
}

// Record stores an externally observed verdict, typically after the engine
// saw a hard upstream failure mid-call.
func (p *HealthProber) Record(v meal.HealthVerdict) {
	v.LastChecked = time.Now()
	p.cache.Set(v, 0)
}

// Probe runs the full check sequence and caches the outcome. Idempotent;
// concurrent probes race benignly on the atomic cache swap.
func (p *HealthProber) Probe(ctx context.Context) meal.HealthVerdict {
	country := p.lookupCountry(ctx)

	baseStatus, baseErr := p.checkBaseURL(ctx)
	authStatus, authErr := p.checkAuthedCompletion(ctx)

	verdict := diagnose(baseStatus, baseErr, authStatus, authErr)
	verdict.LastChecked = time.Now()

	p.logger.Info("provider health probe completed",
		zap.String("country", country),
		zap.Int("base_status", baseStatus),
		zap.Int("auth_status", authStatus),
		zap.String("diagnosis", string(verdict.Diagnosis)),
		zap.Bool("reachable", verdict.Reachable),
		zap.Bool("auth_ok", verdict.AuthOK),
	)

	p.cache.Set(verdict, 0)
	return verdict
}

// lookupCountry resolves the caller's country for diagnostics. Failures
// are logged and ignored.
func (p *HealthProber) lookupCountry(ctx context.Context) string {
	reqCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.cfg.GeoURL, nil)
	if err != nil {
		return ""
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug("geo lookup failed", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	var payload struct {
		CountryName string `json:"country_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ""
	}
	return payload.CountryName
}

// checkBaseURL issues an unauthenticated GET against the provider root.
func (p *HealthProber) checkBaseURL(ctx context.Context) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, p.cfg.BaseURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// checkAuthedCompletion sends a minimal authenticated chat-completion.
func (p *HealthProber) checkAuthedCompletion(ctx context.Context) (int, error) {
	reqCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]interface{}{
		"model":      p.cfg.Model,
		"messages":   []map[string]string{{"role": "user", "content": "ping"}},
		"max_tokens": 1,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		p.cfg.BaseURL+"/openai/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// diagnose applies the verdict table to the observed statuses.
func diagnose(baseStatus int, baseErr error, authStatus int, authErr error) meal.HealthVerdict {
	reachable := baseErr == nil && (baseStatus == http.StatusOK || baseStatus == http.StatusUnauthorized)

	switch {
	case authErr == nil && authStatus == http.StatusOK:
		return meal.HealthVerdict{Reachable: true, AuthOK: true, Diagnosis: meal.DiagnosisOK}
	case (baseErr == nil && baseStatus == http.StatusForbidden) ||
		(authErr == nil && authStatus == http.StatusForbidden):
		return meal.HealthVerdict{Reachable: false, Diagnosis: meal.DiagnosisRegionBlocked}
	case (baseErr == nil && baseStatus == http.StatusTooManyRequests) ||
		(authErr == nil && authStatus == http.StatusTooManyRequests):
		return meal.HealthVerdict{Reachable: true, Diagnosis: meal.DiagnosisRateLimited}
	case authErr == nil && authStatus == http.StatusUnauthorized:
		return meal.HealthVerdict{Reachable: reachable, Diagnosis: meal.DiagnosisUnauthorized}
	case baseErr != nil && authErr != nil:
		return meal.HealthVerdict{Reachable: false, Diagnosis: meal.DiagnosisNetworkError}
	case reachable:
		// Base URL answers but the completion endpoint does not behave;
		// stay optimistic so the pipeline can try and degrade on its own.
		return meal.HealthVerdict{Reachable: true, Diagnosis: meal.DiagnosisUnknown}
	default:
		return meal.HealthVerdict{Diagnosis: meal.DiagnosisUnknown}
	}
}
