// Package pool provides the shared HTTP client used to reach a remote TOON
// conversion service.
package pool

import (
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/http2"
)

// HTTPPool supplies HTTP clients. Implementations can provide connection
// pooling, custom timeouts, etc.
type HTTPPool interface {
	GetHTTPClient() *http.Client
}

// PoolConfig holds configuration for the default pool.
type PoolConfig struct {
	// InsecureSkipVerify allows self-signed certificates.
	// WARNING: This should be false in production
	InsecureSkipVerify bool

	// Connection pool settings
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// Timeout bounds a whole request, including reading the converted body.
	Timeout time.Duration
}

// DefaultPoolConfig returns secure defaults sized for many small conversion
// requests against one service.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		InsecureSkipVerify:  false,
		MaxIdleConns:        64,
		MaxIdleConnsPerHost: 32,
		IdleConnTimeout:     90 * time.Second,
		Timeout:             30 * time.Second,
	}
}

var (
	defaultPool     HTTPPool
	poolMu          sync.Mutex
	poolConfig      *PoolConfig
	poolConfigMutex sync.RWMutex
)

// SetPool replaces the global pool. Passing nil restores the default.
func SetPool(pool HTTPPool) {
	poolMu.Lock()
	defer poolMu.Unlock()
	defaultPool = pool
}

// GetPool returns the global pool, creating the default on first use.
func GetPool() HTTPPool {
	poolMu.Lock()
	defer poolMu.Unlock()
	if defaultPool == nil {
		defaultPool = NewDefaultPool(GetPoolConfig())
	}
	return defaultPool
}

// SetPoolConfig sets the configuration used when the default pool is created.
// It must be called before the first GetPool.
func SetPoolConfig(config *PoolConfig) {
	poolConfigMutex.Lock()
	defer poolConfigMutex.Unlock()
	poolConfig = config
}

// GetPoolConfig returns a copy of the current pool configuration.
func GetPoolConfig() PoolConfig {
	poolConfigMutex.RLock()
	defer poolConfigMutex.RUnlock()

	if poolConfig == nil {
		return *DefaultPoolConfig()
	}
	return *poolConfig
}

// DefaultPool is an HTTPPool backed by a single HTTP/2 capable client.
type DefaultPool struct {
	httpClient *http.Client
}

// NewDefaultPool creates a pool from cfg.
func NewDefaultPool(cfg PoolConfig) *DefaultPool {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		},
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	// Only fails when the transport was already configured for HTTP/2.
	_ = http2.ConfigureTransport(transport)

	return &DefaultPool{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// GetHTTPClient returns the shared HTTP client.
func (p *DefaultPool) GetHTTPClient() *http.Client {
	return p.httpClient
}

var _ HTTPPool = (*DefaultPool)(nil)
