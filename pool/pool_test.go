package pool

import (
	"net/http"
	"testing"
	"time"
)

type staticPool struct{ c *http.Client }

func (p staticPool) GetHTTPClient() *http.Client { return p.c }

func TestDefaultPoolUsesConfig(t *testing.T) {
	p := NewDefaultPool(PoolConfig{MaxIdleConns: 3, MaxIdleConnsPerHost: 2, Timeout: 5 * time.Second})

	c := p.GetHTTPClient()
	if c.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", c.Timeout)
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport is %T, want *http.Transport", c.Transport)
	}
	if tr.MaxIdleConns != 3 || tr.MaxIdleConnsPerHost != 2 {
		t.Errorf("idle conns = %d/%d, want 3/2", tr.MaxIdleConns, tr.MaxIdleConnsPerHost)
	}
	if tr.TLSClientConfig.InsecureSkipVerify {
		t.Error("InsecureSkipVerify should default to false")
	}
}

func TestSetPool(t *testing.T) {
	t.Cleanup(func() { SetPool(nil) })

	custom := &http.Client{Timeout: time.Second}
	SetPool(staticPool{c: custom})
	if got := GetPool().GetHTTPClient(); got != custom {
		t.Error("GetPool did not return the injected pool")
	}

	SetPool(nil)
	if got := GetPool().GetHTTPClient(); got == custom {
		t.Error("SetPool(nil) did not restore the default pool")
	}
}

func TestPoolConfigCopy(t *testing.T) {
	t.Cleanup(func() { SetPoolConfig(nil) })

	if got := GetPoolConfig(); got != *DefaultPoolConfig() {
		t.Errorf("GetPoolConfig() = %+v, want defaults", got)
	}

	cfg := &PoolConfig{Timeout: time.Minute}
	SetPoolConfig(cfg)
	got := GetPoolConfig()
	got.Timeout = time.Hour
	if cfg.Timeout != time.Minute {
		t.Error("GetPoolConfig returned a reference to internal state")
	}
}
