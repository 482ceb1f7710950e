package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/server"
)

func newService(t *testing.T, token string) *httptest.Server {
	t.Helper()
	s, err := server.New(server.Config{Token: token, Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts
}

func TestEncodeDecode(t *testing.T) {
	ts := newService(t, "")
	c := New(ts.URL+"/", nil)
	ctx := context.Background()

	text, err := c.Encode(ctx, []byte(`{"tags":["a","b"],"n":{"x":1}}`), &toon.EncodeOptions{Delimiter: '|', Indent: "    "})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if want := "tags[2]: a|b\nn:\n    x: 1"; text != want {
		t.Errorf("Encode = %q, want %q", text, want)
	}

	out, err := c.Decode(ctx, text, &toon.DecodeOptions{Delimiter: '|', Strict: true})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if want := `{"tags":["a","b"],"n":{"x":1}}`; string(out) != want {
		t.Errorf("Decode = %s, want %s", out, want)
	}
}

func TestCheck(t *testing.T) {
	ts := newService(t, "")
	c := New(ts.URL, nil)

	report, err := c.Check(context.Background(), []byte(`{"a":[{"x":1},{"x":2}]}`))
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	if !report.OK || report.TOON != "a[2]{x}:\n  1\n  2" {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRemoteErrors(t *testing.T) {
	ts := newService(t, "")
	c := New(ts.URL, nil)
	ctx := context.Background()

	_, err := c.Decode(ctx, "a: 1\nbroken", nil)
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if re.Status != http.StatusUnprocessableEntity || re.Code != "FORMAT_ERROR" || re.RequestID == "" {
		t.Errorf("unexpected RemoteError: %+v", re)
	}
	if !errors.Is(err, toon.ErrFormat) {
		t.Error("errors.Is(err, toon.ErrFormat) = false")
	}

	_, err = c.Encode(ctx, []byte(`[1,2]`), nil)
	if !errors.Is(err, toon.ErrUnsupportedStructure) {
		t.Errorf("expected ErrUnsupportedStructure, got %v", err)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL, nil).Encode(context.Background(), []byte(`{}`), nil)
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if re.Code != "HTTP_502" || re.Message != "bad gateway" {
		t.Errorf("unexpected RemoteError: %+v", re)
	}
}

func TestBearerTokenAuth(t *testing.T) {
	ts := newService(t, "s3cret")
	ctx := context.Background()

	if _, err := New(ts.URL, NewBearerTokenAuth("s3cret")).Encode(ctx, []byte(`{"a":1}`), nil); err != nil {
		t.Errorf("valid token: %v", err)
	}

	_, err := New(ts.URL, NewBearerTokenAuth("nope")).Encode(ctx, []byte(`{"a":1}`), nil)
	var re *RemoteError
	if !errors.As(err, &re) || re.Code != "UNAUTHORIZED" {
		t.Errorf("expected UNAUTHORIZED, got %v", err)
	}
}

func tokenEndpoint(t *testing.T, tokens ...string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		tok := tokens[len(tokens)-1]
		if int(n) <= len(tokens) {
			tok = tokens[n-1]
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"token_type":"bearer","expires_in":3600}`, tok)
	}))
	t.Cleanup(ts.Close)
	return ts, &calls
}

func TestOAuth2AuthCachesToken(t *testing.T) {
	svc := newService(t, "tok1")
	idp, calls := tokenEndpoint(t, "tok1")

	c := New(svc.URL, NewOAuth2Auth("id", "secret", idp.URL, []string{"convert"}))
	for i := 0; i < 3; i++ {
		if _, err := c.Encode(context.Background(), []byte(`{"a":1}`), nil); err != nil {
			t.Fatalf("Encode %d failed: %v", i, err)
		}
	}
	if got := atomic.LoadInt32(calls); got != 1 {
		t.Errorf("token endpoint called %d times, want 1", got)
	}
}

func TestOAuth2AuthRefreshesOnUnauthorized(t *testing.T) {
	svc := newService(t, "tok2")
	idp, calls := tokenEndpoint(t, "stale", "tok2")

	c := New(svc.URL, NewOAuth2Auth("id", "secret", idp.URL, nil))
	if _, err := c.Encode(context.Background(), []byte(`{"a":1}`), nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if got := atomic.LoadInt32(calls); got != 2 {
		t.Errorf("token endpoint called %d times, want 2", got)
	}
}
