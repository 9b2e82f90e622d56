package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/contractabi/internal/compiler"
	"github.com/conduit-lang/contractabi/internal/web/auth"
	"github.com/conduit-lang/contractabi/runtime/metadata"
)

const flipperHCL = `contract "Flipper" {
  constructor "new" {
    selector = "0x9bae9d5e"
    arg "init_value" {
      type = "bool"
    }
  }

  message "flip" {
    selector = "0x633aa551"
    mutates  = true
  }

  message "get" {
    selector = "0x2f865bd9"
    mutates  = false
    returns  = "bool"
  }

  event "Flipped" {
    arg "value" {
      type    = "bool"
      indexed = true
    }
  }
}
`

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	result, err := compiler.CompileSource("flipper.hcl", []byte(flipperHCL), compiler.Options{})
	require.NoError(t, err)

	reg := metadata.New()
	require.NoError(t, reg.LoadProject(result.Project))
	return New(reg, Options{})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoutes_Status(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		path string
		want int
	}{
		{"/healthz", http.StatusOK},
		{"/contract", http.StatusOK},
		{"/constructors", http.StatusOK},
		{"/messages", http.StatusOK},
		{"/messages?mutates=true", http.StatusOK},
		{"/messages?mutates=maybe", http.StatusBadRequest},
		{"/messages/get", http.StatusOK},
		{"/messages/missing", http.StatusNotFound},
		{"/selectors/0x9bae9d5e", http.StatusOK},
		{"/selectors/0x00000001", http.StatusNotFound},
		{"/selectors/zz", http.StatusBadRequest},
		{"/events", http.StatusOK},
		{"/events/Flipped", http.StatusOK},
		{"/events/Missing", http.StatusNotFound},
		{"/types/dependencies?type=bool", http.StatusOK},
		{"/types/dependencies", http.StatusBadRequest},
		{"/types/dependencies?type=bool&depth=-1", http.StatusBadRequest},
		{"/registry/strings", http.StatusOK},
		{"/registry/types", http.StatusOK},
		{"/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestMessages_Filter(t *testing.T) {
	h := newTestRouter(t)

	var msgs []metadata.MessageInfo
	rec := get(t, h, "/messages?mutates=true")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "flip", msgs[0].Name)

	rec = get(t, h, "/messages?type=u64")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSelector_Lookup(t *testing.T) {
	h := newTestRouter(t)

	var entry metadata.SelectorEntry
	rec := get(t, h, "/selectors/0x2f865bd9")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, metadata.KindMessage, entry.Kind)
	assert.Equal(t, "get", entry.Name)
	require.NotNil(t, entry.Message)
	require.NotNil(t, entry.Message.Returns)
	assert.Equal(t, "bool", entry.Message.Returns.Display)
}

func TestEmptyRegistry(t *testing.T) {
	h := New(metadata.New(), Options{})

	for _, path := range []string{"/healthz", "/contract", "/messages", "/registry/types"} {
		rec := get(t, h, path)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
	}
}

func TestRoutesListing(t *testing.T) {
	routes, err := Routes(New(metadata.New(), Options{}))
	require.NoError(t, err)

	patterns := make(map[string]bool)
	for _, r := range routes {
		patterns[r.Method+" "+r.Pattern] = true
	}
	assert.True(t, patterns["GET /contract"])
	assert.True(t, patterns["GET /selectors/{selector}"])
	assert.True(t, patterns["GET /messages/{name}"])
}

func TestCORSEnabled(t *testing.T) {
	result, err := compiler.CompileSource("flipper.hcl", []byte(flipperHCL), compiler.Options{})
	require.NoError(t, err)
	reg := metadata.New()
	require.NoError(t, reg.LoadProject(result.Project))
	h := New(reg, Options{CORSOrigins: []string{"*"}})

	req := httptest.NewRequest(http.MethodGet, "/contract", nil)
	req.Header.Set("Origin", "https://explorer.dev")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://explorer.dev", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestConditionalGet(t *testing.T) {
	h := newTestRouter(t)

	first := get(t, h, "/contract")
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/contract", nil)
	req.Header.Set("If-None-Match", etag)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
}

func TestAdminReload(t *testing.T) {
	svc, err := auth.NewAuthService("0123456789abcdef-router", time.Hour)
	require.NoError(t, err)
	token, err := svc.GenerateToken("ci", []string{auth.ScopeReload})
	require.NoError(t, err)

	fail := false
	reloader := func(context.Context) (*ReloadResult, error) {
		if fail {
			return nil, errors.New("failed to unmarshal manifest")
		}
		return &ReloadResult{Contract: "Flipper", Fingerprint: "new", Previous: "old", Changed: true}, nil
	}
	h := New(metadata.New(), Options{Reload: reloader, Auth: svc})

	post := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/admin/reload", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := post("")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error":"unauthorized"`)

	rec = post("Bearer " + token)
	require.Equal(t, http.StatusOK, rec.Code)
	var result ReloadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, ReloadResult{Contract: "Flipper", Fingerprint: "new", Previous: "old", Changed: true}, result)

	fail = true
	rec = post("Bearer " + token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to unmarshal manifest")
}

func TestOptionalRoutes(t *testing.T) {
	svc, err := auth.NewAuthService("0123456789abcdef-router", time.Hour)
	require.NoError(t, err)
	live := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	reloader := func(context.Context) (*ReloadResult, error) { return &ReloadResult{}, nil }

	tests := []struct {
		name      string
		opts      Options
		wantWS    bool
		wantAdmin bool
	}{
		{name: "none"},
		{name: "live", opts: Options{Live: live}, wantWS: true},
		{name: "reload without auth", opts: Options{Reload: reloader}},
		{name: "reload with auth", opts: Options{Reload: reloader, Auth: svc}, wantAdmin: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			routes, err := Routes(New(metadata.New(), tt.opts))
			require.NoError(t, err)
			patterns := make(map[string]bool)
			for _, r := range routes {
				patterns[r.Method+" "+r.Pattern] = true
			}
			assert.Equal(t, tt.wantWS, patterns["GET /ws"])
			assert.Equal(t, tt.wantAdmin, patterns["POST /admin/reload"])
		})
	}
}
