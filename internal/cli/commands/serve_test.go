package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/contractabi/internal/store"
	"github.com/conduit-lang/contractabi/internal/watch"
)

func TestServe_Routes(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)

	out, _, err := run(t, dir, "serve", manifest, "--routes")
	require.NoError(t, err)

	assert.Contains(t, out, "METHOD  PATTERN")
	assert.Contains(t, out, "GET     /contract")
	assert.Contains(t, out, "GET     /selectors/{selector}")
	assert.Contains(t, out, "GET     /types/dependencies")
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServe_ServesUntilCancelled(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)
	addr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config-dir", dir, "--no-color", "serve", manifest, "--addr", addr, "--cors-origin", "https://app.example.com"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	url := fmt.Sprintf("http://%s/messages/get", addr)
	var resp *http.Response
	require.Eventually(t, func() bool {
		req, _ := http.NewRequest(http.MethodGet, url, nil)
		req.Header.Set("Origin", "https://app.example.com")
		r, err := http.DefaultClient.Do(req)
		if err != nil {
			return false
		}
		resp = r
		return true
	}, 5*time.Second, 20*time.Millisecond)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"name":"get"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop after cancel")
	}
	assert.Contains(t, out.String(), "Serving Flipper on http://"+addr)
}

func getBody(url string) (string, error) {
	resp, err := http.Get(url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return string(body), err
}

func TestServe_WatchReloads(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)
	addr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, done := start(t, ctx, dir, "serve", manifest, "--addr", addr, "--watch")

	url := fmt.Sprintf("http://%s/contract", addr)
	require.Eventually(t, func() bool {
		body, err := getBody(url)
		return err == nil && strings.Contains(body, "Flips a bool.")
	}, 5*time.Second, 20*time.Millisecond)

	time.Sleep(200 * time.Millisecond)

	// A manifest that fails to load keeps the old one serving.
	writeFile(t, dir, "flipper.abi.json", "{broken")
	time.Sleep(300 * time.Millisecond)
	body, err := getBody(url)
	require.NoError(t, err)
	assert.Contains(t, body, "Flips a bool.")

	src := writeFile(t, dir, "flipper.yml", strings.Replace(flipperYAML, "Flips a bool.", "Flips a boolean.", 1))
	_, _, err = run(t, dir, "build", src, "-o", filepath.Join(dir, "flipper.abi.json"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		body, err := getBody(url)
		return err == nil && strings.Contains(body, "Flips a boolean.")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, wait(t, done))
}

func TestServe_MissingManifest(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "serve", dir+"/missing.abi.json")
	assert.ErrorContains(t, err, "failed to read manifest")
}

func TestServe_RoutesWithAdmin(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)
	t.Setenv("CONTRACTABI_SERVE_AUTH_SECRET", testSecret)

	out, _, err := run(t, dir, "serve", manifest, "--routes")
	require.NoError(t, err)
	assert.Contains(t, out, "GET     /ws")
	assert.Contains(t, out, "POST    /admin/reload")
}

func TestServe_WatchRejectsStore(t *testing.T) {
	_, _, err := run(t, t.TempDir(), "serve", "Flipper", "--from-store", "--watch")
	assert.ErrorContains(t, err, "--watch needs a manifest file")
}

func TestServe_FromStoreAdminReload(t *testing.T) {
	dir := t.TempDir()
	manifest := buildFlipper(t, dir)
	_, _, err := run(t, dir, "store", "publish", manifest)
	require.NoError(t, err)

	t.Setenv("CONTRACTABI_SERVE_AUTH_SECRET", testSecret)
	token, _, err := run(t, dir, "token")
	require.NoError(t, err)
	token = strings.TrimSpace(token)

	addr := freeAddr(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, done := start(t, ctx, dir, "serve", "Flipper", "--from-store", "--addr", addr)

	url := fmt.Sprintf("http://%s/contract", addr)
	require.Eventually(t, func() bool {
		body, err := getBody(url)
		return err == nil && strings.Contains(body, "Flips a bool.")
	}, 5*time.Second, 20*time.Millisecond)

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws", addr), nil)
	require.NoError(t, err)
	defer conn.Close()

	post := func(token string) (int, string) {
		req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/admin/reload", addr), nil)
		require.NoError(t, err)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, _ := post("")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := post(token)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"changed":false`)

	src := writeFile(t, dir, "flipper.yml", strings.Replace(flipperYAML, "Flips a bool.", "Flips a boolean.", 1))
	_, _, err = run(t, dir, "build", src, "-o", manifest)
	require.NoError(t, err)
	_, _, err = run(t, dir, "store", "publish", manifest)
	require.NoError(t, err)

	code, body = post(token)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"changed":true`)
	assert.Contains(t, body, `"contract":"Flipper"`)

	var msg watch.ReloadMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "reload", msg.Type)
	assert.Equal(t, "Flipper", msg.Contract)
	assert.NotEqual(t, msg.Previous, msg.Fingerprint)

	body, err = getBody(url)
	require.NoError(t, err)
	assert.Contains(t, body, "Flips a boolean.")

	cancel()
	require.NoError(t, wait(t, done))
}

func TestServe_FromStoreUnknownContract(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, dir, "serve", "Flipper", "--from-store")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
