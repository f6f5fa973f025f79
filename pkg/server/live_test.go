package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/codescribe/pkg/server"
)

func dialLive(t *testing.T, origin string) *websocket.Conn {
	t.Helper()

	cfg := testConfig()
	cfg.CORSOrigin = "https://editor.example"

	ts := httptest.NewServer(newHandler(t, cfg))
	t.Cleanup(ts.Close)

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}

	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+server.PathLive, header)
	require.NoError(t, err)

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg server.LiveRequest) server.LiveResponse {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.WriteJSON(msg))

	var resp server.LiveResponse
	require.NoError(t, conn.ReadJSON(&resp))

	return resp
}

func TestLive_Operations(t *testing.T) {
	t.Parallel()

	conn := dialLive(t, "https://editor.example")

	resp := roundTrip(t, conn, server.LiveRequest{ID: "1", Code: "const add = (a, b) => a + b;"})
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, server.LiveOpAnalyze, resp.Op)
	require.NotNil(t, resp.Analysis)
	require.Len(t, resp.Analysis.Structure.Functions, 1)
	assert.Equal(t, "arrow", resp.Analysis.Structure.Functions[0].Kind)

	resp = roundTrip(t, conn, server.LiveRequest{ID: "2", Op: server.LiveOpCheck, Code: "let x = [1, 2"})
	require.NotNil(t, resp.Check)
	assert.True(t, resp.Check.HasErrors)

	resp = roundTrip(t, conn, server.LiveRequest{ID: "3", Op: server.LiveOpNarrate, Code: "a\nb", Line: 2})
	require.NotNil(t, resp.Narration)
	assert.Equal(t, "Line 2: b", resp.Narration.Text)
}

func TestLive_Errors(t *testing.T) {
	t.Parallel()

	conn := dialLive(t, "")

	resp := roundTrip(t, conn, server.LiveRequest{ID: "e1", Code: "  "})
	assert.Equal(t, server.LiveOpError, resp.Op)
	assert.Equal(t, "No code provided for analysis", resp.Error)

	resp = roundTrip(t, conn, server.LiveRequest{ID: "e2", Op: "compile", Code: "x"})
	assert.Equal(t, server.LiveOpError, resp.Op)
	assert.Contains(t, resp.Error, "compile")

	// The session survives errors.
	resp = roundTrip(t, conn, server.LiveRequest{ID: "ok", Code: "x"})
	assert.Equal(t, server.LiveOpAnalyze, resp.Op)
}

func TestLive_RejectsForeignOrigin(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.CORSOrigin = "https://editor.example"

	ts := httptest.NewServer(newHandler(t, cfg))
	t.Cleanup(ts.Close)

	header := http.Header{"Origin": []string{"https://evil.example"}}

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+server.PathLive, header)
	require.Error(t, err)
	require.NotNil(t, resp)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
