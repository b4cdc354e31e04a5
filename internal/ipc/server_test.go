package ipc

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaderpaper/shaderpaper/internal/media"
)

func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sock")
	srv, err := NewServer(path)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	go srv.Serve()
	return srv, path
}

func sendLine(t *testing.T, conn net.Conn, line string) Response {
	t.Helper()
	_, err := conn.Write([]byte(line + "\n"))
	require.NoError(t, err)

	raw, err := bufio.NewReader(conn).ReadBytes('\n')
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(raw, &resp))
	return resp
}

func recvChange(t *testing.T, srv *Server) MediaChange {
	t.Helper()
	select {
	case change := <-srv.Changes():
		return change
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for media change")
		return MediaChange{}
	}
}

func TestServerSetImage(t *testing.T) {
	srv, path := startTestServer(t)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	resp := sendLine(t, conn, `{"SetImage":{"path":"/tmp/a.png","monitors":["DP-1","HDMI-A-1"]}}`)
	assert.Equal(t, "success", resp.Status)

	change := recvChange(t, srv)
	assert.Equal(t, media.NewImageType("/tmp/a.png", ""), change.Type)
	assert.Equal(t, []string{"DP-1", "HDMI-A-1"}, change.Monitors)
	assert.False(t, change.Mute)
}

func TestServerSetVideoMute(t *testing.T) {
	srv, path := startTestServer(t)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	resp := sendLine(t, conn, `{"SetVideo":{"path":"/tmp/a.mp4","shader":"/tmp/fx.glsl","mute":true}}`)
	assert.Equal(t, "success", resp.Status)

	change := recvChange(t, srv)
	assert.Equal(t, media.NewVideoType("/tmp/a.mp4", "/tmp/fx.glsl"), change.Type)
	assert.Nil(t, change.Monitors)
	assert.True(t, change.Mute)
}

func TestServerInvalidJSON(t *testing.T) {
	_, path := startTestServer(t)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	resp := sendLine(t, conn, `{"SetImage":`)
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.Message)
}

func TestServerUnknownCommand(t *testing.T) {
	_, path := startTestServer(t)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	resp := sendLine(t, conn, `{"SetGif":{"path":"/tmp/a.gif"}}`)
	assert.Equal(t, "error", resp.Status)
}

func TestServerMissingPath(t *testing.T) {
	_, path := startTestServer(t)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	resp := sendLine(t, conn, `{"SetShader":{}}`)
	assert.Equal(t, "error", resp.Status)
	assert.Contains(t, resp.Message, "path")
}

func TestServerMultipleCommandsOneConnection(t *testing.T) {
	srv, path := startTestServer(t)

	conn, err := net.Dial("unix", path)
	require.NoError(t, err)
	defer conn.Close()

	reader := bufio.NewReader(conn)
	lines := []string{
		`{"SetShader":{"path":"default"}}`,
		`{"SetImage":{"path":"/tmp/a.png"}}`,
	}
	for _, line := range lines {
		_, err := conn.Write([]byte(line + "\n"))
		require.NoError(t, err)
		raw, err := reader.ReadBytes('\n')
		require.NoError(t, err)
		var resp Response
		require.NoError(t, json.Unmarshal(raw, &resp))
		assert.Equal(t, "success", resp.Status)
	}

	first := recvChange(t, srv)
	second := recvChange(t, srv)
	assert.Equal(t, media.KindShader, first.Type.Kind)
	assert.Equal(t, media.KindImage, second.Type.Kind)
}

func TestClientRoundTrip(t *testing.T) {
	srv, path := startTestServer(t)

	resp, err := SendTo(path, Command{SetVideo: &SetVideo{Path: "/tmp/a.mp4", Mute: true}})
	require.NoError(t, err)
	assert.Equal(t, "success", resp.Status)

	change := recvChange(t, srv)
	assert.True(t, change.Type.IsVideo())
	assert.True(t, change.Mute)
}

func TestClientErrorResponse(t *testing.T) {
	_, path := startTestServer(t)

	resp, err := SendTo(path, Command{SetImage: &SetImage{}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "error", resp.Status)
}
