package controlplane

import (
	"bufio"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseEndpoint_recognizesUnixAndTCP(t *testing.T) {
	network, address, err := parseEndpoint("unix:///tmp/stc.sock")
	require.NoError(t, err)
	assert.Equal(t, "unix", network)
	assert.Equal(t, "/tmp/stc.sock", address)

	network, address, err = parseEndpoint("tcp://127.0.0.1:9000")
	require.NoError(t, err)
	assert.Equal(t, "tcp", network)
	assert.Equal(t, "127.0.0.1:9000", address)

	_, _, err = parseEndpoint("http://nope")
	assert.Error(t, err)
}

func Test_Server_dispatchesRequestsOverUnixSocket(t *testing.T) {
	session := newTestSession()
	router := NewRouter(session)
	srv := NewServer(router, "")

	sockPath := filepath.Join(t.TempDir(), "stc.sock")
	go srv.ListenAndServe("unix://" + sockPath)
	defer srv.Close()

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("unix", sockPath)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	enc := json.NewEncoder(conn)
	require.NoError(t, enc.Encode(Request{ID: "1", Type: "status"}))

	scanner := bufio.NewScanner(conn)
	require.True(t, scanner.Scan())
	var resp Response
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
	assert.Equal(t, "1", resp.ID)
	assert.Empty(t, resp.Error)
}

func Test_Server_rejectsBadHandshakeToken(t *testing.T) {
	session := newTestSession()
	router := NewRouter(session)
	srv := NewServer(router, "correct-token")

	sockPath := filepath.Join(t.TempDir(), "stc.sock")
	go srv.ListenAndServe("unix://" + sockPath)
	defer srv.Close()

	var conn net.Conn
	var err error
	for i := 0; i < 50; i++ {
		conn, err = net.Dial("unix", sockPath)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, err)
	defer conn.Close()

	enc := json.NewEncoder(conn)
	require.NoError(t, enc.Encode(handshakeFrame{Token: "wrong-token"}))

	scanner := bufio.NewScanner(conn)
	require.True(t, scanner.Scan())
	var hs map[string]bool
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &hs))
	assert.False(t, hs["ok"])
}
