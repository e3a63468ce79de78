package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/dekarrin/stlc/internal/controlplane"
	"github.com/dekarrin/stlc/internal/input"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
)

// runUI implements "stc ui": an interactive NDJSON session against a
// running project's control plane, in the style of internal/input's
// readline-backed command reader. This is a textual session only — no
// rendered TUI, matching SPEC_FULL.md's non-goal of terminal UI rendering.
//
// Each input line is "type [json-params]", e.g. "status" or
// "io.write {\"address\":\"%QX0.0\",\"value\":true}". The raw
// response frame is printed back as JSON.
func runUI(args []string) int {
	fs := pflag.NewFlagSet("ui", pflag.ContinueOnError)
	endpoint := fs.StringP("endpoint", "e", "", "Control-plane endpoint (unix://path or tcp://host:port)")
	token := fs.StringP("token", "t", os.Getenv("TRUST_CTL_TOKEN"), "Bearer token for the handshake (defaults to $TRUST_CTL_TOKEN)")
	if err := fs.Parse(args); err != nil {
		return ExitInternal
	}
	if *endpoint == "" {
		fmt.Fprintln(os.Stderr, "ERROR: --endpoint is required")
		return ExitConfigError
	}

	network, address, err := dialTarget(*endpoint)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return ExitConfigError
	}
	conn, err := net.Dial(network, address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: connect to %s: %v\n", *endpoint, err)
		return ExitInternal
	}
	defer conn.Close()

	reader := bufio.NewScanner(conn)
	reader.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	enc := json.NewEncoder(conn)

	if *token != "" {
		if err := enc.Encode(map[string]string{"token": *token}); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: handshake: %v\n", err)
			return ExitInternal
		}
		if !reader.Scan() {
			fmt.Fprintln(os.Stderr, "ERROR: connection closed during handshake")
			return ExitInternal
		}
		var hsResp handshakeResponse
		if err := json.Unmarshal(reader.Bytes(), &hsResp); err != nil || !hsResp.Ok {
			fmt.Fprintln(os.Stderr, "ERROR: handshake rejected")
			return ExitConfigError
		}
	}

	rl, err := input.NewInteractiveReader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: create readline session: %v\n", err)
		return ExitInternal
	}
	defer rl.Close()
	rl.SetPrompt("stc> ")

	for {
		line, err := rl.ReadCommand()
		if err != nil {
			if err == io.EOF {
				return ExitSuccess
			}
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			return ExitInternal
		}

		reqType, rawParams, _ := strings.Cut(line, " ")
		id, err := uuid.NewRandom()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: generate request id: %v\n", err)
			continue
		}
		req := controlplane.Request{ID: id.String(), Type: reqType}
		if params := strings.TrimSpace(rawParams); params != "" {
			req.Params = json.RawMessage(params)
		}

		if err := enc.Encode(req); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: send request: %v\n", err)
			return ExitInternal
		}
		if !reader.Scan() {
			fmt.Fprintln(os.Stderr, "ERROR: connection closed")
			return ExitInternal
		}
		fmt.Println(string(reader.Bytes()))
	}
}

// handshakeResponse mirrors controlplane.Server's {"ok": bool} handshake
// reply, which precedes the Request/Response envelope and so isn't itself
// a controlplane.Response.
type handshakeResponse struct {
	Ok bool `json:"ok"`
}

func dialTarget(endpoint string) (network, address string, err error) {
	switch {
	case strings.HasPrefix(endpoint, "unix://"):
		return "unix", strings.TrimPrefix(endpoint, "unix://"), nil
	case strings.HasPrefix(endpoint, "tcp://"):
		return "tcp", strings.TrimPrefix(endpoint, "tcp://"), nil
	default:
		return "", "", fmt.Errorf("endpoint must be unix://... or tcp://host:port, got %q", endpoint)
	}
}
