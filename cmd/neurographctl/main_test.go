package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const twoNeuronNetwork = `{
  "neurons": [
    {"id": 1, "kind": "excitatory", "activation": "linear"},
    {"id": 2, "kind": "excitatory", "activation": "linear"}
  ],
  "synapses": [
    {"id": 1, "pre": 1, "post": 2, "kind": "excitatory"}
  ],
  "connections": [
    {"source": 1, "target": 2}
  ]
}`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestRunUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"explode"}, &out)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
	if err := run(context.Background(), nil, &out); err == nil {
		t.Fatal("expected missing command error")
	}
}

func TestInitCommand(t *testing.T) {
	var out bytes.Buffer
	if err := run(context.Background(), []string{"init", "-store", "memory"}, &out); err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out.String(), "initialized store=memory") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestRunCommandProducesOutputs(t *testing.T) {
	networkPath := writeTempFile(t, "network.json", twoNeuronNetwork)

	var out bytes.Buffer
	args := []string{"run", "-store", "memory", "-network", networkPath, "-steps", "1", "-dt", "1"}
	if err := run(context.Background(), args, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	var outputs []float64
	if err := json.Unmarshal(out.Bytes(), &outputs); err != nil {
		t.Fatalf("parse outputs: %v (raw: %q)", err, out.String())
	}
	if len(outputs) != 2 {
		t.Fatalf("unexpected outputs: %+v", outputs)
	}
}

func TestRunCommandRequiresNetwork(t *testing.T) {
	var out bytes.Buffer
	err := run(context.Background(), []string{"run", "-store", "memory"}, &out)
	if err == nil || !strings.Contains(err.Error(), "-network is required") {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestExecCommandScript(t *testing.T) {
	script := strings.Join([]string{
		`{"op":"create_neuron","id":1,"kind":"excitatory","activation":"linear"}`,
		`{"op":"create_neuron","id":2,"kind":"excitatory","activation":"linear"}`,
		`{"op":"create_synapse","id":1,"pre":1,"post":2,"kind":"excitatory"}`,
		`{"op":"connect","source":1,"target":2}`,
		`{"op":"step","inputs":{"1":20.0},"dt":1.0}`,
		`{"op":"get_neuron_state","id":1}`,
	}, "\n")
	scriptPath := writeTempFile(t, "script.jsonl", script)

	var out bytes.Buffer
	if err := run(context.Background(), []string{"exec", "-store", "memory", "-script", scriptPath}, &out); err != nil {
		t.Fatalf("exec: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 responses, got %d: %q", len(lines), out.String())
	}
	for i, line := range lines {
		var resp map[string]any
		if err := json.Unmarshal([]byte(line), &resp); err != nil {
			t.Fatalf("response %d not JSON: %v", i, err)
		}
		if resp["status"] != "ok" {
			t.Fatalf("response %d not ok: %s", i, line)
		}
	}
	if !strings.Contains(lines[5], `"last_fired_time"`) {
		t.Fatalf("state response missing fields: %s", lines[5])
	}
}

func TestExecCommandRejectsBadScript(t *testing.T) {
	scriptPath := writeTempFile(t, "script.jsonl", `{"op":"explode"}`)

	var out bytes.Buffer
	err := run(context.Background(), []string{"exec", "-store", "memory", "-script", scriptPath}, &out)
	if err == nil || !strings.Contains(err.Error(), "script line 1") {
		t.Fatalf("expected script error, got %v", err)
	}
}

func TestNetworkFileBuildErrors(t *testing.T) {
	networkPath := writeTempFile(t, "network.json", `{
  "neurons": [{"id": 1, "kind": "bogus", "activation": "linear"}]
}`)

	var out bytes.Buffer
	args := []string{"run", "-store", "memory", "-network", networkPath}
	err := run(context.Background(), args, &out)
	if err == nil || !strings.Contains(err.Error(), "neuron 1") {
		t.Fatalf("expected build error, got %v", err)
	}
}

func TestLoadNetworkFileMissing(t *testing.T) {
	if _, err := LoadNetworkFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected read error")
	}
}
