package update

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cssmap/internal/appcontext"
	"github.com/agentstation/cssmap/internal/pipeline"
	"github.com/agentstation/cssmap/pkg/errors"
)

const bcd = `{"css": {
  "properties": {"color": {"__compat": {"support": {
    "chrome": {"version_added": "1"},
    "firefox": {"version_added": "1"},
    "safari": {"version_added": "1"}
  }}}},
  "at-rules": {},
  "types": {}
}}`

func setup(t *testing.T) pipeline.Config {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/index.json":
			_, _ = w.Write([]byte(`{"results":[{"shortname":"css-color-3"},{"shortname":"css-nothing-1"}]}`))
		case "/css/css-color-3.json":
			_, _ = w.Write([]byte(`{"properties":[{"name":"color","href":"https://example.test/color"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	compatPath := filepath.Join(dir, "bcd.json")
	require.NoError(t, os.WriteFile(compatPath, []byte(bcd), 0o600))

	cfg := pipeline.DefaultConfig()
	cfg.BaseURL = server.URL
	cfg.CompatData = compatPath
	cfg.OutputDir = filepath.Join(dir, "public")
	return cfg
}

func TestExecute(t *testing.T) {
	cfg := setup(t)
	app := &appcontext.Mock{}
	metricsFile := filepath.Join(t.TempDir(), "run.prom")

	var buf bytes.Buffer
	require.NoError(t, Execute(context.Background(), app, cfg, &Flags{MetricsFile: metricsFile}, &buf))

	var summary Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))
	assert.Equal(t, 2, summary.Specs)
	assert.Equal(t, 1, summary.Fetched)
	assert.Equal(t, 1, summary.Missing)
	assert.Equal(t, 1, summary.Features)
	assert.Equal(t, 1, summary.Supported)
	assert.False(t, summary.DryRun)
	assert.NotEmpty(t, summary.RunID)

	assert.FileExists(t, filepath.Join(cfg.OutputDir, "specs.json"))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "css-data.json"))

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `cssmap_dataset_features{list="properties"} 1`)
	assert.Contains(t, string(prom), "cssmap_dataset_specs 1")
}

func TestExecuteDryRun(t *testing.T) {
	cfg := setup(t)
	cfg.DryRun = true

	var buf bytes.Buffer
	require.NoError(t, Execute(context.Background(), &appcontext.Mock{}, cfg, nil, &buf))
	assert.Contains(t, buf.String(), `"dry_run": true`)
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestExecuteRejectsBadConfig(t *testing.T) {
	cfg := setup(t)
	cfg.BatchSize = 0

	err := Execute(context.Background(), &appcontext.Mock{}, cfg, nil, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestCommandFlagsOverrideConfig(t *testing.T) {
	cfg := setup(t)
	app := &appcontext.Mock{Pipeline: &cfg}

	cmd := NewCommand(app)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--dry-run", "--batch-size", "1"})
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.Execute())

	assert.True(t, strings.Contains(buf.String(), `"dry_run": true`))
	assert.NoDirExists(t, cfg.OutputDir)
}

func TestExecuteReportsChanges(t *testing.T) {
	cfg := setup(t)
	app := &appcontext.Mock{}
	require.NoError(t, Execute(context.Background(), app, cfg, nil, &bytes.Buffer{}))

	var buf bytes.Buffer
	require.NoError(t, Execute(context.Background(), app, cfg, nil, &buf))

	var summary Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))
	assert.Equal(t, "No changes detected", summary.Changes)
}
