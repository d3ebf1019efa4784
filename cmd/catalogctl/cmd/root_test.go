package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const catalogBody = `{"data":[
	{"id":"r1","name":"scratch","resourceType":"STORAGE",
	 "resource":{"storageType":"lustre"},"hosts":[{"hostname":"dtn1.example.org"}]},
	{"id":"r2","name":"cluster","resourceType":"COMPUTE",
	 "resource":{"schedulerType":"slurm"}}
]}`

func newCatalogServer(t *testing.T, queries *[]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/resources":
			if queries != nil {
				*queries = append(*queries, r.URL.RawQuery)
			}
			w.Write([]byte(catalogBody))
		case "/health/ready":
			w.Write([]byte(`{"data":{"status":"ready","instance_id":"i-1","store":"connected"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResourcesTable(t *testing.T) {
	var queries []string
	server := newCatalogServer(t, &queries)

	out, err := run(t, "resources", "--server", server.URL, "--type", "STORAGE", "--id", "r1")
	require.NoError(t, err)

	require.Len(t, queries, 1)
	assert.Equal(t, "id=r1&resourceType=STORAGE", queries[0])

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"ID", "NAME", "TYPE", "VARIANT", "KIND", "HOSTS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"r1", "scratch", "STORAGE", "storage", "lustre", "dtn1.example.org"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"r2", "cluster", "COMPUTE", "compute", "slurm", "-"}, strings.Fields(lines[2]))
}

func TestResourcesJSON(t *testing.T) {
	server := newCatalogServer(t, nil)

	out, err := run(t, "resources", "-s", server.URL, "-o", "json")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "lustre", got[0]["resource"].(map[string]any)["storageType"])
	assert.NotContains(t, got[0]["resource"], "schedulerType")
}

func TestResourcesYAML(t *testing.T) {
	server := newCatalogServer(t, nil)

	out, err := run(t, "resources", "-s", server.URL, "-o", "yaml")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "r2", got[1]["id"])
	assert.Equal(t, "slurm", got[1]["resource"].(map[string]any)["schedulerType"])
}

func TestResourcesUnknownFormat(t *testing.T) {
	server := newCatalogServer(t, nil)

	_, err := run(t, "resources", "-s", server.URL, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestResourcesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_request","message":"bad query"}`))
	}))
	defer server.Close()

	_, err := run(t, "resources", "-s", server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad query")
}

func TestHealth(t *testing.T) {
	server := newCatalogServer(t, nil)

	out, err := run(t, "health", "-s", server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ready (instance i-1, store connected)\n", out)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "catalogctl dev")
	assert.Contains(t, out, "Go: go")
}

func TestInvalidServerURL(t *testing.T) {
	_, err := run(t, "resources", "-s", "not-a-url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid client configuration")
}
