package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSniff(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipt.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.5\n..."), 0644))

	out, err := run(t, "sniff", path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "PDF", got["media_type"])
	assert.Equal(t, "application/pdf", got["mime"])
	assert.Equal(t, false, got["image"])
}

func TestSubmitAgainstGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req pipeline.SubmitRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice", req.UserID)
		json.NewEncoder(w).Encode(pipeline.SubmitResponse{Message: pipeline.AcceptedMessage, DeliveryID: "S:1"})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "r.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.5"), 0644))

	out, err := run(t, "--url", srv.URL, "submit", path, "--owner", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, `"delivery_id": "S:1"`)
}

func TestRelayReportsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Referenced object not found.","code":"OBJECT_NOT_FOUND"}`))
	}))
	defer srv.Close()

	_, err := run(t, "--url", srv.URL, "relay", "--bucket", "landing", "--name", "ghost.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OBJECT_NOT_FOUND")
}
