//go:build e2e

package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// needs an installed chrome, run with -tags e2e
func TestRenderer_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<div id="readme"></div>
			<script>document.getElementById("readme").textContent = "script rendered readme";</script>
		</body></html>`))
	}))
	defer server.Close()

	r := NewRenderer(30*time.Second, "test-agent/1.0")
	r.wait = 200 * time.Millisecond

	html, err := r.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "script rendered readme")
}
