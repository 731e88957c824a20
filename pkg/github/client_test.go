package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGitHubServer creates a test HTTP server that mocks GitHub API responses
// and emits rate limit headers with every response
func mockGitHubServer(_ *testing.T, responses map[string]interface{}, remaining int, reset time.Time) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		key := fmt.Sprintf("%s %s", r.Method, r.URL.Path)

		if response, exists := responses[key]; exists {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(response)
		} else {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
		}
	}))
}

// createTestClient creates a GitHub client configured to use the test server
func createTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client := NewClient("test-token")

	serverURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)

	client.client.BaseURL = serverURL
	return client
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-token")

	require.NotNil(t, client)
	require.NotNil(t, client.client)
	require.NotNil(t, client.ctx)
	require.NotNil(t, client.RateLimiter())
}

func TestClient_TracksRateLimitHeaders(t *testing.T) {
	reset := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	server := mockGitHubServer(t, map[string]interface{}{
		"GET /repos/test-owner/test-repo/labels": []map[string]interface{}{
			{"name": "bug", "color": "d73a4a"},
		},
	}, 321, reset)
	defer server.Close()

	client := createTestClient(t, server)

	labels, err := client.ListLabels("test-owner", "test-repo")
	require.NoError(t, err)
	require.Len(t, labels, 1)

	// Quota from the response headers reaches the shared limiter
	stats := client.RateLimiter().GetStats()
	assert.Equal(t, 321, stats.RemainingRequests)
	assert.Equal(t, reset.Unix(), stats.ResetTime.Unix())
}

func TestClient_LowQuotaThrottlesLimiter(t *testing.T) {
	reset := time.Now().Add(time.Hour)
	server := mockGitHubServer(t, map[string]interface{}{
		"GET /repos/test-owner/test-repo/labels": []map[string]interface{}{},
	}, 10, reset)
	defer server.Close()

	client := createTestClient(t, server)

	_, err := client.ListLabels("test-owner", "test-repo")
	require.NoError(t, err)

	// 10 remaining is below the aggressive throttle threshold
	assert.GreaterOrEqual(t, client.RateLimiter().GetDelay(),
		DefaultRateLimiterConfig().AggressiveThrottleDelay)
}
