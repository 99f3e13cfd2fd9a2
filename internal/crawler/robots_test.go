package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadRobotsDisallowRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private\nCrawl-delay: 2\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	robots := LoadRobots(context.Background(), srv.URL+"/", "test-agent", 5*time.Second, zap.NewNop())
	require.False(t, robots.Absent())
	require.True(t, robots.CanFetch(srv.URL+"/public"))
	require.False(t, robots.CanFetch(srv.URL+"/private"))
	require.False(t, robots.CanFetch(srv.URL+"/private/deeper"))
	require.Equal(t, 2*time.Second, robots.CrawlDelay())
}

func TestLoadRobotsMissingIsPermissive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	robots := LoadRobots(context.Background(), srv.URL+"/", "test-agent", 5*time.Second, zap.NewNop())
	require.True(t, robots.Absent())
	require.True(t, robots.CanFetch(srv.URL+"/anything"))
	require.Zero(t, robots.CrawlDelay())
}

func TestLoadRobotsUnreachableIsPermissive(t *testing.T) {
	// Closed server: connection refused must degrade, not abort.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	base := srv.URL
	srv.Close()

	robots := LoadRobots(context.Background(), base+"/", "test-agent", time.Second, zap.NewNop())
	require.True(t, robots.Absent())
	require.True(t, robots.CanFetch(base+"/anything"))
}

func TestRobotsAgentSpecificGroup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: special-bot\nDisallow: /only-for-special\n\nUser-agent: *\nDisallow: /for-everyone\n")
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	special := LoadRobots(context.Background(), srv.URL+"/", "special-bot", 5*time.Second, zap.NewNop())
	require.False(t, special.CanFetch(srv.URL+"/only-for-special"))
	require.True(t, special.CanFetch(srv.URL+"/for-everyone"))

	generic := LoadRobots(context.Background(), srv.URL+"/", "other-bot", 5*time.Second, zap.NewNop())
	require.True(t, generic.CanFetch(srv.URL+"/only-for-special"))
	require.False(t, generic.CanFetch(srv.URL+"/for-everyone"))
}

func TestAllowAll(t *testing.T) {
	robots := AllowAll("test-agent")
	require.True(t, robots.Absent())
	require.True(t, robots.CanFetch("https://example.com/whatever"))
	require.True(t, robots.CanFetch("not even a url"))
}
