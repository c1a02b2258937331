package besmart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	"besmart-monitor/lib/chrono"

	"github.com/stretchr/testify/require"
)

const loginPageHtml = `
<html><body>
<form method="post">
	<input type="hidden" name="csrf_token" value="tok-123">
	<input name="uid"><input name="password" type="password">
</form>
</body></html>`

func newTestClient(t *testing.T, server *httptest.Server, clock chrono.Clock) *Client {
	t.Helper()
	client, err := NewClient(ClientOptions{
		BaseUrl:         server.URL,
		Username:        "operator",
		Password:        "secret",
		TasksUrl:        server.URL + "/tasks",
		Timeout:         time.Second * 5,
		RefreshInterval: time.Minute * 10,
		Clock:           clock,
	})
	require.NoError(t, err)
	return client
}

func TestLoginFirstCandidate(t *testing.T) {
	var sawCsrf, sawUid bool
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, loginPageHtml)
			return
		}
		r.ParseForm()
		sawCsrf = r.PostFormValue("csrf_token") == "tok-123"
		sawUid = r.PostFormValue("uid") == "operator"
		if sawUid && r.PostFormValue("password") == "secret" {
			fmt.Fprint(w, `<html><body><h1>Dashboard</h1></body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body>please log in</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server, chrono.StandardClock{})
	err := client.Login(context.Background())
	require.NoError(t, err)
	require.True(t, sawCsrf)
	require.True(t, sawUid)
}

func TestLoginFallsBackToAlternateEndpoint(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, loginPageHtml)
			return
		}
		// base endpoint rejects everything
		fmt.Fprint(w, `<html><body>please log in</body></html>`)
	})
	mux.HandleFunc("/auth", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostFormValue("username") == "operator" {
			http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "abc"})
			fmt.Fprint(w, `<html><body>welcome</body></html>`)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server, chrono.StandardClock{})
	err := client.Login(context.Background())
	require.NoError(t, err)
}

func TestLoginExhaustsCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, loginPageHtml)
			return
		}
		fmt.Fprint(w, `<html><body>wrong credentials, please log in</body></html>`)
	}))
	defer server.Close()

	client := newTestClient(t, server, chrono.StandardClock{})
	err := client.Login(context.Background())
	require.ErrorIs(t, err, ErrAuthFailed)
}

func TestExpiredAfterRefreshInterval(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, loginPageHtml)
			return
		}
		fmt.Fprint(w, `<html><body><h1>Dashboard</h1></body></html>`)
	}))
	defer server.Close()

	clock := chrono.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	client := newTestClient(t, server, clock)

	require.True(t, client.Expired(clock.Now()), "no session yet")

	require.NoError(t, client.Login(context.Background()))
	require.False(t, client.Expired(clock.Now()))

	clock.Advance(time.Minute * 11)
	require.True(t, client.Expired(clock.Now()))
}

func TestExpiredWhenBouncedToLoginSurface(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, loginPageHtml)
			return
		}
		fmt.Fprint(w, `<html><body><h1>Dashboard</h1></body></html>`)
	})
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		// stale session: the panel bounces the fetch to the login page
		http.Redirect(w, r, "/", http.StatusFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	clock := chrono.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	client := newTestClient(t, server, clock)
	require.NoError(t, client.Login(context.Background()))

	_, err := client.FetchOrders(context.Background(), false)
	require.NoError(t, err)
	require.True(t, client.Expired(clock.Now()))
}

func TestFetchError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server, chrono.StandardClock{})
	_, err := client.FetchOrders(context.Background(), false)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)
}

func TestFetchCacheBusting(t *testing.T) {
	var gotTimestamp, gotNoCache bool
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		gotTimestamp = r.URL.Query().Get("_t") != ""
		gotNoCache = r.Header.Get("Cache-Control") == "no-cache, no-store, must-revalidate"
		fmt.Fprint(w, `<html><body><table></table></body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server, chrono.StandardClock{})
	page, err := client.FetchOrders(context.Background(), false)
	require.NoError(t, err)
	require.True(t, gotTimestamp)
	require.True(t, gotNoCache)
	require.NotEmpty(t, page.Body)
}

func TestFetchActiveFilterFallsBack(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") != "" {
			// the filtered view is broken server-side
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `<html><body>unfiltered listing</body></html>`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(ClientOptions{
		BaseUrl:        server.URL,
		Username:       "operator",
		Password:       "secret",
		TasksUrl:       server.URL + "/tasks",
		ActiveTasksUrl: server.URL + "/tasks?status=INPREPARATION&status=ONTHEWAY",
		Timeout:        time.Second * 5,
	})
	require.NoError(t, err)

	page, err := client.FetchOrders(context.Background(), true)
	require.NoError(t, err)
	require.Contains(t, string(page.Body), "unfiltered listing")
}
