package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slackfocus/slackfocus/internal/observability"
	"github.com/slackfocus/slackfocus/internal/output"
)

type tokenFunc func() (string, error)

func (f tokenFunc) Token() (string, error) { return f() }

var testToken = tokenFunc(func() (string, error) { return "xoxp-test", nil })

// newTestClient builds a client against server with sleeping disabled and
// the waits recorded.
func newTestClient(server *httptest.Server, collector *observability.SessionCollector) (*Client, *[]time.Duration) {
	c := NewClient(server.URL, testToken, collector)
	waits := &[]time.Duration{}
	c.sleep = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
	return c, waits
}

func TestCallSendsAuthAndParams(t *testing.T) {
	var gotAuth, gotUA, gotLimit string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	c, _ := newTestClient(server, nil)
	params := url.Values{}
	params.Set("limit", "50")

	require.NoError(t, c.Call(context.Background(), "stars.list", params, nil))
	assert.Equal(t, "Bearer xoxp-test", gotAuth)
	assert.Contains(t, gotUA, "slackfocus/")
	assert.Equal(t, "50", gotLimit)
}

func TestCallEnvelopeErrorIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"ok":false,"error":"channel_not_found"}`)
	}))
	defer server.Close()

	c, waits := newTestClient(server, nil)

	err := c.Call(context.Background(), "conversations.info", nil, nil)
	require.Error(t, err)
	assert.Equal(t, output.CodeAPI, output.AsError(err).Code)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *waits)
}

func TestCallAuthErrorsMapToAuthCode(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http 401", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}},
		{"envelope invalid_auth", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"ok":false,"error":"invalid_auth"}`)
		}},
		{"envelope token_revoked", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"ok":false,"error":"token_revoked"}`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c, _ := newTestClient(server, nil)
			err := c.Call(context.Background(), "auth.test", nil, nil)
			require.Error(t, err)
			assert.Equal(t, output.CodeAuth, output.AsError(err).Code)
		})
	}
}

func TestCallRetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	collector := observability.NewSessionCollector()
	c, waits := newTestClient(server, collector)

	require.NoError(t, c.Call(context.Background(), "auth.test", nil, nil))
	assert.Equal(t, 3, calls)
	assert.Len(t, *waits, 2)
	// Exponential backoff: second wait at least doubles the base.
	assert.GreaterOrEqual(t, (*waits)[0], 1*time.Second)
	assert.GreaterOrEqual(t, (*waits)[1], 2*time.Second)
	assert.Equal(t, 2, collector.Summary().TotalRetries)
}

func TestCallRateLimitHonorsRetryAfter(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	c, waits := newTestClient(server, nil)

	require.NoError(t, c.Call(context.Background(), "stars.list", nil, nil))
	require.Len(t, *waits, 1)
	assert.Equal(t, 2*time.Second, (*waits)[0])
}

func TestCallRateLimitExhaustsRetryBudget(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, waits := newTestClient(server, nil)

	err := c.Call(context.Background(), "stars.list", nil, nil)
	require.Error(t, err)
	assert.Equal(t, output.CodeRateLimit, output.AsError(err).Code)
	assert.Equal(t, maxRetries, calls)
	assert.Len(t, *waits, maxRetries-1)
}

func TestCallCancelledContextStopsRetrying(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(server.URL, testToken, nil)
	c.sleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }

	err := c.Call(context.Background(), "auth.test", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCallRawReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"ok":true,"team":"Example"}`)
	}))
	defer server.Close()

	c, _ := newTestClient(server, nil)

	raw, err := c.CallRaw(context.Background(), "auth.test", nil)
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "Example", data["team"])
}

func TestListAllStarsFollowsCursor(t *testing.T) {
	pages := map[string]starsListResponse{}

	page1 := starsListResponse{Items: make([]SavedItem, 87)}
	for i := range page1.Items {
		page1.Items[i] = SavedItem{Type: TypeMessage, Channel: "C1", Message: &Message{Timestamp: fmt.Sprintf("1.%03d", i)}}
	}
	page1.OK = true
	page1.ResponseMetadata.NextCursor = "cursor-2"
	pages[""] = page1

	page2 := starsListResponse{Items: make([]SavedItem, 45)}
	for i := range page2.Items {
		page2.Items[i] = SavedItem{Type: TypeMessage, Channel: "C2", Message: &Message{Timestamp: fmt.Sprintf("2.%03d", i)}}
	}
	page2.OK = true
	pages["cursor-2"] = page2

	var gotLimits []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimits = append(gotLimits, r.URL.Query().Get("limit"))
		page := pages[r.URL.Query().Get("cursor")]
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	defer server.Close()

	c, _ := newTestClient(server, nil)

	items, err := c.ListAllStars(context.Background(), 100)
	require.NoError(t, err)
	assert.Len(t, items, 132)
	assert.Equal(t, []string{"100", "100"}, gotLimits)
}

func TestListAllStarsWaitsOutRateLimitBetweenPages(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		resp := starsListResponse{Items: []SavedItem{{Type: TypeChannel, Channel: "C1"}}}
		resp.OK = true
		if calls == 1 {
			resp.ResponseMetadata.NextCursor = "next"
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	c, waits := newTestClient(server, nil)

	items, err := c.ListAllStars(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	require.Len(t, *waits, 1)
	assert.GreaterOrEqual(t, (*waits)[0], 2*time.Second)
}

func TestListAllStarsReturnsPartialItemsOnExhaustion(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			resp := starsListResponse{Items: []SavedItem{{Type: TypeChannel, Channel: "C1"}}}
			resp.OK = true
			resp.ResponseMetadata.NextCursor = "next"
			require.NoError(t, json.NewEncoder(w).Encode(resp))
			return
		}
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, _ := newTestClient(server, nil)

	items, err := c.ListAllStars(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, output.CodeRateLimit, output.AsError(err).Code)
	assert.Len(t, items, 1)
}

func TestRemoveStarParams(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer server.Close()

	c, _ := newTestClient(server, nil)

	msg := SavedItem{Type: TypeMessage, Channel: "C1", Message: &Message{Timestamp: "123.456"}}
	require.NoError(t, c.RemoveStar(context.Background(), msg))
	assert.Equal(t, "C1", gotQuery.Get("channel"))
	assert.Equal(t, "123.456", gotQuery.Get("timestamp"))

	file := SavedItem{Type: TypeFile, File: &File{ID: "F1"}}
	require.NoError(t, c.RemoveStar(context.Background(), file))
	assert.Equal(t, "F1", gotQuery.Get("file"))

	err := c.RemoveStar(context.Background(), SavedItem{Type: TypeChannel, Channel: "C1"})
	require.Error(t, err)
}

func TestAuthTestWithToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"ok":true,"url":"https://example.slack.com/","team":"Example","user":"alice","user_id":"U1"}`)
	}))
	defer server.Close()

	c, _ := newTestClient(server, nil)

	identity, err := c.AuthTestWithToken(context.Background(), "xoxp-probe")
	require.NoError(t, err)
	assert.Equal(t, "Bearer xoxp-probe", gotAuth)
	assert.Equal(t, "alice", identity.User)
	assert.Equal(t, "Example", identity.Team)
	assert.Equal(t, "https://example.slack.com/", identity.Workspace)
}

func TestUserNamePreferenceOrder(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"display name wins", `{"ok":true,"user":{"id":"U1","name":"amh","real_name":"Alice M","profile":{"display_name":"alice"}}}`, "alice"},
		{"real name next", `{"ok":true,"user":{"id":"U1","name":"amh","real_name":"Alice M","profile":{"display_name":""}}}`, "Alice M"},
		{"account name last", `{"ok":true,"user":{"id":"U1","name":"amh","profile":{}}}`, "amh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			c, _ := newTestClient(server, nil)
			got, err := c.UserName(context.Background(), "U1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
