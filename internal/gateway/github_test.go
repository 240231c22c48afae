package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestGateway creates a GitHubGateway that communicates with a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler) (*GitHubGateway, *bytes.Buffer, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := github.NewClient(server.Client())
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	client.BaseURL = baseURL

	var errBuf bytes.Buffer
	gateway := &GitHubGateway{
		client: client,
		logger: log.New(io.Discard, "", 0),
		errLog: log.New(&errBuf, "", 0),
	}
	return gateway, &errBuf, server
}

// repoPage builds a JSON array of n repository objects named prefix0..prefixN-1.
func repoPage(prefix string, n int, fork bool) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"full_name":"%s%d","fork":%t}`, prefix, i, fork)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestGitHubGateway_FetchUserRepoNames(t *testing.T) {
	testCases := []struct {
		name          string
		pages         map[string]string // page query value -> body
		status        int
		expectedCount int
		expectedPages int
	}{
		{
			name:          "single short page stops pagination",
			pages:         map[string]string{"1": repoPage("octo/short", 3, false)},
			status:        http.StatusOK,
			expectedCount: 3,
			expectedPages: 1,
		},
		{
			name: "full page fetches the next one",
			pages: map[string]string{
				"1": repoPage("octo/full", 100, false),
				"2": repoPage("octo/tail", 2, false),
			},
			status:        http.StatusOK,
			expectedCount: 102,
			expectedPages: 2,
		},
		{
			name:          "empty first page yields empty set",
			pages:         map[string]string{"1": "[]"},
			status:        http.StatusOK,
			expectedCount: 0,
			expectedPages: 1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			requests := 0
			handler := func(w http.ResponseWriter, r *http.Request) {
				requests++
				assert.Contains(t, r.URL.Path, "/users/octo/repos")
				assert.Equal(t, "all", r.URL.Query().Get("type"))
				assert.Equal(t, "100", r.URL.Query().Get("per_page"))
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.pages[r.URL.Query().Get("page")])
			}
			gateway, _, _ := setupTestGateway(t, http.HandlerFunc(handler))

			names, err := gateway.FetchUserRepoNames(context.Background(), "octo")
			require.NoError(t, err)
			assert.Len(t, names, tc.expectedCount)
			assert.Equal(t, tc.expectedPages, requests)
		})
	}
}

func TestGitHubGateway_FetchUserRepoNames_HTTPErrorYieldsEmptySet(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"message": "Internal Server Error"}`)
	}
	gateway, errBuf, _ := setupTestGateway(t, http.HandlerFunc(handler))

	names, err := gateway.FetchUserRepoNames(context.Background(), "octo")
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Contains(t, errBuf.String(), "API error 500")
	assert.Contains(t, errBuf.String(), "/users/octo/repos")
}

func TestGitHubGateway_FetchMergedPRs(t *testing.T) {
	searchPage := func(n int, withMergeDate bool) string {
		items := make([]string, n)
		for i := range items {
			merged := "null"
			if withMergeDate {
				merged = `{"merged_at":"2024-05-01T10:00:00Z"}`
			}
			items[i] = fmt.Sprintf(
				`{"title":"fix %d","number":%d,"html_url":"https://github.com/owner/repo/pull/%d","pull_request":%s}`,
				i, i, i, merged)
		}
		return fmt.Sprintf(`{"total_count":%d,"incomplete_results":false,"items":[%s]}`, n, strings.Join(items, ","))
	}

	t.Run("short page stops pagination", func(t *testing.T) {
		requests := 0
		handler := func(w http.ResponseWriter, r *http.Request) {
			requests++
			assert.Contains(t, r.URL.Path, "/search/issues")
			q := r.URL.Query().Get("q")
			assert.Contains(t, q, "type:pr")
			assert.Contains(t, q, "author:octo")
			assert.Contains(t, q, "is:merged")
			assert.Equal(t, "updated", r.URL.Query().Get("sort"))
			assert.Equal(t, "desc", r.URL.Query().Get("order"))
			fmt.Fprint(w, searchPage(4, true))
		}
		gateway, _, _ := setupTestGateway(t, http.HandlerFunc(handler))

		prs, err := gateway.FetchMergedPRs(context.Background(), "octo", 60)
		require.NoError(t, err)
		assert.Len(t, prs, 4)
		assert.Equal(t, 1, requests)
		assert.Equal(t, "fix 0", prs[0].Title)
		assert.Equal(t, "https://github.com/owner/repo/pull/0", prs[0].HTMLURL)
		assert.False(t, prs[0].MergedAt.IsZero())
	})

	t.Run("stops once maxRaw items are gathered", func(t *testing.T) {
		requests := 0
		handler := func(w http.ResponseWriter, r *http.Request) {
			requests++
			fmt.Fprint(w, searchPage(100, true))
		}
		gateway, _, _ := setupTestGateway(t, http.HandlerFunc(handler))

		prs, err := gateway.FetchMergedPRs(context.Background(), "octo", 60)
		require.NoError(t, err)
		// The full first page already satisfies the 60-item headroom.
		assert.Len(t, prs, 100)
		assert.Equal(t, 1, requests)
	})

	t.Run("missing merge date is the zero time", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, searchPage(1, false))
		}
		gateway, _, _ := setupTestGateway(t, http.HandlerFunc(handler))

		prs, err := gateway.FetchMergedPRs(context.Background(), "octo", 60)
		require.NoError(t, err)
		require.Len(t, prs, 1)
		assert.True(t, prs[0].MergedAt.IsZero())
	})

	t.Run("HTTP error yields empty list", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"message": "Validation Failed"}`)
		}
		gateway, errBuf, _ := setupTestGateway(t, http.HandlerFunc(handler))

		prs, err := gateway.FetchMergedPRs(context.Background(), "octo", 60)
		require.NoError(t, err)
		assert.Empty(t, prs)
		assert.Contains(t, errBuf.String(), "API error 422")
	})
}

func TestGitHubGateway_FetchRepoInfo(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/golang/go", r.URL.Path)
			fmt.Fprint(w, `{"full_name":"golang/go","stargazers_count":120000,"language":"Go"}`)
		}
		gateway, _, _ := setupTestGateway(t, http.HandlerFunc(handler))

		info, err := gateway.FetchRepoInfo(context.Background(), "golang/go")
		require.NoError(t, err)
		assert.Equal(t, RepoInfo{Stars: 120000, Language: "Go"}, info)
	})

	t.Run("not found yields zero metadata", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"message": "Not Found"}`)
		}
		gateway, errBuf, _ := setupTestGateway(t, http.HandlerFunc(handler))

		info, err := gateway.FetchRepoInfo(context.Background(), "gone/gone")
		require.NoError(t, err)
		assert.Equal(t, RepoInfo{}, info)
		assert.Contains(t, errBuf.String(), "API error 404")
	})

	t.Run("malformed full name is rejected", func(t *testing.T) {
		gateway, _, _ := setupTestGateway(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		}))
		_, err := gateway.FetchRepoInfo(context.Background(), "notafullname")
		assert.Error(t, err)
	})
}

func TestGitHubGateway_FetchOwnerRepos(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "owner", r.URL.Query().Get("type"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		fmt.Fprint(w, `[{"full_name":"octo/app","fork":false},{"full_name":"octo/copy","fork":true}]`)
	}
	gateway, _, _ := setupTestGateway(t, http.HandlerFunc(handler))

	repos, err := gateway.FetchOwnerRepos(context.Background(), "octo")
	require.NoError(t, err)
	assert.Equal(t, []OwnedRepo{
		{FullName: "octo/app", Fork: false},
		{FullName: "octo/copy", Fork: true},
	}, repos)
}

func TestGitHubGateway_FetchLanguages(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/repos/octo/app/languages", r.URL.Path)
			fmt.Fprint(w, `{"Go":600,"Python":300,"Shell":100}`)
		}
		gateway, _, _ := setupTestGateway(t, http.HandlerFunc(handler))

		langs, err := gateway.FetchLanguages(context.Background(), "octo/app")
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"Go": 600, "Python": 300, "Shell": 100}, langs)
	})

	t.Run("HTTP error yields empty mapping", func(t *testing.T) {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "Forbidden"}`)
		}
		gateway, errBuf, _ := setupTestGateway(t, http.HandlerFunc(handler))

		langs, err := gateway.FetchLanguages(context.Background(), "octo/app")
		require.NoError(t, err)
		assert.Empty(t, langs)
		assert.Contains(t, errBuf.String(), "API error 403")
	})
}
