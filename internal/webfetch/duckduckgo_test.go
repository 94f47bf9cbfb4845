package webfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div class="result">
	<a class="result__a" href="https://example.com/thermo">Thermodynamics Basics</a>
	<a class="result__snippet">An introduction to the laws of thermodynamics.</a>
</div>
<div class="result">
	<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org%2Fentropy&amp;rut=abc">Entropy Explained</a>
	<a class="result__snippet">What entropy means in practice.</a>
</div>
<div class="result">
	<a class="result__a" href="javascript:void(0)">Broken</a>
</div>
</body></html>`

func TestDuckDuckGo_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "thermodynamics", r.PostForm.Get("q"))
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	p := NewDuckDuckGoProvider(srv.Client(), srv.URL)

	hits, err := p.Search(context.Background(), "thermodynamics", 8)

	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, 1, hits[0].Rank)
	assert.Equal(t, "Thermodynamics Basics", hits[0].Title)
	assert.Equal(t, "https://example.com/thermo", hits[0].URL)
	assert.Equal(t, "An introduction to the laws of thermodynamics.", hits[0].Snippet)
	assert.Empty(t, hits[0].Content)

	assert.Equal(t, 2, hits[1].Rank)
	assert.Equal(t, "https://example.org/entropy", hits[1].URL)
}

func TestDuckDuckGo_MaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	p := NewDuckDuckGoProvider(srv.Client(), srv.URL)

	hits, err := p.Search(context.Background(), "thermodynamics", 1)

	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestDuckDuckGo_SnippetCap(t *testing.T) {
	long := strings.Repeat("entropy ", 100)
	page := `<html><body><div class="result">
		<a class="result__a" href="https://example.com/x">Long</a>
		<a class="result__snippet">` + long + `</a>
	</div></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	p := NewDuckDuckGoProvider(srv.Client(), srv.URL)

	hits, err := p.Search(context.Background(), "entropy", 8)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.LessOrEqual(t, len([]rune(hits[0].Snippet)), 200)
}

func TestDuckDuckGo_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewDuckDuckGoProvider(srv.Client(), srv.URL)

	_, err := p.Search(context.Background(), "entropy", 8)

	assert.Error(t, err)
}

func TestResolveResultURL(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"direct https", "https://example.com/a", "https://example.com/a"},
		{"redirect wrapper", "//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org%2Fb", "https://example.org/b"},
		{"wrapper without target", "//duckduckgo.com/l/?rut=abc", ""},
		{"javascript scheme", "javascript:void(0)", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveResultURL(tt.href))
		})
	}
}
