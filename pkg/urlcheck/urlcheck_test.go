//go:build unit
// +build unit

package urlcheck

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/beelot/tooling/pkg/apperr"
	"github.com/beelot/tooling/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trachtData = `export const defaultTrachtData = [
    {
        plant: "Salweide",
        start: "03-01",
        url: "https://www.naturadb.de/pflanzen/salix-caprea/",
    },
    { plant: "Raps", url: "http://example.org/raps" },
    { plant: "Ohne Link", url: "" },
    {
        plant: "Linde",
        url: "https://www.naturadb.de/pflanzen/tilia/" },
];
`

func TestParseEntries(t *testing.T) {
	entries := ParseEntries(trachtData)
	assert.Equal(t, []Entry{
		{Plant: "Salweide", URL: "https://www.naturadb.de/pflanzen/salix-caprea/", Line: 3},
		{Plant: "Raps", URL: "http://example.org/raps", Line: 7},
		{Plant: "Ohne Link", URL: "https://www.naturadb.de/pflanzen/tilia/", Line: 8},
	}, entries)
}

func TestParseEntries_Empty(t *testing.T) {
	assert.Empty(t, ParseEntries("export const defaultTrachtData = [];"))
}

func newTestChecker(opts Options) *Checker {
	if opts.Delay == 0 {
		opts.Delay = time.Millisecond
	}
	return NewChecker(opts, logging.Nop())
}

func TestChecker_Check(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			gotUA = r.Header.Get("User-Agent")
			gotLang = r.Header.Get("Accept-Language")
			_, _ = w.Write([]byte("<html><body>Salweide</body></html>"))
		case "/gone":
			_, _ = w.Write([]byte(`<html><body><div class="Error404">Seite nicht gefunden</div></body></html>`))
		case "/moved":
			http.Redirect(w, r, "/gone", http.StatusMovedPermanently)
		}
	}))
	defer srv.Close()

	entries := []Entry{
		{Plant: "Salweide", URL: srv.URL + "/ok", Line: 3},
		{Plant: "Raps", URL: srv.URL + "/gone", Line: 7},
		{Plant: "Linde", URL: srv.URL + "/moved", Line: 12},
	}
	problems, err := newTestChecker(Options{}).Check(context.Background(), entries)
	require.NoError(t, err)

	require.Len(t, problems, 2)
	assert.Equal(t, entries[1], problems[0].Entry)
	assert.Equal(t, "Error404 marker found in HTML", problems[0].Reason)
	assert.NoError(t, problems[0].Err)
	assert.Equal(t, entries[2], problems[1].Entry)

	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, DefaultAcceptLanguage, gotLang)
}

func TestChecker_RequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	problems, err := newTestChecker(Options{}).Check(context.Background(), []Entry{
		{Plant: "Raps", URL: url + "/raps", Line: 1},
	})
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.True(t, strings.HasPrefix(problems[0].Reason, "request failed:"), problems[0].Reason)
	assert.ErrorIs(t, problems[0].Err, apperr.ErrNetwork)
}

func TestChecker_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	problems, err := newTestChecker(Options{Timeout: 50 * time.Millisecond}).
		Check(context.Background(), []Entry{{Plant: "Linde", URL: srv.URL, Line: 1}})
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.True(t, strings.HasPrefix(problems[0].Reason, "request failed:"), problems[0].Reason)
}

func TestChecker_DecodeFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		_, _ = w.Write([]byte("<html>" + strings.Repeat("x", 2048)))
	}))
	defer srv.Close()

	problems, err := newTestChecker(Options{}).
		Check(context.Background(), []Entry{{Plant: "Raps", URL: srv.URL, Line: 4}})
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.True(t, strings.HasPrefix(problems[0].Reason, "decode failed:"), problems[0].Reason)
	assert.ErrorIs(t, problems[0].Err, apperr.ErrNetwork)
}

func TestChecker_DecodesDeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<p>Seite f\xfcr Pflanze</p><div class=\"Fehlerseite\"></div>"))
	}))
	defer srv.Close()

	problems, err := newTestChecker(Options{Marker: "für Pflanze"}).
		Check(context.Background(), []Entry{{Plant: "Raps", URL: srv.URL, Line: 4}})
	require.NoError(t, err)
	require.Len(t, problems, 1)
	assert.Equal(t, "für Pflanze marker found in HTML", problems[0].Reason)
}

func TestChecker_Pacing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	entries := []Entry{{URL: srv.URL}, {URL: srv.URL}, {URL: srv.URL}}
	start := time.Now()
	_, err := newTestChecker(Options{Delay: 40 * time.Millisecond}).Check(context.Background(), entries)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestChecker_DelayFollowsSlowResponses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
	}))
	defer srv.Close()

	entries := []Entry{{URL: srv.URL}, {URL: srv.URL}}
	start := time.Now()
	_, err := newTestChecker(Options{Delay: 60 * time.Millisecond}).Check(context.Background(), entries)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 260*time.Millisecond)
}

func TestChecker_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestChecker(Options{}).Check(ctx, []Entry{{URL: "http://127.0.0.1:1"}})
	require.True(t, errors.Is(err, context.Canceled))
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, nil))
	assert.Equal(t, "No problematic URLs found.\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteReport(&buf, []Problem{
		{Entry: Entry{Plant: "Raps", URL: "https://example.org/raps", Line: 7}, Reason: "Error404 marker found in HTML"},
		{Entry: Entry{Plant: "Linde", URL: "https://example.org/linde", Line: 12}, Reason: "request failed: timeout"},
	}))
	assert.Equal(t, "Problematic URLs (Error404 or fetch problems):\n\n"+
		"- line 7: plant=\"Raps\", url=https://example.org/raps\n"+
		"  reason: Error404 marker found in HTML\n"+
		"- line 12: plant=\"Linde\", url=https://example.org/linde\n"+
		"  reason: request failed: timeout\n", buf.String())
}
