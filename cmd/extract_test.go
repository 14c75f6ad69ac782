package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
)

const samplePlaylistPage = `<html><head>
<meta property="og:title" content="Hits"/>
<script type="application/json">[{"data":{"sections":[{"itemKind":"trackLockup","items":[{"title":"Blinding Lights","artistName":"The Weeknd","duration":200040,"contentDescriptor":{"url":"https://music.apple.com/us/song/1"}}]}]}}]</script>
</head><body></body></html>`

const emptyPlaylistPage = `<html><head><meta property="og:title" content="Hits"/></head><body></body></html>`

func newQuietRunner(output io.Writer) *Runner {
	return NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})
}

func TestExtractSkipsFailedPlaylist(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	var served bool
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served = true
		fmt.Fprint(w, samplePlaylistPage)
	}))
	defer working.Close()

	output := &bytes.Buffer{}
	runner := newQuietRunner(output)
	app := &cli.Command{Commands: runner.register()}

	err := app.Run(context.Background(), []string{"amxp", "extract", "--dont-save-tracklist", failing.URL, working.URL})
	if err != nil {
		t.Fatalf("extract returned error: %v", err)
	}
	if !served {
		t.Fatal("second playlist was never fetched after the first one failed")
	}
	if !strings.Contains(output.String(), "Extracted 1 tracks") {
		t.Errorf("missing extraction summary for the surviving playlist, got %q", output.String())
	}
	if !strings.Contains(output.String(), "No tracks could be extracted") {
		t.Errorf("missing remediation advice for the failed playlist, got %q", output.String())
	}
}
