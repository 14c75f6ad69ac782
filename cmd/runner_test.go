package main

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
	tu "github.com/octobass-dev/export-apple-music-playlist/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output == nil {
				t.Error("expected default output to be set")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "extract", "match", "download", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("got %d commands, want %d", len(commands), len(want))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("commands[%d] = %q, want %q", i, commands[i].Name, name)
			}
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s\n", "world"); err != nil {
			t.Fatalf("writePlain() error = %v", err)
		}
		if output.String() != "hello world\n" {
			t.Errorf("output = %q", output.String())
		}
	})

	t.Run("writePlain surfaces writer errors", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

		if err := runner.writePlain("hello\n"); err == nil {
			t.Error("expected error from failing writer")
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]int{"tracks": 3}, false); err != nil {
			t.Fatalf("writeJSON() error = %v", err)
		}
		if got := strings.TrimSpace(output.String()); got != `{"tracks":3}` {
			t.Errorf("output = %q", got)
		}
	})
}

func TestDefaultPlaylistURL(t *testing.T) {
	if err := shared.ValidatePlaylistURL(defaultPlaylistURL); err != nil {
		t.Errorf("default playlist URL should validate: %v", err)
	}
}

func TestExtractorFromConfig(t *testing.T) {
	runner := NewRunner(RunnerOpts{})

	extractor, err := runner.extractor()
	if err != nil {
		t.Fatalf("extractor() error = %v", err)
	}
	if extractor == nil {
		t.Fatal("expected an extractor")
	}
}

func TestExtractorMissingHeadersFile(t *testing.T) {
	config := shared.DefaultConfig()
	config.Extractor.HeadersFrom = "/nonexistent/request.sh"
	runner := NewRunner(RunnerOpts{Config: config})

	if _, err := runner.extractor(); err == nil {
		t.Error("expected error for missing headers file")
	}
}
