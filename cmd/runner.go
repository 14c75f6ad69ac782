package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/octobass-dev/export-apple-music-playlist/internal/apple"
	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
	"github.com/octobass-dev/export-apple-music-playlist/internal/tasks"
	"github.com/octobass-dev/export-apple-music-playlist/internal/youtube"
)

// defaultPlaylistURL is used when no playlist argument is given.
const defaultPlaylistURL = "https://music.apple.com/us/playlist/todays-hits/pl.f4d106fed2bd41149aaacabb233eb5eb"

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger replaces the Runner's logger (used by the TUI to log to a file).
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, extractCommand, matchCommand, downloadCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Setup writes the starter configuration file.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	return r.writePlainln("✓ Wrote %s", path)
}

// extractor builds the playlist extractor from config, loading browser
// headers from a saved cURL command when configured.
func (r *Runner) extractor() (*apple.Extractor, error) {
	cfg := apple.Config{
		UserAgent:   r.config.Extractor.UserAgent,
		FixturePath: r.config.Extractor.FixturePath,
		HTTPClient:  r.httpClient,
		Logger:      r.logger,
	}

	if path := r.config.Extractor.HeadersFrom; path != "" {
		headers, err := shared.ParseCurlFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load browser headers: %w", err)
		}
		cfg.Headers = headers
	}

	return apple.New(cfg), nil
}

// engine assembles the pipeline engine. The downloader (and its ledger and
// output directory) is only created when withDownloader is set, so dry runs
// leave the filesystem untouched.
func (r *Runner) engine(cmd *cli.Command, withDownloader bool) (*tasks.Engine, error) {
	extractor, err := r.extractor()
	if err != nil {
		return nil, err
	}

	maxResults := r.config.Search.MaxResults
	if cmd.IsSet("max-results") {
		maxResults = int(cmd.Int("max-results"))
	}

	threshold := r.config.Matcher.Threshold
	if cmd.IsSet("threshold") {
		threshold = cmd.Float("threshold")
	}

	workers := r.config.Search.Workers
	if cmd.IsSet("parallel") {
		workers = int(cmd.Int("parallel"))
	}

	opts := tasks.EngineOpts{
		Extractor: extractor,
		Searcher:  youtube.NewSearchClient(maxResults, r.logger),
		Threshold: threshold,
		Workers:   workers,
		RateLimit: r.config.Search.RateLimit,
		Logger:    r.logger,
	}

	if withDownloader {
		dlCfg := youtube.DownloaderConfig{
			Directory: r.config.Downloader.Directory,
			Codec:     r.config.Downloader.Codec,
			Bitrate:   r.config.Downloader.Bitrate,
			Archive:   r.config.Downloader.Archive,
			Logger:    r.logger,
		}
		if cmd.IsSet("dir") {
			dlCfg.Directory = cmd.String("dir")
		}
		if cmd.IsSet("codec") {
			dlCfg.Codec = cmd.String("codec")
		}
		if cmd.IsSet("bitrate") {
			dlCfg.Bitrate = cmd.String("bitrate")
		}

		downloader, err := youtube.NewAudioDownloader(dlCfg)
		if err != nil {
			return nil, err
		}
		opts.Downloader = downloader
		opts.Ledger = downloader.Ledger()
	}

	return tasks.NewEngine(opts), nil
}

// playlistArgs returns the positional playlist URLs, falling back to the default playlist.
func (r *Runner) playlistArgs(cmd *cli.Command) ([]string, error) {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		urls = []string{defaultPlaylistURL}
	}

	for _, u := range urls {
		if err := shared.ValidatePlaylistURL(u); err != nil {
			return nil, err
		}
	}
	return urls, nil
}

// printExtractionAdvice writes the remediation hints shown when a playlist yields no tracks.
func (r *Runner) printExtractionAdvice() {
	r.writePlain("\n❌ No tracks could be extracted from this playlist.\n")
	r.writePlain("\nPossible solutions:\n")
	r.writePlain("1. Make sure the playlist is public\n")
	r.writePlain("2. Save the page HTML locally and set extractor.fixture_path\n")
	r.writePlain("3. Copy the request as cURL from your browser and set extractor.headers_from\n")
	r.writePlain("4. Manually copy track names from the web interface\n")
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
