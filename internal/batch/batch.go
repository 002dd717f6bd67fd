package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ironsheep/image-scopes-mcp/internal/colorspace"
	"github.com/ironsheep/image-scopes-mcp/internal/imaging"
	"github.com/ironsheep/image-scopes-mcp/internal/scope"
)

// Config holds all shared resources for a batch run.
type Config struct {
	// Scope configures the State each worker owns. Its Scope field selects
	// what is rendered.
	Scope scope.Config

	// Input is the profile of the decoded files.
	Input *colorspace.Profile

	// Cache is shared by all workers. Nil uses a private cache.
	Cache *imaging.ImageCache

	PreviewMaxWidth  int
	PreviewMaxHeight int

	// Box restricts the histogram and waveform to a normalized region.
	Box *[4]float64

	OutputDir string
	Format    string
	Render    imaging.RenderOptions

	// Workers defaults to runtime.NumCPU().
	Workers int

	// Progress is how often progress is logged. Zero means every 2 seconds.
	Progress time.Duration

	Logger *slog.Logger
}

// Result holds the outcome of processing one file.
type Result struct {
	Path    string `json:"path"`
	Output  string `json:"output,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Run computes and exports one scope image per path using a worker pool.
//
// Results are returned in input order. Paths not started before ctx is
// done are reported as failed with the context error.
func Run(ctx context.Context, cfg Config, paths []string) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.Cache == nil {
		cfg.Cache = imaging.NewImageCache()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Progress <= 0 {
		cfg.Progress = 2 * time.Second
	}

	total := len(paths)
	results := make([]Result, total)
	if err := prepareOutput(cfg.OutputDir); err != nil {
		for i, p := range paths {
			results[i] = failed(p, err)
		}
		return results
	}
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Progress)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					cfg.Logger.Info("batch progress", "done", p, "total", total, "files_per_sec", rate)
				}
			}
		}
	}()

	// Worker pool
	pathChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			state, err := scope.NewState(cfg.Scope)
			for idx := range pathChan {
				switch {
				case err != nil:
					results[idx] = failed(paths[idx], err)
				case ctx.Err() != nil:
					results[idx] = failed(paths[idx], ctx.Err())
				default:
					results[idx] = processFile(cfg, state, paths[idx])
				}
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range paths {
		pathChan <- i
	}
	close(pathChan)

	wg.Wait()
	close(done)

	cfg.Logger.Debug("batch finished", "files", total, "elapsed", time.Since(start))
	return results
}

func failed(path string, err error) Result {
	return Result{Path: path, Error: err.Error()}
}

func processFile(cfg Config, state *scope.State, path string) Result {
	frame, err := imaging.LoadFrame(cfg.Cache, path, cfg.PreviewMaxWidth, cfg.PreviewMaxHeight)
	if err != nil {
		return failed(path, err)
	}

	in := scope.Input{
		Pixels:  frame.Pixels,
		Width:   frame.Width,
		Height:  frame.Height,
		Profile: cfg.Input,
	}
	if cfg.Box != nil {
		roi := scope.ROIFromBox(frame.Width, frame.Height, *cfg.Box)
		in.ROI = &roi
	}
	if err := state.Compute(in); err != nil {
		return failed(path, err)
	}

	snap := state.Snapshot()
	out := OutputPath(cfg.OutputDir, path, snap.Scope, cfg.Format)
	if _, err := imaging.ExportScope(snap, cfg.Render, cfg.Format, out); err != nil {
		return failed(path, fmt.Errorf("export %s: %w", out, err))
	}
	return Result{Path: path, Output: out, Success: true}
}

// OutputPath names the export of path: the base name without extension,
// the scope name and the format extension, inside dir.
func OutputPath(dir, path string, st scope.ScopeType, format string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(dir, fmt.Sprintf("%s-%s.%s", base, st, strings.ToLower(format)))
}

// Summary counts successes and failures in results.
func Summary(results []Result) (ok, failedCount int) {
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failedCount++
		}
	}
	return ok, failedCount
}

func prepareOutput(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("batch: create %s: %w", dir, err)
	}
	return nil
}
