package internal

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"github.com/ryanuber/go-glob"
	"golang.org/x/sync/errgroup"
)

// DefaultPattern matches every replay file in a directory
const DefaultPattern = "*" + ReplayExtension

// Filter selects replays by coach and team name. A nil pattern matches
// everything; otherwise any one name matching is enough.
type Filter struct {
	Coach *regexp.Regexp
	Team  *regexp.Regexp
}

// NewFilter compiles case-insensitive coach and team patterns. Empty patterns
// are not applied.
func NewFilter(coach, team string) (*Filter, error) {
	var (
		filter Filter
		err    error
	)

	if coach != "" {
		if filter.Coach, err = regexp.Compile("(?i)" + coach); err != nil {
			return nil, fmt.Errorf("coach filter: %w", err)
		}
	}

	if team != "" {
		if filter.Team, err = regexp.Compile("(?i)" + team); err != nil {
			return nil, fmt.Errorf("team filter: %w", err)
		}
	}

	return &filter, nil
}

// Match reports whether the match passes both filters
func (f *Filter) Match(info MatchInfo) bool {
	if f == nil {
		return true
	}

	return anyMatch(f.Coach, info.Coaches) && anyMatch(f.Team, info.Teams)
}

func anyMatch(pattern *regexp.Regexp, names []string) bool {
	if pattern == nil {
		return true
	}

	for _, name := range names {
		if pattern.MatchString(name) {
			return true
		}
	}

	return false
}

// ListReplayFiles returns path itself when it is a file, otherwise the files
// in the directory whose name matches the glob pattern, in natural order
func ListReplayFiles(path, pattern string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	if pattern == "" {
		pattern = DefaultPattern
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if glob.Glob(strings.ToLower(pattern), strings.ToLower(entry.Name())) {
			names = append(names, entry.Name())
		}
	}

	sort.Sort(natural.StringSlice(names))

	files := make([]string, len(names))
	for idx, name := range names {
		files[idx] = filepath.Join(path, name)
	}

	return files, nil
}

// Result is the outcome of collecting one replay file. Either Err is set, or
// both Replay and Stats are.
type Result struct {
	Path   string
	Replay *Replay
	Stats  *MatchStats
	Err    error

	filtered bool
}

// CollectOptions tune a batch collection
type CollectOptions struct {
	Filter *Filter
	// Workers bounds the number of files processed at once
	Workers int
	// DumpDecoded writes the decoded plaintext of every replay beside it
	DumpDecoded bool
	// Done, when set, is called on the consuming goroutine once per finished
	// file, including the ones the filter rejected
	Done func(path string)
}

// Batch is the set of replays found at a path
type Batch struct {
	Files []string
	// Single is set when the path named one replay file
	Single  bool
	Results iter.Seq[Result]
}

// Discover lists the replays at path (a replay file or a directory) and
// collects them. A single file is never filtered.
func Discover(ctx context.Context, path, pattern string, opts CollectOptions) (*Batch, error) {
	files, err := ListReplayFiles(path, pattern)
	if err != nil {
		return nil, err
	}

	batch := &Batch{Files: files, Single: len(files) == 1 && files[0] == path}
	if batch.Single {
		opts.Filter = nil
	}

	batch.Results = Collect(ctx, files, opts)

	return batch, nil
}

// Collect decodes, filters and analyzes files concurrently, yielding each
// result as soon as it completes. A failing file yields a Result carrying a
// ReplayError and never affects its siblings. Files rejected by the filter
// yield nothing. Stopping the iteration early abandons the remaining files.
func Collect(ctx context.Context, files []string, opts CollectOptions) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// sized so that workers never block on an abandoned sequence
		results := make(chan Result, len(files))

		group := new(errgroup.Group)
		group.SetLimit(max(opts.Workers, 1))

		go func() {
			for _, file := range files {
				group.Go(func() error {
					if ctx.Err() != nil {
						return nil
					}

					results <- collectFile(file, opts)

					return nil
				})
			}

			_ = group.Wait()

			close(results)
		}()

		for result := range results {
			if opts.Done != nil {
				opts.Done(result.Path)
			}

			if result.filtered {
				continue
			}

			if !yield(result) {
				return
			}
		}
	}
}

func collectFile(path string, opts CollectOptions) Result {
	fail := func(err error) Result {
		var replayErr *ReplayError
		if !errors.As(err, &replayErr) {
			err = &ReplayError{Path: path, Err: err}
		}

		return Result{Path: path, Err: err}
	}

	decoded, err := DecodeFile(path, opts.DumpDecoded)
	if err != nil {
		return fail(err)
	}

	if !opts.Filter.Match(ReadMatchInfo(decoded.Document.Root())) {
		return Result{Path: path, filtered: true}
	}

	replay, err := NewReplay(path, decoded)
	if err != nil {
		return fail(err)
	}

	stats, err := Analyze(replay)
	if err != nil {
		return fail(err)
	}

	return Result{Path: path, Replay: replay, Stats: stats}
}
