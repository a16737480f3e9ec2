package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/compatguard/cli/pkg/compliance"
	"github.com/compatguard/cli/pkg/debuglog"
	"github.com/compatguard/cli/pkg/diagnostics"
	"github.com/compatguard/cli/pkg/features"
	"github.com/compatguard/cli/pkg/linter"
	"github.com/compatguard/cli/pkg/resolver"
	"github.com/compatguard/cli/pkg/rules"
)

// ErrScanInProgress is returned when Scan is called while another scan on
// the same Scanner is running.
var ErrScanInProgress = errors.New("scan already in progress")

// SkipDirs are never descended into.
var SkipDirs = []string{"node_modules", ".git", "dist", "build"}

const DefaultConcurrency = 8

type Options struct {
	// Exclude holds glob patterns matched against slash-separated paths
	// relative to the scan root. A leading "**/" matches at any depth.
	Exclude     []string
	Concurrency int
}

// Result is one completed scan.
type Result struct {
	ID          string                    `json:"id"`
	Root        string                    `json:"root"`
	StartedAt   time.Time                 `json:"startedAt"`
	Duration    time.Duration             `json:"duration"`
	Files       []*linter.Result          `json:"files"`
	Diagnostics []diagnostics.Diagnostic  `json:"diagnostics"`
	Summary     diagnostics.Summary       `json:"summary"`
	Totals      map[features.Category]int `json:"totals"`
	Report      *compliance.Report        `json:"report"`
	Stats       resolver.Stats            `json:"stats"`
}

// Critical reports whether the scan has findings at or above failOn.
func (r *Result) Critical(failOn diagnostics.Severity) bool {
	return compliance.HasCriticalIssues(r.Diagnostics, failOn)
}

type Scanner struct {
	linter *linter.Linter
	failOn diagnostics.Severity
	now    func() time.Time

	busy atomic.Bool
}

func New(l *linter.Linter, failOn diagnostics.Severity) *Scanner {
	return &Scanner{linter: l, failOn: failOn, now: time.Now}
}

type file struct {
	path string
	rel  string
	typ  linter.FileType
}

// Scan lints every supported file under root and aggregates the findings.
func (s *Scanner) Scan(ctx context.Context, root string, opts Options) (*Result, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrScanInProgress
	}
	defer s.busy.Store(false)

	started := s.now()
	if err := s.linter.Initialize(ctx); err != nil {
		return nil, err
	}

	files, err := collect(root, opts.Exclude)
	if err != nil {
		return nil, err
	}
	debuglog.Log("scanning %d files under %s", len(files), root)

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]*linter.Result, len(files))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, f := range files {
		i, f := i, f
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			code, err := os.ReadFile(f.path)
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to read %s", f.rel)
			}
			res, err := s.linter.Lint(string(code), string(f.typ), rules.Input{File: f.rel})
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to lint %s", f.rel)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	units := fileUnits(files)
	diags := make([]diagnostics.Diagnostic, 0)
	summary := diagnostics.Summarize(nil)
	for _, res := range results {
		diags = append(diags, res.Diagnostics...)
		summary.Merge(res.Summary)
	}

	return &Result{
		ID:          uuid.NewString(),
		Root:        root,
		StartedAt:   started,
		Duration:    s.now().Sub(started),
		Files:       results,
		Diagnostics: diags,
		Summary:     summary,
		Totals:      units.Totals(),
		Report:      compliance.NewReport(diags, units, s.failOn),
		Stats:       s.linter.Stats(),
	}, nil
}

// collect returns the lintable files under root in path order. A root that
// is a single file is scanned on its own.
func collect(root string, exclude []string) ([]file, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to scan")
	}
	if !info.IsDir() {
		ft, ok := linter.FileTypeFromPath(root)
		if !ok || ft == linter.FileTypeGeneric {
			return nil, nil
		}
		return []file{{path: root, rel: filepath.Base(root), typ: ft}}, nil
	}

	var files []file
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path != root && (skipDir(d.Name()) || excluded(rel, exclude)) {
				return filepath.SkipDir
			}
			return nil
		}
		if excluded(rel, exclude) {
			return nil
		}
		ft, ok := linter.FileTypeFromPath(path)
		if !ok || ft == linter.FileTypeGeneric {
			return nil
		}
		files = append(files, file{path: path, rel: rel, typ: ft})
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "failed to walk %s", root)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return files, nil
}

func skipDir(name string) bool {
	for _, s := range SkipDirs {
		if name == s {
			return true
		}
	}
	return false
}

func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		p = filepath.ToSlash(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		anyDepth := strings.HasPrefix(p, "**/")
		p = strings.TrimPrefix(p, "**/")
		p = strings.TrimSuffix(p, "/**")

		candidates := []string{rel}
		if anyDepth {
			parts := strings.Split(rel, "/")
			for i := 1; i < len(parts); i++ {
				candidates = append(candidates, strings.Join(parts[i:], "/"))
			}
		}
		for _, c := range candidates {
			if ok, _ := filepath.Match(p, c); ok {
				return true
			}
			if strings.HasPrefix(c, p+"/") {
				return true
			}
		}
	}
	return false
}

// fileUnits maps each scanned file to the categories it is a unit of.
// Script files count for both javascript and webApi. An HTML page is one
// html unit, inline <style> and <script> included.
func fileUnits(files []file) compliance.Units {
	units := make(compliance.Units, len(files))
	for _, f := range files {
		switch f.typ {
		case linter.FileTypeCSS:
			units[f.rel] = []features.Category{features.CategoryCSS}
		case linter.FileTypeJavaScript, linter.FileTypeTypeScript:
			units[f.rel] = []features.Category{features.CategoryJavaScript, features.CategoryWebAPI}
		case linter.FileTypeHTML:
			units[f.rel] = []features.Category{features.CategoryHTML}
		}
	}
	return units
}
