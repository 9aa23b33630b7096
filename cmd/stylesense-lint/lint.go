package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"stylesense/analysis"
	"stylesense/grammar"
	"stylesense/logging"

	"golang.org/x/sync/errgroup"
)

type lintOptions struct {
	fix  bool
	jobs int
}

type target struct {
	path string
	lang grammar.SupportedLanguage
}

type report struct {
	data   []byte
	result *analysis.Result
	fixed  int
	err    error
}

// collectFiles expands directories into the C and C++ sources below them.
// Files named explicitly must have a recognized extension.
func collectFiles(paths []string) ([]target, error) {
	var out []target
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			lang, err := grammar.ForFile(p)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
			out = append(out, target{path: p, lang: lang})
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if lang, err := grammar.ForFile(path); err == nil {
				out = append(out, target{path: path, lang: lang})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// lintFiles analyzes files concurrently and prints their diagnostics in
// input order. It returns the number of issues printed.
func lintFiles(ctx context.Context, eng *analysis.Engine, files []target, opts lintOptions, w io.Writer) (int, error) {
	logger := logging.FromContext(ctx)
	reports := make([]report, len(files))

	g, gctx := errgroup.WithContext(ctx)
	if opts.jobs > 0 {
		g.SetLimit(opts.jobs)
	}
	for i, f := range files {
		g.Go(func() error {
			reports[i] = lintFile(logging.WithFields(gctx, logging.FieldPath, f.path), eng, f, opts.fix)
			return nil
		})
	}
	_ = g.Wait()

	issues := 0
	var errs []error
	for i, f := range files {
		r := reports[i]
		if r.err != nil {
			logger.Error("could not analyse file", logging.FieldPath, f.path, logging.FieldError, r.err)
			errs = append(errs, fmt.Errorf("%s: %w", f.path, r.err))
			continue
		}
		if r.fixed > 0 {
			logger.Info("applied fixes", logging.FieldPath, f.path, logging.FieldCount, r.fixed)
		}
		if r.result.Incomplete {
			logger.Debug("file has syntax errors", logging.FieldPath, f.path)
		}
		for rule, err := range r.result.RuleErrors {
			logger.Warn("rule skipped", logging.FieldPath, f.path, logging.FieldRule, rule, logging.FieldError, err)
		}
		lines := strings.Split(string(r.data), "\n")
		for _, d := range r.result.Diagnostics {
			fmt.Fprintf(w,
				"%d:%d - %d:%d\t%s\t%s (%s)\n",
				d.Range.Start.Line, d.Range.Start.Character,
				d.Range.End.Line, d.Range.End.Character,
				f.path,
				d.Message, d.Source,
			)
			if d.Range.Start.Line < len(lines) {
				fmt.Fprintf(w, "\n%s\n", prepareString(lines[d.Range.Start.Line]))
			}
			fmt.Fprintf(w, "\n")
			issues++
		}
	}
	return issues, errors.Join(errs...)
}

func lintFile(ctx context.Context, eng *analysis.Engine, f target, fix bool) report {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return report{err: err}
	}
	result, err := eng.Analyze(ctx, f.path, f.lang, data)
	if err != nil {
		return report{err: err}
	}
	if !fix {
		return report{data: data, result: result}
	}

	fixed, n := analysis.ApplyEdits(data, analysis.Edits(result.Diagnostics))
	if n == 0 {
		return report{data: data, result: result}
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return report{err: err}
	}
	if err := os.WriteFile(f.path, fixed, info.Mode().Perm()); err != nil {
		return report{err: err}
	}
	// Report what the fixes left behind.
	result, err = eng.Analyze(ctx, f.path, f.lang, fixed)
	if err != nil {
		return report{err: err}
	}
	return report{data: fixed, result: result, fixed: n}
}

func prepareString(in string) string {
	return "\t" + strings.TrimRight(strings.TrimLeft(in, " \t"), "\r")
}
