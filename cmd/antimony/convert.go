package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"antimony"
	"antimony/internal/codec"
	"antimony/internal/crawler"
	"antimony/internal/metrics"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// outputFlags are the flags shared by convert and watch.
type outputFlags struct {
	to      string
	module  string
	flatten bool
	out     string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.to, "to", "t", "", "Output format: antimony, sbml or cellml (default from config)")
	cmd.Flags().StringVarP(&f.module, "module", "m", "", "Module to write (default: the main module)")
	cmd.Flags().BoolVar(&f.flatten, "flatten", false, "Flatten submodules into the written module")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output directory (default: next to each input)")
}

// convertOptions says what one conversion writes and where.
type convertOptions struct {
	Format  antimony.Format
	Module  string
	Flatten bool
	OutDir  string
}

// resolve merges the flags with the configuration; flags win when set.
func (f *outputFlags) resolve(cmd *cobra.Command) (convertOptions, error) {
	name := cfg.Output.Format
	if f.to != "" {
		name = f.to
	}
	format, err := codec.ParseFormat(name)
	if err != nil {
		return convertOptions{}, err
	}
	opts := convertOptions{
		Format:  format,
		Module:  f.module,
		Flatten: cfg.Output.Flatten,
		OutDir:  cfg.Output.Dir,
	}
	if cmd.Flags().Changed("flatten") {
		opts.Flatten = f.flatten
	}
	if f.out != "" {
		opts.OutDir = f.out
	}
	return opts, nil
}

var (
	convertFlags outputFlags
	metricsPath  string
)

var convertCmd = &cobra.Command{
	Use:   "convert [files|dirs...]",
	Short: "Convert model files to another format",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := convertFlags.resolve(cmd)
		if err != nil {
			return err
		}
		files, err := collectFiles(args)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No model files found.")
			return nil
		}

		reg := metrics.NewRegistry()
		start := time.Now()
		results, err := convertAll(cmd.Context(), files, opts, cfg.Parallelism, func() *antimony.Session {
			return newSession(reg)
		})
		for _, r := range results {
			if r.Output != "" {
				fmt.Printf("✅ %s -> %s\n", r.Source, r.Output)
			}
		}
		if metricsPath != "" {
			if werr := reg.WriteTextfile(metricsPath); werr != nil {
				logger.Warn("failed to write metrics", "path", metricsPath, "error", werr)
			}
		}
		if err != nil {
			return err
		}
		fmt.Printf("🎉 Converted %d files in %v\n", len(files), time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func init() {
	convertFlags.register(convertCmd)
	convertCmd.Flags().StringVar(&metricsPath, "metrics", "", "Write Prometheus metrics in text format to this file")
}

// collectFiles expands directory arguments to the model files below them.
func collectFiles(args []string) ([]string, error) {
	c := crawler.NewCrawler()
	var files []string
	for _, arg := range args {
		err := c.ScanProject(arg, func(p string) error {
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
	}
	return files, nil
}

type conversion struct {
	Source string
	Output string
}

// convertAll converts files with at most parallelism sessions at a time.
// The first failure cancels the conversions that have not started yet.
func convertAll(ctx context.Context, files []string, opts convertOptions, parallelism int, session func() *antimony.Session) ([]conversion, error) {
	results := make([]conversion, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(parallelism, 1))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := convertFile(session(), file, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			results[i] = conversion{Source: file, Output: out}
			return nil
		})
	}
	err := g.Wait()
	return results, err
}

// convertFile loads src into s and writes it in opts.Format, returning the
// path written.
func convertFile(s *antimony.Session, src string, opts convertOptions) (string, error) {
	if _, err := s.LoadFile(src); err != nil {
		return "", err
	}
	if w := s.Warnings(); w != "" {
		logger.Warn("load warnings", "file", src, "warnings", w)
	}
	out, err := s.Render(opts.Format, opts.Module, opts.Flatten)
	if err != nil {
		return "", err
	}
	if opts.Format == antimony.FormatSBML {
		if w := s.SBMLWarnings(opts.Module); w != "" {
			logger.Debug("SBML warnings", "file", src, "warnings", w)
		}
	}
	dst, err := outputPath(src, opts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(dst, out, 0o644); err != nil {
		return "", err
	}
	return dst, nil
}

// outputPath places the output next to src, or in opts.OutDir, with the
// extension of the output format. It refuses to overwrite src.
func outputPath(src string, opts convertOptions) (string, error) {
	dir := opts.OutDir
	if dir == "" {
		dir = filepath.Dir(src)
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	if opts.Module != "" {
		base += "." + opts.Module
	}
	dst := filepath.Join(dir, base+codec.Extension(opts.Format))
	if filepath.Clean(dst) == filepath.Clean(src) {
		return "", fmt.Errorf("refusing to overwrite %s; pass --out", src)
	}
	return dst, nil
}
