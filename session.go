// Package antimony loads biochemical network models written in Antimony,
// SBML or CellML into one semantic model, answers structural queries about
// it and writes it back out in any of the three formats.
//
// A Session holds the loaded documents, the active one, the import search
// directories and the diagnostics of the last calls. It is not safe for
// concurrent use; use one Session per goroutine.
package antimony

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"antimony/internal/codec"
	_ "antimony/internal/codec/antimony"
	"antimony/internal/crawler"
	"antimony/internal/diag"
	"antimony/internal/graph"
	"antimony/internal/metrics"
	"antimony/internal/resolver"
	"antimony/internal/store"
)

type Session struct {
	docs    *store.Store
	sink    *diag.Sink
	search  *crawler.Crawler
	logger  *slog.Logger
	metrics *metrics.Registry

	bareNumbersDimensionless bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger routes the session's debug and warning logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records load, render and query outcomes in r. Several
// sessions may share one registry.
func WithMetrics(r *metrics.Registry) Option {
	return func(s *Session) { s.metrics = r }
}

// WithDirectories seeds the import search directories.
func WithDirectories(dirs ...string) Option {
	return func(s *Session) {
		for _, d := range dirs {
			s.search.AddDirectory(d)
		}
	}
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		docs:   store.New(),
		sink:   diag.NewSink(),
		search: crawler.NewCrawler(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// fail records err as the last error and counts it.
func (s *Session) fail(err error) error {
	if err == nil {
		return nil
	}
	s.sink.Fail(err)
	s.metrics.RecordQueryError(diag.KindName(err))
	return err
}

// LoadString loads src in whatever format it is written in. The sniffed
// format is tried first, then the others in the order SBML, Antimony,
// CellML. When every format fails the Antimony error is returned.
func (s *Session) LoadString(src string) (int, error) {
	return s.loadAny([]byte(src), "")
}

// LoadFile reads path and loads it like LoadString. Relative imports
// resolve against the directory of path.
func (s *Session) LoadFile(path string) (int, error) {
	s.sink.BeginLoad()
	src, err := os.ReadFile(path)
	if err != nil {
		return -1, s.fail(diag.Loadf("could not read %s: %v", path, err))
	}
	return s.loadAny(src, path)
}

func (s *Session) LoadAntimonyString(src string) (int, error) {
	return s.loadAs(codec.FormatAntimony, []byte(src), "")
}

func (s *Session) LoadAntimonyFile(path string) (int, error) {
	return s.loadFileAs(codec.FormatAntimony, path)
}

func (s *Session) LoadSBMLString(src string) (int, error) {
	return s.loadAs(codec.FormatSBML, []byte(src), "")
}

// LoadSBMLStringWithLocation is LoadSBMLString with the location the
// document came from, used to resolve relative references.
func (s *Session) LoadSBMLStringWithLocation(src, location string) (int, error) {
	return s.loadAs(codec.FormatSBML, []byte(src), location)
}

func (s *Session) LoadSBMLFile(path string) (int, error) {
	return s.loadFileAs(codec.FormatSBML, path)
}

func (s *Session) LoadCellMLString(src string) (int, error) {
	return s.loadAs(codec.FormatCellML, []byte(src), "")
}

func (s *Session) LoadCellMLFile(path string) (int, error) {
	return s.loadFileAs(codec.FormatCellML, path)
}

func (s *Session) loadFileAs(f codec.Format, path string) (int, error) {
	s.sink.BeginLoad()
	src, err := os.ReadFile(path)
	if err != nil {
		return -1, s.fail(diag.Loadf("could not read %s: %v", path, err))
	}
	return s.loadAs(f, src, path)
}

func (s *Session) loadAs(f codec.Format, src []byte, location string) (int, error) {
	s.sink.BeginLoad()
	c, err := codec.Get(f)
	if err != nil {
		return -1, s.fail(err)
	}
	doc, err := s.parse(c, src, location)
	if err != nil {
		s.logger.Warn("load failed", "format", f, "location", location, "error", err)
		return -1, s.fail(err)
	}
	return s.commit(doc), nil
}

func (s *Session) loadAny(src []byte, location string) (int, error) {
	s.sink.BeginLoad()
	var antimonyErr, firstErr error
	for _, c := range codec.Order(src) {
		doc, err := s.parse(c, src, location)
		if err == nil {
			return s.commit(doc), nil
		}
		s.logger.Debug("codec rejected input, trying the next one", "format", c.Format(), "error", err)
		if c.Format() == codec.FormatAntimony {
			antimonyErr = err
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	err := antimonyErr
	if err == nil {
		err = firstErr
	}
	if err == nil {
		err = diag.Unsupportedf("no input formats are available in this build")
	}
	s.logger.Warn("load failed", "location", location, "error", err)
	return -1, s.fail(err)
}

// parse runs one codec and the resolver chain. Warnings are kept only when
// the attempt succeeds.
func (s *Session) parse(c codec.Codec, src []byte, location string) (*store.Document, error) {
	start := time.Now()
	report := diag.NewReport()
	g, err := c.Parse(src, codec.ParseOptions{
		Location:                 location,
		BareNumbersDimensionless: s.bareNumbersDimensionless,
		Import:                   s.search.Import,
		Report:                   report,
	})
	if err == nil {
		err = s.finalize(g)
	}
	s.metrics.RecordLoad(string(c.Format()), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	s.sink.AbsorbLoad(report)
	s.logger.Debug("loaded document", "format", c.Format(), "location", location,
		"modules", g.Len(), "main", g.Main(), "elapsed", time.Since(start))
	return store.NewDocument(g, c.Format(), location, src), nil
}

func (s *Session) finalize(g *graph.Graph) error {
	results, err := resolver.Finalize(g)
	for _, r := range results {
		s.logger.Debug("resolver stage", "stage", r.Resolver, "resolved", r.Stats.Resolved,
			"skipped", r.Stats.Skipped, "unresolved", r.UnresolvedAfter)
	}
	if len(g.Unresolved) > 0 {
		s.logger.Warn("unresolved references", slog.Group("reasons", g.UnresolvedAttrs()...))
	}
	return err
}

func (s *Session) commit(doc *store.Document) int {
	idx := s.docs.Add(doc)
	s.metrics.SetDocuments(s.docs.Count())
	return idx
}

// NumFiles is the number of documents loaded since the last clear.
func (s *Session) NumFiles() int { return s.docs.Count() }

// RevertTo makes the document returned by an earlier load active again.
// Negative or unknown indices return false and change nothing.
func (s *Session) RevertTo(index int) bool {
	return s.docs.RevertTo(index)
}

// ClearPreviousLoads forgets every document. The next load returns 0.
func (s *Session) ClearPreviousLoads() {
	s.docs.Clear()
	s.metrics.SetDocuments(0)
}

// AddDirectory adds a directory searched for imported files.
func (s *Session) AddDirectory(dir string) { s.search.AddDirectory(dir) }

func (s *Session) ClearDirectories() { s.search.ClearDirectories() }

// SetBareNumbersAreDimensionless affects every later load and the SBML
// output of documents loaded afterwards.
func (s *Session) SetBareNumbersAreDimensionless(v bool) {
	s.bareNumbersDimensionless = v
}

func (s *Session) LastError() string { return s.sink.LastError() }

// Warnings returns the warnings of the most recent load, one per line.
func (s *Session) Warnings() string { return s.sink.Warnings() }

// SBMLInfoMessages returns the info messages of the last SBML render of
// module.
func (s *Session) SBMLInfoMessages(module string) string {
	return s.sink.SBMLInfo(s.moduleKey(module))
}

func (s *Session) SBMLWarnings(module string) string {
	return s.sink.SBMLWarnings(s.moduleKey(module))
}

// moduleKey resolves "" to the name of the active main module.
func (s *Session) moduleKey(module string) string {
	if module != "" {
		return module
	}
	if doc, ok := s.docs.Active(); ok {
		return doc.Graph.Main()
	}
	return module
}

func (s *Session) String() string {
	return fmt.Sprintf("antimony.Session(%d documents)", s.docs.Count())
}
