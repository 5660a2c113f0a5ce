// Package store keeps the documents produced by successful loads and the
// pointer to the active one.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"antimony/internal/builder"
	"antimony/internal/codec"
	"antimony/internal/graph"
	"antimony/internal/model"

	"github.com/google/uuid"
)

// Document is the immutable result of one load. Flattened views and
// stoichiometry matrices are computed on first use and cached.
type Document struct {
	Index       int
	ID          uuid.UUID
	Format      codec.Format
	Location    string
	Fingerprint string
	LoadedAt    time.Time
	Graph       *graph.Graph

	flat     map[string]*model.Module
	matrices map[string]*builder.Matrix
}

// NewDocument wraps a finalized graph. The index is assigned by Store.Add.
func NewDocument(g *graph.Graph, format codec.Format, location string, src []byte) *Document {
	return &Document{
		Index:       -1,
		ID:          uuid.New(),
		Format:      format,
		Location:    location,
		Fingerprint: Fingerprint(src),
		LoadedAt:    time.Now(),
		Graph:       g,
	}
}

// Fingerprint is the hex sha256 of src.
func Fingerprint(src []byte) string {
	sum := sha256.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// Derive returns a new snapshot holding g in place of d's graph. It keeps
// the index, format, location and fingerprint of d.
func (d *Document) Derive(g *graph.Graph) *Document {
	return &Document{
		Index:       d.Index,
		ID:          uuid.New(),
		Format:      d.Format,
		Location:    d.Location,
		Fingerprint: d.Fingerprint,
		LoadedAt:    time.Now(),
		Graph:       g,
	}
}

// Module returns the named module; "" names the main module.
func (d *Document) Module(name string) (*model.Module, error) {
	return d.Graph.Lookup(name)
}

// Flat returns the flattened view of the named module.
func (d *Document) Flat(name string) (*model.Module, error) {
	m, err := d.Graph.Lookup(name)
	if err != nil {
		return nil, err
	}
	if f, ok := d.flat[m.Name]; ok {
		return f, nil
	}
	f, err := d.Graph.Flatten(m.Name)
	if err != nil {
		return nil, err
	}
	if d.flat == nil {
		d.flat = make(map[string]*model.Module)
	}
	d.flat[m.Name] = f
	return f, nil
}

// Matrix returns the stoichiometry matrix of the named module's flattened
// view.
func (d *Document) Matrix(name string) (*builder.Matrix, error) {
	f, err := d.Flat(name)
	if err != nil {
		return nil, err
	}
	if mx, ok := d.matrices[f.Name]; ok {
		return mx, nil
	}
	mx := builder.StoichiometryMatrix(f)
	if d.matrices == nil {
		d.matrices = make(map[string]*builder.Matrix)
	}
	d.matrices[f.Name] = mx
	return mx, nil
}

// Store is an append-only list of documents with one active entry. It is
// not safe for concurrent use.
type Store struct {
	docs   []*Document
	active int
}

func New() *Store {
	return &Store{active: -1}
}

// Add appends doc, makes it active and returns its index.
func (s *Store) Add(doc *Document) int {
	doc.Index = len(s.docs)
	s.docs = append(s.docs, doc)
	s.active = doc.Index
	return doc.Index
}

// Active returns the active document.
func (s *Store) Active() (*Document, bool) {
	if s.active < 0 {
		return nil, false
	}
	return s.docs[s.active], true
}

// Get returns the document at index.
func (s *Store) Get(index int) (*Document, bool) {
	if index < 0 || index >= len(s.docs) {
		return nil, false
	}
	return s.docs[index], true
}

// RevertTo makes the document at index active. Unknown indices leave the
// store unchanged and return false.
func (s *Store) RevertTo(index int) bool {
	if index < 0 || index >= len(s.docs) {
		return false
	}
	s.active = index
	return true
}

// Replace swaps the document at index for doc.
func (s *Store) Replace(index int, doc *Document) bool {
	if index < 0 || index >= len(s.docs) {
		return false
	}
	doc.Index = index
	s.docs[index] = doc
	return true
}

// Clear drops every document; the next Add returns index 0.
func (s *Store) Clear() {
	s.docs = nil
	s.active = -1
}

func (s *Store) Count() int { return len(s.docs) }

// Documents returns the stored documents in index order.
func (s *Store) Documents() []*Document {
	return append([]*Document(nil), s.docs...)
}
