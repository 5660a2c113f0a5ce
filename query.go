package antimony

import (
	"antimony/internal/diag"
	"antimony/internal/model"
	"antimony/internal/store"
)

func (s *Session) active() (*store.Document, error) {
	doc, ok := s.docs.Active()
	if !ok {
		return nil, s.fail(diag.NotFoundf("no document has been loaded"))
	}
	return doc, nil
}

// module returns the module as declared. An empty name selects the main
// module of the active document.
func (s *Session) module(name string) (*model.Module, error) {
	doc, err := s.active()
	if err != nil {
		return nil, err
	}
	m, err := doc.Module(name)
	if err != nil {
		return nil, s.fail(err)
	}
	return m, nil
}

// flat returns the flattened view of a module: its own symbols plus those
// of every submodule instance, prefixed by the instance path.
func (s *Session) flat(name string) (*model.Module, error) {
	doc, err := s.active()
	if err != nil {
		return nil, err
	}
	m, err := doc.Flat(name)
	if err != nil {
		return nil, s.fail(err)
	}
	return m, nil
}

// nth picks the n-th item or records an out of range error.
func nth[T any](s *Session, items []T, n int, what, module string) (T, error) {
	if n < 0 || n >= len(items) {
		var zero T
		return zero, s.fail(diag.NotFoundf("there is no %s number %d in module %q: only %d were found",
			what, n, module, len(items)))
	}
	return items[n], nil
}
