package diag

import "strings"

// Report collects informational messages and warnings produced by a codec,
// keyed by module name. Codecs write into it; the Sink reads from it.
type Report struct {
	Info     map[string][]string
	Warnings map[string][]string
	// Load holds warnings that are not tied to one module, such as skipped
	// unit statements.
	Load []string
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{
		Info:     make(map[string][]string),
		Warnings: make(map[string][]string),
	}
}

// Infof appends an info message for module.
func (r *Report) Infof(module, msg string) {
	if r == nil {
		return
	}
	r.Info[module] = append(r.Info[module], msg)
}

// Warnf appends a warning for module.
func (r *Report) Warnf(module, msg string) {
	if r == nil {
		return
	}
	r.Warnings[module] = append(r.Warnings[module], msg)
}

// LoadWarning appends a module-independent warning.
func (r *Report) LoadWarning(msg string) {
	if r == nil {
		return
	}
	r.Load = append(r.Load, msg)
}

// Sink is the per-session diagnostics channel.
//
// The last error is overwritten by every failing call. Warnings are cleared
// at the start of every load. SBML info and warnings are kept per module and
// cleared each time that module is rendered to SBML.
type Sink struct {
	lastError string
	warnings  []string
	sbmlInfo  map[string][]string
	sbmlWarn  map[string][]string
}

func NewSink() *Sink {
	return &Sink{
		sbmlInfo: make(map[string][]string),
		sbmlWarn: make(map[string][]string),
	}
}

// Fail stores err as the last error and returns it unchanged.
func (s *Sink) Fail(err error) error {
	if err != nil {
		s.lastError = err.Error()
	}
	return err
}

func (s *Sink) LastError() string { return s.lastError }

// BeginLoad clears the warnings of the previous load.
func (s *Sink) BeginLoad() {
	s.warnings = nil
}

func (s *Sink) Warn(msg string) {
	s.warnings = append(s.warnings, msg)
}

// Warnings returns the accumulated load warnings joined by newlines.
func (s *Sink) Warnings() string {
	return strings.Join(s.warnings, "\n")
}

// AbsorbLoad copies load-time warnings of a codec report into the sink.
func (s *Sink) AbsorbLoad(r *Report) {
	if r == nil {
		return
	}
	s.warnings = append(s.warnings, r.Load...)
	for _, msgs := range r.Warnings {
		s.warnings = append(s.warnings, msgs...)
	}
}

// BeginSBML clears the SBML channels of module ahead of a render.
func (s *Sink) BeginSBML(module string) {
	delete(s.sbmlInfo, module)
	delete(s.sbmlWarn, module)
}

// AbsorbSBML records the messages an SBML render produced for module.
func (s *Sink) AbsorbSBML(module string, r *Report) {
	if r == nil {
		return
	}
	for _, msgs := range r.Info {
		s.sbmlInfo[module] = append(s.sbmlInfo[module], msgs...)
	}
	for _, msgs := range r.Warnings {
		s.sbmlWarn[module] = append(s.sbmlWarn[module], msgs...)
	}
}

// SBMLWarn records a single SBML warning for module.
func (s *Sink) SBMLWarn(module, msg string) {
	s.sbmlWarn[module] = append(s.sbmlWarn[module], msg)
}

func (s *Sink) SBMLInfo(module string) string {
	return strings.Join(s.sbmlInfo[module], "\n")
}

func (s *Sink) SBMLWarnings(module string) string {
	return strings.Join(s.sbmlWarn[module], "\n")
}
