// Package codec defines the contract shared by the Antimony, SBML and
// CellML readers and writers, and a registry the concrete codecs add
// themselves to from their init functions.
package codec

import (
	"bytes"
	"sort"
	"strings"
	"sync"

	"antimony/internal/diag"
	"antimony/internal/graph"
)

// Format names one input/output representation.
type Format string

const (
	FormatAntimony Format = "antimony"
	FormatSBML     Format = "sbml"
	FormatCellML   Format = "cellml"
)

// Precedence is the order untyped loads try codecs in.
var Precedence = []Format{FormatSBML, FormatAntimony, FormatCellML}

// ImportFunc fetches the document named by ref, relative to the location of
// the document that imports it. It returns the content and the resolved
// location.
type ImportFunc func(ref, from string) ([]byte, string, error)

// ParseOptions configures one parse.
type ParseOptions struct {
	// Location is the file the source came from, if any. Relative imports
	// resolve against its directory.
	Location                 string
	BareNumbersDimensionless bool
	Import                   ImportFunc
	Report                   *diag.Report
}

// RenderOptions configures one render.
type RenderOptions struct {
	Flatten                  bool
	BareNumbersDimensionless bool
	Report                   *diag.Report
}

// Codec converts between a serialized format and a module graph.
//
// Parse returns an unfinalized graph: identities and submodule arguments are
// recorded but not yet resolved into replacement pairs. Render expects a
// finalized graph.
type Codec interface {
	Format() Format
	Parse(src []byte, opts ParseOptions) (*graph.Graph, error)
	Render(g *graph.Graph, root string, opts RenderOptions) ([]byte, error)
}

var (
	mu     sync.RWMutex
	codecs = make(map[Format]Codec)
)

// Register makes c available under its format. Registering a format twice
// panics.
func Register(c Codec) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := codecs[c.Format()]; dup {
		panic("codec: Register called twice for " + string(c.Format()))
	}
	codecs[c.Format()] = c
}

// Get returns the codec for f or an unsupported error when f is unknown or
// was excluded from the build.
func Get(f Format) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	if c, ok := codecs[f]; ok {
		return c, nil
	}
	return nil, diag.Unsupportedf("%s support is not available in this build", f)
}

// Available lists the registered formats in sorted order.
func Available() []Format {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Format, 0, len(codecs))
	for f := range codecs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "antimony", "sb", "txt":
		return FormatAntimony, nil
	case "sbml", "xml":
		return FormatSBML, nil
	case "cellml":
		return FormatCellML, nil
	}
	return "", diag.Unsupportedf("unknown format %q", name)
}

// Extension is the conventional file extension for f.
func Extension(f Format) string {
	switch f {
	case FormatSBML:
		return ".xml"
	case FormatCellML:
		return ".cellml"
	}
	return ".txt"
}

// Sniff guesses the format of src from its first element. Anything that does
// not look like XML is treated as Antimony.
func Sniff(src []byte) Format {
	trimmed := bytes.TrimSpace(src)
	trimmed = bytes.TrimPrefix(trimmed, []byte("\xef\xbb\xbf"))
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return FormatAntimony
	}
	name, attrs := rootElement(trimmed)
	switch {
	case name == "sbml":
		return FormatSBML
	case name == "model" && strings.Contains(attrs, "cellml"):
		return FormatCellML
	}
	return FormatAntimony
}

// rootElement returns the local name of the first element tag of an XML
// document and the raw text of its attributes. It skips the prolog,
// comments and processing instructions.
func rootElement(doc []byte) (string, string) {
	s := string(doc)
	for {
		i := strings.IndexByte(s, '<')
		if i < 0 || i+1 >= len(s) {
			return "", ""
		}
		s = s[i+1:]
		switch {
		case strings.HasPrefix(s, "?"):
			s = skipPast(s, "?>")
			continue
		case strings.HasPrefix(s, "!--"):
			s = skipPast(s, "-->")
			continue
		case strings.HasPrefix(s, "!"):
			s = skipPast(s, ">")
			continue
		}
		end := strings.IndexByte(s, '>')
		if end < 0 {
			end = len(s)
		}
		tag := s[:end]
		name := tag
		rest := ""
		if j := strings.IndexAny(tag, " \t\r\n/"); j >= 0 {
			name, rest = tag[:j], tag[j:]
		}
		if k := strings.IndexByte(name, ':'); k >= 0 {
			name = name[k+1:]
		}
		return name, rest
	}
}

func skipPast(s, marker string) string {
	if i := strings.Index(s, marker); i >= 0 {
		return s[i+len(marker):]
	}
	return ""
}

// Order returns the codecs an untyped load of src should try: the sniffed
// format first, then the rest of Precedence. Formats missing from the build
// are skipped.
func Order(src []byte) []Codec {
	first := Sniff(src)
	formats := []Format{first}
	for _, f := range Precedence {
		if f != first {
			formats = append(formats, f)
		}
	}
	var out []Codec
	for _, f := range formats {
		if c, err := Get(f); err == nil {
			out = append(out, c)
		}
	}
	return out
}
