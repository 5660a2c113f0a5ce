package antimony

import (
	"fmt"
	"strconv"

	"antimony/internal/codec"
	"antimony/internal/diag"
	"antimony/internal/expr"
	"antimony/internal/graph"
	"antimony/internal/lexer"
	"antimony/internal/model"
)

var declSorts = map[string]model.Sort{
	"species":     model.SortSpecies,
	"compartment": model.SortCompartment,
	"formula":     model.SortFormula,
	"operator":    model.SortOperator,
	"DNA":         model.SortOperator,
	"gene":        model.SortGene,
}

var eventFlags = map[string]bool{
	"t0":          true,
	"priority":    true,
	"persistent":  true,
	"fromTrigger": true,
}

// shared is the state common to a document and everything it imports.
type shared struct {
	g        *graph.Graph
	main     *model.Module
	opts     codec.ParseOptions
	visited  map[string]bool
	counters map[string]int
}

type parser struct {
	*shared
	toks     []lexer.Token
	pos      int
	cur      *model.Module
	location string
}

func parse(src []byte, opts codec.ParseOptions) (*graph.Graph, error) {
	main := model.NewModule(model.MainModuleName)
	main.BareNumbersDimensionless = opts.BareNumbersDimensionless
	sh := &shared{
		g:        graph.NewGraph(),
		main:     main,
		opts:     opts,
		visited:  make(map[string]bool),
		counters: make(map[string]int),
	}
	if opts.Location != "" {
		sh.visited[opts.Location] = true
	}
	if err := sh.run(string(src), opts.Location); err != nil {
		return nil, err
	}
	if !main.IsEmpty() || sh.g.Len() == 0 {
		closeModule(main)
		if err := sh.g.AddModule(main); err != nil {
			return nil, err
		}
	}
	return sh.g, nil
}

func (sh *shared) run(src, location string) error {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return diag.Loadf("%s", err)
	}
	p := &parser{shared: sh, toks: toks, cur: sh.main, location: location}
	for {
		p.skipSeparators()
		if p.peek().Type == lexer.TokenEOF {
			break
		}
		if err := p.statement(); err != nil {
			return err
		}
	}
	if p.cur != p.main {
		return diag.Loadf("module %q is missing its 'end'", p.cur.Name)
	}
	return nil
}

func (p *parser) peek() lexer.Token { return p.peekN(0) }

func (p *parser) peekN(n int) lexer.Token {
	if p.pos+n >= len(p.toks) {
		return lexer.Token{Type: lexer.TokenEOF, Pos: -1}
	}
	return p.toks[p.pos+n]
}

func (p *parser) advance() lexer.Token {
	tok := p.peek()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *parser) errorf(tok lexer.Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if tok.Type == lexer.TokenEOF {
		return diag.Loadf("%s at end of input", msg)
	}
	return diag.Loadf("line %d, column %d: %s", tok.Line, tok.Column, msg)
}

func (p *parser) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.errorf(tok, "expected %s but found %s", what, tok)
	}
	return p.advance(), nil
}

func (p *parser) ident(what string) (string, error) {
	tok, err := p.expect(lexer.TokenIdent, what)
	return tok.Value, err
}

func isTerminator(t lexer.TokenType) bool {
	return t == lexer.TokenNewline || t == lexer.TokenSemicolon || t == lexer.TokenEOF
}

func (p *parser) skipSeparators() {
	for t := p.peek().Type; t == lexer.TokenNewline || t == lexer.TokenSemicolon; t = p.peek().Type {
		p.advance()
	}
}

// endStatement requires the statement to stop here.
func (p *parser) endStatement() error {
	tok := p.peek()
	if !isTerminator(tok.Type) {
		return p.errorf(tok, "unexpected %s", tok)
	}
	if tok.Type != lexer.TokenEOF {
		p.advance()
	}
	return nil
}

func (p *parser) skipStatement() {
	for !isTerminator(p.peek().Type) {
		p.advance()
	}
}

// expression parses one infix expression, registers the plain names it
// references and returns its canonical text.
func (p *parser) expression() (string, error) {
	start := p.peek()
	n, pos, err := expr.ParseTokens(p.toks, p.pos)
	if err != nil {
		return "", p.errorf(start, "%v", err)
	}
	p.pos = pos
	for _, name := range expr.Names(n) {
		p.reference(name)
	}
	return expr.Format(n), nil
}

// reference registers name as a symbol of the current module unless it
// points into a submodule.
func (p *parser) reference(name string) *model.Symbol {
	if scope, _ := model.SplitPath(name); scope != "" {
		return nil
	}
	return p.cur.AddSymbol(name)
}

func (p *parser) unique(prefix string) string {
	key := p.cur.Name + "\x00" + prefix
	for i := p.counters[key]; ; i++ {
		name := prefix + strconv.Itoa(i)
		if !p.cur.HasSymbol(name) {
			p.counters[key] = i + 1
			return name
		}
	}
}

func (p *parser) statement() error {
	tok := p.peek()
	next := p.peekN(1)
	switch tok.Type {
	case lexer.TokenDollar, lexer.TokenNumber, lexer.TokenArrow, lexer.TokenTransform, lexer.TokenDashDash:
		return p.body("")
	case lexer.TokenIdent:
	default:
		return p.errorf(tok, "unexpected %s", tok)
	}

	switch tok.Value {
	case "model", "module":
		if next.Type == lexer.TokenIdent || next.Type == lexer.TokenStar {
			return p.moduleHeader()
		}
	case "end":
		if isTerminator(next.Type) {
			return p.moduleEnd()
		}
	case "function":
		if next.Type == lexer.TokenIdent {
			return p.errorf(tok, "function definitions are not supported")
		}
	case "unit":
		if next.Type == lexer.TokenIdent {
			p.opts.Report.LoadWarning(fmt.Sprintf("line %d: unit definitions are not supported and were ignored", tok.Line))
			p.skipStatement()
			return p.endStatement()
		}
	case "import":
		if next.Type == lexer.TokenString {
			return p.importFile()
		}
	case "delete":
		if next.Type == lexer.TokenIdent {
			return p.deletion()
		}
	case "at":
		switch next.Type {
		case lexer.TokenAssign, lexer.TokenDefine, lexer.TokenColon, lexer.TokenPrime:
		default:
			return p.event("")
		}
	}
	if isDeclKeyword(tok.Value) && (next.Type == lexer.TokenIdent || next.Type == lexer.TokenDollar) {
		return p.declaration()
	}

	switch next.Type {
	case lexer.TokenColon:
		return p.labeled()
	case lexer.TokenAssign:
		return p.valueRule(model.FormulaInitial)
	case lexer.TokenDefine:
		return p.valueRule(model.FormulaAssignment)
	case lexer.TokenPrime:
		return p.valueRule(model.FormulaRate)
	case lexer.TokenIdent:
		switch next.Value {
		case "is":
			return p.identity()
		case "in":
			return p.placement()
		}
	}
	return p.body("")
}

func isDeclKeyword(word string) bool {
	if _, ok := declSorts[word]; ok {
		return true
	}
	return word == "const" || word == "var" || word == "substanceOnly"
}

func (p *parser) moduleHeader() error {
	kw := p.advance()
	if p.cur != p.main {
		return p.errorf(kw, "module definitions cannot be nested inside %q", p.cur.Name)
	}
	starred := false
	if p.peek().Type == lexer.TokenStar {
		p.advance()
		starred = true
	}
	nameTok := p.peek()
	name, err := p.ident("module name")
	if err != nil {
		return err
	}
	if _, exists := p.g.Module(name); exists {
		return p.errorf(nameTok, "module %q is defined more than once", name)
	}
	m := model.NewModule(name)
	m.Main = starred
	m.BareNumbersDimensionless = p.opts.BareNumbersDimensionless
	p.cur = m

	if p.peek().Type == lexer.TokenLParen {
		p.advance()
		for p.peek().Type != lexer.TokenRParen {
			arg, err := p.ident("interface symbol")
			if err != nil {
				return err
			}
			m.Interface = append(m.Interface, arg)
			m.AddSymbol(arg)
			if p.peek().Type != lexer.TokenComma {
				break
			}
			p.advance()
		}
		if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
			return err
		}
	}
	if p.peek().Type == lexer.TokenColon {
		p.advance()
	}
	if isTerminator(p.peek().Type) {
		return p.endStatement()
	}
	// The first statement may share the header line.
	return nil
}

func (p *parser) moduleEnd() error {
	tok := p.advance()
	if p.cur == p.main {
		return p.errorf(tok, "'end' without a module definition")
	}
	closeModule(p.cur)
	if err := p.g.AddModule(p.cur); err != nil {
		return err
	}
	p.cur = p.main
	return p.endStatement()
}

// closeModule settles sorts that depend on the whole module body: names
// that received a value or a const marker without being declared become
// formulas.
func closeModule(m *model.Module) {
	for _, s := range m.Symbols() {
		if s.Sort != model.SortUnknown {
			continue
		}
		if s.Initial != "" || s.Assignment != "" || s.Rate != "" || s.Const != model.ConstUnset {
			s.Sort = model.SortFormula
		}
	}
}

func (p *parser) importFile() error {
	kw := p.advance()
	ref := p.advance().Value
	if p.cur != p.main {
		return p.errorf(kw, "import is only allowed outside module definitions")
	}
	if p.opts.Import == nil {
		return p.errorf(kw, "cannot import %q: no search paths available", ref)
	}
	content, location, err := p.opts.Import(ref, p.location)
	if err != nil {
		return p.errorf(kw, "cannot import %q: %v", ref, err)
	}
	if err := p.endStatement(); err != nil {
		return err
	}
	if p.visited[location] {
		return nil
	}
	p.visited[location] = true
	if err := p.shared.run(string(content), location); err != nil {
		return fmt.Errorf("in import %q: %w", ref, err)
	}
	return nil
}

func (p *parser) deletion() error {
	p.advance()
	for {
		name, err := p.ident("name to delete")
		if err != nil {
			return err
		}
		p.cur.Deletions = append(p.cur.Deletions, name)
		if p.peek().Type != lexer.TokenComma {
			break
		}
		p.advance()
	}
	return p.endStatement()
}

func (p *parser) declaration() error {
	sort := model.SortUnknown
	constness := model.ConstUnset
	for {
		tok := p.peek()
		if tok.Type != lexer.TokenIdent || !isDeclKeyword(tok.Value) {
			break
		}
		next := p.peekN(1)
		if next.Type != lexer.TokenIdent && next.Type != lexer.TokenDollar {
			break
		}
		p.advance()
		switch tok.Value {
		case "const":
			constness = model.ConstYes
		case "var":
			constness = model.ConstNo
		case "substanceOnly":
		default:
			sort = declSorts[tok.Value]
		}
	}

	for {
		boundary := false
		if p.peek().Type == lexer.TokenDollar {
			p.advance()
			boundary = true
		}
		tok := p.peek()
		name, err := p.ident("symbol name")
		if err != nil {
			return err
		}
		if scope, _ := model.SplitPath(name); scope != "" {
			return p.errorf(tok, "cannot declare submodule symbol %q", name)
		}
		s := p.cur.AddSymbol(name)
		want := sort
		if want == model.SortUnknown && boundary {
			want = model.SortSpecies
		}
		if err := retype(s, want); err != nil {
			return p.errorf(tok, "%v", err)
		}
		if constness != model.ConstUnset {
			s.Const = constness
		}
		if boundary {
			s.Boundary = true
		}
		if p.peek().Type == lexer.TokenIdent && p.peek().Value == "in" {
			p.advance()
			if err := p.placeIn(s); err != nil {
				return err
			}
		}
		if p.peek().Type == lexer.TokenAssign {
			p.advance()
			if s.Initial, err = p.expression(); err != nil {
				return err
			}
		}
		if p.peek().Type != lexer.TokenComma {
			break
		}
		p.advance()
	}
	return p.endStatement()
}

// retype applies a declared sort. Undeclared names take any sort, formulas
// may be refined into species, compartments or operators, and any other
// change is a conflict.
func retype(s *model.Symbol, sort model.Sort) error {
	switch {
	case sort == model.SortUnknown || s.Sort == sort:
	case s.Sort == model.SortUnknown:
		s.Sort = sort
	case s.Sort == model.SortFormula && (sort == model.SortSpecies || sort == model.SortCompartment || sort == model.SortOperator):
		s.Sort = sort
	default:
		return fmt.Errorf("%q is already a %s and cannot be redeclared as a %s", s.Name, s.Sort, sort)
	}
	return nil
}

func (p *parser) placeIn(s *model.Symbol) error {
	tok := p.peek()
	comp, err := p.ident("compartment name")
	if err != nil {
		return err
	}
	if c := p.reference(comp); c != nil {
		if err := retype(c, model.SortCompartment); err != nil {
			return p.errorf(tok, "%v", err)
		}
	}
	s.Compartment = comp
	return nil
}

func (p *parser) placement() error {
	tok := p.peek()
	name, _ := p.ident("symbol name")
	s := p.reference(name)
	if s == nil {
		return p.errorf(tok, "cannot move submodule symbol %q", name)
	}
	p.advance() // in
	if err := p.placeIn(s); err != nil {
		return err
	}
	return p.endStatement()
}

func (p *parser) valueRule(kind model.FormulaKind) error {
	tok := p.peek()
	name, _ := p.ident("symbol name")
	s := p.reference(name)
	if s == nil {
		return p.errorf(tok, "cannot set submodule symbol %q from its parent", name)
	}
	if kind == model.FormulaRate {
		p.advance() // '
		if _, err := p.expect(lexer.TokenAssign, "'='"); err != nil {
			return err
		}
	} else {
		p.advance()
	}
	switch s.Sort {
	case model.SortReaction, model.SortGene, model.SortEvent, model.SortInteraction, model.SortModule, model.SortStrand:
		return p.errorf(tok, "cannot assign a value to %s %q", s.Sort, name)
	}
	text, err := p.expression()
	if err != nil {
		return err
	}
	switch kind {
	case model.FormulaInitial:
		s.Initial = text
	case model.FormulaAssignment:
		s.Assignment = text
	case model.FormulaRate:
		s.Rate = text
	}
	return p.endStatement()
}

func (p *parser) identity() error {
	former, _ := p.ident("symbol name")
	p.advance() // is
	if p.peek().Type == lexer.TokenString {
		s := p.reference(former)
		tok := p.advance()
		if s == nil {
			return p.errorf(tok, "cannot rename submodule symbol %q", former)
		}
		s.DisplayName = tok.Value
		return p.endStatement()
	}
	replacement, err := p.ident("replacement name")
	if err != nil {
		return err
	}
	p.reference(former)
	p.reference(replacement)
	p.cur.Identities = append(p.cur.Identities, model.Identity{Former: former, Replacement: replacement})
	return p.endStatement()
}

// labeled handles `name: ...` statements: events, submodule instances and
// named reactions, interactions or strands.
func (p *parser) labeled() error {
	tok := p.peek()
	name, _ := p.ident("label")
	p.advance() // :
	if scope, _ := model.SplitPath(name); scope != "" {
		return p.errorf(tok, "label %q cannot contain '.'", name)
	}
	next := p.peek()
	if next.Type == lexer.TokenIdent && next.Value == "at" && p.peekN(1).Type != lexer.TokenAssign {
		return p.event(name)
	}
	if next.Type == lexer.TokenIdent && p.peekN(1).Type == lexer.TokenLParen {
		return p.submodule(name)
	}
	return p.body(name)
}

func (p *parser) claim(name string, sort model.Sort, tok lexer.Token) (*model.Symbol, error) {
	s := p.cur.AddSymbol(name)
	if s.Sort != model.SortUnknown {
		return nil, p.errorf(tok, "%q is already defined as a %s", name, s.Sort)
	}
	s.Sort = sort
	return s, nil
}

func (p *parser) submodule(name string) error {
	tok := p.peek()
	s, err := p.claim(name, model.SortModule, tok)
	if err != nil {
		return err
	}
	target, _ := p.ident("module name")
	p.advance() // (
	sub := &model.Submodule{Name: name, Module: target}
	for p.peek().Type != lexer.TokenRParen {
		arg, err := p.ident("argument name")
		if err != nil {
			return err
		}
		p.reference(arg)
		sub.Args = append(sub.Args, arg)
		if p.peek().Type != lexer.TokenComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(lexer.TokenRParen, "')'"); err != nil {
		return err
	}
	if p.peek().Type == lexer.TokenIdent && p.peek().Value == "in" {
		p.advance()
		if err := p.placeIn(s); err != nil {
			return err
		}
		sub.Compartment = s.Compartment
	}
	p.cur.Submodules = append(p.cur.Submodules, sub)
	return p.endStatement()
}

func (p *parser) event(name string) error {
	at := p.advance()
	if name == "" {
		name = p.unique("_E")
	}
	s, err := p.claim(name, model.SortEvent, at)
	if err != nil {
		return err
	}
	ev := model.NewEvent(name)

	first, err := p.expression()
	if err != nil {
		return err
	}
	if tok := p.peek(); tok.Type == lexer.TokenIdent && tok.Value == "after" {
		p.advance()
		ev.Delay = first
		if ev.Trigger, err = p.expression(); err != nil {
			return err
		}
	} else {
		ev.Trigger = first
	}

	for p.peek().Type == lexer.TokenComma {
		p.advance()
		keyTok := p.peek()
		key, err := p.ident("event option")
		if err != nil {
			return err
		}
		if !eventFlags[key] {
			return p.errorf(keyTok, "unknown event option %q", key)
		}
		if _, err := p.expect(lexer.TokenAssign, "'='"); err != nil {
			return err
		}
		value, err := p.expression()
		if err != nil {
			return err
		}
		if key == "priority" {
			ev.Priority = value
			continue
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return p.errorf(keyTok, "event option %q needs true or false, not %q", key, value)
		}
		switch key {
		case "t0":
			ev.T0 = b
		case "persistent":
			ev.Persistent = b
		case "fromTrigger":
			ev.FromTrigger = b
		}
	}

	if _, err := p.expect(lexer.TokenColon, "':' before event assignments"); err != nil {
		return err
	}
	for {
		variable, err := p.ident("assignment target")
		if err != nil {
			return err
		}
		p.reference(variable)
		if _, err := p.expect(lexer.TokenAssign, "'='"); err != nil {
			return err
		}
		formula, err := p.expression()
		if err != nil {
			return err
		}
		ev.Assignments = append(ev.Assignments, model.EventAssignment{Variable: variable, Formula: formula})
		if p.peek().Type != lexer.TokenComma {
			break
		}
		p.advance()
	}
	s.Main = ev.Trigger
	p.cur.Events = append(p.cur.Events, ev)
	return p.endStatement()
}

// body parses reactions, interactions and strands.
func (p *parser) body(name string) error {
	tok := p.peek()
	if tok.Type == lexer.TokenDashDash || (tok.Type == lexer.TokenIdent && p.peekN(1).Type == lexer.TokenDashDash) {
		return p.strand(name)
	}

	lhs, err := p.participants(true)
	if err != nil {
		return err
	}
	arrow := p.peek()
	switch arrow.Type {
	case lexer.TokenArrow, lexer.TokenTransform:
		p.advance()
		return p.reaction(name, lhs, arrow)
	case lexer.TokenInhibits:
		p.advance()
		return p.interaction(name, lhs, model.DividerInhibits, arrow)
	case lexer.TokenMinus:
		next := p.peekN(1)
		if lexer.Adjacent(arrow, next) {
			if next.Type == lexer.TokenIdent && next.Value == "o" {
				p.pos += 2
				return p.interaction(name, lhs, model.DividerActivates, arrow)
			}
			if next.Type == lexer.TokenLParen {
				p.pos += 2
				return p.interaction(name, lhs, model.DividerInfluences, arrow)
			}
		}
	}
	return p.errorf(arrow, "unexpected %s", arrow)
}

type side struct {
	participants []model.Participant
	boundary     map[string]bool
}

func (p *parser) participants(allowStoich bool) (side, error) {
	out := side{boundary: map[string]bool{}}
	for {
		tok := p.peek()
		if tok.Type != lexer.TokenNumber && tok.Type != lexer.TokenDollar && tok.Type != lexer.TokenIdent {
			if len(out.participants) == 0 {
				return out, nil
			}
			return out, p.errorf(tok, "expected a participant but found %s", tok)
		}
		stoich := 1.0
		if tok.Type == lexer.TokenNumber {
			if !allowStoich {
				return out, p.errorf(tok, "stoichiometry is not allowed here")
			}
			p.advance()
			v, err := strconv.ParseFloat(tok.Value, 64)
			if err != nil {
				return out, p.errorf(tok, "invalid stoichiometry %q", tok.Value)
			}
			stoich = v
		}
		if p.peek().Type == lexer.TokenDollar {
			p.advance()
			out.boundary[p.peek().Value] = true
		}
		name, err := p.ident("participant name")
		if err != nil {
			return out, err
		}
		out.participants = append(out.participants, model.Participant{Name: name, Stoich: stoich})
		if p.peek().Type != lexer.TokenPlus {
			return out, nil
		}
		p.advance()
	}
}

func (p *parser) reaction(name string, lhs side, arrow lexer.Token) error {
	if name == "" {
		name = p.unique("_J")
	}
	s, err := p.claim(name, model.SortReaction, arrow)
	if err != nil {
		return err
	}
	rhs, err := p.participants(true)
	if err != nil {
		return err
	}
	r := &model.Reaction{Name: name, Reactants: lhs.participants, Products: rhs.participants, Divider: model.DividerBecomes}
	if arrow.Type == lexer.TokenTransform {
		r.Divider = model.DividerTransforms
	}
	for _, sd := range []side{lhs, rhs} {
		for _, part := range sd.participants {
			sym := p.reference(part.Name)
			if sym == nil {
				continue
			}
			if sym.Sort == model.SortUnknown {
				sym.Sort = model.SortSpecies
			}
			if sd.boundary[part.Name] {
				sym.Boundary = true
			}
		}
	}

	if p.peek().Type == lexer.TokenSemicolon {
		p.advance()
		if !isTerminator(p.peek().Type) {
			if s.Main, err = p.expression(); err != nil {
				return err
			}
		}
	}
	p.cur.Reactions = append(p.cur.Reactions, r)
	return p.endStatement()
}

func (p *parser) interaction(name string, lhs side, d model.Divider, arrow lexer.Token) error {
	if len(lhs.participants) == 0 {
		return p.errorf(arrow, "interaction %s needs at least one interactor", d.Arrow())
	}
	if name == "" {
		name = p.unique("_I")
	}
	if _, err := p.claim(name, model.SortInteraction, arrow); err != nil {
		return err
	}
	rhs, err := p.participants(false)
	if err != nil {
		return err
	}
	if len(rhs.participants) == 0 {
		return p.errorf(p.peek(), "interaction %s needs at least one target", d.Arrow())
	}
	ix := &model.Interaction{Name: name, Divider: d}
	for _, part := range lhs.participants {
		if part.Stoich != 1 {
			return p.errorf(arrow, "interactors cannot carry stoichiometry")
		}
		p.reference(part.Name)
		ix.Interactors = append(ix.Interactors, part.Name)
	}
	for _, part := range rhs.participants {
		p.reference(part.Name)
		ix.Interactees = append(ix.Interactees, part.Name)
	}
	p.cur.Interactions = append(p.cur.Interactions, ix)
	return p.endStatement()
}

func (p *parser) strand(name string) error {
	start := p.peek()
	if name == "" {
		name = p.unique("_S")
	}
	if _, err := p.claim(name, model.SortStrand, start); err != nil {
		return err
	}
	st := &model.Strand{Name: name}
	if start.Type == lexer.TokenDashDash {
		p.advance()
		st.OpenUpstream = true
	}
	for {
		comp, err := p.ident("strand component")
		if err != nil {
			return err
		}
		if scope, _ := model.SplitPath(comp); scope != "" {
			return p.errorf(start, "strand components cannot reference submodule symbol %q", comp)
		}
		p.reference(comp)
		st.Components = append(st.Components, comp)
		if p.peek().Type != lexer.TokenDashDash {
			break
		}
		p.advance()
		if p.peek().Type != lexer.TokenIdent {
			st.OpenDownstream = true
			break
		}
	}
	p.cur.Strands = append(p.cur.Strands, st)
	return p.endStatement()
}
