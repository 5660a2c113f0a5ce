package antimony

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"antimony/internal/metrics"
	"antimony/internal/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hierarchical = `
model inner(S1, k1)
  J0: S1 -> S2; k1*S1
  S1 = 10
  k1 = 0.1
end

model *outer()
  A: inner(x, kx)
  species x = 5
  kx = 2
end
`

const decaySBML = `<?xml version="1.0" encoding="UTF-8"?>
<sbml xmlns="http://www.sbml.org/sbml/level3/version1/core" level="3" version="1">
  <model id="decay">
    <listOfCompartments>
      <compartment id="cell" size="1" constant="true"/>
    </listOfCompartments>
    <listOfSpecies>
      <species id="S1" compartment="cell" initialConcentration="10" boundaryCondition="false" constant="false"/>
    </listOfSpecies>
    <listOfParameters>
      <parameter id="k1" value="0.1" constant="true"/>
    </listOfParameters>
    <listOfReactions>
      <reaction id="J0" reversible="false">
        <listOfReactants>
          <speciesReference species="S1" stoichiometry="1" constant="true"/>
        </listOfReactants>
        <kineticLaw>
          <math xmlns="http://www.w3.org/1998/Math/MathML"><apply><times/><ci>k1</ci><ci>S1</ci></apply></math>
        </kineticLaw>
      </reaction>
    </listOfReactions>
  </model>
</sbml>`

func loaded(t *testing.T, src string, opts ...Option) *Session {
	t.Helper()
	s := NewSession(opts...)
	_, err := s.LoadString(src)
	require.NoError(t, err, s.LastError())
	return s
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestSession_ModuleScenario(t *testing.T) {
	s := loaded(t, "module M(x,y): S1 -> S2; k1*S1; end")

	assert.Equal(t, 1, s.NumModules())
	assert.Equal(t, []string{"M"}, s.ModuleNames())
	main, err := s.MainModuleName()
	require.NoError(t, err)
	assert.Equal(t, "M", main)

	n, err := s.NumSymbolsInInterfaceOf("M")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	names, err := s.SymbolNamesInInterfaceOf("M")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, names)

	rates, err := s.ReactionRates("M")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1*S1"}, rates)
	reaction, err := s.NthSymbolNameOfType("M", KindReaction, 0)
	require.NoError(t, err)
	assert.Equal(t, "_J0", reaction)

	kind, err := s.TypeOfSymbol("", "S1")
	require.NoError(t, err)
	assert.Equal(t, KindSpeciesVariable, kind)
	eq, err := s.TypeOfEquationForSymbol("M", "_J0")
	require.NoError(t, err)
	assert.Equal(t, FormulaKinetic, eq)
	comp, err := s.CompartmentForSymbol("M", "S1")
	require.NoError(t, err)
	assert.Equal(t, DefaultCompartment, comp)
}

func TestSession_OutOfRangeSetsLastError(t *testing.T) {
	s := loaded(t, "module M(x,y): S1 -> S2; k1*S1; end")

	_, err := s.NthSymbolEquationOfType("M", KindSpecies, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, err.Error(), s.LastError())
	assert.Contains(t, s.LastError(), "number 5")

	_, err = s.NumSymbolsOfType("M", SymbolKind(99))
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.False(t, s.CheckModule("missing"))
	assert.Contains(t, s.LastError(), "missing")
	assert.True(t, s.CheckModule("M"))
}

func TestSession_DocumentsAndRevert(t *testing.T) {
	s := NewSession()
	assert.False(t, s.RevertTo(-1))
	assert.Empty(t, s.LastError(), "a failed revert has no side effects")

	first, err := s.LoadString("module M(x,y): S1 -> S2; k1*S1; end")
	require.NoError(t, err)
	second, err := s.LoadString(hierarchical)
	require.NoError(t, err)
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
	assert.Equal(t, 2, s.NumFiles())

	main, _ := s.MainModuleName()
	assert.Equal(t, "outer", main)
	assert.False(t, s.RevertTo(2))
	require.True(t, s.RevertTo(0))
	main, _ = s.MainModuleName()
	assert.Equal(t, "M", main)

	s.ClearPreviousLoads()
	assert.Equal(t, 0, s.NumFiles())
	_, err = s.MainModuleName()
	assert.True(t, errors.Is(err, ErrNotFound))
	idx, err := s.LoadString("S1 -> S2; k")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestSession_LoadFallback(t *testing.T) {
	s := NewSession()
	idx, err := s.LoadString(decaySBML)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	main, _ := s.MainModuleName()
	assert.Equal(t, "decay", main)

	_, err = s.LoadString(`<sbml level="3" version="1"></sbml>`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoad))
	assert.NotContains(t, err.Error(), "<model>", "the Antimony error is reported when every format fails")
	assert.Equal(t, 1, s.NumFiles(), "failed loads leave the documents alone")

	_, err = s.LoadAntimonyString("model M()\n S1 -> S2; k")
	require.Error(t, err)
	assert.Contains(t, s.LastError(), "missing its 'end'")
}

func TestSession_LoadFileAndImports(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	require.NoError(t, writeFile(filepath.Join(lib, "inner.txt"), "model inner(S1)\n S1 -> ; k*S1\n k = 1\nend\n"))
	mainPath := filepath.Join(dir, "main.txt")
	require.NoError(t, writeFile(mainPath, "import \"inner.txt\"\nA: inner(x)\nx = 3\n"))

	s := NewSession()
	_, err := s.LoadFile(mainPath)
	require.Error(t, err, "inner.txt is not next to main.txt")

	s.AddDirectory(lib)
	_, err = s.LoadFile(mainPath)
	require.NoError(t, err, s.LastError())
	assert.ElementsMatch(t, []string{"inner", "__main"}, s.ModuleNames())

	s.ClearDirectories()
	_, err = s.LoadAntimonyFile(filepath.Join(dir, "absent.txt"))
	assert.True(t, errors.Is(err, ErrLoad))
}

func TestSession_GeneIsNotReportedAsReaction(t *testing.T) {
	s := loaded(t, `
		J0: A -> P; k*A
		J1: P -> ; d*P
		s1: p0--J0
	`)
	kind, err := s.TypeOfSymbol("", "J0")
	require.NoError(t, err)
	assert.Equal(t, KindGene, kind)
	kind, _ = s.TypeOfSymbol("", "J1")
	assert.Equal(t, KindReaction, kind)

	genes, err := s.SymbolNamesOfType("", KindGene)
	require.NoError(t, err)
	assert.Equal(t, []string{"J0"}, genes)
	reactions, err := s.SymbolNamesOfType("", KindReaction)
	require.NoError(t, err)
	assert.Equal(t, []string{"J0", "J1"}, reactions, "the reaction kind includes genes")
	ops, _ := s.SymbolNamesOfType("", KindOperator)
	assert.Equal(t, []string{"p0"}, ops)

	n, err := s.NumDNAStrands("")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	strand, err := s.NthDNAStrand("", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"p0", "J0"}, strand)
	open, err := s.IsNthDNAStrandOpen("", 0, true)
	require.NoError(t, err)
	assert.False(t, open)
	_, err = s.NthDNAStrand("", 1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSession_ModularStrands(t *testing.T) {
	s := loaded(t, `
		outer: --p0--inner--t1
		inner: p1--g1
	`)
	expanded, err := s.DNAStrands("")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"p0", "p1", "g1", "t1"}}, expanded)

	n, err := s.NumModularDNAStrands("")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	sizes, err := s.ModularDNAStrandSizes("")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2}, sizes)
	open, err := s.IsNthModularDNAStrandOpen("", 0, true)
	require.NoError(t, err)
	assert.True(t, open)
}

func TestSession_ReplacementsAreTransitive(t *testing.T) {
	s := loaded(t, "A = 1\nB = 2\nC = 3\nA is B\nB is C\n")

	pairs, err := s.AllReplacementSymbolPairs("")
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "A", pairs[0].Former)
	assert.Equal(t, "C", pairs[0].Replacement)
	assert.Equal(t, "B", pairs[1].Former)
	assert.Equal(t, "C", pairs[1].Replacement)

	former, err := s.NthFormerSymbolName("", 1)
	require.NoError(t, err)
	assert.Equal(t, "B", former)
	_, err = s.NthReplacementSymbolName("", 2)
	assert.True(t, errors.Is(err, ErrNotFound))

	names, err := s.SymbolNamesOfType("", KindAny)
	require.NoError(t, err)
	assert.Contains(t, names, "C")
	assert.NotContains(t, names, "A", "replaced symbols are merged away in the flattened view")
}

func TestSession_FlattenedView(t *testing.T) {
	s := loaded(t, hierarchical)

	species, err := s.SymbolNamesOfType("outer", KindSpecies)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "A.S2"}, species)
	mods, _ := s.SymbolNamesOfType("", KindModule)
	assert.Equal(t, []string{"A"}, mods)

	reactants, err := s.ReactantNames("")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x"}}, reactants)
	products, _ := s.ProductNames("")
	assert.Equal(t, [][]string{{"A.S2"}}, products)
	rate, err := s.NthReactionRate("", 0)
	require.NoError(t, err)
	assert.Equal(t, "kx*x", rate)

	between, err := s.NumReplacedSymbolNamesBetween("outer", "A", "")
	require.NoError(t, err)
	assert.Equal(t, 2, between)
	formers, err := s.AllReplacementSymbolPairsBetween("outer", "A", "")
	require.NoError(t, err)
	require.Len(t, formers, 2)
	assert.ElementsMatch(t, []string{"A.S1", "A.k1"}, []string{formers[0].Former, formers[1].Former})
	none, _ := s.NumReplacedSymbolNamesBetween("outer", "", "A")
	assert.Zero(t, none)

	inner, err := s.SymbolNamesOfType("inner", KindSpecies)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, inner, "named modules are queried on their own")
}

func TestSession_ReactionCounts(t *testing.T) {
	s := loaded(t, "J0: -> S1; k0\nJ1: 2 S1 + S2 -> S3; k1*S1\n")

	n, err := s.NumReactants("", 0)
	require.NoError(t, err)
	assert.Zero(t, n, "a reaction without reactants is not an error")

	n, err = s.NumReactants("", 5)
	require.Error(t, err)
	assert.Zero(t, n)
	assert.True(t, errors.Is(err, ErrNotFound))

	n, _ = s.NumReactants("", 1)
	assert.Equal(t, 2, n)
	st, err := s.NthReactionMthReactantStoichiometry("", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2.0, st)
	name, err := s.NthReactionMthReactantName("", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "S2", name)
	_, err = s.NthReactionMthProductName("", 1, 1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSession_StoichiometryMatrix(t *testing.T) {
	s := loaded(t, "module M(x,y): S1 -> S2; k1*S1; end")

	rows, err := s.StoichiometryMatrixRowLabels("M")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, rows)
	cols, err := s.StoichiometryMatrixColumnLabels("M")
	require.NoError(t, err)
	assert.Equal(t, []string{"_J0"}, cols)
	mx, err := s.StoichiometryMatrix("M")
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{-1}, {1}}, mx)

	mx[0][0] = 42
	again, _ := s.StoichiometryMatrix("M")
	assert.Equal(t, -1.0, again[0][0], "callers get a copy")

	nr, _ := s.StoichiometryMatrixNumRows("M")
	nc, _ := s.StoichiometryMatrixNumColumns("M")
	assert.Equal(t, 2, nr)
	assert.Equal(t, 1, nc)
}

func TestSession_OrdinalsAreStable(t *testing.T) {
	s := loaded(t, "S1 = 1\nS2 = 2\nk = 3\nS1 -> S2; k*S1\nS3 -> S1; k\n")

	names, err := s.SymbolNamesOfType("", KindSpecies)
	require.NoError(t, err)
	for i, want := range names {
		got, err := s.NthSymbolNameOfType("", KindSpecies, i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	again, _ := s.SymbolNamesOfType("", KindSpecies)
	assert.Equal(t, names, again)
	eqs, _ := s.SymbolEquationsOfType("", KindSpecies)
	assert.Len(t, eqs, len(names))
}

func TestSession_Events(t *testing.T) {
	s := loaded(t, `
		at time > 5: S1 = 0, k = k/2
		E1: at 2 after S1 < 1, priority=3, persistent=true: S1 = 10
	`)

	names, err := s.EventNames("")
	require.NoError(t, err)
	assert.Equal(t, []string{"_E0", "E1"}, names)

	persistent, _ := s.PersistenceForEvent("", 0)
	t0, _ := s.T0ForEvent("", 0)
	fromTrigger, _ := s.FromTriggerForEvent("", 0)
	assert.False(t, persistent)
	assert.True(t, t0)
	assert.True(t, fromTrigger)
	hasDelay, _ := s.EventHasDelay("", 0)
	assert.False(t, hasDelay)

	n, err := s.NumAssignmentsForEvent("", 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	v, _ := s.NthAssignmentVariableForEvent("", 0, 1)
	f, _ := s.NthAssignmentEquationForEvent("", 0, 1)
	assert.Equal(t, "k", v)
	assert.Equal(t, "k/2", f)

	trigger, _ := s.TriggerForEvent("", 1)
	delay, _ := s.DelayForEvent("", 1)
	priority, _ := s.PriorityForEvent("", 1)
	assert.Equal(t, "S1 < 1", trigger)
	assert.Equal(t, "2", delay)
	assert.Equal(t, "3", priority)
	persistent, _ = s.PersistenceForEvent("", 1)
	assert.True(t, persistent)

	_, err = s.NthAssignmentVariableForEvent("", 1, 3)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSession_SBMLMessages(t *testing.T) {
	s := loaded(t, hierarchical)

	out, err := s.CompSBMLString("")
	require.NoError(t, err)
	assert.Contains(t, out, `<model id="outer"`)
	assert.Contains(t, s.SBMLWarnings(""), "was flattened")
	assert.Contains(t, s.SBMLWarnings("outer"), "was flattened")

	_, err = s.SBMLString("")
	require.NoError(t, err)
	assert.NotContains(t, s.SBMLWarnings(""), "was flattened", "each render replaces the messages")
	assert.Contains(t, s.SBMLWarnings(""), "has no units defined")

	s = loaded(t, "J0: A -> B; k*A\nA -o J0\n")
	_, err = s.SBMLString("")
	require.NoError(t, err)
	assert.Contains(t, s.SBMLInfoMessages(""), "1 interactions were not exported")
}

func TestSession_FailedRenderClearsSBMLMessages(t *testing.T) {
	s := loaded(t, hierarchical)
	_, err := s.CompSBMLString("")
	require.NoError(t, err)
	require.Contains(t, s.SBMLWarnings(""), "was flattened")

	doc, err := s.active()
	require.NoError(t, err)
	inner, ok := doc.Graph.Module("inner")
	require.True(t, ok)
	j0, ok := inner.Symbol("J0")
	require.True(t, ok)
	j0.Main = "k1*("

	_, err = s.CompSBMLString("")
	require.Error(t, err)
	assert.Empty(t, s.SBMLWarnings(""))
	assert.Empty(t, s.SBMLInfoMessages(""))
}

func TestSession_FailedLoadClearsWarnings(t *testing.T) {
	s := NewSession()
	_, err := s.LoadAntimonyString("unit mM = 1e-3 mole / litre\nS1 = 3\n")
	require.NoError(t, err)
	require.Contains(t, s.Warnings(), "unit definitions are not supported")

	_, err = s.loadAs(Format("bogus"), []byte("S1 = 3\n"), "")
	require.Error(t, err)
	assert.Empty(t, s.Warnings())

	_, err = s.LoadAntimonyString("unit mM = 1e-3 mole / litre\nS1 = 3\n")
	require.NoError(t, err)
	_, err = s.LoadAntimonyFile(filepath.Join(t.TempDir(), "absent.ant"))
	require.Error(t, err)
	assert.Empty(t, s.Warnings())
}

func TestSession_LogsUnresolvedReferences(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	_, err := s.LoadAntimonyString("A: missing()\n")
	require.Error(t, err)
	assert.Contains(t, buf.String(), "unresolved references")
	assert.Contains(t, buf.String(), "reasons.no_module=1")
}

func TestSession_RenderFormats(t *testing.T) {
	s := loaded(t, hierarchical)

	text, err := s.AntimonyString("")
	require.NoError(t, err)
	assert.Contains(t, text, "model inner(S1, k1)")
	assert.Contains(t, text, "model *outer()")

	cellml, err := s.CellMLString("outer")
	require.NoError(t, err)
	assert.Contains(t, cellml, "<model")

	path := filepath.Join(t.TempDir(), "out.xml")
	require.NoError(t, s.WriteSBMLFile(path, ""))
	idx, err := NewSession().LoadSBMLFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = s.AntimonyString("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSession_AddDefaultInitialValues(t *testing.T) {
	s := loaded(t, "S1 -> S2; k1*S1\ncompartment C\nS2 = 4\n")

	before, err := s.SymbolInitialAssignmentsOfType("", KindSpecies)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "4"}, before)

	require.NoError(t, s.AddDefaultInitialValues(""))
	assert.Equal(t, 1, s.NumFiles(), "the active document is replaced, not added")

	after, err := s.SymbolInitialAssignmentsOfType("", KindSpecies)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "4"}, after)
	comps, _ := s.SymbolInitialAssignmentsOfType("", KindCompartment)
	assert.Equal(t, []string{"1"}, comps)
	assert.Equal(t, []string{"", "4"}, before, "earlier results are unaffected")
}

func TestSession_AddDefaultInitialValues_ParametersAndRates(t *testing.T) {
	s := loaded(t, "J0: S1 -> S2; k1*S1\nJ1: S2 -> S3\nk2 = 3\n")

	require.NoError(t, s.AddDefaultInitialValues(""))

	params, err := s.SymbolInitialAssignmentsOfType("", KindFormula)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, params)
	rates, err := s.ReactionRates("")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1*S1", "0"}, rates)
}

func TestSession_Operators(t *testing.T) {
	src := "operator o\ns1: o--g\ng: -> P; k*o\n"

	s := loaded(t, src)
	require.NoError(t, s.AddDefaultInitialValues(""))
	ops, err := s.SymbolInitialAssignmentsOfType("", KindOperator)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ops)

	s = loaded(t, "operator o\no = 5\ns1: o--g\ng: -> P; k*o\n")
	kind, err := s.TypeOfEquationForSymbol("", "o")
	require.NoError(t, err)
	assert.Equal(t, FormulaInitial, kind)
}

func TestSession_PrintAllDataFor(t *testing.T) {
	s := loaded(t, "S1 = 10\nS1 -> S2; k1*S1\nk1 = 0.5\nat time > 1: k1 = 0\n")

	var buf bytes.Buffer
	require.NoError(t, s.PrintAllDataFor(&buf, ""))
	out := buf.String()
	assert.Contains(t, out, "Module __main:")
	assert.Contains(t, out, "S1 = 10 in default_compartment")
	assert.Contains(t, out, "_J0: S1 -> S2; k1*S1")
	assert.Contains(t, out, "stoichiometry matrix (2 x 1)")
	assert.Contains(t, out, "events:")

	assert.Error(t, s.PrintAllDataFor(&buf, "nope"))
}

func TestSession_SnapshotAndRestore(t *testing.T) {
	st, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	ctx := context.Background()

	s := loaded(t, hierarchical)
	snap, err := s.Snapshot(ctx, st, "v1")
	require.NoError(t, err)
	assert.Equal(t, "outer", snap.Main)
	assert.ElementsMatch(t, []string{"inner", "outer"}, snap.Modules)

	s.ClearPreviousLoads()
	idx, err := s.Restore(ctx, st, "v1")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	main, _ := s.MainModuleName()
	assert.Equal(t, "outer", main)
	rate, err := s.NthReactionRate("", 0)
	require.NoError(t, err)
	assert.Equal(t, "kx*x", rate)

	_, err = s.Restore(ctx, st, "unknown")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSession_Metrics(t *testing.T) {
	reg := metrics.NewRegistry()
	s := NewSession(WithMetrics(reg))

	_, err := s.LoadAntimonyString("S1 -> S2; k1*S1")
	require.NoError(t, err)
	_, err = s.LoadAntimonyString("model M(")
	require.Error(t, err)
	_, err = s.SBMLString("")
	require.NoError(t, err)
	_, _ = s.NthEventName("", 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.LoadsTotal.WithLabelValues("antimony", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.LoadsTotal.WithLabelValues("antimony", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.RendersTotal.WithLabelValues("sbml", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.QueryErrors.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.QueryErrors.WithLabelValues("load")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.Documents))
}

func TestSession_Describe(t *testing.T) {
	s := loaded(t, hierarchical)

	mods, err := s.Describe()
	require.NoError(t, err)
	require.Len(t, mods, 2)
	assert.Equal(t, "inner", mods[0].Name)
	assert.Equal(t, []string{"outer"}, mods[0].UsedBy)
	assert.False(t, mods[0].Main)
	assert.Equal(t, []string{"S1", "k1"}, mods[0].Interface)
	require.Len(t, mods[0].Reactions, 1)
	assert.Equal(t, ReactionInfo{Name: "J0", Reactants: []string{"S1"}, Products: []string{"S2"}, Rate: "k1*S1"}, mods[0].Reactions[0])

	assert.True(t, mods[1].Main)
	assert.Equal(t, []string{"inner"}, mods[1].Uses)
	assert.NotEmpty(t, mods[1].Replacements)
	assert.NoError(t, ValidateDescription(mods))

	_, err = NewSession().Describe()
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestValidateDescription_RejectsMalformed(t *testing.T) {
	assert.NoError(t, ValidateDescription([]ModuleInfo{}))

	err := ValidateDescription([]ModuleInfo{{Name: "", Symbols: []SymbolInfo{}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")

	err = ValidateDescription([]ModuleInfo{{Name: "m", Symbols: []SymbolInfo{{Name: "x"}}}})
	assert.Error(t, err, "a symbol needs a kind")

	err = ValidateDescription([]ModuleInfo{{Name: "m"}})
	assert.Error(t, err, "symbols must be an array")
}
