package graph

import "log/slog"

// UnresolvedReasonCounts tallies the unresolved references of g by reason.
// References recorded without a reason count as missing symbols.
func (g *Graph) UnresolvedReasonCounts() map[UnresolvedReason]int {
	counts := make(map[UnresolvedReason]int)
	if g == nil {
		return counts
	}
	for _, u := range g.Unresolved {
		reason := u.Reason
		if reason == "" {
			reason = ReasonNoSymbol
		}
		counts[reason]++
	}
	return counts
}

// UnresolvedAttrs returns the non-zero reason tallies as log attributes in
// declaration order of the reasons.
func (g *Graph) UnresolvedAttrs() []any {
	counts := g.UnresolvedReasonCounts()
	var attrs []any
	for _, r := range []UnresolvedReason{ReasonNoModule, ReasonNoSymbol, ReasonArity} {
		if n := counts[r]; n > 0 {
			attrs = append(attrs, slog.Int(string(r), n))
		}
	}
	return attrs
}
