package antimony

import (
	"antimony/internal/builder"
	"antimony/internal/model"
)

func (s *Session) events(module string) ([]*model.Event, string, error) {
	m, err := s.flat(module)
	if err != nil {
		return nil, "", err
	}
	return m.Events, m.Name, nil
}

func (s *Session) event(module string, n int) (*model.Event, error) {
	evs, name, err := s.events(module)
	if err != nil {
		return nil, err
	}
	return nth(s, evs, n, "event", name)
}

func (s *Session) NumEvents(module string) (int, error) {
	evs, _, err := s.events(module)
	return len(evs), err
}

func (s *Session) EventNames(module string) ([]string, error) {
	evs, _, err := s.events(module)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(evs))
	for i, ev := range evs {
		out[i] = ev.Name
	}
	return out, nil
}

func (s *Session) NthEventName(module string, n int) (string, error) {
	ev, err := s.event(module, n)
	if err != nil {
		return "", err
	}
	return ev.Name, nil
}

func (s *Session) NumAssignmentsForEvent(module string, n int) (int, error) {
	ev, err := s.event(module, n)
	if err != nil {
		return 0, err
	}
	return len(ev.Assignments), nil
}

func (s *Session) TriggerForEvent(module string, n int) (string, error) {
	ev, err := s.event(module, n)
	if err != nil {
		return "", err
	}
	return ev.Trigger, nil
}

// DelayForEvent returns "" for events without a delay.
func (s *Session) DelayForEvent(module string, n int) (string, error) {
	ev, err := s.event(module, n)
	if err != nil {
		return "", err
	}
	return ev.Delay, nil
}

func (s *Session) EventHasDelay(module string, n int) (bool, error) {
	d, err := s.DelayForEvent(module, n)
	return d != "", err
}

func (s *Session) PriorityForEvent(module string, n int) (string, error) {
	ev, err := s.event(module, n)
	if err != nil {
		return "", err
	}
	return ev.Priority, nil
}

func (s *Session) EventHasPriority(module string, n int) (bool, error) {
	p, err := s.PriorityForEvent(module, n)
	return p != "", err
}

// PersistenceForEvent defaults to false.
func (s *Session) PersistenceForEvent(module string, n int) (bool, error) {
	ev, err := s.event(module, n)
	if err != nil {
		return false, err
	}
	return ev.Persistent, nil
}

// T0ForEvent is the trigger value assumed at time zero; it defaults to
// true.
func (s *Session) T0ForEvent(module string, n int) (bool, error) {
	ev, err := s.event(module, n)
	if err != nil {
		return true, err
	}
	return ev.T0, nil
}

// FromTriggerForEvent reports whether assignments use the values at
// trigger time; it defaults to true.
func (s *Session) FromTriggerForEvent(module string, n int) (bool, error) {
	ev, err := s.event(module, n)
	if err != nil {
		return true, err
	}
	return ev.FromTrigger, nil
}

func (s *Session) assignment(module string, n, m int) (model.EventAssignment, error) {
	ev, err := s.event(module, n)
	if err != nil {
		return model.EventAssignment{}, err
	}
	return nth(s, ev.Assignments, m, "assignment of event "+ev.Name, module)
}

func (s *Session) NthAssignmentVariableForEvent(module string, n, m int) (string, error) {
	a, err := s.assignment(module, n, m)
	return a.Variable, err
}

func (s *Session) NthAssignmentEquationForEvent(module string, n, m int) (string, error) {
	a, err := s.assignment(module, n, m)
	return a.Formula, err
}

func (s *Session) strands(module string, modular bool) ([]builder.StrandView, string, error) {
	m, err := s.flat(module)
	if err != nil {
		return nil, "", err
	}
	if modular {
		return builder.ModularStrands(m), m.Name, nil
	}
	return builder.ExpandedStrands(m), m.Name, nil
}

func (s *Session) strand(module string, n int, modular bool) (builder.StrandView, error) {
	views, name, err := s.strands(module, modular)
	if err != nil {
		return builder.StrandView{}, err
	}
	what := "DNA strand"
	if modular {
		what = "modular DNA strand"
	}
	return nth(s, views, n, what, name)
}

func sizes(views []builder.StrandView) []int {
	out := make([]int, len(views))
	for i, v := range views {
		out[i] = len(v.Components)
	}
	return out
}

func components(views []builder.StrandView) [][]string {
	out := make([][]string, len(views))
	for i, v := range views {
		out[i] = v.Components
	}
	return out
}

func isOpen(v builder.StrandView, upstream bool) bool {
	if upstream {
		return v.OpenUpstream
	}
	return v.OpenDownstream
}

// NumDNAStrands counts the top-level strands; strands used inside other
// strands are expanded into them and not counted.
func (s *Session) NumDNAStrands(module string) (int, error) {
	views, _, err := s.strands(module, false)
	return len(views), err
}

func (s *Session) DNAStrandSizes(module string) ([]int, error) {
	views, _, err := s.strands(module, false)
	if err != nil {
		return nil, err
	}
	return sizes(views), nil
}

func (s *Session) SizeOfNthDNAStrand(module string, n int) (int, error) {
	v, err := s.strand(module, n, false)
	return len(v.Components), err
}

// DNAStrands returns every top-level strand with nested strands expanded
// into their operators and genes.
func (s *Session) DNAStrands(module string) ([][]string, error) {
	views, _, err := s.strands(module, false)
	if err != nil {
		return nil, err
	}
	return components(views), nil
}

func (s *Session) NthDNAStrand(module string, n int) ([]string, error) {
	v, err := s.strand(module, n, false)
	return v.Components, err
}

// IsNthDNAStrandOpen reports whether the strand was written with a leading
// "--" (upstream) or trailing "--" (downstream).
func (s *Session) IsNthDNAStrandOpen(module string, n int, upstream bool) (bool, error) {
	v, err := s.strand(module, n, false)
	if err != nil {
		return false, err
	}
	return isOpen(v, upstream), nil
}

// NumModularDNAStrands counts every strand as written, nested ones
// included.
func (s *Session) NumModularDNAStrands(module string) (int, error) {
	views, _, err := s.strands(module, true)
	return len(views), err
}

func (s *Session) ModularDNAStrandSizes(module string) ([]int, error) {
	views, _, err := s.strands(module, true)
	if err != nil {
		return nil, err
	}
	return sizes(views), nil
}

func (s *Session) SizeOfNthModularDNAStrand(module string, n int) (int, error) {
	v, err := s.strand(module, n, true)
	return len(v.Components), err
}

func (s *Session) ModularDNAStrands(module string) ([][]string, error) {
	views, _, err := s.strands(module, true)
	if err != nil {
		return nil, err
	}
	return components(views), nil
}

func (s *Session) NthModularDNAStrand(module string, n int) ([]string, error) {
	v, err := s.strand(module, n, true)
	return v.Components, err
}

func (s *Session) IsNthModularDNAStrandOpen(module string, n int, upstream bool) (bool, error) {
	v, err := s.strand(module, n, true)
	if err != nil {
		return false, err
	}
	return isOpen(v, upstream), nil
}
