package reconcile

// Outcome is the terminal state of one component in a sync run.
type Outcome int

const (
	Synced Outcome = iota
	Skipped
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Synced:
		return "synced"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Reasons attached to skipped components.
const (
	ReasonNotFound   = "not-found"
	ReasonCustomized = "customized"
)

// Result is the outcome of one component.
type Result struct {
	Component string
	Outcome   Outcome
	Reason    string
	Err       error

	// MissingDependencies lists declared dependencies that are not tracked
	// locally. Informational only.
	MissingDependencies []string
}

// Summary is the outcome of a sync run.
type Summary struct {
	Repository string
	Revision   string
	Results    []Result
}

// Count returns how many results ended in o.
func (s *Summary) Count(o Outcome) int {
	n := 0
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}
	return n
}

// Names returns the components whose result ended in o, in order.
func (s *Summary) Names(o Outcome) []string {
	var out []string
	for _, r := range s.Results {
		if r.Outcome == o {
			out = append(out, r.Component)
		}
	}
	return out
}
