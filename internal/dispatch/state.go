package dispatch

// State is the lifecycle position of one command invocation.
type State int

const (
	Unbound State = iota
	Parsed
	Validated
	Configured
	Executing
	Finalized
	AbortedWithCapture
	Failed
)

func (s State) String() string {
	switch s {
	case Unbound:
		return "unbound"
	case Parsed:
		return "parsed"
	case Validated:
		return "validated"
	case Configured:
		return "configured"
	case Executing:
		return "executing"
	case Finalized:
		return "finalized"
	case AbortedWithCapture:
		return "aborted_with_capture"
	case Failed:
		return "failed"
	}
	return "unknown"
}
