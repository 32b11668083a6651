package crawler

import (
	"context"
	"errors"

	"profilecrawler/internal/usecase"
)

type State int

const (
	StateInit State = iota
	StateRunning
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRunning:
		return "RUNNING"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Outcome tags how a run ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeSuccess
	OutcomeTransportFailure
	OutcomeRemoteRejection
	OutcomeCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeTransportFailure:
		return "transport failure"
	case OutcomeRemoteRejection:
		return "remote rejection"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "none"
	}
}

// Result is the outcome of a run together with every record collected so far.
// Err is nil only for OutcomeSuccess.
type Result struct {
	Outcome Outcome
	Records []usecase.Record
	Err     error
}

func classify(ctx context.Context, err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case usecase.IsRemoteRejection(err):
		return OutcomeRemoteRejection
	case ctx.Err() != nil:
		return OutcomeCanceled
	case usecase.IsTransport(err):
		return OutcomeTransportFailure
	case errors.Is(err, context.Canceled):
		return OutcomeCanceled
	default:
		// fetchers outside this module may return bare network errors
		return OutcomeTransportFailure
	}
}
