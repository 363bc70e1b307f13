// Package action drives lifecycle actions on a single instance and gates
// destructive ones behind a typed confirmation phrase.
//
// A Dispatcher holds no state between interactions. Request starts an
// interaction; when it returns StateConfirming the caller collects the
// operator's text and resumes with Confirm.
package action

import (
	"context"
	"errors"
	"slices"

	"github.com/projecteru2/core/log"

	"github.com/projecteru2/waifuadmin/types"
)

// ConfirmationPhrase must be typed exactly to run a destructive action.
const ConfirmationPhrase = "I don't care about the data"

// ConfirmationFailedMessage is reported for any phrase mismatch.
const ConfirmationFailedMessage = "Confirmation failed."

// ErrConfirmationFailed is a local outcome: no request was sent.
var ErrConfirmationFailed = errors.New("confirmation failed")

// State is where an interaction stands.
type State int

const (
	StateIdle State = iota
	StateConfirming
	StateInFlight
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfirming:
		return "confirming"
	case StateInFlight:
		return "in-flight"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Lifecycle is the part of the waifud client the dispatcher needs.
type Lifecycle interface {
	Act(ctx context.Context, id string, action types.Action) error
	Delete(ctx context.Context, id string) error
}

// Policy decides which actions need confirmation. Destructive actions
// always do; Extra adds more by wire name.
type Policy struct {
	Extra []string
}

// RequiresConfirmation reports whether a must be confirmed before it runs.
func (p Policy) RequiresConfirmation(a types.Action) bool {
	return a.Destructive() || slices.Contains(p.Extra, a.Name())
}

// Outcome is the result of one Request or Confirm call.
type Outcome struct {
	Action  types.Action
	State   State
	Message string
	// Prompt is set when State is StateConfirming.
	Prompt string
	// Err is ErrConfirmationFailed, or the remote error when State is StateFailed.
	Err error
}

// Dispatcher applies actions to one instance.
type Dispatcher struct {
	lc     Lifecycle
	id     string
	policy Policy
}

// New returns a Dispatcher for instance id.
func New(lc Lifecycle, id string, policy Policy) *Dispatcher {
	return &Dispatcher{lc: lc, id: id, policy: policy}
}

// Request starts an interaction. Actions needing confirmation stop at
// StateConfirming without touching the network; others are sent at once.
func (d *Dispatcher) Request(ctx context.Context, a types.Action) Outcome {
	if d.policy.RequiresConfirmation(a) {
		log.WithFunc("action.Request").Infof(ctx, "%s %s: awaiting confirmation", a, d.id)
		return Outcome{
			Action: a,
			State:  StateConfirming,
			Prompt: "Type '" + ConfirmationPhrase + "' to continue.",
		}
	}
	return d.send(ctx, a)
}

// Confirm resumes an interaction with the operator's typed text. A mismatch
// returns to StateIdle with ErrConfirmationFailed and sends nothing.
func (d *Dispatcher) Confirm(ctx context.Context, a types.Action, text string) Outcome {
	if d.policy.RequiresConfirmation(a) && text != ConfirmationPhrase {
		log.WithFunc("action.Confirm").Warnf(ctx, "%s %s: confirmation text mismatch", a, d.id)
		return Outcome{
			Action:  a,
			State:   StateIdle,
			Message: ConfirmationFailedMessage,
			Err:     ErrConfirmationFailed,
		}
	}
	return d.send(ctx, a)
}

func (d *Dispatcher) send(ctx context.Context, a types.Action) Outcome {
	logger := log.WithFunc("action.send")
	logger.Infof(ctx, "%s %s: %s", a, d.id, StateInFlight)

	var err error
	if a == types.ActionDelete {
		err = d.lc.Delete(ctx, d.id)
	} else {
		err = d.lc.Act(ctx, d.id, a)
	}
	if err != nil {
		logger.Errorf(ctx, err, "%s %s failed", a, d.id)
		return Outcome{Action: a, State: StateFailed, Message: err.Error(), Err: err}
	}
	logger.Infof(ctx, "%s %s: %s", a, d.id, StateCompleted)
	return Outcome{Action: a, State: StateCompleted, Message: a.Message()}
}
