package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnknownAction is returned by ParseAction for names outside the enumeration.
var ErrUnknownAction = errors.New("unknown instance action")

// Action is a lifecycle action on an existing instance. The set is closed:
// the only values are the package-level Action* variables.
type Action struct {
	name    string
	method  string
	confirm bool
	message string
}

var (
	ActionReboot     = Action{name: "reboot", method: http.MethodPost, message: "VM Rebooted."}
	ActionHardReboot = Action{name: "hardreboot", method: http.MethodPost, message: "VM hard-rebooted."}
	ActionReinit     = Action{name: "reinit", method: http.MethodPost, confirm: true, message: "Recreating VM from scratch."}
	ActionShutdown   = Action{name: "shutdown", method: http.MethodPost, message: "VM shut down."}
	ActionStart      = Action{name: "start", method: http.MethodPost, message: "VM Started."}
	ActionDelete     = Action{name: "delete", method: http.MethodDelete, confirm: true, message: "Instance deleted, redirecting you to instances page."}
)

var allActions = []Action{
	ActionReboot,
	ActionHardReboot,
	ActionReinit,
	ActionShutdown,
	ActionStart,
	ActionDelete,
}

// Actions returns every lifecycle action in display order.
func Actions() []Action {
	return append([]Action(nil), allActions...)
}

// ParseAction maps a wire name ("reboot", "delete", ...) to its Action.
func ParseAction(name string) (Action, error) {
	for _, a := range allActions {
		if a.name == name {
			return a, nil
		}
	}
	return Action{}, fmt.Errorf("%w: %q", ErrUnknownAction, name)
}

// Name is the wire name, also the endpoint suffix for POST actions.
func (a Action) Name() string { return a.name }

// Method is the HTTP method the action is issued with.
func (a Action) Method() string { return a.method }

// Destructive reports whether the action discards instance state and
// therefore requires operator confirmation.
func (a Action) Destructive() bool { return a.confirm }

// Message is what the operator is told when the action succeeds.
func (a Action) Message() string { return a.message }

// IsZero reports whether a is the zero Action (not part of the enumeration).
func (a Action) IsZero() bool { return a.name == "" }

// Path returns the API path for applying a to instance id.
func (a Action) Path(id string) string {
	if a.method == http.MethodDelete {
		return "/api/v1/instances/" + id
	}
	return "/api/v1/instances/" + id + "/" + a.name
}

func (a Action) String() string { return a.name }
