// Package viewflow models the single-page view progression of the feedback
// application: participants see the form, a hidden gesture reveals the admin
// login, and an authenticated admin lands on the dashboard.
package viewflow

import (
	"errors"
	"fmt"
)

// View names one of the renderable application views.
type View string

const (
	ViewForm           View = "form"
	ViewAdminLogin     View = "admin-login"
	ViewAdminDashboard View = "admin-dashboard"
	ViewThankYou       View = "thank-you"
)

var (
	ErrInvalidTransition = errors.New("viewflow: invalid transition")
)

// Machine tracks the current view and enforces legal transitions. The zero
// value is not usable; construct one with NewMachine.
type Machine struct {
	current View
}

// NewMachine starts at the form view, or directly at the dashboard when an
// admin session is already established.
func NewMachine(adminSessionPresent bool) *Machine {
	return &Machine{current: InitialView(adminSessionPresent)}
}

// InitialView resolves the view shown on first load.
func InitialView(adminSessionPresent bool) View {
	if adminSessionPresent {
		return ViewAdminDashboard
	}
	return ViewForm
}

// Current returns the view being rendered.
func (machine *Machine) Current() View {
	return machine.current
}

// RevealAdminLogin moves from the form to the admin login view.
func (machine *Machine) RevealAdminLogin() error {
	return machine.transition(ViewForm, ViewAdminLogin)
}

// CompleteLogin moves from the admin login to the dashboard after a
// successful password check.
func (machine *Machine) CompleteLogin() error {
	return machine.transition(ViewAdminLogin, ViewAdminDashboard)
}

// Logout returns from the dashboard to the form.
func (machine *Machine) Logout() error {
	return machine.transition(ViewAdminDashboard, ViewForm)
}

// AcknowledgeSubmission moves from the form to the thank-you view after a
// successful submission.
func (machine *Machine) AcknowledgeSubmission() error {
	return machine.transition(ViewForm, ViewThankYou)
}

// ReturnToForm moves back from the thank-you view to a fresh form.
func (machine *Machine) ReturnToForm() error {
	return machine.transition(ViewThankYou, ViewForm)
}

func (machine *Machine) transition(from View, to View) error {
	if machine.current != from {
		return fmt.Errorf("%w: %s -> %s while at %s", ErrInvalidTransition, from, to, machine.current)
	}
	machine.current = to
	return nil
}
