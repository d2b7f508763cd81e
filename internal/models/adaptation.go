// ABOUTME: Adaptation state machine carried from one day's plan to the next.
// ABOUTME: Inactive -> Active(daysRemaining) -> Inactive, one step per day.
package models

import "fmt"

// DefaultAdaptationMinutes is the bonus added when no explicit amount is given.
const DefaultAdaptationMinutes = 5

// Adaptation is a short-lived plan flag that extends workouts for a countdown of days.
type Adaptation struct {
	Active        bool `json:"active"`
	DaysRemaining int  `json:"days_remaining"`
	ExtraMinutes  int  `json:"extra_minutes"`
}

// InactiveAdaptation returns the resting state.
func InactiveAdaptation() Adaptation {
	return Adaptation{}
}

// NewAdaptation returns an active adaptation lasting days. Non-positive days
// yield the inactive state.
func NewAdaptation(days, extraMinutes int) Adaptation {
	if days <= 0 {
		return InactiveAdaptation()
	}
	if extraMinutes <= 0 {
		extraMinutes = DefaultAdaptationMinutes
	}
	return Adaptation{Active: true, DaysRemaining: days, ExtraMinutes: extraMinutes}
}

// Carry returns the state the following day inherits and the bonus minutes
// that day earns. The countdown is linear and ignores adherence.
func (a Adaptation) Carry() (next Adaptation, bonusMinutes int) {
	if !a.Active || a.DaysRemaining <= 0 {
		return InactiveAdaptation(), 0
	}
	remaining := a.DaysRemaining - 1
	if remaining == 0 {
		return InactiveAdaptation(), a.ExtraMinutes
	}
	return Adaptation{Active: true, DaysRemaining: remaining, ExtraMinutes: a.ExtraMinutes}, a.ExtraMinutes
}

func (a Adaptation) String() string {
	if !a.Active {
		return "inactive"
	}
	return fmt.Sprintf("active(%d days, +%d min)", a.DaysRemaining, a.ExtraMinutes)
}
