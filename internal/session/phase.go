package session

import (
	"fmt"

	"proctor-service/internal/constants"
)

// validTransitions only moves forward. Nothing leaves a terminal phase.
var validTransitions = map[constants.Phase]map[constants.Phase]bool{
	constants.PhasePrivacyNotice: {constants.PhaseInstructions: true},
	constants.PhaseInstructions:  {constants.PhaseCameraSetup: true},
	constants.PhaseCameraSetup:   {constants.PhaseActiveGame: true, constants.PhaseBlocked: true},
	constants.PhaseActiveGame:    {constants.PhaseCompleted: true, constants.PhaseDisqualified: true},
}

func IsValidTransition(from, to constants.Phase) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

func (s *Session) transitionLocked(to constants.Phase) error {
	if !IsValidTransition(s.phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPhase, s.phase, to)
	}
	s.phase = to
	return nil
}
