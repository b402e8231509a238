package models

import "fmt"

// transitionTable lists, for each state, the states it may move to.
type transitionTable[S ~string] map[S][]S

func (t transitionTable[S]) validate(current, target S) error {
	allowed, ok := t[current]
	if !ok {
		return fmt.Errorf("unknown current state: %s", current)
	}
	for _, s := range allowed {
		if s == target {
			return nil
		}
	}
	return fmt.Errorf("transition from %q to %q is not allowed", current, target)
}
