// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package kawase

import "fmt"

// State is the position of a BlurFilter in its per-frame sequence.
type State uint8

const (
	// StateIdle waits for SetAsDrawTarget.
	StateIdle State = iota
	// StateTargetBound has the composition target bound for scene capture.
	StateTargetBound
	// StatePrepared holds a blurred result ready for Render.
	StatePrepared
)

var stateNames = [...]string{
	StateIdle:        "Idle",
	StateTargetBound: "TargetBound",
	StatePrepared:    "Prepared",
}

// String returns the state name.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}
