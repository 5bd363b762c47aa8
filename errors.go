package lodestar

import "github.com/rotisserie/eris"

var (
	// ErrAlreadyRegistered is returned by Integrate when a partial manager
	// carries a resource type the target world already has. Unlike direct
	// resource registration, which silently keeps the first value, a merge
	// conflict on a singleton is a real bug and fails hard.
	ErrAlreadyRegistered = eris.New("resource already registered")

	// ErrAlreadyRan is returned by Run when the manager left the
	// registration stage once before.
	ErrAlreadyRan = eris.New("manager already ran")
)
