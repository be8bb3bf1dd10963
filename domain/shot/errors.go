package shot

import "errors"

var (
	ErrNotStarter         = errors.New("caller is not the elected starting player")
	ErrExchangeInProgress = errors.New("an exchange is already in progress")
	ErrInvalidTarget      = errors.New("invalid target")
	ErrInvalidMove        = errors.New("invalid move")
	ErrInvalidRules       = errors.New("invalid rules")
)
