package thread

import "github.com/Laisky/errors/v2"

// ErrSubmitInFlight is returned by Submit while an earlier submission is still running
var ErrSubmitInFlight = errors.New("a comment submission is already in flight")
