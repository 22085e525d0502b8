// Package assert reports fatal contract violations.
//
// The model and mutation layers are pure computations; the only failures
// they can produce are programmer errors upstream (mismatched keys,
// malformed transform results). Those must never be swallowed into a wrong
// document, so they are logged and escalated as panics for the embedding
// engine to treat as unrecoverable.
package assert

import (
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// SetLogger redirects contract-violation reports, e.g. into the embedding
// engine's log sink. Safe to call concurrently with assertions.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

// Hard panics with the formatted message when the condition does not hold.
func Hard(condition bool, format string, args ...any) {
	if !condition {
		Failf(format, args...)
	}
}

// Failf reports an unconditional contract violation and panics.
func Failf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Panic().Str("violation", msg).Msg("internal contract violation")
}
