package state

import (
	"time"

	"go.uber.org/zap"
)

// newLocalEnv creates LocalEnv with logging disabled until configuration is
// loaded.
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		Log:   zap.NewNop(),
	}
}
