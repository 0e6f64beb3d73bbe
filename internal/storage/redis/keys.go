package redis

import (
	"fmt"

	"github.com/mcoot/turntimer/internal/model"
)

// Key prefix for all turn timer data
const keyPrefix = "turntimer"

// sessionKey returns the Redis key for a session snapshot
func sessionKey(code model.SessionCode) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, code)
}
