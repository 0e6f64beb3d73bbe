package testutil

import "time"

// Epoch is the instant fake clocks start from in tests
var Epoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
