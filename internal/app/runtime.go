package app

import (
	"os"
	"strconv"
)

// TestModeEnv is set by test binaries so entrypoints skip network side effects.
const TestModeEnv = "SUBMISSION_TEST_MODE"

// InTestMode reports whether TestModeEnv holds a true value.
func InTestMode() bool {
	on, _ := strconv.ParseBool(os.Getenv(TestModeEnv))
	return on
}
