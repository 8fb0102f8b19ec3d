package app

import (
	"os"
	"sync"
)

const testModeEnv = "PALAKA_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether the process should skip runtime side effects such
// as auto migration and cache invalidation listeners.
func InTestMode() bool {
	return testMode()
}
