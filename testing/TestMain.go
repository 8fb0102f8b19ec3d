package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("PALAKA_TEST_MODE", "1")
		if os.Getenv("FISCAL_YEAR_START_MONTH") == "" {
			_ = os.Setenv("FISCAL_YEAR_START_MONTH", "4")
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
