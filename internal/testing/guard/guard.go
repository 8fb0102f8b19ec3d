package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PALAKA_TEST_MODE") == "" {
			_ = os.Setenv("PALAKA_TEST_MODE", "1")
		}
	})
}
