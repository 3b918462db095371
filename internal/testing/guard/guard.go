// Package guard forces the test-mode latch on before any package under
// test reads it. Import it for side effects from integration-style test
// packages so test binaries never try to reach real infrastructure.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("SURTIDOR_TEST_MODE") == "" {
			_ = os.Setenv("SURTIDOR_TEST_MODE", "1")
		}
	})
}
