package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("COMAL_TEST_MODE") == "" {
			_ = os.Setenv("COMAL_TEST_MODE", "1")
		}
	})
}
