package params

import (
	"testing"
)

// SetupTestConfigCleanup preserves the active configuration so tests can
// override parameters freely without affecting each other.
func SetupTestConfigCleanup(t testing.TB) {
	prevConfig := BoardConfig().Copy()
	t.Cleanup(func() {
		OverrideBoardConfig(prevConfig)
	})
}
