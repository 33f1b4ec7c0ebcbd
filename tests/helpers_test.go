// Package tests contains test cases for models, repository, and flow packages to avoid circular imports
package tests

import (
	"testing"

	testingutil "github.com/nekomata/nekomata/testing"
)

// withTestDB provisions a disposable database for the test and skips when no
// PostgreSQL server is reachable, so the suite stays runnable without one.
func withTestDB(t *testing.T, fn func(testDB *testingutil.TestDB)) {
	t.Helper()

	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	t.Cleanup(func() {
		_ = testDB.TeardownTestDB()
	})

	fn(testDB)
}
