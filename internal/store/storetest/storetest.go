// Package storetest opens isolated in-memory databases for tests.
package storetest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/investor-finder/internal/store"
	"github.com/capitalize-ai/investor-finder/pkg/logger"
)

// New returns a migrated store over a private in-memory SQLite database that
// is closed when the test ends.
func New(t testing.TB) *store.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := store.Open(dsn, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	t.Cleanup(func() { _ = store.Close(db) })
	return store.New(db)
}
