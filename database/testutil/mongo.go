package testutil

import (
	"context"
	"testing"
	"time"

	"pickem-app/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

// TestDatabase is a migrated MongoDB running in a throwaway container
type TestDatabase struct {
	Container *mongodb.MongoDBContainer
	DB        *database.MongoDB
	URI       string
}

// SetupTestDatabase starts a MongoDB container and applies all migrations.
// Tests calling it are skipped under -short.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	labels := map[string]string{
		"test":      "pickem-repository",
		"test-name": t.Name(),
		"timestamp": time.Now().Format("20060102-150405"),
	}

	container, err := mongodb.Run(ctx, "mongo:7", testcontainers.WithLabels(labels))
	require.NoError(t, err)

	testDB := &TestDatabase{Container: container}
	t.Cleanup(func() { testDB.cleanup(t) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := database.NewMongoConnection(database.Config{
		URI:      uri,
		Database: "pickem_test",
		Timeout:  30 * time.Second,
	})
	require.NoError(t, err)
	testDB.DB = db
	testDB.URI = uri

	require.NoError(t, database.MigrateUp(db))
	return testDB
}

func (td *TestDatabase) cleanup(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Logf("Panic during container cleanup (recovered): %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if td.DB != nil {
		if err := td.DB.Close(); err != nil {
			t.Logf("Warning: failed to close database: %v", err)
		}
	}
	if td.Container != nil {
		if err := td.Container.Terminate(ctx); err != nil {
			t.Logf("Warning: failed to terminate test container: %v", err)
		}
	}
}
