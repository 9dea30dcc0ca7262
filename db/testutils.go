package db

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	testDB    *sqlx.DB
	getDBOnce sync.Once
)

// GetDB opens the database named by POSTGRES_URL and initializes the schema.
// When the variable is unset a throwaway postgres container is started
// instead, so the tests run without any local setup.
func GetDB(t *testing.T) *sqlx.DB {
	t.Helper()

	getDBOnce.Do(func() {
		url := os.Getenv("POSTGRES_URL")
		if url == "" {
			_, url = StartPostgresContainer()
		}

		var err error
		testDB, err = sqlx.Open("postgres", url)
		require.NoError(t, err)

		require.NoError(t, InitializeDatabaseSchema(testDB))
	})

	return testDB
}

func StartPostgresContainer() (testcontainers.Container, string) {
	ctx := context.Background()

	postgresContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("docker.io/postgres:15.2-alpine"),
		postgres.WithDatabase("cinepay"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		panic(err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable", "application_name=test")
	if err != nil {
		panic(err)
	}

	return postgresContainer, connStr
}
