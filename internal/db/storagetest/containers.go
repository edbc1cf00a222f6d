package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/docker/go-connections/nat"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage    = "postgres:16-alpine"
	postgresPassword = "secret"
	mysqlImage       = "mysql:8.0"
	mysqlDBName      = "usuaris"
)

var (
	postgresPortNat = nat.Port("5432/tcp")
	mysqlPortNat    = nat.Port("3306/tcp")
)

func skipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("container backed test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

func startContainer(t *testing.T, request testcontainers.ContainerRequest) testcontainers.Container {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: request,
		Started:          true,
	})
	if err != nil {
		t.Skipf("unable to start %s: %v", request.Image, err)
	}

	t.Cleanup(func() {
		if container.IsRunning() {
			require.NoError(t, container.Terminate(ctx))
		}
	})

	return container
}

func hostPort(t *testing.T, container testcontainers.Container, port nat.Port) (string, nat.Port) {
	t.Helper()
	ctx := context.Background()

	host, err := container.Host(ctx)
	require.NoError(t, err)

	mapped, err := container.MappedPort(ctx, port)
	require.NoError(t, err)

	return host, mapped
}

// StartPostgres boots a disposable PostgreSQL server and returns its DSN.
// The test is skipped when no container runtime is reachable.
func StartPostgres(t *testing.T) string {
	t.Helper()
	skipWithoutDocker(t)

	container := startContainer(t, testcontainers.ContainerRequest{
		Image: postgresImage,
		Env: map[string]string{
			"POSTGRES_PASSWORD": postgresPassword,
		},
		ExposedPorts: []string{string(postgresPortNat)},
		Tmpfs:        map[string]string{"/var/lib/postgresql/data": "rw"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	})

	host, port := hostPort(t, container, postgresPortNat)

	return fmt.Sprintf(
		"postgres://postgres:%s@%s:%s/postgres?sslmode=disable",
		postgresPassword,
		host,
		port.Port(),
	)
}

// StartMySQL boots a disposable MySQL server and returns its DSN.
// The test is skipped when no container runtime is reachable.
func StartMySQL(t *testing.T) string {
	t.Helper()
	skipWithoutDocker(t)

	container := startContainer(t, testcontainers.ContainerRequest{
		Image: mysqlImage,
		Env: map[string]string{
			"MYSQL_DATABASE":             mysqlDBName,
			"MYSQL_ALLOW_EMPTY_PASSWORD": "yes",
		},
		ExposedPorts: []string{string(mysqlPortNat)},
		Tmpfs:        map[string]string{"/var/lib/mysql": "rw"},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(2 * time.Minute),
	})

	host, port := hostPort(t, container, mysqlPortNat)

	cfg := mysql.Config{
		DBName:               mysqlDBName,
		User:                 "root",
		Addr:                 fmt.Sprintf("%s:%d", host, port.Int()),
		Net:                  "tcp",
		ParseTime:            true,
		AllowNativePasswords: true,
	}

	return cfg.FormatDSN()
}

// Retry calls open until it succeeds or the retry budget is spent.
func Retry[T any](open func() (T, error)) (T, error) {
	var result T
	err := backoff.Retry(func() error {
		var err error
		result, err = open()
		return err
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))

	return result, err
}
