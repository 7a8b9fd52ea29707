package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindbook_backend/config"
)

func TestFromCentralConfig(t *testing.T) {
	c := FromCentralConfig(config.DatabaseConfig{
		Host: "db", Port: 5433, User: "u", Password: "p", DBName: "mindbook", SSLMode: "require",
		Logging: config.DatabaseLoggingConfig{Enabled: false, SlowQueryThresholdMs: 50},
	})

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=mindbook sslmode=require", c.DSN())
	assert.Zero(t, c.SlowQueryThresholdMs, "threshold only applies when query logging is enabled")
	assert.Equal(t, DefaultConfig().ConnMaxLifetime(), c.ConnMaxLifetime())
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS a`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS b`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err = Migrate(context.Background(), sqlx.NewDb(db, "sqlmock"), []string{
		"CREATE TABLE IF NOT EXISTS a (id int)",
		"CREATE TABLE IF NOT EXISTS b (id int)",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_RollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE`).WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	err = Migrate(context.Background(), sqlx.NewDb(db, "sqlmock"), []string{"CREATE TABLE broken"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration statement 0")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTargets(t *testing.T) {
	cfg := &config.Config{
		Database:       config.DatabaseConfig{DBName: "mindbook"},
		CasbinDatabase: config.DatabaseConfig{DBName: "mindbook_policy"},
	}
	assert.Equal(t, []string{"mindbook", "mindbook_policy"}, Targets(cfg))

	cfg.CasbinDatabase.DBName = "mindbook"
	assert.Equal(t, []string{"mindbook"}, Targets(cfg))

	cfg.Server.Databases = []string{"a", "b"}
	assert.Equal(t, []string{"a", "b"}, Targets(cfg))
}
