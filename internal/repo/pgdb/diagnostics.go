package pgdb

import (
	"context"
	"database/sql"
	"waseet-api/pkg/postgres"
)

type DiagnosticsRepo struct {
	*postgres.Postgres
}

func NewDiagnosticsRepo(pgdb *postgres.Postgres) *DiagnosticsRepo {
	return &DiagnosticsRepo{pgdb}
}

func (r *DiagnosticsRepo) Ping(ctx context.Context) error {
	return r.Database.PingContext(ctx)
}

func (r *DiagnosticsRepo) Stats() sql.DBStats {
	return r.Database.Stats()
}
