package store

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/nci/csvgrid/processor"
)

// DefaultTable receives drilled values when no table is configured.
const DefaultTable = "drill_series"

// PostgresSink upserts drilled values, one row per raster and point.
// Missing readings are stored as NULL.
type PostgresSink struct {
	Table string
	db    *sql.DB
}

// NewPostgresSink connects using a lib/pq connection string or URL and
// creates the table when it does not exist.
func NewPostgresSink(dbinfo string, table string) (*PostgresSink, error) {
	if len(table) == 0 {
		table = DefaultTable
	}

	db, err := sql.Open("postgres", dbinfo)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %v", err)
	}

	s := &PostgresSink{Table: table, db: db}
	if _, err = db.Exec(s.createTableSQL()); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table %s: %v", table, describe(err))
	}
	return s, nil
}

func (s *PostgresSink) createTableSQL() string {
	return fmt.Sprintf(`create table if not exists %s (
		raster text not null,
		ts timestamptz not null,
		longitude double precision not null,
		latitude double precision not null,
		value double precision,
		primary key (raster, longitude, latitude)
	)`, pq.QuoteIdentifier(s.Table))
}

func (s *PostgresSink) upsertSQL() string {
	return fmt.Sprintf(`insert into %s (raster, ts, longitude, latitude, value)
		values ($1, $2, $3, $4, $5)
		on conflict (raster, longitude, latitude)
		do update set ts = excluded.ts, value = excluded.value`, pq.QuoteIdentifier(s.Table))
}

// WriteSeries stores the whole series in one transaction.
func (s *PostgresSink) WriteSeries(series *processor.DrillSeries) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(s.upsertSQL())
	if err != nil {
		tx.Rollback()
		return describe(err)
	}
	defer stmt.Close()

	for _, row := range series.Rows {
		for i, pt := range series.Points {
			r := row.Readings[i]
			value := sql.NullFloat64{Float64: r.Value, Valid: !r.Missing}
			if _, err = stmt.Exec(row.Raster, row.Time, pt.Lon, pt.Lat, value); err != nil {
				tx.Rollback()
				return fmt.Errorf("storing %s: %v", row.Raster, describe(err))
			}
		}
	}
	return tx.Commit()
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}

// describe adds the SQLSTATE to server side errors.
func describe(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		return fmt.Errorf("%s (%s)", pqErr.Message, pqErr.Code)
	}
	return err
}
