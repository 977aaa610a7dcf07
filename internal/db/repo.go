package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"biodash/internal/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *sql.DB { return r.db }

const readingColumns = `id, ts, ph, ph_voltage, temp1, temp2,
	bme_temperature, bme_humidity, bme_pressure, bme_gas_resistance,
	methane_ppm, methane_percent, methane_temperature,
	methane_raw_json, methane_faults_json`

// InsertReading stores one reading, assigning a UUID when the caller did
// not set one.
func (r *Repository) InsertReading(ctx context.Context, reading *models.SensorReading) error {
	if reading.ID == "" {
		reading.ID = uuid.NewString()
	}
	rawJSON, err := json.Marshal(reading.MethaneRaw)
	if err != nil {
		return fmt.Errorf("marshal methane raw: %w", err)
	}
	faultsJSON, err := json.Marshal(reading.MethaneFaults)
	if err != nil {
		return fmt.Errorf("marshal methane faults: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO readings (`+readingColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		reading.ID, reading.Timestamp.UTC(),
		reading.Ph, reading.PhVoltage, reading.Temp1, reading.Temp2,
		reading.BmeTemperature, reading.BmeHumidity, reading.BmePressure, reading.BmeGasResistance,
		reading.MethanePPM, reading.MethanePercent, reading.MethaneTemperature,
		string(rawJSON), string(faultsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// History returns readings ordered by timestamp descending. Callers
// feeding the chart pipeline reverse the result to chronological order.
// A limit of 0 returns the full history.
func (r *Repository) History(ctx context.Context, limit int) ([]models.SensorReading, error) {
	q := `SELECT ` + readingColumns + ` FROM readings ORDER BY ts DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SensorReading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reading)
	}
	return out, rows.Err()
}

// Latest returns the single newest reading, or nil when the table is
// empty.
func (r *Repository) Latest(ctx context.Context) (*models.SensorReading, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+readingColumns+` FROM readings ORDER BY ts DESC LIMIT 1`)
	reading, err := scanReading(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reading, nil
}

// DeleteOlderThan drops readings before the cutoff and reports how many
// were removed.
func (r *Repository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM readings WHERE ts < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (models.SensorReading, error) {
	var reading models.SensorReading
	var (
		ph, phV, t1, t2         sql.NullFloat64
		bmeT, bmeH, bmeP, bmeG  sql.NullFloat64
		methPPM, methPct, methT sql.NullFloat64
		rawJSON, faultsJSON     sql.NullString
	)
	err := row.Scan(&reading.ID, &reading.Timestamp,
		&ph, &phV, &t1, &t2,
		&bmeT, &bmeH, &bmeP, &bmeG,
		&methPPM, &methPct, &methT,
		&rawJSON, &faultsJSON)
	if err != nil {
		return models.SensorReading{}, err
	}
	reading.Timestamp = reading.Timestamp.UTC()
	reading.Ph = nullable(ph)
	reading.PhVoltage = nullable(phV)
	reading.Temp1 = nullable(t1)
	reading.Temp2 = nullable(t2)
	reading.BmeTemperature = nullable(bmeT)
	reading.BmeHumidity = nullable(bmeH)
	reading.BmePressure = nullable(bmeP)
	reading.BmeGasResistance = nullable(bmeG)
	reading.MethanePPM = nullable(methPPM)
	reading.MethanePercent = nullable(methPct)
	reading.MethaneTemperature = nullable(methT)
	if rawJSON.Valid && rawJSON.String != "" {
		_ = json.Unmarshal([]byte(rawJSON.String), &reading.MethaneRaw)
	}
	if faultsJSON.Valid && faultsJSON.String != "" {
		_ = json.Unmarshal([]byte(faultsJSON.String), &reading.MethaneFaults)
	}
	return reading, nil
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
