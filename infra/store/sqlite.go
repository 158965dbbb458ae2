// Package store provides the SQLite-backed persistence for resources and
// scheduled services. The resource claim is a single conditional UPDATE so
// two concurrent claims on the same stall cannot both succeed.
package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/fleetops-io/servicesched/core/booking"
	"github.com/fleetops-io/servicesched/core/model"
)

// SQLiteStore owns the database handle and exposes the resource and
// service store views over it.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS resources (
        id TEXT PRIMARY KEY,
        number INTEGER,
        type TEXT,
        depot TEXT,
        status TEXT,
        vehicle_id TEXT,
        session_start INTEGER,
        session_end INTEGER
    );
    CREATE TABLE IF NOT EXISTS scheduled_services (
        id TEXT PRIMARY KEY,
        vehicle_id TEXT,
        resource_id TEXT,
        service TEXT,
        status TEXT,
        predicted_date INTEGER,
        scheduled_start INTEGER,
        scheduled_end INTEGER,
        priority_score REAL,
        reason TEXT,
        responded_at INTEGER
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Resources returns the booking.ResourceStore view.
func (s *SQLiteStore) Resources() booking.ResourceStore { return &sqliteResources{db: s.db} }

// Services returns the booking.ServiceStore view.
func (s *SQLiteStore) Services() booking.ServiceStore { return &sqliteServices{db: s.db} }

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

type sqliteResources struct {
	db *sql.DB
}

func (s *sqliteResources) Get(ctx context.Context, id string) (model.Resource, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, number, type, depot, status, vehicle_id, session_start, session_end
        FROM resources WHERE id = ?`, id)
	return scanResource(row)
}

func (s *sqliteResources) List(ctx context.Context, typ model.ResourceType) ([]model.Resource, error) {
	query := `SELECT id, number, type, depot, status, vehicle_id, session_start, session_end
        FROM resources`
	args := []any{}
	if typ != "" {
		query += ` WHERE type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *sqliteResources) Put(ctx context.Context, r model.Resource) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO resources
        (id, number, type, depot, status, vehicle_id, session_start, session_end)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            number = excluded.number,
            type = excluded.type,
            depot = excluded.depot,
            status = excluded.status,
            vehicle_id = excluded.vehicle_id,
            session_start = excluded.session_start,
            session_end = excluded.session_end`,
		r.ID, r.Number, string(r.Type), r.Depot, string(r.Status), r.VehicleID, unix(r.SessionStart), unix(r.SessionEnd))
	return err
}

// Claim reserves the resource in one conditional update. Zero rows affected
// means the resource was not available at commit time.
func (s *sqliteResources) Claim(ctx context.Context, id, vehicleID string, start, end time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE resources
        SET status = ?, vehicle_id = ?, session_start = ?, session_end = ?
        WHERE id = ? AND status = ?`,
		string(model.ResourceReserved), vehicleID, start.Unix(), end.Unix(), id, string(model.ResourceAvailable))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a missing row from a lost race.
		if _, gerr := s.Get(ctx, id); errors.Is(gerr, booking.ErrNotFound) {
			return booking.ErrNotFound
		}
		return booking.ErrStaleResource
	}
	return nil
}

func (s *sqliteResources) Release(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE resources
        SET status = ?, vehicle_id = '', session_start = 0, session_end = 0
        WHERE id = ?`, string(model.ResourceAvailable), id)
	if err != nil {
		return err
	}
	return affected(res)
}

type sqliteServices struct {
	db *sql.DB
}

func (s *sqliteServices) Insert(ctx context.Context, sv model.ScheduledService) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO scheduled_services
        (id, vehicle_id, resource_id, service, status, predicted_date, scheduled_start, scheduled_end, priority_score, reason, responded_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sv.ID, sv.VehicleID, sv.ResourceID, string(sv.Service), string(sv.Status),
		unix(sv.PredictedDate), unix(sv.ScheduledStart), unix(sv.ScheduledEnd),
		sv.PriorityScore, sv.Reason, unix(sv.RespondedAt))
	return err
}

func (s *sqliteServices) Get(ctx context.Context, id string) (model.ScheduledService, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, vehicle_id, resource_id, service, status, predicted_date, scheduled_start, scheduled_end, priority_score, reason, responded_at
        FROM scheduled_services WHERE id = ?`, id)
	return scanService(row)
}

func (s *sqliteServices) UpdateStatus(ctx context.Context, id string, status model.ServiceStatus, respondedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE scheduled_services SET status = ?, responded_at = ? WHERE id = ?`,
		string(status), respondedAt.Unix(), id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (s *sqliteServices) UpdateSlot(ctx context.Context, id, resourceID string, start, end time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE scheduled_services SET resource_id = ?, scheduled_start = ?, scheduled_end = ? WHERE id = ?`,
		resourceID, start.Unix(), end.Unix(), id)
	if err != nil {
		return err
	}
	return affected(res)
}

func (s *sqliteServices) ListByVehicle(ctx context.Context, vehicleID string) ([]model.ScheduledService, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, vehicle_id, resource_id, service, status, predicted_date, scheduled_start, scheduled_end, priority_score, reason, responded_at
        FROM scheduled_services WHERE vehicle_id = ? ORDER BY scheduled_start`, vehicleID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.ScheduledService
	for rows.Next() {
		sv, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResource(sc scanner) (model.Resource, error) {
	var r model.Resource
	var typ, status string
	var start, end int64
	err := sc.Scan(&r.ID, &r.Number, &typ, &r.Depot, &status, &r.VehicleID, &start, &end)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Resource{}, booking.ErrNotFound
	}
	if err != nil {
		return model.Resource{}, err
	}
	r.Type = model.ResourceType(typ)
	r.Status = model.ResourceStatus(status)
	r.SessionStart = fromUnix(start)
	r.SessionEnd = fromUnix(end)
	return r, nil
}

func scanService(sc scanner) (model.ScheduledService, error) {
	var sv model.ScheduledService
	var service, status string
	var predicted, start, end, responded int64
	err := sc.Scan(&sv.ID, &sv.VehicleID, &sv.ResourceID, &service, &status, &predicted, &start, &end, &sv.PriorityScore, &sv.Reason, &responded)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScheduledService{}, booking.ErrNotFound
	}
	if err != nil {
		return model.ScheduledService{}, err
	}
	sv.Service = model.ServiceType(service)
	sv.Status = model.ServiceStatus(status)
	sv.PredictedDate = fromUnix(predicted)
	sv.ScheduledStart = fromUnix(start)
	sv.ScheduledEnd = fromUnix(end)
	sv.RespondedAt = fromUnix(responded)
	return sv, nil
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func fromUnix(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
