package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/routesync/internal/database"
	"github.com/jengzang/routesync/internal/models"
)

// ErrRouteNotFound is returned when no workout has the given id
var ErrRouteNotFound = errors.New("route not found")

// RouteRepository reads and writes workouts and their GPS samples
type RouteRepository struct {
	db *sql.DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// FetchRoutes returns the workouts starting inside [start, end] with their
// samples in recorded order. Workouts without a start time are included;
// callers decide whether to show them.
func (r *RouteRepository) FetchRoutes(ctx context.Context, start, end time.Time) ([]models.RouteRecord, error) {
	const where = `start_time IS NULL OR (start_time >= ? AND start_time <= ?)`
	args := []any{start.UnixMilli(), end.UnixMilli()}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, activity_type, start_time FROM workouts WHERE `+where+` ORDER BY start_time DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workouts: %w", err)
	}

	var routes []models.RouteRecord
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id        string
			name      sql.NullString
			activity  string
			startTime sql.NullInt64
		)
		if err := rows.Scan(&id, &name, &activity, &startTime); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan workout: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("invalid workout id %q: %w", id, err)
		}

		route := models.RouteRecord{
			ID:           parsed,
			Name:         name.String,
			ActivityType: models.ParseActivityType(activity),
		}
		if startTime.Valid {
			route.StartTimestamp = time.UnixMilli(startTime.Int64).UTC()
		}
		index[parsed] = len(routes)
		routes = append(routes, route)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate workouts: %w", err)
	}
	if len(routes) == 0 {
		return routes, nil
	}

	samples, err := r.db.QueryContext(ctx,
		`SELECT workout_id, latitude, longitude FROM route_samples
		WHERE workout_id IN (SELECT id FROM workouts WHERE `+where+`)
		ORDER BY workout_id, seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query route samples: %w", err)
	}
	defer samples.Close()

	for samples.Next() {
		var (
			id string
			s  models.Sample
		)
		if err := samples.Scan(&id, &s.Lat, &s.Lon); err != nil {
			return nil, fmt.Errorf("failed to scan route sample: %w", err)
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid workout id %q: %w", id, err)
		}
		if i, ok := index[parsed]; ok {
			routes[i].Samples = append(routes[i].Samples, s)
		}
	}
	if err := samples.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate route samples: %w", err)
	}

	return routes, nil
}

// RenameRoute sets the user-visible name of a workout. An empty name
// clears it.
func (r *RouteRepository) RenameRoute(ctx context.Context, id uuid.UUID, name string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE workouts SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nullString(name), id.String())
	if err != nil {
		return fmt.Errorf("failed to rename workout: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrRouteNotFound
	}
	return nil
}

// SaveRoute inserts or replaces a workout and its samples. A re-import of
// the same workout keeps the name the user gave it.
func (r *RouteRepository) SaveRoute(ctx context.Context, route models.RouteRecord, source string) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		var startTime sql.NullInt64
		if route.HasTimestamp() {
			startTime = sql.NullInt64{Int64: route.StartTimestamp.UnixMilli(), Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO workouts (id, name, activity_type, start_time, source)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = COALESCE(workouts.name, excluded.name),
				activity_type = excluded.activity_type,
				start_time = excluded.start_time,
				source = excluded.source,
				updated_at = CURRENT_TIMESTAMP`,
			route.ID.String(), nullString(route.Name), string(route.ActivityType), startTime, nullString(source))
		if err != nil {
			return fmt.Errorf("failed to upsert workout: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM route_samples WHERE workout_id = ?`, route.ID.String()); err != nil {
			return fmt.Errorf("failed to clear route samples: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO route_samples (workout_id, seq, latitude, longitude) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, s := range route.Samples {
			if _, err := stmt.ExecContext(ctx, route.ID.String(), i, s.Lat, s.Lon); err != nil {
				return fmt.Errorf("failed to insert sample %d: %w", i, err)
			}
		}
		return nil
	})
}

// Count returns the number of stored workouts
func (r *RouteRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM workouts`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count workouts: %w", err)
	}
	return total, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
