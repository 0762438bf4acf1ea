package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/runhub-app/runhub/internal/domain/run"
	"github.com/runhub-app/runhub/internal/observability"
)

// MaxRunsPerPage caps a single history read.
const MaxRunsPerPage = 50

type RunsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRunsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RunsRepo {
	return &RunsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *RunsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *RunsRepo) Create(ctx context.Context, userID int64, req run.CreateRunRequest) (id int64, date time.Time, err error) {
	positions := req.Positions

	if positions == nil {
		positions = []run.Position{}
	}

	posJSON, err := json.Marshal(positions)

	if err != nil {
		return 0, time.Time{}, err
	}

	var z1, z2, z3, z4, z5 *int

	if req.HRZones != nil {
		z1, z2, z3, z4, z5 = &req.HRZones.Zone1, &req.HRZones.Zone2, &req.HRZones.Zone3, &req.HRZones.Zone4, &req.HRZones.Zone5
	}

	err = r.observe("runs.create", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO runs (
				user_id, territory, distance, time, avg_speed, avg_pace,
				max_speed, calories, avg_heart_rate, heart_rate_zone1,
				heart_rate_zone2, heart_rate_zone3, heart_rate_zone4,
				heart_rate_zone5, positions
			)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
			RETURNING id, date`,
			userID,
			req.Territory,
			req.Distance,
			req.Time,
			req.AvgSpeed,
			req.AvgPace,
			req.MaxSpeed,
			req.Calories,
			req.AvgHeartRate,
			z1, z2, z3, z4, z5,
			posJSON,
		).Scan(&id, &date)
	})

	if err != nil {
		return 0, time.Time{}, err
	}

	return id, date, nil
}

// ListByUser returns the caller's runs, newest first.
func (r *RunsRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]run.Run, error) {
	if limit <= 0 || limit > MaxRunsPerPage {
		limit = MaxRunsPerPage
	}

	output := make([]run.Run, 0, limit)

	err := r.observe("runs.list_by_user", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT
				id, user_id, date, territory, distance, time, avg_speed, avg_pace,
				max_speed, calories, avg_heart_rate, heart_rate_zone1,
				heart_rate_zone2, heart_rate_zone3, heart_rate_zone4,
				heart_rate_zone5, positions
			FROM runs
			WHERE user_id = $1
			ORDER BY date DESC
			LIMIT $2`,
			userID, limit,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var rec run.Run
			var avgSpeed, avgPace, maxSpeed *float64
			var z1, z2, z3, z4, z5 *int
			var posJSON []byte

			err = rows.Scan(
				&rec.ID, &rec.UserID, &rec.Date, &rec.Territory, &rec.Distance,
				&rec.Time, &avgSpeed, &avgPace, &maxSpeed, &rec.Calories,
				&rec.AvgHeartRate, &z1, &z2, &z3, &z4, &z5, &posJSON,
			)

			if err != nil {
				return err
			}

			rec.AvgSpeed = deref(avgSpeed)
			rec.AvgPace = deref(avgPace)
			rec.MaxSpeed = deref(maxSpeed)

			// zones are written all-or-nothing, zone1 stands in for the set
			if z1 != nil {
				rec.HRZones = &run.HeartRateZones{
					Zone1: *z1,
					Zone2: intOrZero(z2),
					Zone3: intOrZero(z3),
					Zone4: intOrZero(z4),
					Zone5: intOrZero(z5),
				}
			}

			rec.Positions = []run.Position{}

			if len(posJSON) > 0 {
				err = json.Unmarshal(posJSON, &rec.Positions)

				if err != nil {
					return err
				}
			}

			output = append(output, rec)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *RunsRepo) Leaderboard(ctx context.Context, limit int) ([]run.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	entries := make([]run.LeaderboardEntry, 0, limit)

	err := r.observe("runs.leaderboard", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT u.id, u.name, COALESCE(SUM(r.distance), 0) AS total, COUNT(r.id) AS cnt
			FROM users u
			JOIN runs r ON r.user_id = u.id
			GROUP BY u.id, u.name
			ORDER BY total DESC, u.id ASC
			LIMIT $1`,
			limit,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var e run.LeaderboardEntry

			err = rows.Scan(&e.UserID, &e.Name, &e.TotalDistance, &e.RunCount)

			if err != nil {
				return err
			}

			entries = append(entries, e)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return entries, nil
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func intOrZero(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
