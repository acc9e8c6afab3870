package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

const sheepColumns = `id, owner_id, name, stage, health, status, care_level,
	last_prayed_date, prayed_count, resurrection_progress,
	note, maturity, plan_time, plan_location, plan_content, plan_notified,
	created_at, updated_at`

// upsertSheep is last-write-wins on updated_at. The notified flag survives
// a write that carries the same plan time, so a stale in-memory copy can't
// re-arm a plan that was already sent.
const upsertSheep = `INSERT INTO sheep (` + sheepColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		owner_id = excluded.owner_id,
		name = excluded.name,
		stage = excluded.stage,
		health = excluded.health,
		status = excluded.status,
		care_level = excluded.care_level,
		last_prayed_date = excluded.last_prayed_date,
		prayed_count = excluded.prayed_count,
		resurrection_progress = excluded.resurrection_progress,
		note = excluded.note,
		maturity = excluded.maturity,
		plan_time = excluded.plan_time,
		plan_location = excluded.plan_location,
		plan_content = excluded.plan_content,
		plan_notified = CASE
			WHEN COALESCE(sheep.plan_time, -1) = COALESCE(excluded.plan_time, -1) AND sheep.plan_notified = 1 THEN 1
			ELSE excluded.plan_notified
		END,
		updated_at = excluded.updated_at
	WHERE excluded.updated_at >= sheep.updated_at`

// Upsert inserts or updates sheep by id in a single transaction.
func (s *Store) Upsert(ctx context.Context, sheep ...flock.Sheep) error {
	if len(sheep) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.rebind(upsertSheep))
	if err != nil {
		return persistErr("prepare upsert", err)
	}
	defer stmt.Close()

	for _, sh := range sheep {
		if strings.TrimSpace(sh.ID) == "" {
			return fmt.Errorf("storage: %w: sheep without id", flock.ErrInvalidInput)
		}
		if _, err := stmt.ExecContext(ctx, sheepArgs(sh)...); err != nil {
			return persistErr("save sheep "+sh.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return persistErr("commit sheep", err)
	}
	return nil
}

func sheepArgs(sh flock.Sheep) []any {
	var planTime sql.NullInt64
	if sh.Plan.Scheduled() {
		planTime = sql.NullInt64{Int64: sh.Plan.Time.UnixMilli(), Valid: true}
	}
	notified := 0
	if sh.Plan.Notified {
		notified = 1
	}
	return []any{
		sh.ID,
		sh.OwnerID,
		sh.Name,
		sh.Stage.String(),
		sh.Health,
		sh.Status.String(),
		sh.CareLevel,
		sh.LastPrayedDate.String(),
		sh.PrayedCount,
		sh.ResurrectionProgress,
		sh.Note,
		sh.Maturity,
		planTime,
		sh.Plan.Location,
		sh.Plan.Content,
		notified,
		toMillis(sh.CreatedAt),
		toMillis(sh.UpdatedAt),
	}
}

// Delete removes a sheep permanently.
func (s *Store) Delete(ctx context.Context, sheepID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM sheep WHERE id = ?`), sheepID)
	if err != nil {
		return persistErr("delete sheep", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage: sheep %s: %w", sheepID, flock.ErrNotFound)
	}
	return nil
}

// Sheep returns one sheep by id.
func (s *Store) Sheep(ctx context.Context, sheepID string) (flock.Sheep, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+sheepColumns+` FROM sheep WHERE id = ?`), sheepID)
	sh, err := scanSheep(row)
	if err == sql.ErrNoRows {
		return flock.Sheep{}, fmt.Errorf("storage: sheep %s: %w", sheepID, flock.ErrNotFound)
	}
	if err != nil {
		return flock.Sheep{}, persistErr("query sheep", err)
	}
	return sh, nil
}

func (s *Store) listSheep(ctx context.Context, ownerID string) ([]flock.Sheep, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT `+sheepColumns+`
		 FROM sheep
		 WHERE owner_id = ?
		 ORDER BY created_at ASC, id ASC`),
		ownerID,
	)
	if err != nil {
		return nil, persistErr("query sheep", err)
	}
	defer rows.Close()

	var out []flock.Sheep
	for rows.Next() {
		sh, err := scanSheep(rows)
		if err != nil {
			return nil, persistErr("scan sheep", err)
		}
		out = append(out, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate sheep", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// scanSheep reads one row. Unrecognized enum or date values fall back to
// their zero forms; the engine sanitizes records before use.
func scanSheep(row scanner) (flock.Sheep, error) {
	var (
		sh                      flock.Sheep
		stage, status, prayedOn string
		planTime                sql.NullInt64
		notified                int64
		createdAt, updatedAt    int64
	)
	err := row.Scan(
		&sh.ID,
		&sh.OwnerID,
		&sh.Name,
		&stage,
		&sh.Health,
		&status,
		&sh.CareLevel,
		&prayedOn,
		&sh.PrayedCount,
		&sh.ResurrectionProgress,
		&sh.Note,
		&sh.Maturity,
		&planTime,
		&sh.Plan.Location,
		&sh.Plan.Content,
		&notified,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return flock.Sheep{}, err
	}

	sh.Stage, _ = flock.ParseStage(stage)
	sh.Status, _ = flock.ParseStatus(status)
	sh.LastPrayedDate, _ = flock.ParseDay(prayedOn)
	if planTime.Valid {
		t := time.UnixMilli(planTime.Int64)
		sh.Plan.Time = &t
	}
	sh.Plan.Notified = notified != 0
	sh.CreatedAt = fromMillis(createdAt)
	sh.UpdatedAt = fromMillis(updatedAt)
	return sh, nil
}

// DuePlans returns unsent plans scheduled within [from, to], oldest first.
func (s *Store) DuePlans(ctx context.Context, from, to time.Time) ([]flock.DuePlan, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT id, owner_id, name, plan_time, plan_location, plan_content
		 FROM sheep
		 WHERE plan_time IS NOT NULL
		   AND plan_time >= ? AND plan_time <= ?
		   AND plan_notified = 0
		 ORDER BY plan_time ASC, id ASC`),
		from.UnixMilli(), to.UnixMilli(),
	)
	if err != nil {
		return nil, persistErr("query due plans", err)
	}
	defer rows.Close()

	var plans []flock.DuePlan
	for rows.Next() {
		var (
			p  flock.DuePlan
			at int64
		)
		if err := rows.Scan(&p.SheepID, &p.OwnerID, &p.SheepName, &at, &p.Plan.Location, &p.Plan.Content); err != nil {
			return nil, persistErr("scan due plan", err)
		}
		t := time.UnixMilli(at)
		p.Plan.Time = &t
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("iterate due plans", err)
	}
	return plans, nil
}

// MarkPlanNotified flags the sheep's current plan as sent.
func (s *Store) MarkPlanNotified(ctx context.Context, sheepID string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`UPDATE sheep SET plan_notified = 1 WHERE id = ?`), sheepID)
	if err != nil {
		return persistErr("mark plan notified", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("storage: sheep %s: %w", sheepID, flock.ErrNotFound)
	}
	return nil
}
