package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vovakirdan/sheepfold/internal/flock"
)

// Load returns the owner's profile and sheep. A missing profile is created
// with the default name.
func (s *Store) Load(ctx context.Context, ownerID string) (flock.Profile, []flock.Sheep, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return flock.Profile{}, nil, fmt.Errorf("storage: %w: owner id is required", flock.ErrInvalidInput)
	}

	profile, err := s.ensureProfile(ctx, ownerID)
	if err != nil {
		return flock.Profile{}, nil, err
	}
	sheep, err := s.listSheep(ctx, ownerID)
	if err != nil {
		return flock.Profile{}, nil, err
	}
	return profile, sheep, nil
}

// UpdateProfile applies the non-nil fields of upd.
func (s *Store) UpdateProfile(ctx context.Context, ownerID string, upd flock.ProfileUpdate) error {
	if _, err := s.ensureProfile(ctx, ownerID); err != nil {
		return err
	}

	var name, lastLogin any
	if upd.Name != nil {
		name = strings.TrimSpace(*upd.Name)
	}
	if upd.LastLogin != nil {
		lastLogin = toMillis(*upd.LastLogin)
	}

	_, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE profiles
		 SET name = COALESCE(?, name),
		     last_login = COALESCE(?, last_login)
		 WHERE owner_id = ?`),
		name, lastLogin, ownerID,
	)
	if err != nil {
		return persistErr("update profile", err)
	}
	return nil
}

func (s *Store) ensureProfile(ctx context.Context, ownerID string) (flock.Profile, error) {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO profiles (owner_id, name, last_login, created_at)
		 VALUES (?, ?, 0, ?)
		 ON CONFLICT (owner_id) DO NOTHING`),
		ownerID, flock.DefaultProfileName, toMillis(s.now()),
	)
	if err != nil {
		return flock.Profile{}, persistErr("create profile", err)
	}

	var (
		p                    flock.Profile
		lastLogin, createdAt int64
	)
	err = s.db.QueryRowContext(ctx, s.rebind(
		`SELECT owner_id, name, last_login, created_at FROM profiles WHERE owner_id = ?`),
		ownerID,
	).Scan(&p.OwnerID, &p.Name, &lastLogin, &createdAt)
	if err == sql.ErrNoRows {
		return flock.Profile{}, fmt.Errorf("storage: profile %s: %w", ownerID, flock.ErrNotFound)
	}
	if err != nil {
		return flock.Profile{}, persistErr("query profile", err)
	}
	p.LastLogin = fromMillis(lastLogin)
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}
