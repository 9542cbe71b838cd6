package storage

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ledgerbot/internal/core"
)

const (
	inviteCodeLength   = 6
	inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeAttempts = 5
)

func newInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteCodeAlphabet[int(b)%len(inviteCodeAlphabet)]
	}
	return string(buf), nil
}

// CreateFamily creates a group and enrolls the creator in one transaction.
// Invite-code generation is retried a bounded number of times on a
// uniqueness collision; past the cap the whole request fails.
func (r *SQLiteRepository) CreateFamily(ctx context.Context, name, creatorID string) (*core.FamilyGroup, error) {
	now := time.Now()
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := newInviteCode()
		if err != nil {
			return nil, err
		}

		group, err := r.insertFamily(ctx, name, code, creatorID, now)
		if err == nil {
			slog.InfoContext(ctx, "Family group created",
				"group_id", group.ID,
				"creator_id", creatorID,
				"attempts", attempt+1)
			return group, nil
		}
		if !isUniqueViolation(err) {
			return nil, err
		}
		slog.WarnContext(ctx, "Invite code collision, retrying",
			"attempt", attempt+1)
	}
	return nil, ErrInviteCodesExhausted
}

func (r *SQLiteRepository) insertFamily(ctx context.Context, name, code, creatorID string, now time.Time) (*core.FamilyGroup, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create family: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO family_groups (name, invite_code, creator_id, created_at)
		VALUES (?, ?, ?, ?)
	`, name, code, creatorID, formatDateTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert family group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("family group id: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO family_members (group_id, user_id, role, joined_at)
		VALUES (?, ?, 'creator', ?)
	`, id, creatorID, formatDateTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create family: %w", err)
	}
	return &core.FamilyGroup{
		ID:         id,
		Name:       name,
		InviteCode: code,
		CreatorID:  creatorID,
		CreatedAt:  now,
	}, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// FamilyByInviteCode looks a group up by its code, case-insensitively.
// Returns nil when no group matches.
func (r *SQLiteRepository) FamilyByInviteCode(ctx context.Context, code string) (*core.FamilyGroup, error) {
	return r.queryFamily(ctx,
		`SELECT id, name, invite_code, creator_id, created_at
		 FROM family_groups WHERE invite_code = ?`,
		strings.ToUpper(strings.TrimSpace(code)))
}

// UserFamily returns the single group the user belongs to, or nil.
// Membership in at most one group is enforced here by lookup, not by schema.
func (r *SQLiteRepository) UserFamily(ctx context.Context, userID string) (*core.FamilyGroup, error) {
	return r.queryFamily(ctx, `
		SELECT g.id, g.name, g.invite_code, g.creator_id, g.created_at
		FROM family_groups g
		JOIN family_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		LIMIT 1
	`, userID)
}

func (r *SQLiteRepository) queryFamily(ctx context.Context, query string, arg any) (*core.FamilyGroup, error) {
	var (
		g         core.FamilyGroup
		createdAt string
	)
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatorID, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query family group: %w", err)
	}
	g.CreatedAt = parseDateTime(createdAt)
	return &g, nil
}

// AddMember enrolls a user in a group. Re-joining is a no-op, which makes
// the join command idempotent.
func (r *SQLiteRepository) AddMember(ctx context.Context, groupID int64, userID string, role core.MemberRole) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO family_members (group_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(group_id, user_id) DO NOTHING
	`, groupID, userID, string(role), formatDateTime(time.Now()))
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// RemoveMember drops a membership, reporting whether a row matched.
func (r *SQLiteRepository) RemoveMember(ctx context.Context, groupID int64, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM family_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID)
	if err != nil {
		return false, fmt.Errorf("remove member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove member rows: %w", err)
	}
	return n > 0, nil
}

// MemberIDs returns the ids of everyone in the group.
func (r *SQLiteRepository) MemberIDs(ctx context.Context, groupID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM family_members WHERE group_id = ? ORDER BY joined_at, user_id`,
		groupID)
	if err != nil {
		return nil, fmt.Errorf("member ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member ids: %w", err)
	}
	return ids, nil
}

// Members returns member details, creator first, then by join time.
func (r *SQLiteRepository) Members(ctx context.Context, groupID int64) ([]core.FamilyMember, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.group_id, m.user_id, COALESCE(u.nickname, ''), m.role, m.joined_at
		FROM family_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = ?
		ORDER BY CASE m.role WHEN 'creator' THEN 0 ELSE 1 END, m.joined_at, m.user_id
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}
	defer rows.Close()

	var out []core.FamilyMember
	for rows.Next() {
		var (
			m        core.FamilyMember
			role     string
			joinedAt string
		)
		if err := rows.Scan(&m.GroupID, &m.UserID, &m.Nickname, &role, &joinedAt); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Role = core.MemberRole(role)
		m.JoinedAt = parseDateTime(joinedAt)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return out, nil
}
