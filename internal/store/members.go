package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/knjiznica/internal/model"
)

// CreateMember registers a new member.
func CreateMember(ctx context.Context, db *sql.DB, name, email, phone string) (*model.Member, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO members (name, email, phone) VALUES (?, ?, ?)`,
		name, email, nullString(phone),
	)
	if isUniqueViolation(err, "members.email") {
		return nil, &ConflictError{Reason: ReasonEmailTaken}
	}
	if err != nil {
		return nil, fmt.Errorf("creating member: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting member id: %w", err)
	}

	return GetMember(ctx, db, id)
}

// GetMember returns an active member by ID, or nil.
func GetMember(ctx context.Context, db *sql.DB, id int64) (*model.Member, error) {
	return getMember(ctx, db, id)
}

func getMember(ctx context.Context, q querier, id int64) (*model.Member, error) {
	m := &model.Member{}
	var phone sql.NullString
	err := q.QueryRowContext(ctx,
		`SELECT id, name, email, phone, created_at, deleted_at
		 FROM members WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&m.ID, &m.Name, &m.Email, &phone, &m.CreatedAt, &m.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting member: %w", err)
	}
	m.Phone = phone.String
	return m, nil
}

// ListMembers returns a page of active members ordered by name, optionally
// filtered by a name or email substring.
func ListMembers(ctx context.Context, db *sql.DB, query string, page Page) ([]model.Member, error) {
	q := `SELECT id, name, email, phone, created_at, deleted_at
	      FROM members WHERE deleted_at IS NULL`
	var args []any

	if query = strings.TrimSpace(query); query != "" {
		q += ` AND (name LIKE ? OR email LIKE ?)`
		pattern := "%" + query + "%"
		args = append(args, pattern, pattern)
	}

	q, args = page.apply(q+` ORDER BY name, id`, args)

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		var m model.Member
		var phone sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &phone, &m.CreatedAt, &m.DeletedAt); err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}
		m.Phone = phone.String
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateMember changes a member's details.
func UpdateMember(ctx context.Context, db *sql.DB, id int64, patch model.MemberPatch) (*model.Member, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE members SET
		     name = COALESCE(?, name),
		     email = COALESCE(?, email),
		     phone = COALESCE(?, phone)
		 WHERE id = ? AND deleted_at IS NULL`,
		patch.Name, patch.Email, patch.Phone, id,
	)
	if isUniqueViolation(err, "members.email") {
		return nil, &ConflictError{Reason: ReasonEmailTaken, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("updating member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, &NotFoundError{Entity: EntityMember, ID: id}
	}

	return GetMember(ctx, db, id)
}

// DeleteMember soft-deletes a member. Fails while the member has books on loan.
func DeleteMember(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var open int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM borrows WHERE member_id = ? AND returned_at IS NULL`, id,
	).Scan(&open)
	if err != nil {
		return fmt.Errorf("checking open borrows: %w", err)
	}
	if open > 0 {
		return &ConflictError{Reason: ReasonMemberHasBorrows, ID: id}
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE members SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return &NotFoundError{Entity: EntityMember, ID: id}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing member deletion: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
