package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lborres/roster/core"
)

const studentColumns = `id, user_id, first_name, last_name, email, phone, address, course,
	admission_date, gpa, gender, emergency_contact, created_at, updated_at`

func (a *Adapter) CreateStudent(ctx context.Context, s *core.Student) error {
	id := uuid.NewString()
	now := toMillis(a.now())

	q := `INSERT INTO students (` + studentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := a.db.ExecContext(ctx, q,
		id, s.UserID, s.FirstName, s.LastName, s.Email, s.Phone, s.Address, s.Course,
		nullableMillis(s.AdmissionDate), s.GPA, s.Gender, s.EmergencyContact, now, now)
	if err != nil {
		return err
	}

	s.ID = id
	s.CreatedAt = fromMillis(now)
	s.UpdatedAt = s.CreatedAt
	return nil
}

func (a *Adapter) ListStudents(ctx context.Context, ownerID string) ([]*core.Student, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE user_id = ? ORDER BY seq`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []*core.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// UpdateStudent reads, patches and writes the matching row in one
// transaction.
func (a *Adapter) UpdateStudent(ctx context.Context, id, ownerID string, patch core.StudentPatch) (*core.Student, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx,
		`SELECT `+studentColumns+` FROM students WHERE id = ? AND user_id = ?`, id, ownerID)
	s, err := scanStudent(row)
	if err != nil {
		return nil, err
	}

	patch.Apply(s)
	now := toMillis(a.now())

	_, err = tx.ExecContext(ctx, `UPDATE students SET
		first_name = ?, last_name = ?, email = ?, phone = ?, address = ?, course = ?,
		admission_date = ?, gpa = ?, gender = ?, emergency_contact = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		s.FirstName, s.LastName, s.Email, s.Phone, s.Address, s.Course,
		nullableMillis(s.AdmissionDate), s.GPA, s.Gender, s.EmergencyContact, now,
		id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.UpdatedAt = fromMillis(now)
	return s, nil
}

func (a *Adapter) DeleteStudent(ctx context.Context, id, ownerID string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM students WHERE id = ? AND user_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

func scanStudent(row rowScanner) (*core.Student, error) {
	s := &core.Student{}
	var admission sql.NullInt64
	var gpa sql.NullFloat64
	var createdAt, updatedAt int64
	err := row.Scan(&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.Email, &s.Phone,
		&s.Address, &s.Course, &admission, &gpa, &s.Gender, &s.EmergencyContact,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrRecordNotFound
		}
		return nil, err
	}
	if admission.Valid {
		t := fromMillis(admission.Int64)
		s.AdmissionDate = &t
	}
	if gpa.Valid {
		v := gpa.Float64
		s.GPA = &v
	}
	s.CreatedAt = fromMillis(createdAt)
	s.UpdatedAt = fromMillis(updatedAt)
	return s, nil
}

func nullableMillis(t *time.Time) any {
	if t == nil {
		return nil
	}
	return toMillis(*t)
}
