package pgx

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lborres/roster/core"
)

const studentColumns = `id, user_id, first_name, last_name, email, phone, address, course,
	admission_date, gpa, gender, emergency_contact, created_at, updated_at`

func (a *Adapter) CreateStudent(ctx context.Context, s *core.Student) error {
	id := uuid.NewString()
	query := `INSERT INTO public.students (id, user_id, first_name, last_name, email, phone, address, course,
		admission_date, gpa, gender, emergency_contact)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING created_at, updated_at`

	err := a.pool.QueryRow(ctx, query,
		id, s.UserID, s.FirstName, s.LastName, s.Email, s.Phone, s.Address, s.Course,
		s.AdmissionDate, s.GPA, s.Gender, s.EmergencyContact,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}

	s.ID = id
	return nil
}

func (a *Adapter) ListStudents(ctx context.Context, ownerID string) ([]*core.Student, error) {
	q := `SELECT ` + studentColumns + ` FROM public.students WHERE user_id = $1 ORDER BY seq`
	rows, err := a.pool.Query(ctx, q, ownerID)
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

// UpdateStudent locks the matching row, applies the patch and writes it back
// in one transaction.
func (a *Adapter) UpdateStudent(ctx context.Context, id, ownerID string, patch core.StudentPatch) (*core.Student, error) {
	var updated *core.Student

	err := pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		q := `SELECT ` + studentColumns + ` FROM public.students WHERE id = $1 AND user_id = $2 FOR UPDATE`
		s, err := scanStudent(tx.QueryRow(ctx, q, id, ownerID))
		if err != nil {
			return err
		}

		patch.Apply(s)

		err = tx.QueryRow(ctx, `UPDATE public.students SET
			first_name = $1, last_name = $2, email = $3, phone = $4, address = $5, course = $6,
			admission_date = $7, gpa = $8, gender = $9, emergency_contact = $10, updated_at = now()
			WHERE id = $11 AND user_id = $12 RETURNING updated_at`,
			s.FirstName, s.LastName, s.Email, s.Phone, s.Address, s.Course,
			s.AdmissionDate, s.GPA, s.Gender, s.EmergencyContact, id, ownerID,
		).Scan(&s.UpdatedAt)
		if err != nil {
			return err
		}

		updated = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (a *Adapter) DeleteStudent(ctx context.Context, id, ownerID string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.students WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}

func scanStudent(row pgx.Row) (*core.Student, error) {
	s := &core.Student{}
	err := row.Scan(&s.ID, &s.UserID, &s.FirstName, &s.LastName, &s.Email, &s.Phone,
		&s.Address, &s.Course, &s.AdmissionDate, &s.GPA, &s.Gender, &s.EmergencyContact,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrRecordNotFound
		}
		return nil, err
	}
	return s, nil
}
