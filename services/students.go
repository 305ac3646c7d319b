package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/lborres/roster/core"
	"github.com/lborres/roster/pkg/logging"
)

// StudentService scopes every record operation to the authenticated caller.
type StudentService struct {
	db core.StudentStorage
}

var _ core.StudentHandler = (*StudentService)(nil)

func NewStudentService(db core.StudentStorage) *StudentService {
	return &StudentService{db: db}
}

// Create stores a new record owned by caller. The patch has no owner field,
// so there is nothing a client can send to claim another owner.
func (s *StudentService) Create(ctx context.Context, caller core.Identity, patch core.StudentPatch) (*core.Student, error) {
	if caller.UserID == "" {
		return nil, core.ErrInvalidSession
	}

	student := &core.Student{UserID: caller.UserID}
	patch.Apply(student)

	if err := s.db.CreateStudent(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	logging.FromContext(ctx).Debug("student created",
		zap.String("student_id", student.ID), zap.String("user_id", caller.UserID))
	return student, nil
}

// List returns the caller's records. Never nil.
func (s *StudentService) List(ctx context.Context, caller core.Identity) ([]*core.Student, error) {
	if caller.UserID == "" {
		return nil, core.ErrInvalidSession
	}

	students, err := s.db.ListStudents(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	if students == nil {
		students = []*core.Student{}
	}
	return students, nil
}

// Update applies patch to the record matching both id and caller. Missing and
// foreign ids are indistinguishable.
func (s *StudentService) Update(ctx context.Context, caller core.Identity, id string, patch core.StudentPatch) (*core.Student, error) {
	if caller.UserID == "" {
		return nil, core.ErrInvalidSession
	}
	if id == "" {
		return nil, core.ErrRecordNotFound
	}

	student, err := s.db.UpdateStudent(ctx, id, caller.UserID, patch)
	if err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			return nil, core.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return student, nil
}

// Delete removes the record matching both id and caller.
func (s *StudentService) Delete(ctx context.Context, caller core.Identity, id string) error {
	if caller.UserID == "" {
		return core.ErrInvalidSession
	}
	if id == "" {
		return core.ErrRecordNotFound
	}

	if err := s.db.DeleteStudent(ctx, id, caller.UserID); err != nil {
		if errors.Is(err, core.ErrRecordNotFound) {
			return core.ErrRecordNotFound
		}
		return fmt.Errorf("failed to delete student: %w", err)
	}

	logging.FromContext(ctx).Debug("student deleted",
		zap.String("student_id", id), zap.String("user_id", caller.UserID))
	return nil
}
