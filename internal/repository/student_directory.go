package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

type studentDirectory struct {
	db DBTX
}

// NewStudentDirectory builds the student lookup.
func NewStudentDirectory(db DBTX) StudentDirectory {
	return &studentDirectory{db: db}
}

const studentColumns = `id, admission_number, full_name, is_active`

func (d *studentDirectory) GetByAdmissionNumber(ctx context.Context, admissionNumber string) (*domain.Student, error) {
	return d.fetchSingle(ctx, `SELECT `+studentColumns+` FROM students WHERE admission_number=$1`, admissionNumber)
}

func (d *studentDirectory) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	return d.fetchSingle(ctx, `SELECT `+studentColumns+` FROM students WHERE id=$1`, id)
}

func (d *studentDirectory) fetchSingle(ctx context.Context, query string, arg any) (*domain.Student, error) {
	var student domain.Student
	if err := d.db.QueryRow(ctx, query, arg).Scan(
		&student.ID,
		&student.AdmissionNumber,
		&student.FullName,
		&student.IsActive,
	); err != nil {
		return nil, classify(err)
	}
	return &student, nil
}
