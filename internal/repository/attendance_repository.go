package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

// AttendanceFilter captures listing parameters. A nil field is not applied.
type AttendanceFilter struct {
	AdminID        *string
	ProfessionalID *string
	HealthUnitID   *string
	ModelUsed      *domain.ModelKind
	DateFrom       *time.Time
	DateTo         *time.Time
	Limit          int
	Offset         int
}

// ModelAccuracy aggregates correctness per diagnostic model.
type ModelAccuracy struct {
	Model   domain.ModelKind
	Total   int
	Correct int
}

// AttendanceRepository encapsulates attendance persistence, including the
// bounding boxes saved alongside breast-model records.
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *domain.Attendance) error
	Update(ctx context.Context, attendance *domain.Attendance) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Attendance, error)
	ListWithFilter(ctx context.Context, filter AttendanceFilter) ([]domain.Attendance, error)
	CountWithFilter(ctx context.Context, filter AttendanceFilter) (int, error)
	AccuracyByModel(ctx context.Context, filter AttendanceFilter) ([]ModelAccuracy, error)
}

type attendanceRepository struct {
	pool *pgxpool.Pool
}

// NewAttendanceRepository instantiates repository.
func NewAttendanceRepository(pool *pgxpool.Pool) AttendanceRepository {
	return &attendanceRepository{pool: pool}
}

const attendanceColumns = `id, professional_id, health_unit_id, admin_id, model_used, model_result,
               COALESCE(expected_result, ''), correct_diagnosis, image_base64, COALESCE(observation, ''),
               attendance_date, updated_at`

func (r *attendanceRepository) Create(ctx context.Context, attendance *domain.Attendance) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const query = `
        INSERT INTO attendances (professional_id, health_unit_id, admin_id, model_used, model_result,
            expected_result, correct_diagnosis, image_base64, observation)
        VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7,$8,NULLIF($9,''))
        RETURNING id, attendance_date, updated_at`

	if err := tx.QueryRow(ctx, query,
		attendance.ProfessionalID,
		attendance.HealthUnitID,
		attendance.AdminID,
		attendance.ModelUsed,
		attendance.ModelResult,
		attendance.ExpectedResult,
		attendance.CorrectDiagnosis,
		attendance.ImageBase64,
		attendance.Observation,
	).Scan(&attendance.ID, &attendance.AttendanceDate, &attendance.UpdatedAt); err != nil {
		return err
	}

	if err := r.insertBoundingBoxes(ctx, tx, attendance); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *attendanceRepository) Update(ctx context.Context, attendance *domain.Attendance) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const query = `
        UPDATE attendances SET health_unit_id=$1, model_used=$2, model_result=$3,
            expected_result=NULLIF($4,''), correct_diagnosis=$5, image_base64=$6,
            observation=NULLIF($7,''), updated_at=NOW()
        WHERE id=$8`

	cmd, err := tx.Exec(ctx, query,
		attendance.HealthUnitID,
		attendance.ModelUsed,
		attendance.ModelResult,
		attendance.ExpectedResult,
		attendance.CorrectDiagnosis,
		attendance.ImageBase64,
		attendance.Observation,
		attendance.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	if _, err := tx.Exec(ctx, `DELETE FROM bounding_boxes WHERE attendance_id=$1`, attendance.ID); err != nil {
		return err
	}
	if err := r.insertBoundingBoxes(ctx, tx, attendance); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *attendanceRepository) insertBoundingBoxes(ctx context.Context, tx pgx.Tx, attendance *domain.Attendance) error {
	const query = `
        INSERT INTO bounding_boxes (attendance_id, x, y, width, height, observations)
        VALUES ($1,$2,$3,$4,$5,NULLIF($6,''))
        RETURNING id`

	for i := range attendance.BoundingBoxes {
		box := &attendance.BoundingBoxes[i]
		box.AttendanceID = attendance.ID
		if err := tx.QueryRow(ctx, query,
			attendance.ID,
			box.X,
			box.Y,
			box.Width,
			box.Height,
			box.Observations,
		).Scan(&box.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM attendances WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (*domain.Attendance, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id=$1`

	var attendance domain.Attendance
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&attendance.ID,
		&attendance.ProfessionalID,
		&attendance.HealthUnitID,
		&attendance.AdminID,
		&attendance.ModelUsed,
		&attendance.ModelResult,
		&attendance.ExpectedResult,
		&attendance.CorrectDiagnosis,
		&attendance.ImageBase64,
		&attendance.Observation,
		&attendance.AttendanceDate,
		&attendance.UpdatedAt,
	); err != nil {
		return nil, err
	}

	boxes, err := r.boundingBoxesFor(ctx, attendance.ID)
	if err != nil {
		return nil, err
	}
	attendance.BoundingBoxes = boxes
	return &attendance, nil
}

func (r *attendanceRepository) boundingBoxesFor(ctx context.Context, attendanceID string) ([]domain.BoundingBox, error) {
	const query = `
        SELECT id, attendance_id, x, y, width, height, COALESCE(observations, '')
        FROM bounding_boxes WHERE attendance_id=$1`

	rows, err := r.pool.Query(ctx, query, attendanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BoundingBox
	for rows.Next() {
		var box domain.BoundingBox
		if err := rows.Scan(&box.ID, &box.AttendanceID, &box.X, &box.Y, &box.Width, &box.Height, &box.Observations); err != nil {
			return nil, err
		}
		result = append(result, box)
	}
	return result, rows.Err()
}

func (r *attendanceRepository) ListWithFilter(ctx context.Context, filter AttendanceFilter) ([]domain.Attendance, error) {
	clauses, args := attendanceClauses(filter)

	query := fmt.Sprintf(`SELECT %s FROM attendances WHERE %s ORDER BY attendance_date DESC LIMIT %d OFFSET %d`,
		attendanceColumns, strings.Join(clauses, " AND "), normalizeLimit(filter.Limit), normalizeOffset(filter.Offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attendance
	for rows.Next() {
		var attendance domain.Attendance
		if err := rows.Scan(
			&attendance.ID,
			&attendance.ProfessionalID,
			&attendance.HealthUnitID,
			&attendance.AdminID,
			&attendance.ModelUsed,
			&attendance.ModelResult,
			&attendance.ExpectedResult,
			&attendance.CorrectDiagnosis,
			&attendance.ImageBase64,
			&attendance.Observation,
			&attendance.AttendanceDate,
			&attendance.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attendance)
	}
	return result, rows.Err()
}

func (r *attendanceRepository) CountWithFilter(ctx context.Context, filter AttendanceFilter) (int, error) {
	clauses, args := attendanceClauses(filter)

	query := fmt.Sprintf(`SELECT COUNT(*) FROM attendances WHERE %s`, strings.Join(clauses, " AND "))

	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func attendanceClauses(filter AttendanceFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AdminID != nil {
		args = append(args, *filter.AdminID)
		clauses = append(clauses, fmt.Sprintf("admin_id=$%d", len(args)))
	}
	if filter.ProfessionalID != nil {
		args = append(args, *filter.ProfessionalID)
		clauses = append(clauses, fmt.Sprintf("professional_id=$%d", len(args)))
	}
	if filter.HealthUnitID != nil {
		args = append(args, *filter.HealthUnitID)
		clauses = append(clauses, fmt.Sprintf("health_unit_id=$%d", len(args)))
	}
	if filter.ModelUsed != nil {
		args = append(args, *filter.ModelUsed)
		clauses = append(clauses, fmt.Sprintf("model_used=$%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		clauses = append(clauses, fmt.Sprintf("attendance_date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		clauses = append(clauses, fmt.Sprintf("attendance_date <= $%d", len(args)))
	}
	return clauses, args
}

func (r *attendanceRepository) AccuracyByModel(ctx context.Context, filter AttendanceFilter) ([]ModelAccuracy, error) {
	clauses, args := attendanceClauses(filter)

	query := fmt.Sprintf(`
        SELECT model_used, COUNT(*), COUNT(*) FILTER (WHERE correct_diagnosis)
        FROM attendances WHERE %s
        GROUP BY model_used ORDER BY model_used`, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ModelAccuracy
	for rows.Next() {
		var acc ModelAccuracy
		if err := rows.Scan(&acc.Model, &acc.Total, &acc.Correct); err != nil {
			return nil, err
		}
		result = append(result, acc)
	}
	return result, rows.Err()
}
