package repos

import (
	"github.com/jmoiron/sqlx"

	"carebook/internal/domain"
)

// AppointmentRepo is the collaborator surface a booking flow would call.
// In this system it backs admin reporting and seeding only.
type AppointmentRepo struct{ db *sqlx.DB }

func NewAppointmentRepo(db *sqlx.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

// Create inserts an appointment. payment may be nil (not yet collected).
// A missing patient or doctor id surfaces as ErrNotFound.
func (r *AppointmentRepo) Create(patientID string, doctorID int64, scheduledAt string, payment *float64, status string) (int64, error) {
	if status == "" {
		status = domain.StatusScheduled
	}
	res, err := r.db.Exec(`
	  INSERT INTO appointments(patient_id,doctor_id,scheduled_at,payment,status)
	  VALUES(?,?,?,?,?)`, patientID, doctorID, scheduledAt, payment, status)
	if err != nil {
		if classify(err) == ErrInUse {
			return 0, ErrNotFound
		}
		return 0, classify(err)
	}
	return res.LastInsertId()
}

func (r *AppointmentRepo) Count() (int64, error) {
	var n int64
	err := r.db.Get(&n, `SELECT COUNT(*) FROM appointments`)
	return n, err
}

// SumPayments totals collected payments; NULL payments count as zero so the
// sum itself is never NULL.
func (r *AppointmentRepo) SumPayments() (float64, error) {
	var total float64
	err := r.db.Get(&total, `SELECT COALESCE(SUM(payment),0) FROM appointments`)
	return total, err
}

// Recent returns the most recently scheduled appointments, newest first,
// each annotated with its doctor.
func (r *AppointmentRepo) Recent(limit int) ([]domain.Appointment, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []domain.Appointment
	err := r.db.Select(&out, `
	  SELECT a.id, a.patient_id, a.doctor_id, d.full_name AS doctor_name,
	         a.scheduled_at, COALESCE(a.payment,0) AS payment,
	         a.payment IS NOT NULL AS has_payment, a.status
	  FROM appointments a
	  JOIN doctors d ON d.id = a.doctor_id
	  ORDER BY datetime(a.scheduled_at) DESC
	  LIMIT ?`, limit)
	return out, err
}
