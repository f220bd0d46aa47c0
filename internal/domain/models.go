package domain

// Appointment status values. Free text in the original data, but every row
// this system writes uses one of these.
const (
	StatusScheduled = "Scheduled"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

type Specialty struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
}

type Doctor struct {
	ID              int64   `db:"id"`
	FullName        string  `db:"full_name"`
	Email           string  `db:"email"`
	Phone           string  `db:"phone"`
	SpecialtyID     int64   `db:"specialty_id"`
	SpecialtyName   string  `db:"specialty_name"` // joined, empty on bare rows
	ConsultationFee float64 `db:"consultation_fee"`
	Availability    string  `db:"availability"`
	ScheduleNotes   string  `db:"schedule_notes"`
}

type Appointment struct {
	ID          int64   `db:"id"`
	PatientID   string  `db:"patient_id"`
	DoctorID    int64   `db:"doctor_id"`
	DoctorName  string  `db:"doctor_name"` // joined, empty on bare rows
	ScheduledAt string  `db:"scheduled_at"`
	Payment     float64 `db:"payment"`
	HasPayment  bool    `db:"has_payment"`
	Status      string  `db:"status"`
}

// Report aggregates shown on the admin reports page.
type Report struct {
	TotalAppointments int64
	TotalPayments     float64
	PatientCount      int64
	DoctorCount       int64
	Recent            []Appointment
}
