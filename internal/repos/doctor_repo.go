package repos

import (
	"github.com/jmoiron/sqlx"

	"carebook/internal/domain"
)

type DoctorRepo struct{ db *sqlx.DB }

func NewDoctorRepo(db *sqlx.DB) *DoctorRepo { return &DoctorRepo{db: db} }

const doctorCols = `d.id, d.full_name, d.email, d.phone, d.specialty_id,
	  s.name AS specialty_name, d.consultation_fee, d.availability, d.schedule_notes`

func (r *DoctorRepo) List() ([]domain.Doctor, error) {
	var out []domain.Doctor
	err := r.db.Select(&out, `
	  SELECT `+doctorCols+`
	  FROM doctors d
	  JOIN specialties s ON s.id = d.specialty_id
	  ORDER BY d.full_name`)
	return out, err
}

func (r *DoctorRepo) Get(id int64) (domain.Doctor, error) {
	var d domain.Doctor
	err := r.db.Get(&d, `
	  SELECT `+doctorCols+`
	  FROM doctors d
	  JOIN specialties s ON s.id = d.specialty_id
	  WHERE d.id=?`, id)
	return d, classify(err)
}

// Create fails with ErrNotFound when the specialty id does not exist
// (FK insert violation reads as a missing parent here, not ErrInUse).
func (r *DoctorRepo) Create(d *domain.Doctor) error {
	res, err := r.db.Exec(`
	  INSERT INTO doctors(full_name,email,phone,specialty_id,consultation_fee,availability,schedule_notes)
	  VALUES(?,?,?,?,?,?,?)`,
		d.FullName, d.Email, d.Phone, d.SpecialtyID, d.ConsultationFee, d.Availability, d.ScheduleNotes)
	if err != nil {
		if classify(err) == ErrInUse {
			return ErrNotFound
		}
		return classify(err)
	}
	d.ID, _ = res.LastInsertId()
	return nil
}

func (r *DoctorRepo) Update(d domain.Doctor) error {
	res, err := r.db.Exec(`
	  UPDATE doctors SET full_name=?, email=?, phone=?, specialty_id=?,
	         consultation_fee=?, availability=?, schedule_notes=?
	  WHERE id=?`,
		d.FullName, d.Email, d.Phone, d.SpecialtyID, d.ConsultationFee,
		d.Availability, d.ScheduleNotes, d.ID)
	if err != nil {
		if classify(err) == ErrInUse {
			return ErrNotFound
		}
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete fails with ErrNotFound for unknown ids and ErrInUse when an
// appointment still references the doctor (RESTRICT).
func (r *DoctorRepo) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM doctors WHERE id=?`, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
