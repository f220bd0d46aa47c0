package repos

import (
	"github.com/jmoiron/sqlx"

	"carebook/internal/domain"
)

type SpecialtyRepo struct{ db *sqlx.DB }

func NewSpecialtyRepo(db *sqlx.DB) *SpecialtyRepo { return &SpecialtyRepo{db: db} }

func (r *SpecialtyRepo) List() ([]domain.Specialty, error) {
	var out []domain.Specialty
	err := r.db.Select(&out, `SELECT id,name,description FROM specialties ORDER BY name`)
	return out, err
}

func (r *SpecialtyRepo) Get(id int64) (domain.Specialty, error) {
	var s domain.Specialty
	err := r.db.Get(&s, `SELECT id,name,description FROM specialties WHERE id=?`, id)
	return s, classify(err)
}

func (r *SpecialtyRepo) Create(s *domain.Specialty) error {
	res, err := r.db.Exec(`INSERT INTO specialties(name,description) VALUES(?,?)`,
		s.Name, s.Description)
	if err != nil {
		return classify(err)
	}
	s.ID, _ = res.LastInsertId()
	return nil
}

func (r *SpecialtyRepo) Update(s domain.Specialty) error {
	res, err := r.db.Exec(`UPDATE specialties SET name=?, description=? WHERE id=?`,
		s.Name, s.Description, s.ID)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete fails with ErrNotFound for unknown ids and ErrInUse when a doctor
// still references the specialty (RESTRICT).
func (r *SpecialtyRepo) Delete(id int64) error {
	res, err := r.db.Exec(`DELETE FROM specialties WHERE id=?`, id)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
