package repos

import (
	"github.com/jmoiron/sqlx"

	"carebook/internal/domain"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id,email,full_name,password_hash,role,active`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`, email)
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT `+userCols+` FROM users WHERE id=?`, id)
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (r *UserRepo) List() ([]domain.User, error) {
	var out []domain.User
	err := r.DB.Select(&out, `SELECT `+userCols+` FROM users ORDER BY email`)
	return out, err
}

func (r *UserRepo) ListByRole(role string) ([]domain.User, error) {
	var out []domain.User
	err := r.DB.Select(&out, `SELECT `+userCols+` FROM users WHERE role=? ORDER BY email`, role)
	return out, err
}

func (r *UserRepo) CountByRole(role string) (int64, error) {
	var n int64
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users WHERE role=?`, role)
	return n, err
}

func (r *UserRepo) Count() (int64, error) {
	var n int64
	err := r.DB.Get(&n, `SELECT COUNT(*) FROM users`)
	return n, err
}

// Create inserts the user row and its role membership in one transaction so
// a half-created account can never be reached by a later login.
func (r *UserRepo) Create(u *domain.User) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO users(id,email,full_name,password_hash,role,active)
	                       VALUES(?,?,?,?,?,?)`,
		u.ID, u.Email, u.FullName, u.Hash, u.Role, u.Active); err != nil {
		return classify(err)
	}
	if _, err := tx.Exec(`INSERT INTO user_roles(user_id,role) VALUES(?,?)`, u.ID, u.Role); err != nil {
		return classify(err)
	}
	return tx.Commit()
}

// Roles returns the membership set for a user.
func (r *UserRepo) Roles(userID string) ([]string, error) {
	var out []string
	err := r.DB.Select(&out, `SELECT role FROM user_roles WHERE user_id=? ORDER BY role`, userID)
	return out, err
}

// ChangeRole is the only role mutation path: it clears the membership set,
// overwrites users.role and grants the new membership in a single transaction
// so the two can never disagree.
func (r *UserRepo) ChangeRole(userID, newRole string) error {
	tx, err := r.DB.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.Exec(`UPDATE users SET role=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`, newRole, userID)
	if err != nil {
		return classify(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if _, err := tx.Exec(`DELETE FROM user_roles WHERE user_id=?`, userID); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO user_roles(user_id,role) VALUES(?,?)`, userID, newRole); err != nil {
		return classify(err)
	}
	return tx.Commit()
}

// ---------- Sessions ----------

// BindSession attaches a user to a session id, creating the row if needed.
// Remembered sessions live 30 days, others 12 hours.
func (r *UserRepo) BindSession(sid, userID string, remember bool) error {
	rem := 0
	ttl := "+12 hours"
	if remember {
		rem = 1
		ttl = "+30 days"
	}
	_, err := r.DB.Exec(`INSERT INTO sessions(id,user_id,remember,expires_at,last_seen)
	     VALUES(?,?,?,datetime('now',?),CURRENT_TIMESTAMP)
	     ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,
	         remember=excluded.remember, expires_at=excluded.expires_at,
	         last_seen=CURRENT_TIMESTAMP`, sid, userID, rem, ttl)
	return err
}

// SessionUser resolves a live session to its active user.
func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `
      SELECT u.id,u.email,u.full_name,u.password_hash,u.role,u.active
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=? AND u.active=1
        AND (s.expires_at IS NULL OR datetime(s.expires_at) > datetime('now'))`, sid)
	if err != nil {
		return nil, classify(err)
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(`DELETE FROM sessions WHERE id=?`, sid)
	return err
}
