package repos

import (
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"carebook/internal/domain"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	// The FK pragma is per-connection, so it rides on the DSN and applies to
	// every connection the driver opens.
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	db, err := sqlx.Open("sqlite", dsn+sep+"_pragma=foreign_keys(1)")
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	// A :memory: DSN yields a separate database per connection; keep the
	// pool at one so there is exactly one database.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if err := seedSpecialties(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Users (identity store)
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('Admin','Doctor','Patient')),
  active INTEGER NOT NULL DEFAULT 1,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- Role memberships (claim set); kept in lockstep with users.role by the
-- single role mutation path in UserRepo.
CREATE TABLE IF NOT EXISTS user_roles(
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  role TEXT NOT NULL,
  PRIMARY KEY(user_id, role)
);

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  remember INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  expires_at TEXT,
  last_seen TEXT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Specialties
CREATE TABLE IF NOT EXISTS specialties(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_specialties_name ON specialties(LOWER(name));

-- Doctors
CREATE TABLE IF NOT EXISTS doctors(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  full_name TEXT NOT NULL,
  email TEXT NOT NULL,
  phone TEXT NOT NULL DEFAULT '',
  specialty_id INTEGER NOT NULL REFERENCES specialties(id) ON DELETE RESTRICT,
  consultation_fee NUMERIC NOT NULL DEFAULT 0 CHECK (consultation_fee >= 0),
  availability TEXT NOT NULL DEFAULT '',
  schedule_notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_doctors_specialty ON doctors(specialty_id);

-- Appointments
CREATE TABLE IF NOT EXISTS appointments(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  patient_id TEXT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
  doctor_id INTEGER NOT NULL REFERENCES doctors(id) ON DELETE RESTRICT,
  scheduled_at TEXT NOT NULL,
  payment NUMERIC,
  status TEXT NOT NULL DEFAULT 'Scheduled'
);
CREATE INDEX IF NOT EXISTS idx_appointments_doctor    ON appointments(doctor_id);
CREATE INDEX IF NOT EXISTS idx_appointments_scheduled ON appointments(scheduled_at);
`
	_, err := db.Exec(schema)
	return err
}

// seedSpecialties inserts a baseline specialty list if the table is empty.
func seedSpecialties(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM specialties`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Println("[seed] inserting baseline specialties")
	_, err := db.Exec(`INSERT INTO specialties(name, description) VALUES
	  ('General Medicine','Primary care and referrals'),
	  ('Cardiology','Heart and circulatory system'),
	  ('Dermatology','Skin, hair and nails'),
	  ('Pediatrics','Care for children')`)
	return err
}

// SeedAdmin ensures a bootstrap admin account exists (idempotent). A blank
// password disables seeding so production deployments must set one explicitly.
func SeedAdmin(db *sqlx.DB, email, fullName, password string) error {
	if password == "" {
		return nil
	}
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users WHERE LOWER(email)=LOWER(?)`, email); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.NewString()
	if _, err := tx.Exec(`INSERT INTO users(id,email,full_name,password_hash,role,active)
	                       VALUES(?,?,?,?,?,1)`, id, email, fullName, string(hash), domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO user_roles(user_id,role) VALUES(?,?)`, id, domain.RoleAdmin); err != nil {
		return err
	}
	log.Printf("[seed] bootstrap admin %s", email)
	return tx.Commit()
}
