package handlers

import (
	"github.com/jmoiron/sqlx"

	"carebook/internal/repos"
	"carebook/internal/services"
)

type Deps struct {
	AuthHandler      *AuthHandler
	AdminHandler     *AdminHandler
	DashboardHandler *DashboardHandler
}

func NewDeps(db *sqlx.DB, auth *services.AuthService) *Deps {
	userRepo := auth.Users
	specRepo := repos.NewSpecialtyRepo(db)
	docRepo := repos.NewDoctorRepo(db)
	apptRepo := repos.NewAppointmentRepo(db)

	return &Deps{
		AuthHandler: &AuthHandler{Auth: auth},
		AdminHandler: &AdminHandler{
			Users:       userRepo,
			Specialties: specRepo,
			Doctors:     docRepo,
			Reports:     services.NewReportService(userRepo, apptRepo),
		},
		DashboardHandler: &DashboardHandler{},
	}
}
