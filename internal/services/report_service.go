package services

import (
	"carebook/internal/domain"
	"carebook/internal/repos"
)

type ReportService struct {
	Users *repos.UserRepo
	Appts *repos.AppointmentRepo
}

func NewReportService(users *repos.UserRepo, appts *repos.AppointmentRepo) *ReportService {
	return &ReportService{Users: users, Appts: appts}
}

// Build assembles the admin report: totals plus the ten most recently
// scheduled appointments.
func (s *ReportService) Build() (domain.Report, error) {
	var rep domain.Report
	var err error

	if rep.TotalAppointments, err = s.Appts.Count(); err != nil {
		return rep, err
	}
	if rep.TotalPayments, err = s.Appts.SumPayments(); err != nil {
		return rep, err
	}
	// Both population counts come from the identity store; doctor rows in the
	// directory are unrelated to Doctor-role accounts.
	if rep.PatientCount, err = s.Users.CountByRole(domain.RolePatient); err != nil {
		return rep, err
	}
	if rep.DoctorCount, err = s.Users.CountByRole(domain.RoleDoctor); err != nil {
		return rep, err
	}
	if rep.Recent, err = s.Appts.Recent(10); err != nil {
		return rep, err
	}
	return rep, nil
}
