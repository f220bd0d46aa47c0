package handlers

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"carebook/internal/domain"
	applog "carebook/internal/log"
	"carebook/internal/repos"
	"carebook/internal/services"
	"carebook/internal/validate"
)

type AdminHandler struct {
	Users       *repos.UserRepo
	Specialties *repos.SpecialtyRepo
	Doctors     *repos.DoctorRepo
	Reports     *services.ReportService
}

type specialtyForm struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"max=500"`
}

type doctorForm struct {
	FullName string `validate:"required,max=150"`
	Email    string `validate:"required,email,max=150"`
	Phone    string `validate:"max=30"`
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	total, _ := h.Users.Count()
	doctors, _ := h.Users.CountByRole(domain.RoleDoctor)
	patients, _ := h.Users.CountByRole(domain.RolePatient)
	return render(c, "admin_dashboard", fiber.Map{
		"TotalUsers": total, "TotalDoctors": doctors, "TotalPatients": patients,
	})
}

// ---------- Specialties ----------

// GET /admin/specialties
func (h *AdminHandler) SpecialtiesPage(c *fiber.Ctx) error {
	specs, err := h.Specialties.List()
	if err != nil {
		applog.Error(c, "admin.specialties.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load specialties"})
	}
	return render(c, "admin_specialties", fiber.Map{"Specialties": specs, "Err": c.Query("err")})
}

// GET /admin/specialties/new
func (h *AdminHandler) NewSpecialtyForm(c *fiber.Ctx) error {
	return render(c, "specialty_form", fiber.Map{"Specialty": domain.Specialty{}})
}

// POST /admin/specialties
func (h *AdminHandler) CreateSpecialty(c *fiber.Ctx) error {
	f := specialtyForm{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
	}
	s := domain.Specialty{Name: f.Name, Description: f.Description}
	if errs := validate.Struct(f); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("specialty_form", fiber.Map{
			"Errors": errs, "Specialty": s, "CSRFToken": c.Cookies("csrf_"),
		})
	}
	if err := h.Specialties.Create(&s); err != nil {
		applog.Error(c, "admin.specialties.create.fail", err, nil)
		return c.Status(fiber.StatusBadRequest).Render("specialty_form", fiber.Map{
			"Errors": []string{"Could not save the specialty (name may already exist)."},
			"Specialty": s, "CSRFToken": c.Cookies("csrf_"),
		})
	}
	applog.Audit(c, "admin.specialties.create", map[string]any{"id": s.ID, "name": s.Name})
	return c.Redirect("/admin/specialties")
}

// GET /admin/specialties/:id/edit
func (h *AdminHandler) EditSpecialtyForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	s, err := h.Specialties.Get(id)
	if err != nil {
		return notFound(c, err, "Specialty not found")
	}
	return render(c, "specialty_form", fiber.Map{"Specialty": s})
}

// POST /admin/specialties/:id
func (h *AdminHandler) UpdateSpecialty(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	f := specialtyForm{
		Name:        strings.TrimSpace(c.FormValue("name")),
		Description: strings.TrimSpace(c.FormValue("description")),
	}
	s := domain.Specialty{ID: id, Name: f.Name, Description: f.Description}
	if errs := validate.Struct(f); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).Render("specialty_form", fiber.Map{
			"Errors": errs, "Specialty": s, "CSRFToken": c.Cookies("csrf_"),
		})
	}
	if err := h.Specialties.Update(s); err != nil {
		return notFound(c, err, "Specialty not found")
	}
	applog.Audit(c, "admin.specialties.update", map[string]any{"id": id})
	return c.Redirect("/admin/specialties")
}

// POST /admin/specialties/:id/delete
func (h *AdminHandler) DeleteSpecialty(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	err := h.Specialties.Delete(id)
	switch {
	case errors.Is(err, repos.ErrNotFound):
		return notFound(c, err, "Specialty not found")
	case errors.Is(err, repos.ErrInUse):
		applog.Security(c, "admin.specialties.delete.blocked", map[string]any{"id": id})
		return c.Redirect("/admin/specialties?err=" + "Specialty+is+still+assigned+to+doctors+and+cannot+be+deleted.")
	case err != nil:
		applog.Error(c, "admin.specialties.delete.fail", err, map[string]any{"id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not delete specialty"})
	}
	applog.Audit(c, "admin.specialties.delete", map[string]any{"id": id})
	return c.Redirect("/admin/specialties")
}

// ---------- Doctors ----------

// GET /admin/doctors
func (h *AdminHandler) DoctorsPage(c *fiber.Ctx) error {
	docs, err := h.Doctors.List()
	if err != nil {
		applog.Error(c, "admin.doctors.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load doctors"})
	}
	return render(c, "admin_doctors", fiber.Map{"Doctors": docs, "Err": c.Query("err")})
}

// GET /admin/doctors/new
func (h *AdminHandler) NewDoctorForm(c *fiber.Ctx) error {
	specs, _ := h.Specialties.List()
	return render(c, "doctor_form", fiber.Map{"Doctor": domain.Doctor{}, "Specialties": specs})
}

// redisplayDoctor re-renders the doctor form with the specialty reference
// list reloaded, as every invalid submission must.
func (h *AdminHandler) redisplayDoctor(c *fiber.Ctx, d domain.Doctor, errs []string) error {
	specs, _ := h.Specialties.List()
	return c.Status(fiber.StatusBadRequest).Render("doctor_form", fiber.Map{
		"Errors": errs, "Doctor": d, "Specialties": specs,
		"CSRFToken": c.Cookies("csrf_"),
	})
}

func (h *AdminHandler) doctorFromForm(c *fiber.Ctx) (domain.Doctor, []string) {
	f := doctorForm{
		FullName: strings.TrimSpace(c.FormValue("full_name")),
		Email:    strings.TrimSpace(c.FormValue("email")),
		Phone:    strings.TrimSpace(c.FormValue("phone")),
	}
	d := domain.Doctor{
		FullName:      f.FullName,
		Email:         f.Email,
		Phone:         f.Phone,
		Availability:  strings.TrimSpace(c.FormValue("availability")),
		ScheduleNotes: strings.TrimSpace(c.FormValue("schedule_notes")),
	}
	errs := validate.Struct(f)
	if sid, ok := validate.ID(c.FormValue("specialty_id")); ok {
		d.SpecialtyID = sid
	} else {
		errs = append(errs, "Choose a specialty.")
	}
	if fee, ok := validate.Fee(c.FormValue("consultation_fee")); ok {
		d.ConsultationFee = fee
	} else {
		errs = append(errs, "Consultation fee must be a non-negative amount with at most two decimals.")
	}
	return d, errs
}

// POST /admin/doctors
func (h *AdminHandler) CreateDoctor(c *fiber.Ctx) error {
	d, errs := h.doctorFromForm(c)
	if len(errs) > 0 {
		return h.redisplayDoctor(c, d, errs)
	}
	if err := h.Doctors.Create(&d); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return h.redisplayDoctor(c, d, []string{"The selected specialty does not exist."})
		}
		applog.Error(c, "admin.doctors.create.fail", err, nil)
		return h.redisplayDoctor(c, d, []string{"Could not save the doctor."})
	}
	applog.Audit(c, "admin.doctors.create", map[string]any{"id": d.ID, "name": d.FullName})
	return c.Redirect("/admin/doctors")
}

// GET /admin/doctors/:id/edit
func (h *AdminHandler) EditDoctorForm(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	d, err := h.Doctors.Get(id)
	if err != nil {
		return notFound(c, err, "Doctor not found")
	}
	specs, _ := h.Specialties.List()
	return render(c, "doctor_form", fiber.Map{"Doctor": d, "Specialties": specs})
}

// POST /admin/doctors/:id
func (h *AdminHandler) UpdateDoctor(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	d, errs := h.doctorFromForm(c)
	d.ID = id
	if len(errs) > 0 {
		return h.redisplayDoctor(c, d, errs)
	}
	if err := h.Doctors.Update(d); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return notFound(c, err, "Doctor not found")
		}
		applog.Error(c, "admin.doctors.update.fail", err, map[string]any{"id": id})
		return h.redisplayDoctor(c, d, []string{"Could not save the doctor."})
	}
	applog.Audit(c, "admin.doctors.update", map[string]any{"id": id})
	return c.Redirect("/admin/doctors")
}

// POST /admin/doctors/:id/delete
func (h *AdminHandler) DeleteDoctor(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusBadRequest)
	}
	err := h.Doctors.Delete(id)
	switch {
	case errors.Is(err, repos.ErrNotFound):
		return notFound(c, err, "Doctor not found")
	case errors.Is(err, repos.ErrInUse):
		applog.Security(c, "admin.doctors.delete.blocked", map[string]any{"id": id})
		return c.Redirect("/admin/doctors?err=" + "Doctor+has+appointments+and+cannot+be+deleted.")
	case err != nil:
		applog.Error(c, "admin.doctors.delete.fail", err, map[string]any{"id": id})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not delete doctor"})
	}
	applog.Audit(c, "admin.doctors.delete", map[string]any{"id": id})
	return c.Redirect("/admin/doctors")
}

// ---------- Users ----------

// GET /admin/users
func (h *AdminHandler) ManageUsers(c *fiber.Ctx) error {
	users, err := h.Users.List()
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load users"})
	}
	return render(c, "admin_users", fiber.Map{"Users": users, "Msg": c.Query("msg")})
}

// GET /admin/users/patients
func (h *AdminHandler) PatientsPage(c *fiber.Ctx) error {
	users, err := h.Users.ListByRole(domain.RolePatient)
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load users"})
	}
	return render(c, "admin_users", fiber.Map{"Users": users, "Filter": "Patients"})
}

// GET /admin/users/doctors
func (h *AdminHandler) DoctorUsersPage(c *fiber.Ctx) error {
	users, err := h.Users.ListByRole(domain.RoleDoctor)
	if err != nil {
		applog.Error(c, "admin.users.list.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not load users"})
	}
	return render(c, "admin_users", fiber.Map{"Users": users, "Filter": "Doctors"})
}

// POST /admin/users/role
func (h *AdminHandler) ChangeUserRole(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.FormValue("user_id"))
	newRole := strings.TrimSpace(c.FormValue("new_role"))

	// Structurally invalid input is rejected before any lookup or mutation.
	if userID == "" || newRole == "" || !domain.KnownRole(newRole) {
		applog.Security(c, "admin.users.role.badinput", map[string]any{"user_id": userID, "role": newRole})
		return c.SendStatus(fiber.StatusBadRequest)
	}
	u, err := h.Users.ByID(userID)
	if err != nil {
		return notFound(c, err, "User not found")
	}
	if err := h.Users.ChangeRole(u.ID, newRole); err != nil {
		if errors.Is(err, repos.ErrNotFound) {
			return notFound(c, err, "User not found")
		}
		applog.Error(c, "admin.users.role.fail", err, map[string]any{"user_id": userID})
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not change role"})
	}
	applog.Audit(c, "admin.users.role", map[string]any{"user_id": userID, "role": newRole})
	return c.Redirect("/admin/users?msg=" + url.QueryEscape("Role of "+u.FullName+" changed to "+newRole))
}

// ---------- Reports ----------

// GET /admin/reports
func (h *AdminHandler) ReportsPage(c *fiber.Ctx) error {
	rep, err := h.Reports.Build()
	if err != nil {
		applog.Error(c, "admin.reports.fail", err, nil)
		return c.Status(500).Render("notfound", fiber.Map{"Message": "Could not build reports"})
	}
	return render(c, "admin_reports", fiber.Map{"Report": rep})
}

func notFound(c *fiber.Ctx, err error, msg string) error {
	if errors.Is(err, repos.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
	}
	applog.Error(c, "admin.lookup.fail", err, nil)
	return c.Status(500).Render("notfound", fiber.Map{"Message": "Something went wrong"})
}
