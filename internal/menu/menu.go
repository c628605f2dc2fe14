// Package menu owns the static back-office navigation and its per-role
// visibility rules.
package menu

import (
	"github.com/vitalis-clinic/backoffice/internal/auth"
)

// Visibility is the closed set of per-entry visibility rules.
type Visibility int

const (
	// VisibilityDefault entries are shown to ADMIN and CHIEF_DOCTOR.
	VisibilityDefault Visibility = iota
	// VisibilityOperatorOnly entries are the only ones an OPERATOR sees.
	VisibilityOperatorOnly
	// VisibilityChiefDoctorOnly entries are shown to CHIEF_DOCTOR alone.
	VisibilityChiefDoctorOnly
)

type Entry struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Path       string     `json:"path"`
	Visibility Visibility `json:"-"`
}

// Entries returns the static navigation list. Defined at build time; order
// is the order entries render in.
func Entries() []Entry {
	return []Entry{
		{ID: "questions", Title: "Вопросы", Path: "/admin/questions"},
		{ID: "feedback", Title: "Обратная связь", Path: "/admin/feedback"},
		{ID: "letters", Title: "Письма", Path: "/admin/letters"},
		{ID: "services", Title: "Услуги", Path: "/admin/services"},
		{ID: "partners", Title: "Партнёры", Path: "/admin/partners"},
		{ID: "vacancies", Title: "Вакансии", Path: "/admin/vacancies"},
		{ID: "contacts", Title: "Контакты", Path: "/admin/contacts"},
		{ID: "specialists", Title: "Специалисты", Path: "/admin/specialists"},
		{ID: "chat", Title: "Чат", Path: "/admin/chat", Visibility: VisibilityOperatorOnly},
		{ID: "users", Title: "Пользователи", Path: "/admin/users", Visibility: VisibilityChiefDoctorOnly},
	}
}

// Visible reports whether one entry is shown to the given role.
func Visible(v Visibility, role auth.Role) bool {
	switch role {
	case auth.RoleOperator:
		return v == VisibilityOperatorOnly
	case auth.RoleChiefDoctor:
		return true
	case auth.RoleAdmin:
		return v != VisibilityChiefDoctorOnly
	default:
		return false
	}
}

// Filter computes the subset of entries visible to a role. An empty or
// unrecognized role yields nil: nothing rendered, never an error.
func Filter(entries []Entry, role auth.Role) []Entry {
	if _, ok := auth.ParseRole(string(role)); !ok {
		return nil
	}

	var visible []Entry
	for _, entry := range entries {
		if Visible(entry.Visibility, role) {
			visible = append(visible, entry)
		}
	}
	return visible
}
