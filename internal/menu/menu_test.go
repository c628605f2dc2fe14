package menu_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/vitalis-clinic/backoffice/internal/auth"
	"github.com/vitalis-clinic/backoffice/internal/menu"
)

func TestMenu(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Menu Suite")
}

func entryIDs(entries []menu.Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

var _ = Describe("Menu Filter", func() {
	It("shows an operator only the operator entries", func() {
		visible := menu.Filter(menu.Entries(), auth.RoleOperator)
		Expect(entryIDs(visible)).To(Equal([]string{"chat"}))
	})

	It("shows an admin everything except chief doctor entries", func() {
		visible := menu.Filter(menu.Entries(), auth.RoleAdmin)

		ids := entryIDs(visible)
		Expect(ids).NotTo(ContainElement("users"))
		Expect(ids).To(ContainElements("questions", "feedback", "letters", "services", "partners", "vacancies", "contacts", "specialists", "chat"))
	})

	It("shows a chief doctor every entry", func() {
		visible := menu.Filter(menu.Entries(), auth.RoleChiefDoctor)
		Expect(visible).To(HaveLen(len(menu.Entries())))
	})

	It("shows chat to admins", func() {
		visible := menu.Filter(menu.Entries(), auth.RoleAdmin)
		Expect(entryIDs(visible)).To(ContainElement("chat"))
	})

	It("yields nothing for an empty role", func() {
		Expect(menu.Filter(menu.Entries(), "")).To(BeNil())
	})

	It("yields nothing for an unrecognized role", func() {
		Expect(menu.Filter(menu.Entries(), "NURSE")).To(BeNil())
	})

	It("keeps the defined entry order", func() {
		visible := menu.Filter(menu.Entries(), auth.RoleChiefDoctor)
		Expect(entryIDs(visible)).To(Equal(entryIDs(menu.Entries())))
	})
})

var _ = Describe("Visible", func() {
	It("covers every combination of rule and role", func() {
		cases := []struct {
			v    menu.Visibility
			role auth.Role
			want bool
		}{
			{menu.VisibilityDefault, auth.RoleOperator, false},
			{menu.VisibilityDefault, auth.RoleAdmin, true},
			{menu.VisibilityDefault, auth.RoleChiefDoctor, true},
			{menu.VisibilityOperatorOnly, auth.RoleOperator, true},
			{menu.VisibilityOperatorOnly, auth.RoleAdmin, true},
			{menu.VisibilityOperatorOnly, auth.RoleChiefDoctor, true},
			{menu.VisibilityChiefDoctorOnly, auth.RoleOperator, false},
			{menu.VisibilityChiefDoctorOnly, auth.RoleAdmin, false},
			{menu.VisibilityChiefDoctorOnly, auth.RoleChiefDoctor, true},
		}

		for _, c := range cases {
			Expect(menu.Visible(c.v, c.role)).To(Equal(c.want),
				"visibility %d for role %s", c.v, c.role)
		}
	})
})
