package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vitalis-clinic/backoffice/internal/auth"
	"github.com/vitalis-clinic/backoffice/internal/content"
	"github.com/vitalis-clinic/backoffice/internal/user"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with staff accounts and starter content for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{"questions", "feedback", "letters", "clinic_services", "partners", "vacancies", "contacts", "admin_users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedUsers(db)
		seedContent(db)
	},
}

func seedUsers(db *gorm.DB) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

	accounts := []user.AdminUser{
		{Email: "operator@vitalis.clinic", Name: "Dispatch Operator", Role: string(auth.RoleOperator)},
		{Email: "admin@vitalis.clinic", Name: "Site Administrator", Role: string(auth.RoleAdmin)},
		{Email: "chief@vitalis.clinic", Name: "Chief Doctor", Role: string(auth.RoleChiefDoctor)},
	}

	for _, a := range accounts {
		var count int64
		db.Model(&user.AdminUser{}).Where("email = ?", a.Email).Count(&count)
		if count > 0 {
			fmt.Println("user already exists:", a.Email)
			continue
		}

		a.ID = uuid.NewString()
		a.PasswordHash = string(hash)
		a.IsActive = true
		if err := db.Create(&a).Error; err != nil {
			log.Fatalf("failed to seed user %s: %v", a.Email, err)
		}
		fmt.Println("Seeded user:", a.Email)
	}
}

func seedContent(db *gorm.DB) {
	var count int64
	db.Model(&content.Question{}).Count(&count)
	if count > 0 {
		fmt.Println("content already seeded")
		return
	}

	questions := []content.Question{
		{Question: "Как записаться на приём?", Answer: "Позвоните в регистратуру или оставьте заявку на сайте.", IsPublished: true},
		{Question: "Работаете ли вы по выходным?", Answer: "Да, по субботам с 9:00 до 15:00.", IsPublished: true},
	}
	for i := range questions {
		if err := db.Create(&questions[i]).Error; err != nil {
			log.Fatalf("failed to seed question: %v", err)
		}
	}

	services := []content.ClinicService{
		{Name: "Первичная консультация терапевта", PriceRUB: 1500, IsActive: true},
		{Name: "УЗИ брюшной полости", PriceRUB: 2200, IsActive: true},
	}
	for i := range services {
		if err := db.Create(&services[i]).Error; err != nil {
			log.Fatalf("failed to seed service: %v", err)
		}
	}

	contacts := []content.Contact{
		{Label: "Регистратура", Phone: "+7 (495) 000-00-00", Schedule: "Пн-Пт 8:00-20:00"},
	}
	for i := range contacts {
		if err := db.Create(&contacts[i]).Error; err != nil {
			log.Fatalf("failed to seed contact: %v", err)
		}
	}

	fmt.Println("Seeded starter content")
}
