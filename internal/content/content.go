// Package content implements the generic CRUD scaffold shared by every
// managed collection of the back office: list with search and pagination,
// create, update and confirmed delete.
package content

import (
	"time"

	"github.com/vitalis-clinic/backoffice/internal"
	"github.com/vitalis-clinic/backoffice/internal/core/common/validation"
)

// Record is what a managed collection stores. Implemented with pointer
// receivers; the generic scaffold is instantiated with pointer types.
type Record interface {
	RecordID() int64
	SetRecordID(id int64)
	Validate() *internal.AppError
}

// Collection describes one managed collection: its URL segment, which
// columns a search query matches against, and how to allocate a record.
type Collection[T Record] struct {
	Name       string
	Searchable []string
	New        func() T
}

// Question is one FAQ entry.
type Question struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Question) TableName() string       { return "questions" }
func (q *Question) RecordID() int64      { return q.ID }
func (q *Question) SetRecordID(id int64) { q.ID = id }

func (q *Question) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("question", q.Question).Required().MaxLength(1000)
	v.Field("answer", q.Answer).MaxLength(5000)
	return v.Validate()
}

// Feedback is one submission from the public feedback form.
type Feedback struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	Message     string    `json:"message"`
	IsProcessed bool      `json:"is_processed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Feedback) TableName() string       { return "feedback" }
func (f *Feedback) RecordID() int64      { return f.ID }
func (f *Feedback) SetRecordID(id int64) { f.ID = id }

func (f *Feedback) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", f.Name).Required().MaxLength(200)
	v.Field("phone", f.Phone).MaxLength(32)
	v.Field("email", f.Email).Email().MaxLength(254)
	v.Field("message", f.Message).Required().MaxLength(2000)
	return v.Validate()
}

// Letter is a published thank-you letter.
type Letter struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Letter) TableName() string       { return "letters" }
func (l *Letter) RecordID() int64      { return l.ID }
func (l *Letter) SetRecordID(id int64) { l.ID = id }

func (l *Letter) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("title", l.Title).Required().MaxLength(300)
	v.Field("author", l.Author).MaxLength(200)
	v.Field("body", l.Body).Required().MaxLength(10000)
	return v.Validate()
}

// ClinicService is one entry of the services price list.
type ClinicService struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceRUB    int64     `json:"price_rub"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ClinicService) TableName() string       { return "clinic_services" }
func (s *ClinicService) RecordID() int64      { return s.ID }
func (s *ClinicService) SetRecordID(id int64) { s.ID = id }

func (s *ClinicService) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", s.Name).Required().MaxLength(300)
	v.Field("description", s.Description).MaxLength(3000)
	v.Field("price_rub", s.PriceRUB).Custom(func(value interface{}) *internal.AppError {
		if price, ok := value.(int64); ok && price < 0 {
			return internal.NewValidationFieldError("price_rub", "price must not be negative", internal.ErrCodeValidationFailed)
		}
		return nil
	})
	return v.Validate()
}

// Partner is one partner organisation shown on the marketing site.
type Partner struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logo_url"`
	SiteURL   string    `json:"site_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Partner) TableName() string       { return "partners" }
func (p *Partner) RecordID() int64      { return p.ID }
func (p *Partner) SetRecordID(id int64) { p.ID = id }

func (p *Partner) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", p.Name).Required().MaxLength(300)
	v.Field("site_url", p.SiteURL).MaxLength(500)
	return v.Validate()
}

// Vacancy is one open position.
type Vacancy struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Title        string    `json:"title"`
	Requirements string    `json:"requirements"`
	Conditions   string    `json:"conditions"`
	Salary       string    `json:"salary"`
	IsOpen       bool      `json:"is_open"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Vacancy) TableName() string       { return "vacancies" }
func (v *Vacancy) RecordID() int64      { return v.ID }
func (v *Vacancy) SetRecordID(id int64) { v.ID = id }

func (v *Vacancy) Validate() *internal.AppError {
	b := validation.NewValidator()
	b.Field("title", v.Title).Required().MaxLength(300)
	b.Field("requirements", v.Requirements).MaxLength(5000)
	b.Field("conditions", v.Conditions).MaxLength(5000)
	b.Field("salary", v.Salary).MaxLength(100)
	return b.Validate()
}

// Contact is one contact card: a branch, a department or a hotline.
type Contact struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Label     string    `json:"label"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Schedule  string    `json:"schedule"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string       { return "contacts" }
func (c *Contact) RecordID() int64      { return c.ID }
func (c *Contact) SetRecordID(id int64) { c.ID = id }

func (c *Contact) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("label", c.Label).Required().MaxLength(300)
	v.Field("phone", c.Phone).MaxLength(32)
	v.Field("email", c.Email).Email().MaxLength(254)
	v.Field("address", c.Address).MaxLength(500)
	return v.Validate()
}

// Collections, one descriptor per managed content type.

func Questions() Collection[*Question] {
	return Collection[*Question]{
		Name:       "questions",
		Searchable: []string{"question", "answer"},
		New:        func() *Question { return &Question{} },
	}
}

func Feedbacks() Collection[*Feedback] {
	return Collection[*Feedback]{
		Name:       "feedback",
		Searchable: []string{"name", "email", "message"},
		New:        func() *Feedback { return &Feedback{} },
	}
}

func Letters() Collection[*Letter] {
	return Collection[*Letter]{
		Name:       "letters",
		Searchable: []string{"title", "author", "body"},
		New:        func() *Letter { return &Letter{} },
	}
}

func ClinicServices() Collection[*ClinicService] {
	return Collection[*ClinicService]{
		Name:       "services",
		Searchable: []string{"name", "description"},
		New:        func() *ClinicService { return &ClinicService{} },
	}
}

func Partners() Collection[*Partner] {
	return Collection[*Partner]{
		Name:       "partners",
		Searchable: []string{"name"},
		New:        func() *Partner { return &Partner{} },
	}
}

func Vacancies() Collection[*Vacancy] {
	return Collection[*Vacancy]{
		Name:       "vacancies",
		Searchable: []string{"title", "requirements"},
		New:        func() *Vacancy { return &Vacancy{} },
	}
}

func Contacts() Collection[*Contact] {
	return Collection[*Contact]{
		Name:       "contacts",
		Searchable: []string{"label", "address"},
		New:        func() *Contact { return &Contact{} },
	}
}
