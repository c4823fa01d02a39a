package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel carries the id and timestamps shared by catalog records
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id when the caller did not set one
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// CourseType describes how a course is delivered
type CourseType string

const (
	CourseTypeOnline CourseType = "online"
	CourseTypeOnsite CourseType = "onsite"
	CourseTypeHybrid CourseType = "hybrid"
)

// IsValid reports whether t is a known course type
func (t CourseType) IsValid() bool {
	switch t {
	case CourseTypeOnline, CourseTypeOnsite, CourseTypeHybrid:
		return true
	}
	return false
}

// Course is a training course offered on the marketplace
type Course struct {
	BaseModel
	Title        string     `gorm:"type:varchar(200);not null;index"`
	CompanyName  string     `gorm:"type:varchar(200);not null;column:company_name"`
	PartnerID    *uuid.UUID `gorm:"type:uuid;column:partner_id;index"`
	Partner      *Partner   `gorm:"foreignKey:PartnerID"`
	Location     string     `gorm:"type:varchar(200)"`
	Type         CourseType `gorm:"type:varchar(20);not null;default:'onsite';index"`
	Duration     string     `gorm:"type:varchar(100)"`
	Price        string     `gorm:"type:varchar(50)"`
	ImageURL     string     `gorm:"type:varchar(500);column:image_url"`
	Description  string     `gorm:"type:text"`
	Tags         []string   `gorm:"serializer:json;type:jsonb"`
	Rating       float64    `gorm:"not null;default:0"`
	StudentCount int        `gorm:"not null;default:0;column:student_count"`
	Syllabus     []string   `gorm:"serializer:json;type:jsonb"`
	Requirements []string   `gorm:"serializer:json;type:jsonb"`
	Outcomes     []string   `gorm:"serializer:json;type:jsonb"`
	ContactEmail string     `gorm:"type:varchar(255);column:contact_email"`
	ContactPhone string     `gorm:"type:varchar(50);column:contact_phone"`
	Website      string     `gorm:"type:varchar(500)"`
	TrainerID    *string    `gorm:"type:varchar(100);column:trainer_id;index"`
	IsPublished  bool       `gorm:"not null;column:is_published;index"`
}

// Partner is a company that provides training on the marketplace
type Partner struct {
	BaseModel
	Name             string   `gorm:"type:varchar(200);not null;uniqueIndex"`
	Industry         string   `gorm:"type:varchar(100);index"`
	Location         string   `gorm:"type:varchar(200)"`
	Description      string   `gorm:"type:text"`
	EmployeeCount    string   `gorm:"type:varchar(50);column:employee_count"`
	FoundedYear      int      `gorm:"column:founded_year"`
	Website          string   `gorm:"type:varchar(500)"`
	ContactEmail     string   `gorm:"type:varchar(255);column:contact_email"`
	ContactPhone     string   `gorm:"type:varchar(50);column:contact_phone"`
	TrainingPrograms []string `gorm:"serializer:json;type:jsonb;column:training_programs"`
}

// EnrollmentStatus tracks an enrollment through review
type EnrollmentStatus string

const (
	EnrollmentStatusPending   EnrollmentStatus = "pending"
	EnrollmentStatusConfirmed EnrollmentStatus = "confirmed"
	EnrollmentStatusCancelled EnrollmentStatus = "cancelled"
)

func (s EnrollmentStatus) IsValid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusConfirmed, EnrollmentStatusCancelled:
		return true
	}
	return false
}

// PaymentMethod is what the student picked on the enrollment form. No charge is made.
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodInvoice      PaymentMethod = "invoice"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// Enrollment links an authenticated user to a course
type Enrollment struct {
	BaseModel
	CourseID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_course_user"`
	Course        *Course          `gorm:"foreignKey:CourseID"`
	UserID        string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_enrollment_course_user;index"`
	ContactName   string           `gorm:"type:varchar(200);column:contact_name"`
	ContactEmail  string           `gorm:"type:varchar(255);column:contact_email"`
	Phone         string           `gorm:"type:varchar(50)"`
	Organization  string           `gorm:"type:varchar(200)"`
	PaymentMethod PaymentMethod    `gorm:"type:varchar(30);column:payment_method"`
	Notes         string           `gorm:"type:text"`
	Status        EnrollmentStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
}

// ContactStatus tracks an inbox message
type ContactStatus string

const (
	ContactStatusNew     ContactStatus = "new"
	ContactStatusRead    ContactStatus = "read"
	ContactStatusReplied ContactStatus = "replied"
)

// IsValid reports whether s is a known contact status
func (s ContactStatus) IsValid() bool {
	switch s {
	case ContactStatusNew, ContactStatusRead, ContactStatusReplied:
		return true
	}
	return false
}

// ContactMessage is a message submitted through the public contact form
type ContactMessage struct {
	BaseModel
	Name      string        `gorm:"type:varchar(200);not null"`
	Email     string        `gorm:"type:varchar(255);not null"`
	Subject   string        `gorm:"type:varchar(300);not null"`
	Message   string        `gorm:"type:text;not null"`
	Status    ContactStatus `gorm:"type:varchar(20);not null;default:'new';index"`
	RepliedAt *time.Time    `gorm:"column:replied_at"`
}

// UserProfile mirrors identity-provider fields so the application can query users
type UserProfile struct {
	ID           string     `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email        string     `gorm:"type:varchar(255);index" json:"email"`
	FirstName    string     `gorm:"type:varchar(100);column:first_name" json:"firstName,omitempty"`
	LastName     string     `gorm:"type:varchar(100);column:last_name" json:"lastName,omitempty"`
	DisplayName  string     `gorm:"type:varchar(200);column:display_name" json:"displayName"`
	AvatarURL    string     `gorm:"type:varchar(500);column:avatar_url" json:"avatarUrl,omitempty"`
	Role         Role       `gorm:"type:varchar(20);index" json:"role"`
	Phone        string     `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Bio          string     `gorm:"type:text" json:"bio,omitempty"`
	PartnerID    *uuid.UUID `gorm:"type:uuid;column:partner_id" json:"partnerId,omitempty"`
	LastSyncedAt *time.Time `gorm:"column:last_synced_at" json:"lastSyncedAt,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

