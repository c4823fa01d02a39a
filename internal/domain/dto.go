package domain

import "github.com/google/uuid"

// PaginatedResponse wraps a page of results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// NewPaginatedResponse computes TotalPages from total and pageSize
func NewPaginatedResponse(data interface{}, total int64, page, pageSize int) PaginatedResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Response DTOs

type CourseDTO struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	CompanyName  string     `json:"companyName"`
	PartnerID    *uuid.UUID `json:"partnerId,omitempty"`
	Location     string     `json:"location"`
	Type         CourseType `json:"type"`
	Duration     string     `json:"duration"`
	Price        string     `json:"price"`
	ImageURL     string     `json:"imageUrl"`
	Description  string     `json:"description"`
	Tags         []string   `json:"tags"`
	Rating       float64    `json:"rating"`
	StudentCount int        `json:"studentCount"`
	Syllabus     []string   `json:"syllabus"`
	Requirements []string   `json:"requirements"`
	Outcomes     []string   `json:"outcomes"`
	ContactEmail string     `json:"contactEmail,omitempty"`
	ContactPhone string     `json:"contactPhone,omitempty"`
	Website      string     `json:"website,omitempty"`
	TrainerID    *string    `json:"trainerId,omitempty"`
	IsPublished  bool       `json:"isPublished"`
	CreatedAt    string     `json:"createdAt"`
	UpdatedAt    string     `json:"updatedAt"`
}

type PartnerDTO struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Industry         string    `json:"industry"`
	Location         string    `json:"location"`
	Description      string    `json:"description"`
	EmployeeCount    string    `json:"employeeCount"`
	FoundedYear      int       `json:"foundedYear"`
	Website          string    `json:"website,omitempty"`
	ContactEmail     string    `json:"contactEmail,omitempty"`
	ContactPhone     string    `json:"contactPhone,omitempty"`
	TrainingPrograms []string  `json:"trainingPrograms"`
	CreatedAt        string    `json:"createdAt"`
	UpdatedAt        string    `json:"updatedAt"`
}

type EnrollmentDTO struct {
	ID            uuid.UUID        `json:"id"`
	CourseID      uuid.UUID        `json:"courseId"`
	CourseTitle   string           `json:"courseTitle,omitempty"`
	UserID        string           `json:"userId"`
	ContactName   string           `json:"contactName,omitempty"`
	ContactEmail  string           `json:"contactEmail,omitempty"`
	Phone         string           `json:"phone,omitempty"`
	Organization  string           `json:"organization,omitempty"`
	PaymentMethod PaymentMethod    `json:"paymentMethod,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	Status        EnrollmentStatus `json:"status"`
	CreatedAt     string           `json:"createdAt"`
}

type ContactMessageDTO struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Message   string        `json:"message"`
	Status    ContactStatus `json:"status"`
	RepliedAt *string       `json:"repliedAt,omitempty"`
	CreatedAt string        `json:"createdAt"`
}

// UserRoleDTO is returned by the role lookup used to pick a dashboard
type UserRoleDTO struct {
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
	Dashboard string `json:"dashboard"`
	// Source is where the role came from: "database", "token" or "default"
	Source string `json:"source"`
}

// Dashboard DTOs

type StudentDashboardDTO struct {
	Profile     *UserProfile    `json:"profile,omitempty"`
	Enrollments []EnrollmentDTO `json:"enrollments"`
	Courses     []CourseDTO     `json:"courses"`
}

type TrainerCourseSummary struct {
	Course          CourseDTO `json:"course"`
	EnrollmentCount int64     `json:"enrollmentCount"`
}

type TrainerDashboardDTO struct {
	Courses          []TrainerCourseSummary `json:"courses"`
	TotalEnrollments int64                  `json:"totalEnrollments"`
}

type CorporateDashboardDTO struct {
	Partner          *PartnerDTO `json:"partner,omitempty"`
	Courses          []CourseDTO `json:"courses"`
	TotalEnrollments int64       `json:"totalEnrollments"`
}

type AdminDashboardDTO struct {
	CourseCount       int64               `json:"courseCount"`
	PartnerCount      int64               `json:"partnerCount"`
	EnrollmentCount   int64               `json:"enrollmentCount"`
	NewMessageCount   int64               `json:"newMessageCount"`
	UsersByRole       map[Role]int64      `json:"usersByRole"`
	RecentEnrollments []EnrollmentDTO     `json:"recentEnrollments"`
	RecentMessages    []ContactMessageDTO `json:"recentMessages"`
}

// Request DTOs

type CreateCourseRequest struct {
	Title        string     `json:"title" validate:"required,max=200"`
	CompanyName  string     `json:"companyName" validate:"required,max=200"`
	PartnerID    *uuid.UUID `json:"partnerId,omitempty"`
	Location     string     `json:"location" validate:"max=200"`
	Type         CourseType `json:"type" validate:"required,oneof=online onsite hybrid"`
	Duration     string     `json:"duration" validate:"max=100"`
	Price        string     `json:"price" validate:"max=50"`
	ImageURL     string     `json:"imageUrl" validate:"omitempty,url,max=500"`
	Description  string     `json:"description"`
	Tags         []string   `json:"tags"`
	Rating       float64    `json:"rating" validate:"gte=0,lte=5"`
	Syllabus     []string   `json:"syllabus"`
	Requirements []string   `json:"requirements"`
	Outcomes     []string   `json:"outcomes"`
	ContactEmail string     `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone string     `json:"contactPhone" validate:"max=50"`
	Website      string     `json:"website" validate:"omitempty,url,max=500"`
	IsPublished  *bool      `json:"isPublished,omitempty"`
}

type UpdateCourseRequest = CreateCourseRequest

type CreatePartnerRequest struct {
	Name             string   `json:"name" validate:"required,max=200"`
	Industry         string   `json:"industry" validate:"required,max=100"`
	Location         string   `json:"location" validate:"max=200"`
	Description      string   `json:"description"`
	EmployeeCount    string   `json:"employeeCount" validate:"max=50"`
	FoundedYear      int      `json:"foundedYear" validate:"omitempty,gte=1800,lte=2100"`
	Website          string   `json:"website" validate:"omitempty,url,max=500"`
	ContactEmail     string   `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone     string   `json:"contactPhone" validate:"max=50"`
	TrainingPrograms []string `json:"trainingPrograms"`
}

type UpdatePartnerRequest = CreatePartnerRequest

type EnrollRequest struct {
	CourseID      uuid.UUID     `json:"courseId" validate:"required"`
	ContactName   string        `json:"contactName" validate:"max=200"`
	ContactEmail  string        `json:"contactEmail" validate:"omitempty,email"`
	Phone         string        `json:"phone" validate:"max=50"`
	Organization  string        `json:"organization" validate:"max=200"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=card invoice bank_transfer"`
	Notes         string        `json:"notes" validate:"max=2000"`
}

type UpdateEnrollmentStatusRequest struct {
	Status EnrollmentStatus `json:"status" validate:"required,oneof=pending confirmed cancelled"`
}

type CreateContactMessageRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"required,max=300"`
	Message string `json:"message" validate:"required,max=5000"`
}

type UpdateContactStatusRequest struct {
	Status ContactStatus `json:"status" validate:"required,oneof=new read replied"`
}

type ReplyContactMessageRequest struct {
	Subject string `json:"subject" validate:"max=300"`
	Body    string `json:"body" validate:"required,max=10000"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,max=100"`
	AvatarURL *string `json:"avatarUrl,omitempty" validate:"omitempty,url,max=500"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

// SyncUserRequest carries the role picked on the sign-up form, if any
type SyncUserRequest struct {
	Role string `json:"role,omitempty" validate:"omitempty,oneof=student trainer corporate admin"`
}

// AssignRoleRequest is used by admins to change another user's role
type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=student trainer corporate admin"`
}

// AssignPartnerRequest links a corporate user to their company. A nil id unlinks.
type AssignPartnerRequest struct {
	PartnerID *uuid.UUID `json:"partnerId"`
}

// SyncUserResponse is the mirrored profile plus where the user should land
type SyncUserResponse struct {
	Profile     *UserProfile `json:"profile"`
	Role        Role         `json:"role"`
	Dashboard   string       `json:"dashboard"`
	RoleApplied bool         `json:"roleApplied"`
}
