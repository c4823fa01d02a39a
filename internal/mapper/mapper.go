package mapper

import (
	"strings"

	"github.com/induskill/marketplace-api/internal/domain"
)

const timestampFormat = "2006-01-02T15:04:05Z"

// ToCourseDTO converts Course to CourseDTO
func ToCourseDTO(course *domain.Course) domain.CourseDTO {
	return domain.CourseDTO{
		ID:           course.ID,
		Title:        course.Title,
		CompanyName:  course.CompanyName,
		PartnerID:    course.PartnerID,
		Location:     course.Location,
		Type:         course.Type,
		Duration:     course.Duration,
		Price:        course.Price,
		ImageURL:     course.ImageURL,
		Description:  course.Description,
		Tags:         nonNil(course.Tags),
		Rating:       course.Rating,
		StudentCount: course.StudentCount,
		Syllabus:     nonNil(course.Syllabus),
		Requirements: nonNil(course.Requirements),
		Outcomes:     nonNil(course.Outcomes),
		ContactEmail: course.ContactEmail,
		ContactPhone: course.ContactPhone,
		Website:      course.Website,
		TrainerID:    course.TrainerID,
		IsPublished:  course.IsPublished,
		CreatedAt:    course.CreatedAt.UTC().Format(timestampFormat),
		UpdatedAt:    course.UpdatedAt.UTC().Format(timestampFormat),
	}
}

// ToCourseDTOs converts a slice of courses
func ToCourseDTOs(courses []domain.Course) []domain.CourseDTO {
	dtos := make([]domain.CourseDTO, len(courses))
	for i := range courses {
		dtos[i] = ToCourseDTO(&courses[i])
	}
	return dtos
}

// ApplyCourseRequest copies request fields onto course
func ApplyCourseRequest(course *domain.Course, req *domain.CreateCourseRequest) {
	course.Title = strings.TrimSpace(req.Title)
	course.CompanyName = strings.TrimSpace(req.CompanyName)
	course.PartnerID = req.PartnerID
	course.Location = req.Location
	course.Type = req.Type
	course.Duration = req.Duration
	course.Price = req.Price
	course.ImageURL = req.ImageURL
	course.Description = req.Description
	course.Tags = normalizeTags(req.Tags)
	course.Rating = req.Rating
	course.Syllabus = req.Syllabus
	course.Requirements = req.Requirements
	course.Outcomes = req.Outcomes
	course.ContactEmail = req.ContactEmail
	course.ContactPhone = req.ContactPhone
	course.Website = req.Website
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
}

// ToPartnerDTO converts Partner to PartnerDTO
func ToPartnerDTO(partner *domain.Partner) domain.PartnerDTO {
	return domain.PartnerDTO{
		ID:               partner.ID,
		Name:             partner.Name,
		Industry:         partner.Industry,
		Location:         partner.Location,
		Description:      partner.Description,
		EmployeeCount:    partner.EmployeeCount,
		FoundedYear:      partner.FoundedYear,
		Website:          partner.Website,
		ContactEmail:     partner.ContactEmail,
		ContactPhone:     partner.ContactPhone,
		TrainingPrograms: nonNil(partner.TrainingPrograms),
		CreatedAt:        partner.CreatedAt.UTC().Format(timestampFormat),
		UpdatedAt:        partner.UpdatedAt.UTC().Format(timestampFormat),
	}
}

// ApplyPartnerRequest copies request fields onto partner
func ApplyPartnerRequest(partner *domain.Partner, req *domain.CreatePartnerRequest) {
	partner.Name = strings.TrimSpace(req.Name)
	partner.Industry = strings.TrimSpace(req.Industry)
	partner.Location = req.Location
	partner.Description = req.Description
	partner.EmployeeCount = req.EmployeeCount
	partner.FoundedYear = req.FoundedYear
	partner.Website = req.Website
	partner.ContactEmail = req.ContactEmail
	partner.ContactPhone = req.ContactPhone
	partner.TrainingPrograms = req.TrainingPrograms
}

// ToEnrollmentDTO converts Enrollment to EnrollmentDTO
func ToEnrollmentDTO(enrollment *domain.Enrollment) domain.EnrollmentDTO {
	dto := domain.EnrollmentDTO{
		ID:            enrollment.ID,
		CourseID:      enrollment.CourseID,
		UserID:        enrollment.UserID,
		ContactName:   enrollment.ContactName,
		ContactEmail:  enrollment.ContactEmail,
		Phone:         enrollment.Phone,
		Organization:  enrollment.Organization,
		PaymentMethod: enrollment.PaymentMethod,
		Notes:         enrollment.Notes,
		Status:        enrollment.Status,
		CreatedAt:     enrollment.CreatedAt.UTC().Format(timestampFormat),
	}
	if enrollment.Course != nil {
		dto.CourseTitle = enrollment.Course.Title
	}
	return dto
}

// ToEnrollmentDTOs converts a slice of enrollments
func ToEnrollmentDTOs(enrollments []domain.Enrollment) []domain.EnrollmentDTO {
	dtos := make([]domain.EnrollmentDTO, len(enrollments))
	for i := range enrollments {
		dtos[i] = ToEnrollmentDTO(&enrollments[i])
	}
	return dtos
}

// ToContactMessageDTO converts ContactMessage to ContactMessageDTO
func ToContactMessageDTO(msg *domain.ContactMessage) domain.ContactMessageDTO {
	dto := domain.ContactMessageDTO{
		ID:        msg.ID,
		Name:      msg.Name,
		Email:     msg.Email,
		Subject:   msg.Subject,
		Message:   msg.Message,
		Status:    msg.Status,
		CreatedAt: msg.CreatedAt.UTC().Format(timestampFormat),
	}
	if msg.RepliedAt != nil {
		repliedAt := msg.RepliedAt.UTC().Format(timestampFormat)
		dto.RepliedAt = &repliedAt
	}
	return dto
}

// ToContactMessageDTOs converts a slice of contact messages
func ToContactMessageDTOs(msgs []domain.ContactMessage) []domain.ContactMessageDTO {
	dtos := make([]domain.ContactMessageDTO, len(msgs))
	for i := range msgs {
		dtos[i] = ToContactMessageDTO(&msgs[i])
	}
	return dtos
}

// normalizeTags lowercases, trims and de-duplicates tags, keeping their order
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
