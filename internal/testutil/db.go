package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/database"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the marketplace schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to open sqlite test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// SetupEmptyDB opens an in-memory sqlite database without any tables
func SetupEmptyDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateTestPartner inserts a partner company
func CreateTestPartner(t *testing.T, db *gorm.DB, name string) *domain.Partner {
	t.Helper()
	partner := &domain.Partner{
		Name:             name,
		Industry:         "Manufacturing",
		Location:         "Pune",
		Description:      name + " trains technicians",
		EmployeeCount:    "500-1000",
		FoundedYear:      1998,
		ContactEmail:     "training@example.com",
		TrainingPrograms: []string{"Welding", "CNC"},
	}
	require.NoError(t, db.Create(partner).Error)
	return partner
}

// CourseOption tweaks a course before it is inserted
type CourseOption func(*domain.Course)

func WithPartner(p *domain.Partner) CourseOption {
	return func(c *domain.Course) {
		c.PartnerID = &p.ID
		c.CompanyName = p.Name
	}
}

func WithTrainer(userID string) CourseOption {
	return func(c *domain.Course) { c.TrainerID = &userID }
}

func WithType(courseType domain.CourseType) CourseOption {
	return func(c *domain.Course) { c.Type = courseType }
}

func Unpublished() CourseOption {
	return func(c *domain.Course) { c.IsPublished = false }
}

// CreateTestCourse inserts a published onsite course
func CreateTestCourse(t *testing.T, db *gorm.DB, title string, opts ...CourseOption) *domain.Course {
	t.Helper()
	course := &domain.Course{
		Title:        title,
		CompanyName:  "Acme Industrial",
		Location:     "Chennai",
		Type:         domain.CourseTypeOnsite,
		Duration:     "5 days",
		Price:        "₹25,000",
		Description:  title + " for shop floor teams",
		Tags:         []string{"safety"},
		Rating:       4.5,
		Syllabus:     []string{"Introduction"},
		Requirements: []string{"None"},
		Outcomes:     []string{"Certificate"},
		IsPublished:  true,
	}
	for _, opt := range opts {
		opt(course)
	}
	require.NoError(t, db.Omit(clause.Associations).Create(course).Error)
	return course
}

// CreateTestProfile inserts a mirrored user profile
func CreateTestProfile(t *testing.T, db *gorm.DB, userID string, role domain.Role) *domain.UserProfile {
	t.Helper()
	profile := &domain.UserProfile{
		ID:          userID,
		Email:       userID + "@example.com",
		FirstName:   "Test",
		LastName:    "User",
		DisplayName: "Test User",
		Role:        role,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

// CreateTestEnrollment enrolls userID in course
func CreateTestEnrollment(t *testing.T, db *gorm.DB, course *domain.Course, userID string, status domain.EnrollmentStatus) *domain.Enrollment {
	t.Helper()
	enrollment := &domain.Enrollment{
		CourseID:      course.ID,
		UserID:        userID,
		ContactName:   "Test User",
		ContactEmail:  userID + "@example.com",
		PaymentMethod: domain.PaymentMethodInvoice,
		Status:        status,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(enrollment).Error)
	return enrollment
}

// CreateTestMessage inserts a contact message
func CreateTestMessage(t *testing.T, db *gorm.DB, subject string) *domain.ContactMessage {
	t.Helper()
	msg := &domain.ContactMessage{
		Name:    "Priya",
		Email:   "priya@example.com",
		Subject: subject,
		Message: "Do you run weekend batches?",
		Status:  domain.ContactStatusNew,
	}
	require.NoError(t, db.Create(msg).Error)
	return msg
}
