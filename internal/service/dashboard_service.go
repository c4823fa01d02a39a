package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/mapper"
	"github.com/induskill/marketplace-api/internal/repository"
	"go.uber.org/zap"
)

const recentActivityLimit = 5

type DashboardService struct {
	courseRepo     *repository.CourseRepository
	partnerRepo    *repository.PartnerRepository
	enrollmentRepo *repository.EnrollmentRepository
	messageRepo    *repository.ContactMessageRepository
	profileRepo    *repository.UserProfileRepository
	logger         *zap.Logger
}

func NewDashboardService(
	courseRepo *repository.CourseRepository,
	partnerRepo *repository.PartnerRepository,
	enrollmentRepo *repository.EnrollmentRepository,
	messageRepo *repository.ContactMessageRepository,
	profileRepo *repository.UserProfileRepository,
	logger *zap.Logger,
) *DashboardService {
	return &DashboardService{
		courseRepo:     courseRepo,
		partnerRepo:    partnerRepo,
		enrollmentRepo: enrollmentRepo,
		messageRepo:    messageRepo,
		profileRepo:    profileRepo,
		logger:         logger,
	}
}

// ForRole returns the dashboard for role. Users may open their own role's
// dashboard; admins may open any.
func (s *DashboardService) ForRole(ctx context.Context, role domain.Role) (interface{}, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown dashboard %q", ErrNotFound, role)
	}
	if !user.IsAdmin() && user.EffectiveRole() != role {
		return nil, ErrForbidden
	}

	switch role {
	case domain.RoleAdmin:
		return s.Admin(ctx)
	case domain.RoleTrainer:
		return s.Trainer(ctx)
	case domain.RoleCorporate:
		return s.Corporate(ctx)
	default:
		return s.Student(ctx)
	}
}

// Student lists the caller's enrollments and the courses behind them
func (s *DashboardService) Student(ctx context.Context) (*domain.StudentDashboardDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.optionalProfile(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentRepo.ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", translateError(err, ErrEnrollmentNotFound))
	}

	courseIDs := make([]uuid.UUID, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Status != domain.EnrollmentStatusCancelled {
			courseIDs = append(courseIDs, e.CourseID)
		}
	}
	courses, err := s.courseRepo.ListByIDs(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load courses: %w", translateError(err, ErrCourseNotFound))
	}

	return &domain.StudentDashboardDTO{
		Profile:     profile,
		Enrollments: mapper.ToEnrollmentDTOs(enrollments),
		Courses:     mapper.ToCourseDTOs(courses),
	}, nil
}

// Trainer lists the caller's courses with their active enrollment counts
func (s *DashboardService) Trainer(ctx context.Context) (*domain.TrainerDashboardDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	courses, err := s.courseRepo.ListByTrainer(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list trainer courses: %w", translateError(err, ErrCourseNotFound))
	}

	counts, err := s.enrollmentRepo.CountByCourses(ctx, courseIDsOf(courses))
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", translateError(err, ErrEnrollmentNotFound))
	}

	dashboard := &domain.TrainerDashboardDTO{Courses: make([]domain.TrainerCourseSummary, len(courses))}
	for i := range courses {
		count := counts[courses[i].ID]
		dashboard.Courses[i] = domain.TrainerCourseSummary{
			Course:          mapper.ToCourseDTO(&courses[i]),
			EnrollmentCount: count,
		}
		dashboard.TotalEnrollments += count
	}
	return dashboard, nil
}

// Corporate shows the partner company linked to the caller and its courses
func (s *DashboardService) Corporate(ctx context.Context) (*domain.CorporateDashboardDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &domain.CorporateDashboardDTO{Courses: []domain.CourseDTO{}}

	profile, err := s.optionalProfile(ctx, user.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.PartnerID == nil {
		return dashboard, nil
	}

	partner, err := s.partnerRepo.GetByID(ctx, *profile.PartnerID)
	if err != nil {
		err = translateError(err, ErrPartnerNotFound)
		if errors.Is(err, ErrPartnerNotFound) {
			s.logger.Warn("profile linked to missing partner",
				zap.String("user_id", user.UserID),
				zap.String("partner_id", profile.PartnerID.String()),
			)
			return dashboard, nil
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	partnerDTO := mapper.ToPartnerDTO(partner)
	dashboard.Partner = &partnerDTO

	courses, err := s.courseRepo.ListByPartner(ctx, partner.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list partner courses: %w", translateError(err, ErrCourseNotFound))
	}
	dashboard.Courses = mapper.ToCourseDTOs(courses)

	counts, err := s.enrollmentRepo.CountByCourses(ctx, courseIDsOf(courses))
	if err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", translateError(err, ErrEnrollmentNotFound))
	}
	for _, count := range counts {
		dashboard.TotalEnrollments += count
	}
	return dashboard, nil
}

// Admin summarises the whole marketplace
func (s *DashboardService) Admin(ctx context.Context) (*domain.AdminDashboardDTO, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	var dashboard domain.AdminDashboardDTO
	var err error

	if dashboard.CourseCount, err = s.courseRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", translateError(err, ErrCourseNotFound))
	}
	if dashboard.PartnerCount, err = s.partnerRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count partners: %w", translateError(err, ErrPartnerNotFound))
	}
	if dashboard.EnrollmentCount, err = s.enrollmentRepo.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count enrollments: %w", translateError(err, ErrEnrollmentNotFound))
	}
	if dashboard.NewMessageCount, err = s.messageRepo.CountByStatus(ctx, domain.ContactStatusNew); err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", translateError(err, ErrMessageNotFound))
	}
	if dashboard.UsersByRole, err = s.profileRepo.CountByRole(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", translateError(err, ErrProfileNotFound))
	}

	enrollments, err := s.enrollmentRepo.Recent(ctx, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent enrollments: %w", translateError(err, ErrEnrollmentNotFound))
	}
	dashboard.RecentEnrollments = mapper.ToEnrollmentDTOs(enrollments)

	msgs, err := s.messageRepo.Recent(ctx, recentActivityLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", translateError(err, ErrMessageNotFound))
	}
	dashboard.RecentMessages = mapper.ToContactMessageDTOs(msgs)

	return &dashboard, nil
}

// optionalProfile returns nil when the user has not been synced yet
func (s *DashboardService) optionalProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	err = translateError(err, ErrProfileNotFound)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to get profile: %w", err)
}

func courseIDsOf(courses []domain.Course) []uuid.UUID {
	ids := make([]uuid.UUID, len(courses))
	for i := range courses {
		ids[i] = courses[i].ID
	}
	return ids
}
