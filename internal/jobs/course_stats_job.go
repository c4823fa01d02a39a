package jobs

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// CourseStatsJobName is the name of the student count refresh job
const CourseStatsJobName = "course_stats"

// StudentCountRecomputer rebuilds denormalised course student counts
type StudentCountRecomputer interface {
	RecomputeStudentCounts(ctx context.Context) (int64, error)
}

// CourseStatsJob keeps each course's student count in line with its active enrollments,
// correcting drift left by deleted or cancelled enrollments.
type CourseStatsJob struct {
	courses StudentCountRecomputer
	logger  *zap.Logger
}

func NewCourseStatsJob(courses StudentCountRecomputer, logger *zap.Logger) *CourseStatsJob {
	return &CourseStatsJob{courses: courses, logger: logger}
}

func (j *CourseStatsJob) Name() string { return CourseStatsJobName }

// Run recomputes every course's student count once
func (j *CourseStatsJob) Run(ctx context.Context) error {
	updated, err := j.courses.RecomputeStudentCounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to recompute student counts: %w", err)
	}
	if updated > 0 {
		j.logger.Info("course student counts corrected", zap.Int64("courses_updated", updated))
	}
	return nil
}

// RegisterCourseStatsJob schedules the student count job.
// With runOnStartup set, one pass also runs right away.
func RegisterCourseStatsJob(
	scheduler *Scheduler,
	courses StudentCountRecomputer,
	logger *zap.Logger,
	cronExpr string,
	runOnStartup bool,
) error {
	job := NewCourseStatsJob(courses, logger)
	if err := scheduler.Schedule(cronExpr, job); err != nil {
		return err
	}
	if runOnStartup {
		scheduler.RunNow(job)
	}
	return nil
}
