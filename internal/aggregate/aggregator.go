// Package aggregate builds the per-request context for a classified message.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kannou1/PFE/internal/telemetry"
	"github.com/kannou1/PFE/internal/types"
	"github.com/kannou1/PFE/internal/upstream"
)

// ErrProfileUnavailable means the subject's profile could not be fetched and
// no context was built.
var ErrProfileUnavailable = errors.New("profile unavailable")

const (
	summaryExams  = 3
	summaryGrades = 3
)

// Source is the backend read surface the aggregator depends on.
// *upstream.Client implements it.
type Source interface {
	Profile(ctx context.Context, subjectID, token string) (*types.Profile, error)
	Schedule(ctx context.Context, token string, now time.Time) (types.Section[types.ScheduleEntry], error)
	Exams(ctx context.Context, token string) (types.Section[types.Exam], error)
	Grades(ctx context.Context, subjectID string, p *types.Profile, token string) (types.Section[types.Grade], error)
	Attendance(ctx context.Context, subjectID, token string) (*types.Attendance, error)
	Courses(ctx context.Context, token string) (types.Section[types.Course], error)
	Teachers(ctx context.Context, p *types.Profile, token string) (types.Section[types.Teacher], error)
	Students(ctx context.Context, subjectID string, p *types.Profile, token string) (types.Section[types.Student], error)
	Notifications(ctx context.Context, subjectID, token string) (types.Section[types.Notification], error)
	Requests(ctx context.Context, subjectID, token string) (types.Section[types.Request], error)
	Announcements(ctx context.Context, token string) (types.Section[types.Announcement], error)
}

var _ Source = (*upstream.Client)(nil)

// Aggregator turns an intent into a Context by calling the backend.
type Aggregator struct {
	src    Source
	now    func() time.Time
	tracer trace.Tracer
}

func New(src Source) *Aggregator {
	return &Aggregator{
		src:    src,
		now:    time.Now,
		tracer: otel.Tracer(telemetry.TracerName),
	}
}

// WithClock replaces the time source used for the week window and the summary.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Build fetches the profile, then the data the intent calls for. Failures of
// anything but the profile are folded into empty sections; a profile failure
// returns ErrProfileUnavailable and no context.
func (a *Aggregator) Build(ctx context.Context, subjectID string, intent types.Intent, token string) (*types.Context, error) {
	ctx, span := a.tracer.Start(ctx, "aggregate.build", trace.WithAttributes(attribute.String("intent", string(intent))))
	defer span.End()

	profile, err := traced(ctx, a.tracer, upstream.ResourceProfile, func(ctx context.Context) (*types.Profile, error) {
		return a.src.Profile(ctx, subjectID, token)
	})
	if err != nil {
		slog.Warn("profile fetch failed, skipping context", "subject_id", subjectID, "intent", intent, "error", err)
		span.SetStatus(codes.Error, "profile unavailable")
		return nil, fmt.Errorf("%w: %w", ErrProfileUnavailable, err)
	}

	c := &types.Context{User: profile}
	switch intent {
	case types.IntentSchedule:
		c.Schedule = section(ctx, a, upstream.ResourceSchedule, func(ctx context.Context) (types.Section[types.ScheduleEntry], error) {
			return a.src.Schedule(ctx, token, a.now())
		})
	case types.IntentExams:
		c.Exams = section(ctx, a, upstream.ResourceExams, func(ctx context.Context) (types.Section[types.Exam], error) {
			return a.src.Exams(ctx, token)
		})
	case types.IntentGrades:
		c.Grades = section(ctx, a, upstream.ResourceGrades, func(ctx context.Context) (types.Section[types.Grade], error) {
			return a.src.Grades(ctx, subjectID, profile, token)
		})
	case types.IntentAttendance:
		c.Attendance = a.attendance(ctx, subjectID, token)
	case types.IntentCourses:
		c.Courses = section(ctx, a, upstream.ResourceCourses, func(ctx context.Context) (types.Section[types.Course], error) {
			return a.src.Courses(ctx, token)
		})
	case types.IntentTeachers:
		c.Teachers = section(ctx, a, upstream.ResourceTeachers, func(ctx context.Context) (types.Section[types.Teacher], error) {
			return a.src.Teachers(ctx, profile, token)
		})
	case types.IntentStudents:
		c.Students = section(ctx, a, upstream.ResourceStudents, func(ctx context.Context) (types.Section[types.Student], error) {
			return a.src.Students(ctx, subjectID, profile, token)
		})
	case types.IntentNotifications:
		c.Notifications = section(ctx, a, upstream.ResourceNotifications, func(ctx context.Context) (types.Section[types.Notification], error) {
			return a.src.Notifications(ctx, subjectID, token)
		})
	case types.IntentRequests:
		c.Requests = section(ctx, a, upstream.ResourceRequests, func(ctx context.Context) (types.Section[types.Request], error) {
			return a.src.Requests(ctx, subjectID, token)
		})
	case types.IntentAnnouncements:
		c.Announcements = section(ctx, a, upstream.ResourceAnnouncements, func(ctx context.Context) (types.Section[types.Announcement], error) {
			return a.src.Announcements(ctx, token)
		})
	case types.IntentProfile:
		details := *profile
		c.Profile = &details
	default:
		c.Summary = a.summary(ctx, subjectID, profile, token)
	}
	return c, nil
}

func (a *Aggregator) attendance(ctx context.Context, subjectID, token string) *types.Attendance {
	att, err := traced(ctx, a.tracer, upstream.ResourceAttendance, func(ctx context.Context) (*types.Attendance, error) {
		return a.src.Attendance(ctx, subjectID, token)
	})
	if err != nil || att == nil {
		logFold(upstream.ResourceAttendance, err)
		return types.EmptyAttendance()
	}
	return att
}

// summary fetches profile, exams, grades and schedule concurrently and
// derives the cross-cutting slice shown for general questions.
func (a *Aggregator) summary(ctx context.Context, subjectID string, initial *types.Profile, token string) *types.Summary {
	now := a.now()

	var (
		g        errgroup.Group
		fresh    *types.Profile
		exams    types.Section[types.Exam]
		grades   types.Section[types.Grade]
		schedule types.Section[types.ScheduleEntry]
	)
	g.Go(func() error {
		p, err := traced(ctx, a.tracer, upstream.ResourceProfile, func(ctx context.Context) (*types.Profile, error) {
			return a.src.Profile(ctx, subjectID, token)
		})
		if err != nil {
			logFold(upstream.ResourceProfile, err)
			return nil
		}
		fresh = p
		return nil
	})
	g.Go(func() error {
		exams = section(ctx, a, upstream.ResourceExams, func(ctx context.Context) (types.Section[types.Exam], error) {
			return a.src.Exams(ctx, token)
		})
		return nil
	})
	g.Go(func() error {
		grades = section(ctx, a, upstream.ResourceGrades, func(ctx context.Context) (types.Section[types.Grade], error) {
			return a.src.Grades(ctx, subjectID, initial, token)
		})
		return nil
	})
	g.Go(func() error {
		schedule = section(ctx, a, upstream.ResourceSchedule, func(ctx context.Context) (types.Section[types.ScheduleEntry], error) {
			return a.src.Schedule(ctx, token, now)
		})
		return nil
	})
	_ = g.Wait()

	who := initial
	if fresh != nil {
		who = fresh
	}
	return Summarize(now, who, exams.Items, grades.Items, schedule.Items)
}

// Summarize keeps exams dated strictly after now (at most 3), the first 3
// grades as returned, and the sessions whose day is today's weekday name.
func Summarize(now time.Time, p *types.Profile, exams []types.Exam, grades []types.Grade, schedule []types.ScheduleEntry) *types.Summary {
	s := &types.Summary{
		UpcomingExams: []types.Exam{},
		RecentGrades:  []types.Grade{},
		TodaySchedule: []types.ScheduleEntry{},
	}
	if p != nil {
		s.Role = p.Role
		s.Class = p.Class
	}

	for _, e := range exams {
		if len(s.UpcomingExams) == summaryExams {
			break
		}
		if t, ok := upstream.ParseDate(e.Date, now.Location()); ok && t.After(now) {
			s.UpcomingExams = append(s.UpcomingExams, e)
		}
	}

	s.RecentGrades = append(s.RecentGrades, grades[:min(len(grades), summaryGrades)]...)

	today := now.Weekday().String()
	for _, e := range schedule {
		if strings.EqualFold(e.Day, today) {
			s.TodaySchedule = append(s.TodaySchedule, e)
		}
	}
	return s
}

func section[T any](ctx context.Context, a *Aggregator, resource string, fn func(context.Context) (types.Section[T], error)) types.Section[T] {
	s, err := traced(ctx, a.tracer, resource, fn)
	if err != nil {
		logFold(resource, err)
		return types.Empty[T]()
	}
	if !s.Fetched {
		s = types.Fetched(s.Items)
	}
	return s
}

func traced[T any](ctx context.Context, tracer trace.Tracer, resource string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, "aggregate.fetch", trace.WithAttributes(attribute.String("resource", resource)))
	defer span.End()

	v, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return v, err
}

// logFold records a fetch folded into an empty section. A 404 means the
// backend has nothing recorded for the subject, not that it is failing.
func logFold(resource string, err error) {
	if upstream.IsNotFound(err) {
		slog.Info("nothing recorded upstream, using empty result", "resource", resource)
		return
	}
	slog.Warn("upstream fetch failed, using empty result", "resource", resource, "error", err)
}
