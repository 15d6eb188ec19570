package upstream

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/kannou1/PFE/internal/types"
)

// ErrNoSubject is returned when an operation needs a subject id and got none.
var ErrNoSubject = errors.New("subject id is required")

func idPath(prefix, id string) string {
	return prefix + url.PathEscape(id)
}

// Profile fetches the subject's own user document.
func (c *Client) Profile(ctx context.Context, subjectID, token string) (*types.Profile, error) {
	if subjectID == "" {
		return nil, &FetchError{Resource: ResourceProfile, Err: ErrNoSubject}
	}
	var u rawUser
	if err := c.getJSON(ctx, ResourceProfile, idPath("/users/getUserById/", subjectID), token, &u); err != nil {
		return nil, err
	}
	p := normalizeProfile(u)
	return &p, nil
}

// Schedule returns the sessions dated inside the week containing now. With
// ScheduleFallback set, an empty week falls back to the first sessions of all.
func (c *Client) Schedule(ctx context.Context, token string, now time.Time) (types.Section[types.ScheduleEntry], error) {
	var seances []rawSeance
	if err := c.getJSON(ctx, ResourceSchedule, "/seance/getAllSeances", token, &seances); err != nil {
		return types.Section[types.ScheduleEntry]{}, err
	}

	start, end := WeekWindow(now)
	var week []rawSeance
	for _, s := range seances {
		t, ok := ParseDate(s.DateDebut, now.Location())
		if ok && inWindow(t, start, end) {
			week = append(week, s)
		}
	}

	if cfg := c.cfg(); len(week) == 0 && len(seances) > 0 && cfg.ScheduleFallback {
		slog.Debug("no sessions this week, using fallback", "total", len(seances))
		week = seances[:min(len(seances), cfg.ScheduleFallbackLimit)]
	}
	return types.Fetched(mapAll(week, normalizeSession)), nil
}

func (c *Client) Exams(ctx context.Context, token string) (types.Section[types.Exam], error) {
	var exams []rawExam
	if err := c.getJSON(ctx, ResourceExams, "/examen/getAll", token, &exams); err != nil {
		return types.Section[types.Exam]{}, err
	}
	return types.Fetched(mapAll(exams, normalizeExam)), nil
}

// Grades uses the student-scoped listing for students and falls back to the
// full listing, filtered to the subject, when that fails. Other roles get
// the full listing unfiltered.
func (c *Client) Grades(ctx context.Context, subjectID string, p *types.Profile, token string) (types.Section[types.Grade], error) {
	student := p != nil && p.Role == RoleStudent

	if student {
		var notes []rawNote
		err := c.getJSON(ctx, ResourceGrades, "/note/getForStudent", token, &notes)
		if err == nil {
			return types.Fetched(mapAll(notes, normalizeGrade)), nil
		}
		slog.Warn("student grades unavailable, trying full listing", "error", err)
	}

	var notes []rawNote
	if err := c.getJSON(ctx, ResourceGrades, "/note/get", token, &notes); err != nil {
		return types.Section[types.Grade]{}, err
	}
	if student {
		notes = filterBySubject(notes, subjectID)
	}
	return types.Fetched(mapAll(notes, normalizeGrade)), nil
}

func filterBySubject(notes []rawNote, subjectID string) []rawNote {
	var out []rawNote
	for _, n := range notes {
		if n.Etudiant.ID != "" && n.Etudiant.ID == subjectID {
			out = append(out, n)
		}
	}
	return out
}

func (c *Client) Attendance(ctx context.Context, subjectID, token string) (*types.Attendance, error) {
	var records []rawPresence
	if err := c.getJSON(ctx, ResourceAttendance, idPath("/presence/getPresenceByEtudiant/", subjectID), token, &records); err != nil {
		return nil, err
	}
	return summarizeAttendance(records, c.cfg().RecentLimit), nil
}

func (c *Client) Courses(ctx context.Context, token string) (types.Section[types.Course], error) {
	var courses []rawCours
	if err := c.getJSON(ctx, ResourceCourses, "/cours/getAllCours", token, &courses); err != nil {
		return types.Section[types.Course]{}, err
	}
	return types.Fetched(mapAll(courses, normalizeCourse)), nil
}

// Teachers lists the teachers of the subject's class. No class, no teachers.
func (c *Client) Teachers(ctx context.Context, p *types.Profile, token string) (types.Section[types.Teacher], error) {
	if p == nil || p.ClassID == "" {
		return types.Empty[types.Teacher](), nil
	}
	var class rawClass
	if err := c.getJSON(ctx, ResourceClasses, idPath("/classe/getClasseById/", p.ClassID), token, &class); err != nil {
		return types.Section[types.Teacher]{}, err
	}
	teachers := make([]types.Teacher, 0, len(class.Enseignants))
	for _, t := range class.Enseignants {
		if t.Doc != nil {
			teachers = append(teachers, normalizeTeacher(t.Doc))
		}
	}
	return types.Fetched(teachers), nil
}

// Students lists the students a teacher teaches across all their classes, or
// a student's classmates. Other roles get an empty list.
func (c *Client) Students(ctx context.Context, subjectID string, p *types.Profile, token string) (types.Section[types.Student], error) {
	if p == nil {
		return types.Empty[types.Student](), nil
	}

	var students []types.Student
	switch {
	case p.Role == RoleTeacher:
		var classes []rawClass
		if err := c.getJSON(ctx, ResourceClasses, "/classe/getAllClasses", token, &classes); err != nil {
			return types.Section[types.Student]{}, err
		}
		for _, class := range classes {
			if !taughtBy(class, subjectID) {
				continue
			}
			for _, s := range class.Etudiants {
				if s.Doc != nil {
					students = append(students, normalizeStudent(s.Doc, class.Nom))
				}
			}
		}
	case p.Role == RoleStudent && p.ClassID != "":
		var class rawClass
		if err := c.getJSON(ctx, ResourceClasses, idPath("/classe/getClasseById/", p.ClassID), token, &class); err != nil {
			return types.Section[types.Student]{}, err
		}
		for _, s := range class.Etudiants {
			if s.Doc != nil && s.ID != subjectID {
				students = append(students, normalizeStudent(s.Doc, ""))
			}
		}
	}
	return types.Capped(students, c.cfg().StudentsLimit), nil
}

func taughtBy(class rawClass, teacherID string) bool {
	for _, t := range class.Enseignants {
		if t.ID == teacherID {
			return true
		}
	}
	return false
}

func (c *Client) Notifications(ctx context.Context, subjectID, token string) (types.Section[types.Notification], error) {
	var notes []rawNotification
	if err := c.getJSON(ctx, ResourceNotifications, idPath("/notification/user/", subjectID), token, &notes); err != nil {
		return types.Section[types.Notification]{}, err
	}
	return types.Capped(mapAll(notes, normalizeNotification), c.cfg().NotifyLimit), nil
}

func (c *Client) Requests(ctx context.Context, subjectID, token string) (types.Section[types.Request], error) {
	var demandes []rawDemande
	if err := c.getJSON(ctx, ResourceRequests, idPath("/demande/user/", subjectID), token, &demandes); err != nil {
		return types.Section[types.Request]{}, err
	}
	return types.Fetched(mapAll(demandes, normalizeRequest)), nil
}

// Announcements returns the most recent announcements, capped without a
// remainder count.
func (c *Client) Announcements(ctx context.Context, token string) (types.Section[types.Announcement], error) {
	var announcements []rawAnnouncement
	if err := c.getJSON(ctx, ResourceAnnouncements, "/announcement", token, &announcements); err != nil {
		return types.Section[types.Announcement]{}, err
	}
	if limit := c.cfg().AnnounceLimit; limit > 0 && len(announcements) > limit {
		announcements = announcements[:limit]
	}
	return types.Fetched(mapAll(announcements, normalizeAnnouncement)), nil
}
