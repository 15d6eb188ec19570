// Package prompt serializes a request context into the text block handed to
// the language model.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kannou1/PFE/internal/types"
)

// renderOrder is the fixed order sections appear in. The profile intent has
// no block of its own; its details extend the user block.
var renderOrder = []types.SectionKey{
	types.SectionUser,
	types.SectionSchedule,
	types.SectionExams,
	types.SectionGrades,
	types.SectionAttendance,
	types.SectionCourses,
	types.SectionTeachers,
	types.SectionStudents,
	types.SectionNotifications,
	types.SectionRequests,
	types.SectionAnnouncements,
	types.SectionSummary,
}

// Assemble renders c as the context block. Absent sections leave no trace;
// fetched but empty sections render their "no data" sentence.
func Assemble(c *types.Context) string {
	var b strings.Builder
	b.WriteString("USER CONTEXT:\n")
	for _, key := range renderOrder {
		lines := SectionLines(c, key)
		if lines == nil {
			continue
		}
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString(closingInstruction)
	return b.String()
}

// SectionLines returns the lines of one section, or nil when it is absent.
func SectionLines(c *types.Context, key types.SectionKey) []string {
	if c == nil {
		return nil
	}
	switch key {
	case types.SectionUser:
		return userLines(c.User, c.Profile)
	case types.SectionSchedule:
		return listLines("SCHEDULE FOR THIS WEEK:", "No classes scheduled for this week.", "", c.Schedule, scheduleLine)
	case types.SectionExams:
		return listLines("UPCOMING EXAMS:", "No exams scheduled.", "", c.Exams, examLine)
	case types.SectionGrades:
		return listLines("RECENT GRADES:", "No grades available.", "", c.Grades, gradeLine)
	case types.SectionAttendance:
		return attendanceLines(c.Attendance)
	case types.SectionCourses:
		return listLines("COURSES:", "No courses found.", "", c.Courses, courseLine)
	case types.SectionTeachers:
		return listLines("TEACHERS:", "No teachers found.", "", c.Teachers, teacherLine)
	case types.SectionStudents:
		return listLines("STUDENTS:", "No students found.", "students", c.Students, studentLine)
	case types.SectionNotifications:
		return listLines("RECENT NOTIFICATIONS:", "No notifications.", "notifications", c.Notifications, notificationLine)
	case types.SectionRequests:
		return listLines("RECENT REQUESTS:", "No pending requests.", "", c.Requests, requestLine)
	case types.SectionAnnouncements:
		return listLines("RECENT ANNOUNCEMENTS:", "No announcements posted.", "", c.Announcements, announcementLine)
	case types.SectionSummary:
		return summaryLines(c.Summary)
	}
	return nil
}

func listLines[T any](header, empty, noun string, s types.Section[T], line func(T) string) []string {
	if !s.Fetched {
		return nil
	}
	if len(s.Items) == 0 {
		return []string{header, empty}
	}
	out := make([]string, 0, len(s.Items)+2)
	out = append(out, header)
	for _, item := range s.Items {
		out = append(out, line(item))
	}
	if s.Omitted > 0 && noun != "" {
		out = append(out, fmt.Sprintf("... and %d more %s", s.Omitted, noun))
	}
	return out
}

func userLines(u, details *types.Profile) []string {
	if u == nil {
		return nil
	}
	out := []string{
		"Name: " + u.Name,
		"Role: " + u.Role,
		"Email: " + u.Email,
	}
	if u.Class != "" {
		out = append(out, "Class: "+u.Class)
	}
	if details != nil {
		out = appendIf(out, "Phone: ", details.Phone)
		out = appendIf(out, "Address: ", details.Address)
		out = appendIf(out, "Date of birth: ", details.DateOfBirth)
		out = appendIf(out, "Academic year: ", details.AcademicYear)
	}
	return out
}

func appendIf(lines []string, label, value string) []string {
	if value == "" {
		return lines
	}
	return append(lines, label+value)
}

func scheduleLine(s types.ScheduleEntry) string {
	return fmt.Sprintf("- %s: %s (%s) in %s with %s", s.Day, s.Course, s.Time, s.Room, s.Teacher)
}

func examLine(e types.Exam) string {
	return fmt.Sprintf("- %s (%s) on %s", e.Name, e.Course, e.Date)
}

func gradeLine(g types.Grade) string {
	return fmt.Sprintf("- %s (%s): %s/%s (%s)", g.Exam, g.Course, number(g.Score), number(g.MaxScore), g.Percentage)
}

func attendanceLines(a *types.Attendance) []string {
	if a == nil {
		return nil
	}
	return []string{
		"ATTENDANCE:",
		"Rate: " + a.Rate,
		fmt.Sprintf("Present: %d, Absent: %d", a.Present, a.Absent),
	}
}

func courseLine(c types.Course) string {
	return fmt.Sprintf("- %s (%s) - %s credits, %s", c.Name, c.Code, number(c.Credits), c.Teacher)
}

func teacherLine(t types.Teacher) string {
	return fmt.Sprintf("- %s (%s)", t.Name, t.Email)
}

func studentLine(s types.Student) string {
	line := fmt.Sprintf("- %s (%s)", s.Name, s.Email)
	if s.Class != "" {
		line += " - " + s.Class
	}
	return line
}

func notificationLine(n types.Notification) string {
	return fmt.Sprintf("- [%s] %s (%s)", n.Type, n.Message, n.State)
}

func requestLine(r types.Request) string {
	return fmt.Sprintf("- %s: %s (%s)", r.Type, r.Status, r.Date)
}

func announcementLine(a types.Announcement) string {
	return fmt.Sprintf("- %s: %s (Posted: %s)", a.Title, a.Message, a.Date)
}

func summaryLines(s *types.Summary) []string {
	if s == nil {
		return nil
	}
	out := []string{"SUMMARY:", "Role: " + s.Role}
	out = appendIf(out, "Class: ", s.Class)
	out = appendCount(out, "Upcoming Exams: ", len(s.UpcomingExams))
	out = appendCount(out, "Recent Grades: ", len(s.RecentGrades))
	out = appendCount(out, "Classes Today: ", len(s.TodaySchedule))
	return out
}

func appendCount(lines []string, label string, n int) []string {
	if n == 0 {
		return lines
	}
	return append(lines, label+strconv.Itoa(n))
}

// number prints a score the short way: 15, 7.5, 0.25.
func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
