package prompt

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kannou1/PFE/internal/types"
)

var student = &types.Profile{Name: "Amal Ben Salah", Role: "etudiant", Email: "amal@uni.tn", Class: "GL3"}

func TestAssemble_ExactOutput(t *testing.T) {
	c := &types.Context{
		User: student,
		Grades: types.Fetched([]types.Grade{
			{Exam: "Midterm", Course: "Algorithms", Score: 15, MaxScore: 20, Percentage: "75.00%"},
			{Exam: "Quiz", Course: "Unknown", Score: 7.5, MaxScore: 100, Percentage: "N/A"},
		}),
	}

	want := "USER CONTEXT:\n" +
		"Name: Amal Ben Salah\n" +
		"Role: etudiant\n" +
		"Email: amal@uni.tn\n" +
		"Class: GL3\n" +
		"\n" +
		"RECENT GRADES:\n" +
		"- Midterm (Algorithms): 15/20 (75.00%)\n" +
		"- Quiz (Unknown): 7.5/100 (N/A)\n" +
		"\n" +
		"INSTRUCTION: Answer the user's question using ONLY the information above. " +
		"If data is missing or empty, clearly state that there is no information available. " +
		"Do NOT make up or assume any information."

	if diff := cmp.Diff(want, Assemble(c)); diff != "" {
		t.Errorf("prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_ScheduleThisWeek(t *testing.T) {
	c := &types.Context{
		User: student,
		Schedule: types.Fetched([]types.ScheduleEntry{
			{Day: "Monday", Time: "08:30 - 10:00", Course: "Algorithms", Room: "A12", Teacher: "Sami Trabelsi"},
			{Day: "Tuesday", Time: "10:15 - 11:45", Course: "Networks", Room: "B1", Teacher: "N/A"},
			{Day: "Thursday", Time: "14:00 - 15:30", Course: "Databases", Room: "C3", Teacher: "Leila Haddad"},
		}),
	}

	got := Assemble(c)
	if !strings.Contains(got, "SCHEDULE FOR THIS WEEK:\n"+
		"- Monday: Algorithms (08:30 - 10:00) in A12 with Sami Trabelsi\n"+
		"- Tuesday: Networks (10:15 - 11:45) in B1 with N/A\n"+
		"- Thursday: Databases (14:00 - 15:30) in C3 with Leila Haddad\n\n") {
		t.Errorf("expected three schedule bullets, got:\n%s", got)
	}
	if strings.Contains(got, "No classes scheduled") {
		t.Error("populated schedule must not render the empty sentence")
	}
}

func TestAssemble_EmptySections(t *testing.T) {
	tests := []struct {
		name string
		ctx  *types.Context
		want string
	}{
		{"schedule", &types.Context{Schedule: types.Empty[types.ScheduleEntry]()}, "SCHEDULE FOR THIS WEEK:\nNo classes scheduled for this week.\n\n"},
		{"exams", &types.Context{Exams: types.Empty[types.Exam]()}, "UPCOMING EXAMS:\nNo exams scheduled.\n\n"},
		{"grades", &types.Context{Grades: types.Empty[types.Grade]()}, "RECENT GRADES:\nNo grades available.\n\n"},
		{"courses", &types.Context{Courses: types.Empty[types.Course]()}, "COURSES:\nNo courses found.\n\n"},
		{"teachers", &types.Context{Teachers: types.Empty[types.Teacher]()}, "TEACHERS:\nNo teachers found.\n\n"},
		{"students", &types.Context{Students: types.Empty[types.Student]()}, "STUDENTS:\nNo students found.\n\n"},
		{"notifications", &types.Context{Notifications: types.Empty[types.Notification]()}, "RECENT NOTIFICATIONS:\nNo notifications.\n\n"},
		{"requests", &types.Context{Requests: types.Empty[types.Request]()}, "RECENT REQUESTS:\nNo pending requests.\n\n"},
		{"announcements", &types.Context{Announcements: types.Empty[types.Announcement]()}, "RECENT ANNOUNCEMENTS:\nNo announcements posted.\n\n"},
		{"attendance", &types.Context{Attendance: types.EmptyAttendance()}, "ATTENDANCE:\nRate: 0%\nPresent: 0, Absent: 0\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.ctx.User = student
			got := Assemble(tt.ctx)
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in:\n%s", tt.want, got)
			}
		})
	}
}

func TestAssemble_AbsentSectionsLeaveNoTrace(t *testing.T) {
	got := Assemble(&types.Context{User: student})

	for _, header := range []string{
		"SCHEDULE", "UPCOMING EXAMS", "RECENT GRADES", "ATTENDANCE", "COURSES", "TEACHERS",
		"STUDENTS", "NOTIFICATIONS", "REQUESTS", "ANNOUNCEMENTS", "SUMMARY",
	} {
		if strings.Contains(got, header) {
			t.Errorf("absent section %s rendered:\n%s", header, got)
		}
	}
}

func TestAssemble_AnnouncementsEmpty(t *testing.T) {
	c := &types.Context{User: student, Announcements: types.Empty[types.Announcement]()}
	if got := Assemble(c); !strings.Contains(got, "RECENT ANNOUNCEMENTS:\nNo announcements posted.") {
		t.Errorf("expected empty announcements sentence, got:\n%s", got)
	}
}

func TestAssemble_SectionOrder(t *testing.T) {
	c := &types.Context{
		User:          student,
		Summary:       &types.Summary{Role: "etudiant"},
		Announcements: types.Empty[types.Announcement](),
		Schedule:      types.Empty[types.ScheduleEntry](),
		Attendance:    types.EmptyAttendance(),
	}
	got := Assemble(c)

	order := []string{"USER CONTEXT:", "Name:", "SCHEDULE FOR THIS WEEK:", "ATTENDANCE:", "RECENT ANNOUNCEMENTS:", "SUMMARY:", "INSTRUCTION:"}
	last := -1
	for _, marker := range order {
		i := strings.Index(got, marker)
		if i < 0 {
			t.Fatalf("missing %q in:\n%s", marker, got)
		}
		if i < last {
			t.Errorf("%q out of order in:\n%s", marker, got)
		}
		last = i
	}
}

func TestAssemble_UserWithoutClass(t *testing.T) {
	c := &types.Context{User: &types.Profile{Name: "Admin User", Role: "admin", Email: "admin@uni.tn"}}
	if got := Assemble(c); strings.Contains(got, "Class:") {
		t.Errorf("class line should be omitted when empty:\n%s", got)
	}
}

func TestAssemble_ProfileDetails(t *testing.T) {
	details := *student
	details.Phone = "21345678"
	details.AcademicYear = "2024-2025"
	c := &types.Context{User: student, Profile: &details}

	want := []string{
		"Name: Amal Ben Salah",
		"Role: etudiant",
		"Email: amal@uni.tn",
		"Class: GL3",
		"Phone: 21345678",
		"Academic year: 2024-2025",
	}
	if diff := cmp.Diff(want, SectionLines(c, types.SectionUser)); diff != "" {
		t.Errorf("user lines mismatch (-want +got):\n%s", diff)
	}
}

func TestSectionLines_Bullets(t *testing.T) {
	c := &types.Context{
		Exams:         types.Fetched([]types.Exam{{Name: "Final", Course: "Databases", Date: "2025-02-01"}}),
		Courses:       types.Fetched([]types.Course{{Name: "Algorithms", Code: "ALG", Credits: 4, Teacher: "Sami Trabelsi"}}),
		Teachers:      types.Fetched([]types.Teacher{{Name: "Sami Trabelsi", Email: "sami@uni.tn"}}),
		Notifications: types.Fetched([]types.Notification{{Type: "exam", Message: "Room changed", State: "Unread"}, {Type: "info", Message: "Welcome", State: "Read"}}),
		Requests:      types.Fetched([]types.Request{{Type: "attestation", Status: "en attente", Date: "2025-01-10"}}),
		Announcements: types.Fetched([]types.Announcement{{Title: "Holiday", Message: "No classes", Date: "2025-01-09"}}),
	}

	tests := []struct {
		key  types.SectionKey
		want []string
	}{
		{types.SectionExams, []string{"UPCOMING EXAMS:", "- Final (Databases) on 2025-02-01"}},
		{types.SectionCourses, []string{"COURSES:", "- Algorithms (ALG) - 4 credits, Sami Trabelsi"}},
		{types.SectionTeachers, []string{"TEACHERS:", "- Sami Trabelsi (sami@uni.tn)"}},
		{types.SectionNotifications, []string{"RECENT NOTIFICATIONS:", "- [exam] Room changed (Unread)", "- [info] Welcome (Read)"}},
		{types.SectionRequests, []string{"RECENT REQUESTS:", "- attestation: en attente (2025-01-10)"}},
		{types.SectionAnnouncements, []string{"RECENT ANNOUNCEMENTS:", "- Holiday: No classes (Posted: 2025-01-09)"}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, SectionLines(c, tt.key)); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", tt.key, diff)
		}
	}
}

func TestSectionLines_StudentsRemainder(t *testing.T) {
	var students []types.Student
	for i := 0; i < 12; i++ {
		students = append(students, types.Student{Name: "S", Email: "s@uni.tn", Class: "GL3"})
	}
	c := &types.Context{Students: types.Capped(students, 10)}

	lines := SectionLines(c, types.SectionStudents)
	if len(lines) != 12 {
		t.Fatalf("expected header, 10 bullets and a remainder line, got %d lines", len(lines))
	}
	if lines[1] != "- S (s@uni.tn) - GL3" {
		t.Errorf("unexpected bullet %q", lines[1])
	}
	if lines[11] != "... and 2 more students" {
		t.Errorf("unexpected remainder line %q", lines[11])
	}
}

func TestSectionLines_Summary(t *testing.T) {
	tests := []struct {
		name    string
		summary *types.Summary
		want    []string
	}{
		{
			name:    "counts only when non-empty",
			summary: &types.Summary{Role: "enseignant"},
			want:    []string{"SUMMARY:", "Role: enseignant"},
		},
		{
			name: "all lines",
			summary: &types.Summary{
				Role:          "etudiant",
				Class:         "GL3",
				UpcomingExams: []types.Exam{{}, {}},
				RecentGrades:  []types.Grade{{}},
				TodaySchedule: []types.ScheduleEntry{{}, {}, {}},
			},
			want: []string{"SUMMARY:", "Role: etudiant", "Class: GL3", "Upcoming Exams: 2", "Recent Grades: 1", "Classes Today: 3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SectionLines(&types.Context{Summary: tt.summary}, types.SectionSummary)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("summary mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAssemble_Deterministic(t *testing.T) {
	c := &types.Context{User: student, Exams: types.Fetched([]types.Exam{{Name: "A"}, {Name: "B"}})}
	first := Assemble(c)
	for i := 0; i < 10; i++ {
		if Assemble(c) != first {
			t.Fatal("Assemble is not deterministic")
		}
	}
}
