package types

// SectionKey names a slot of the assembled context.
type SectionKey string

const (
	SectionUser          SectionKey = "user"
	SectionSchedule      SectionKey = "schedule"
	SectionExams         SectionKey = "exams"
	SectionGrades        SectionKey = "grades"
	SectionAttendance    SectionKey = "attendance"
	SectionCourses       SectionKey = "courses"
	SectionTeachers      SectionKey = "teachers"
	SectionStudents      SectionKey = "students"
	SectionNotifications SectionKey = "notifications"
	SectionRequests      SectionKey = "requests"
	SectionAnnouncements SectionKey = "announcements"
	SectionProfile       SectionKey = "profile"
	SectionSummary       SectionKey = "summary"
)

// Section holds one fetched collection. The zero value means the section was
// never fetched; Fetched with no Items means the fetch returned nothing.
type Section[T any] struct {
	Fetched bool `json:"fetched"`
	Items   []T  `json:"items"`
	// Omitted counts records dropped by a truncation cap.
	Omitted int `json:"omitted,omitempty"`
}

// Fetched wraps items as a present section.
func Fetched[T any](items []T) Section[T] {
	if items == nil {
		items = []T{}
	}
	return Section[T]{Fetched: true, Items: items}
}

// Capped wraps items as a present section keeping at most limit of them.
func Capped[T any](items []T, limit int) Section[T] {
	s := Fetched(items)
	if limit > 0 && len(s.Items) > limit {
		s.Omitted = len(s.Items) - limit
		s.Items = s.Items[:limit]
	}
	return s
}

// Empty returns a present section with no records.
func Empty[T any]() Section[T] {
	return Fetched[T](nil)
}

// Context is the request-scoped bundle handed to the prompt assembler.
type Context struct {
	User *Profile `json:"user"`

	Schedule      Section[ScheduleEntry] `json:"schedule"`
	Exams         Section[Exam]          `json:"exams"`
	Grades        Section[Grade]         `json:"grades"`
	Attendance    *Attendance            `json:"attendance,omitempty"`
	Courses       Section[Course]        `json:"courses"`
	Teachers      Section[Teacher]       `json:"teachers"`
	Students      Section[Student]       `json:"students"`
	Notifications Section[Notification]  `json:"notifications"`
	Requests      Section[Request]       `json:"requests"`
	Announcements Section[Announcement]  `json:"announcements"`
	Profile       *Profile               `json:"profile,omitempty"`
	Summary       *Summary               `json:"summary,omitempty"`
}

// Sections returns the keys present in c, in render order.
func (c *Context) Sections() []SectionKey {
	if c == nil {
		return nil
	}
	var keys []SectionKey
	add := func(present bool, k SectionKey) {
		if present {
			keys = append(keys, k)
		}
	}
	add(c.User != nil, SectionUser)
	add(c.Profile != nil, SectionProfile)
	add(c.Schedule.Fetched, SectionSchedule)
	add(c.Exams.Fetched, SectionExams)
	add(c.Grades.Fetched, SectionGrades)
	add(c.Attendance != nil, SectionAttendance)
	add(c.Courses.Fetched, SectionCourses)
	add(c.Teachers.Fetched, SectionTeachers)
	add(c.Students.Fetched, SectionStudents)
	add(c.Notifications.Fetched, SectionNotifications)
	add(c.Requests.Fetched, SectionRequests)
	add(c.Announcements.Fetched, SectionAnnouncements)
	add(c.Summary != nil, SectionSummary)
	return keys
}
