package types

// Normalized records. Every field is a plain string or number; upstream
// object graphs are flattened by the upstream package before they get here.

type Profile struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	Email        string `json:"email"`
	Class        string `json:"class,omitempty"`
	ClassID      string `json:"classId,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
	DateOfBirth  string `json:"dateOfBirth,omitempty"`
	AcademicYear string `json:"academicYear,omitempty"`
}

type ScheduleEntry struct {
	Day     string `json:"day"`
	Time    string `json:"time"`
	Course  string `json:"course"`
	Teacher string `json:"teacher"`
	Room    string `json:"room"`
	Type    string `json:"type"`
	Date    string `json:"date"`
}

type Exam struct {
	Name        string  `json:"name"`
	Course      string  `json:"course"`
	Class       string  `json:"class"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	MaxScore    float64 `json:"maxScore"`
	Description string  `json:"description,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
}

type Grade struct {
	Exam       string  `json:"exam"`
	Course     string  `json:"course"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`
	Percentage string  `json:"percentage"`
	Feedback   string  `json:"feedback,omitempty"`
}

// Attendance is an aggregate, not a list: a failed or empty fetch yields
// EmptyAttendance rather than an absent value.
type Attendance struct {
	Rate    string             `json:"attendanceRate"`
	Total   int                `json:"totalClasses"`
	Present int                `json:"present"`
	Absent  int                `json:"absent"`
	Recent  []AttendanceRecord `json:"recentRecords"`
}

// EmptyAttendance is the zeroed aggregate used when there is nothing to count.
func EmptyAttendance() *Attendance {
	return &Attendance{Rate: "0%", Recent: []AttendanceRecord{}}
}

type AttendanceRecord struct {
	Date   string `json:"date"`
	Course string `json:"course"`
	Status string `json:"status"`
}

type Course struct {
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	Credits     float64 `json:"credits"`
	Semester    string  `json:"semester,omitempty"`
	Teacher     string  `json:"teacher"`
	Class       string  `json:"class"`
	Description string  `json:"description,omitempty"`
}

type Teacher struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Specialty string `json:"specialty"`
	Phone     string `json:"phone,omitempty"`
}

type Student struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Class string `json:"class,omitempty"`
}

// Notification.State is "Read" or "Unread".
type Notification struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	State   string `json:"state"`
	Date    string `json:"date"`
}

type Request struct {
	Type        string `json:"type"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	Response    string `json:"response,omitempty"`
	Description string `json:"description,omitempty"`
}

type Announcement struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Date    string `json:"date"`
	Author  string `json:"author"`
}

// Summary is the cross-cutting slice built for the general intent.
type Summary struct {
	Role          string          `json:"role"`
	Class         string          `json:"class,omitempty"`
	UpcomingExams []Exam          `json:"upcomingExams"`
	RecentGrades  []Grade         `json:"recentGrades"`
	TodaySchedule []ScheduleEntry `json:"todaySchedule"`
}
