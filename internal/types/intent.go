package types

// Intent is the single classified purpose of an inbound chat message.
type Intent string

const (
	IntentSchedule      Intent = "schedule"
	IntentExams         Intent = "exams"
	IntentGrades        Intent = "grades"
	IntentAttendance    Intent = "attendance"
	IntentCourses       Intent = "courses"
	IntentTeachers      Intent = "teachers"
	IntentStudents      Intent = "students"
	IntentNotifications Intent = "notifications"
	IntentRequests      Intent = "requests"
	IntentAnnouncements Intent = "announcements"
	IntentProfile       Intent = "profile"
	IntentGeneral       Intent = "general"
)

var allIntents = []Intent{
	IntentSchedule,
	IntentExams,
	IntentGrades,
	IntentAttendance,
	IntentCourses,
	IntentTeachers,
	IntentStudents,
	IntentNotifications,
	IntentRequests,
	IntentAnnouncements,
	IntentProfile,
	IntentGeneral,
}

// AllIntents returns the twelve intents in declaration order.
func AllIntents() []Intent {
	out := make([]Intent, len(allIntents))
	copy(out, allIntents)
	return out
}

// Valid reports whether i is one of the known intents.
func (i Intent) Valid() bool {
	for _, known := range allIntents {
		if i == known {
			return true
		}
	}
	return false
}

