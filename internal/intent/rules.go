package intent

import (
	"regexp"

	"github.com/kannou1/PFE/internal/types"
)

// Rule maps a keyword pattern to an intent.
type Rule struct {
	Intent types.Intent
	Regex  *regexp.Regexp
}

// Rules are evaluated top to bottom and the first match wins, so the order
// below is part of the classifier's contract:
//
//  1. schedule
//  2. exams
//  3. grades
//  4. attendance
//  5. courses
//  6. teachers
//  7. students
//  8. notifications
//  9. requests
//  10. announcements
//  11. profile
//
// Anything unmatched is general. Patterns are plain substring alternations,
// so "my profile" lands on teachers (via "prof") and "my info" lands on
// announcements (via "info") before the profile rule is reached.
var defaultRules = []Rule{
	{types.IntentSchedule, regexp.MustCompile(`(?i)schedule|emploi|seance|timetable|calendar|cours aujourd'hui|this week|séance`)},
	{types.IntentExams, regexp.MustCompile(`(?i)exam|test|assignment|devoir|controle|quiz|examen`)},
	{types.IntentGrades, regexp.MustCompile(`(?i)note|grade|score|mark|resultat|moyenne`)},
	{types.IntentAttendance, regexp.MustCompile(`(?i)presence|absence|absent|attend|attendance|présence`)},
	{types.IntentCourses, regexp.MustCompile(`(?i)cours|course|subject|matiere|class|matière`)},
	{types.IntentTeachers, regexp.MustCompile(`(?i)teacher|professor|enseignant|prof`)},
	{types.IntentStudents, regexp.MustCompile(`(?i)student|etudiant|classmate|camarade|étudiant`)},
	{types.IntentNotifications, regexp.MustCompile(`(?i)notification|notif|alert|reminder|rappel`)},
	{types.IntentRequests, regexp.MustCompile(`(?i)demande|request|certificat|document`)},
	{types.IntentAnnouncements, regexp.MustCompile(`(?i)announcement|annonce|news|info`)},
	{types.IntentProfile, regexp.MustCompile(`(?i)my info|my profile|who am i|mes informations|mon profil`)},
}

// Rules returns a copy of the ordered rule table.
func Rules() []Rule {
	out := make([]Rule, len(defaultRules))
	copy(out, defaultRules)
	return out
}
