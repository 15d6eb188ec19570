package upstream

import (
	"strconv"
	"time"

	"github.com/kannou1/PFE/internal/types"
)

// Backend role names.
const (
	RoleStudent = "etudiant"
	RoleTeacher = "enseignant"
)

const (
	unknown       = "Unknown"
	notAvailable  = "N/A"
	defaultAuthor = "Admin"
	defaultMax    = 100
)

func fullName(p *rawPerson) string {
	return p.Prenom + " " + p.Nom
}

func refName(r ref[rawNamed], fallback string) string {
	if r.Doc == nil || r.Doc.Nom == "" {
		return fallback
	}
	return r.Doc.Nom
}

func personName(r ref[rawPerson], fallback string) string {
	if r.Doc == nil {
		return fallback
	}
	return fullName(r.Doc)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func normalizeProfile(u rawUser) types.Profile {
	p := types.Profile{
		Name:        u.Prenom + " " + u.Nom,
		Role:        u.Role,
		Email:       u.Email,
		Phone:       firstNonEmpty(string(u.NumTel), string(u.NumTelEnseignant)),
		Address:     u.Adresse,
		DateOfBirth: u.DateDeNaissance,
	}
	if c := u.Classe.Doc; c != nil {
		p.Class = c.Nom
		p.ClassID = c.ID
		p.AcademicYear = string(c.AnneeAcademique)
	}
	return p
}

func normalizeSession(s rawSeance) types.ScheduleEntry {
	return types.ScheduleEntry{
		Day:     s.JourSemaine,
		Time:    s.HeureDebut + " - " + s.HeureFin,
		Course:  refName(s.Cours, unknown),
		Teacher: personName(s.Enseignant, notAvailable),
		Room:    s.Salle,
		Type:    s.TypeCours,
		Date:    s.DateDebut,
	}
}

func normalizeExam(e rawExam) types.Exam {
	return types.Exam{
		Name:        e.Nom,
		Course:      refName(e.CoursID, unknown),
		Class:       refName(e.ClasseID, unknown),
		Type:        e.Type,
		Date:        e.Date,
		MaxScore:    float64(e.NoteMax),
		Description: e.Description,
		Duration:    float64(e.Duree),
	}
}

func normalizeGrade(n rawNote) types.Grade {
	g := types.Grade{
		Exam:       unknown,
		Course:     unknown,
		Score:      float64(n.Note),
		MaxScore:   defaultMax,
		Percentage: notAvailable,
		Feedback:   n.Commentaire,
	}
	if e := n.Examen.Doc; e != nil {
		if e.Nom != "" {
			g.Exam = e.Nom
		}
		g.Course = refName(e.CoursID, unknown)
		if e.NoteMax != 0 {
			g.MaxScore = float64(e.NoteMax)
			g.Percentage = Percentage(g.Score, g.MaxScore)
		}
	}
	return g
}

// Percentage renders score/max with two decimals, or N/A when max is zero.
func Percentage(score, outOf float64) string {
	if outOf == 0 {
		return notAvailable
	}
	return strconv.FormatFloat(score/outOf*100, 'f', 2, 64) + "%"
}

func isPresent(status string) bool {
	return status == "présent" || status == "present"
}

func summarizeAttendance(records []rawPresence, recentLimit int) *types.Attendance {
	if len(records) == 0 {
		return types.EmptyAttendance()
	}
	present := 0
	for _, r := range records {
		if isPresent(r.Statut) {
			present++
		}
	}
	total := len(records)
	a := &types.Attendance{
		Rate:    Percentage(float64(present), float64(total)),
		Total:   total,
		Present: present,
		Absent:  total - present,
		Recent:  make([]types.AttendanceRecord, 0, min(total, recentLimit)),
	}
	for _, r := range records[:min(total, recentLimit)] {
		course := unknown
		if s := r.Seance.Doc; s != nil {
			course = refName(s.Cours, unknown)
		}
		a.Recent = append(a.Recent, types.AttendanceRecord{Date: r.Date, Course: course, Status: r.Statut})
	}
	return a
}

func normalizeCourse(c rawCours) types.Course {
	credits := float64(c.Credits)
	if credits == 0 {
		credits = float64(c.Credit)
	}
	return types.Course{
		Name:        c.Nom,
		Code:        c.Code,
		Credits:     credits,
		Semester:    string(c.Semestre),
		Teacher:     personName(c.Enseignant, notAvailable),
		Class:       refName(c.Classe, notAvailable),
		Description: c.Description,
	}
}

func normalizeTeacher(p *rawPerson) types.Teacher {
	specialty := p.Specialite
	if specialty == "" {
		specialty = notAvailable
	}
	return types.Teacher{
		Name:      fullName(p),
		Email:     p.Email,
		Specialty: specialty,
		Phone:     string(p.NumTelEnseignant),
	}
}

func normalizeStudent(p *rawPerson, class string) types.Student {
	return types.Student{Name: fullName(p), Email: p.Email, Class: class}
}

func normalizeNotification(n rawNotification) types.Notification {
	state := "Unread"
	if n.EstLu {
		state = "Read"
	}
	return types.Notification{
		Message: n.Message,
		Type:    n.Type,
		State:   state,
		Date:    firstNonEmpty(n.DateCreation, n.CreatedAt),
	}
}

func normalizeRequest(d rawDemande) types.Request {
	return types.Request{
		Type:        d.Type,
		Status:      d.Statut,
		Date:        d.CreatedAt,
		Response:    d.Reponse,
		Description: d.Description,
	}
}

func normalizeAnnouncement(a rawAnnouncement) types.Announcement {
	author := defaultAuthor
	if p := a.Auteur.Doc; p != nil && p.Prenom != "" && p.Nom != "" {
		author = fullName(p)
	}
	return types.Announcement{
		Title:   a.Titre,
		Message: a.Contenu,
		Date:    firstNonEmpty(a.DatePublication, a.CreatedAt),
		Author:  author,
	}
}

func mapAll[R, T any](in []R, fn func(R) T) []T {
	out := make([]T, 0, len(in))
	for _, r := range in {
		out = append(out, fn(r))
	}
	return out
}

// WeekWindow returns the Sunday-aligned week containing now, in now's
// location. Both bounds are inclusive.
func WeekWindow(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	start = time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, now.Location())
	end = time.Date(y, m, d-int(now.Weekday())+6, 23, 59, 59, int(999*time.Millisecond), now.Location())
	return start, end
}

// ParseDate parses the date formats the backend emits. Timestamps without a
// zone are read in loc; bare dates are UTC midnight.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
