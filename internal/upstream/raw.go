package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Backend documents as served by the university-management API. Field names
// are the backend's and must not be renamed.

type rawUser struct {
	ID               string        `json:"_id"`
	Nom              string        `json:"nom"`
	Prenom           string        `json:"prenom"`
	Email            string        `json:"email"`
	Role             string        `json:"role"`
	NumTel           flexString    `json:"NumTel"`
	NumTelEnseignant flexString    `json:"NumTelEnseignant"`
	Adresse          string        `json:"Adresse"`
	DateDeNaissance  string        `json:"datedeNaissance"`
	Classe           ref[rawClass] `json:"classe"`
}

type rawPerson struct {
	ID               string     `json:"_id"`
	Nom              string     `json:"nom"`
	Prenom           string     `json:"prenom"`
	Email            string     `json:"email"`
	Specialite       string     `json:"specialite"`
	NumTelEnseignant flexString `json:"NumTelEnseignant"`
}

type rawNamed struct {
	ID  string `json:"_id"`
	Nom string `json:"nom"`
}

type rawClass struct {
	ID              string           `json:"_id"`
	Nom             string           `json:"nom"`
	AnneeAcademique flexString       `json:"anneeAcademique"`
	Enseignants     []ref[rawPerson] `json:"enseignants"`
	Etudiants       []ref[rawPerson] `json:"etudiants"`
}

type rawSeance struct {
	JourSemaine string         `json:"jourSemaine"`
	HeureDebut  string         `json:"heureDebut"`
	HeureFin    string         `json:"heureFin"`
	Cours       ref[rawNamed]  `json:"cours"`
	Enseignant  ref[rawPerson] `json:"enseignant"`
	Salle       string         `json:"salle"`
	TypeCours   string         `json:"typeCours"`
	DateDebut   string         `json:"dateDebut"`
}

type rawExam struct {
	Nom         string        `json:"nom"`
	CoursID     ref[rawNamed] `json:"coursId"`
	ClasseID    ref[rawNamed] `json:"classeId"`
	Type        string        `json:"type"`
	Date        string        `json:"date"`
	NoteMax     flexNumber    `json:"noteMax"`
	Description string        `json:"description"`
	Duree       flexNumber    `json:"duree"`
}

type rawNote struct {
	Etudiant    ref[rawPerson] `json:"etudiant"`
	Examen      ref[rawExam]   `json:"examen"`
	Note        flexNumber     `json:"note"`
	Commentaire string         `json:"commentaire"`
}

type rawPresence struct {
	Date   string         `json:"date"`
	Statut string         `json:"statut"`
	Seance ref[rawSeance] `json:"seance"`
}

type rawCours struct {
	Nom         string         `json:"nom"`
	Code        string         `json:"code"`
	Credits     flexNumber     `json:"credits"`
	Credit      flexNumber     `json:"credit"`
	Semestre    flexString     `json:"semestre"`
	Enseignant  ref[rawPerson] `json:"enseignant"`
	Classe      ref[rawNamed]  `json:"classe"`
	Description string         `json:"description"`
}

type rawNotification struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	EstLu        bool   `json:"estLu"`
	DateCreation string `json:"dateCreation"`
	CreatedAt    string `json:"createdAt"`
}

type rawDemande struct {
	Type        string `json:"type"`
	Statut      string `json:"statut"`
	CreatedAt   string `json:"createdAt"`
	Reponse     string `json:"reponse"`
	Description string `json:"description"`
}

type rawAnnouncement struct {
	Titre           string         `json:"titre"`
	Contenu         string         `json:"contenu"`
	DatePublication string         `json:"datePublication"`
	CreatedAt       string         `json:"createdAt"`
	Auteur          ref[rawPerson] `json:"auteur"`
}

// ref is a reference that the backend may or may not have populated: either
// a bare id string or the embedded document.
type ref[T any] struct {
	ID  string
	Doc *T
}

func (r *ref[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		return nil
	case b[0] == '"':
		return json.Unmarshal(b, &r.ID)
	}
	var id struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(b, &id); err != nil {
		return err
	}
	var doc T
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	r.ID = id.ID
	r.Doc = &doc
	return nil
}

// flexNumber accepts a JSON number or a numeric string. Anything else is zero.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = flexNumber(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(f)
	return nil
}

// flexString accepts a JSON string or number, as phone numbers and years are
// stored either way.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	*s = flexString(b)
	return nil
}
