package utils

import (
	"strings"
)

// Symptoms a parent can tick when reporting a reaction.
var (
	MildSymptoms = []string{
		"Hives",
		"Rash",
		"Itching",
		"Redness around mouth",
		"Mild swelling",
		"Vomiting",
		"Diarrhea",
		"Fussiness",
	}
	SevereSymptoms = []string{
		"Difficulty breathing",
		"Wheezing",
		"Swelling of face or tongue",
		"Persistent vomiting",
		"Lethargy",
		"Pale or blue skin",
	}
)

const symptomsPrefix = "Symptoms: "

// Severity maps selected symptoms to 0 (none), 1 (mild) or 2 (severe).
// Any symptom from the severe set makes the reaction severe.
func Severity(selected []string) int {
	sev := 0
	for _, s := range selected {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if containsFold(SevereSymptoms, s) {
			return 2
		}
		sev = 1
	}
	return sev
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}

// EncodeSymptomNotes prefixes a free-form note with the selected symptoms,
// e.g. "Symptoms: Hives, Rash. ate half a spoon".
func EncodeSymptomNotes(selected []string, note string) string {
	var names []string
	for _, s := range selected {
		if s = strings.TrimSpace(s); s != "" {
			names = append(names, s)
		}
	}
	note = strings.TrimSpace(note)
	if len(names) == 0 {
		return note
	}
	out := symptomsPrefix + strings.Join(names, ", ") + "."
	if note != "" {
		out += " " + note
	}
	return out
}

// ExtractSymptoms splits notes written by EncodeSymptomNotes back into the
// symptom list and the remaining note. Notes without the prefix are returned as is.
func ExtractSymptoms(notes string) (symptoms []string, note string) {
	if !strings.HasPrefix(notes, symptomsPrefix) {
		return nil, notes
	}
	rest := notes[len(symptomsPrefix):]
	end := strings.Index(rest, ".")
	if end < 0 {
		return nil, notes
	}
	for _, s := range strings.Split(rest[:end], ",") {
		if s = strings.TrimSpace(s); s != "" {
			symptoms = append(symptoms, s)
		}
	}
	return symptoms, strings.TrimSpace(rest[end+1:])
}
