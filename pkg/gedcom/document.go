package gedcom

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/AlexKucera/gedcom-to-markdown/pkg/errors"
)

// Gender is the recorded sex of an individual.
type Gender int

const (
	GenderUnknown Gender = iota
	GenderMale
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

// Event is a dated life event such as a birth, occupation, or burial.
type Event struct {
	Tag   string // GEDCOM tag, e.g. "BIRT", "OCCU"
	Label string // human-readable event name
	Value string // tag value, e.g. the occupation itself
	Date  string
	Place string
}

// Individual is one INDI record.
type Individual struct {
	ID        string // cross-reference ID without delimiters, e.g. "I42"
	GivenName string
	Surname   string
	Gender    Gender

	BirthDate  string
	BirthPlace string
	BirthYear  int // 0 when no four-digit year could be extracted
	DeathDate  string
	DeathPlace string
	DeathYear  int

	Events []Event  // non-vital events in record order
	Images []string // media file paths in record order
	Notes  []string

	// ChildOf lists FAMC family IDs, SpouseIn lists FAMS family IDs.
	// Both keep record order; FAMS order is the marriage order.
	ChildOf  []string
	SpouseIn []string
}

// Name returns the display name, given name first.
func (i *Individual) Name() string {
	name := strings.TrimSpace(i.GivenName + " " + i.Surname)
	if name == "" {
		return "Unknown"
	}
	return name
}

// FileName returns the note filename stem used for this person,
// "Surname GivenName BirthYear" with unsafe characters stripped.
func (i *Individual) FileName() string {
	parts := make([]string, 0, 3)
	if i.Surname != "" {
		parts = append(parts, i.Surname)
	}
	if i.GivenName != "" {
		parts = append(parts, i.GivenName)
	}
	if len(parts) == 0 {
		parts = append(parts, "Unknown", i.ID)
	}
	if i.BirthYear > 0 {
		parts = append(parts, strconv.Itoa(i.BirthYear))
	}
	return apperrors.SanitizeNoteFilename(strings.Join(parts, " "))
}

// Lifespan returns a display string like "1890-1960". Unknown years are
// left blank, and a person with neither year gets "".
func (i *Individual) Lifespan() string {
	if i.BirthYear == 0 && i.DeathYear == 0 {
		return ""
	}
	birth, death := "", ""
	if i.BirthYear > 0 {
		birth = strconv.Itoa(i.BirthYear)
	}
	if i.DeathYear > 0 {
		death = strconv.Itoa(i.DeathYear)
	}
	return birth + "-" + death
}

// Family is one FAM record.
type Family struct {
	ID       string
	Husband  string // individual ID, "" when absent
	Wife     string
	Children []string // individual IDs in record order

	MarriageDate  string
	MarriagePlace string
}

// Document is a decoded GEDCOM file.
type Document struct {
	// Individuals and Families keep file order.
	Individuals []*Individual
	Families    []*Family

	individualsByID map[string]*Individual
	familiesByID    map[string]*Family
}

// Individual looks up a person by ID.
func (d *Document) Individual(id string) (*Individual, bool) {
	indi, ok := d.individualsByID[id]
	return indi, ok
}

// Family looks up a family by ID.
func (d *Document) Family(id string) (*Family, bool) {
	fam, ok := d.familiesByID[id]
	return fam, ok
}

// SortedIDs returns all individual IDs in lexicographic order.
func (d *Document) SortedIDs() []string {
	ids := make([]string, 0, len(d.Individuals))
	for _, indi := range d.Individuals {
		ids = append(ids, indi.ID)
	}
	sort.Strings(ids)
	return ids
}

// eventLabels maps the event tags this tool surfaces in notes.
var eventLabels = map[string]string{
	"OCCU": "Occupation",
	"EDUC": "Education",
	"RESI": "Residence",
	"BURI": "Burial",
	"CHR":  "Christening",
	"EMIG": "Emigration",
	"IMMI": "Immigration",
}

var yearRe = regexp.MustCompile(`\b(\d{4})\b`)

// extractYear pulls the first four-digit year out of a GEDCOM date value.
// GEDCOM dates are free-form enough ("ABT 1854", "BET 1900 AND 1910")
// that a full date grammar buys nothing over the year.
func extractYear(date string) int {
	m := yearRe.FindString(date)
	if m == "" {
		return 0
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return year
}

var nameRe = regexp.MustCompile(`^([^/]*)/([^/]*)/`)

// parseName splits a GEDCOM NAME value, "Given /Surname/".
func parseName(value string) (given, surname string) {
	if m := nameRe.FindStringSubmatch(value); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(value), ""
}

// newDocument indexes record slices into a Document, rejecting
// duplicate IDs and documents without individuals.
func newDocument(indis []*Individual, fams []*Family) (*Document, error) {
	doc := &Document{
		Individuals:     indis,
		Families:        fams,
		individualsByID: make(map[string]*Individual, len(indis)),
		familiesByID:    make(map[string]*Family, len(fams)),
	}
	for _, indi := range indis {
		if _, dup := doc.individualsByID[indi.ID]; dup {
			return nil, apperrors.New(apperrors.ErrCodeInvalidGedcom, "duplicate individual ID %s", indi.ID)
		}
		doc.individualsByID[indi.ID] = indi
	}
	for _, fam := range fams {
		if _, dup := doc.familiesByID[fam.ID]; dup {
			return nil, apperrors.New(apperrors.ErrCodeInvalidGedcom, "duplicate family ID %s", fam.ID)
		}
		doc.familiesByID[fam.ID] = fam
	}
	if len(doc.Individuals) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeEmptyTree, "GEDCOM file contains no individuals")
	}
	return doc, nil
}

// buildDocument extracts typed records from the raw line tree.
func buildDocument(roots []*Line) (*Document, error) {
	// Shared NOTE and OBJE records are collected first so individuals
	// can resolve pointers to them regardless of file order.
	notes := make(map[string]string)
	media := make(map[string]string)
	for _, root := range roots {
		switch root.Tag {
		case "NOTE":
			if root.XRef != "" {
				notes[root.XRef] = root.ValueWithContinuations()
			}
		case "OBJE":
			if root.XRef != "" {
				media[root.XRef] = root.ChildValue("FILE")
			}
		}
	}

	var indis []*Individual
	var fams []*Family
	for _, root := range roots {
		switch root.Tag {
		case "INDI":
			if root.XRef == "" {
				return nil, apperrors.New(apperrors.ErrCodeInvalidGedcom, "INDI record without cross-reference ID")
			}
			indis = append(indis, buildIndividual(root, notes, media))

		case "FAM":
			if root.XRef == "" {
				return nil, apperrors.New(apperrors.ErrCodeInvalidGedcom, "FAM record without cross-reference ID")
			}
			fams = append(fams, buildFamily(root))
		}
	}

	return newDocument(indis, fams)
}

func buildIndividual(root *Line, notes, media map[string]string) *Individual {
	indi := &Individual{ID: root.XRef}

	for _, line := range root.Children {
		switch line.Tag {
		case "NAME":
			// The first NAME is the primary one; later NAMEs are aliases.
			if indi.GivenName == "" && indi.Surname == "" {
				indi.GivenName, indi.Surname = parseName(line.Value)
			}
		case "SEX":
			switch strings.ToUpper(strings.TrimSpace(line.Value)) {
			case "M":
				indi.Gender = GenderMale
			case "F":
				indi.Gender = GenderFemale
			}
		case "BIRT":
			indi.BirthDate = line.ChildValue("DATE")
			indi.BirthPlace = line.ChildValue("PLAC")
			indi.BirthYear = extractYear(indi.BirthDate)
		case "DEAT":
			indi.DeathDate = line.ChildValue("DATE")
			indi.DeathPlace = line.ChildValue("PLAC")
			indi.DeathYear = extractYear(indi.DeathDate)
		case "OBJE":
			if file := resolveMedia(line, media); file != "" {
				indi.Images = append(indi.Images, file)
			}
		case "NOTE":
			if note := resolveNote(line, notes); note != "" {
				indi.Notes = append(indi.Notes, note)
			}
		case "FAMC":
			indi.ChildOf = append(indi.ChildOf, strings.Trim(line.Value, "@"))
		case "FAMS":
			indi.SpouseIn = append(indi.SpouseIn, strings.Trim(line.Value, "@"))
		default:
			if label, ok := eventLabels[line.Tag]; ok {
				indi.Events = append(indi.Events, Event{
					Tag:   line.Tag,
					Label: label,
					Value: line.Value,
					Date:  line.ChildValue("DATE"),
					Place: line.ChildValue("PLAC"),
				})
			}
		}
	}
	return indi
}

func buildFamily(root *Line) *Family {
	fam := &Family{ID: root.XRef}
	for _, line := range root.Children {
		switch line.Tag {
		case "HUSB":
			fam.Husband = strings.Trim(line.Value, "@")
		case "WIFE":
			fam.Wife = strings.Trim(line.Value, "@")
		case "CHIL":
			fam.Children = append(fam.Children, strings.Trim(line.Value, "@"))
		case "MARR":
			fam.MarriageDate = line.ChildValue("DATE")
			fam.MarriagePlace = line.ChildValue("PLAC")
		}
	}
	return fam
}

// resolveMedia returns the file path of an OBJE line, following a
// pointer to a shared media record when the line has no inline FILE.
func resolveMedia(line *Line, media map[string]string) string {
	if ref := pointerValue(line.Value); ref != "" {
		return media[ref]
	}
	return line.ChildValue("FILE")
}

// resolveNote returns the text of a NOTE line, following a pointer to a
// shared note record when present.
func resolveNote(line *Line, notes map[string]string) string {
	if ref := pointerValue(line.Value); ref != "" {
		return notes[ref]
	}
	return line.ValueWithContinuations()
}

// pointerValue returns the ID inside "@X@", or "" for non-pointer values.
func pointerValue(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "@") && strings.HasSuffix(value, "@") && len(value) > 2 {
		return strings.Trim(value, "@")
	}
	return ""
}

// Stats summarizes a decoded document for logging.
func (d *Document) Stats() string {
	return fmt.Sprintf("%d individuals, %d families", len(d.Individuals), len(d.Families))
}
