package identity

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	summaryLineSeparatorConstant  = "\n"
	summaryFieldSeparatorConstant = "\t"
	recordDisplayTemplateConstant = "%s <%s>"
)

var authorshipPattern = regexp.MustCompile(`^(.*) <(.*)>$`)

// Field identifies which part of an identity a rewrite targets.
type Field string

// Supported identity fields.
const (
	FieldName  Field = Field("name")
	FieldEmail Field = Field("email")
)

// Record is the (name, email) pair of a commit author.
type Record struct {
	Name  string
	Email string
}

// String renders the record the way git prints it.
func (record Record) String() string {
	return fmt.Sprintf(recordDisplayTemplateConstant, record.Name, record.Email)
}

// Value returns the record's value for the requested field.
func (record Record) Value(field Field) string {
	if field == FieldEmail {
		return record.Email
	}
	return record.Name
}

// Authorship pairs an identity with the number of commits attributed to it.
type Authorship struct {
	Identity Record
	Commits  int
}

// ParseSummary converts "git shortlog -sne" output into authorship entries.
func ParseSummary(output string) []Authorship {
	lines := strings.Split(strings.TrimSpace(output), summaryLineSeparatorConstant)
	authorships := make([]Authorship, 0, len(lines))
	for _, line := range lines {
		authorship, parsed := ParseSummaryLine(line)
		if !parsed {
			continue
		}
		authorships = append(authorships, authorship)
	}
	return authorships
}

// ParseSummaryLine parses a single "<count>\t<name> <<email>>" line.
func ParseSummaryLine(line string) (Authorship, bool) {
	countField, authorField, found := strings.Cut(strings.TrimRight(line, "\r"), summaryFieldSeparatorConstant)
	if !found {
		return Authorship{}, false
	}

	matches := authorshipPattern.FindStringSubmatch(authorField)
	if matches == nil {
		return Authorship{}, false
	}

	commitCount, countError := strconv.Atoi(strings.TrimSpace(countField))
	if countError != nil {
		commitCount = 0
	}

	return Authorship{
		Identity: Record{Name: matches[1], Email: matches[2]},
		Commits:  commitCount,
	}, true
}

// Records strips commit counts from authorship entries.
func Records(authorships []Authorship) []Record {
	records := make([]Record, 0, len(authorships))
	for _, authorship := range authorships {
		records = append(records, authorship.Identity)
	}
	return records
}

// Contains reports whether any authorship carries value in the given field.
func Contains(authorships []Authorship, field Field, value string) bool {
	for _, authorship := range authorships {
		if authorship.Identity.Value(field) == value {
			return true
		}
	}
	return false
}

// DistinctValues is the union of names and emails across several authorship lists.
type DistinctValues struct {
	Names  []string
	Emails []string
}

// Union collects distinct names and emails, each sorted lexicographically.
func Union(authorshipLists ...[]Authorship) DistinctValues {
	names := make(map[string]struct{})
	emails := make(map[string]struct{})
	for _, authorships := range authorshipLists {
		for _, authorship := range authorships {
			names[authorship.Identity.Name] = struct{}{}
			emails[authorship.Identity.Email] = struct{}{}
		}
	}
	return DistinctValues{Names: sortedKeys(names), Emails: sortedKeys(emails)}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
