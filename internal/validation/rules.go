package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/yamdb/yamdb-server/internal/domain"
	domainerrors "github.com/yamdb/yamdb-server/internal/errors"
)

// ReservedUsername cannot be registered because /users/me is the self-profile route.
const ReservedUsername = "me"

const slugMessage = "Enter a valid slug consisting of letters, numbers, underscores or hyphens."

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Now is the clock used by the year rule.
var Now = time.Now

// NormalizeUsername applies NFKC normalization, as account names are compared in that form.
func NormalizeUsername(raw string) string {
	return norm.NFKC.String(raw)
}

// UsernameProblems returns every message for an already normalized username.
// Offending characters are listed once each, in order of first appearance.
func UsernameProblems(name string) []string {
	var problems []string

	if utf8.RuneCountInString(name) > domain.UsernameMaxLength {
		problems = append(problems, fmt.Sprintf("Ensure this field has no more than %d characters.", domain.UsernameMaxLength))
	}

	var bad strings.Builder
	seen := make(map[rune]bool)
	for _, r := range name {
		if usernameRune(r) || seen[r] {
			continue
		}
		seen[r] = true
		bad.WriteRune(r)
	}
	if bad.Len() > 0 {
		problems = append(problems, "Username contains invalid characters: "+bad.String())
	}

	// A Caser carries state, so each call gets its own.
	if cases.Fold().String(name) == ReservedUsername {
		problems = append(problems, `Username "`+name+`" is reserved.`)
	}
	return problems
}

// Username normalizes raw and validates it, returning a field error on failure.
func Username(raw string) (string, error) {
	name := NormalizeUsername(raw)
	problems := UsernameProblems(name)
	if len(problems) == 0 {
		return name, nil
	}
	fields := domainerrors.FieldErrors{}
	for _, p := range problems {
		fields.Add("username", p)
	}
	return name, fields.Err()
}

func usernameRune(r rune) bool {
	switch r {
	case '.', '@', '+', '-', '_':
		return true
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// YearProblem returns a message if year lies in the future, or "".
func YearProblem(year int) string {
	if year > Now().Year() {
		return "Year cannot be later than the current year."
	}
	return ""
}

// ValidSlug reports whether s is a well-formed slug.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
