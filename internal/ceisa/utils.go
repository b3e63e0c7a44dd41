package ceisa

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	blInvalid     = regexp.MustCompile(`[^A-Z0-9/\-]`)
	blEdges       = regexp.MustCompile(`^[/\-]+|[/\-]+$`)
	nonAlnum      = regexp.MustCompile(`[^A-Z0-9]`)
	ownerCode     = regexp.MustCompile(`^[A-Z]{4}$`)
	marksPrefix   = regexp.MustCompile(`(?i)^(MARKS?|NOS?|NUMBERS?|M/N)[:.]?\s*`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// NoMark is written when a shipment carries no marks.
const NoMark = "NO MARK"

// CleanBLNumber upper-cases a B/L number, keeps letters, digits, "/" and
// "-", and trims separators from both ends.
func CleanBLNumber(bl string) string {
	s := blInvalid.ReplaceAllString(strings.ToUpper(bl), "")
	return blEdges.ReplaceAllString(s, "")
}

// ContainerCheck is the result of ValidateContainer.
type ContainerCheck struct {
	Valid   bool
	Cleaned string
	Error   string
}

// ValidateContainer checks the ISO 6346 shape of a container number: four
// letters of owner code followed by seven characters.
func ValidateContainer(number string) ContainerCheck {
	if strings.TrimSpace(number) == "" {
		return ContainerCheck{Error: "Empty"}
	}

	cleaned := nonAlnum.ReplaceAllString(strings.ToUpper(number), "")
	if len(cleaned) != 11 {
		return ContainerCheck{Cleaned: cleaned, Error: "Length != 11"}
	}
	if !ownerCode.MatchString(cleaned[:4]) {
		return ContainerCheck{Cleaned: cleaned, Error: "Invalid Owner Code"}
	}
	return ContainerCheck{Valid: true, Cleaned: cleaned}
}

// CleanMarks collapses whitespace and strips a leading "MARKS:", "NOS."
// style label.
func CleanMarks(marks string) string {
	s := repeatedSpace.ReplaceAllString(strings.TrimSpace(marks), " ")
	s = marksPrefix.ReplaceAllString(s, "")
	if s == "" {
		return NoMark
	}
	return s
}

// GenerateID returns a random 16-digit identifier.
func GenerateID() string {
	id := uuid.New()
	var b strings.Builder
	b.Grow(len(id))
	for _, v := range id {
		b.WriteByte('0' + v%10)
	}
	return b.String()
}
