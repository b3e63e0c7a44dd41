package ceisa

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanBLNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"01/twn/blw-xi/2025", "01/TWN/BLW-XI/2025"},
		{" -HBL 001/ ", "HBL001"},
		{"//abc#123--", "ABC123"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanBLNumber(tt.in), tt.in)
	}
}

func TestValidateContainer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ContainerCheck
	}{
		{"valid", "mscu 123456-7", ContainerCheck{Valid: true, Cleaned: "MSCU1234567"}},
		{"empty", "  ", ContainerCheck{Error: "Empty"}},
		{"short", "MSCU12345", ContainerCheck{Cleaned: "MSCU12345", Error: "Length != 11"}},
		{"owner", "MS1U1234567", ContainerCheck{Cleaned: "MS1U1234567", Error: "Invalid Owner Code"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateContainer(tt.in))
		})
	}
}

func TestCleanMarks(t *testing.T) {
	assert.Equal(t, NoMark, CleanMarks(""))
	assert.Equal(t, NoMark, CleanMarks("Marks: "))
	assert.Equal(t, "ABC JAKARTA", CleanMarks("MARKS:  ABC \n JAKARTA"))
	assert.Equal(t, "1-100", CleanMarks("nos. 1-100"))
	assert.Equal(t, "SHIPPING MARKS", CleanMarks("SHIPPING MARKS"))
}

func TestGenerateID(t *testing.T) {
	digits := regexp.MustCompile(`^\d{16}$`)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := GenerateID()
		assert.Regexp(t, digits, id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 45)
}
