package hscode

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"8421290000", "8421290000"},
		{"8421.29.00.00", "8421290000"},
		{"HS code: 8421.29", "842129"},
		{"8421", "8421000000"},
		{"84212", "8421200000"},
		{"842", ""},
		{"", ""},
		{"no idea", ""},
		{"842129000012345", "8421290000"},
		{"84212900", "84212900"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	shape := regexp.MustCompile(`^\d{6,10}$`)
	alphabet := []rune("0123456789 .-abcXYZ:")
	rng := rand.New(rand.NewSource(42))

	for n := 0; n < 2000; n++ {
		buf := make([]rune, rng.Intn(20))
		for i := range buf {
			buf[i] = alphabet[rng.Intn(len(alphabet))]
		}
		in := string(buf)

		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
		assert.True(t, once == "" || shape.MatchString(once), "input %q gave %q", in, once)
	}
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("842129"))
	assert.False(t, Valid(""))
	assert.False(t, Valid("8421"))
	assert.False(t, Valid("8421.29"))
}

func TestPadTariffLine(t *testing.T) {
	assert.Equal(t, "8421290000", PadTariffLine("8421.29"))
	assert.Equal(t, "", PadTariffLine(""))
	assert.Equal(t, "12345678901", PadTariffLine("12345678901"))
}
