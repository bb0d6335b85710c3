package prodos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateTimeFromProDOS(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		expected time.Time
	}{
		{
			name:     "2023-02-02 13:45",
			raw:      []byte{0x42, 0x2E, 45, 13},
			expected: time.Date(2023, time.February, 2, 13, 45, 0, 0, time.Local),
		},
		{
			name:     "December sets the high month bit, year 100 is 2000",
			raw:      []byte{0x9F, 0xC9, 0, 23},
			expected: time.Date(2000, time.December, 31, 23, 0, 0, 0, time.Local),
		},
		{
			name:     "1986 is 19xx",
			raw:      []byte{0x2F, 0xAC, 30, 9},
			expected: time.Date(1986, time.January, 15, 9, 30, 0, 0, time.Local),
		},
		{
			name:     "year 39 is 2039",
			raw:      []byte{0x21, 0x4E, 0, 0},
			expected: time.Date(2039, time.January, 1, 0, 0, 0, 0, time.Local),
		},
		{
			name:     "unused bits in time fields are masked",
			raw:      []byte{0x42, 0x2E, 0xC0 | 5, 0xE0 | 6},
			expected: time.Date(2023, time.February, 2, 6, 5, 0, 0, time.Local),
		},
		{"all zero is no date", []byte{0, 0, 0, 0}, time.Time{}},
		{"month zero", []byte{0x02, 0x2E, 0, 0}, time.Time{}},
		{"month thirteen", []byte{0xA2, 0x2F, 0, 0}, time.Time{}},
		{"day zero", []byte{0x40, 0x2E, 0, 0}, time.Time{}},
		{"February 30", []byte{0x5E, 0x2E, 0, 0}, time.Time{}},
		{"hour 24", []byte{0x42, 0x2E, 0, 24}, time.Time{}},
		{"short buffer", []byte{0x42, 0x2E}, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateTimeFromProDOS(tt.raw)
			assert.True(t, tt.expected.Equal(got), "expected %v, got %v", tt.expected, got)
			assert.Equal(t, tt.expected.IsZero(), got.IsZero())
		})
	}
}
