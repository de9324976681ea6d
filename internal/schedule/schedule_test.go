package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesRangeMembership(t *testing.T) {
	s := Default()
	for h := 0; h < HoursPerDay; h++ {
		expected := (h >= 0 && h <= 11) || (h >= 20 && h <= 23)
		assert.Equal(t, expected, s.Active(h), "hour %d", h)
	}
}

func TestRangesEqualHours(t *testing.T) {
	fromRanges, err := Ranges(Range{0, 11}, Range{20, 23})
	require.NoError(t, err)
	fromHours, err := Hours(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 20, 21, 22, 23)
	require.NoError(t, err)

	assert.Equal(t, fromHours, fromRanges)
	assert.Equal(t, Default(), fromRanges)
}

func TestActiveOutOfRange(t *testing.T) {
	s, err := Ranges(Range{0, 23})
	require.NoError(t, err)

	assert.False(t, s.Active(-1))
	assert.False(t, s.Active(24))
	assert.True(t, s.Active(23))
}

func TestConstructorErrors(t *testing.T) {
	_, err := Hours(24)
	assert.Error(t, err)
	_, err = Hours(-1)
	assert.Error(t, err)
	_, err = Ranges(Range{5, 3})
	assert.Error(t, err)
	_, err = Ranges(Range{20, 24})
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []int
	}{
		{"empty", "", []int{}},
		{"hour list", "0,1,2,20", []int{0, 1, 2, 20}},
		{"ranges", "0-3,22-23", []int{0, 1, 2, 3, 22, 23}},
		{"mixed with spaces", " 5 , 7-8 ,, 23", []int{5, 7, 8, 23}},
		{"duplicates", "3,3,2-4", []int{2, 3, 4}},
		{"single hour range", "6-6", []int{6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Hours())
		})
	}
}

func TestParseMalformed(t *testing.T) {
	for _, input := range []string{"abc", "1,x", "25", "3-1", "1-", "-1", "1-2-3", "0-24"} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.Error(t, err)
		})
	}
}

func TestParseOrEmpty(t *testing.T) {
	s := ParseOrEmpty("8,9,ten")
	assert.True(t, s.IsEmpty())
	for h := 0; h < HoursPerDay; h++ {
		assert.False(t, s.Active(h))
	}

	assert.Equal(t, []int{8, 9}, ParseOrEmpty("8,9").Hours())
}

func TestStringRoundTrip(t *testing.T) {
	assert.Equal(t, "0-11,20-23", Default().String())
	assert.Equal(t, "", Empty().String())

	s, err := Hours(1, 3, 4, 5, 23)
	require.NoError(t, err)
	assert.Equal(t, "1,3-5,23", s.String())
	assert.Equal(t, "1,3,4,5,23", s.HourList())

	back, err := Parse(s.String())
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestRangesOf(t *testing.T) {
	assert.Equal(t, []Range{{0, 11}, {20, 23}}, Default().RangesOf())
	assert.Equal(t, []Range{}, Empty().RangesOf())
}
