package ambient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruthiness(t *testing.T) {
	testCases := []struct {
		value string
		on    bool
		off   bool
	}{
		{"ON", true, false},
		{"yes", true, false},
		{"1", true, false},
		{"2", true, false},
		{"OFF", false, true},
		{"", false, true},
		{"0", false, true},
		{"Foo-NOTFOUND", false, true},
		{"ignore", false, true},
		{"maybe", false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			assert.Equal(t, tc.on, IsOn(tc.value), "IsOn(%q)", tc.value)
			assert.Equal(t, tc.off, IsOff(tc.value), "IsOff(%q)", tc.value)
		})
	}
}

func TestStore_DefineGetAndList(t *testing.T) {
	s := New()
	s.Define("CMAKE_CONFIGURATION_TYPES", "Debug;;Release")
	s.Define("EMPTY", "")

	v, ok := s.Get("CMAKE_CONFIGURATION_TYPES")
	assert.True(t, ok)
	assert.Equal(t, "Debug;;Release", v)
	assert.Equal(t, []string{"Debug", "Release"}, s.List("CMAKE_CONFIGURATION_TYPES"))

	_, ok = s.Nonempty("EMPTY")
	assert.False(t, ok)
	assert.True(t, s.IsOff("UNDEFINED"))
	assert.False(t, s.IsOn("UNDEFINED"))

	s.Unset("EMPTY")
	assert.Equal(t, []string{"CMAKE_CONFIGURATION_TYPES"}, s.Names())
}
