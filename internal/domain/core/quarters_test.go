package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJoiningQuarter(t *testing.T) {
	cases := []struct {
		month time.Month
		want  int
	}{
		{time.April, 1},
		{time.June, 1},
		{time.July, 2},
		{time.September, 2},
		{time.October, 3},
		{time.December, 3},
		{time.January, 4},
		{time.March, 4},
	}
	for _, tc := range cases {
		date := time.Date(2026, tc.month, 15, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, tc.want, JoiningQuarter(date), tc.month.String())
	}
}

func TestInitialEntitlement(t *testing.T) {
	grant := FormatGrant{QuarterOne: 2, QuarterTwo: 2, QuarterThree: 2, QuarterFour: 2}

	assert.Equal(t, 8.0, InitialEntitlement(grant, 1), "full year when joining in Q1")
	assert.Equal(t, 4.0, InitialEntitlement(grant, 3))
	assert.Equal(t, 2.0, InitialEntitlement(grant, 4), "only the last quarter remains")
	assert.Equal(t, 8.0, InitialEntitlement(grant, 0), "out of range clamps")
}
