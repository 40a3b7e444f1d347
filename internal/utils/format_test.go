package utils

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToUnit(t *testing.T) {
	cases := []struct {
		bytes int64
		unit  Unit
		want  string
	}{
		{0, MB, "0.00MB"},
		{1024, KB, "1.00KB"},
		{1536, KB, "1.50KB"},
		{1048576, MB, "1.00MB"},
		{2097152, MB, "2.00MB"},
		{5 * 1 << 30, GB, "5.00GB"},
		{1234, Unit("PB"), "1234"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToUnit(tc.bytes, tc.unit), "%d %s", tc.bytes, tc.unit)
	}
}

func TestToUnit_MatchesRoundedDivision(t *testing.T) {
	for _, b := range []int64{1, 999, 123456, 7340032, 987654321, 1 << 40} {
		want := fmt.Sprintf("%.2fMB", math.Round(float64(b)/1048576*100)/100)
		assert.Equal(t, want, ToUnit(b, MB))
	}
}

func TestAutoFormat(t *testing.T) {
	assert.Equal(t, "0.00 B", AutoFormat(0))
	assert.Equal(t, "1023.00 B", AutoFormat(1023))
	assert.Equal(t, "1.00 KB", AutoFormat(1024))
	assert.Equal(t, "1.00 MB", AutoFormat(1048576))
	assert.Equal(t, "1.50 GB", AutoFormat(3<<29))
	// TB is the largest label
	assert.Equal(t, "2048.00 TB", AutoFormat(1<<51))
}

func TestBytesToMB(t *testing.T) {
	assert.Equal(t, int64(0), BytesToMB(MiB-1))
	assert.Equal(t, int64(1), BytesToMB(MiB))
	assert.Equal(t, int64(2), BytesToMB(3*MiB-1))
}
