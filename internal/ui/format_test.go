package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bamsammich/dirdiff/internal/stats"
)

func TestFormatCount(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{48917, "48,917"},
		{-1234567, "-1,234,567"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCount(tt.in))
		})
	}
}

func TestFormatRateMatchesByteUnits(t *testing.T) {
	assert.Equal(t, "0 B/s", FormatRate(0))
	assert.Equal(t, "0 B/s", FormatRate(-5))
	assert.Equal(t, "512 B/s", FormatRate(512))
	assert.Equal(t, FormatBytes(3<<20)+"/s", FormatRate(3<<20))
}

func TestFormatDurationAndETA(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "0s", FormatDuration(-time.Second))
	assert.Equal(t, "3m17s", FormatDuration(3*time.Minute+17*time.Second+200*time.Millisecond))

	assert.Equal(t, "--", FormatETA(0))
	assert.Equal(t, "1h0m5s", FormatETA(time.Hour+5*time.Second))
}

func TestProgressBarFollowsBytes(t *testing.T) {
	half := stats.Progress{TotalBytes: 200, BytesCopied: 100, TotalItems: 10, ItemsCompleted: 9}
	assert.Equal(t, "▪▪▪▪▪□□□□□", ProgressBar(half, 10))

	assert.Equal(t, "□□□□", ProgressBar(stats.Progress{}, 4), "nothing to copy")
	assert.Equal(t, "▪▪▪▪", ProgressBar(stats.Progress{TotalBytes: 1, BytesCopied: 5}, 4))
	assert.Empty(t, ProgressBar(half, 0))
}
