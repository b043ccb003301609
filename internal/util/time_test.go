package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	date := time.Date(2021, 12, 6, 23, 59, 42, 15, loc)

	require.Equal(t, time.Date(2021, 12, 6, 0, 0, 0, 0, loc), TruncateToDay(date))
	require.Equal(t, time.Date(2021, 12, 6, 23, 59, 0, 0, loc), TruncateToMinute(date))
}
