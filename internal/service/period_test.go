package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/course-eval-api/pkg/errors"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2024-1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), p.To)

	p, err = ParsePeriod(" 2024-2 ")
	require.NoError(t, err)
	assert.Equal(t, "2024-2", p.Token)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), p.From)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.To)

	p, err = ParsePeriod("")
	require.NoError(t, err)
	assert.Nil(t, p)
	from, to := p.Bounds()
	assert.Nil(t, from)
	assert.Nil(t, to)
}

func TestParsePeriodRejectsMalformedTokens(t *testing.T) {
	for _, token := range []string{"2024-3", "24-1", "2024/1", "2024-01", "spring"} {
		_, err := ParsePeriod(token)
		require.Error(t, err, token)
		assert.True(t, errors.Is(err, appErrors.ErrInvalidPeriod), token)
	}
}
