package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("VIEWER_TEST_STR", "value")
	t.Setenv("VIEWER_TEST_EMPTY", "")

	assert.Equal(t, "value", GetEnvString("VIEWER_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", GetEnvString("VIEWER_TEST_EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetEnvString("VIEWER_TEST_MISSING", "fallback"))
}

func TestGetEnvNumeric(t *testing.T) {
	t.Setenv("VIEWER_TEST_NUM", "2.5")
	t.Setenv("VIEWER_TEST_BAD_NUM", "abc")

	assert.Equal(t, 2.5, GetEnvNumeric("VIEWER_TEST_NUM", 1))
	assert.Equal(t, float64(7), GetEnvNumeric("VIEWER_TEST_BAD_NUM", 7))
	assert.Equal(t, float64(3), GetEnvNumeric("VIEWER_TEST_MISSING", 3))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("VIEWER_TEST_TRUE", "true")
	t.Setenv("VIEWER_TEST_FALSE", "false")
	t.Setenv("VIEWER_TEST_YES", "yes")

	assert.True(t, GetEnvBool("VIEWER_TEST_TRUE", false))
	assert.False(t, GetEnvBool("VIEWER_TEST_FALSE", true))
	assert.True(t, GetEnvBool("VIEWER_TEST_YES", true))
	assert.False(t, GetEnvBool("VIEWER_TEST_MISSING", false))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("VIEWER_TEST_DUR", "250ms")
	t.Setenv("VIEWER_TEST_BAD_DUR", "soon")
	t.Setenv("VIEWER_TEST_NEG_DUR", "-1s")

	assert.Equal(t, 250*time.Millisecond, GetEnvDuration("VIEWER_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("VIEWER_TEST_BAD_DUR", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("VIEWER_TEST_NEG_DUR", time.Second))
	assert.Equal(t, time.Minute, GetEnvDuration("VIEWER_TEST_MISSING", time.Minute))
}
