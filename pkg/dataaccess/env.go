package dataaccess

import (
	"github.com/JayKakadiya/ui-plugin-samples/internal/util"
)

// NewClientFromEnv builds a client from the DATA_ACCESS_* variables.
func NewClientFromEnv() *Client {
	return NewClient(
		util.GetEnv("DATA_ACCESS_URL"),
		WithAPIKey(util.GetEnv("DATA_ACCESS_API_KEY")),
		WithTimeout(util.GetEnvDuration("DATA_ACCESS_TIMEOUT", DefaultTimeout)),
		WithRetry(int(util.GetEnvNumeric("DATA_ACCESS_RETRIES", 1)), DefaultBackoff),
		WithRateLimit(util.GetEnvNumeric("DATA_ACCESS_RATE_LIMIT", int(DefaultRateLimit))),
	)
}
