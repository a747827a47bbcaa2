package deliveries

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// The driver/status window buckets by creation time, so a delivery created
// outside the window stays out no matter when it was last touched.
func TestListByDriverStatusWindowsOnCreation(t *testing.T) {
	assert.Contains(t, listByDriverStatusQuery, "created_at >= $3 AND created_at < $4")
	assert.Contains(t, listByDriverStatusQuery, "ORDER BY created_at DESC")
	assert.NotContains(t, listByDriverStatusQuery, "updated_at")
}
