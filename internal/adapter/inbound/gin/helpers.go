package gin

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxAccountKeyLength = 128

// parseSessionID reads the :id path parameter.
// Writes a 400 response and returns false if it is not a UUID.
func parseSessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortBadRequest(c, "invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// accountKey reads the :account path parameter.
func accountKey(c *gin.Context) (string, bool) {
	key := c.Param("account")
	if key == "" || len(key) > maxAccountKeyLength {
		abortBadRequest(c, "invalid account key")
		return "", false
	}
	return key, true
}

// parseDate parses a YYYY-MM-DD date as midnight UTC.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
