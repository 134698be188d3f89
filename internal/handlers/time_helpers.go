package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thesuite/booking-api/internal/models"
)

func parseDateFor(p *models.Professional, dateStr string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", dateStr, p.Location())
}

func idParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// parseIDList reads "3,4,5" query values into ids; junk entries are skipped.
func parseIDList(raw []string) []uint {
	var out []uint
	for _, chunk := range raw {
		for _, part := range strings.Split(chunk, ",") {
			if n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64); err == nil && n > 0 {
				out = append(out, uint(n))
			}
		}
	}
	return out
}
