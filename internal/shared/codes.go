package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewReferenceCode builds codes of the form PREFIX-YYYYMMDD-XXXXXX, the
// format sale orders, harvests and gari batches carry. The suffix comes from
// a random UUID so codes stay unique without a database round trip.
func NewReferenceCode(prefix string, at time.Time) string {
	if at.IsZero() {
		at = time.Now()
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("%s-%s-%s", strings.ToUpper(prefix), at.Format("20060102"), suffix)
}
