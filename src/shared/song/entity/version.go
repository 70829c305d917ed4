package songentity

import (
	"fmt"
	"strconv"
	"strings"
)

// BumpVersion increments the minor component of a "<major>.<minor>" version.
// A missing minor counts as 0. Anything unparsable resets to the initial version.
// The major component is never touched here.
func BumpVersion(version string) string {
	majorRaw, minorRaw, found := strings.Cut(version, ".")
	if !found {
		minorRaw = "0"
	}

	// only the first two components count, like "1.2.3" -> "1.3"
	minorRaw, _, _ = strings.Cut(minorRaw, ".")

	major, err := strconv.Atoi(strings.TrimSpace(majorRaw))
	if err != nil {
		return InitialVersion
	}

	minor, err := strconv.Atoi(strings.TrimSpace(minorRaw))
	if err != nil {
		return InitialVersion
	}

	return fmt.Sprintf("%d.%d", major, minor+1)
}
