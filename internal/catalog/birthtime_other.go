//go:build !linux

package catalog

import "time"

func birthTime(string) (time.Time, bool) {
	return time.Time{}, false
}
