package sink

import (
	"fmt"
	"math"
	"strconv"

	"github.com/linuxmatters/trackcutter/internal/config"
)

// Timecode renders a frame index as H:MM:SS.sssss. Five fractional digits
// are enough precision for sampling rates up to 100 kHz.
func Timecode(idx int64, rate int) string {
	sec := math.Mod(float64(idx)/float64(rate), 60.0)
	whole := int(math.Floor(sec))
	frac := int(math.Mod(math.Floor(sec*100000.0), 100000.0))
	min := (idx / int64(rate) / 60) % 60
	hrs := idx / int64(rate) / 3600
	return fmt.Sprintf("%d:%02d:%02d.%05d", hrs, min, whole, frac)
}

// Seconds renders a frame index as absolute seconds with five fractional
// digits.
func Seconds(idx int64, rate int) string {
	return fmt.Sprintf("%2.5f", float64(idx)/float64(rate))
}

// FormatIndex renders a frame index in the configured cut format.
func FormatIndex(idx int64, rate int, f config.CutFormat) string {
	switch f {
	case config.FormatFrame:
		return strconv.FormatInt(idx, 10)
	case config.FormatSec:
		return Seconds(idx, rate)
	}
	return Timecode(idx, rate)
}
