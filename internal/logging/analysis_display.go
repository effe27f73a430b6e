package logging

import (
	"fmt"
	"strings"

	"github.com/linuxmatters/trackcutter/internal/detector"
)

// RenderAnalysis formats the whole-stream statistics the analyser
// collected, one column per channel, ending with a ready-to-paste
// --dc-offset argument that corrects the measured bias.
func RenderAnalysis(s detector.Stats) string {
	t := NewChannelTable(s.Channels)
	t.AddRow("positive_peak", "  %+1.16f", s.PosPeak)
	t.AddRow("negative_peak", "  %+1.16f", s.NegPeak)
	t.AddRow("peak_dbfs", "  %+3.14f", s.PeakDBFS)
	t.AddRow("min_rms", "  %+1.16f", s.MinRMS)
	t.AddRow("max_rms", "  %+1.16f", s.MaxRMS)
	t.AddRow("avg_rms", "  %+1.16f", s.AvgRMS)
	t.AddRow("min_rms_dbfs", "  %+3.14f", s.MinRMSDBFS)
	t.AddRow("max_rms_dbfs", "  %+3.14f", s.MaxRMSDBFS)
	t.AddRow("avg_rms_dbfs", "  %+3.14f", s.AvgRMSDBFS)
	t.AddRow("dc_offset", "  %+1.16f", s.DCOffset)
	t.AddRow("dc_offset_dbfs", "  %+3.14f", s.DCOffsetDBFS)

	fix := make([]string, s.Channels)
	for c, v := range s.DCOffset {
		fix[c] = fmt.Sprintf("%+f", -v)
	}
	t.AddRawRow("fix_dc_offset_arg", "--dc-offset="+strings.Join(fix, ","))
	return t.String()
}
