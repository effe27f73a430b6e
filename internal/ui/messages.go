package ui

// ProgressMsg is a periodic position report from the driver.
type ProgressMsg struct {
	Frame   int64
	LevelDB float64
}

// TrackStartMsg indicates a track has been confirmed and opened.
type TrackStartMsg struct {
	Num   int
	Start int64
	Name  string
}

// TrackDoneMsg indicates a track has been closed.
type TrackDoneMsg struct {
	Num        int
	Start, End int64
	Name       string
}

// DoneMsg indicates the run has finished.
type DoneMsg struct {
	Err error
}
