package tui

// ErrMsg carries a failed async operation back to the model.
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// SectionLoadedMsg signals that a LoadMore for a section finished.
type SectionLoadedMsg struct {
	Index      int
	Generation int
	Err        error
}

// PlaybackStartedMsg signals that the handoff was opened.
type PlaybackStartedMsg struct {
	Title string
}
