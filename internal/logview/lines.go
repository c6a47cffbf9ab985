package logview

// DefaultLines is the window applied per task when nothing else is requested.
const DefaultLines = 15

// DetermineLines picks the effective log window. full always wins; an
// explicit count is used as is; a single explicitly selected task is shown
// completely; anything else falls back to DefaultLines. A nil result means
// the whole log.
func DetermineLines(full bool, lines *int, single bool) *int {
	if full {
		return nil
	}
	if lines != nil {
		n := *lines
		return &n
	}
	if single {
		return nil
	}
	n := DefaultLines
	return &n
}
