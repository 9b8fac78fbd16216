package views

// ViewState is embedded by every callscope view: its size, the status
// message and the number of service queries still in flight.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
	pending    int
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// Report shows err when set, otherwise ok. An empty ok leaves the
// current message alone.
func (s *ViewState) Report(err error, ok string) {
	switch {
	case err != nil:
		s.SetMessage(err.Error(), true)
	case ok != "":
		s.SetMessage(ok, false)
	}
}

// BeginQuery counts a query sent to the service and reports whether it is
// the only one in flight, in which case the caller starts its spinner
func (s *ViewState) BeginQuery() bool {
	s.pending++
	return s.pending == 1
}

// EndQuery counts an answered query
func (s *ViewState) EndQuery() {
	if s.pending > 0 {
		s.pending--
	}
}

// Pending reports whether queries are in flight
func (s *ViewState) Pending() bool {
	return s.pending > 0
}
