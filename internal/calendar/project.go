package calendar

// FilterByDentist returns the events assigned to dentistID. An empty id means
// no filter and returns the input unchanged. The input slice is never
// mutated, and filtering an already-filtered slice is a no-op.
func FilterByDentist(events []Event, dentistID string) []Event {
	if dentistID == "" {
		return events
	}
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.DentistID == dentistID {
			out = append(out, e)
		}
	}
	return out
}

// LookupFunc resolves an id to a display name. The second return is false
// when the registry does not know the id.
type LookupFunc func(id string) (string, bool)

// Label is the display projection of an event.
type Label struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	ColorClass string `json:"color_class"`
}

// statusColors is the fixed status-to-color table. Unknown statuses fall back
// to the neutral info color rather than failing.
var statusColors = map[string]string{
	"scheduled":   "info",
	"in_progress": "warning",
	"completed":   "success",
	"cancelled":   "danger",
}

// StatusColor maps a lifecycle status to its display color class.
func StatusColor(status string) string {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return "info"
}

// ProjectLabel renders an event for display. Registry misses degrade to a
// truncated-id placeholder instead of an empty or broken label.
func ProjectLabel(e Event, patientName, dentistName LookupFunc) Label {
	title := ""
	if patientName != nil {
		if name, ok := patientName(e.PatientID); ok && name != "" {
			title = name
		}
	}
	if title == "" {
		title = "Patient #" + shortID(e.PatientID)
	}

	subtitle := ""
	if dentistName != nil {
		if name, ok := dentistName(e.DentistID); ok && name != "" {
			subtitle = name
		}
	}
	if subtitle == "" {
		subtitle = "Dentist #" + shortID(e.DentistID)
	}

	return Label{Title: title, Subtitle: subtitle, ColorClass: StatusColor(e.Status)}
}

// shortID keeps the last 6 characters of an id, enough to disambiguate
// without filling the cell.
func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
