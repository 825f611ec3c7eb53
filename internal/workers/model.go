package workers

// Worker is the subject entity an imported record is attached to.
type Worker struct {
	ID        int64  `json:"id"`
	CIN       string `json:"cin"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	ProjectID *int64 `json:"projectId,omitempty"`
}

// FullName returns "First Last" trimmed.
func (w Worker) FullName() string {
	switch {
	case w.FirstName == "":
		return w.LastName
	case w.LastName == "":
		return w.FirstName
	}
	return w.FirstName + " " + w.LastName
}
