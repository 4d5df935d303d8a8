package entity

import "time"

// Complaint is a formal incident report drafted on behalf of a guardian.
type Complaint struct {
	ID           string
	ReporterName string
	ChildName    string
	IncidentDate string // as reported, free form
	Location     string
	Description  string
	DraftText    string // generated complaint letter body
	PDFPath      string // empty until a PDF has been rendered
	CreatedAt    time.Time
}
