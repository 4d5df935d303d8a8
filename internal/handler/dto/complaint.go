package dto

// ComplaintRequest asks for a complaint draft.
type ComplaintRequest struct {
	ReporterName string `json:"reporter_name"`
	ChildName    string `json:"child_name,omitempty"`
	IncidentDate string `json:"incident_date,omitempty"`
	Location     string `json:"location,omitempty"`
	Description  string `json:"description"`
}

// ComplaintResponse describes a drafted complaint.
type ComplaintResponse struct {
	ComplaintID  string `json:"complaint_id"`
	ReporterName string `json:"reporter_name"`
	ChildName    string `json:"child_name,omitempty"`
	IncidentDate string `json:"incident_date,omitempty"`
	Location     string `json:"location,omitempty"`
	DraftText    string `json:"draft_text"`
	PDFPath      string `json:"pdf_path,omitempty"`
	CreatedAt    string `json:"created_at"`
}
