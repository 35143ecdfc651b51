package inspection

type InspectionRequest struct {
	Partner        string `form:"partner" json:"partner" validate:"required,max=100"`
	TechnicianName string `form:"technician_name" json:"technician_name" validate:"required,max=100"`
}

type InspectionResult struct {
	Partner        string   `json:"partner"`
	TechnicianName string   `json:"technician_name"`
	Percentage     float64  `json:"percentage"`
	Present        []string `json:"present"`
	Missing        []string `json:"missing"`
	PresentDisplay string   `json:"present_display"`
	MissingDisplay string   `json:"missing_display"`
	Timestamp      string   `json:"timestamp"`
	CarnetText     string   `json:"carnet_text,omitempty"`
	LocalSaved     bool     `json:"local_saved"`
	RemoteSaved    bool     `json:"remote_saved"`
}

type InspectionResponse struct {
	Data InspectionResult `json:"data"`
}

type HistoryRow struct {
	Date       string `json:"date"`
	Partner    string `json:"partner"`
	Name       string `json:"name"`
	Has        string `json:"has"`
	Missing    string `json:"missing"`
	Percentage string `json:"percentage"`
}

type HistoryResponse struct {
	Data []HistoryRow `json:"data"`
}
