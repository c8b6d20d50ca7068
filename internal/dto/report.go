package dto

type ReportNoteRequestDTO struct {
	Note string `json:"note" example:"We have re-sent the files"`
}

type ReportResponseDTO struct {
	ID          int    `json:"id" example:"1"`
	UserID      int    `json:"userId" example:"3"`
	ProjectID   *int   `json:"projectId,omitempty" example:"2"`
	Title       string `json:"title" example:"Files missing"`
	Description string `json:"description" example:"The archive has no source folder"`
	Attachment  string `json:"attachment,omitempty"`
	Status      string `json:"status" example:"open"`
	AdminNote   string `json:"adminNote,omitempty"`
	CreatedAt   string `json:"createdAt" example:"2026-10-18T10:00:00Z"`
}
