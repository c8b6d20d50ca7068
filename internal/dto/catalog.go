package dto

type DomainResponseDTO struct {
	ID          int    `json:"id" example:"1"`
	Name        string `json:"name" example:"Machine Learning"`
	Description string `json:"description"`
	PDFPath     string `json:"pdfPath,omitempty" example:"uploads/domains/1760000000000-ml.pdf"`
}

type CertificateResponseDTO struct {
	ID        int    `json:"id" example:"1"`
	ProjectID int    `json:"projectId" example:"1"`
	FilePath  string `json:"filePath" example:"uploads/certificates/view/1760000000000-cert.png"`
	CreatedAt string `json:"createdAt" example:"2026-10-18T10:00:00Z"`
}

type TeamMemberDTO struct {
	Name       string `json:"name" validate:"required" example:"Ravi Kumar"`
	Email      string `json:"email" validate:"omitempty,email" example:"ravi@example.com"`
	Phone      string `json:"phone" example:"9876500000"`
	RollNumber string `json:"rollNumber" example:"21CS045"`
}

type TeamRequestDTO struct {
	TeamName    string          `json:"teamName" validate:"required" example:"Byte Builders"`
	CollegeName string          `json:"collegeName" example:"City Engineering College"`
	Department  string          `json:"department" example:"CSE"`
	Year        string          `json:"year" example:"4"`
	Members     []TeamMemberDTO `json:"members" validate:"required,min=1,dive"`
}

type TeamResponseDTO struct {
	ID          int             `json:"id" example:"1"`
	UserID      int             `json:"userId" example:"3"`
	TeamName    string          `json:"teamName" example:"Byte Builders"`
	CollegeName string          `json:"collegeName"`
	Department  string          `json:"department"`
	Year        string          `json:"year"`
	Members     []TeamMemberDTO `json:"members"`
}
