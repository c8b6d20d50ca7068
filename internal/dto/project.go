package dto

type ApproveProjectRequestDTO struct {
	Price        float64 `json:"price" example:"15000"`
	AdminNotes   string  `json:"adminNotes" example:"Includes documentation"`
	DeliveryDate string  `json:"deliveryDate" example:"2026-12-01"`
}

type RejectProjectRequestDTO struct {
	Reason string `json:"reason" example:"Out of scope"`
}

type ProjectNoteRequestDTO struct {
	Note string `json:"note" validate:"required" example:"Please share the dataset"`
}

type ProjectResponseDTO struct {
	ID            int     `json:"id" example:"1"`
	Code          string  `json:"code" example:"HT181020261"`
	UserID        int     `json:"userId" example:"3"`
	ProjectName   string  `json:"projectName" example:"Crop yield predictor"`
	Domain        string  `json:"domain" example:"Machine Learning"`
	Description   string  `json:"description"`
	ReferenceFile string  `json:"referenceFile,omitempty" example:"uploads/projects/1760000000000-brief.pdf"`
	SolutionFile  string  `json:"solutionFile,omitempty"`
	Status        string  `json:"status" example:"pending"`
	AdminNotes    string  `json:"adminNotes,omitempty"`
	TotalAmount   float64 `json:"totalAmount" example:"15000"`
	DeliveryDate  string  `json:"deliveryDate" example:"2026-12-01"`
	PaymentStatus string  `json:"paymentStatus,omitempty" example:"pending"`
	CreatedAt     string  `json:"createdAt" example:"2026-10-18T10:00:00Z"`
	OwnerName     string  `json:"ownerName,omitempty"`
	OwnerEmail    string  `json:"ownerEmail,omitempty"`
}

type SummaryResponseDTO struct {
	ProjectsByStatus map[string]int `json:"projectsByStatus"`
	OpenReports      int            `json:"openReports" example:"4"`
	TotalCollected   float64        `json:"totalCollected" example:"125000"`
	TotalRefunded    float64        `json:"totalRefunded" example:"5000"`
}
