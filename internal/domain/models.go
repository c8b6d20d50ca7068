package domain

import "time"

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

const (
	ProjectPending   = "pending"
	ProjectApproved  = "approved"
	ProjectRejected  = "rejected"
	ProjectCompleted = "completed"
)

const (
	ReportOpen   = "open"
	ReportClosed = "closed"
)

type User struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	IsVerified   bool      `db:"is_verified"`
	CreatedAt    time.Time `db:"created_at"`
}

type StudentTeam struct {
	ID          int       `db:"id"`
	UserID      int       `db:"user_id"`
	TeamName    string    `db:"team_name"`
	CollegeName string    `db:"college_name"`
	Department  string    `db:"department"`
	Year        string    `db:"year"`
	CreatedAt   time.Time `db:"created_at"`
	Members     []Student
}

type Student struct {
	ID         int    `db:"id"`
	TeamID     int    `db:"team_id"`
	Name       string `db:"name"`
	Email      string `db:"email"`
	Phone      string `db:"phone"`
	RollNumber string `db:"roll_number"`
}

type Domain struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	PDFPath     string    `db:"pdf_path"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Project struct {
	ID            int       `db:"id"`
	Code          string    `db:"code"`
	UserID        int       `db:"user_id"`
	ProjectName   string    `db:"project_name"`
	Domain        string    `db:"domain"`
	Description   string    `db:"description"`
	ReferenceFile string    `db:"reference_file"`
	SolutionFile  string    `db:"solution_file"`
	Status        string    `db:"status"`
	AdminNotes    string    `db:"admin_notes"`
	TotalAmount   float64   `db:"total_amount"`
	DeliveryDate  time.Time `db:"delivery_date"`
	PaymentStatus string    `db:"payment_status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ProjectWithOwner is a project joined with the user that submitted it.
type ProjectWithOwner struct {
	Project
	OwnerName  string `db:"name"`
	OwnerEmail string `db:"email"`
}

type Payment struct {
	ID               int       `db:"id"`
	ProjectID        int       `db:"project_id"`
	UserID           int       `db:"user_id"`
	TotalAmount      float64   `db:"total_amount"`
	PaidAmount       float64   `db:"paid_amount"`
	PendingAmount    float64   `db:"pending_amount"`
	Status           string    `db:"payment_status"`
	GatewayPaymentID string    `db:"gateway_payment_id"`
	RefundID         string    `db:"refund_id"`
	RefundAmount     float64   `db:"refund_amount"`
	RefundStatus     string    `db:"refund_status"`
	InvoiceURL       string    `db:"invoice_url"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

type Refund struct {
	ID              int       `db:"id"`
	PaymentID       int       `db:"payment_id"`
	ProjectID       int       `db:"project_id"`
	GatewayRefundID string    `db:"gateway_refund_id"`
	Amount          float64   `db:"amount"`
	Status          string    `db:"status"`
	Reason          string    `db:"reason"`
	CreatedAt       time.Time `db:"created_at"`
}

type Invoice struct {
	ID            int       `db:"id"`
	ProjectID     int       `db:"project_id"`
	PaymentID     int       `db:"payment_id"`
	InvoiceNumber string    `db:"invoice_number"`
	FilePath      string    `db:"file_path"`
	Amount        float64   `db:"amount"`
	CreatedAt     time.Time `db:"created_at"`
}

type Report struct {
	ID          int       `db:"id"`
	UserID      int       `db:"user_id"`
	ProjectID   *int      `db:"project_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Attachment  string    `db:"attachment"`
	Status      string    `db:"status"`
	AdminNote   string    `db:"admin_note"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Certificate struct {
	ID        int       `db:"id"`
	ProjectID int       `db:"project_id"`
	UserID    int       `db:"user_id"`
	FilePath  string    `db:"file_path"`
	CreatedAt time.Time `db:"created_at"`
}

// Summary backs the admin dashboard counters.
type Summary struct {
	ProjectsByStatus map[string]int
	OpenReports      int
	TotalCollected   float64
	TotalRefunded    float64
}
