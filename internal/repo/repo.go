package repo

import (
	"github.com/GlebRadaev/projecthub/internal/pg"
	certificaterepo "github.com/GlebRadaev/projecthub/internal/repo/certificate-repo"
	domainrepo "github.com/GlebRadaev/projecthub/internal/repo/domain-repo"
	invoicerepo "github.com/GlebRadaev/projecthub/internal/repo/invoice-repo"
	paymentrepo "github.com/GlebRadaev/projecthub/internal/repo/payment-repo"
	projectrepo "github.com/GlebRadaev/projecthub/internal/repo/project-repo"
	refundrepo "github.com/GlebRadaev/projecthub/internal/repo/refund-repo"
	reportrepo "github.com/GlebRadaev/projecthub/internal/repo/report-repo"
	teamrepo "github.com/GlebRadaev/projecthub/internal/repo/team-repo"
	userrepo "github.com/GlebRadaev/projecthub/internal/repo/user-repo"
)

// Repositories are shared by several services, each seeing them through its own interface.
type Repositories struct {
	UserRepo        *userrepo.Repository
	TeamRepo        *teamrepo.Repository
	ProjectRepo     *projectrepo.Repository
	PaymentRepo     *paymentrepo.Repository
	RefundRepo      *refundrepo.Repository
	InvoiceRepo     *invoicerepo.Repository
	ReportRepo      *reportrepo.Repository
	DomainRepo      *domainrepo.Repository
	CertificateRepo *certificaterepo.Repository
}

func New(conn pg.Database, txManager pg.TXManager) *Repositories {
	return &Repositories{
		UserRepo:        userrepo.New(conn, txManager),
		TeamRepo:        teamrepo.New(conn, txManager),
		ProjectRepo:     projectrepo.New(conn, txManager),
		PaymentRepo:     paymentrepo.New(conn),
		RefundRepo:      refundrepo.New(conn),
		InvoiceRepo:     invoicerepo.New(conn),
		ReportRepo:      reportrepo.New(conn),
		DomainRepo:      domainrepo.New(conn),
		CertificateRepo: certificaterepo.New(conn),
	}
}
