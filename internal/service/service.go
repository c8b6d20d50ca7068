package service

import (
	"time"

	"github.com/GlebRadaev/projecthub/internal/pg"
	"github.com/GlebRadaev/projecthub/internal/repo"
	"github.com/GlebRadaev/projecthub/internal/service/authservice"
	"github.com/GlebRadaev/projecthub/internal/service/certificateservice"
	"github.com/GlebRadaev/projecthub/internal/service/domainservice"
	"github.com/GlebRadaev/projecthub/internal/service/invoiceservice"
	"github.com/GlebRadaev/projecthub/internal/service/paymentservice"
	"github.com/GlebRadaev/projecthub/internal/service/projectservice"
	"github.com/GlebRadaev/projecthub/internal/service/reportservice"
	"github.com/GlebRadaev/projecthub/internal/service/teamservice"
	pkgauth "github.com/GlebRadaev/projecthub/pkg/auth"
)

// Storage is satisfied by both the disk and the S3 backends.
type Storage interface {
	projectservice.Storage
	domainservice.Storage
}

// Deps are the outside collaborators the services talk to.
type Deps struct {
	OTPStore authservice.OTPStore
	Notifier projectservice.Notifier
	Storage  Storage
	Gateway  paymentservice.Gateway
	JWT      pkgauth.JWTServiceInterface
	TokenTTL time.Duration
	OTPTTL   time.Duration
	BaseURL  string
}

type Services struct {
	AuthService        *authservice.Service
	TeamService        *teamservice.Service
	ProjectService     *projectservice.Service
	PaymentService     *paymentservice.Service
	InvoiceService     *invoiceservice.Service
	ReportService      *reportservice.Service
	DomainService      *domainservice.Service
	CertificateService *certificateservice.Service
}

func New(repos *repo.Repositories, txManager pg.TXManager, deps Deps) *Services {
	invoiceService := invoiceservice.New(repos.InvoiceRepo, repos.PaymentRepo, repos.ProjectRepo, deps.Storage)

	return &Services{
		AuthService: authservice.New(repos.UserRepo, deps.OTPStore, deps.Notifier,
			&pkgauth.HashService{}, deps.JWT, deps.TokenTTL, deps.OTPTTL),
		TeamService: teamservice.New(repos.TeamRepo),
		ProjectService: projectservice.New(repos.ProjectRepo, repos.PaymentRepo, repos.RefundRepo, repos.ReportRepo,
			repos.UserRepo, txManager, deps.Storage, deps.Notifier, deps.BaseURL),
		PaymentService: paymentservice.New(repos.PaymentRepo, repos.ProjectRepo, repos.RefundRepo, txManager,
			deps.Gateway, invoiceService, deps.Notifier),
		InvoiceService:     invoiceService,
		ReportService:      reportservice.New(repos.ReportRepo, repos.UserRepo, repos.ProjectRepo, deps.Storage, deps.Notifier),
		DomainService:      domainservice.New(repos.DomainRepo, deps.Storage),
		CertificateService: certificateservice.New(repos.CertificateRepo, repos.ProjectRepo, deps.Storage),
	}
}
