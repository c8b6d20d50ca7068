package handlers

import (
	"context"
	"net/http"
	"os"

	_ "github.com/GlebRadaev/projecthub/docs"
	authhandlers "github.com/GlebRadaev/projecthub/internal/handlers/auth"
	certificatehandlers "github.com/GlebRadaev/projecthub/internal/handlers/certificates"
	domainhandlers "github.com/GlebRadaev/projecthub/internal/handlers/domains"
	paymenthandlers "github.com/GlebRadaev/projecthub/internal/handlers/payments"
	projecthandlers "github.com/GlebRadaev/projecthub/internal/handlers/projects"
	reporthandlers "github.com/GlebRadaev/projecthub/internal/handlers/reports"
	teamhandlers "github.com/GlebRadaev/projecthub/internal/handlers/teams"
	"github.com/GlebRadaev/projecthub/internal/service"
	"github.com/GlebRadaev/projecthub/pkg/auth"
	"github.com/GlebRadaev/projecthub/pkg/logger"
	"github.com/GlebRadaev/projecthub/pkg/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthHandler interface {
	SendOTP(w http.ResponseWriter, r *http.Request)
	VerifyOTP(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	AdminLogin(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type TeamHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Mine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type ProjectHandler interface {
	Request(w http.ResponseWriter, r *http.Request)
	Mine(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request)
	AddNote(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
}

type PaymentHandler interface {
	ListForProject(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Confirm(w http.ResponseWriter, r *http.Request)
	Refund(w http.ResponseWriter, r *http.Request)
	Refunds(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Invoice(w http.ResponseWriter, r *http.Request)
}

type ReportHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Mine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Reply(w http.ResponseWriter, r *http.Request)
	Close(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type DomainHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type CertificateHandler interface {
	Upload(w http.ResponseWriter, r *http.Request)
	ListForProject(w http.ResponseWriter, r *http.Request)
}

// RoleService resolves the stored role of the token subject.
type RoleService interface {
	UserRole(ctx context.Context, userID int) (string, error)
}

// OwnerService resolves the user that owns a resource.
type OwnerService interface {
	Owner(ctx context.Context, id int) (int, error)
}

type Handlers struct {
	AuthHandler        AuthHandler
	TeamHandler        TeamHandler
	ProjectHandler     ProjectHandler
	PaymentHandler     PaymentHandler
	ReportHandler      ReportHandler
	DomainHandler      DomainHandler
	CertificateHandler CertificateHandler

	JWT           auth.JWTServiceInterface
	Roles         RoleService
	ProjectOwners OwnerService
	PaymentOwners OwnerService
	// UploadsDir is served under /uploads/ when files are kept on local disk.
	UploadsDir string
}

func New(s *service.Services, jwt auth.JWTServiceInterface, uploadsDir string) *Handlers {
	return &Handlers{
		AuthHandler:        authhandlers.New(s.AuthService),
		TeamHandler:        teamhandlers.New(s.TeamService),
		ProjectHandler:     projecthandlers.New(s.ProjectService),
		PaymentHandler:     paymenthandlers.New(s.PaymentService, s.InvoiceService),
		ReportHandler:      reporthandlers.New(s.ReportService),
		DomainHandler:      domainhandlers.New(s.DomainService),
		CertificateHandler: certificatehandlers.New(s.CertificateService),
		JWT:                jwt,
		Roles:              s.AuthService,
		ProjectOwners:      s.ProjectService,
		PaymentOwners:      s.PaymentService,
		UploadsDir:         uploadsDir,
	}
}

func ownerOf(param string, owners OwnerService) auth.OwnerResolver {
	return func(r *http.Request) (int, error) {
		id, err := utils.IDParam(r, param)
		if err != nil {
			return 0, err
		}
		return owners.Owner(r.Context(), id)
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		logger.AccessLog(os.Stdout),
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	if h.UploadsDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(h.UploadsDir))))
	}

	authenticated := []func(http.Handler) http.Handler{auth.AuthMiddleware(h.JWT), auth.LoadRole(h.Roles)}

	r.Route("/api", func(r chi.Router) {
		r.Get("/domains", h.DomainHandler.List)

		r.Route("/users", func(r chi.Router) {
			r.Post("/send-otp", h.AuthHandler.SendOTP)
			r.Post("/verify-otp", h.AuthHandler.VerifyOTP)
			r.Post("/register", h.AuthHandler.Register)
			r.Post("/login", h.AuthHandler.Login)
			r.With(authenticated...).Get("/me", h.AuthHandler.Me)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticated...)

			r.Route("/teams", func(r chi.Router) {
				r.Post("/", h.TeamHandler.Submit)
				r.Get("/me", h.TeamHandler.Mine)
			})
			r.Route("/projects", func(r chi.Router) {
				r.Post("/request", h.ProjectHandler.Request)
				r.Get("/all", h.ProjectHandler.Mine)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(auth.RequireOwnerOrAdmin(ownerOf("id", h.ProjectOwners)))
					r.Get("/", h.ProjectHandler.Get)
					r.Get("/payments", h.PaymentHandler.ListForProject)
					r.Get("/certificates", h.CertificateHandler.ListForProject)
				})
			})
			r.Route("/payments/{paymentId}", func(r chi.Router) {
				r.Use(auth.RequireOwnerOrAdmin(ownerOf("paymentId", h.PaymentOwners)))
				r.Post("/confirm", h.PaymentHandler.Confirm)
				r.Get("/invoice", h.PaymentHandler.Invoice)
			})
			r.Route("/reports", func(r chi.Router) {
				r.Post("/", h.ReportHandler.Create)
				r.Get("/", h.ReportHandler.Mine)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.AuthHandler.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(auth.AuthMiddleware(h.JWT), auth.RequireAdmin(h.Roles))

				r.Get("/summary", h.ProjectHandler.Summary)
				r.Get("/teams", h.TeamHandler.List)
				r.Route("/projects", func(r chi.Router) {
					r.Get("/", h.ProjectHandler.List)
					r.Get("/{id}", h.ProjectHandler.Get)
					r.Delete("/{id}", h.ProjectHandler.Delete)
					r.Patch("/{id}/notes", h.ProjectHandler.AddNote)
					r.Post("/approve/{id}", h.ProjectHandler.Approve)
					r.Post("/reject/{id}", h.ProjectHandler.Reject)
					r.Post("/complete/{id}", h.ProjectHandler.Complete)
				})
				r.Route("/payments", func(r chi.Router) {
					r.Get("/", h.PaymentHandler.List)
					r.Get("/export", h.PaymentHandler.Export)
					r.Get("/{id}", h.PaymentHandler.ListForProject)
					r.Post("/refund/{paymentId}", h.PaymentHandler.Refund)
					r.Get("/refunds/{paymentId}", h.PaymentHandler.Refunds)
				})
				r.Route("/reports", func(r chi.Router) {
					r.Get("/", h.ReportHandler.List)
					r.Post("/{id}/reply", h.ReportHandler.Reply)
					r.Post("/{id}/close", h.ReportHandler.Close)
					r.Delete("/{id}", h.ReportHandler.Delete)
				})
				r.Route("/domains", func(r chi.Router) {
					r.Post("/", h.DomainHandler.Create)
					r.Put("/{id}", h.DomainHandler.Update)
					r.Delete("/{id}", h.DomainHandler.Delete)
				})
				r.Post("/certificates", h.CertificateHandler.Upload)
			})
		})
	})

	return r
}
