package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mehtakaran9/librarium-backend/api/controllers"
	"github.com/mehtakaran9/librarium-backend/api/middleware"
	adminsvc "github.com/mehtakaran9/librarium-backend/internal/admin"
	authsvc "github.com/mehtakaran9/librarium-backend/internal/auth"
	booksvc "github.com/mehtakaran9/librarium-backend/internal/books"
	finesvc "github.com/mehtakaran9/librarium-backend/internal/fines"
	loansvc "github.com/mehtakaran9/librarium-backend/internal/loans"
	membersvc "github.com/mehtakaran9/librarium-backend/internal/members"
	reservationsvc "github.com/mehtakaran9/librarium-backend/internal/reservations"
	reviewsvc "github.com/mehtakaran9/librarium-backend/internal/reviews"
	"github.com/mehtakaran9/librarium-backend/pkg/config"
	"github.com/mehtakaran9/librarium-backend/pkg/db"
	"github.com/mehtakaran9/librarium-backend/pkg/enums"
	"github.com/mehtakaran9/librarium-backend/pkg/logger"
	"github.com/mehtakaran9/librarium-backend/pkg/redis"
)

// Services bundles everything the router serves.
type Services struct {
	Auth         authsvc.Service
	Books        booksvc.Service
	Members      membersvc.Service
	Loans        loansvc.Service
	Reservations reservationsvc.Service
	Fines        finesvc.Service
	Reviews      reviewsvc.Service
	Admin        adminsvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Get("/healthz", controllers.Healthz(cfg, logg, dbP, redisP))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/register", controllers.AuthRegister(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/books", func(r chi.Router) {
			r.Get("/", controllers.BookList(svcs.Books, logg))
			r.Get("/{bookId}", controllers.BookDetail(svcs.Books, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.Post("/", controllers.BookCreate(svcs.Books, logg))
				r.Patch("/{bookId}", controllers.BookUpdate(svcs.Books, logg))
				r.Delete("/{bookId}", controllers.BookDelete(svcs.Books, logg))
			})
		})

		r.Route("/members", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.MemberRoleAdmin, logg))
			r.Get("/", controllers.MemberList(svcs.Members, logg))
			r.Get("/{memberId}", controllers.MemberDetail(svcs.Members, logg))
		})

		r.Route("/loans", func(r chi.Router) {
			r.Get("/fines/outstanding", controllers.LoanOutstandingFines(svcs.Loans, logg))
			r.Get("/member/{memberId}", controllers.LoansByMember(svcs.Loans, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(logg))
				r.Post("/", controllers.LoanIssue(svcs.Loans, logg))
				r.Patch("/{loanId}/status", controllers.LoanUpdateStatus(svcs.Loans, logg))
				r.Get("/", controllers.LoanList(svcs.Loans, logg))
				r.Get("/{loanId}", controllers.LoanDetail(svcs.Loans, logg))
			})
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Post("/", controllers.ReservationCreate(svcs.Reservations, logg))
			r.Get("/me", controllers.MyReservations(svcs.Reservations, logg))
			r.Delete("/{reservationId}", controllers.ReservationCancel(svcs.Reservations, logg))
			r.With(middleware.RequireStaff(logg)).Get("/", controllers.ReservationList(svcs.Reservations, logg))
		})

		r.Route("/fine-payments", func(r chi.Router) {
			r.Post("/", controllers.FineSettle(svcs.Fines, logg))
			r.Get("/member/{memberId}", controllers.FinePaymentsByMember(svcs.Fines, logg))
			r.Get("/{paymentId}", controllers.FinePaymentDetail(svcs.Fines, logg))
			r.With(middleware.RequireStaff(logg)).Get("/", controllers.FinePaymentHistory(svcs.Fines, logg))
		})

		r.Route("/reviews", func(r chi.Router) {
			r.Post("/", controllers.ReviewCreate(svcs.Reviews, logg))
			r.Get("/book/{bookId}", controllers.ReviewsByBook(svcs.Reviews, logg))
			r.Get("/member/{memberId}", controllers.ReviewsByMember(svcs.Reviews, logg))
			r.Patch("/{reviewId}", controllers.ReviewUpdate(svcs.Reviews, logg))
			r.Delete("/{reviewId}", controllers.ReviewDelete(svcs.Reviews, logg))
			r.With(middleware.RequireStaff(logg)).Get("/", controllers.ReviewList(svcs.Reviews, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.MemberRoleAdmin, logg))
			r.Get("/stats", controllers.AdminStats(svcs.Admin, logg))
			r.Get("/recent-activities", controllers.AdminRecentActivity(svcs.Admin, logg))
		})
	})

	return r
}
