// Package api exposes the spin service over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/observability"
	"spin-rewards/internal/prizetable"
	"spin-rewards/internal/spin"
)

// SpinService is the part of spin.Service served over HTTP.
type SpinService interface {
	RegisterWallet(ctx context.Context, req spin.RegisterRequest) (*domain.User, bool, error)
	GetUser(ctx context.Context, wallet string) (*domain.User, error)
	History(ctx context.Context, wallet string, limit int) ([]*domain.Spin, error)
	Spin(ctx context.Context, wallet string) (*spin.Outcome, error)
	CreditPurchase(ctx context.Context, wallet, digest string) (*spin.PurchaseOutcome, error)
	Prizes(ctx context.Context) (*domain.PrizeTable, []prizetable.SlotChance, error)
	VerifySpin(ctx context.Context, spinID string) (*spin.Verification, error)
	Distribution(ctx context.Context, from, to time.Time) ([]domain.SlotCount, error)
}

// StatusFunc reports process status for GET /status.
type StatusFunc func() interface{}

// Server holds the HTTP handlers.
type Server struct {
	svc       SpinService
	feed      http.Handler
	status    StatusFunc
	logger    *zap.Logger
	validator *validator.Validate
	now       func() time.Time
}

// NewServer creates the API. feed and status may be nil.
func NewServer(svc SpinService, feed http.Handler, status StatusFunc, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		svc:       svc,
		feed:      feed,
		status:    status,
		logger:    logger.Named("api"),
		validator: newValidator(),
		now:       time.Now,
	}
}

// Router builds the chi router with all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", observability.Handler())
	r.Get("/status", s.handleStatus)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Post("/users", s.handleRegister)
		r.Get("/users/{wallet}", s.handleGetUser)
		r.Get("/users/{wallet}/spins", s.handleHistory)
		r.Post("/spin", s.handleSpin)
		r.Post("/purchases", s.handlePurchase)
		r.Get("/prizes", s.handlePrizes)
		r.Get("/spins/{id}/verify", s.handleVerify)
		r.Get("/stats/distribution", s.handleDistribution)
	})

	if s.feed != nil {
		r.Handle("/ws/feed", s.feed)
	}

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var data interface{} = map[string]string{"status": "running"}
	if s.status != nil {
		data = s.status()
	}
	render.JSON(w, r, OK(data))
}

// reply writes resp with its status as the HTTP status code.
func reply(w http.ResponseWriter, r *http.Request, resp Response) {
	render.Status(r, resp.Status)
	render.JSON(w, r, resp)
}

// fail maps err to an error envelope and logs unexpected errors.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("op", op),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}
	reply(w, r, Error(msg, status))
}

// decode reads a JSON body into dst and validates it. It writes the error
// response itself and reports whether the handler may continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		reply(w, r, Error("failed to decode request body", http.StatusBadRequest))
		return false
	}

	if err := s.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			reply(w, r, ValidationError(verrs))
			return false
		}
		reply(w, r, Error("invalid request", http.StatusBadRequest))
		return false
	}
	return true
}
