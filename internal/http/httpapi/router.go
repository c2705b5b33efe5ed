package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"equityfund/internal/http/handlers"
	"equityfund/internal/infra"
	"equityfund/internal/middleware"
)

// Options carries router wiring that is not part of the App container.
type Options struct {
	JWTSecret       string
	DefaultLocale   string
	RateLimitPerMin int
	AllowedOrigins  []string
	CountryLookup   middleware.CountryLookup
	Logger          infra.Logger
}

// NewRouter assembles the chi router. Public reads stay open; every write and
// owner-scoped read sits behind the bearer-token middleware.
func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)
	if opts.RateLimitPerMin > 0 {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute))
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/stats/summary", app.StatsSummary)

	r.Route("/v1/campaigns", func(r chi.Router) {
		r.Get("/", app.CampaignsList)
		r.Get("/{id}", app.CampaignsGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.JWTSecret))
			r.Post("/", app.CampaignsCreate)
			r.Put("/{id}", app.CampaignsUpdate)
			r.Get("/{id}/agreements/export", app.AgreementsExport)
		})
	})

	r.Route("/v1/investments", func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))
		r.Post("/", app.InvestmentsCreate)
		r.Get("/{id}", app.InvestmentsGet)
		r.Put("/{id}/sign", app.InvestmentsSign)
		r.Post("/{id}/pay", app.InvestmentsPay)
		r.Post("/{id}/cancel", app.InvestmentsCancel)
		r.Get("/{id}/agreement", app.AgreementsGet)
		r.Get("/{id}/agreement/download", app.AgreementsDownload)
	})

	r.Route("/v1/investors", func(r chi.Router) {
		r.Use(middleware.AuthJWT(opts.JWTSecret))
		r.Get("/me", app.InvestorsMe)
		r.Put("/me", app.InvestorsUpsert)
	})

	return r
}
