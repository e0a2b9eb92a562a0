package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	ua "github.com/mileusna/useragent"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vsinha/vantax/pkg/application/icontext"
	"github.com/vsinha/vantax/pkg/application/services"
	"github.com/vsinha/vantax/pkg/domain/entities"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap"
)

// CompanyHeader names the tenant of a request, by ID or slug
const CompanyHeader = "X-Company-ID"

// Middleware constructor.
type Middleware func(http.Handler) http.Handler

func SetCORS(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			// Access-Control-Allow-Origin must be present in every response
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			// allow and stop processing in pre-flight requests
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, User-Agent, "+CompanyHeader)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// Metrics counts and times every request by route pattern
func Metrics(name string, m *metrics) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func(start time.Time) {
				label := prometheus.Labels{
					"handler":    name,
					"method":     r.Method,
					"path":       routePattern(r),
					"status":     statusClass(ww.Status()),
					"user_agent": UserAgent(r),
				}
				m.requestDuration.With(label).Observe(time.Since(start).Seconds())
				m.requests.With(label).Inc()
			}(time.Now())

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

// Logging writes one line per request
func Logging(log *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func(start time.Time) {
				fields := []zap.Field{
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("response_size", ww.BytesWritten()),
					zap.Duration("took", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote", r.RemoteAddr),
				}
				if c := r.Header.Get(CompanyHeader); c != "" {
					fields = append(fields, zap.String("company_id", c))
				}
				if code := ww.Header().Get(PlatformErrorCodeHeader); code != "" {
					fields = append(fields, zap.String("error_code", code))
				}
				log.Debug("Request", fields...)
			}(time.Now())

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

// Tenant resolves the company named by CompanyHeader and stores it on the
// request context
func Tenant(api *API, tenants services.TenantService) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ref := r.Header.Get(CompanyHeader)
			if strings.TrimSpace(ref) == "" {
				api.Err(w, r, &perrors.Error{Code: perrors.EInvalid, Msg: "missing " + CompanyHeader + " header"})
				return
			}
			company, err := tenants.Resolve(r.Context(), ref)
			if err != nil {
				api.Err(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(icontext.SetCompany(r.Context(), company)))
		}
		return http.HandlerFunc(fn)
	}
}

// Authenticate verifies the bearer token and requires it to belong to the
// company resolved by Tenant
func Authenticate(api *API, auth services.AuthService) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			company, err := icontext.GetCompany(ctx)
			if err != nil {
				api.Err(w, r, err)
				return
			}

			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				api.Err(w, r, &perrors.Error{Code: perrors.EUnauthorized, Msg: "missing bearer token"})
				return
			}
			claims, err := auth.Verify(ctx, strings.TrimSpace(token))
			if err != nil {
				api.Err(w, r, err)
				return
			}
			if claims.CompanyID != company.ID {
				api.Err(w, r, &perrors.Error{Code: perrors.EForbidden, Msg: "token was issued for another company"})
				return
			}

			ctx = icontext.SetPrincipal(ctx, icontext.Principal{
				UserID:    claims.UserID,
				CompanyID: claims.CompanyID,
				Role:      claims.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// RequirePermission rejects callers whose role does not grant perm
func RequirePermission(api *API, perm entities.Permission) Middleware {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			p, err := icontext.GetPrincipal(r.Context())
			if err != nil {
				api.Err(w, r, err)
				return
			}
			if !p.Role.Can(perm) {
				api.Err(w, r, &perrors.Error{
					Code: perrors.EForbidden,
					Msg:  p.Role.String() + " role cannot perform this action",
				})
				return
			}
			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(fn)
	}
}

func UserAgent(r *http.Request) string {
	header := r.Header.Get("User-Agent")
	if header == "" {
		return "unknown"
	}

	name := ua.Parse(header).Name
	if name == "" {
		return "unknown"
	}
	return name
}

// routePattern is the matched chi pattern, so IDs do not explode the label
// space. Unmatched requests share one value.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || len(rctx.RoutePatterns) == 0 {
		return "unmatched"
	}
	p := strings.Join(rctx.RoutePatterns, "")
	p = strings.ReplaceAll(p, "/*/", "/")
	p = strings.TrimSuffix(p, "/*")
	if p == "" {
		return "/"
	}
	return p
}

func statusClass(code int) string {
	if code == 0 {
		code = http.StatusOK
	}
	return strconv.Itoa(code/100) + "XX"
}
