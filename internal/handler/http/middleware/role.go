package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/tovfikur/attsys-sub001/internal/handler/http/response"
)

// Roles allowed to run, approve and pay payroll.
var payrollManagerRoles = map[string]bool{
	"owner": true,
	"admin": true,
	"hr":    true,
}

// RequirePayrollManager limits an endpoint to roles that manage payroll.
func RequirePayrollManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Forbidden(w, "Payroll manager access required")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || !payrollManagerRoles[role] {
			response.Forbidden(w, "Payroll manager access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
