// Package middleware holds HTTP middleware shared by the services.
package middleware

import "net/http"

type Middleware func(http.Handler) http.Handler
