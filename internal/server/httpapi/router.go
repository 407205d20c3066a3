package httpapi

import "net/http"

// Routes builds the request mux. Token endpoints are open, everything under
// the authenticated section requires a valid bearer access token.
func (a *API) Routes() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		switch {
		case r.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case r.Method == http.MethodPost && path == "/auth/v1/signup":
			a.Signup(w, r)
			return
		case r.Method == http.MethodPost && path == "/auth/v1/login":
			a.Login(w, r)
			return
		case r.Method == http.MethodPost && path == "/auth/v1/refresh":
			a.Refresh(w, r)
			return
		case r.Method == http.MethodGet && path == "/auth/v1/me":
			a.authenticate(http.HandlerFunc(a.Me)).ServeHTTP(w, r)
			return
		}

		http.NotFound(w, r)
	})
}
