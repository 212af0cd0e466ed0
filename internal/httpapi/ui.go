package httpapi

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed ui/*
var uiEmbedFS embed.FS

var uiFS fs.FS

func init() {
	sub, err := fs.Sub(uiEmbedFS, "ui")
	if err != nil {
		// If this fails, the binary is built incorrectly; still keep server functional.
		uiFS = nil
		return
	}
	uiFS = sub
}

var authPages = map[string]string{
	signInPath:      "sign-in.html",
	"/auth/sign-up": "sign-up.html",
	pinPath:         "pin.html",
	pinSetupPath:    "pin-setup.html",
	adminLoginPath:  "admin-login.html",
}

// Customer pages sit behind the admission filter and share one shell.
var customerPages = []string{
	"/", defaultLanding, "/deposit", "/withdraw", "/cards", "/profile", "/payout-methods",
}

func servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		http.ServeFileFS(w, r, uiFS, name)
	}
}

func (s *Server) registerUI(r chi.Router) {
	if uiFS == nil {
		return
	}
	r.Handle("/assets/*", http.FileServerFS(uiFS))

	for p, name := range authPages {
		r.Get(p, servePage(name))
	}
	for _, p := range customerPages {
		r.Get(p, servePage("app.html"))
	}

	admin := s.require(requireAdminUI)
	r.With(admin).Get("/admin", servePage("admin.html"))
	r.With(admin).Get("/admin/*", servePage("admin.html"))
}
