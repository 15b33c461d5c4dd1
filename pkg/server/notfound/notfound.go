package notfound

import (
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/irrigation-server/pkg/utils"
)

type NotFoundResponse struct {
	Error  string              `json:"error"`
	URI    string              `json:"uri"`
	Method string              `json:"method"`
	Args   map[string][]string `json:"args"`
}

func RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", handlerNotFound)
}

// handlerNotFound catches every request no other route matched and echoes it
// back.
func handlerNotFound(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerNotFound", "method", r.Method, "uri", r.URL.Path)

	args := map[string][]string(r.URL.Query())
	if args == nil {
		args = map[string][]string{}
	}

	utils.RespondWithJSON(w, http.StatusNotFound, NotFoundResponse{
		Error:  "not found",
		URI:    r.URL.Path,
		Method: r.Method,
		Args:   args,
	})
}
