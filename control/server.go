// Package control serves a small HTTP panel for adjusting the feedback
// parameters while the engine runs.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/richinsley/azurescens/params"
)

// update mirrors params.Params with pointer fields so that a missing field
// can be told apart from a zero value.
type update struct {
	Invert         *bool    `json:"invert"`
	Fade           *float32 `json:"fade"`
	PermuteColors  *bool    `json:"permute_colors"`
	ColorCycleRate *float32 `json:"color_cycle_rate"`
	MixLinear      *float32 `json:"mix_linear"`
	MixLinearTV    *float32 `json:"mix_linear_tv"`
}

func (u update) params() (params.Params, error) {
	missing := ""
	switch {
	case u.Invert == nil:
		missing = "invert"
	case u.Fade == nil:
		missing = "fade"
	case u.PermuteColors == nil:
		missing = "permute_colors"
	case u.ColorCycleRate == nil:
		missing = "color_cycle_rate"
	case u.MixLinear == nil:
		missing = "mix_linear"
	case u.MixLinearTV == nil:
		missing = "mix_linear_tv"
	}
	if missing != "" {
		return params.Params{}, fmt.Errorf("missing field %q", missing)
	}
	return params.Params{
		Invert:         *u.Invert,
		Fade:           *u.Fade,
		PermuteColors:  *u.PermuteColors,
		ColorCycleRate: *u.ColorCycleRate,
		MixLinear:      *u.MixLinear,
		MixLinearTV:    *u.MixLinearTV,
	}, nil
}

// readHeaderTimeout bounds how long a client may take to send request headers.
const readHeaderTimeout = 5 * time.Second

// Server exposes a params.Store over HTTP.
type Server struct {
	store  *params.Store
	srv    *http.Server
	logger *log.Logger
}

// NewServer returns a server for store listening on addr.
func NewServer(addr string, store *params.Store) *Server {
	s := &Server{store: store, logger: log.Default()}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler returns the panel routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/params", s.paramsHandler)
	return mux
}

// Listen binds the server's address. A bind failure is reported to the
// caller and leaves the store untouched.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("control panel: %w", err)
	}
	return ln, nil
}

// Run listens and serves until Shutdown is called. Any end of service other
// than Shutdown poisons the store, since the panel can no longer be relied
// on to have delivered a complete record.
func (s *Server) Run() error {
	ln, err := s.Listen()
	if err != nil {
		s.store.Poison(err)
		return err
	}
	return s.Serve(ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Printf("Control panel listening on http://%s/", ln.Addr())
	err := s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	err = fmt.Errorf("control panel: %w", err)
	s.store.Poison(err)
	return err
}

// Shutdown stops the server without poisoning the store.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p, err := s.store.Snapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := panelTemplate.Execute(w, panelData(p)); err != nil {
		s.logger.Printf("Control panel: rendering page: %v", err)
	}
}

func (s *Server) paramsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		p, err := s.store.Snapshot()
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(p)
	case http.MethodPut, http.MethodPost:
		var u update
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&u); err != nil {
			http.Error(w, fmt.Sprintf("bad parameter record: %v", err), http.StatusBadRequest)
			return
		}
		p, err := u.params()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.store.Replace(p); err != nil {
			if errors.Is(err, params.ErrPoisoned) {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type fieldView struct {
	params.Field
	Checked bool
	Value   float32
}

func panelData(p params.Params) []fieldView {
	values := map[string]float32{
		"fade":             p.Fade,
		"color_cycle_rate": p.ColorCycleRate,
		"mix_linear":       p.MixLinear,
		"mix_linear_tv":    p.MixLinearTV,
	}
	checks := map[string]bool{
		"invert":         p.Invert,
		"permute_colors": p.PermuteColors,
	}
	views := make([]fieldView, 0, len(params.Fields))
	for _, f := range params.Fields {
		views = append(views, fieldView{Field: f, Checked: checks[f.Name], Value: values[f.Name]})
	}
	return views
}

var panelTemplate = template.Must(template.New("panel").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Azurescens</title></head>
<body>
<h1>Azurescens</h1>
<form id="params">
{{range .}}<p><label>{{if .Bool}}<input type="checkbox" name="{{.Name}}"{{if .Checked}} checked{{end}}>{{else}}<input type="number" step="0.01" name="{{.Name}}" value="{{.Value}}">{{end}} {{.Label}}</label></p>
{{end}}</form>
<script>
const form = document.getElementById("params");
form.addEventListener("input", () => {
  const body = {};
  for (const el of form.elements) {
    body[el.name] = el.type === "checkbox" ? el.checked : parseFloat(el.value);
  }
  fetch("/params", {method: "PUT", body: JSON.stringify(body)});
});
</script>
</body>
</html>
`))
