package cmd

import (
	"embed"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/zalepa/fcaschools/internal/config"
	"github.com/zalepa/fcaschools/internal/logger"
	"github.com/zalepa/fcaschools/reconcile"
	"github.com/zalepa/fcaschools/records"
)

//go:embed web.html
var htmlContent embed.FS

type metadata struct {
	Dataset string              `json:"dataset"`
	Years   []int               `json:"years"`
	Terms   []string            `json:"terms"`
	Levels  []string            `json:"levels"`
	Grades  map[string][]string `json:"grades"`
	Weeks   []string            `json:"weeks"`
	Default selectionJSON       `json:"default"`
}

type selectionJSON struct {
	Year  int      `json:"year"`
	Term  string   `json:"term"`
	Level string   `json:"level"`
	Grade string   `json:"grade"`
	Week  string   `json:"week"`
	Weeks []string `json:"weeks"`
}

// server serves the dashboard for one loaded workbook at a time. A reload
// swaps the whole session under the lock; requests in flight keep the
// session they started with.
type server struct {
	cfg  *config.Config
	load func() (*records.Dataset, error)

	mu      sync.RWMutex
	session *session
	dataset string
}

func newServer(cfg *config.Config, load func() (*records.Dataset, error)) (*server, error) {
	srv := &server{cfg: cfg, load: load}
	if err := srv.reload(); err != nil {
		return nil, err
	}
	return srv, nil
}

func (srv *server) reload() error {
	ds, err := srv.load()
	if err != nil {
		return err
	}
	s, err := newSession(srv.cfg, ds)
	if err != nil {
		return err
	}
	id := uuid.New().String()

	srv.mu.Lock()
	srv.session = s
	srv.dataset = id
	srv.mu.Unlock()
	logger.Info("web: dataset %s loaded (%d enrolment rows, %d attendance rows)", id, len(ds.Enrolment), len(ds.Attendance))
	return nil
}

func (srv *server) current() (*session, string) {
	srv.mu.RLock()
	defer srv.mu.RUnlock()
	return srv.session, srv.dataset
}

// Web implements the "web" subcommand.
func Web(args []string) {
	fs := flag.NewFlagSet("web", flag.ExitOnError)
	configPath := fs.String("config", "", "config file (YAML)")
	workbookPath := fs.String("workbook", "", "workbook path (overrides data.workbook)")
	port := fs.String("port", "", "HTTP server port (overrides web.port)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fcaschools web [workbook] [--port 8080]\n\nStart an interactive web dashboard.\n\nFlags:\n")
		fs.PrintDefaults()
	}
	args = reorderArgs(args)
	fs.Parse(args)

	if fs.NArg() > 0 {
		*workbookPath = fs.Arg(0)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fail("loading config", err)
	}
	if *port == "" {
		*port = cfg.Web.Port
	}

	srv, err := newServer(cfg, func() (*records.Dataset, error) {
		s, err := openSession(cfg, *workbookPath)
		if err != nil {
			return nil, err
		}
		return s.data, nil
	})
	if err != nil {
		fail("loading data", err)
	}

	addr := ":" + *port
	fmt.Printf("serving on http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, srv.routes()); err != nil {
		fail("serving", err)
	}
}

func (srv *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		data, _ := htmlContent.ReadFile("web.html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})

	mux.HandleFunc("GET /api/metadata", func(w http.ResponseWriter, r *http.Request) {
		s, id := srv.current()
		c, ok := srv.selection(w, r, s)
		if !ok {
			return
		}
		all := append(append([]records.Record(nil), s.data.Enrolment...), s.data.Attendance...)
		opts := records.OptionsFor(all)
		meta := metadata{
			Dataset: id,
			Years:   opts.Years,
			Terms:   opts.Terms,
			Levels:  append(s.cat.Levels(), records.AllLevels),
			Grades:  make(map[string][]string),
			Weeks:   records.Weeks(s.data.Attendance, c.Year, c.Term),
			Default: selectionJSON{Year: c.Year, Term: c.Term, Level: c.Level, Grade: c.Grade, Week: c.Week, Weeks: c.Weeks},
		}
		for _, l := range s.cat.Levels() {
			meta.Grades[l] = records.Grades(s.data.Enrolment, l)
		}
		writeJSON(w, meta)
	})

	mux.HandleFunc("GET /api/enrolment", func(w http.ResponseWriter, r *http.Request) {
		s, _ := srv.current()
		c, ok := srv.selection(w, r, s)
		if !ok {
			return
		}
		t, err := s.enrolment(c)
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, map[string]interface{}{"table": t, "genders": t.Melt()})
	})

	// Unknown schools get a zero row.
	mux.HandleFunc("GET /api/school", func(w http.ResponseWriter, r *http.Request) {
		s, _ := srv.current()
		c, ok := srv.selection(w, r, s)
		if !ok {
			return
		}
		name := r.URL.Query().Get("school")
		if name == "" {
			name = reconcile.AllSchools
		}
		t, err := s.enrolment(c)
		if err != nil {
			serverError(w, err)
			return
		}
		row, found := t.Lookup(name)
		if !found {
			row = reconcile.Row{School: name}
		}
		writeJSON(w, map[string]interface{}{"school": row, "found": found})
	})

	mux.HandleFunc("GET /api/attendance", func(w http.ResponseWriter, r *http.Request) {
		s, _ := srv.current()
		c, ok := srv.selection(w, r, s)
		if !ok {
			return
		}
		t, err := s.attendance(c)
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, t)
	})

	mux.HandleFunc("GET /api/breakdown", func(w http.ResponseWriter, r *http.Request) {
		s, _ := srv.current()
		c, ok := srv.selection(w, r, s)
		if !ok {
			return
		}
		b, err := s.breakdown(c)
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, b)
	})

	mux.HandleFunc("GET /api/grades", func(w http.ResponseWriter, r *http.Request) {
		s, _ := srv.current()
		c, ok := srv.selection(w, r, s)
		if !ok {
			return
		}
		g, err := s.grades(c)
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, g)
	})

	mux.HandleFunc("GET /api/trend", func(w http.ResponseWriter, r *http.Request) {
		s, _ := srv.current()
		c, ok := srv.selection(w, r, s)
		if !ok {
			return
		}
		p, err := s.trend(c)
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, map[string]interface{}{"weeks": c.Weeks, "points": p})
	})

	mux.HandleFunc("GET /api/weekly", func(w http.ResponseWriter, r *http.Request) {
		s, _ := srv.current()
		c, ok := srv.selection(w, r, s)
		if !ok {
			return
		}
		wk, err := s.weekly(c)
		if err != nil {
			serverError(w, err)
			return
		}
		writeJSON(w, wk)
	})

	mux.HandleFunc("POST /api/reload",func(w http.ResponseWriter, r *http.Request) {
		if err := srv.reload(); err != nil {
			serverError(w, err)
			return
		}
		_, id := srv.current()
		writeJSON(w, map[string]string{"dataset": id})
	})

	return mux
}

// selection reads the filter query parameters and resolves unset ones. It
// writes a 400 response and returns false when a parameter is invalid.
func (srv *server) selection(w http.ResponseWriter, r *http.Request, s *session) (records.Constraints, bool) {
	v := r.URL.Query()
	q := query{
		term:  v.Get("term"),
		level: v.Get("level"),
		grade: v.Get("grade"),
		week:  v.Get("week"),
		weeks: v.Get("weeks"),
	}
	if y := v.Get("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid year %q", y), http.StatusBadRequest)
			return records.Constraints{}, false
		}
		q.year = year
	}
	if q.level != "" && q.level != records.AllLevels && !s.cat.Has(q.level) {
		http.Error(w, fmt.Sprintf("unknown level %q", q.level), http.StatusBadRequest)
		return records.Constraints{}, false
	}
	return s.resolve(q), true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("web: encode response: %v", err)
	}
}

func serverError(w http.ResponseWriter, err error) {
	logger.Error("web: %v", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
