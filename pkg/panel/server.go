package panel

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/yourusername/xvp-go/pkg/account"
	"github.com/yourusername/xvp-go/pkg/remote"
	"github.com/yourusername/xvp-go/pkg/status"
	"github.com/yourusername/xvp-go/pkg/utils"
	"github.com/yourusername/xvp-go/pkg/xray"
)

// AccountService is the coordinator surface the routes call into.
type AccountService interface {
	Create(ctx context.Context, username, password string, days, limit int) (*account.Account, error)
	Renew(ctx context.Context, username string, days int) (string, error)
	RotatePassword(ctx context.Context, username, password string, days int) (bool, error)
	Delete(ctx context.Context, username string, editOnly bool) (bool, error)
	List(ctx context.Context) []account.Credential
	Info(ctx context.Context, username string) (*account.Info, error)
}

// StatusService provides the online snapshot.
type StatusService interface {
	Snapshot(ctx context.Context) status.Snapshot
}

// Server maps HTTP routes onto the coordinator and the aggregator. It
// holds no state of its own beyond the session secret.
type Server struct {
	cfg      *Config
	accounts AccountService
	status   StatusService
}

// New wires the production transport from cfg.
func New(cfg *Config) *Server {
	sshCfg := cfg.Remote()
	runner := remote.NewSSHRunner(sshCfg)
	files := remote.NewSFTPStore(sshCfg)
	store := xray.NewStore(files, cfg.ProxyConfigPath)

	return NewWith(cfg,
		account.NewManager(runner, store, cfg.TargetProtocol),
		status.NewAggregator(runner, cfg.AccessLogPath))
}

// NewWith injects the services directly (tests).
func NewWith(cfg *Config, accounts AccountService, st StatusService) *Server {
	return &Server{cfg: cfg, accounts: accounts, status: st}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.HandleFunc("GET /api/online", s.requireAuth(s.handleOnline))
	mux.HandleFunc("GET /api/users", s.requireAuth(s.handleListUsers))
	mux.HandleFunc("POST /api/users", s.requireAuth(s.handleCreateUser))
	mux.HandleFunc("POST /api/users/renew", s.requireAuth(s.handleRenewUser))
	mux.HandleFunc("POST /api/users/password", s.requireAuth(s.handleRotatePassword))
	mux.HandleFunc("POST /api/users/info", s.requireAuth(s.handleUserInfo))
	mux.HandleFunc("POST /api/users/delete", s.requireAuth(s.handleDeleteUser))
	return mux
}

// ListenAndServe runs the panel until the listener fails.
func (s *Server) ListenAndServe() error {
	utils.Info("panel listening on %s", s.cfg.ListenAddr)
	return http.ListenAndServe(s.cfg.ListenAddr, s.Handler())
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utils.Error("cannot encode response: %v", err)
	}
}

// statusForError maps the coordinator's error taxonomy onto HTTP codes.
func statusForError(err error) int {
	switch {
	case utils.IsInvalidInput(err):
		return http.StatusBadRequest
	case utils.IsRemoteNotFound(err):
		return http.StatusNotFound
	case utils.IsDuplicateAccount(err):
		return http.StatusConflict
	case utils.IsConnection(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), errorBody{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "email and password are required"})
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Email), []byte(s.cfg.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
		return
	}

	if err := s.issueSession(w, req.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.clearSession(w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleOnline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.status.Snapshot(r.Context()))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.accounts.List(r.Context()))
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Days     int    `json:"days"`
		Limit    int    `json:"limit"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Limit == 0 {
		req.Limit = 1
	}

	acct, err := s.accounts.Create(r.Context(), req.Username, req.Password, req.Days, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (s *Server) handleRenewUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Days     int    `json:"days"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := s.accounts.Renew(r.Context(), req.Username, req.Days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (s *Server) handleRotatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Days     int    `json:"days"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ok, err := s.accounts.RotatePassword(r.Context(), req.Username, req.Password, req.Days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}

func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	info, err := s.accounts.Info(r.Context(), req.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := struct {
		Username string  `json:"username"`
		Exists   bool    `json:"exists"`
		ExpDate  *string `json:"expDate"`
		ProxyID  string  `json:"uuid,omitempty"`
	}{Username: info.Username, Exists: info.Exists, ProxyID: info.ProxyID}
	if info.ExpiresAt != nil {
		formatted := info.ExpiresAt.Format("2006-01-02")
		resp.ExpDate = &formatted
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		EditOnly bool   `json:"editOnly"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	ok, err := s.accounts.Delete(r.Context(), req.Username, req.EditOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
}
