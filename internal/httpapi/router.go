package httpapi

import (
	"errors"
	"net/http"
	"net/http/pprof"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/analysis"
	"github.com/freeeve/repertoire/internal/config"
	"github.com/freeeve/repertoire/internal/engine"
	"github.com/freeeve/repertoire/internal/rules"
	"github.com/freeeve/repertoire/internal/session"
	"github.com/freeeve/repertoire/internal/store"
	"github.com/freeeve/repertoire/internal/tree"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler serves one training session.
type Handler struct {
	s   *session.Session
	log zerolog.Logger
}

// NewRouter creates the HTTP router for a session.
func NewRouter(log zerolog.Logger, s *session.Session) http.Handler {
	h := &Handler{s: s, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /readyz", h.health)

	mux.HandleFunc("GET /v1/session", h.state)
	mux.HandleFunc("POST /v1/session/color", h.chooseColor)
	mux.HandleFunc("POST /v1/session/move", h.move)
	mux.HandleFunc("POST /v1/session/takeback", h.takeBack)
	mux.HandleFunc("POST /v1/session/main", h.playMain)
	mux.HandleFunc("GET /v1/session/candidates", h.candidates)
	mux.HandleFunc("POST /v1/session/promote", h.promote)
	mux.HandleFunc("POST /v1/session/evaluation", h.evaluation)
	mux.HandleFunc("POST /v1/session/comment", h.comment)
	mux.HandleFunc("POST /v1/session/new-file", h.newFile)
	mux.HandleFunc("POST /v1/session/random", h.random)
	mux.HandleFunc("POST /v1/session/flip", h.flip)
	mux.HandleFunc("POST /v1/session/reset", h.reset)
	mux.HandleFunc("POST /v1/session/save", h.save)
	mux.HandleFunc("GET /v1/session/analysis", h.analysisStatus)
	mux.HandleFunc("POST /v1/session/analysis", h.startAnalysis)
	mux.HandleFunc("DELETE /v1/session/analysis", h.stopAnalysis)

	mux.HandleFunc("GET /v1/deviations", h.deviations)
	mux.HandleFunc("GET /v1/transpositions", h.transpositions)

	// pprof endpoints
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return CORS(RequestID(AccessLog(log, mux)))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.s.State())
}

func (h *Handler) chooseColor(w http.ResponseWriter, r *http.Request) {
	color, err := config.ParseColor(r.URL.Query().Get("color"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.reply(w, r)(h.s.ChooseColor(color))
}

// MoveRequest plays a move given in either notation.
type MoveRequest struct {
	SAN string `json:"san,omitempty"`
	UCI string `json:"uci,omitempty"`
}

func (h *Handler) move(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !h.decode(w, r, &req) {
		return
	}
	switch {
	case req.UCI != "":
		if !rules.ValidUCI(req.UCI) {
			http.Error(w, "invalid uci move: "+req.UCI, http.StatusBadRequest)
			return
		}
		h.reply(w, r)(h.s.PlayUCI(req.UCI))
	case req.SAN != "":
		h.reply(w, r)(h.s.Play(req.SAN))
	default:
		http.Error(w, "missing san or uci", http.StatusBadRequest)
	}
}

func (h *Handler) takeBack(w http.ResponseWriter, r *http.Request) {
	del := false
	if v := r.URL.Query().Get("delete"); v != "" {
		var err error
		if del, err = strconv.ParseBool(v); err != nil {
			http.Error(w, "invalid delete param", http.StatusBadRequest)
			return
		}
	}
	st, err := h.s.TakeBack(del)
	if err == nil && del {
		h.log.Info().Str("rid", GetRequestID(r.Context())).Msg("latest move deleted from repertoire")
	}
	h.reply(w, r)(st, err)
}

func (h *Handler) playMain(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r)(h.s.PlayMainVariant())
}

func (h *Handler) candidates(w http.ResponseWriter, r *http.Request) {
	cs, err := h.s.Candidates()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"candidates": cs})
}

func (h *Handler) promote(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r)(h.s.SetLastMoveMain())
}

// EvaluationRequest sets glyphs on the last move. An empty list clears them.
type EvaluationRequest struct {
	Symbols []string `json:"symbols"`
}

func (h *Handler) evaluation(w http.ResponseWriter, r *http.Request) {
	var req EvaluationRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.reply(w, r)(h.s.SetEvaluation(req.Symbols))
}

// CommentRequest replaces the comment of the last move.
type CommentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) comment(w http.ResponseWriter, r *http.Request) {
	var req CommentRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.reply(w, r)(h.s.SetComment(req.Comment))
}

func (h *Handler) newFile(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r)(h.s.NewFileForLastMove())
}

func (h *Handler) random(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.s.ToggleRandom())
}

func (h *Handler) flip(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.s.FlipBoard())
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.s.Reset())
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	if err := h.s.Save(); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"saved": true})
}

func (h *Handler) analysisStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.s.AnalysisStatus()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, st)
}

func (h *Handler) startAnalysis(w http.ResponseWriter, r *http.Request) {
	if err := h.s.StartAnalysis(); err != nil {
		h.fail(w, r, err)
		return
	}
	h.analysisStatus(w, r)
}

func (h *Handler) stopAnalysis(w http.ResponseWriter, r *http.Request) {
	h.s.StopAnalysis()
	h.analysisStatus(w, r)
}

func (h *Handler) deviations(w http.ResponseWriter, r *http.Request) {
	color, err := config.ParseColor(r.URL.Query().Get("color"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	devs, err := h.findDeviations(color)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, ToDeviationsResponse(color, devs))
}

func (h *Handler) findDeviations(color tree.Color) ([]analysis.Deviation, error) {
	var (
		devs    []analysis.Deviation
		findErr error
	)
	if err := h.s.Inspect(func(root *tree.Node, _ tree.Color) {
		devs, findErr = analysis.FindDeviations(root, color)
	}); err != nil {
		return nil, err
	}
	return devs, findErr
}

func (h *Handler) transpositions(w http.ResponseWriter, r *http.Request) {
	var dups []analysis.Duplicate
	if err := h.s.Inspect(func(root *tree.Node, _ tree.Color) {
		dups = analysis.FindDuplicateLines(root)
	}); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, ToTranspositionsResponse(dups))
}

// reply writes the state or maps the error.
func (h *Handler) reply(w http.ResponseWriter, r *http.Request) func(session.State, error) {
	return func(st session.State, err error) {
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, st)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("rid", GetRequestID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, config.ErrUserInput),
		errors.Is(err, rules.ErrInvalidMove),
		errors.Is(err, session.ErrUnknownGlyph),
		errors.Is(err, session.ErrNoColor),
		errors.Is(err, analysis.ErrNoColor):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoRepertoire),
		errors.Is(err, session.ErrAtStart),
		errors.Is(err, session.ErrNoContinuation):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNoEngine):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
