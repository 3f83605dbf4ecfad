package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freeeve/repertoire/internal/analysis"
	"github.com/freeeve/repertoire/internal/movetext"
	"github.com/freeeve/repertoire/internal/rules"
	"github.com/freeeve/repertoire/internal/session"
	"github.com/freeeve/repertoire/internal/store"
	"github.com/freeeve/repertoire/internal/tree"
)

const repertoirePGN = "1. d4 (1. Nf3 d5 2. d4 e6) 1... d5 2. Nf3 c6 *"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return NewRouter(zerolog.Nop(), newTestSession(t))
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	std := rules.Standard{}
	text, err := movetext.Annotate(repertoirePGN, std)
	require.NoError(t, err)
	root, err := movetext.Parse(text)
	require.NoError(t, err)

	st := store.New(store.Config{Dir: t.TempDir(), Logger: zerolog.Nop()})
	require.NoError(t, st.Save(tree.Black, root))

	return session.New(session.Config{Repertoires: st, Rules: std, Logger: zerolog.Nop()})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) session.State {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var st session.State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	return st
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.Len(t, rec.Header().Get("X-Request-ID"), 8)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDIsKept(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abcd1234")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abcd1234", rec.Header().Get("X-Request-ID"))
}

func TestPreflight(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodOptions, "/v1/session/move", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestChooseColorValidation(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		target string
		code   int
	}{
		{"missing", "/v1/session/color", http.StatusBadRequest},
		{"bad", "/v1/session/color?color=purple", http.StatusBadRequest},
		{"not saved", "/v1/session/color?color=w", http.StatusNotFound},
		{"saved", "/v1/session/color?color=black", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.target, "")
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())
		})
	}
}

func TestSessionNeedsColor(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/v1/session/candidates", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "no repertoire")
}

func TestPlayFlow(t *testing.T) {
	h := newTestRouter(t)
	st := decodeState(t, do(t, h, http.MethodPost, "/v1/session/color?color=b", ""))
	assert.True(t, st.Flipped)
	require.Len(t, st.Candidates, 2)
	assert.Equal(t, "1. d4", st.Candidates[0].Notation)
	assert.Equal(t, "d2d4", st.Candidates[0].UCI)

	decodeState(t, do(t, h, http.MethodPost, "/v1/session/move", `{"san":"d4"}`))
	decodeState(t, do(t, h, http.MethodPost, "/v1/session/move", `{"uci":"d7d5"}`))
	st = decodeState(t, do(t, h, http.MethodPost, "/v1/session/move", `{"san":"Nf3"}`))
	assert.Equal(t, []string{"1. d4", "1... d5", "2. Nf3"}, st.Line)

	var notations []string
	for _, c := range st.Candidates {
		notations = append(notations, c.Notation)
	}
	assert.Equal(t, []string{"2... c6", "2... e6"}, notations)

	rec := do(t, h, http.MethodPost, "/v1/session/move", `{"san":"Ke2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/v1/session/move", `{"uci":"zz"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPost, "/v1/session/move", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	st = decodeState(t, do(t, h, http.MethodPost, "/v1/session/main", ""))
	assert.Equal(t, "2... c6", st.Last.Notation)

	st = decodeState(t, do(t, h, http.MethodPost, "/v1/session/evaluation", `{"symbols":["!"]}`))
	assert.Equal(t, []string{"$1"}, st.Last.Evaluation)
	rec = do(t, h, http.MethodPost, "/v1/session/evaluation", `{"symbols":["wow"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	st = decodeState(t, do(t, h, http.MethodPost, "/v1/session/comment", `{"comment":"Slav"}`))
	assert.Equal(t, "Slav", st.Last.Comment)

	st = decodeState(t, do(t, h, http.MethodPost, "/v1/session/takeback?delete=true", ""))
	assert.Len(t, st.Line, 3)
	require.Len(t, st.Candidates, 1)
	assert.Equal(t, "2... e6", st.Candidates[0].Notation)

	rec = do(t, h, http.MethodPost, "/v1/session/takeback?delete=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/session/save", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	st = decodeState(t, do(t, h, http.MethodPost, "/v1/session/reset", ""))
	assert.False(t, st.Loaded)
}

func TestDeviationsAndTranspositions(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/v1/transpositions", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	decodeState(t, do(t, h, http.MethodPost, "/v1/session/color?color=b", ""))

	rec = do(t, h, http.MethodGet, "/v1/deviations?color=purple", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/deviations?color=b", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var devs DeviationsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devs))
	require.Equal(t, 1, devs.Count)
	assert.Equal(t, "1. d4 1... d5 2. Nf3", devs.Deviations[0].Line)
	assert.Len(t, devs.Deviations[0].Moves, 2)

	rec = do(t, h, http.MethodGet, "/v1/transpositions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tr TranspositionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tr))
	require.Equal(t, 1, tr.Count)
	assert.Equal(t, []string{
		"Transposition 1. d4 1... d5 2. Nf3",
		"Transposition 1. Nf3 1... d5 2. d4",
	}, tr.Groups[0].Lines)
}

func TestDeviationsReportsAnalysisError(t *testing.T) {
	s := newTestSession(t)
	_, err := s.ChooseColor(tree.Black)
	require.NoError(t, err)

	h := &Handler{s: s, log: zerolog.Nop()}
	devs, err := h.findDeviations(tree.NoColor)
	assert.Nil(t, devs)
	assert.ErrorIs(t, err, analysis.ErrNoColor)
	assert.Equal(t, http.StatusBadRequest, statusOf(err))
}

func TestAnalysisWithoutEngine(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/v1/session/analysis", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
