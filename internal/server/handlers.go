package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alexanderramin/ridewait/internal/contract"
	"github.com/alexanderramin/ridewait/internal/domain"
	"github.com/alexanderramin/ridewait/internal/llm"
	"github.com/alexanderramin/ridewait/internal/render"
)

const maxSubmitBytes = 16 << 10

type chartFormat int

const (
	formatPNG chartFormat = iota
	formatSVG
)

type submitRequest struct {
	Text string `json:"text"`
}

// submitResponse mirrors contract.GraphUpdate; null fields mean unchanged.
type submitResponse struct {
	Figure     domain.Figure `json:"figure"`
	Transcript *string       `json:"transcript"`
	Input      *string       `json:"input"`
	Code       string        `json:"code,omitempty"`
	Failure    string        `json:"failure,omitempty"`
	Turns      int           `json:"turns"`
}

type indexData struct {
	Title       string
	Ride        string
	Preamble    string
	Transcript  string
	FigureTitle string
	Failure     string
	Turns       int
	Width       int
	Height      int
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	table := s.svc.Table()
	rows := 0
	if table != nil {
		rows = len(table.Rows)
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "rows": rows})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sessionFrom(ctx)

	transcript, err := s.svc.Transcript(ctx, id)
	if err != nil {
		s.internalError(w, "loading transcript", err)
		return
	}
	fig, err := s.svc.CurrentFigure(ctx, id)
	if err != nil {
		s.internalError(w, "loading figure", err)
		return
	}

	data := indexData{
		Title:       s.cfg.Title,
		Ride:        s.cfg.Ride,
		Preamble:    s.svc.Preamble(),
		Transcript:  transcript,
		FigureTitle: fig.Title,
		Turns:       strings.Count(transcript, "**Description**:"),
		Width:       s.chartWidth(),
		Height:      s.chartHeight(),
	}
	if fig.IsPlaceholder() {
		data.Failure = fig.Title
	}

	var buf bytes.Buffer
	if err := s.index.Execute(&buf, data); err != nil {
		s.internalError(w, "executing index template", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSubmitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmitBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}

	_, err := s.svc.GenerateGraph(r.Context(), sessionFrom(r.Context()), contract.NewSubmission(r.PostForm.Get("text")))
	if err != nil {
		s.submitError(w, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleResetForm(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.Reset(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.internalError(w, "resetting session", err)
		return
	}
	setSessionCookie(w, id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleChart(format chartFormat) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fig, err := s.svc.CurrentFigure(r.Context(), sessionFrom(r.Context()))
		if err != nil {
			s.internalError(w, "loading figure", err)
			return
		}

		var buf bytes.Buffer
		contentType := "image/png"
		if format == formatSVG {
			contentType = "image/svg+xml"
			err = render.SVG(fig, &buf, s.chartWidth(), s.chartHeight())
		} else {
			err = render.PNG(fig, &buf, s.chartWidth(), s.chartHeight())
		}
		if err != nil {
			s.internalError(w, "rendering chart", err)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf.Bytes())
	}
}

func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	update, err := s.svc.GenerateGraph(r.Context(), sessionFrom(r.Context()), contract.NewSubmission(req.Text))
	if err != nil {
		s.submitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{
		Figure:     update.Figure,
		Transcript: update.Transcript,
		Input:      update.InputValue,
		Code:       update.Code,
		Failure:    update.Failure,
		Turns:      update.Turns,
	})
}

func (s *Server) handleAPIFigure(w http.ResponseWriter, r *http.Request) {
	fig, err := s.svc.CurrentFigure(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.internalError(w, "loading figure", err)
		return
	}
	writeJSON(w, http.StatusOK, fig)
}

func (s *Server) handleAPIReset(w http.ResponseWriter, r *http.Request) {
	id, err := s.svc.Reset(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		s.internalError(w, "resetting session", err)
		return
	}
	setSessionCookie(w, id)
	writeJSON(w, http.StatusOK, map[string]string{"session": id})
}

func (s *Server) submitError(w http.ResponseWriter, err error) {
	if errors.Is(err, llm.ErrMissingCredential) {
		s.logger.Warnw("submission rejected", "error", err)
		writeError(w, http.StatusServiceUnavailable, "chart generation is not configured: set OPENAI_KEY")
		return
	}
	s.internalError(w, "generating graph", err)
}

func (s *Server) internalError(w http.ResponseWriter, msg string, err error) {
	s.logger.Errorw(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

func (s *Server) chartWidth() int {
	if s.cfg.ChartWidth > 0 {
		return s.cfg.ChartWidth
	}
	return render.DefaultWidth
}

func (s *Server) chartHeight() int {
	if s.cfg.ChartHeight > 0 {
		return s.cfg.ChartHeight
	}
	return render.DefaultHeight
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
