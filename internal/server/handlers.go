package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-cipherview/pkg/contract"
	"github.com/goliatone/go-cipherview/pkg/renderers/html"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	e, err := s.newSession()
	if err != nil {
		s.logger.Error("create session", zap.Error(err))
		writeError(w, err)
		return
	}

	id := e.session.ID()
	base := "/sessions/" + id
	page, err := s.renderer.Page(html.PageData{
		StylesheetURL: "/assets/" + html.StylesheetName,
		ScriptURL:     "/assets/" + html.RuntimeScriptName,
		SubmitURL:     base + "/submit",
		SeedURL:       base + "/seed",
		EventsURL:     base + "/events",
		Operations:    s.operations(),
		Theme:         s.theme,
	})
	if err != nil {
		s.logger.Error("render page", zap.String("session", id), zap.Error(err))
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	e, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, StatusError{Code: http.StatusBadRequest, Err: err})
		return
	}
	operation := r.PostFormValue("operation")
	if s.contract != nil && !s.contract.HasOperation(operation) {
		writeError(w, errUnknownOp)
		return
	}
	if !e.limiter.Allow() {
		writeError(w, errRateLimited)
		return
	}

	e.session.SetText(r.PostFormValue("text"))
	e.session.SetSeed(r.PostFormValue("seed"))
	outcome := e.session.Submit(r.Context(), operation)
	s.logger.Debug("submission",
		zap.String("session", e.session.ID()),
		zap.String("operation", operation),
		zap.String("outcome", string(outcome.Kind)),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	e, err := s.lookup(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := e.session.RequestSeed(r.Context()); err != nil {
		writeError(w, StatusError{Code: http.StatusBadGateway, Err: errors.New("seed generation failed")})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleContract(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(contract.Document())
}

func (s *Server) operations() []html.OperationChoice {
	if s.contract == nil {
		return []html.OperationChoice{
			{Value: "encrypt", Label: "Encrypt"},
			{Value: "decrypt", Label: "Decrypt"},
		}
	}
	ops := s.contract.Operations()
	out := make([]html.OperationChoice, 0, len(ops))
	for _, op := range ops {
		out = append(out, html.OperationChoice{Value: op.Value, Label: op.Label})
	}
	return out
}
