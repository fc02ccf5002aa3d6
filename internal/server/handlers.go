package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"singbox-converter/internal/converter"
)

const successMessage = "sing-box configuration created"

type convertRequest struct {
	Links    *string `json:"links"`
	Template *string `json:"template"`
}

type convertResponse struct {
	Status        string   `json:"status"`
	Message       string   `json:"message"`
	ConfigContent string   `json:"config_content"`
	Warnings      []string `json:"warnings"`
	Converted     []string `json:"converted"`
}

type errorResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Links == nil {
		writeError(w, http.StatusBadRequest, `"links" is required`)
		return
	}

	var template string
	switch {
	case req.Template != nil:
		template = *req.Template
	case s.cfg.Template.Path == "":
		writeError(w, http.StatusBadRequest, `"template" is required when no template is configured`)
		return
	default:
		loaded, err := s.cfg.LoadTemplate()
		if err != nil {
			s.logger.Error("failed to load configured template", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to load configured template")
			return
		}
		template = loaded
	}

	result, err := s.converter.Convert(*req.Links, template)
	if err != nil {
		if errors.Is(err, converter.ErrTemplateParse) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "conversion failed")
		return
	}

	warnings := append([]string{}, result.Report.Warnings...)
	if err := s.exporter.Export(r.Context(), result.Document); err != nil {
		warnings = append(warnings, "export failed: "+err.Error())
	}

	converted := result.Report.Converted
	if converted == nil {
		converted = []string{}
	}

	writeJSON(w, http.StatusOK, convertResponse{
		Status:        "success",
		Message:       successMessage,
		ConfigContent: string(result.Document),
		Warnings:      warnings,
		Converted:     converted,
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{
		Status:    "error",
		Message:   message,
		RequestID: w.Header().Get(requestIDHeader),
	})
}
