package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/snarg/moodscribe/internal/pipeline"
	"github.com/snarg/moodscribe/internal/render"
)

// Runner executes one transcription request.
type Runner interface {
	Run(ctx context.Context, audioPath string, mode render.Mode) (*pipeline.Result, error)
}

// TranscribeResponse is the body of a successful POST /api/v1/transcribe.
type TranscribeResponse struct {
	RequestID string `json:"request_id,omitempty"`
	*pipeline.Result
}

// TranscribeHandler accepts an audio upload and runs it through the pipeline.
type TranscribeHandler struct {
	runner      Runner
	defaultMode render.Mode
	maxBytes    int64
	log         zerolog.Logger
}

// NewTranscribeHandler creates a new transcribe handler. maxBytes <= 0 disables the body limit.
func NewTranscribeHandler(runner Runner, defaultMode render.Mode, maxBytes int64, log zerolog.Logger) *TranscribeHandler {
	if defaultMode == "" {
		defaultMode = render.DefaultMode
	}
	return &TranscribeHandler{
		runner:      runner,
		defaultMode: defaultMode,
		maxBytes:    maxBytes,
		log:         log.With().Str("handler", "transcribe").Logger(),
	}
}

// Routes registers the transcribe endpoint.
func (h *TranscribeHandler) Routes(r chi.Router) {
	r.Post("/transcribe", h.Transcribe)
}

// Transcribe handles POST /api/v1/transcribe.
// Expects a multipart form with an "audio" file and an optional
// "sentiment_option" field naming the display mode.
func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorWithCode(w, http.StatusRequestEntityTooLarge, ErrTooLarge, "audio upload exceeds size limit")
			return
		}
		WriteErrorWithCode(w, http.StatusBadRequest, ErrInvalidBody, "invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, ErrBadRequest, "missing audio file field \"audio\"")
		return
	}
	defer file.Close()

	mode := h.defaultMode
	if v := r.FormValue("sentiment_option"); v != "" {
		mode = render.Mode(v)
	}

	// The extension picks the decoder, so the spooled copy keeps it.
	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp("", "moodscribe-upload-*"+ext)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to create temp file")
		WriteError(w, http.StatusInternalServerError, "failed to store upload")
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read audio file")
		return
	}

	result, err := h.runner.Run(r.Context(), tmp.Name(), mode)
	if err != nil {
		status, code := StatusForError(err)
		ev := h.log.Warn()
		if status >= http.StatusInternalServerError {
			ev = h.log.Error()
		}
		ev.Err(err).Str("filename", header.Filename).Int("status", status).Msg("transcription failed")
		WriteErrorWithCode(w, status, code, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, TranscribeResponse{
		RequestID: r.Header.Get("X-Request-ID"),
		Result:    result,
	})
}
