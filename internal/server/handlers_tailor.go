package server

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/pipeline"
)

// ArtifactName is the attachment name of a tailored resume
const ArtifactName = "resume_updated.pdf"

//go:embed static/index.html
var static embed.FS

// tailorForm is the validated multipart form of POST /tailor
type tailorForm struct {
	Filename       string `validate:"required"`
	Resume         []byte `validate:"required,min=1"`
	JobDescription string `validate:"required"`
}

// CompileFailure is the body of a 422 response
type CompileFailure struct {
	Error string `json:"error"`
	RunID string `json:"run_id"`
	Log   string `json:"log,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, "form unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))

	form, err := s.readTailorForm(w, r)
	if err != nil {
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	jd, err := ingestion.FromText(form.JobDescription)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	dir, err := os.MkdirTemp(s.cfg.WorkDir, "tailor-*")
	if err != nil {
		logger.Error("failed to create request directory", "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to prepare workspace")
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	texPath := filepath.Join(dir, "main.tex")
	if err := os.WriteFile(texPath, form.Resume, 0o644); err != nil {
		logger.Error("failed to save upload", "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to save upload")
		return
	}

	if err := s.serial.Acquire(r.Context(), 1); err != nil {
		errorResponse(w, http.StatusServiceUnavailable, "request cancelled while queued")
		return
	}
	result, err := s.tailorer.Tailor(r.Context(), pipeline.Request{
		TexPath:        texPath,
		JobDescription: jd.Text,
		JobSource:      "upload:" + form.Filename,
		OutputPath:     filepath.Join(dir, "output", "resume_targeted.pdf"),
		LogPath:        filepath.Join(dir, "output", "compile.log"),
	})
	s.serial.Release(1)

	if err != nil {
		logger.Error("tailoring failed", "error", err)
		errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if !result.Succeeded {
		logger.Warn("compilation failed", "run_id", result.RunID)
		writeJSON(w, http.StatusUnprocessableEntity, CompileFailure{
			Error: pipeline.CompileFailedMessage,
			RunID: result.RunID.String(),
			Log:   tailOfFile(result.LogPath, 4096),
		})
		return
	}

	pdf, err := os.ReadFile(result.ArtifactPath)
	if err != nil {
		logger.Error("failed to read artifact", "path", result.ArtifactPath, "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to read compiled resume")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ArtifactName))
	w.Header().Set("X-Run-ID", result.RunID.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// readTailorForm parses and validates the multipart upload.
func (s *Server) readTailorForm(w http.ResponseWriter, r *http.Request) (*tailorForm, error) {
	limit := s.cfg.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20) // form overhead

	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ErrUploadTooLarge{Limit: limit}
		}
		return nil, &ErrValidation{Field: "form", Message: err.Error()}
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := &tailorForm{JobDescription: strings.TrimSpace(r.FormValue("job_description"))}

	file, header, err := r.FormFile("resume")
	if err == nil {
		defer func() { _ = file.Close() }()
		form.Filename = filepath.Base(header.Filename)
		form.Resume, err = io.ReadAll(io.LimitReader(file, limit+1))
		if err != nil {
			return nil, &ErrValidation{Field: "resume", Message: "failed to read upload"}
		}
		if int64(len(form.Resume)) > limit {
			return nil, &ErrUploadTooLarge{Limit: limit}
		}
	}

	if err := s.validate.Struct(form); err != nil {
		return nil, validationError(err)
	}
	return form, nil
}

// validationError reports the first failed field of a validator error
func validationError(err error) error {
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		fe := fields[0]
		field := map[string]string{
			"Filename":       "resume",
			"Resume":         "resume",
			"JobDescription": "job_description",
		}[fe.Field()]
		return &ErrValidation{Field: field, Message: fe.Tag()}
	}
	return &ErrValidation{Field: "form", Message: "invalid request"}
}

// tailOfFile returns up to the last n bytes of a file, or "" if unreadable.
func tailOfFile(path string, n int64) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return ""
	}
	if info.Size() > n {
		if _, err := f.Seek(-n, io.SeekEnd); err != nil {
			return ""
		}
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return ""
	}
	return string(data)
}
