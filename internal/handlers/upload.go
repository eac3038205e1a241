package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/TwigBush/sift-go/internal/authz"
	"github.com/TwigBush/sift-go/internal/httpx"
	"github.com/TwigBush/sift-go/internal/ingest"
	"github.com/TwigBush/sift-go/internal/vector"
)

const maxUploadBytes = 16 << 20 // 16 MiB

// UploadHandler accepts a resume file for a user: the file lands in the
// uploads dir, owner/viewer tuples go to the authorization store, and the
// extracted text is indexed for retrieval.
type UploadHandler struct {
	UploadsDir string
	Tuples     authz.TupleWriter
	Store      vector.Store
}

func NewUploadHandler(uploadsDir string, tuples authz.TupleWriter, store vector.Store) *UploadHandler {
	return &UploadHandler{UploadsDir: uploadsDir, Tuples: tuples, Store: store}
}

type uploadResponse struct {
	Message  string `json:"message"`
	ResumeID string `json:"resume_id"`
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userID"))
	if userID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "missing user id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	if !ingest.Supported(header.Filename) {
		httpx.WriteError(w, http.StatusBadRequest, "invalid file type, only PDF and TXT are allowed")
		return
	}

	resumeID := fmt.Sprintf("%s-%s", userID, uuid.NewString())
	ext := strings.ToLower(filepath.Ext(header.Filename))
	dest := filepath.Join(h.UploadsDir, resumeID+ext)

	if err := saveUpload(dest, file); err != nil {
		slog.Error("save upload failed", "file", dest, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not store the file")
		return
	}

	// The owner relation records who uploaded it; viewer is what the
	// retrieval filter checks.
	err = h.Tuples.WriteTuples(r.Context(),
		authz.Tuple{User: "user:" + userID, Relation: "owner", Object: "resume:" + resumeID},
		authz.Tuple{User: "user:" + userID, Relation: "viewer", Object: "resume:" + resumeID},
	)
	if err != nil {
		slog.Error("tuple write failed", "resume", resumeID, "err", err)
		httpx.WriteError(w, http.StatusBadGateway, "could not register authorization tuples")
		return
	}

	doc, err := ingest.ReadFile(dest)
	if err != nil || doc == nil {
		slog.Error("extract upload failed", "file", dest, "err", err)
		httpx.WriteError(w, http.StatusUnprocessableEntity, "could not extract document text")
		return
	}
	if err := h.Store.Add(r.Context(), *doc); err != nil {
		slog.Error("index upload failed", "resume", resumeID, "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "could not index the document")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, uploadResponse{
		Message:  fmt.Sprintf("resume uploaded and linked to user %s", userID),
		ResumeID: resumeID,
	})
}

func saveUpload(dest string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
