package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/tendant/simple-case/pkg/simplecase"
	"github.com/tendant/simple-case/pkg/simplecase/report"
)

// CaseHandler serves read access to a case over HTTP
type CaseHandler struct {
	store  *simplecase.Case
	logger *slog.Logger

	// cacheMaxAge is the Cache-Control max-age of immutable object
	// responses; zero disables caching headers
	cacheMaxAge int
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(store *simplecase.Case, logger *slog.Logger) *CaseHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CaseHandler{
		store:  store,
		logger: logger,
	}
}

// Routes returns the routes for objects
func (h *CaseHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListRoots)
	r.Post("/", h.CreateObject)
	r.Get("/{id}/children", h.ListChildren)
	r.Get("/{id}/children/ids", h.ListChildIDs)

	// Object rows and stored bytes never change once written
	r.Group(func(r chi.Router) {
		if h.cacheMaxAge > 0 {
			r.Use(CacheMiddleware(h.cacheMaxAge))
		}
		r.Get("/{id}", h.GetObject)
		r.Get("/{id}/parent", h.GetParent)
		r.Get("/{id}/path", h.GetPath)
		r.Get("/{id}/content", h.DownloadContent)
	})

	// Routes for artifacts
	r.Get("/{id}/artifacts", h.ListArtifacts)
	r.Post("/{id}/artifacts", h.CreateArtifact)

	return r
}

// ChildIDsResponse is the response body for a child ID listing
type ChildIDsResponse struct {
	ID       simplecase.ObjectID   `json:"id"`
	Children []simplecase.ObjectID `json:"children"`
}

// PathResponse is the response body for a unique path lookup
type PathResponse struct {
	ID   simplecase.ObjectID `json:"id"`
	Path string              `json:"path"`
}

// CreateArtifactRequest is the request body for attaching an artifact
type CreateArtifactRequest struct {
	Type       string                         `json:"type"`
	Attributes []simplecase.ArtifactAttribute `json:"attributes"`
}

// ListRoots lists the objects without a parent
func (h *CaseHandler) ListRoots(w http.ResponseWriter, r *http.Request) {
	roots, err := h.store.RootObjects(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, report.NewRecords(roots))
}

// GetObject returns one object
func (h *CaseHandler) GetObject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	content, err := h.store.GetContentByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, report.NewRecord(content))
}

// ListChildren lists the children of an object the way the object itself
// resolves them: files list derived content only.
func (h *CaseHandler) ListChildren(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	content, err := h.store.GetContentByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	children, err := content.Children(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, report.NewRecords(children))
}

// ListChildIDs lists the IDs of the children of an object
func (h *CaseHandler) ListChildIDs(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	content, err := h.store.GetContentByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	ids, err := content.ChildrenIDs(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, ChildIDsResponse{ID: id, Children: ids})
}

// GetParent returns the parent of an object, or 204 for a root
func (h *CaseHandler) GetParent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	parent, err := h.store.ResolveParent(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if parent == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	render.JSON(w, r, report.NewRecord(parent))
}

// GetPath returns the unique path of an object
func (h *CaseHandler) GetPath(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	path, err := h.store.UniquePath(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, PathResponse{ID: id, Path: path})
}

// DownloadContent redirects to the blob store when it offers a download
// URL and otherwise streams the bytes of a derived file
func (h *CaseHandler) DownloadContent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	content, err := h.store.GetContentByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	df, ok := content.(*simplecase.DerivedFile)
	if !ok {
		h.writeJSONError(w, r, http.StatusConflict, "no_content", "object has no stored bytes")
		return
	}

	u, err := df.DownloadURL(r.Context())
	if err == nil {
		http.Redirect(w, r, u, http.StatusTemporaryRedirect)
		return
	}
	if !errors.Is(err, simplecase.ErrNoDownloadURL) {
		h.writeError(w, r, err)
		return
	}

	meta, err := df.Stat(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rc, err := df.Open(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(df.Name()))
	w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("content download interrupted", "obj_id", id, "err", err)
	}
}

// CreateObject adds an object row to the case
func (h *CaseHandler) CreateObject(w http.ResponseWriter, r *http.Request) {
	var rec simplecase.ObjectRecord
	if err := render.DecodeJSON(r.Body, &rec); err != nil {
		h.writeJSONError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	content, err := h.store.AddObject(r.Context(), &rec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.logger.Info("object created", "obj_id", content.ID(), "kind", report.Kind(content))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, report.NewRecord(content))
}

// ListArtifacts lists the artifacts attached to an object
func (h *CaseHandler) ListArtifacts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	artifacts, err := h.store.Artifacts(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.JSON(w, r, report.NewArtifactRecords(artifacts))
}

// CreateArtifact attaches an artifact to an object
func (h *CaseHandler) CreateArtifact(w http.ResponseWriter, r *http.Request) {
	id, ok := h.objectID(w, r)
	if !ok {
		return
	}
	var req CreateArtifactRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.writeJSONError(w, r, http.StatusBadRequest, "invalid_body", err.Error())
		return
	}
	artifact, err := h.store.AddArtifact(r.Context(), &simplecase.ArtifactRecord{
		ObjectID:     id,
		ArtifactType: req.Type,
		Attributes:   req.Attributes,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, report.NewArtifactRecords([]*simplecase.Artifact{artifact})[0])
}

func (h *CaseHandler) objectID(w http.ResponseWriter, r *http.Request) (simplecase.ObjectID, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeJSONError(w, r, http.StatusBadRequest, "invalid_id", "Invalid object ID")
		return 0, false
	}
	return simplecase.ObjectID(id), true
}

// statusFor maps a case error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	var access *simplecase.CoreAccessError
	var construction *simplecase.ConstructionError
	switch {
	case errors.Is(err, simplecase.ErrCaseClosed):
		return http.StatusServiceUnavailable, "case_closed"
	case simplecase.IsNotFound(err), errors.Is(err, simplecase.ErrBlobNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, simplecase.ErrNoBlobStore):
		return http.StatusNotImplemented, "no_blob_store"
	case errors.As(err, &access) && errors.As(err, &construction):
		return http.StatusInternalServerError, "malformed_object"
	case errors.As(err, &access):
		return http.StatusServiceUnavailable, "store_unavailable"
	case errors.As(err, &construction):
		return http.StatusBadRequest, "invalid_object"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (h *CaseHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "code", code, "err", err)
	}
	h.writeJSONError(w, r, status, code, err.Error())
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (h *CaseHandler) writeJSONError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	requestID, _ := r.Context().Value(RequestIDKey).(string)
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: ErrorBody{Code: code, Message: message, RequestID: requestID}})
}
