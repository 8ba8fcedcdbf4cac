package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tendant/receipt-ingestion/internal/gates"
	"github.com/tendant/receipt-ingestion/internal/ingest"
	"github.com/tendant/receipt-ingestion/internal/metrics"
	"github.com/tendant/receipt-ingestion/internal/storage"
	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// Runner is the part of the ingestion pipeline the handler drives
type Runner interface {
	Run(ctx context.Context, sub ingest.Submission) (*ingest.Result, error)
	MaxFileSizeMB() int
}

// IngressHandler accepts direct uploads and storage push notifications on POST /
type IngressHandler struct {
	runner  Runner
	source  storage.ReaderWithMetadata
	metrics metrics.Metrics
	log     zerolog.Logger
}

// NewIngressHandler creates a new ingress handler.
// source is where relay notifications point; it may be the same store the
// pipeline writes to. m counts submissions rejected before the pipeline runs;
// the pipeline records its own outcomes.
func NewIngressHandler(runner Runner, source storage.ReaderWithMetadata, m metrics.Metrics, log zerolog.Logger) *IngressHandler {
	if m == nil {
		m = metrics.Noop{}
	}
	return &IngressHandler{runner: runner, source: source, metrics: m, log: log}
}

// HandleSubmit handles POST /
func (h *IngressHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sub, err := h.resolve(w, r)
	if err != nil {
		e := ingest.AsError(err)
		h.metrics.ObserveSubmission(string(e.Code), time.Since(start).Seconds())
		writeError(w, e)
		return
	}

	res, err := h.runner.Run(r.Context(), sub)
	if err != nil {
		writeError(w, ingest.AsError(err))
		return
	}

	writeJSON(w, http.StatusOK, pipeline.SubmitResponse{
		Message:    pipeline.AcceptedMessage,
		DeliveryID: res.DeliveryID,
		FilePath:   res.FilePath,
	})
}

// resolve reduces either request shape to one Submission
func (h *IngressHandler) resolve(w http.ResponseWriter, r *http.Request) (ingest.Submission, error) {
	limit := h.maxBodyBytes()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ingest.Submission{}, ingest.NewError(pipeline.CodeFileTooLarge, "Request body exceeds size limit.")
		}
		return ingest.Submission{}, ingest.Wrap(pipeline.CodeInvalidInput, "Could not read request body.", err)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil || probe == nil {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeInvalidInput, "Invalid or missing JSON body.")
	}

	if _, ok := probe["message"]; ok {
		return h.resolveRelay(r.Context(), body)
	}
	return resolveDirect(body)
}

func resolveDirect(body []byte) (ingest.Submission, error) {
	var req pipeline.SubmitRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeInvalidInput, "Invalid request body.")
	}
	if req.UserID == "" || req.FileDataBase64 == "" {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeInvalidInput, "Missing user_id or file_data_base64.")
	}
	data, err := base64.StdEncoding.DecodeString(req.FileDataBase64)
	if err != nil {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeInvalidInput, "file_data_base64 is not valid base64.")
	}
	return ingest.Submission{OwnerID: req.UserID, Payload: data}, nil
}

func (h *IngressHandler) resolveRelay(ctx context.Context, body []byte) (ingest.Submission, error) {
	var env pipeline.PushEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Message == nil {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeInvalidInput, "Missing 'message'.")
	}
	if env.Message.Data == "" {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeInvalidInput, "Missing 'data'.")
	}
	raw, err := base64.StdEncoding.DecodeString(env.Message.Data)
	if err != nil {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeInvalidInput, "message.data is not valid base64.")
	}
	var n pipeline.ObjectNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeInvalidInput, "message.data is not valid JSON.")
	}
	if n.Bucket == "" || n.Name == "" {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeInvalidInput, "Notification is missing bucket or name.")
	}

	log := h.log.With().Str("bucket", n.Bucket).Str("object", n.Name).Str("message_id", env.Message.MessageID).Logger()
	log.Info().Msg("received object notification")

	ok, err := h.source.Exists(ctx, n.Bucket, n.Name)
	if err != nil {
		return ingest.Submission{}, ingest.Wrap(pipeline.CodeInternal, "Could not read referenced object.", err)
	}
	if !ok {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeObjectNotFound, "Referenced object not found.")
	}

	md, err := h.source.GetMetadata(ctx, n.Bucket, n.Name)
	if err != nil {
		return ingest.Submission{}, storageReadError(err)
	}

	// Reject before downloading when the reported size is already over
	limitMB := h.runner.MaxFileSizeMB()
	if d := gates.CheckSize(md.Size, limitMB); !d.Passed {
		return ingest.Submission{}, ingest.NewError(d.Code, d.Reason)
	}

	rc, err := h.source.GetReader(ctx, n.Bucket, n.Name)
	if err != nil {
		return ingest.Submission{}, storageReadError(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, int64(limitMB)*1024*1024+1))
	if err != nil {
		return ingest.Submission{}, ingest.Wrap(pipeline.CodeInternal, "Could not read referenced object.", err)
	}

	owner := strings.TrimSpace(md.Custom["user_id"])
	if owner == "" {
		owner = OwnerFromObjectName(n.Name)
	}
	if owner == "" {
		return ingest.Submission{}, ingest.NewError(pipeline.CodeInvalidInput, "Could not determine user ID for object.")
	}
	log.Debug().Str("owner_id", owner).Int("bytes", len(data)).Msg("downloaded object")

	return ingest.Submission{OwnerID: owner, Payload: data}, nil
}

// OwnerFromObjectName derives the owner from an object named
// "{owner}-{anything}", ignoring any directory prefix. Without a '-' the
// base name minus its extension is used.
func OwnerFromObjectName(name string) string {
	base := name
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "-"); i >= 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

func storageReadError(err error) *ingest.Error {
	if errors.Is(err, storage.ErrNotFound) {
		return ingest.NewError(pipeline.CodeObjectNotFound, "Referenced object not found.")
	}
	return ingest.Wrap(pipeline.CodeInternal, "Could not read referenced object.", err)
}

// maxBodyBytes allows the base64 expansion of a maximum size payload plus envelope
func (h *IngressHandler) maxBodyBytes() int64 {
	raw := int64(h.runner.MaxFileSizeMB()) * 1024 * 1024
	return raw*4/3 + 64*1024
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, e *ingest.Error) {
	writeJSON(w, e.HTTPStatus(), pipeline.ErrorResponse{Error: e.Message, Code: e.Code})
}
