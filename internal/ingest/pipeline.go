package ingest

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tendant/receipt-ingestion/internal/gates"
	"github.com/tendant/receipt-ingestion/internal/identity"
	"github.com/tendant/receipt-ingestion/internal/metrics"
	"github.com/tendant/receipt-ingestion/internal/queue"
	"github.com/tendant/receipt-ingestion/internal/storage"
	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// Config holds the pipeline settings read at startup
type Config struct {
	DestinationBucket   string
	MaxFileSizeMB       int
	AllowedContentTypes []string
}

// Deps are the collaborators injected at construction.
// Moderator and OCR may be nil, in which case those gates are skipped.
type Deps struct {
	Directory identity.Directory
	Moderator gates.Moderator
	OCR       gates.TextDetector
	Store     storage.Writer
	Announcer queue.Announcer
	Metrics   metrics.Metrics
	Logger    zerolog.Logger
}

// Pipeline validates a submission, relocates it and announces it
type Pipeline struct {
	cfg       Config
	identity  *gates.IdentityGate
	allow     gates.AllowList
	safety    *gates.SafetyGate
	quality   *gates.QualityGate
	store     storage.Writer
	announcer queue.Announcer
	metrics   metrics.Metrics
	log       zerolog.Logger
	newToken  func() string
}

// New creates a pipeline
func New(cfg Config, deps Deps) *Pipeline {
	m := deps.Metrics
	if m == nil {
		m = metrics.Noop{}
	}
	return &Pipeline{
		cfg:       cfg,
		identity:  gates.NewIdentityGate(deps.Directory),
		allow:     gates.NewAllowList(cfg.AllowedContentTypes),
		safety:    gates.NewSafetyGate(deps.Moderator),
		quality:   gates.NewQualityGate(deps.OCR),
		store:     deps.Store,
		announcer: deps.Announcer,
		metrics:   m,
		log:       deps.Logger,
		newToken:  uuid.NewString,
	}
}

// MaxFileSizeMB is the configured size ceiling
func (p *Pipeline) MaxFileSizeMB() int {
	return p.cfg.MaxFileSizeMB
}

// Run executes the gates in order and, if all pass, writes then publishes.
// On rejection or failure the returned error is an *Error and Result shows
// the last state reached.
func (p *Pipeline) Run(ctx context.Context, sub Submission) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString()}
	res.advance(StateReceived)
	log := p.log.With().Str("run_id", res.RunID).Str("owner_id", sub.OwnerID).Logger()

	err := p.run(ctx, log, sub, res)

	code := "OK"
	if err != nil {
		e := AsError(err)
		code = string(e.Code)
		// collaborator faults end in FAILED, gate verdicts in REJECTED
		if e.Err != nil || e.Code.HTTPStatus() >= 500 {
			res.advance(StateFailed)
			log.Error().Err(e.Err).Str("code", code).Msg(e.Message)
		} else {
			res.advance(StateRejected)
			log.Warn().Str("code", code).Msg(e.Message)
		}
		err = e
	}
	p.metrics.ObserveSubmission(code, time.Since(start).Seconds())
	return res, err
}

func (p *Pipeline) run(ctx context.Context, log zerolog.Logger, sub Submission, res *Result) error {
	if sub.OwnerID == "" {
		return NewError(pipeline.CodeInvalidInput, "Missing user_id.")
	}
	if len(sub.Payload) == 0 {
		return NewError(pipeline.CodeInvalidInput, "Missing file data.")
	}

	// Step 1: size
	if err := p.gate(res, gates.NameSize, gates.CheckSize(int64(len(sub.Payload)), p.cfg.MaxFileSizeMB)); err != nil {
		return err
	}
	res.advance(StateSizeChecked)

	// Step 2: owner
	if err := p.gate(res, gates.NameIdentity, p.identity.Check(ctx, sub.OwnerID)); err != nil {
		return err
	}
	res.advance(StateOwnerVerified)

	// Step 3: classify + allow-list
	mt := gates.Classify(sub.Payload)
	res.MediaType = mt
	res.advance(StateTypeClassified)
	log.Debug().Str("media_type", string(mt)).Msg("classified payload")

	if err := p.gate(res, gates.NameType, p.allow.Check(mt)); err != nil {
		return err
	}
	res.advance(StateTypeAllowed)

	// Step 4: moderation and OCR, images only
	if mt.IsImage() {
		d := p.safety.Check(ctx, sub.Payload)
		p.logAbsorbed(log, gates.NameSafety, d)
		if err := p.gate(res, gates.NameSafety, d); err != nil {
			return err
		}
		res.advance(StateSafetyChecked)

		d = p.quality.Check(ctx, sub.Payload)
		p.logAbsorbed(log, gates.NameQuality, d)
		if err := p.gate(res, gates.NameQuality, d); err != nil {
			return err
		}
		res.advance(StateQualityChecked)
	}

	// Step 5: relocate
	key := fmt.Sprintf("%s%s-%s.%s", pipeline.ProcessingPrefix, sub.OwnerID, p.newToken(), mt.Ext())
	meta := storage.Metadata{
		ContentType: mt.MIME(),
		Custom:      map[string]string{"user_id": sub.OwnerID},
	}
	if err := p.store.Put(ctx, p.cfg.DestinationBucket, key, bytes.NewReader(sub.Payload), meta); err != nil {
		return Wrap(pipeline.CodeStorageWriteFailed, "Failed to store receipt.", err)
	}
	res.StorageKey = key
	res.FilePath = p.store.URI(p.cfg.DestinationBucket, key)
	res.advance(StateRelocated)
	log.Info().Str("file_path", res.FilePath).Msg("receipt relocated")

	// Step 6: announce
	receipt, err := p.announcer.Announce(ctx, pipeline.ExtractionAnnouncement{
		FilePath: res.FilePath,
		UserID:   sub.OwnerID,
	})
	if err != nil {
		// The relocated object is left in place; no compensating delete.
		return Wrap(pipeline.CodePublishFailed, "Failed to queue receipt for extraction.", err)
	}
	res.DeliveryID = receipt.DeliveryID
	res.advance(StateAnnounced)
	log.Info().Str("delivery_id", receipt.DeliveryID).Msg("receipt announced")
	return nil
}

// gate records a decision and converts a failing one into an *Error
func (p *Pipeline) gate(res *Result, name string, d gates.Decision) error {
	res.Gates = append(res.Gates, name)
	p.metrics.IncGateResult(name, d.Label())
	if d.Passed {
		return nil
	}
	return &Error{Code: d.Code, Message: d.Reason, Err: d.Err}
}

func (p *Pipeline) logAbsorbed(log zerolog.Logger, name string, d gates.Decision) {
	if d.Passed && d.Err != nil {
		log.Warn().Err(d.Err).Str("gate", name).Msg("collaborator unavailable, passing submission")
	}
}
