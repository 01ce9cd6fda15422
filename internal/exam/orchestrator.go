package exam

import (
	"context"
	"fmt"
	"log"
	"time"

	"examgen/internal/models"
)

// ExamType constrains the question format of a generation run.
type ExamType string

const (
	ExamTypeAuto           ExamType = "auto"
	ExamTypeMultipleChoice ExamType = "multiple_choice"
	ExamTypeTrueFalse      ExamType = "true_false"
	ExamTypeSubjective     ExamType = "subjective"
)

// ValidExamType reports whether s names a supported exam type.
func ValidExamType(s string) bool {
	switch ExamType(s) {
	case ExamTypeAuto, ExamTypeMultipleChoice, ExamTypeTrueFalse, ExamTypeSubjective:
		return true
	}
	return false
}

// GenerationRequest carries the user-supplied parameters of one top-level
// generation run. Immutable once built.
type GenerationRequest struct {
	Instruction   string
	QuestionCount int
	Language      string
	ExamType      ExamType
}

// SourceRef identifies uploaded material the generation collaborator can
// reuse across calls within one request. Lifetime is managed by the calling
// layer, not here.
type SourceRef struct {
	URI      string
	MIMEType string
	// Name is the collaborator-side identifier used to release the upload.
	Name string
}

// BatchRequest is one bounded-size sub-request to the generation
// collaborator. Never mutated after creation; the orchestrator builds a
// fresh one per batch with the avoid-set accumulated so far.
type BatchRequest struct {
	// Position is human-readable batch context for the prompt, e.g.
	// "Batch 2/3 (size 10)".
	Position string
	Size     int
	// AvoidTopics holds normalized question fingerprints from prior batches,
	// sorted.
	AvoidTopics []string
	Brief       string
	Source      SourceRef
	Request     GenerationRequest
}

// BatchGenerator is the external structured-generation collaborator. A call
// must return either a parsed worksheet, ErrEmptyGenerationResult (wrapped)
// when the response carried no parseable structure, or the transport error
// unmodified.
type BatchGenerator interface {
	GenerateBatch(ctx context.Context, batch BatchRequest) (*models.Worksheet, error)
}

// Options configures an Orchestrator.
type Options struct {
	// MaxBatch caps the question count of a single generation call.
	// Defaults to DefaultMaxBatch.
	MaxBatch int
	// BatchTimeout bounds each outbound call. Zero means no per-call bound
	// beyond the caller's context.
	BatchTimeout time.Duration
	// SkipFailedBatches tolerates individual batch failures, aggregating
	// whatever the surviving batches produced. When false, the first batch
	// error aborts the whole run.
	SkipFailedBatches bool
}

// Orchestrator drives the full multi-batch generation for one request:
// plan, call the collaborator once per batch with the running avoid-set,
// validate and dedupe each batch's items, and aggregate into one worksheet.
//
// Batches run strictly sequentially because each batch's avoid-topic
// instruction depends on everything generated before it.
type Orchestrator struct {
	gen  BatchGenerator
	opts Options
}

func NewOrchestrator(gen BatchGenerator, opts Options) *Orchestrator {
	if opts.MaxBatch <= 0 {
		opts.MaxBatch = DefaultMaxBatch
	}
	return &Orchestrator{gen: gen, opts: opts}
}

// Generate produces the aggregate worksheet for req against the uploaded
// material in source, guided by the analysis brief. Metadata comes from the
// first successful batch only; items appear in batch order, and within a
// batch in generation order. Callers detect under-delivery by comparing
// len(Items) to req.QuestionCount.
func (o *Orchestrator) Generate(ctx context.Context, req GenerationRequest, source SourceRef, brief string) (*models.Worksheet, error) {
	sizes, err := PlanBatches(req.QuestionCount, o.opts.MaxBatch)
	if err != nil {
		return nil, err
	}

	var (
		meta  *models.Worksheet
		items []models.ExamItem
		seen  = TopicSet{}
	)

	for i, size := range sizes {
		// Batches not yet started must not be issued once the caller is gone.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := BatchRequest{
			Position:    fmt.Sprintf("Batch %d/%d (size %d)", i+1, len(sizes), size),
			Size:        size,
			AvoidTopics: seen.Sorted(),
			Brief:       brief,
			Source:      source,
			Request:     req,
		}

		ws, err := o.generateOne(ctx, batch)
		if err != nil {
			if o.opts.SkipFailedBatches {
				log.Printf("WARN: %s failed, continuing: %v", batch.Position, err)
				continue
			}
			return nil, fmt.Errorf("%s: %w", batch.Position, err)
		}

		// The first successful batch is authoritative for metadata; later
		// batches may diverge and contribute items only.
		if meta == nil {
			meta = &models.Worksheet{
				Title:       ws.Title,
				Subject:     ws.Subject,
				TargetLevel: ws.TargetLevel,
			}
		}

		accepted, updated := Dedupe(seen, dropInvalid(ws.Items, batch.Position))
		seen = updated
		items = append(items, accepted...)
		log.Printf("INFO: %s accepted %d of %d items (%d aggregated)", batch.Position, len(accepted), len(ws.Items), len(items))
	}

	if meta == nil {
		return nil, fmt.Errorf("all %d planned batches failed: %w", len(sizes), ErrNoBatchesSucceeded)
	}

	meta.Items = items
	return meta, nil
}

func (o *Orchestrator) generateOne(ctx context.Context, batch BatchRequest) (*models.Worksheet, error) {
	if o.opts.BatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.BatchTimeout)
		defer cancel()
	}

	ws, err := o.gen.GenerateBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	if ws == nil || len(ws.Items) == 0 {
		return nil, ErrEmptyGenerationResult
	}
	return ws, nil
}

// dropInvalid filters out items violating the per-type shape invariants so
// they never reach the aggregate. Validation happens here, at the boundary,
// right after the collaborator's response is decoded.
func dropInvalid(items []models.ExamItem, position string) []models.ExamItem {
	kept := make([]models.ExamItem, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			log.Printf("WARN: %s dropped malformed item %q: %v", position, truncate(item.Question, 60), err)
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
