// Package pipeline chains the analysis stages end to end: download the
// accounts PDF, extract line items, compute ratios, synthesize the solvency
// document, validate and assemble the response envelope. A supplemental
// news search runs concurrently and feeds the synthesis when it finishes in
// time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"financial_insights/pkg/core/assemble"
	"financial_insights/pkg/core/calc"
	"financial_insights/pkg/core/extract"
	"financial_insights/pkg/core/fetch"
	"financial_insights/pkg/core/llm"
	"financial_insights/pkg/core/prompt"
	"financial_insights/pkg/core/ratio"
	"financial_insights/pkg/core/report"
	"financial_insights/pkg/core/store"
	"financial_insights/pkg/core/synthesis"
)

// Stage names, in pipeline order.
const (
	StageStart        = "START"
	StageDownloading  = "DOWNLOADING"
	StageExtracting   = "EXTRACTING"
	StageComputing    = "COMPUTING"
	StageSynthesizing = "SYNTHESIZING"
	StageValidating   = "VALIDATING"
	StageDone         = "DONE"
)

// DefaultSupplementalWait bounds how long synthesis waits for the concurrent
// news search before proceeding without it.
const DefaultSupplementalWait = 95 * time.Second

// StageError is an expected pipeline failure: the request was well-formed
// but the analysis could not be produced at the named stage.
type StageError struct {
	Stage   string
	Kind    string
	Message string
	Details interface{}
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed (%s): %s", e.Stage, e.Kind, e.Message)
}

// Stage dependencies, kept narrow so tests can inject canned behavior.
type (
	Downloader interface {
		Fetch(ctx context.Context, url string) ([]byte, int, error)
	}
	Extractor interface {
		Extract(ctx context.Context, pdf []byte, companyName string, annualRent float64) (*extract.Result, error)
	}
	RatioComputer interface {
		Compute(ctx context.Context, extractionJSON, companyName string, annualRent float64) (*ratio.Result, error)
	}
	Synthesizer interface {
		Synthesize(ctx context.Context, in synthesis.Input) (*synthesis.Result, error)
	}
	CompanyLookup interface {
		Lookup(ctx context.Context, name string) (*store.Company, error)
	}
	Archiver interface {
		Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	}
	EnvelopeSaver interface {
		Save(ctx context.Context, requestID, companyName, pdfURL string, envelope map[string]interface{}) error
	}
)

// Request is one analysis job.
type Request struct {
	RequestID   string
	PDFURL      string
	CompanyName string
	AnnualRent  float64
}

// Options tunes orchestration behavior.
type Options struct {
	EnableSearch     bool
	SupplementalWait time.Duration
	Tolerance        float64 // evolution cross-check tolerance, percentage points
}

// Orchestrator wires the stages. Search, Registry, Blobs and Insights are
// optional; nil disables the corresponding side concern.
type Orchestrator struct {
	Download   Downloader
	Extract    Extractor
	Compute    RatioComputer
	Synthesize Synthesizer
	Search     llm.SearchProvider
	Registry   CompanyLookup
	Blobs      Archiver
	Insights   EnvelopeSaver
	Prompts    *prompt.Registry
	Log        *zap.Logger
	Opts       Options
}

func NewOrchestrator(clients *llm.Clients, fetcher *fetch.Fetcher, opts Options) *Orchestrator {
	return &Orchestrator{
		Download:   fetcher,
		Extract:    extract.NewExtractor(clients.Document),
		Compute:    ratio.NewComputer(clients.Analysis),
		Synthesize: synthesis.NewSynthesizer(clients.Analysis),
		Search:     clients.Search,
		Prompts:    prompt.Get(),
		Log:        zap.NewNop(),
		Opts:       opts,
	}
}

type searchOutcome struct {
	text      string
	citations []llm.Citation
	err       error
}

// Run executes the full pipeline and returns the success envelope. Expected
// failures come back as *StageError; anything else is an internal fault.
func (o *Orchestrator) Run(ctx context.Context, req Request) (map[string]interface{}, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	log := o.Log.With(
		zap.String("request_id", req.RequestID),
		zap.String("company", req.CompanyName),
	)
	log.Info("pipeline started", zap.String("stage", StageStart))

	if o.Registry != nil {
		if _, err := o.Registry.Lookup(ctx, req.CompanyName); err != nil {
			if errors.Is(err, store.ErrCompanyNotFound) {
				return nil, &StageError{
					Stage:   StageStart,
					Kind:    "CompanyNotFound",
					Message: fmt.Sprintf("company %q is not registered", req.CompanyName),
				}
			}
			// The registry is advisory; an unreachable database must not
			// block the analysis.
			log.Warn("registry lookup failed, continuing", zap.Error(err))
		}
	}

	// The supplemental search runs concurrently with the primary stages and
	// owns a cancelable context so a failed pipeline never leaves it behind.
	searchCtx, cancelSearch := context.WithCancel(ctx)
	defer cancelSearch()
	searchCh := o.startSearch(searchCtx, req.CompanyName)

	// DOWNLOADING
	pdf, attempts, err := o.Download.Fetch(ctx, req.PDFURL)
	if err != nil {
		return nil, downloadError(err, attempts)
	}
	log.Info("document downloaded", zap.String("stage", StageDownloading),
		zap.Int("bytes", len(pdf)), zap.Int("attempts", attempts))

	// EXTRACTING
	extraction, err := o.Extract.Extract(ctx, pdf, req.CompanyName, req.AnnualRent)
	if err != nil {
		return nil, extractionError(err)
	}
	log.Info("line items extracted", zap.String("stage", StageExtracting),
		zap.Int("items", len(extraction.Items)))

	// COMPUTING. A ratio failure degrades rather than aborts: synthesis can
	// still work from the raw extraction.
	var warnings []string
	ratiosJSON := extraction.Raw
	ratioFailed := false
	ratios, err := o.Compute.Compute(ctx, extraction.Raw, req.CompanyName, req.AnnualRent)
	if err != nil {
		ratioFailed = true
		warnings = append(warnings, "ratio computation unavailable, analysis based on raw extraction")
		log.Warn("ratio computation failed, falling back to extraction",
			zap.String("stage", StageComputing), zap.Error(err))
	} else {
		ratiosJSON = ratios.Raw
		check := calc.CrossCheckEvolution(extraction, ratios.Set.Ratios.Evolution, o.Opts.Tolerance)
		warnings = append(warnings, check.Warnings...)
		log.Info("ratios computed", zap.String("stage", StageComputing),
			zap.Int("cross_checked", check.Checked), zap.Int("divergences", len(check.Warnings)))
	}

	// Bounded wait for the supplemental search.
	supplemental, citations := o.awaitSearch(ctx, searchCh, log)

	// SYNTHESIZING
	synth, err := o.Synthesize.Synthesize(ctx, synthesis.Input{
		CompanyName:  req.CompanyName,
		AnnualRent:   req.AnnualRent,
		RatiosJSON:   ratiosJSON,
		Supplemental: supplemental,
	})
	if err != nil {
		if ratioFailed {
			return nil, &StageError{
				Stage:   StageSynthesizing,
				Kind:    "SynthesisFailed",
				Message: "both ratio computation and synthesis failed",
				Details: err.Error(),
			}
		}
		// Degrade to the bare ratio document so the caller still gets the
		// computed figures.
		log.Warn("synthesis failed, returning ratio document",
			zap.String("stage", StageSynthesizing), zap.Error(err))
		doc, ferr := assemble.FromRaw(ratiosJSON)
		if ferr != nil {
			return nil, &StageError{
				Stage:   StageSynthesizing,
				Kind:    "SynthesisFailed",
				Message: "synthesis failed and ratio document was unusable",
				Details: ferr.Error(),
			}
		}
		warnings = append(warnings, "narrative synthesis unavailable, ratios only")
		return o.finish(ctx, req, doc, citations, warnings, log), nil
	}
	log.Info("synthesis complete", zap.String("stage", StageSynthesizing))

	// VALIDATING happened inside the synthesis parse; assemble the envelope.
	return o.finish(ctx, req, synth.Doc, citations, warnings, log), nil
}

func (o *Orchestrator) finish(ctx context.Context, req Request, doc map[string]interface{}, citations []llm.Citation, warnings []string, log *zap.Logger) map[string]interface{} {
	if len(warnings) > 0 {
		doc["warnings"] = warnings
	}
	sources := assemble.CanonicalSources(req.PDFURL, citations)
	envelope := assemble.Success(doc, sources)
	o.archive(ctx, req, envelope, doc, sources, log)
	if o.Insights != nil {
		// Audit persistence never breaks a successful analysis.
		if err := o.Insights.Save(ctx, req.RequestID, req.CompanyName, req.PDFURL, envelope); err != nil {
			log.Warn("audit save failed", zap.Error(err))
		}
	}
	log.Info("pipeline finished", zap.String("stage", StageDone))
	return envelope
}

// archive stores the response JSON and an HTML report. Failures are logged
// and swallowed: archiving never breaks a successful analysis.
func (o *Orchestrator) archive(ctx context.Context, req Request, envelope, doc map[string]interface{}, sources []assemble.SourceDescriptor, log *zap.Logger) {
	if o.Blobs == nil {
		return
	}
	artifacts := map[string]interface{}{}

	if body, err := assemble.Marshal(envelope); err == nil {
		key := store.ArtifactKey(req.CompanyName, req.RequestID, "json")
		if url, err := o.Blobs.Upload(ctx, key, body, "application/json"); err == nil {
			artifacts["json"] = url
		} else {
			log.Warn("response archive failed", zap.Error(err))
		}
	}

	md := report.BuildMarkdown(doc, sources)
	if html, err := report.RenderHTML(md); err == nil {
		key := store.ArtifactKey(req.CompanyName, req.RequestID, "html")
		if url, err := o.Blobs.Upload(ctx, key, html, "text/html"); err == nil {
			artifacts["report"] = url
		} else {
			log.Warn("report archive failed", zap.Error(err))
		}
	}

	if len(artifacts) > 0 {
		doc["artifacts"] = artifacts
	}
}

// startSearch launches the supplemental news search. Returns nil when search
// is disabled; awaitSearch treats a nil channel as "no supplement".
func (o *Orchestrator) startSearch(ctx context.Context, companyName string) <-chan searchOutcome {
	if !o.Opts.EnableSearch || o.Search == nil {
		return nil
	}
	ch := make(chan searchOutcome, 1)
	go func() {
		user, _, err := o.Prompts.Render(prompt.SearchNewsHighlights, map[string]interface{}{
			"CompanyName": companyName,
		})
		if err != nil {
			ch <- searchOutcome{err: err}
			return
		}
		text, citations, err := o.Search.SearchGrounded(ctx, user)
		ch <- searchOutcome{text: text, citations: citations, err: err}
	}()
	return ch
}

func (o *Orchestrator) awaitSearch(ctx context.Context, ch <-chan searchOutcome, log *zap.Logger) (string, []llm.Citation) {
	if ch == nil {
		return "", nil
	}
	wait := o.Opts.SupplementalWait
	if wait <= 0 {
		wait = DefaultSupplementalWait
	}
	select {
	case out := <-ch:
		if out.err != nil {
			log.Warn("supplemental search failed", zap.Error(out.err))
			return "", nil
		}
		if out.text == "" || out.text == "AUCUNE INFORMATION" {
			return "", nil
		}
		return out.text, out.citations
	case <-time.After(wait):
		log.Warn("supplemental search timed out", zap.Duration("waited", wait))
		return "", nil
	case <-ctx.Done():
		return "", nil
	}
}

func downloadError(err error, attempts int) *StageError {
	se := &StageError{Stage: StageDownloading, Message: err.Error()}
	var failed *fetch.DownloadFailedError
	var timeout *fetch.DownloadTimeoutError
	var network *fetch.NetworkError
	switch {
	case errors.As(err, &failed):
		se.Kind = "DownloadFailed"
		se.Details = map[string]interface{}{"status": failed.Status, "attempts": attempts}
	case errors.As(err, &timeout):
		se.Kind = "DownloadTimeout"
		se.Details = map[string]interface{}{"attempts": timeout.Attempts}
	case errors.As(err, &network):
		se.Kind = "NetworkError"
	default:
		se.Kind = "DownloadFailed"
	}
	return se
}

func extractionError(err error) *StageError {
	se := &StageError{Stage: StageExtracting, Message: err.Error()}
	var empty *extract.EmptyResponseError
	var malformed *extract.MalformedJSONError
	switch {
	case errors.As(err, &empty):
		se.Kind = "EmptyResponse"
	case errors.As(err, &malformed):
		se.Kind = "MalformedJSON"
		se.Details = malformed.Snippet
	default:
		se.Kind = "ExtractionFailed"
	}
	return se
}
