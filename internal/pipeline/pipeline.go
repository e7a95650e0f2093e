// Package pipeline runs one chart image through detection, line assembly,
// classification and composition.
//
// A run is synchronous and owns everything it creates, so separate images
// can be processed on separate goroutines with one Pipeline.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/votecards/internal/classify"
	"github.com/ironsheep/votecards/internal/compose"
	"github.com/ironsheep/votecards/internal/config"
	"github.com/ironsheep/votecards/internal/detection"
	"github.com/ironsheep/votecards/internal/ocr"
	"github.com/ironsheep/votecards/internal/writer"
)

// ErrEmptyRecognition is a warning: OCR ran but produced no usable words.
// The cards are still rendered, with empty slots.
var ErrEmptyRecognition = errors.New("no text recognized above the confidence floor")

// ArtifactError reports an artifact that could not be produced or saved.
type ArtifactError struct {
	Artifact string
	Err      error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %s: %v", e.Artifact, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// Result holds every intermediate product of a run.
type Result struct {
	Width, Height  int
	Tokens         []detection.Token
	Layout         *detection.Layout
	Classification *classify.Result
	Plan           compose.RenderPlan
	Artifacts      map[string]*compose.Artifact

	// Warnings collects degraded-quality conditions: empty recognition,
	// layout tie-breaks and skipped regions.
	Warnings []error
}

// Pipeline wires the stages together.
type Pipeline struct {
	cfg        *config.Config
	detector   *detection.TextDetector
	assembler  *detection.LineAssembler
	classifier *classify.Classifier
	compositor *compose.Compositor
	log        logrus.FieldLogger
}

// New builds a pipeline around engine. A nil cfg uses config.Default().
func New(engine ocr.Engine, cfg *config.Config, log logrus.FieldLogger) (*Pipeline, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg == nil {
		d := config.Default()
		cfg = &d
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	classifier, err := classify.New(cfg.Zones, cfg.Patterns, log)
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	compositor, err := compose.New(cfg.Render, log)
	if err != nil {
		return nil, fmt.Errorf("compositor: %w", err)
	}

	return &Pipeline{
		cfg:        cfg,
		detector:   detection.NewTextDetector(engine, cfg.OCR, log),
		assembler:  detection.NewLineAssembler(cfg.Layout),
		classifier: classifier,
		compositor: compositor,
		log:        log,
	}, nil
}

// Analyze runs detection, assembly and classification.
// The only fatal error is detection.ErrOCRUnavailable.
func (p *Pipeline) Analyze(ctx context.Context, img image.Image) (*Result, error) {
	b := img.Bounds()
	res := &Result{Width: b.Dx(), Height: b.Dy()}

	tokens, err := p.detector.Detect(ctx, img)
	if err != nil {
		return nil, err
	}
	res.Tokens = tokens
	if len(tokens) == 0 {
		res.Warnings = append(res.Warnings, ErrEmptyRecognition)
		p.log.Warn("No text recognized; cards will be empty")
	}

	res.Layout = p.assembler.Assemble(tokens)

	// the classifier works in the image's own coordinates
	res.Classification = p.classifier.Classify(res.Layout.Paragraphs, b.Max.X, b.Max.Y)
	res.Warnings = append(res.Warnings, res.Classification.Warnings...)

	p.log.WithFields(logrus.Fields{
		"tokens":     len(tokens),
		"lines":      len(res.Layout.Lines),
		"paragraphs": len(res.Layout.Paragraphs),
		"regions":    len(res.Classification.Regions),
	}).Debug("Analysis complete")
	return res, nil
}

// Run analyzes img and renders the three cards. The returned error joins an
// *ArtifactError for every card that could not be rendered; the Result still
// carries the cards that were.
func (p *Pipeline) Run(ctx context.Context, img image.Image) (*Result, error) {
	res, err := p.Analyze(ctx, img)
	if err != nil {
		return nil, err
	}

	regions := res.Classification.Regions
	res.Plan = compose.BuildPlan(regions, p.cfg.Render)
	res.Artifacts = make(map[string]*compose.Artifact, len(res.Plan.Entries))

	var failed []error
	for _, e := range res.Plan.Entries {
		a, err := p.compositor.RenderEntry(regions, img, e)
		if err != nil {
			failed = append(failed, &ArtifactError{Artifact: e.Artifact, Err: err})
			p.log.WithField("artifact", e.Artifact).WithError(err).Error("Artifact not rendered")
			continue
		}
		res.Artifacts[e.Artifact] = a
		res.Warnings = append(res.Warnings, a.Skipped...)
	}
	return res, errors.Join(failed...)
}

// Save hands every rendered card to w and returns the destination paths by
// artifact name. Failed writes are joined as *ArtifactError values.
func (p *Pipeline) Save(res *Result, w writer.Writer) (map[string]string, error) {
	paths := make(map[string]string, len(res.Artifacts))
	var failed []error
	for _, name := range compose.ArtifactNames {
		a, ok := res.Artifacts[name]
		if !ok {
			continue
		}
		path, err := w.Write(name, a.Image)
		if err != nil {
			failed = append(failed, &ArtifactError{Artifact: name, Err: err})
			continue
		}
		paths[name] = path
		p.log.WithFields(logrus.Fields{"artifact": name, "path": path}).Info("Card written")
	}
	return paths, errors.Join(failed...)
}
