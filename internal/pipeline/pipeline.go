package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/crawlsearch/internal/crawler"
	"github.com/nao1215/crawlsearch/internal/model"
)

// Task is the state of one URL moving through the pipeline.
// Each step reads what earlier steps filled in and adds its own part.
type Task struct {
	// Job is the crawl the URL belongs to.
	Job *model.CrawlJob

	// URL is the canonical URL being processed.
	URL string

	// Response is set by FetchStep.
	Response *crawler.Response

	// Page is set by ScrapeStep.
	Page *model.Page

	// Links holds the canonical in-scope links, set by ExpandStep.
	Links []string
}

// Step is one stage of processing a URL.
type Step interface {
	// Do executes the step. An error aborts the remaining steps for this URL.
	Do(ctx context.Context, task *Task) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline runs its steps in order for each URL handed to it by a Spider.
// It holds no per-URL state and is safe for concurrent use once built.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

var _ crawler.Processor = (*Pipeline)(nil)

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all steps for task and stops at the first error.
// Cancellation is checked before each step.
func (p *Pipeline) Execute(ctx context.Context, task *Task) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := step.Do(ctx, task); err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"url", task.URL,
				"error", err,
			)
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}

// Process implements crawler.Processor.
func (p *Pipeline) Process(ctx context.Context, job *model.CrawlJob, url string) ([]string, error) {
	task := &Task{Job: job, URL: url}
	if err := p.Execute(ctx, task); err != nil {
		return nil, err
	}
	return task.Links, nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
