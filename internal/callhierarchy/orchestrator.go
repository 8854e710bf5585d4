package callhierarchy

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cerrors "callroot/internal/errors"
	"callroot/internal/slogutil"
)

const (
	// ProgressDescription is shown by the host while the pipeline runs
	ProgressDescription = "Computing Call Hierarchy Information"
	// NotOnMemberMessage is sent when the caret is not on a symbol
	NotOnMemberMessage = "Cursor must be on a member name"

	tracerName = "callroot/callhierarchy"
)

// State is a pipeline state
type State int

const (
	StateIdle State = iota
	StateLocating
	StateNormalizing
	StateBuilding
	StatePresenting
	StateNotifying
	StateAborted
)

var stateNames = [...]string{
	StateIdle:        "idle",
	StateLocating:    "locating",
	StateNormalizing: "normalizing",
	StateBuilding:    "building",
	StatePresenting:  "presenting",
	StateNotifying:   "notifying",
	StateAborted:     "aborted",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Reason explains an Aborted outcome
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonUnresolvable       Reason = "unresolvable"
	ReasonConstructionFailed Reason = "construction_failed"
	ReasonCancelled          Reason = "cancelled"
	ReasonInternalError      Reason = "internal_error"
	ReasonNoPresenter        Reason = "no_presenter"
	ReasonNoDocument         Reason = "no_document"
)

// Request is one call hierarchy invocation
type Request struct {
	Document DocumentRef
	Offset   int
	// Progress is optional
	Progress Progress
}

// Outcome is the terminal state of one invocation. State is StatePresenting,
// StateNotifying or StateAborted.
type Outcome struct {
	Invocation string
	State      State
	Reason     Reason
	// Symbol and Project are the canonical identity, set once normalization succeeds
	Symbol     SymbolID
	Project    ProjectID
	Redirected bool
}

// Config wires an Orchestrator. Provider, Mapper, Factory and Notifier are required.
type Config struct {
	Provider  SemanticProvider
	Mapper    SymbolMappingService
	Factory   ItemFactory
	Presenter PresenterConfig
	Notifier  Notifier
	Logger    *slog.Logger
	Metrics   Recorder
	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider
}

// Orchestrator runs the locate, normalize, build, dispatch pipeline. It holds
// only immutable references and is safe for concurrent use.
type Orchestrator struct {
	provider   SemanticProvider
	locator    *Locator
	normalizer *Normalizer
	builder    *Builder
	presenter  PresenterConfig
	notifier   Notifier
	logger     *slog.Logger
	metrics    Recorder
	tracer     trace.Tracer
}

// NewOrchestrator validates cfg and creates an Orchestrator
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	switch {
	case cfg.Provider == nil:
		return nil, cerrors.Newf(cerrors.InternalError, "orchestrator: semantic provider is required")
	case cfg.Mapper == nil:
		return nil, cerrors.Newf(cerrors.InternalError, "orchestrator: symbol mapping service is required")
	case cfg.Factory == nil:
		return nil, cerrors.Newf(cerrors.InternalError, "orchestrator: item factory is required")
	case cfg.Notifier == nil:
		return nil, cerrors.Newf(cerrors.InternalError, "orchestrator: notifier is required")
	}

	logger := slogutil.OrDiscard(cfg.Logger)
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Orchestrator{
		provider:   cfg.Provider,
		locator:    NewLocator(cfg.Provider, logger),
		normalizer: NewNormalizer(cfg.Mapper, logger),
		builder:    NewBuilder(cfg.Factory, logger),
		presenter:  cfg.Presenter,
		notifier:   cfg.Notifier,
		logger:     logger,
		metrics:    cfg.Metrics,
		tracer:     tp.Tracer(tracerName),
	}, nil
}

// Resolve runs the pipeline for req. At most one sink is called, and only if
// ctx is still live right before dispatch. The returned error is non-nil for
// cancellation (ctx.Err()) and for collaborator failures.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (Outcome, error) {
	out := Outcome{Invocation: uuid.NewString(), State: StateIdle}
	logger := o.logger.With("invocation", out.Invocation)

	if req.Progress != nil {
		req.Progress.AllowCancellation(true)
		req.Progress.Describe(ProgressDescription)
	}

	ctx, span := o.tracer.Start(ctx, "callhierarchy.Resolve", trace.WithAttributes(
		attribute.String("document", req.Document.Path),
		attribute.Int("offset", req.Offset),
	))
	defer span.End()

	finish := func(state State, reason Reason, err error) (Outcome, error) {
		out.State = state
		out.Reason = reason
		span.SetAttributes(
			attribute.String("outcome.state", state.String()),
			attribute.String("outcome.reason", string(reason)),
		)
		if err != nil && reason == ReasonInternalError {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if o.metrics != nil {
			o.metrics.RecordOutcome(state, reason)
		}
		return out, err
	}
	abortOnError := func(stage State, err error) (Outcome, error) {
		if isCancellation(ctx, err) {
			logger.Debug("Call hierarchy cancelled", "stage", stage.String())
			return finish(StateAborted, ReasonCancelled, cancellationError(ctx, err))
		}
		logger.Error("Call hierarchy failed",
			"stage", stage.String(),
			"code", cerrors.CodeOf(err),
			"error", err.Error(),
		)
		return finish(StateAborted, ReasonInternalError, err)
	}

	// Locating
	var located *LocatedSymbol
	noDocument := false
	err := o.stage(ctx, StateLocating, func(ctx context.Context) error {
		snap, err := o.provider.Snapshot(ctx, req.Document)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return cerrors.New(cerrors.InternalError, "snapshot acquisition failed", err)
		}
		if snap == nil {
			noDocument = true
			return nil
		}
		located, err = o.locator.Locate(ctx, snap, req.Offset)
		return err
	})
	if err != nil {
		return abortOnError(StateLocating, err)
	}
	if noDocument {
		logger.Debug("Document is not part of any project", "document", req.Document.Path)
		return finish(StateAborted, ReasonNoDocument, nil)
	}

	if located == nil {
		logger.Debug("No symbol at caret", "document", req.Document.Path, "offset", req.Offset)
		if err := ctx.Err(); err != nil {
			return finish(StateAborted, ReasonCancelled, err)
		}
		o.notifier.SendNotification(NotOnMemberMessage, SeverityInformation)
		return finish(StateNotifying, ReasonNone, nil)
	}
	span.SetAttributes(attribute.String("symbol.located", string(located.Symbol)))

	// Normalizing
	var norm NormalizationResult
	err = o.stage(ctx, StateNormalizing, func(ctx context.Context) error {
		var err error
		norm, err = o.normalizer.Normalize(ctx, located.Symbol, located.Project)
		return err
	})
	if err != nil {
		return abortOnError(StateNormalizing, err)
	}
	if norm.Kind == Unresolvable {
		logger.Debug("Symbol has no source-backed counterpart",
			"symbol", string(located.Symbol),
			"project", string(located.Project),
		)
		return finish(StateAborted, ReasonUnresolvable, nil)
	}
	out.Symbol = norm.Symbol
	out.Project = norm.Project
	out.Redirected = norm.Kind == Redirected
	span.SetAttributes(
		attribute.String("symbol.canonical", string(norm.Symbol)),
		attribute.Bool("symbol.redirected", out.Redirected),
	)

	presenter, ok := o.presenter.Presenter()
	if !ok {
		logger.Debug("No presenter configured", "symbol", string(norm.Symbol))
		return finish(StateAborted, ReasonNoPresenter, nil)
	}

	// Building
	var node *Node
	err = o.stage(ctx, StateBuilding, func(ctx context.Context) error {
		var err error
		node, err = o.builder.Build(ctx, norm.Symbol, norm.Project)
		return err
	})
	if err != nil {
		return abortOnError(StateBuilding, err)
	}
	if node == nil {
		return finish(StateAborted, ReasonConstructionFailed, nil)
	}

	if err := ctx.Err(); err != nil {
		logger.Debug("Call hierarchy cancelled before presenting")
		return finish(StateAborted, ReasonCancelled, err)
	}
	presenter.PresentRoot(node)
	logger.Debug("Presented call hierarchy root",
		"symbol", string(node.Symbol()),
		"project", string(node.Project()),
		"redirected", out.Redirected,
	)
	return finish(StatePresenting, ReasonNone, nil)
}

// stage runs fn inside a child span and records its duration
func (o *Orchestrator) stage(ctx context.Context, state State, fn func(context.Context) error) error {
	ctx, span := o.tracer.Start(ctx, "callhierarchy."+state.String())
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	if o.metrics != nil {
		o.metrics.ObserveStage(state.String(), time.Since(start))
	}
	if err != nil && !isCancellation(ctx, err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func cancellationError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
