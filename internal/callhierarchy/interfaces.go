package callhierarchy

import (
	"context"
	"time"
)

// Snapshot is an immutable semantic view of one document
type Snapshot interface {
	ID() SnapshotID
	// Project is the context symbols in this document are bound in
	Project() ProjectID
	// Len is the document length in bytes; valid caret offsets are 0..Len
	Len() int
}

// SemanticProvider supplies snapshots and answers symbol-at-offset queries.
type SemanticProvider interface {
	// Snapshot returns the current snapshot for doc, or nil when the document
	// does not belong to any known project.
	Snapshot(ctx context.Context, doc DocumentRef) (Snapshot, error)

	// Bindings returns every symbol occurrence whose span touches offset.
	// Order is not significant.
	Bindings(ctx context.Context, snap Snapshot, offset int) ([]Binding, error)
}

// SymbolMappingService maps a symbol to its authoritative source-backed
// counterpart. A symbol that is already canonical maps to itself.
type SymbolMappingService interface {
	MapSymbol(ctx context.Context, symbol SymbolID, project ProjectID) (Mapping, error)
}

// ItemFactory builds hierarchy nodes. It returns a nil node when the symbol
// cannot serve as a call hierarchy item in that project.
type ItemFactory interface {
	CreateItem(ctx context.Context, symbol SymbolID, project ProjectID) (*Node, error)
}

// Presenter displays a root node. Ownership of the node passes to it.
type Presenter interface {
	PresentRoot(node *Node)
}

// Notifier shows a message to the user
type Notifier interface {
	SendNotification(message string, severity Severity)
}

// Progress is the host's cancellable wait indicator
type Progress interface {
	Describe(description string)
	AllowCancellation(allow bool)
}

// Recorder receives pipeline measurements. internal/metrics provides one.
type Recorder interface {
	ObserveStage(stage string, d time.Duration)
	RecordOutcome(state State, reason Reason)
}

// PresenterConfig is the host's presenter choice, resolved once at startup.
type PresenterConfig struct {
	presenter Presenter
}

// NoPresenter configures a host that cannot display hierarchies
func NoPresenter() PresenterConfig {
	return PresenterConfig{}
}

// SinglePresenter configures the presenter that receives every root
func SinglePresenter(p Presenter) PresenterConfig {
	return PresenterConfig{presenter: p}
}

// Presenter returns the configured presenter and whether one exists
func (c PresenterConfig) Presenter() (Presenter, bool) {
	return c.presenter, c.presenter != nil
}
