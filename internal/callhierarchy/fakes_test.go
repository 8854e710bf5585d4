package callhierarchy

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeSnapshot struct {
	id      SnapshotID
	project ProjectID
	length  int
}

func (s *fakeSnapshot) ID() SnapshotID     { return s.id }
func (s *fakeSnapshot) Project() ProjectID { return s.project }
func (s *fakeSnapshot) Len() int           { return s.length }

// fakeProvider returns a fixed snapshot and the bindings touching the offset
type fakeProvider struct {
	snap        Snapshot
	bindings    []Binding
	snapshotErr error
	bindingsErr error
	onBindings  func()

	mu      sync.Mutex
	queries []int
}

func (p *fakeProvider) Snapshot(ctx context.Context, doc DocumentRef) (Snapshot, error) {
	if p.snapshotErr != nil {
		return nil, p.snapshotErr
	}
	return p.snap, nil
}

func (p *fakeProvider) Bindings(ctx context.Context, snap Snapshot, offset int) ([]Binding, error) {
	p.mu.Lock()
	p.queries = append(p.queries, offset)
	p.mu.Unlock()
	if p.onBindings != nil {
		p.onBindings()
	}
	if p.bindingsErr != nil {
		return nil, p.bindingsErr
	}
	var out []Binding
	for _, b := range p.bindings {
		if b.Span.Touches(offset) {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeMapper maps through a table; identities missing from the table map to
// themselves unless listed in unknown.
type fakeMapper struct {
	redirects map[symbolKey]symbolKey
	unknown   map[symbolKey]bool
	err       error
	onMap     func()

	mu    sync.Mutex
	calls []symbolKey
}

func (m *fakeMapper) MapSymbol(ctx context.Context, symbol SymbolID, project ProjectID) (Mapping, error) {
	key := symbolKey{symbol: symbol, project: project}
	m.mu.Lock()
	m.calls = append(m.calls, key)
	m.mu.Unlock()
	if m.onMap != nil {
		m.onMap()
	}
	if m.err != nil {
		return Mapping{}, m.err
	}
	if m.unknown[key] {
		return Mapping{}, nil
	}
	if to, ok := m.redirects[key]; ok {
		return Mapping{Symbol: to.symbol, Project: to.project, Found: true}, nil
	}
	return Mapping{Symbol: symbol, Project: project, Found: true}, nil
}

func (m *fakeMapper) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// fakeFactory builds nodes unless the identity is listed in decline
type fakeFactory struct {
	decline map[symbolKey]bool
	err     error
	onBuild func()

	mu    sync.Mutex
	calls []symbolKey
}

func (f *fakeFactory) CreateItem(ctx context.Context, symbol SymbolID, project ProjectID) (*Node, error) {
	key := symbolKey{symbol: symbol, project: project}
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if f.onBuild != nil {
		f.onBuild()
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.decline[key] {
		return nil, nil
	}
	return NewNode(NodeSpec{
		Symbol:  symbol,
		Project: project,
		Label:   string(symbol),
		Kind:    "method",
	}, nil), nil
}

func (f *fakeFactory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePresenter struct {
	mu    sync.Mutex
	roots []*Node
}

func (p *fakePresenter) PresentRoot(node *Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.roots = append(p.roots, node)
}

func (p *fakePresenter) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.roots)
}

type notification struct {
	message  string
	severity Severity
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) SendNotification(message string, severity Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{message: message, severity: severity})
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type fakeProgress struct {
	description string
	cancellable bool
}

func (p *fakeProgress) Describe(description string) { p.description = description }
func (p *fakeProgress) AllowCancellation(allow bool) { p.cancellable = allow }

type fakeRecorder struct {
	mu       sync.Mutex
	stages   []string
	outcomes []State
	reasons  []Reason
}

func (r *fakeRecorder) ObserveStage(stage string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *fakeRecorder) RecordOutcome(state State, reason Reason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, state)
	r.reasons = append(r.reasons, reason)
}

var errBackend = errors.New("backend unavailable")
