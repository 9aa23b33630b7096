// Package session tracks open documents and publishes their diagnostics in
// revision order.
package session

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"stylesense/grammar"
	"stylesense/logging"
	"stylesense/metrics"

	"github.com/sourcegraph/go-lsp"
)

// Analyzer turns one revision of a document into diagnostics.
type Analyzer interface {
	Diagnose(ctx context.Context, uri string, lang grammar.SupportedLanguage, body []byte) ([]lsp.Diagnostic, error)
}

// Publisher delivers a diagnostic set to the client. A later call for the
// same URI replaces the earlier set.
type Publisher interface {
	Publish(ctx context.Context, uri lsp.DocumentURI, version int, diags []lsp.Diagnostic) error
}

// DocumentState is the session view of one open document.
type DocumentState struct {
	URI      lsp.DocumentURI
	Language grammar.SupportedLanguage
	Text     []byte
	// Revision starts at 0 on open and grows by one per change.
	Revision uint64
	// Version is the client's document version, echoed on publish.
	Version         int
	LastDiagnostics []lsp.Diagnostic
}

func (s DocumentState) clone() DocumentState {
	s.Text = bytes.Clone(s.Text)
	s.LastDiagnostics = append([]lsp.Diagnostic(nil), s.LastDiagnostics...)
	return s
}

type document struct {
	mu     sync.Mutex
	state  DocumentState
	closed bool
}

type Option func(*Manager)

// WithoutClearOnClose keeps the client's last diagnostics when a document
// closes instead of publishing an empty set.
func WithoutClearOnClose() Option {
	return func(m *Manager) { m.clearOnClose = false }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

type Manager struct {
	analyzer  Analyzer
	publisher Publisher

	mu   sync.RWMutex
	docs map[lsp.DocumentURI]*document

	wg           sync.WaitGroup
	clearOnClose bool
	metrics      *metrics.Metrics
}

func NewManager(analyzer Analyzer, publisher Publisher, opts ...Option) *Manager {
	m := &Manager{
		analyzer:     analyzer,
		publisher:    publisher,
		docs:         map[lsp.DocumentURI]*document{},
		clearOnClose: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open starts a session for uri at revision 0 and schedules its first
// analysis. A session already open for uri is replaced. Documents in an
// unsupported language are logged and otherwise ignored.
func (m *Manager) Open(ctx context.Context, uri lsp.DocumentURI, languageID string, version int, text []byte) {
	logger := logging.FromContext(ctx).With(logging.FieldURI, uri)

	lang, err := grammar.ParseLanguageID(languageID)
	if err != nil {
		logger.Info("not analyzing document", logging.FieldLanguage, languageID, logging.FieldError, err)
		return
	}

	doc := &document{state: DocumentState{
		URI:      uri,
		Language: lang,
		Text:     bytes.Clone(text),
		Version:  version,
	}}
	snapshot := doc.state

	m.mu.Lock()
	old := m.docs[uri]
	m.docs[uri] = doc
	m.mu.Unlock()

	if old != nil {
		old.mu.Lock()
		old.closed = true
		old.mu.Unlock()
		logger.Debug("replaced open document")
	}

	m.schedule(ctx, doc, snapshot)
}

// Change replaces the full text of an open document and schedules analysis
// of the new revision. Changes for documents that are not open are dropped.
func (m *Manager) Change(ctx context.Context, uri lsp.DocumentURI, version int, text []byte) {
	doc := m.lookup(uri)
	if doc == nil {
		logging.FromContext(ctx).Debug("change for document that is not open", logging.FieldURI, uri)
		return
	}

	doc.mu.Lock()
	if doc.closed {
		doc.mu.Unlock()
		return
	}
	doc.state.Text = bytes.Clone(text)
	doc.state.Version = version
	doc.state.Revision++
	snapshot := doc.state
	doc.mu.Unlock()

	m.schedule(ctx, doc, snapshot)
}

// Close drops the session for uri. Analyses still running for it are
// discarded when they finish.
func (m *Manager) Close(ctx context.Context, uri lsp.DocumentURI) {
	m.mu.Lock()
	doc := m.docs[uri]
	delete(m.docs, uri)
	m.mu.Unlock()

	if doc == nil {
		return
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()
	doc.closed = true

	if !m.clearOnClose {
		return
	}
	if err := m.publisher.Publish(ctx, uri, doc.state.Version, []lsp.Diagnostic{}); err != nil {
		logging.FromContext(ctx).Error("failed to clear diagnostics", logging.FieldURI, uri, logging.FieldError, err)
		return
	}
	m.metrics.IncPublish()
}

// Snapshot returns a copy of the state of uri.
func (m *Manager) Snapshot(uri lsp.DocumentURI) (DocumentState, bool) {
	doc := m.lookup(uri)
	if doc == nil {
		return DocumentState{}, false
	}
	doc.mu.Lock()
	defer doc.mu.Unlock()
	return doc.state.clone(), true
}

// Wait blocks until every scheduled analysis has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) lookup(uri lsp.DocumentURI) *document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docs[uri]
}

func (m *Manager) schedule(ctx context.Context, doc *document, snapshot DocumentState) {
	// The request that triggered the analysis may finish before it does.
	ctx = logging.ForDocument(context.WithoutCancel(ctx), string(snapshot.URI), snapshot.Revision)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.analyze(ctx, doc, snapshot)
	}()
}

func (m *Manager) analyze(ctx context.Context, doc *document, snapshot DocumentState) {
	logger := logging.FromContext(ctx)

	diags, err := m.analyzer.Diagnose(ctx, string(snapshot.URI), snapshot.Language, snapshot.Text)
	if err != nil {
		if errors.Is(err, grammar.ErrGrammarLoad) {
			// The registry reports the load failure once at Error.
			logger.Debug("grammar unavailable, document not analyzed", logging.FieldLanguage, snapshot.Language, logging.FieldError, err)
		} else {
			logger.Error("analysis failed", logging.FieldError, err)
		}
		return
	}
	if diags == nil {
		diags = []lsp.Diagnostic{}
	}

	doc.mu.Lock()
	defer doc.mu.Unlock()

	if doc.closed || doc.state.Revision != snapshot.Revision {
		m.metrics.IncSuperseded()
		logger.Debug("discarding superseded diagnostics", logging.FieldCount, len(diags))
		return
	}

	if err := m.publisher.Publish(ctx, snapshot.URI, snapshot.Version, diags); err != nil {
		logger.Error("failed to publish diagnostics", logging.FieldError, err)
		return
	}
	m.metrics.IncPublish()
	doc.state.LastDiagnostics = diags
}
