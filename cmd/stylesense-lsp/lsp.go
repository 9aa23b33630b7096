package main

import (
	"context"
	"sync"

	"stylesense/analysis"
	"stylesense/config"
	"stylesense/logging"
	lspserver "stylesense/lsp-server"
	"stylesense/metrics"
	"stylesense/session"

	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
)

type server struct {
	cfg     *config.Config
	metrics *metrics.Metrics

	mu       sync.Mutex
	sessions *session.Manager
}

func newServer(cfg *config.Config, mt *metrics.Metrics) *server {
	return &server{cfg: cfg, metrics: mt}
}

func (s *server) methods() lspserver.MethodMap {
	return lspserver.MethodMap{
		"initialize":             lspserver.Zu(s.Initialize),
		"initialized":            lspserver.Zu(s.Initialized),
		"textDocument/didOpen":   lspserver.Zu(s.DidOpen),
		"textDocument/didChange": lspserver.Zu(s.DidChange),
		"textDocument/didClose":  lspserver.Zu(s.DidClose),
		"shutdown":               lspserver.Zu(s.Shutdown),
		"exit":                   lspserver.Zu(s.Exit),
	}
}

// publishDiagnosticsParams carries the document version, which the go-lsp
// type predates.
type publishDiagnosticsParams struct {
	URI         lsp.DocumentURI  `json:"uri"`
	Version     int              `json:"version,omitempty"`
	Diagnostics []lsp.Diagnostic `json:"diagnostics"`
}

type notifier struct {
	conn jsonrpc2.JSONRPC2
}

func (n notifier) Publish(ctx context.Context, uri lsp.DocumentURI, version int, diags []lsp.Diagnostic) error {
	return n.conn.Notify(ctx, "textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: diags,
	})
}

func (s *server) manager() *session.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions
}

func (s *server) Initialize(ctx context.Context, conn jsonrpc2.JSONRPC2, params lsp.InitializeParams) (*lsp.InitializeResult, error) {
	engine := analysis.New(s.cfg)
	engine.Metrics = s.metrics

	s.mu.Lock()
	s.sessions = session.NewManager(engine, notifier{conn: conn}, session.WithMetrics(s.metrics))
	s.mu.Unlock()

	logging.FromContext(ctx).Info("initialized", "root", params.RootURI, "rules", analysis.RuleNames())

	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TextDocumentSyncKind(lsp.TDSKFull),
				},
			},
		},
	}, nil
}

func (s *server) Initialized(ctx context.Context, conn jsonrpc2.JSONRPC2, params struct{}) {}

func (s *server) DidOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, params lsp.DidOpenTextDocumentParams) {
	m := s.manager()
	if m == nil {
		return
	}
	doc := params.TextDocument
	m.Open(ctx, doc.URI, doc.LanguageID, doc.Version, []byte(doc.Text))
}

func (s *server) DidChange(ctx context.Context, conn jsonrpc2.JSONRPC2, params lsp.DidChangeTextDocumentParams) {
	m := s.manager()
	if m == nil || len(params.ContentChanges) == 0 {
		return
	}
	// Full sync: the last event holds the whole document.
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if change.Range != nil {
		logging.FromContext(ctx).Warn("ignoring ranged change under full sync", logging.FieldURI, params.TextDocument.URI)
		return
	}
	m.Change(ctx, params.TextDocument.URI, params.TextDocument.Version, []byte(change.Text))
}

func (s *server) DidClose(ctx context.Context, conn jsonrpc2.JSONRPC2, params lsp.DidCloseTextDocumentParams) {
	if m := s.manager(); m != nil {
		m.Close(ctx, params.TextDocument.URI)
	}
}

func (s *server) Shutdown(ctx context.Context, conn jsonrpc2.JSONRPC2, params struct{}) (interface{}, error) {
	s.wait()
	return nil, nil
}

func (s *server) Exit(ctx context.Context, conn jsonrpc2.JSONRPC2, params struct{}) {
	if err := conn.Close(); err != nil {
		logging.FromContext(ctx).Debug("closing connection", logging.FieldError, err)
	}
}

func (s *server) wait() {
	if m := s.manager(); m != nil {
		m.Wait()
	}
}
