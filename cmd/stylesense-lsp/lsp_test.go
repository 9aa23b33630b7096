package main

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"stylesense/analysis"
	"stylesense/config"
	lspserver "stylesense/lsp-server"
	"stylesense/metrics"

	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type client struct {
	conn *jsonrpc2.Conn
	diag chan publishDiagnosticsParams
}

func startClient(t *testing.T) *client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	serverSide, clientSide := net.Pipe()

	s := newServer(config.Default(), metrics.New())
	done := make(chan struct{})
	go func() {
		defer close(done)
		lspserver.StartServer(ctx, s.methods(), serverSide)
		s.wait()
	}()

	c := &client{diag: make(chan publishDiagnosticsParams, 16)}
	c.conn = jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
			if req.Method != "textDocument/publishDiagnostics" || req.Params == nil {
				return nil, nil
			}
			var p publishDiagnosticsParams
			if err := json.Unmarshal(*req.Params, &p); err != nil {
				return nil, err
			}
			c.diag <- p
			return nil, nil
		}))

	t.Cleanup(func() {
		c.conn.Close()
		cancel()
		<-done
	})

	var result lsp.InitializeResult
	require.NoError(t, c.conn.Call(ctx, "initialize", lsp.InitializeParams{RootURI: "file:///src"}, &result))
	require.NotNil(t, result.Capabilities.TextDocumentSync)
	require.NotNil(t, result.Capabilities.TextDocumentSync.Options)
	assert.True(t, result.Capabilities.TextDocumentSync.Options.OpenClose)
	assert.Equal(t, lsp.TextDocumentSyncKind(lsp.TDSKFull), result.Capabilities.TextDocumentSync.Options.Change)
	require.NoError(t, c.conn.Notify(ctx, "initialized", struct{}{}))
	return c
}

func (c *client) next(t *testing.T) publishDiagnosticsParams {
	t.Helper()
	select {
	case p := <-c.diag:
		return p
	case <-time.After(10 * time.Second):
		t.Fatal("no diagnostics published")
		return publishDiagnosticsParams{}
	}
}

func TestDocumentLifecycle(t *testing.T) {
	c := startClient(t)
	ctx := context.Background()
	const uri = lsp.DocumentURI("file:///src/main.c")

	require.NoError(t, c.conn.Notify(ctx, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: uri, LanguageID: "c", Version: 1, Text: "int x=1;\n"},
	}))
	p := c.next(t)
	assert.Equal(t, uri, p.URI)
	assert.Equal(t, 1, p.Version)
	require.Len(t, p.Diagnostics, 2)
	for _, d := range p.Diagnostics {
		assert.Equal(t, analysis.SourceTag, d.Source)
		assert.Equal(t, lsp.DiagnosticSeverity(lsp.Warning), d.Severity)
	}
	assert.Equal(t, lsp.Range{
		Start: lsp.Position{Line: 0, Character: 4},
		End:   lsp.Position{Line: 0, Character: 6},
	}, p.Diagnostics[0].Range)

	require.NoError(t, c.conn.Notify(ctx, "textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument:   lsp.VersionedTextDocumentIdentifier{TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: uri}, Version: 2},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "int x=1;\n"}, {Text: "int x = 1;\n"}},
	}))
	p = c.next(t)
	assert.Equal(t, 2, p.Version)
	assert.NotNil(t, p.Diagnostics)
	assert.Empty(t, p.Diagnostics)

	require.NoError(t, c.conn.Notify(ctx, "textDocument/didClose", lsp.DidCloseTextDocumentParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: uri},
	}))
	p = c.next(t)
	assert.Equal(t, uri, p.URI)
	assert.Empty(t, p.Diagnostics)
}

func TestUnsupportedLanguageIsSilent(t *testing.T) {
	c := startClient(t)
	ctx := context.Background()

	require.NoError(t, c.conn.Notify(ctx, "textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: "file:///src/main.py", LanguageID: "python", Version: 1, Text: "x=1\n"},
	}))
	// Shutdown waits for in-flight analyses, so anything pending is out by now.
	require.NoError(t, c.conn.Call(ctx, "shutdown", nil, nil))

	select {
	case p := <-c.diag:
		t.Fatalf("unexpected diagnostics for %s", p.URI)
	default:
	}
}

func TestUnknownRequest(t *testing.T) {
	c := startClient(t)

	var rpcErr *jsonrpc2.Error
	err := c.conn.Call(context.Background(), "textDocument/hover", nil, nil)
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, int64(jsonrpc2.CodeMethodNotFound), rpcErr.Code)
}
