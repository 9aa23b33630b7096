package lspserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"stylesense/logging"

	"github.com/sourcegraph/jsonrpc2"
)

type Method func(ctx context.Context, conn jsonrpc2.JSONRPC2, params json.RawMessage) (interface{}, error)
type MethodMap map[string]Method

type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}

// Stdio is the transport an editor speaks to a spawned server over.
func Stdio() io.ReadWriteCloser {
	return stdrwc{}
}

var (
	ctxType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	connType = reflect.TypeOf((*jsonrpc2.JSONRPC2)(nil)).Elem()
	errType  = reflect.TypeOf((*error)(nil)).Elem()
)

// Zu adapts a handler of the form
//
//	func(ctx, conn, params P)
//	func(ctx, conn, params P) error
//	func(ctx, conn, params P) (R, error)
//
// into a Method. Params are decoded from JSON into a fresh P.
func Zu(fn interface{}) Method {
	val := reflect.ValueOf(fn)
	typ := val.Type()
	if typ.Kind() != reflect.Func || typ.NumIn() != 3 || typ.In(0) != ctxType || typ.In(1) != connType {
		panic(fmt.Sprintf("lspserver: unsupported handler signature %s", typ))
	}
	switch typ.NumOut() {
	case 0:
	case 1:
		if typ.Out(0) != errType {
			panic(fmt.Sprintf("lspserver: handler %s must return error", typ))
		}
	case 2:
		if typ.Out(1) != errType {
			panic(fmt.Sprintf("lspserver: handler %s must return (R, error)", typ))
		}
	default:
		panic(fmt.Sprintf("lspserver: unknown arity of return in %s", typ))
	}
	in := typ.In(2)

	return func(ctx context.Context, conn jsonrpc2.JSONRPC2, params json.RawMessage) (interface{}, error) {
		v := reflect.New(in)
		if len(params) > 0 && string(params) != "null" {
			if err := json.Unmarshal(params, v.Interface()); err != nil {
				return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
			}
		}
		ret := val.Call([]reflect.Value{reflect.ValueOf(ctx), reflect.ValueOf(conn), v.Elem()})

		switch len(ret) {
		case 0: // notification
			return nil, nil
		case 1:
			err, _ := ret[0].Interface().(error)
			return nil, err
		default:
			err, _ := ret[1].Interface().(error)
			if err != nil {
				return nil, err
			}
			return ret[0].Interface(), nil
		}
	}
}

// Handler routes requests through methods. Unknown requests fail with
// MethodNotFound; unknown notifications are ignored.
func Handler(methods MethodMap) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		m, ok := methods[req.Method]
		if !ok {
			if req.Notif {
				return nil, nil
			}
			return nil, &jsonrpc2.Error{Code: jsonrpc2.CodeMethodNotFound, Message: "method not found: " + req.Method}
		}

		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		resp, err := m(ctx, conn, params)
		if err != nil {
			logging.FromContext(ctx).Debug("request failed", logging.FieldMethod, req.Method, logging.FieldError, err)
		}
		return resp, err
	})
}

// StartServer serves methods over rwc until the peer disconnects or ctx is
// done.
func StartServer(ctx context.Context, methods MethodMap, rwc io.ReadWriteCloser) {
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}), Handler(methods))
	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
		conn.Close()
	}
}
