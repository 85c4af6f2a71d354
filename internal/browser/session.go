// Package browser exposes the driving capabilities the probe needs
// from a live Chrome instance: locate, click, type, clear, read, wait.
// It speaks the DevTools protocol through mafredri/cdp and never
// assumes synchronous completion of UI updates; reads after writes go
// through WaitUntil or accept eventual consistency within a bounded
// timeout.
package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mafredri/cdp"
	"github.com/mafredri/cdp/devtool"
	"github.com/mafredri/cdp/protocol/dom"
	"github.com/mafredri/cdp/protocol/input"
	"github.com/mafredri/cdp/protocol/page"
	"github.com/mafredri/cdp/protocol/runtime"
	"github.com/mafredri/cdp/rpcc"
	"github.com/tidwall/gjson"

	"formprobe/internal/logger"
)

// ErrNoElement reports a structural lookup failure: the selector
// matched nothing at all. Callers must not retry; it means a page
// structure assumption is violated.
var ErrNoElement = errors.New("no such element")

const pollInterval = 100 * time.Millisecond

// Session is one attached browser page. A single session drives the
// whole run and is released unconditionally at the end.
type Session struct {
	conn        *rpcc.Conn
	client      *cdp.Client
	log         logger.Logger
	navTimeout  time.Duration
	evalTimeout time.Duration
}

// Dial attaches to the first page target of a running browser exposed
// at devtoolsURL, creating one if none exists.
func Dial(ctx context.Context, devtoolsURL string, navTimeout time.Duration, log logger.Logger) (*Session, error) {
	if log == nil {
		log = logger.NewNop()
	}
	dt := devtool.New(devtoolsURL)
	target, err := dt.Get(ctx, devtool.Page)
	if err != nil {
		target, err = dt.Create(ctx)
		if err != nil {
			return nil, fmt.Errorf("acquire page target: %w", err)
		}
	}
	conn, err := rpcc.DialContext(ctx, target.WebSocketDebuggerURL)
	if err != nil {
		return nil, fmt.Errorf("dial devtools: %w", err)
	}
	client := cdp.NewClient(conn)
	if err := client.Page.Enable(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable page events: %w", err)
	}
	log.Info("attached browser target", "url", target.URL)
	return &Session{
		conn:        conn,
		client:      client,
		log:         log,
		navTimeout:  navTimeout,
		evalTimeout: 3 * time.Second,
	}, nil
}

// Close releases the underlying connection.
func (s *Session) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Navigate loads url and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	fired, err := s.client.Page.LoadEventFired(ctx)
	if err != nil {
		return fmt.Errorf("subscribe load event: %w", err)
	}
	defer fired.Close()

	if _, err := s.client.Page.Navigate(ctx, page.NewNavigateArgs(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if _, err := fired.Recv(); err != nil {
		return fmt.Errorf("await load of %s: %w", url, err)
	}
	s.log.Debug("navigated", "url", url)
	return nil
}

// Refresh reloads the current page and waits for the load event.
func (s *Session) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	fired, err := s.client.Page.LoadEventFired(ctx)
	if err != nil {
		return fmt.Errorf("subscribe load event: %w", err)
	}
	defer fired.Close()

	if err := s.client.Page.Reload(ctx, nil); err != nil {
		return fmt.Errorf("reload: %w", err)
	}
	if _, err := fired.Recv(); err != nil {
		return fmt.Errorf("await reload: %w", err)
	}
	s.log.Debug("page reloaded")
	return nil
}

// Eval runs a JavaScript expression and returns its by-value result.
func (s *Session) Eval(ctx context.Context, expr string) (gjson.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.evalTimeout)
	defer cancel()

	reply, err := s.client.Runtime.Evaluate(ctx, runtime.NewEvaluateArgs(expr).SetReturnByValue(true))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("evaluate: %w", err)
	}
	if reply.ExceptionDetails != nil {
		return gjson.Result{}, fmt.Errorf("evaluate: %s", reply.ExceptionDetails.Text)
	}
	return gjson.ParseBytes(reply.Result.Value), nil
}

// WaitUntil polls expr until it evaluates to true or the timeout
// elapses. A timed-out wait resolves to false, never an error;
// transient evaluation failures count as "condition not met".
func (s *Session) WaitUntil(ctx context.Context, expr string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		res, err := s.Eval(ctx, expr)
		if err == nil && res.Type == gjson.True {
			return true
		}
		if time.Now().After(deadline) || ctx.Err() != nil {
			return false
		}
		time.Sleep(pollInterval)
	}
}

// WaitExists polls for an element matching selector. A timed-out wait
// resolves to false, never an error.
func (s *Session) WaitExists(ctx context.Context, selector string, timeout time.Duration) bool {
	return s.WaitUntil(ctx, existsExpr(selector), timeout)
}

// WaitExistsXPath polls for an element matching an XPath expression.
func (s *Session) WaitExistsXPath(ctx context.Context, xpath string, timeout time.Duration) bool {
	return s.WaitUntil(ctx, xpathExistsExpr(xpath), timeout)
}

// Click clicks the first element matching selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	res, err := s.Eval(ctx, clickExpr(selector))
	if err != nil {
		return err
	}
	if res.Type != gjson.True {
		return fmt.Errorf("click %q: %w", selector, ErrNoElement)
	}
	return nil
}

// ClickXPath clicks the first element matching an XPath expression.
func (s *Session) ClickXPath(ctx context.Context, xpath string) error {
	res, err := s.Eval(ctx, xpathClickExpr(xpath))
	if err != nil {
		return err
	}
	if res.Type != gjson.True {
		return fmt.Errorf("click xpath %q: %w", xpath, ErrNoElement)
	}
	return nil
}

// Type focuses the element matching selector and inserts text through
// the input domain, firing the input events reactive controls listen
// for.
func (s *Session) Type(ctx context.Context, selector, text string) error {
	res, err := s.Eval(ctx, focusExpr(selector))
	if err != nil {
		return err
	}
	if res.Type != gjson.True {
		return fmt.Errorf("type into %q: %w", selector, ErrNoElement)
	}
	ctx, cancel := context.WithTimeout(ctx, s.evalTimeout)
	defer cancel()
	if err := s.client.Input.InsertText(ctx, input.NewInsertTextArgs(text)); err != nil {
		return fmt.Errorf("insert text: %w", err)
	}
	return nil
}

// Clear empties the input or textarea matching selector.
func (s *Session) Clear(ctx context.Context, selector string) error {
	res, err := s.Eval(ctx, clearExpr(selector))
	if err != nil {
		return err
	}
	if res.Type != gjson.True {
		return fmt.Errorf("clear %q: %w", selector, ErrNoElement)
	}
	return nil
}

// TextAll returns the trimmed text content of every element matching
// selector. No matches yields an empty slice.
func (s *Session) TextAll(ctx context.Context, selector string) ([]string, error) {
	res, err := s.Eval(ctx, textAllExpr(selector))
	if err != nil {
		return nil, err
	}
	return resultStrings(res), nil
}

// TextAllXPath returns the trimmed text content of every element
// matching an XPath expression.
func (s *Session) TextAllXPath(ctx context.Context, xpath string) ([]string, error) {
	res, err := s.Eval(ctx, xpathAllExpr(xpath))
	if err != nil {
		return nil, err
	}
	return resultStrings(res), nil
}

// HTML returns the outer HTML of the first element matching selector.
func (s *Session) HTML(ctx context.Context, selector string) (string, error) {
	res, err := s.Eval(ctx, outerHTMLExpr(selector))
	if err != nil {
		return "", err
	}
	if res.Type == gjson.Null {
		return "", fmt.Errorf("html of %q: %w", selector, ErrNoElement)
	}
	return res.String(), nil
}

// SetSelect commits value on a native <select> element.
func (s *Session) SetSelect(ctx context.Context, selector, value string) error {
	res, err := s.Eval(ctx, selectSetExpr(selector, value))
	if err != nil {
		return err
	}
	if res.Type != gjson.True {
		return fmt.Errorf("select %q on %q: %w", value, selector, ErrNoElement)
	}
	return nil
}

// SetFiles attaches local file paths to a file input.
func (s *Session) SetFiles(ctx context.Context, selector string, files ...string) error {
	ctx, cancel := context.WithTimeout(ctx, s.evalTimeout)
	defer cancel()

	doc, err := s.client.DOM.GetDocument(ctx, nil)
	if err != nil {
		return fmt.Errorf("get document: %w", err)
	}
	node, err := s.client.DOM.QuerySelector(ctx, dom.NewQuerySelectorArgs(doc.Root.NodeID, selector))
	if err != nil {
		return fmt.Errorf("query %q: %w", selector, err)
	}
	if node.NodeID == 0 {
		return fmt.Errorf("upload to %q: %w", selector, ErrNoElement)
	}
	args := dom.NewSetFileInputFilesArgs(files).SetNodeID(node.NodeID)
	if err := s.client.DOM.SetFileInputFiles(ctx, args); err != nil {
		return fmt.Errorf("set input files: %w", err)
	}
	return nil
}

func resultStrings(res gjson.Result) []string {
	arr := res.Array()
	out := make([]string, 0, len(arr))
	for _, v := range arr {
		out = append(out, v.String())
	}
	return out
}
