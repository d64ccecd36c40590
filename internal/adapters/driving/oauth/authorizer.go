package oauth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
	"github.com/custodia-labs/docrelay/internal/logger"
)

// DefaultCallbackPort is the fixed loopback port registered as the
// OAuth redirect URI.
const DefaultCallbackPort = 8080

// DefaultAuthorizeTimeout bounds how long a user has to complete consent.
const DefaultAuthorizeTimeout = 5 * time.Minute

var (
	_ driven.Authorizer = (*LocalServerAuthorizer)(nil)
	_ driven.Authorizer = (*ConsoleAuthorizer)(nil)
	_ driven.Authorizer = DisabledAuthorizer{}
)

// LocalServerAuthorizer opens the consent page in a browser and receives
// the code on a loopback callback server. If the port cannot be opened
// it hands over to Fallback.
type LocalServerAuthorizer struct {
	Port int

	// Redirect is the registered redirect URI. Its path is where the
	// callback is served. Defaults to http://localhost:<Port>/.
	Redirect string

	Timeout  time.Duration
	Out      io.Writer
	Open     func(url string) error
	Fallback driven.Authorizer
}

// NewLocalServerAuthorizer creates a browser-based authorizer on the default port.
func NewLocalServerAuthorizer(out io.Writer, fallback driven.Authorizer) *LocalServerAuthorizer {
	return &LocalServerAuthorizer{
		Port:     DefaultCallbackPort,
		Timeout:  DefaultAuthorizeTimeout,
		Out:      out,
		Open:     OpenBrowser,
		Fallback: fallback,
	}
}

// RedirectURI implements driven.Authorizer.
func (a *LocalServerAuthorizer) RedirectURI() string {
	if a.Redirect != "" {
		return a.Redirect
	}
	return redirectURI(a.Port)
}

// Authorize implements driven.Authorizer.
func (a *LocalServerAuthorizer) Authorize(ctx context.Context, authURL, state string) (string, error) {
	srv := NewCallbackServer(a.Port, state).WithPath(callbackPath(a.RedirectURI()))
	if err := srv.Start(); err != nil {
		if a.Fallback == nil {
			return "", err
		}
		logger.Warn("Callback server unavailable (%v), falling back to console authorization", err)
		return a.Fallback.Authorize(ctx, authURL, state)
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			logger.Debug("Stopping callback server: %v", err)
		}
	}()

	fmt.Fprintf(a.Out, "Opening your browser to authorize docrelay.\nIf it does not open, visit:\n\n  %s\n\n", authURL)
	if a.Open != nil {
		if err := a.Open(authURL); err != nil {
			logger.Warn("Could not open browser: %v", err)
		}
	}
	fmt.Fprintln(a.Out, "Waiting for authorization...")

	timeout := a.Timeout
	if timeout <= 0 {
		timeout = DefaultAuthorizeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return srv.WaitForCode(ctx)
}

// callbackPath is the path component of redirect, or "/".
func callbackPath(redirect string) string {
	u, err := url.Parse(redirect)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// ConsoleAuthorizer prints the consent URL and reads the redirected URL
// (or the bare code) from In. All reads share one buffered reader, and a
// read abandoned by a cancelled Authorize is picked up by the next call.
type ConsoleAuthorizer struct {
	In       io.Reader
	Out      io.Writer
	Redirect string

	mu      sync.Mutex
	reader  *bufio.Reader
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewConsoleAuthorizer creates a console authorizer using the default redirect URI.
func NewConsoleAuthorizer(in io.Reader, out io.Writer) *ConsoleAuthorizer {
	return &ConsoleAuthorizer{In: in, Out: out, Redirect: redirectURI(DefaultCallbackPort)}
}

// RedirectURI implements driven.Authorizer.
func (a *ConsoleAuthorizer) RedirectURI() string {
	return a.Redirect
}

// Authorize implements driven.Authorizer.
func (a *ConsoleAuthorizer) Authorize(ctx context.Context, authURL, state string) (string, error) {
	fmt.Fprintf(a.Out, "Visit this URL to authorize docrelay:\n\n  %s\n\n", authURL)
	fmt.Fprintln(a.Out, "After approving, your browser is sent to a page that may not load.")
	fmt.Fprint(a.Out, "Paste that page's full URL (or just the code) here: ")

	lines := a.readLine()
	select {
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), "waiting for authorization code")
	case r := <-lines:
		a.mu.Lock()
		a.pending = nil
		a.mu.Unlock()
		if r.err != nil {
			return "", errors.Wrap(r.err, "reading authorization code")
		}
		return parseCodeInput(r.line, state)
	}
}

// readLine returns the in-flight read, starting one if none is pending.
func (a *ConsoleAuthorizer) readLine() <-chan lineResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending != nil {
		return a.pending
	}
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	ch := make(chan lineResult, 1)
	a.pending = ch
	reader := a.reader
	go func() {
		line, err := reader.ReadString('\n')
		if err == io.EOF && line != "" {
			err = nil
		}
		ch <- lineResult{line, err}
	}()
	return ch
}

// parseCodeInput extracts the code from a pasted redirect URL or accepts
// the input as a bare code.
func parseCodeInput(input, state string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("no authorization code entered")
	}
	if !strings.Contains(input, "code=") && !strings.Contains(input, "error=") {
		return input, nil
	}

	query := input
	if u, err := url.Parse(input); err == nil && u.RawQuery != "" {
		query = u.RawQuery
	}
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return "", errors.Wrap(err, "parsing pasted URL")
	}
	if e := values.Get("error"); e != "" {
		return "", errors.Newf("oauth error: %s", e)
	}
	if got := values.Get("state"); got != "" && got != state {
		return "", errors.New("state mismatch in pasted URL")
	}
	code := values.Get("code")
	if code == "" {
		return "", errors.New("pasted URL has no code parameter")
	}
	return code, nil
}

// DisabledAuthorizer refuses interactive authorization. It is used where
// no user can respond, such as a server or CI job.
type DisabledAuthorizer struct{}

// RedirectURI implements driven.Authorizer.
func (DisabledAuthorizer) RedirectURI() string {
	return redirectURI(DefaultCallbackPort)
}

// Authorize implements driven.Authorizer.
func (DisabledAuthorizer) Authorize(context.Context, string, string) (string, error) {
	err := errors.Wrap(domain.ErrInteractiveFlowFailed, "interactive authorization is disabled")
	return "", errors.WithHint(err,
		"run `docrelay auth login` where a browser is available, then copy the token file or set GOOGLE_TOKEN_JSON")
}
