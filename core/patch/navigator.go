package patch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"

	"github.com/dmitrymomot/fresco/core/logger"
	"github.com/dmitrymomot/fresco/core/partial"
)

// Link attributes read by the navigator.
const (
	// ClientNavAttr enables partial navigation for a link and its descendants.
	// The value "false" disables it again further down the tree.
	ClientNavAttr = "f-client-nav"
	// PartialURLAttr names the URL fetched for the partial response when it
	// differs from the link target.
	PartialURLAttr = "f-partial"
	// PartialTargetAttr lists the regions to update, comma-separated.
	PartialTargetAttr = "f-partial-target"
)

const defaultMaxPayload = 8 << 20

// FullNavigator performs an ordinary page navigation.
type FullNavigator interface {
	Navigate(href string)
}

// FullNavigatorFunc adapts a function to FullNavigator.
type FullNavigatorFunc func(href string)

// Navigate implements FullNavigator.
func (f FullNavigatorFunc) Navigate(href string) {
	f(href)
}

// Outcome is how a navigation ended.
type Outcome int

const (
	// Patched means the document was updated in place.
	Patched Outcome = iota
	// Fallback means the partial navigation failed and a full navigation was made.
	Fallback
	// Superseded means a newer navigation took over; nothing was done.
	Superseded
	// Skipped means the link is not enabled for partial navigation and a full
	// navigation was made.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Patched:
		return "patched"
	case Fallback:
		return "fallback"
	case Superseded:
		return "superseded"
	case Skipped:
		return "skipped"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result reports a navigation. Reason is set for Fallback and Superseded.
type Result struct {
	Outcome Outcome
	Reason  error
}

// Navigator drives partial navigations of one document. The last navigation
// wins: starting a navigation cancels the one in flight, and a response that
// arrives after a newer navigation started is dropped.
type Navigator struct {
	doc        *Document
	full       FullNavigator
	client     *http.Client
	base       *url.URL
	param      string
	maxPayload int64
	logger     *slog.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithHTTPClient sets the client used for partial requests.
func WithHTTPClient(c *http.Client) NavigatorOption {
	return func(n *Navigator) {
		if c != nil {
			n.client = c
		}
	}
}

// WithBaseURL sets the URL relative links are resolved against.
func WithBaseURL(u *url.URL) NavigatorOption {
	return func(n *Navigator) {
		n.base = u
	}
}

// WithPartialParam sets the query parameter flagging partial requests.
func WithPartialParam(param string) NavigatorOption {
	return func(n *Navigator) {
		if param != "" {
			n.param = param
		}
	}
}

// WithMaxPayload limits the size of a partial response body.
func WithMaxPayload(size int64) NavigatorOption {
	return func(n *Navigator) {
		if size > 0 {
			n.maxPayload = size
		}
	}
}

// WithLogger sets the logger for fallbacks.
func WithLogger(l *slog.Logger) NavigatorOption {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNavigator creates a navigator patching doc and falling back to full.
func NewNavigator(doc *Document, full FullNavigator, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		doc:        doc,
		full:       full,
		client:     http.DefaultClient,
		param:      partial.DefaultParam,
		maxPayload: defaultMaxPayload,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ClientNav reports whether partial navigation is enabled for link: the
// nearest element carrying ClientNavAttr decides, and without one it is off.
func ClientNav(link *html.Node) bool {
	for n := link; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if v, ok := attr(n, ClientNavAttr); ok {
			return !strings.EqualFold(strings.TrimSpace(v), "false")
		}
	}
	return false
}

// Navigate follows href, triggered by link (which may be nil for programmatic
// navigations). It fetches the partial response for the target regions and
// patches the document; any failure falls back to a full navigation so the
// page is never left half-patched.
func (n *Navigator) Navigate(ctx context.Context, href string, link *html.Node) Result {
	if link != nil && !ClientNav(link) {
		n.full.Navigate(href)
		return Result{Outcome: Skipped}
	}

	ctx, seq := n.begin(ctx)
	defer n.end(seq)

	target, err := n.resolve(href, link)
	if err != nil {
		return n.fallback(ctx, seq, href, nil, err)
	}
	names := n.targets(link)
	if len(names) == 0 {
		return n.fallback(ctx, seq, href, nil, ErrMissingRegion)
	}

	env, err := n.fetch(ctx, target, names)
	if err != nil {
		return n.fallback(ctx, seq, href, names, err)
	}
	if id := n.doc.BuildID(); id != "" && env.BuildID != id {
		return n.fallback(ctx, seq, href, names, fmt.Errorf("%w: have %q, got %q", ErrStaleBuild, id, env.BuildID))
	}
	for _, name := range names {
		if _, ok := env.Payload(name); !ok {
			return n.fallback(ctx, seq, href, names, &RegionError{Name: name, Err: ErrMissingRegion})
		}
	}

	n.mu.Lock()
	if seq != n.seq {
		n.mu.Unlock()
		return Result{Outcome: Superseded, Reason: ErrSuperseded}
	}
	err = n.doc.Apply(env)
	n.mu.Unlock()

	if err != nil {
		return n.fallback(ctx, seq, href, names, err)
	}
	return Result{Outcome: Patched}
}

// begin starts a navigation, cancelling the one in flight.
func (n *Navigator) begin(parent context.Context) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.cancel != nil {
		n.cancel()
	}
	n.seq++
	n.cancel = cancel
	return ctx, n.seq
}

// end releases the context of a finished navigation if it is still current.
func (n *Navigator) end(seq uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if seq == n.seq && n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
}

func (n *Navigator) current(seq uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return seq == n.seq
}

func (n *Navigator) fallback(ctx context.Context, seq uint64, href string, names []string, reason error) Result {
	if !n.current(seq) {
		return Result{Outcome: Superseded, Reason: errors.Join(ErrSuperseded, reason)}
	}
	n.logger.WarnContext(ctx, "partial navigation failed, falling back to full navigation",
		logger.Component("patch"),
		logger.Path(href),
		logger.Partial(names),
		logger.Error(reason),
	)
	n.full.Navigate(href)
	return Result{Outcome: Fallback, Reason: reason}
}

func (n *Navigator) resolve(href string, link *html.Node) (*url.URL, error) {
	if link != nil {
		if v := attrValue(link, PartialURLAttr); v != "" {
			href = v
		}
	}
	u, err := url.Parse(href)
	if err != nil {
		return nil, fmt.Errorf("parse link: %w", err)
	}
	if n.base != nil {
		u = n.base.ResolveReference(u)
	}
	if !u.IsAbs() {
		return nil, fmt.Errorf("resolve link: %q is relative and no base url is set", href)
	}
	return u, nil
}

// targets returns the regions named by the link, or every region of the
// document.
func (n *Navigator) targets(link *html.Node) []string {
	if link != nil {
		if v := attrValue(link, PartialTargetAttr); v != "" {
			return partial.ParseNames(v)
		}
	}
	return n.doc.RegionNames()
}

func (n *Navigator) fetch(ctx context.Context, target *url.URL, names []string) (*partial.Envelope, error) {
	list := strings.Join(names, ",")

	u := *target
	q := u.Query()
	q.Set(n.param, list)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build partial request: %w", err)
	}
	req.Header.Set(partial.Header, list)
	req.Header.Set("Accept", partial.ContentType)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("partial request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err != nil || mt != partial.ContentType {
		return nil, fmt.Errorf("%w: content type %q", ErrMalformedPayload, resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, n.maxPayload))
	if err != nil {
		return nil, fmt.Errorf("read partial response: %w", err)
	}
	return DecodeEnvelope(body)
}

// DecodeEnvelope validates and decodes a partial response body.
func DecodeEnvelope(body []byte) (*partial.Envelope, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedPayload)
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedPayload)
	}
	if id := doc.Get("buildId"); id.Exists() && id.Type != gjson.String {
		return nil, fmt.Errorf("%w: buildId is not a string", ErrMalformedPayload)
	}
	partials := doc.Get("partials")
	if !partials.IsArray() {
		return nil, fmt.Errorf("%w: partials is not an array", ErrMalformedPayload)
	}

	var perr error
	partials.ForEach(func(_, p gjson.Result) bool {
		name := p.Get("name")
		if name.Type != gjson.String || !partial.ValidName(name.Str) {
			perr = fmt.Errorf("%w: invalid region name %s", ErrMalformedPayload, name.Raw)
			return false
		}
		if c := p.Get("content"); c.Exists() && c.Type != gjson.String {
			perr = fmt.Errorf("%w: region %q content is not a string", ErrMalformedPayload, name.Str)
			return false
		}
		return true
	})
	if perr != nil {
		return nil, perr
	}

	var env partial.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return &env, nil
}
