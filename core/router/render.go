package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/fresco/core/handler"
	"github.com/dmitrymomot/fresco/core/head"
	"github.com/dmitrymomot/fresco/core/island"
	"github.com/dmitrymomot/fresco/core/logger"
	"github.com/dmitrymomot/fresco/core/partial"
	"github.com/dmitrymomot/fresco/core/response"
)

// renderer composes a page with the layouts of one route and renders it as a
// full document or a partial envelope.
type renderer struct {
	d       *Dispatcher
	layouts []handler.LayoutFunc
	app     handler.LayoutFunc
	status  int
}

func (d *Dispatcher) renderer(layouts []handler.LayoutFunc, app handler.LayoutFunc, status int) *renderer {
	return &renderer{d: d, layouts: layouts, app: app, status: status}
}

// Render implements handler.Renderer.
func (rn *renderer) Render(ctx *handler.Context, page handler.Page) (handler.Response, error) {
	status := page.Status
	if status == http.StatusOK && rn.status != 0 {
		status = rn.status
	}
	component := rn.compose(ctx, page.Component)

	var opts []partial.Option
	if ctx.IsPartial() {
		opts = append(opts, partial.WithRequested(ctx.PartialNames()))
	}
	if rn.d.strictPartials {
		opts = append(opts, partial.WithStrictNames())
	}
	ps := partial.NewState(opts...)
	hc := head.NewCollector()
	ic := island.NewCollector()

	rctx := head.WithCollector(ctx, hc)
	rctx = island.WithCollector(rctx, ic)
	rctx = partial.WithState(rctx, ps)

	if ps.Partial() {
		if err := component.Render(rctx, io.Discard); err != nil {
			return nil, err
		}
		refs := rn.diagnose(ctx, ps, ic)
		return response.Partial(&partial.Envelope{
			BuildID:  rn.d.buildID,
			Partials: ps.Payloads(),
			Head:     hc.Elements(),
			Islands:  refs,
		}, status), nil
	}

	var buf bytes.Buffer
	if err := component.Render(rctx, &buf); err != nil {
		return nil, err
	}
	refs := rn.diagnose(ctx, ps, ic)

	doc := head.Fill(ps.Prune(buf.Bytes()), hc.Elements())
	doc, err := injectState(doc, partial.DocumentState{BuildID: rn.d.buildID, Islands: refs})
	if err != nil {
		return nil, err
	}
	return response.Document(doc, status), nil
}

// compose wraps c in the layouts, innermost first, then in the app wrapper.
func (rn *renderer) compose(ctx *handler.Context, c templ.Component) templ.Component {
	for _, layout := range rn.layouts {
		if wrapped := layout(ctx, c); wrapped != nil {
			c = wrapped
		}
	}
	if rn.app != nil {
		if wrapped := rn.app(ctx, c); wrapped != nil {
			c = wrapped
		}
	}
	return c
}

// diagnose logs the non-fatal findings of a render and resolves the island refs.
func (rn *renderer) diagnose(ctx *handler.Context, ps *partial.State, ic *island.Collector) []island.Ref {
	log := rn.d.logger.With(logger.Component("render"), logger.Route(ctx.Pattern()))

	for _, dup := range ps.Duplicates() {
		log.WarnContext(ctx, "duplicate partial region, last declaration wins", logger.Error(dup))
	}
	for _, dup := range ic.Duplicates() {
		log.WarnContext(ctx, "duplicate island identity, last declaration wins", logger.Error(dup))
	}
	if missing := ps.Missing(); len(missing) > 0 {
		log.DebugContext(ctx, "requested partial regions not rendered", logger.Partial(missing))
	}

	refs, unresolved := ic.Refs(rn.d.manifest)
	for _, typ := range unresolved {
		log.WarnContext(ctx, "island type not in manifest",
			logger.Error(fmt.Errorf("%w: %s", island.ErrUnresolvedType, typ)),
		)
	}
	return refs
}

// injectState inserts the state script before </body>, or appends it to a
// document without a body.
func injectState(doc []byte, st partial.DocumentState) ([]byte, error) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode document state: %w", err)
	}

	var script bytes.Buffer
	script.WriteString(`<script id="` + partial.StateScriptID + `" type="application/json">`)
	script.Write(data)
	script.WriteString(`</script>`)

	i := bytes.LastIndex(bytes.ToLower(doc), []byte("</body>"))
	if i < 0 {
		return append(doc, script.Bytes()...), nil
	}
	out := make([]byte, 0, len(doc)+script.Len())
	out = append(out, doc[:i]...)
	out = append(out, script.Bytes()...)
	return append(out, doc[i:]...), nil
}
