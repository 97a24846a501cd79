package document

import (
	"context"
	"errors"

	"github.com/beevik/etree"

	"github.com/conduit-lang/recordtree/internal/apperror"
)

// Outcome is the result of preparing a component: either Continue or a
// ShortCircuit that skips the rest of the assembly
type Outcome interface {
	outcome()
}

// Continue lets the assembly proceed
type Continue struct{}

func (Continue) outcome() {}

// ShortCircuit renders only structural markup. Layout, when set, replaces
// the default page shell; Content is inserted into it.
type ShortCircuit struct {
	Layout  *etree.Element
	Content *etree.Element
}

func (ShortCircuit) outcome() {}

// Component is one unit of the page. Prepare claims path segments and loads
// data; Build contributes the component's node.
type Component interface {
	Name() string
	Prepare(ctx context.Context, req *Request, doc *Document) (Outcome, error)
	Build(ctx context.Context, doc *Document) (*etree.Element, error)
}

// BeforePrepareHook runs before Prepare
type BeforePrepareHook interface {
	BeforePrepare(ctx context.Context, req *Request) error
}

// AfterPrepareHook runs after a Prepare that did not short circuit
type AfterPrepareHook interface {
	AfterPrepare(ctx context.Context, req *Request) error
}

// BeforeBuildHook runs before Build
type BeforeBuildHook interface {
	BeforeBuild(ctx context.Context, doc *Document) error
}

// AfterBuildHook runs after Build with the produced node
type AfterBuildHook interface {
	AfterBuild(ctx context.Context, el *etree.Element) error
}

// Assemble prepares every component in order, verifies that the request path
// was fully claimed and builds the components into doc. A ShortCircuit from
// any component stops the assembly and is returned as is.
func Assemble(ctx context.Context, req *Request, doc *Document, components []Component) (Outcome, error) {
	if len(components) == 0 {
		return nil, apperror.Developer(CodeNoComponents, "document has no components")
	}

	for _, c := range components {
		if h, ok := c.(BeforePrepareHook); ok {
			if err := h.BeforePrepare(ctx, req); err != nil {
				return nil, wrapComponent(c, err)
			}
		}
		out, err := c.Prepare(ctx, req, doc)
		if err != nil {
			return nil, wrapComponent(c, err)
		}
		if sc, ok := out.(ShortCircuit); ok {
			return sc, nil
		}
		if h, ok := c.(AfterPrepareHook); ok {
			if err := h.AfterPrepare(ctx, req); err != nil {
				return nil, wrapComponent(c, err)
			}
		}
	}

	if rest := req.Remaining(); len(rest) > 0 {
		return nil, apperror.NotFound(CodeNotFound, "no component handles path segment %q", rest[0]).
			WithDetail("remaining", rest)
	}

	for _, c := range components {
		if h, ok := c.(BeforeBuildHook); ok {
			if err := h.BeforeBuild(ctx, doc); err != nil {
				return nil, wrapComponent(c, err)
			}
		}
		el, err := c.Build(ctx, doc)
		if err != nil {
			return nil, wrapComponent(c, err)
		}
		if h, ok := c.(AfterBuildHook); ok {
			if err := h.AfterBuild(ctx, el); err != nil {
				return nil, wrapComponent(c, err)
			}
		}
		if el != nil {
			doc.AddComponent(c.Name(), el)
		}
	}

	doc.Finalize()
	return Continue{}, nil
}

// wrapComponent keeps taxonomy errors as they are and classifies foreign
// errors as critical
func wrapComponent(c Component, err error) error {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Critical(CodeComponentFailed, "component %s failed", c.Name()).Wrap(err)
}
