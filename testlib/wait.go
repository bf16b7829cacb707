package testlib

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// ErrImageNotLoaded is returned by the readiness check while the image still
// reports a zero width; the query layer keeps polling until the context
// deadline.
var ErrImageNotLoaded = errors.New("image not loaded")

// Poll invokes pred at a fixed interval until it reports true or ctx is done.
// interval <= 0 means DefaultPollInterval.
func Poll(ctx context.Context, interval time.Duration, pred func(context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		ok, err := pred(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func WaitSelectorReady(s *chromedp.Selector, check func(context.Context, runtime.ExecutionContextID, *cdp.Node) error) func(context.Context, *cdp.Frame, runtime.ExecutionContextID, ...cdp.NodeID) ([]*cdp.Node, error) {
	return func(ctx context.Context, cur *cdp.Frame, execCtx runtime.ExecutionContextID, ids ...cdp.NodeID) ([]*cdp.Node, error) {
		nodes := make([]*cdp.Node, len(ids))
		cur.RLock()
		for i, id := range ids {
			nodes[i] = cur.Nodes[id]
			if nodes[i] == nil {
				cur.RUnlock()
				// not yet ready
				return nil, nil
			}
		}
		cur.RUnlock()

		if check != nil {
			errc := make(chan error, 1)
			for _, n := range nodes {
				go func(n *cdp.Node) {
					select {
					case <-ctx.Done():
						errc <- ctx.Err()
					case errc <- check(ctx, execCtx, n):
					}
				}(n)
			}

			var first error
			for range nodes {
				if err := <-errc; first == nil {
					first = err
				}
			}
			close(errc)
			if first != nil {
				return nil, first
			}
		}
		return nodes, nil
	}
}

func callFunctionOnNode(ctx context.Context, node *cdp.Node, function string, res interface{}, args ...interface{}) error {
	r, err := dom.ResolveNode().WithNodeID(node.NodeID).Do(ctx)
	if err != nil {
		return err
	}
	err = chromedp.CallFunctionOn(function, &res,
		func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
			return p.WithObjectID(r.ObjectID)
		},
		args...,
	).Do(ctx)

	if err != nil {
		return err
	}

	// Try to release the remote object.
	// It will fail if the page is navigated or closed,
	// and it's okay to ignore the error in this case.
	_ = runtime.ReleaseObject(r.ObjectID).Do(ctx)

	return nil
}

// NodeImageLoaded holds matched nodes until the element reports a non-zero
// rendered width.
func NodeImageLoaded(s *chromedp.Selector) {
	chromedp.WaitFunc(WaitSelectorReady(s, func(ctx context.Context, execCtx runtime.ExecutionContextID, n *cdp.Node) error {
		var res bool
		err := callFunctionOnNode(ctx, n, imgLoadedJS, &res)
		if err != nil {
			return err
		}
		if !res {
			return ErrImageNotLoaded
		}
		return nil
	}))(s)
}

// WaitImageLoaded waits for the selected image to finish loading. The wait is
// bounded by the caller's context deadline only.
func WaitImageLoaded(sel interface{}, opts ...chromedp.QueryOption) chromedp.QueryAction {
	return chromedp.Query(sel, append(opts, NodeImageLoaded)...)
}

// ImageSize reads the rendered width and height of the first selected image.
func ImageSize(sel interface{}, width, height *int, opts ...chromedp.QueryOption) chromedp.QueryAction {
	return chromedp.QueryAfter(sel, func(ctx context.Context, execCtx runtime.ExecutionContextID, nodes ...*cdp.Node) error {
		if len(nodes) == 0 {
			return fmt.Errorf("no image matched %v", sel)
		}
		var size []int
		if err := callFunctionOnNode(ctx, nodes[0], imgSizeJS, &size); err != nil {
			return err
		}
		if len(size) != 2 {
			return fmt.Errorf("unexpected image size result: %v", size)
		}
		*width = size[0]
		*height = size[1]
		return nil
	}, opts...)
}

// WaitReachable polls url with GET until it answers or ctx is done.
func WaitReachable(ctx context.Context, url string, interval time.Duration) error {
	return Poll(ctx, interval, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return false, nil
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK, nil
	})
}
