package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer loads a page in headless Chrome and returns the rendered DOM.
// Used as a last-resort fallback when none of the plain fetch variants
// yield media; the upstream sometimes only materializes the embedded data
// after its scripts run.
type Renderer struct {
	timeout time.Duration
	pool    sync.Pool
}

func NewRenderer(timeout time.Duration) *Renderer {
	r := &Renderer{timeout: timeout}
	r.pool.New = func() any {
		opts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
		allocCtx, _ := chromedp.NewExecAllocator(context.Background(), opts...)
		return allocCtx
	}
	return r
}

// Render navigates to url and returns the page's outer HTML once the body
// is visible.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	allocCtx := r.pool.Get().(context.Context)
	defer r.pool.Put(allocCtx)

	taskCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, r.timeout)
	defer timeoutCancel()

	// Propagate caller disconnects into the browser task.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", err
	}
	return html, nil
}
