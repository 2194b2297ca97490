package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/kamilturan/browserloop/internal/logging"
)

// ProbeRemote performs a best-effort reachability check against a
// remotely-provisioned CDP endpoint before the session attaches to it with
// Playwright's ConnectOverCDP. It exists only to surface a friendlier
// verbosity-1 log line ("found N live targets") when wiring up against a
// cloud-provisioned browser — spec.md §1 treats cloud session provisioning
// itself as an external collaborator, so this never blocks or fails the
// caller: every error is logged and swallowed.
func ProbeRemote(parent context.Context, cdpURL string, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(parent, 5*time.Second)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, cdpURL)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var infos []*target.Info
	err := chromedp.Run(taskCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var runErr error
		infos, runErr = target.GetTargets().Do(ctx)
		return runErr
	}))
	if err != nil {
		log.V(1).Info("remote probe failed, proceeding without it", "connectUrl", cdpURL, "error", err)
		return
	}

	pages := 0
	for _, info := range infos {
		if info.Type == "page" {
			pages++
		}
	}
	log.V(1).Info("remote probe succeeded", "connectUrl", cdpURL, "targets", len(infos), "pages", pages)
}
