package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceTypeByName maps human-readable config strings to Rod protocol
// resource types. Moved from the teacher's scraper/hijack.go unchanged.
var resourceTypeByName = map[string]proto.NetworkResourceType{
	"Image":      proto.NetworkResourceTypeImage,
	"Stylesheet": proto.NetworkResourceTypeStylesheet,
	"Font":       proto.NetworkResourceTypeFont,
	"Media":      proto.NetworkResourceTypeMedia,
	"Script":     proto.NetworkResourceTypeScript,
}

// adDomainFragments is a short substring denylist used to additionally drop
// common ad/tracker requests when blockAds is set, independent of resource
// type (ads are frequently served as Image/Script/XHR alike).
var adDomainFragments = []string{
	"doubleclick.net", "googlesyndication.com", "googleadservices.com",
	"adservice.google", "adsystem.com", "taboola.com", "outbrain.com",
	"amazon-adsystem.com", "criteo.com", "scorecardresearch.com",
}

// setupHijack installs a request interceptor that blocks the configured
// resource types and, when blockAds is set, known ad/tracker domains.
// Returns nil if there is nothing to block. The returned router is already
// running in its own goroutine; the caller must Stop() it.
func setupHijack(page *rod.Page, blockedTypes []string, blockAds bool) *rod.HijackRouter {
	blocked := make(map[proto.NetworkResourceType]struct{}, len(blockedTypes))
	for _, name := range blockedTypes {
		if rt, ok := resourceTypeByName[name]; ok {
			blocked[rt] = struct{}{}
		}
	}
	if len(blocked) == 0 && !blockAds {
		return nil
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if _, shouldBlock := blocked[ctx.Request.Type()]; shouldBlock {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if blockAds {
			url := ctx.Request.URL().String()
			for _, frag := range adDomainFragments {
				if strings.Contains(url, frag) {
					ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
					return
				}
			}
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	go router.Run()
	return router
}
