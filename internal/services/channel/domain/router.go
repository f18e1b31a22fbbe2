package domain

import (
	"fmt"

	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
	noticedom "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/services/notice/domain"
)

// Router maps a notice category to its webhook destination URL
type Router struct {
	urls map[noticedom.Category]string
}

// NewRouter builds a Router from a category to URL map
func NewRouter(urls map[noticedom.Category]string) Router {
	cp := make(map[noticedom.Category]string, len(urls))
	for c, u := range urls {
		cp[c] = u
	}
	return Router{urls: cp}
}

// MustComplete panics unless every category has a non-empty URL.
// Call at startup; a partially configured router must not boot.
func (r Router) MustComplete() Router {
	for _, c := range noticedom.Categories() {
		if r.urls[c] == "" {
			panic(fmt.Sprintf("category router: no url for %s", c))
		}
	}
	return r
}

// URL returns the destination for category, or a configuration error
func (r Router) URL(c noticedom.Category) (string, error) {
	u, ok := r.urls[c]
	if !ok || u == "" {
		return "", perr.Configf("no url mapped for category %s", c)
	}
	return u, nil
}
