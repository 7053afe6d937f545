// Package navigation tracks which screen each owner is on.
package navigation

import (
	"fmt"
	"strings"
)

// View is one screen of the application. The set of views is closed:
// only the types in this file implement it.
type View interface {
	Name() string
	isView()
}

type (
	Landing struct{}
	Upload  struct{}
	Voice   struct{}
	History struct{}
	Home    struct{}
	// Result shows a completed analysis. It is entered only through
	// CompleteAnalysis.
	Result struct {
		EntryID int64
	}
	Dashboard struct {
		Page Page
	}
)

// Page is a dashboard sub-page.
type Page string

const (
	PageOverview  Page = "overview"
	PageRemedies  Page = "remedies"
	PageJournal   Page = "journal"
	PageAssistant Page = "assistant"
)

var Pages = []Page{PageOverview, PageRemedies, PageJournal, PageAssistant}

func (Landing) Name() string { return "landing" }
func (Upload) Name() string  { return "upload" }
func (Voice) Name() string   { return "voice" }
func (History) Name() string { return "history" }
func (Home) Name() string    { return "home" }
func (Result) Name() string  { return "result" }
func (d Dashboard) Name() string {
	if d.Page == "" {
		return "dashboard/" + string(PageOverview)
	}
	return "dashboard/" + string(d.Page)
}

func (Landing) isView()   {}
func (Upload) isView()    {}
func (Voice) isView()     {}
func (History) isView()   {}
func (Home) isView()      {}
func (Result) isView()    {}
func (Dashboard) isView() {}

// Protected reports whether v requires a signed-in user.
func Protected(v View) bool {
	switch v.(type) {
	case Upload, Voice, Dashboard:
		return true
	case Landing, History, Home, Result:
		return false
	default:
		panic(fmt.Sprintf("navigation: unhandled view %T", v))
	}
}

// ParseView resolves a view name. Result cannot be named directly.
func ParseView(name string) (View, error) {
	switch name {
	case "landing":
		return Landing{}, nil
	case "upload":
		return Upload{}, nil
	case "voice":
		return Voice{}, nil
	case "history":
		return History{}, nil
	case "home":
		return Home{}, nil
	case "dashboard":
		return Dashboard{Page: PageOverview}, nil
	}

	if page, ok := strings.CutPrefix(name, "dashboard/"); ok {
		for _, p := range Pages {
			if string(p) == page {
				return Dashboard{Page: p}, nil
			}
		}
	}
	return nil, fmt.Errorf("unknown view %q", name)
}
