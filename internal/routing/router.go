// Package routing decides, per page slug, whether a page is migrated and into
// which CMS category, driven by the mapping rules in the configuration.
package routing

import (
	"path"

	"github.com/mrlokans/wp2presta/internal/config"
)

type Action string

const (
	ActionMigrate Action = "migrate"
	ActionSkip    Action = "skip"
)

// Route is the decision for one page.
type Route struct {
	Action        Action
	CMSCategoryID int    // 0 means use the global default category
	RuleName      string // empty when the default action applied
}

// Router evaluates mapping rules in declaration order; the first match wins.
type Router struct {
	rules         []config.MappingRule
	defaultAction Action
}

func New(mapping config.Mapping) *Router {
	defaultAction := ActionMigrate
	if mapping.Default == "skip" {
		defaultAction = ActionSkip
	}
	return &Router{rules: mapping.Rules, defaultAction: defaultAction}
}

// Route returns the destination decision for a slug.
func (r *Router) Route(slug string) Route {
	for _, rule := range r.rules {
		if !matches(slug, rule) {
			continue
		}
		if rule.Target == "skip" {
			return Route{Action: ActionSkip, RuleName: rule.Name}
		}
		return Route{Action: ActionMigrate, CMSCategoryID: rule.CMSCategoryID, RuleName: rule.Name}
	}
	return Route{Action: r.defaultAction}
}

func matches(slug string, rule config.MappingRule) bool {
	for _, s := range rule.Slugs {
		if s == slug {
			return true
		}
	}
	for _, pattern := range rule.Patterns {
		if ok, err := path.Match(pattern, slug); err == nil && ok {
			return true
		}
	}
	return false
}
