package build

import (
	"path/filepath"
	"slices"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/pages"
	"git.home.luguber.info/inful/sitegen/internal/plugin"
	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

// DeltaPlan is the set of passes a change requires, with the reason.
type DeltaPlan struct {
	Passes []Pass
	Reason string
}

// Plan maps changed source paths to the passes that must rerun. An empty
// change list (for example after a watcher overflow) or any path it cannot
// classify yields a full rebuild.
func Plan(cfg *config.Config, changed []string) DeltaPlan {
	full := DeltaPlan{Passes: AllPasses(), Reason: "full"}
	if len(changed) == 0 {
		return full
	}

	need := make(map[Pass]bool)
	for _, p := range changed {
		passes, ok := classify(cfg, p)
		if !ok {
			full.Reason = "unclassified change: " + p
			return full
		}
		for _, ps := range passes {
			need[ps] = true
		}
	}
	if need[PassMaster] {
		return DeltaPlan{Passes: AllPasses(), Reason: "master template or site data changed"}
	}

	plan := DeltaPlan{Reason: "partial"}
	for _, p := range AllPasses() {
		if need[p] {
			plan.Passes = append(plan.Passes, p)
		}
	}
	return plan
}

func classify(cfg *config.Config, path string) ([]Pass, bool) {
	abs := absPath(path)
	tdir := absPath(cfg.TemplateDir)

	switch abs {
	case absPath(cfg.DataFile):
		return []Pass{PassMaster}, true
	case absPath(cfg.FeedFile):
		// The listings generator reads the feed too.
		return []Pass{PassPages, PassIndex, PassListings}, true
	}

	rel, err := filepath.Rel(tdir, abs)
	if err != nil || !within(abs, tdir) {
		return nil, false
	}
	dir, base := filepath.Dir(rel), filepath.Base(rel)
	switch dir {
	case pages.ContentDir, plugin.ScriptsDir:
		return []Pass{PassPages}, true
	case ".":
	default:
		return nil, false
	}

	switch base {
	case tmpl.MasterTemplateFile:
		return []Pass{PassMaster}, true
	case tmpl.FilledMasterTemplateFile:
		return []Pass{PassPages, PassIndex, PassListings}, true
	case tmpl.ListingRowTemplateFile:
		return []Pass{PassIndex}, true
	case tmpl.ListingContentTemplateFile, tmpl.AttributionTemplateFile:
		return []Pass{PassListings}, true
	case tmpl.MapTemplateFile:
		return []Pass{PassPages}, true
	}
	// Data documents read by page generators, such as testimonials.json.
	if slices.Contains([]string{".json", ".geojson"}, filepath.Ext(base)) {
		return []Pass{PassPages}, true
	}
	return nil, false
}
