package commands

import (
	"context"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitegen/internal/build"
)

// PagesCmd implements the 'pages' command.
type PagesCmd struct {
	TemplateDir string `arg:"" optional:"" name:"template-dir" help:"Template directory (overrides template_dir)"`
	OutputDir   string `arg:"" optional:"" name:"output-dir" help:"Output directory (overrides output.pages)"`
}

func (p *PagesCmd) Run(ctx context.Context, root *CLI, kctx *kong.Context) error {
	if err := root.requireArgs(kctx, map[string]string{"template-dir": p.TemplateDir, "output-dir": p.OutputDir}); err != nil {
		return err
	}
	root.cfg.SetTemplateDir(p.TemplateDir)
	if p.OutputDir != "" {
		root.cfg.Output.Pages = p.OutputDir
	}
	return root.runPasses(ctx, build.PassPages)
}

// IndexCmd implements the 'index' command.
type IndexCmd struct {
	TemplateDir string `arg:"" optional:"" name:"template-dir" help:"Template directory (overrides template_dir)"`
	OutputDir   string `arg:"" optional:"" name:"output-dir" help:"Output directory (overrides output.listings_index)"`
	FeedFile    string `arg:"" optional:"" name:"feed-file" help:"Listings feed (overrides feed_file)"`
	PageSize    int    `name:"page-size" help:"Listings per page (overrides index.page_size)"`
}

func (i *IndexCmd) Run(ctx context.Context, root *CLI, kctx *kong.Context) error {
	if err := root.requireArgs(kctx, map[string]string{"template-dir": i.TemplateDir, "output-dir": i.OutputDir}); err != nil {
		return err
	}
	root.cfg.SetTemplateDir(i.TemplateDir)
	if i.OutputDir != "" {
		root.cfg.Output.ListingsIndex = i.OutputDir
	}
	if i.FeedFile != "" {
		root.cfg.FeedFile = i.FeedFile
	}
	if i.PageSize != 0 {
		root.cfg.Index.PageSize = i.PageSize
	}
	return root.runPasses(ctx, build.PassIndex)
}

// ListingsCmd implements the 'listings' command.
type ListingsCmd struct {
	TemplateDir string `arg:"" optional:"" name:"template-dir" help:"Template directory (overrides template_dir)"`
	OutputDir   string `arg:"" optional:"" name:"output-dir" help:"Output directory (overrides output.listing_details)"`
	FeedFile    string `arg:"" optional:"" name:"feed-file" help:"Listings feed (overrides feed_file)"`
}

func (l *ListingsCmd) Run(ctx context.Context, root *CLI, kctx *kong.Context) error {
	if err := root.requireArgs(kctx, map[string]string{"template-dir": l.TemplateDir, "output-dir": l.OutputDir}); err != nil {
		return err
	}
	root.cfg.SetTemplateDir(l.TemplateDir)
	if l.OutputDir != "" {
		root.cfg.Output.ListingDetails = l.OutputDir
	}
	if l.FeedFile != "" {
		root.cfg.FeedFile = l.FeedFile
	}
	return root.runPasses(ctx, build.PassListings)
}

// MasterCmd implements the 'master' command.
type MasterCmd struct {
	TemplateDir string `arg:"" optional:"" name:"template-dir" help:"Template directory (overrides template_dir)"`
	DataFile    string `arg:"" optional:"" name:"data-file" help:"Site data document (overrides data_file)"`
}

func (m *MasterCmd) Run(ctx context.Context, root *CLI, kctx *kong.Context) error {
	if err := root.requireArgs(kctx, map[string]string{"template-dir": m.TemplateDir}); err != nil {
		return err
	}
	root.cfg.SetTemplateDir(m.TemplateDir)
	if m.DataFile != "" {
		root.cfg.DataFile = m.DataFile
	}
	return root.runPasses(ctx, build.PassMaster)
}

// AllCmd implements the 'all' command.
type AllCmd struct{}

func (a *AllCmd) Run(ctx context.Context, root *CLI) error {
	return root.runPasses(ctx, build.AllPasses()...)
}
