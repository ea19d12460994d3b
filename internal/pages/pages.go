// Package pages builds the generic site pages from the content files in the
// template directory's "pages" folder.
//
// Every file goes through the same stages: inline scripts, shortcodes, markup
// conversion, then the filled master template. A file that fails is logged
// and skipped; the rest of the pass continues.
package pages

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
	"git.home.luguber.info/inful/sitegen/internal/inline"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/markup"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/plugin"
	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

// ContentDir is the folder under the template directory holding page sources.
const ContentDir = "pages"

// MapPageFile is the name of the optional map page.
const MapPageFile = "map.html"

// ErrMissingContentDir is returned when the template directory has no pages folder.
var ErrMissingContentDir = ferrors.NotFoundError("content directory missing").Build()

// Result summarizes one page pass.
type Result struct {
	// Written lists the source files that produced a page.
	Written []string
	// Failed lists the source files whose page could not be built.
	Failed []string
	// Skipped lists files with no known markup kind.
	Skipped []string
	// Issues collects the non-fatal problems met along the way: unknown or
	// failing plugins, malformed shortcodes, failed inline scripts.
	Issues []error
}

// Orchestrator drives the page pass.
type Orchestrator struct {
	TemplateDir string
	Master      *tmpl.Template
	// Map is the optional map template; nil disables map.html.
	Map       *tmpl.Template
	Inline    *inline.Runner
	Shortcode *plugin.Expander
	Converter *markup.Converter
	Now       func() time.Time
	Logger    *slog.Logger
}

// New creates an orchestrator over templateDir. It loads the filled master
// template, which must exist, and the optional map template. A nil runner
// disables inline scripts.
func New(templateDir string, runner *inline.Runner, expander *plugin.Expander, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	master, err := tmpl.Load(templateDir, tmpl.FilledMasterTemplateFile)
	if err != nil {
		return nil, err
	}
	mapTmpl, err := tmpl.LoadOptional(templateDir, tmpl.MapTemplateFile)
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		TemplateDir: templateDir,
		Master:      master,
		Map:         mapTmpl,
		Inline:      runner,
		Shortcode:   expander,
		Converter:   markup.NewConverter(),
		Now:         time.Now,
		Logger:      logger,
	}, nil
}

// Build processes every content file and writes the pages through w. Only
// problems that prevent the pass from starting are returned as errors.
func (o *Orchestrator) Build(ctx context.Context, w *output.Writer) (*Result, error) {
	srcDir := filepath.Join(o.TemplateDir, ContentDir)
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissingContentDir.WithContext("path", srcDir)
		}
		return nil, ferrors.FileSystemError("read content directory").Fatal().WithCause(err).WithContext("path", srcDir).Build()
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	res := &Result{}
	owner := make(map[string]string)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		outName, ok := markup.OutputName(name)
		if !ok {
			o.Logger.Warn("Skipping file with unknown content kind", logfields.File(name))
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if prev, taken := owner[outName]; taken {
			o.Logger.Warn("Skipping file whose output name is already taken",
				logfields.File(name), logfields.Path(outName), slog.String("owner", prev))
			res.Skipped = append(res.Skipped, name)
			continue
		}
		owner[outName] = name

		page, issues, err := o.Render(ctx, name)
		res.Issues = append(res.Issues, issues...)
		if err == nil {
			_, err = w.Write(outName, page)
		}
		if err != nil {
			o.Logger.Warn("Error processing page", logfields.File(name), logfields.Error(err))
			res.Failed = append(res.Failed, name)
			_ = w.Keep(outName)
			continue
		}
		o.Logger.Info("Processed page", logfields.File(name), logfields.Path(outName))
		res.Written = append(res.Written, name)
	}

	if o.Map != nil {
		if prev, taken := owner[MapPageFile]; taken {
			o.Logger.Warn("Map page not written; name taken by content file", slog.String("owner", prev))
		} else if _, err := w.Write(MapPageFile, o.MapPage()); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Render runs one content file through the page stages and returns the final
// page. Issues are non-fatal problems that left a visible trace in the page.
func (o *Orchestrator) Render(ctx context.Context, name string) (string, []error, error) {
	path := filepath.Join(o.TemplateDir, ContentDir, name)
	// #nosec G304 -- content files live in the operator's template directory.
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, ferrors.FileSystemError("read content file").WithCause(err).WithContext("path", path).Build()
	}

	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return "", nil, ferrors.ValidationError("invalid frontmatter").WithCause(err).WithContext("file", name).Build()
	}
	content := string(doc.Body)

	var issues []error
	if o.Inline != nil {
		var inlineIssues []error
		content, inlineIssues, err = o.Inline.Expand(ctx, name, content)
		issues = append(issues, inlineIssues...)
		if err != nil {
			return "", issues, err
		}
	}
	if o.Shortcode != nil {
		var scIssues []error
		content, scIssues = o.Shortcode.Expand(ctx, name, content)
		issues = append(issues, scIssues...)
	}

	body, err := o.Converter.ToHTML(content, markup.KindOf(name))
	if err != nil {
		return "", issues, err
	}

	values := tmpl.Values{}
	for k := range doc.Fields {
		if s := doc.String(k); s != "" {
			values[k] = s
		}
	}
	values["content"] = body
	values["title"] = pageTitle(doc, body, name)
	if _, ok := values["current_year"]; !ok {
		values["current_year"] = strconv.Itoa(o.now().Year())
	}
	return o.Master.Render(values), issues, nil
}

// MapPage renders map.html: the map template wrapped in the master template.
func (o *Orchestrator) MapPage() string {
	return o.Master.Render(tmpl.Values{
		"content":      o.Map.Render(nil),
		"title":        "Map",
		"current_year": strconv.Itoa(o.now().Year()),
	})
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func pageTitle(doc *frontmatter.Document, body, name string) string {
	if t := strings.TrimSpace(doc.String("title")); t != "" {
		return t
	}
	if h := markup.FirstHeading(body); h != "" {
		return h
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// HasFailures reports whether any file failed.
func (r *Result) HasFailures() bool { return len(r.Failed) > 0 }

// Warnings counts the non-fatal issues.
func (r *Result) Warnings() int { return len(r.Issues) }
