// Package master fills the site-wide master template with contact details
// and writes filled_master_template.html back into the template directory.
// Page builders wrap their content in the filled template.
package master

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/listing"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/tmpl"
)

// TopBar renders the contact links followed by one icon link per social
// network with a URL, in network name order.
func TopBar(data *listing.SiteData) string {
	var b strings.Builder
	if data.Phone != "" {
		fmt.Fprintf(&b, "<a href=\"tel:%s\"><i class=\"fas fa-phone\"></i> %s</a>\n", data.Phone, data.Phone)
	}
	if data.Email != "" {
		fmt.Fprintf(&b, "<a href=\"mailto:%s\"><i class=\"fas fa-envelope\"></i> %s</a>\n", data.Email, data.Email)
	}
	for _, name := range slices.Sorted(maps.Keys(data.SocialMedia)) {
		url := data.SocialMedia[name]
		if url == "" {
			continue
		}
		fmt.Fprintf(&b, "<a href=\"%s\" target=\"_blank\"><i class=\"fab fa-%s\"></i></a>\n", url, strings.ToLower(name))
	}
	return b.String()
}

// Values returns the substitution values for the master template. Page level
// placeholders such as content and title are left for later stages.
func Values(data *listing.SiteData, now time.Time) tmpl.Values {
	return tmpl.Values{
		"top_bar_content": TopBar(data),
		"phone":           data.Phone,
		"email":           data.Email,
		"current_year":    strconv.Itoa(now.Year()),
	}
}

// Fill renders master_template.html from templateDir with data and writes
// filled_master_template.html next to it. It reports whether the file changed.
func Fill(templateDir string, data *listing.SiteData, now time.Time) (bool, error) {
	t, err := tmpl.Load(templateDir, tmpl.MasterTemplateFile)
	if err != nil {
		return false, err
	}
	return output.NewWriter(templateDir).Write(tmpl.FilledMasterTemplateFile, t.Render(Values(data, now)))
}

// FillFromFile loads the site-data document at dataFile and calls Fill.
func FillFromFile(templateDir, dataFile string, now time.Time) (bool, error) {
	data, err := listing.LoadSiteData(dataFile)
	if err != nil {
		return false, err
	}
	return Fill(templateDir, data, now)
}
