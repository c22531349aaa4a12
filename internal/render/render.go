// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render produces the three fixed A4 report pages as standalone HTML
// documents. Each page is sized to 210mm x 297mm and marks its blocks with a
// "keep" class so a block is never split across a physical page.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/pdiddy/propverify/internal/caseload"
	"github.com/pdiddy/propverify/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageCount is the number of logical pages in every report.
const PageCount = 3

// MissingConclusion is shown in place of the conclusion when the report was
// produced without one.
const MissingConclusion = "Conclusion not generated."

// Page is one rendered logical page.
type Page struct {
	// Number is the 1-based page position in the report.
	Number int

	// Name identifies the page layout ("order", "property", "risk").
	Name string

	// HTML is the complete standalone document for the page.
	HTML []byte
}

// pageLayouts lists the page templates in report order.
var pageLayouts = []string{"order", "property", "risk"}

var pageTemplates = mustParsePages()

func mustParsePages() map[string]*template.Template {
	out := make(map[string]*template.Template, len(pageLayouts))
	for _, name := range pageLayouts {
		out[name] = template.Must(template.New(name).Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return out
}

var funcs = template.FuncMap{
	"val":    value,
	"ref":    reference,
	"office": officeLabel,
	"title":  titleCase,
}

// pageData is the template input shared by all pages.
type pageData struct {
	Title             string
	Number            int
	Total             int
	Generated         string
	Case              *types.ReportCase
	Report            types.RiskReport
	MissingConclusion string
}

// Render produces the three pages for c. A nil report renders the case's own
// issues without a conclusion. generatedAt is stamped into every page footer;
// callers inject it so identical input renders identical bytes.
func Render(c *types.ReportCase, report *types.RiskReport, generatedAt time.Time) ([]Page, error) {
	if c == nil {
		return nil, fmt.Errorf("rendering report: no case")
	}

	r := types.RiskReport{Issues: caseload.CaseIssues(c)}
	if report != nil {
		r = *report
	}

	data := pageData{
		Title:             "Property Verification Report",
		Total:             PageCount,
		Generated:         generatedAt.Format("02 Jan 2006"),
		Case:              c,
		Report:            r,
		MissingConclusion: MissingConclusion,
	}

	pages := make([]Page, 0, PageCount)
	for i, name := range pageLayouts {
		data.Number = i + 1
		var buf bytes.Buffer
		if err := pageTemplates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
			return nil, fmt.Errorf("rendering page %d (%s): %w", data.Number, name, err)
		}
		pages = append(pages, Page{Number: data.Number, Name: name, HTML: buf.Bytes()})
	}
	return pages, nil
}

// value returns s, or the placeholder when s is blank.
func value(s string) string {
	if strings.TrimSpace(s) == "" {
		return types.Placeholder
	}
	return s
}

// reference distinguishes an absent cross-reference from one that is present
// but empty.
func reference(s *string) string {
	switch {
	case s == nil:
		return types.Placeholder
	case strings.TrimSpace(*s) == "":
		return "(empty)"
	default:
		return *s
	}
}

func officeLabel(o types.RegistrationOffice) string {
	switch {
	case o.Name != "" && o.Code != "":
		return fmt.Sprintf("%s (%s)", o.Name, o.Code)
	case o.Name != "":
		return o.Name
	case o.Code != "":
		return o.Code
	default:
		return types.Placeholder
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
