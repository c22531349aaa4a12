// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/propverify/pkg/types"
)

var generatedAt = time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)

func sampleCase() *types.ReportCase {
	return &types.ReportCase{
		ID:               "case-0042",
		State:            "KARNATAKA",
		Office:           types.RegistrationOffice{Name: "SHIVAJINAGAR", Code: "BNG-SJR"},
		DocumentNumber:   "1234",
		RegistrationYear: "2022",
		SRN:              "SRN-12345-ABCDE",
		Status:           "Completed",
		Mode:             "online",
		Property: types.PropertyRecord{
			OwnerName:  "Jane Smith",
			Boundaries: types.Boundaries{North: "Property of Mr. North"},
			Tax:        types.TaxDetails{PropertyID: "PID-98765", AnnualTax: "12,500 INR"},
			Titles: []types.TitleRecord{
				{DeedNumber: "SJR-02-54321", DeedDate: "2020-05-20", DeedType: "Mortgage"},
				{DeedNumber: "SJR-01-12345", DeedDate: "2022-01-15", DeedType: "Sale Deed"},
			},
		},
	}
}

func sampleReport() *types.RiskReport {
	return &types.RiskReport{
		Issues: []types.RiskIssue{
			{Issue: "Active mortgage", Comment: "No recorded release.", TitleRef: types.StringRef("SJR-02-54321")},
			{Issue: "Tax dues clear", TaxRef: types.StringRef("")},
			{Issue: "Owner name mismatch", Comment: "Older record lists another seller."},
		},
		Conclusion:    "Title is marketable once the mortgage is released.",
		HasConclusion: true,
	}
}

func TestRenderPages(t *testing.T) {
	pages, err := Render(sampleCase(), sampleReport(), generatedAt)
	require.NoError(t, err)
	require.Len(t, pages, PageCount)

	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, pageLayouts[i], p.Name)

		html := string(p.HTML)
		assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"), "page %d is a standalone document", p.Number)
		assert.Contains(t, html, "size: 210mm 297mm")
		assert.Contains(t, html, "break-inside: avoid")
		assert.Contains(t, html, fmt.Sprintf("Page %d of %d", p.Number, PageCount))
		assert.Contains(t, html, "Generated on: 14 Mar 2026")
		assert.Contains(t, html, "case-0042")
	}

	order := string(pages[0].HTML)
	assert.Contains(t, order, "SHIVAJINAGAR (BNG-SJR)")
	assert.Contains(t, order, "<dd>Online</dd>")
	assert.Less(t, strings.Index(order, "SJR-02-54321"), strings.Index(order, "SJR-01-12345"),
		"title records keep received order")

	property := string(pages[1].HTML)
	assert.Contains(t, property, "<dd>Jane Smith</dd>")
	assert.Contains(t, property, "<strong>North:</strong> Property of Mr. North")
}

func TestRenderLongPageGrows(t *testing.T) {
	c := sampleCase()
	c.Property.Titles = nil
	for i := range 62 {
		c.Property.Titles = append(c.Property.Titles, types.TitleRecord{DeedNumber: fmt.Sprintf("DEED-%03d", i)})
	}
	report := sampleReport()
	report.Conclusion = strings.Repeat("The title chain needs review. ", 400)

	pages, err := Render(c, report, generatedAt)
	require.NoError(t, err)

	pageRule := regexp.MustCompile(`\.page \{[^}]*\}`)
	for _, p := range pages {
		rule := pageRule.FindString(string(p.HTML))
		require.NotEmpty(t, rule, "page %d", p.Number)
		assert.Contains(t, rule, "min-height: 297mm", "the page box grows with its content")
		assert.NotContains(t, rule, "overflow")
		assert.NotRegexp(t, `[^-]height: 297mm`, rule)
	}

	order := string(pages[0].HTML)
	assert.Equal(t, 62, strings.Count(order, `<tr class="keep"><td>DEED-`), "every title row is rendered")
	assert.Contains(t, order, "DEED-061")
	assert.Contains(t, string(pages[2].HTML), strings.TrimSpace(report.Conclusion))
}

func TestRenderPlaceholders(t *testing.T) {
	pages, err := Render(&types.ReportCase{ID: "sparse"}, &types.RiskReport{
		Issues: []types.RiskIssue{{Issue: "Unverified boundary"}},
	}, generatedAt)
	require.NoError(t, err)

	for _, p := range pages {
		html := string(p.HTML)
		assert.NotContains(t, html, "<dd></dd>", "page %d has an empty field", p.Number)
		assert.NotContains(t, html, "<td></td>", "page %d has an empty cell", p.Number)
	}

	assert.Contains(t, string(pages[0].HTML), "<dd>N/A</dd>")
	assert.Contains(t, string(pages[0].HTML), "No encumbrance records available.")
	assert.Contains(t, string(pages[1].HTML), "<strong>West:</strong> N/A")
	assert.Contains(t, string(pages[1].HTML), "<td>N/A</td>")

	risk := string(pages[2].HTML)
	assert.Contains(t, risk, "<strong>EC Ref:</strong> N/A")
	assert.Contains(t, risk, "<strong>Tax Ref:</strong> N/A")
	assert.Contains(t, risk, MissingConclusion)
}

func TestRenderRiskPage(t *testing.T) {
	pages, err := Render(sampleCase(), sampleReport(), generatedAt)
	require.NoError(t, err)
	risk := string(pages[2].HTML)

	labels := []string{"Active mortgage", "Tax dues clear", "Owner name mismatch"}
	last := -1
	for _, label := range labels {
		idx := strings.Index(risk, label)
		require.NotEqual(t, -1, idx, label)
		assert.Greater(t, idx, last, "%q out of order", label)
		last = idx
	}

	assert.Contains(t, risk, "<strong>EC Ref:</strong> SJR-02-54321")
	assert.Contains(t, risk, "<strong>Tax Ref:</strong> (empty)")
	assert.Contains(t, risk, "Title is marketable once the mortgage is released.")
	assert.NotContains(t, risk, MissingConclusion)
	assert.Equal(t, 3, strings.Count(risk, `class="issue keep"`))
}

func TestRenderNilReportUsesCaseIssues(t *testing.T) {
	c := sampleCase()
	c.Observations = []string{"Boundary dispute noted by surveyor"}

	pages, err := Render(c, nil, generatedAt)
	require.NoError(t, err)

	risk := string(pages[2].HTML)
	assert.Contains(t, risk, "Boundary dispute noted by surveyor")
	assert.Contains(t, risk, MissingConclusion)
}

func TestRenderNoIssues(t *testing.T) {
	pages, err := Render(sampleCase(), &types.RiskReport{}, generatedAt)
	require.NoError(t, err)
	assert.Contains(t, string(pages[2].HTML), "No risk issues were identified.")
}

func TestRenderEscapesContent(t *testing.T) {
	c := sampleCase()
	c.Property.OwnerName = "<script>alert(1)</script>"

	pages, err := Render(c, nil, generatedAt)
	require.NoError(t, err)
	assert.NotContains(t, string(pages[1].HTML), "<script>")
	assert.Contains(t, string(pages[1].HTML), "&lt;script&gt;")
}

func TestRenderDeterministic(t *testing.T) {
	a, err := Render(sampleCase(), sampleReport(), generatedAt)
	require.NoError(t, err)
	b, err := Render(sampleCase(), sampleReport(), generatedAt)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRenderNilCase(t *testing.T) {
	_, err := Render(nil, nil, generatedAt)
	assert.Error(t, err)
}

func TestReference(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want string
	}{
		{name: "absent", in: nil, want: "N/A"},
		{name: "empty", in: types.StringRef(""), want: "(empty)"},
		{name: "value", in: types.StringRef("PID-1"), want: "PID-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reference(tt.in))
		})
	}
}
