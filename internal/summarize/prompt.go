// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"text/template"
)

// conclusionPromptTmpl asks the model for one conclusion paragraph that
// weighs every issue together. The issue list is context only; the model is
// never asked to restate or edit it.
var conclusionPromptTmpl = template.Must(template.New("conclusion").Funcs(template.FuncMap{
	"add":   func(a, b int) int { return a + b },
	"deref": func(s *string) string { return *s },
}).Parse(`You are a property title verification analyst preparing the conclusion of a legal due-diligence report.

Below are the risk issues already identified for this property, in report order. Consider all of them together and write a single paragraph (at most 150 words) that states the overall risk position, names the issues that most affect marketability of title, and recommends the next verification steps.

Respond with the paragraph only: no heading, no list, no JSON, and do not repeat the issues verbatim.

Risk issues:
{{- range $i, $issue := .Issues}}
{{add $i 1}}. {{$issue.Issue}}
   Comment: {{if $issue.Comment}}{{$issue.Comment}}{{else}}none{{end}}
{{- if $issue.TitleRef}}
   Title record reference: {{deref $issue.TitleRef}}
{{- end}}
{{- if $issue.TaxRef}}
   Tax reference: {{deref $issue.TaxRef}}
{{- end}}
{{- end}}
{{- if .Observations}}

Raw observations:
{{- range .Observations}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Titles}}

Title records (as received):
{{- range .Titles}}
- {{.DeedNumber}} {{.DeedDate}} {{.DeedType}}: {{.FirstParty}} -> {{.SecondParty}} ({{.Office}})
{{- end}}
{{- end}}
{{- with .Tax}}

Tax details: property {{.PropertyID}}, owner {{.OwnerName}}, annual tax {{.AnnualTax}}, arrears {{.ArrearTax}}
{{- end}}
`))

// renderPrompt executes the conclusion prompt for req.
func renderPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := conclusionPromptTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
