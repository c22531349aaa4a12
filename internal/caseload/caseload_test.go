// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package caseload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/propverify/pkg/types"
)

func TestLoadLegacyJSON(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "legacy.json"))
	require.NoError(t, err)

	assert.Equal(t, "6645d9f0a597e743e45a8a1e", c.ID)
	assert.Equal(t, "KARNATAKA", c.State)
	assert.Equal(t, types.RegistrationOffice{Name: "SHIVAJINAGAR", Code: "BNG-SJR"}, c.Office)
	assert.Equal(t, "1234", c.DocumentNumber, "numeric value is kept as literal text")
	assert.Equal(t, "2022", c.RegistrationYear)
	assert.Equal(t, "1234567890", c.TaxReference)
	assert.Equal(t, "Title Verification", c.Service)
	assert.Equal(t, "online", c.Mode)

	p := c.Property
	assert.Equal(t, "Jane Smith", p.OwnerName)
	assert.Equal(t, "1500 sqft", p.BuiltArea)
	assert.Equal(t, "Main Road", p.Boundaries.East)
	assert.Equal(t, "PID-98765", p.Tax.PropertyID)
	assert.Equal(t, "12,500 INR", p.Tax.AnnualTax)
	assert.Equal(t, "5,000,000 INR", p.Investment.RegistrationValue)
	assert.Equal(t, "4,800,000 INR", p.Investment.ConsiderationValue)

	require.Len(t, p.Titles, 2)
	assert.Equal(t, "SJR-01-12345", p.Titles[0].DeedNumber)
	assert.Equal(t, "Major Bank Corp", p.Titles[1].SecondParty)

	assert.Len(t, c.Observations, 4)
	assert.Empty(t, c.Issues)
}

func TestLoadCanonicalYAMLPreservesTitleOrder(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "case.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "case-0042", c.ID)
	require.Len(t, c.Property.Titles, 2)
	// Received order is kept even though it is not chronological.
	assert.Equal(t, "SJR-02-54321", c.Property.Titles[0].DeedNumber)
	assert.Equal(t, "SJR-01-12345", c.Property.Titles[1].DeedNumber)

	require.Len(t, c.Issues, 3)
	require.NotNil(t, c.Issues[0].TitleRef)
	assert.Equal(t, "SJR-02-54321", *c.Issues[0].TitleRef)
	assert.Nil(t, c.Issues[0].TaxRef)
	require.NotNil(t, c.Issues[1].TaxRef)
	assert.Nil(t, c.Issues[2].TitleRef)
	assert.Nil(t, c.Issues[2].TaxRef)
}

func TestParseLegacyVariants(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		check func(t *testing.T, c *types.ReportCase)
	}{
		{
			name: "camelCase property block with bracket boundaries",
			data: `{"_id": "a1", "STATE": {"id": "29", "name": "KARNATAKA"},
  "jaagaFetch": {"propertyInfo": {"propertyOwnerName": "R. Rao", "built": "900 sqft",
  "boundaries": {"[N]": "Lake", "[S]": "Road", "[E]": "Plot 4", "[W]": "Plot 2"}},
  "taxdetails": {"propertyId": "P-1", "plinthArea": 900, "annualTax": 4100, "arrearTax": "0"}}}`,
			check: func(t *testing.T, c *types.ReportCase) {
				assert.Equal(t, "KARNATAKA", c.State)
				assert.Equal(t, "R. Rao", c.Property.OwnerName)
				assert.Equal(t, "900 sqft", c.Property.BuiltArea)
				assert.Equal(t, types.Boundaries{North: "Lake", South: "Road", East: "Plot 4", West: "Plot 2"}, c.Property.Boundaries)
				assert.Equal(t, "900", c.Property.Tax.PlinthArea)
				assert.Equal(t, "4100", c.Property.Tax.AnnualTax)
			},
		},
		{
			name: "field/value investment rows",
			data: `{"_id": "a2", "jaagaFetch": {"Property_Investment_Overview": [
  {"field": "Registration Value", "value": "10"},
  {"field": "Consideration Value", "value": "9"}]}}`,
			check: func(t *testing.T, c *types.ReportCase) {
				assert.Equal(t, types.InvestmentFigures{RegistrationValue: "10", ConsiderationValue: "9"}, c.Property.Investment)
			},
		},
		{
			name: "structured description items",
			data: `{"_id": "a3", "jaagaFetch": {"AIGeneratedDescription": [
  {"issue": "Mortgage open", "ecValue": "D-7", "comment": "No release deed"},
  "plain note",
  {"issue": "Tax arrears", "taxValue": "", "comment": "Check dues"}]}}`,
			check: func(t *testing.T, c *types.ReportCase) {
				require.Len(t, c.Issues, 2)
				require.NotNil(t, c.Issues[0].TitleRef)
				assert.Equal(t, "D-7", *c.Issues[0].TitleRef)
				assert.Nil(t, c.Issues[0].TaxRef)
				require.NotNil(t, c.Issues[1].TaxRef, "present but empty reference stays distinct from absent")
				assert.Equal(t, "", *c.Issues[1].TaxRef)
				assert.Equal(t, []string{"plain note"}, c.Observations)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, variant, err := Parse([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, VariantLegacy, variant)
			tt.check(t, c)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, _, err := Parse([]byte("id: \"\"\nstate: KA\n"))
	assert.ErrorIs(t, err, ErrNoCaseID)

	_, _, err = Parse([]byte(":::bad\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestIssuesFromObservations(t *testing.T) {
	got := IssuesFromObservations([]string{"first", "  ", "second "})
	assert.Equal(t, []types.RiskIssue{{Issue: "first"}, {Issue: "second"}}, got)
	assert.Nil(t, IssuesFromObservations(nil))
}

func TestCaseIssuesPrefersStructured(t *testing.T) {
	structured := []types.RiskIssue{{Issue: "structured", Comment: "c"}}

	c := &types.ReportCase{Issues: structured, Observations: []string{"ignored"}}
	assert.Equal(t, structured, CaseIssues(c))

	c = &types.ReportCase{Observations: []string{"derived"}}
	assert.Equal(t, []types.RiskIssue{{Issue: "derived"}}, CaseIssues(c))
}

func TestLoadWritesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id: x\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "x", c.ID)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
