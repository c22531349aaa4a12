// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package caseload

import (
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/propverify/pkg/types"
)

// scalar decodes any YAML scalar (string, number, bool) as its literal text.
// The legacy schema mixes numbers and strings for the same fields.
type scalar string

func (s *scalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode && n.Tag != "!!null" {
		*s = scalar(n.Value)
	}
	return nil
}

func (s scalar) String() string { return string(s) }

type namedCode struct {
	Name scalar `yaml:"name"`
	Code scalar `yaml:"code"`
}

// legacyField is the upper-case wrapper object used for order attributes:
// {"name": ..., "id": ..., "value": <scalar or {name, code}>}. Name is usually
// the attribute label, except for STATE where older records carry the state
// name there and omit value.
type legacyField struct {
	Name  scalar    `yaml:"name"`
	Value yaml.Node `yaml:"value"`
}

// text returns the wrapped value. Object values yield their name.
func (f legacyField) text() string {
	switch f.Value.Kind {
	case yaml.ScalarNode:
		if f.Value.Tag == "!!null" {
			return ""
		}
		return f.Value.Value
	case yaml.MappingNode:
		var nc namedCode
		if err := f.Value.Decode(&nc); err == nil {
			return nc.Name.String()
		}
	}
	return ""
}

// office returns the wrapped {name, code} pair.
func (f legacyField) office() types.RegistrationOffice {
	var nc namedCode
	if f.Value.Kind == yaml.MappingNode {
		_ = f.Value.Decode(&nc)
	}
	return types.RegistrationOffice{Name: nc.Name.String(), Code: nc.Code.String()}
}

type legacyService struct {
	ID   scalar `yaml:"id"`
	Name scalar `yaml:"name"`
}

type legacyCase struct {
	ID             scalar          `yaml:"_id"`
	State          legacyField     `yaml:"STATE"`
	SRCode         legacyField     `yaml:"SR_CODE"`
	DocumentNumber legacyField     `yaml:"DOCUMENT_NUMBER"`
	Year           legacyField     `yaml:"YEAR"`
	PTIN           legacyField     `yaml:"PTIN"`
	Services       []legacyService `yaml:"services"`
	Mode           scalar          `yaml:"mode"`
	SRN            scalar          `yaml:"srn"`
	Status         scalar          `yaml:"status"`
	Fetch          legacyFetch     `yaml:"jaagaFetch"`
}

type legacyFetch struct {
	ECRecords   []legacyEC          `yaml:"ecRecords"`
	Investment  []map[string]scalar `yaml:"Property_Investment_Overview"`
	Property    legacyPropertyInfo  `yaml:"propertyInfo"`
	Tax         legacyTax           `yaml:"taxdetails"`
	Description []yaml.Node         `yaml:"AIGeneratedDescription"`
}

type legacyEC struct {
	DeedNo          scalar `yaml:"deedNo"`
	DeedDate        scalar `yaml:"deedDate"`
	DeedType        scalar `yaml:"deedType"`
	FirstPartyName  scalar `yaml:"firstPartyName"`
	SecondPartyName scalar `yaml:"secondPartyName"`
	SRO             scalar `yaml:"sro"`
}

// legacyPropertyInfo covers both revisions of the property block: camelCase
// keys with "[N]" style boundaries, and title-case keys with "North" style.
type legacyPropertyInfo struct {
	OwnerName    scalar            `yaml:"propertyOwnerName"`
	Built        scalar            `yaml:"built"`
	Block        scalar            `yaml:"block"`
	Survey       scalar            `yaml:"survey"`
	Extent       scalar            `yaml:"extent"`
	PropertyType scalar            `yaml:"propertyType"`
	Village      scalar            `yaml:"village"`
	Address      scalar            `yaml:"address"`
	Boundaries   map[string]scalar `yaml:"boundaries"`

	OwnerAlt      scalar            `yaml:"Owner"`
	BuiltAlt      scalar            `yaml:"Built Area"`
	BlockAlt      scalar            `yaml:"Block"`
	SurveyAlt     scalar            `yaml:"Survey"`
	ExtentAlt     scalar            `yaml:"Extent"`
	VillageAlt    scalar            `yaml:"Village"`
	AddressAlt    scalar            `yaml:"Address"`
	BoundariesAlt map[string]scalar `yaml:"Boundaries"`
}

type legacyTax struct {
	PropertyID scalar `yaml:"propertyId"`
	OwnerName  scalar `yaml:"ownerName"`
	Locality   scalar `yaml:"locality"`
	PlinthArea scalar `yaml:"plinthArea"`
	AnnualTax  scalar `yaml:"annualTax"`
	ArrearTax  scalar `yaml:"arrearTax"`

	PropertyIDAlt scalar `yaml:"PropertyID"`
	OwnerNameAlt  scalar `yaml:"OwnerName"`
	LocalityAlt   scalar `yaml:"Locality"`
	PlinthAreaAlt scalar `yaml:"PlinthArea"`
	AnnualTaxAlt  scalar `yaml:"AnnualTax"`
	ArrearTaxAlt  scalar `yaml:"ArrearTax"`
}

type legacyIssue struct {
	Issue    scalar  `yaml:"issue"`
	ECValue  *scalar `yaml:"ecValue"`
	TaxValue *scalar `yaml:"taxValue"`
	Comment  scalar  `yaml:"comment"`
}

// first returns the first non-blank value.
func first(values ...scalar) string {
	for _, v := range values {
		if s := strings.TrimSpace(string(v)); s != "" {
			return s
		}
	}
	return ""
}

func (lc legacyCase) canonical() *types.ReportCase {
	c := &types.ReportCase{
		ID:               lc.ID.String(),
		State:            first(scalar(lc.State.text()), lc.State.Name),
		Office:           lc.SRCode.office(),
		DocumentNumber:   lc.DocumentNumber.text(),
		RegistrationYear: lc.Year.text(),
		TaxReference:     lc.PTIN.text(),
		SRN:              lc.SRN.String(),
		Status:           lc.Status.String(),
		Mode:             lc.Mode.String(),
	}
	if len(lc.Services) > 0 {
		c.Service = lc.Services[0].Name.String()
	}

	p := lc.Fetch.Property
	c.Property = types.PropertyRecord{
		OwnerName:    first(p.OwnerName, p.OwnerAlt),
		BuiltArea:    first(p.Built, p.BuiltAlt),
		Survey:       first(p.Survey, p.SurveyAlt),
		Block:        first(p.Block, p.BlockAlt),
		Extent:       first(p.Extent, p.ExtentAlt),
		PropertyType: first(p.PropertyType),
		Village:      first(p.Village, p.VillageAlt),
		Address:      first(p.Address, p.AddressAlt),
		Boundaries: types.Boundaries{
			North: first(p.Boundaries["[N]"], p.BoundariesAlt["North"]),
			South: first(p.Boundaries["[S]"], p.BoundariesAlt["South"]),
			East:  first(p.Boundaries["[E]"], p.BoundariesAlt["East"]),
			West:  first(p.Boundaries["[W]"], p.BoundariesAlt["West"]),
		},
	}

	t := lc.Fetch.Tax
	c.Property.Tax = types.TaxDetails{
		PropertyID: first(t.PropertyID, t.PropertyIDAlt),
		OwnerName:  first(t.OwnerName, t.OwnerNameAlt),
		Locality:   first(t.Locality, t.LocalityAlt),
		PlinthArea: first(t.PlinthArea, t.PlinthAreaAlt),
		AnnualTax:  first(t.AnnualTax, t.AnnualTaxAlt),
		ArrearTax:  first(t.ArrearTax, t.ArrearTaxAlt),
	}

	for _, ec := range lc.Fetch.ECRecords {
		c.Property.Titles = append(c.Property.Titles, types.TitleRecord{
			DeedNumber:  ec.DeedNo.String(),
			DeedDate:    ec.DeedDate.String(),
			DeedType:    ec.DeedType.String(),
			FirstParty:  ec.FirstPartyName.String(),
			SecondParty: ec.SecondPartyName.String(),
			Office:      ec.SRO.String(),
		})
	}

	c.Property.Investment = investment(lc.Fetch.Investment)
	c.Observations, c.Issues = description(lc.Fetch.Description)
	return c
}

// investment reads the overview either as {field, value} rows or as a single
// row keyed by column heading.
func investment(rows []map[string]scalar) types.InvestmentFigures {
	var inv types.InvestmentFigures
	for _, row := range rows {
		if field, ok := row["field"]; ok {
			switch strings.ToLower(strings.TrimSpace(field.String())) {
			case "registration value":
				inv.RegistrationValue = row["value"].String()
			case "consideration value":
				inv.ConsiderationValue = row["value"].String()
			}
			continue
		}
		if v := first(row["Registration Value"]); v != "" {
			inv.RegistrationValue = v
		}
		if v := first(row["Consideration Value"]); v != "" {
			inv.ConsiderationValue = v
		}
	}
	return inv
}

// description splits the AI description list into plain-text observations
// and already structured issues, keeping each group's order.
func description(nodes []yaml.Node) ([]string, []types.RiskIssue) {
	var observations []string
	var issues []types.RiskIssue
	for i := range nodes {
		n := &nodes[i]
		switch n.Kind {
		case yaml.ScalarNode:
			observations = append(observations, n.Value)
		case yaml.MappingNode:
			var li legacyIssue
			if err := n.Decode(&li); err != nil {
				continue
			}
			issue := types.RiskIssue{Issue: li.Issue.String(), Comment: li.Comment.String()}
			if li.ECValue != nil {
				issue.TitleRef = types.StringRef(li.ECValue.String())
			}
			if li.TaxValue != nil {
				issue.TaxRef = types.StringRef(li.TaxValue.String())
			}
			issues = append(issues, issue)
		}
	}
	return observations, issues
}
