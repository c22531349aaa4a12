// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Placeholder is rendered wherever an optional field has no value, so a
// report never silently omits a field.
const Placeholder = "N/A"

// RegistrationOffice identifies the sub-registrar office a deed was registered at.
type RegistrationOffice struct {
	// Name is the office name (e.g. "SHIVAJINAGAR").
	Name string `json:"name" yaml:"name"`

	// Code is the office code (e.g. "BNG-SJR").
	Code string `json:"code" yaml:"code"`
}

// Boundaries describes what lies on each cardinal side of the property.
type Boundaries struct {
	North string `json:"north" yaml:"north"`
	South string `json:"south" yaml:"south"`
	East  string `json:"east" yaml:"east"`
	West  string `json:"west" yaml:"west"`
}

// TaxDetails holds the municipal tax record for the property.
type TaxDetails struct {
	PropertyID string `json:"property_id" yaml:"property_id"`
	OwnerName  string `json:"owner_name" yaml:"owner_name"`
	Locality   string `json:"locality" yaml:"locality"`
	PlinthArea string `json:"plinth_area" yaml:"plinth_area"`
	AnnualTax  string `json:"annual_tax" yaml:"annual_tax"`
	ArrearTax  string `json:"arrear_tax" yaml:"arrear_tax"`
}

// TitleRecord is one registered deed or encumbrance entry. Records are kept
// in the order they were received; no chronological ordering is implied.
type TitleRecord struct {
	DeedNumber  string `json:"deed_number" yaml:"deed_number"`
	DeedDate    string `json:"deed_date" yaml:"deed_date"`
	DeedType    string `json:"deed_type" yaml:"deed_type"`
	FirstParty  string `json:"first_party" yaml:"first_party"`
	SecondParty string `json:"second_party" yaml:"second_party"`

	// Office is the registering office name.
	Office string `json:"office" yaml:"office"`
}

// InvestmentFigures compares the declared registration value with the
// consideration actually paid.
type InvestmentFigures struct {
	RegistrationValue  string `json:"registration_value" yaml:"registration_value"`
	ConsiderationValue string `json:"consideration_value" yaml:"consideration_value"`
}

// PropertyRecord bundles everything fetched about the property itself.
type PropertyRecord struct {
	OwnerName    string     `json:"owner_name" yaml:"owner_name"`
	BuiltArea    string     `json:"built_area" yaml:"built_area"`
	Survey       string     `json:"survey" yaml:"survey"`
	Block        string     `json:"block" yaml:"block"`
	Extent       string     `json:"extent" yaml:"extent"`
	PropertyType string     `json:"property_type" yaml:"property_type"`
	Village      string     `json:"village" yaml:"village"`
	Address      string     `json:"address" yaml:"address"`
	Boundaries   Boundaries `json:"boundaries" yaml:"boundaries"`

	// Tax is the municipal tax record.
	Tax TaxDetails `json:"tax" yaml:"tax"`

	// Titles lists the encumbrance records in received order.
	Titles []TitleRecord `json:"titles" yaml:"titles"`

	// Investment holds the registration vs. consideration figures.
	Investment InvestmentFigures `json:"investment" yaml:"investment"`
}

// ReportCase is one property verification case: the registration details of
// the order plus the fetched property bundle and raw risk observations.
type ReportCase struct {
	// ID identifies the case; the downloaded artifact is named after it.
	ID string `json:"id" yaml:"id"`

	// State is the jurisdiction name (e.g. "KARNATAKA").
	State string `json:"state" yaml:"state"`

	// Office is the registering office.
	Office RegistrationOffice `json:"office" yaml:"office"`

	DocumentNumber   string `json:"document_number" yaml:"document_number"`
	RegistrationYear string `json:"registration_year" yaml:"registration_year"`

	// TaxReference is the property tax identification number (PTIN).
	TaxReference string `json:"tax_reference" yaml:"tax_reference"`

	// SRN is the service request number shown on the report header.
	SRN string `json:"srn" yaml:"srn"`

	// Status is the submission status of the order.
	Status string `json:"status" yaml:"status"`

	// Mode and Service describe how the order was placed (optional).
	Mode    string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Service string `json:"service,omitempty" yaml:"service,omitempty"`

	Property PropertyRecord `json:"property" yaml:"property"`

	// Observations are unstructured risk notes; each one becomes a RiskIssue.
	Observations []string `json:"observations,omitempty" yaml:"observations,omitempty"`

	// Issues are risk issues that arrived already structured.
	Issues []RiskIssue `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// RiskIssue is one structured risk observation. A nil reference means the
// issue carries no cross-reference, which is distinct from an empty value.
type RiskIssue struct {
	// Issue is a short label for the risk.
	Issue string `json:"issue" yaml:"issue"`

	// Comment elaborates on the issue.
	Comment string `json:"comment" yaml:"comment"`

	// TitleRef is a related value from the title records (e.g. a deed number).
	TitleRef *string `json:"title_ref,omitempty" yaml:"title_ref,omitempty"`

	// TaxRef is a related value from the tax details (e.g. annual tax).
	TaxRef *string `json:"tax_ref,omitempty" yaml:"tax_ref,omitempty"`
}

// RiskReport is the ordered issue list plus the synthesized conclusion.
// Issues is positionally identical to the summarizer's input.
type RiskReport struct {
	Issues []RiskIssue `json:"issues" yaml:"issues"`

	// Conclusion is the generated summary paragraph.
	Conclusion string `json:"conclusion,omitempty" yaml:"conclusion,omitempty"`

	// HasConclusion is false when the report was produced in pass-through
	// mode. Callers treat that as valid, not as a failure.
	HasConclusion bool `json:"has_conclusion" yaml:"has_conclusion"`
}

// StringRef returns a pointer to s, for building RiskIssue references.
func StringRef(s string) *string {
	return &s
}
