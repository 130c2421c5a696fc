package domain

import "strings"

// FactorOption is one ordinal choice of a GTN prognostic factor. Label is the
// form text; its leading number is the weight the option contributes.
type FactorOption struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// RiskFactor is a GTN prognostic factor and its closed set of options.
type RiskFactor struct {
	Name    string         `json:"name"`
	Title   string         `json:"title"`
	Options []FactorOption `json:"options"`
}

// Lookup resolves value against the factor's options. Either the option code
// or its full label is accepted.
func (f RiskFactor) Lookup(value string) (FactorOption, bool) {
	v := strings.TrimSpace(value)
	for _, opt := range f.Options {
		if opt.Code == v || opt.Label == v {
			return opt, true
		}
	}
	return FactorOption{}, false
}

// Codes returns the option codes in ordinal order.
func (f RiskFactor) Codes() []string {
	codes := make([]string, len(f.Options))
	for i, opt := range f.Options {
		codes[i] = opt.Code
	}
	return codes
}

// GTN prognostic factors (modified WHO scoring system adopted by FIGO).
var (
	FactorAge = RiskFactor{
		Name:  "age",
		Title: "年齡 (Age)",
		Options: []FactorOption{
			{"lt40", "0(<40歲)", 0},
			{"ge40", "1(≥40歲)", 1},
		},
	}
	FactorAntecedentPregnancy = RiskFactor{
		Name:  "antecedent_pregnancy",
		Title: "前次妊娠 (Antecedent pregnancy)",
		Options: []FactorOption{
			{"mole", "0(葡萄胎)", 0},
			{"abortion", "1(流產)", 1},
			{"term", "2(足月產)", 2},
		},
	}
	FactorInterval = RiskFactor{
		Name:  "interval_months",
		Title: "距前次妊娠間隔 (Interval from index pregnancy)",
		Options: []FactorOption{
			{"lt4", "0(<4個月)", 0},
			{"4to6", "1(4-6個月)", 1},
			{"7to12", "2(7-12個月)", 2},
			{"gt12", "4(>12個月)", 4},
		},
	}
	FactorPretreatmentHCG = RiskFactor{
		Name:  "pretreatment_hcg",
		Title: "治療前 hCG (IU/L)",
		Options: []FactorOption{
			{"lt1e3", "0(<10³)", 0},
			{"1e3to1e4", "1(10³-10⁴)", 1},
			{"1e4to1e5", "2(10⁴-10⁵)", 2},
			{"ge1e5", "4(≥10⁵)", 4},
		},
	}
	FactorTumorSize = RiskFactor{
		Name:  "tumor_size",
		Title: "最大腫瘤大小 (Largest tumor size, including uterus)",
		Options: []FactorOption{
			{"lt3cm", "0(<3公分)", 0},
			{"3to5cm", "1(3-5公分)", 1},
			{"ge5cm", "2(≥5公分)", 2},
		},
	}
	FactorMetastasisSite = RiskFactor{
		Name:  "metastasis_site",
		Title: "轉移部位 (Site of metastases)",
		Options: []FactorOption{
			{"lung", "0(肺)", 0},
			{"spleen_kidney", "1(脾、腎)", 1},
			{"gastrointestinal", "2(胃腸道)", 2},
			{"liver_brain", "4(肝、腦)", 4},
		},
	}
	FactorMetastasisCount = RiskFactor{
		Name:  "metastasis_count",
		Title: "轉移數目 (Number of metastases)",
		Options: []FactorOption{
			{"none", "0(0個)", 0},
			{"1to4", "1(1-4個)", 1},
			{"5to8", "2(5-8個)", 2},
			{"gt8", "4(>8個)", 4},
		},
	}
	FactorPriorChemotherapy = RiskFactor{
		Name:  "prior_chemotherapy",
		Title: "先前化療失敗 (Previous failed chemotherapy)",
		Options: []FactorOption{
			{"none", "0(無)", 0},
			{"single_drug", "2(單一藥物)", 2},
			{"multi_drug", "4(兩種以上藥物)", 4},
		},
	}
)

// GTNRiskFactors lists the eight factors in scoring order.
var GTNRiskFactors = []RiskFactor{
	FactorAge,
	FactorAntecedentPregnancy,
	FactorInterval,
	FactorPretreatmentHCG,
	FactorTumorSize,
	FactorMetastasisSite,
	FactorMetastasisCount,
	FactorPriorChemotherapy,
}

// GTNRiskInput holds one selected option (code or label) per prognostic factor.
type GTNRiskInput struct {
	Age                 string `json:"age" yaml:"age"`
	AntecedentPregnancy string `json:"antecedent_pregnancy" yaml:"antecedent_pregnancy"`
	IntervalMonths      string `json:"interval_months" yaml:"interval_months"`
	PretreatmentHCG     string `json:"pretreatment_hcg" yaml:"pretreatment_hcg"`
	TumorSize           string `json:"tumor_size" yaml:"tumor_size"`
	MetastasisSite      string `json:"metastasis_site" yaml:"metastasis_site"`
	MetastasisCount     string `json:"metastasis_count" yaml:"metastasis_count"`
	PriorChemotherapy   string `json:"prior_chemotherapy" yaml:"prior_chemotherapy"`
}

// Values pairs each factor with its selected value, in GTNRiskFactors order.
func (in *GTNRiskInput) Values() []string {
	return []string{
		in.Age,
		in.AntecedentPregnancy,
		in.IntervalMonths,
		in.PretreatmentHCG,
		in.TumorSize,
		in.MetastasisSite,
		in.MetastasisCount,
		in.PriorChemotherapy,
	}
}

// Validate reports the first factor whose value is neither a code nor a label.
func (in *GTNRiskInput) Validate() error {
	for i, value := range in.Values() {
		factor := GTNRiskFactors[i]
		if _, ok := factor.Lookup(value); !ok {
			return enumError(ProtocolGTN, factor.Name, value, factor.Codes())
		}
	}
	return nil
}

// Canonical returns a copy with every value replaced by its option code, so
// the code and label spellings of one case compare equal. Values that match no
// option are kept as given.
func (in GTNRiskInput) Canonical() GTNRiskInput {
	values := in.Values()
	for i, value := range values {
		if opt, ok := GTNRiskFactors[i].Lookup(value); ok {
			values[i] = opt.Code
		}
	}
	return GTNRiskInput{
		Age:                 values[0],
		AntecedentPregnancy: values[1],
		IntervalMonths:      values[2],
		PretreatmentHCG:     values[3],
		TumorSize:           values[4],
		MetastasisSite:      values[5],
		MetastasisCount:     values[6],
		PriorChemotherapy:   values[7],
	}
}

// GTNFindings carries the anatomic T/M codes plus the prognostic factors.
// GTN has no regional node category.
type GTNFindings struct {
	T string `json:"t" yaml:"t"`
	M string `json:"m" yaml:"m"`

	GTNRiskInput `yaml:",inline"`
}

func (f *GTNFindings) Protocol() Protocol { return ProtocolGTN }

func (f *GTNFindings) Validate() error {
	if err := validateCode(ProtocolGTN, "t", f.T, GTNTCodes); err != nil {
		return err
	}
	if err := validateCode(ProtocolGTN, "m", f.M, GTNMCodes); err != nil {
		return err
	}
	return f.GTNRiskInput.Validate()
}

func (f *GTNFindings) Canonical() FindingSet {
	return &GTNFindings{T: f.T, M: f.M, GTNRiskInput: f.GTNRiskInput.Canonical()}
}
