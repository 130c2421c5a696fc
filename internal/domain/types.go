// Package domain contains the core entities for gynecologic cancer staging:
// protocols, TNM codes, finding sets and classification results.
//
// Staging references: AJCC Cancer Staging Manual (8th ed.) and the FIGO staging
// systems for gynecologic malignancies (endometrial 2023, cervical 2018, ovarian 2014).
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Protocol identifies one of the eight staging rule sets.
type Protocol string

const (
	ProtocolEndometrial    Protocol = "endometrial"
	ProtocolOvarian        Protocol = "ovarian"
	ProtocolCervical       Protocol = "cervical"
	ProtocolUterineSarcoma Protocol = "uterine_sarcoma"
	ProtocolVulvarMelanoma Protocol = "vulvar_melanoma"
	ProtocolVaginal        Protocol = "vaginal"
	ProtocolGTN            Protocol = "gtn"
	ProtocolVulvar         Protocol = "vulvar"
)

// Protocols lists every protocol in presentation order.
var Protocols = []Protocol{
	ProtocolEndometrial,
	ProtocolOvarian,
	ProtocolCervical,
	ProtocolUterineSarcoma,
	ProtocolVulvarMelanoma,
	ProtocolVaginal,
	ProtocolGTN,
	ProtocolVulvar,
}

// ErrUnknownProtocol is returned when a protocol identifier is not one of Protocols.
var ErrUnknownProtocol = errors.New("unknown staging protocol")

// IsValid reports whether p is one of the supported protocols.
func (p Protocol) IsValid() bool {
	switch p {
	case ProtocolEndometrial, ProtocolOvarian, ProtocolCervical, ProtocolUterineSarcoma,
		ProtocolVulvarMelanoma, ProtocolVaginal, ProtocolGTN, ProtocolVulvar:
		return true
	default:
		return false
	}
}

// String returns the protocol identifier.
func (p Protocol) String() string {
	return string(p)
}

// DisplayName returns the English name followed by the Traditional Chinese name
// used on the clinical form.
func (p Protocol) DisplayName() string {
	switch p {
	case ProtocolEndometrial:
		return "Endometrial cancer (子宮內膜癌)"
	case ProtocolOvarian:
		return "Ovarian cancer (卵巢癌)"
	case ProtocolCervical:
		return "Cervical cancer (子宮頸癌)"
	case ProtocolUterineSarcoma:
		return "Uterine sarcoma (子宮惡性肉瘤)"
	case ProtocolVulvarMelanoma:
		return "Vulvar melanoma (外陰黑色素瘤)"
	case ProtocolVaginal:
		return "Vaginal cancer (陰道癌)"
	case ProtocolGTN:
		return "Gestational trophoblastic neoplasia (GTN)"
	case ProtocolVulvar:
		return "Vulvar cancer (外陰癌)"
	default:
		return "Unknown protocol"
	}
}

// ParseProtocol converts user input into a Protocol. Matching ignores case,
// surrounding space and the '-' / '_' distinction.
func ParseProtocol(s string) (Protocol, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	p := Protocol(normalized)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownProtocol, s)
	}
	return p, nil
}

// LogFields returns structured logging fields for audit trails.
func (p Protocol) LogFields() map[string]any {
	return map[string]any{
		"protocol":      string(p),
		"protocol_name": p.DisplayName(),
		"is_valid":      p.IsValid(),
	}
}

// TNM is a primary tumor / regional node / distant metastasis code triple.
type TNM struct {
	T string `json:"t"`
	N string `json:"n,omitempty"`
	M string `json:"m"`
}

// String renders the triple as "T1a N0 M0". Empty parts are skipped, so GTN
// renders as "T1 M0".
func (t TNM) String() string {
	parts := make([]string, 0, 3)
	for _, code := range []string{t.T, t.N, t.M} {
		if code != "" {
			parts = append(parts, code)
		}
	}
	return strings.Join(parts, " ")
}

// RiskCategory is the GTN prognostic risk group.
type RiskCategory string

const (
	RiskLow  RiskCategory = "低風險"
	RiskHigh RiskCategory = "高風險"
)

// GTNHighRiskThreshold is the lowest prognostic score classified as high risk.
const GTNHighRiskThreshold = 7

// English returns the English name of the risk group.
func (r RiskCategory) English() string {
	switch r {
	case RiskLow:
		return "low risk"
	case RiskHigh:
		return "high risk"
	default:
		return "unknown"
	}
}

// FactorScore is the weight contributed by one GTN prognostic factor.
type FactorScore struct {
	Factor string `json:"factor"`
	Option string `json:"option"`
	Label  string `json:"label"`
	Weight int    `json:"weight"`
}

// RiskAssessment is the GTN prognostic score and its risk group.
type RiskAssessment struct {
	Score    int           `json:"score"`
	Category RiskCategory  `json:"category"`
	Factors  []FactorScore `json:"factors"`
}

// ClassificationResult is the outcome of one staging request. A result with
// Staged=false is the "cannot classify" outcome; Notes explains why.
type ClassificationResult struct {
	Protocol    Protocol        `json:"protocol"`
	TNM         TNM             `json:"tnm"`
	FIGOStage   string          `json:"figo_stage"`
	Staged      bool            `json:"staged"`
	Notes       string          `json:"notes,omitempty"`
	MatchedRule string          `json:"matched_rule,omitempty"`
	Risk        *RiskAssessment `json:"risk,omitempty"`
}

// TNMString returns the rendered TNM triple.
func (r *ClassificationResult) TNMString() string {
	return r.TNM.String()
}

// Summary returns a one-line, human-readable description of the result.
func (r *ClassificationResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: TNM %s, FIGO %s", r.Protocol.DisplayName(), r.TNM, r.FIGOStage)
	if r.Risk != nil {
		fmt.Fprintf(&b, ", risk score %d (%s)", r.Risk.Score, r.Risk.Category)
	}
	if !r.Staged && r.Notes != "" {
		fmt.Fprintf(&b, " [%s]", r.Notes)
	}
	return b.String()
}

// LogFields returns structured logging fields for audit trails.
func (r *ClassificationResult) LogFields() map[string]any {
	fields := map[string]any{
		"protocol":     string(r.Protocol),
		"tnm":          r.TNM.String(),
		"figo_stage":   r.FIGOStage,
		"staged":       r.Staged,
		"matched_rule": r.MatchedRule,
	}
	if r.Risk != nil {
		fields["risk_score"] = r.Risk.Score
		fields["risk_category"] = string(r.Risk.Category)
	}
	return fields
}

// CodeOption is one selectable clinical code. Code takes part in matching;
// Description is display text only.
type CodeOption struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// FieldCatalog describes one finding field and the values it accepts.
type FieldCatalog struct {
	Field   string       `json:"field"`
	Kind    string       `json:"kind"` // enum, code, bool, factor
	Options []CodeOption `json:"options,omitempty"`
}
