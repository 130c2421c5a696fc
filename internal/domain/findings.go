package domain

// FindingSet is the typed record of clinical observations for one protocol.
// Every field is required; Validate reports the first field that is missing or
// outside its enumeration.
type FindingSet interface {
	Protocol() Protocol
	Validate() error
}

// Canonicalizer is implemented by finding sets that accept more than one
// spelling of a value. Canonical returns the set in its single normal form.
type Canonicalizer interface {
	Canonical() FindingSet
}

// Canonical returns the normal form of findings, or findings itself when it
// has only one spelling.
func Canonical(findings FindingSet) FindingSet {
	if c, ok := findings.(Canonicalizer); ok {
		return c.Canonical()
	}
	return findings
}

// validateCode checks a TNM code field against its closed set.
func validateCode(protocol Protocol, field, code string, set CodeSet) error {
	if !set.Contains(code) {
		return enumError(protocol, field, code, set.Codes())
	}
	return nil
}

// validateTNM checks all three code fields in T, N, M order.
func validateTNM(protocol Protocol, tnm TNM, t, n, m CodeSet) error {
	if err := validateCode(protocol, "t", tnm.T, t); err != nil {
		return err
	}
	if err := validateCode(protocol, "n", tnm.N, n); err != nil {
		return err
	}
	return validateCode(protocol, "m", tnm.M, m)
}

// OvarianFindings selects the three TNM codes directly.
type OvarianFindings struct {
	T string `json:"t" yaml:"t"`
	N string `json:"n" yaml:"n"`
	M string `json:"m" yaml:"m"`
}

func (f *OvarianFindings) Protocol() Protocol { return ProtocolOvarian }

func (f *OvarianFindings) Validate() error {
	return validateTNM(ProtocolOvarian, TNM{f.T, f.N, f.M}, OvarianTCodes, OvarianNCodes, OvarianMCodes)
}

// CervicalFindings selects the three TNM codes directly.
type CervicalFindings struct {
	T string `json:"t" yaml:"t"`
	N string `json:"n" yaml:"n"`
	M string `json:"m" yaml:"m"`
}

func (f *CervicalFindings) Protocol() Protocol { return ProtocolCervical }

func (f *CervicalFindings) Validate() error {
	return validateTNM(ProtocolCervical, TNM{f.T, f.N, f.M}, CervicalTCodes, CervicalNCodes, CervicalMCodes)
}

// SarcomaSubtype is the histologic subtype of a uterine sarcoma.
type SarcomaSubtype string

const (
	SarcomaLeiomyosarcoma     SarcomaSubtype = "leiomyosarcoma"
	SarcomaEndometrialStromal SarcomaSubtype = "endometrial_stromal_sarcoma"
	SarcomaAdenosarcoma       SarcomaSubtype = "adenosarcoma"
)

// SarcomaSubtypes lists the subtypes in presentation order.
var SarcomaSubtypes = CodeSet{
	{string(SarcomaLeiomyosarcoma), "Leiomyosarcoma"},
	{string(SarcomaEndometrialStromal), "Endometrial stromal sarcoma"},
	{string(SarcomaAdenosarcoma), "Müllerian adenosarcoma"},
}

// TCodes returns the primary-tumor enumeration that applies to the subtype.
func (s SarcomaSubtype) TCodes() CodeSet {
	if s == SarcomaAdenosarcoma {
		return AdenosarcomaTCodes
	}
	return SarcomaTCodes
}

// SarcomaFindings carries the subtype plus its TNM codes.
type SarcomaFindings struct {
	Subtype SarcomaSubtype `json:"subtype" yaml:"subtype"`
	T       string         `json:"t" yaml:"t"`
	N       string         `json:"n" yaml:"n"`
	M       string         `json:"m" yaml:"m"`
}

func (f *SarcomaFindings) Protocol() Protocol { return ProtocolUterineSarcoma }

func (f *SarcomaFindings) Validate() error {
	if err := validateCode(ProtocolUterineSarcoma, "subtype", string(f.Subtype), SarcomaSubtypes); err != nil {
		return err
	}
	return validateTNM(ProtocolUterineSarcoma, TNM{f.T, f.N, f.M}, f.Subtype.TCodes(), SarcomaNCodes, SarcomaMCodes)
}

// VulvarMelanomaFindings selects the three TNM codes directly.
type VulvarMelanomaFindings struct {
	T string `json:"t" yaml:"t"`
	N string `json:"n" yaml:"n"`
	M string `json:"m" yaml:"m"`
}

func (f *VulvarMelanomaFindings) Protocol() Protocol { return ProtocolVulvarMelanoma }

func (f *VulvarMelanomaFindings) Validate() error {
	return validateTNM(ProtocolVulvarMelanoma, TNM{f.T, f.N, f.M}, MelanomaTCodes, MelanomaNCodes, MelanomaMCodes)
}

// VaginalFindings selects the three TNM codes directly.
type VaginalFindings struct {
	T string `json:"t" yaml:"t"`
	N string `json:"n" yaml:"n"`
	M string `json:"m" yaml:"m"`
}

func (f *VaginalFindings) Protocol() Protocol { return ProtocolVaginal }

func (f *VaginalFindings) Validate() error {
	return validateTNM(ProtocolVaginal, TNM{f.T, f.N, f.M}, VaginalTCodes, VaginalNCodes, VaginalMCodes)
}

// VulvarFindings selects the three TNM codes directly.
type VulvarFindings struct {
	T string `json:"t" yaml:"t"`
	N string `json:"n" yaml:"n"`
	M string `json:"m" yaml:"m"`
}

func (f *VulvarFindings) Protocol() Protocol { return ProtocolVulvar }

func (f *VulvarFindings) Validate() error {
	return validateTNM(ProtocolVulvar, TNM{f.T, f.N, f.M}, VulvarTCodes, VulvarNCodes, VulvarMCodes)
}
