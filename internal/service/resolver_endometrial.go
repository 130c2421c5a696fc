package service

import (
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// endometrialCase is what the FIGO cascade sees: the raw findings plus the
// derived TNM codes.
type endometrialCase struct {
	f   *domain.EndometrialFindings
	tnm domain.TNM
}

const endometrialSentinel = "insufficient data for standard pathway"

// EndometrialT derives the primary tumor code. Overrides run in a fixed order
// and each replaces the previous value.
func EndometrialT(f *domain.EndometrialFindings) string {
	t := "T1a"
	if f.MyometrialInvasion == domain.InvasionHalfOrMore {
		t = "T1b"
	}
	if f.CervicalStromalInvasion {
		t = "T2"
	}
	if f.SerosalInvasion || f.AdnexalInvolvement {
		t = "T3a"
	}
	if f.VaginalInvolvement || f.ParametrialInvolvement || f.PelvicPeritoneal {
		t = "T3b"
	}
	if f.BladderMucosaInvasion || f.IntestinalMucosaInvasion {
		t = "T4"
	}
	return t
}

// EndometrialN derives the regional node code. Para-aortic involvement
// supersedes pelvic.
func EndometrialN(f *domain.EndometrialFindings) string {
	micro := f.NodeMetastasisSize == domain.NodeMetastasisMicro
	switch {
	case f.ParaAorticNodes && micro:
		return "N2mi"
	case f.ParaAorticNodes:
		return "N2a"
	case f.PelvicNodes && micro:
		return "N1mi"
	case f.PelvicNodes:
		return "N1a"
	default:
		return "N0"
	}
}

// EndometrialM derives the distant metastasis code.
func EndometrialM(f *domain.EndometrialFindings) string {
	if f.DistantMetastasis {
		return "M1"
	}
	return "M0"
}

func molecularEligible(c endometrialCase) bool {
	return oneOf(c.tnm.T, []string{"T1a", "T1b", "T2"}) && c.tnm.N == "N0" && c.tnm.M == "M0"
}

// adnexalConfined is the narrow low-risk adnexal pattern: one side, intact
// capsule, minimal invasion and LVSI, nothing else escalating.
func adnexalConfined(f *domain.EndometrialFindings) bool {
	return !f.AdnexalBilateral &&
		!f.AdnexalCapsuleRuptured &&
		f.MyometrialInvasion != domain.InvasionHalfOrMore &&
		f.LVSI != domain.LVSIExtensive &&
		!f.CervicalStromalInvasion &&
		!f.VaginalInvolvement &&
		!f.ParametrialInvolvement &&
		!f.PelvicPeritoneal
}

func nonAggressive(c endometrialCase) bool {
	return c.f.Histology == domain.HistologyNonAggressive
}

func aggressive(c endometrialCase) bool {
	return c.f.Histology == domain.HistologyAggressive
}

// endometrialCascade is the FIGO 2023 cascade. Molecular overrides come first,
// then metastasis, then anatomic extent, then histology-conditioned early stages.
var endometrialCascade = DecisionList[endometrialCase]{
	{"pole-mutant", func(c endometrialCase) bool { return c.f.POLEMutant && molecularEligible(c) }, "IAmPOLEmut"},
	{"p53-abnormal", func(c endometrialCase) bool { return c.f.P53Abnormal && molecularEligible(c) }, "IICmp53abn"},
	{"distant-metastasis", func(c endometrialCase) bool { return c.tnm.M == "M1" }, "IVC"},
	{"upper-abdominal-peritoneal", func(c endometrialCase) bool { return c.f.UpperAbdominalPeritoneal }, "IVB"},
	{"T4", func(c endometrialCase) bool { return c.tnm.T == "T4" }, "IVA"},
	{"N2mi", func(c endometrialCase) bool { return c.tnm.N == "N2mi" }, "IIIC2i"},
	{"N2a", func(c endometrialCase) bool { return c.tnm.N == "N2a" }, "IIIC2ii"},
	{"N1mi", func(c endometrialCase) bool { return c.tnm.N == "N1mi" }, "IIIC1i"},
	{"N1a", func(c endometrialCase) bool { return c.tnm.N == "N1a" }, "IIIC1ii"},
	{"serosa", func(c endometrialCase) bool { return c.f.SerosalInvasion }, "IIIA2"},
	{"adnexa-confined", func(c endometrialCase) bool { return c.f.AdnexalInvolvement && adnexalConfined(c.f) }, "IA3"},
	{"adnexa", func(c endometrialCase) bool { return c.f.AdnexalInvolvement }, "IIIA1"},
	{"vagina-parametrium", func(c endometrialCase) bool { return c.f.VaginalInvolvement || c.f.ParametrialInvolvement }, "IIIB1"},
	{"pelvic-peritoneum", func(c endometrialCase) bool { return c.f.PelvicPeritoneal }, "IIIB2"},
	{"aggressive-invasive", func(c endometrialCase) bool {
		return aggressive(c) && c.f.MyometrialInvasion != domain.InvasionNone
	}, "IIC"},
	{"cervical-stroma", func(c endometrialCase) bool { return c.f.CervicalStromalInvasion && nonAggressive(c) }, "IIA"},
	{"extensive-lvsi", func(c endometrialCase) bool { return c.f.LVSI == domain.LVSIExtensive && nonAggressive(c) }, "IIB"},
	{"non-aggressive-ge50", func(c endometrialCase) bool {
		return nonAggressive(c) && c.f.MyometrialInvasion == domain.InvasionHalfOrMore
	}, "IB"},
	{"non-aggressive-lt50", func(c endometrialCase) bool {
		return nonAggressive(c) && c.f.MyometrialInvasion == domain.InvasionLessThanHalf
	}, "IA2"},
	{"non-aggressive-none", func(c endometrialCase) bool {
		return nonAggressive(c) && c.f.MyometrialInvasion == domain.InvasionNone
	}, "1A1"},
	{"aggressive-no-invasion", func(c endometrialCase) bool {
		return aggressive(c) && c.f.MyometrialInvasion == domain.InvasionNone
	}, "IC"},
}

// ResolveEndometrial derives TNM and the FIGO 2023 stage. Findings must already
// be validated.
func ResolveEndometrial(f *domain.EndometrialFindings) *domain.ClassificationResult {
	c := endometrialCase{
		f:   f,
		tnm: domain.TNM{T: EndometrialT(f), N: EndometrialN(f), M: EndometrialM(f)},
	}
	return resolve(endometrialCascade, c, domain.ProtocolEndometrial, c.tnm,
		endometrialSentinel, "no FIGO pathway matched the combination of findings")
}
