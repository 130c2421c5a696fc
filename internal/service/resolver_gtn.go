package service

import (
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// gtnCascade stages from anatomy alone; the prognostic score never feeds it.
var gtnCascade = DecisionList[domain.TNM]{
	{"T1-M0", all(tIs("T1"), mIs("M0")), "Stage I"},
	{"T2-M0", all(tIs("T2"), mIs("M0")), "Stage II"},
	{"M1a", mIs("M1a"), "Stage III"},
	{"M1b", mIs("M1b"), "Stage IV"},
}

// StageGTN returns the FIGO anatomic stage for gestational trophoblastic
// neoplasia. N is not part of GTN staging and is left empty.
func StageGTN(t, m string) *domain.ClassificationResult {
	tnm := domain.TNM{T: t, M: m}
	return resolve(gtnCascade, tnm, domain.ProtocolGTN, tnm,
		"cannot classify", "T/M combination has no FIGO mapping")
}

// ScoreGTNRisk sums the prognostic factor weights. A score below
// domain.GTNHighRiskThreshold is low risk. Input must already be validated.
func ScoreGTNRisk(in *domain.GTNRiskInput) *domain.RiskAssessment {
	assessment := &domain.RiskAssessment{
		Category: domain.RiskLow,
		Factors:  make([]domain.FactorScore, 0, len(domain.GTNRiskFactors)),
	}
	for i, value := range in.Values() {
		factor := domain.GTNRiskFactors[i]
		opt, _ := factor.Lookup(value)
		assessment.Score += opt.Weight
		assessment.Factors = append(assessment.Factors, domain.FactorScore{
			Factor: factor.Name,
			Option: opt.Code,
			Label:  opt.Label,
			Weight: opt.Weight,
		})
	}
	if assessment.Score >= domain.GTNHighRiskThreshold {
		assessment.Category = domain.RiskHigh
	}
	return assessment
}

// ResolveGTN reports the anatomic stage and the prognostic risk together.
func ResolveGTN(f *domain.GTNFindings) *domain.ClassificationResult {
	result := StageGTN(f.T, f.M)
	result.Risk = ScoreGTNRisk(&f.GTNRiskInput)
	return result
}
