package service

import (
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// ovarianCascade orders distant metastasis first, then retroperitoneal nodes,
// then the T3, T2 and T1 tiers.
var ovarianCascade = append(DecisionList[domain.TNM]{
	{"M1a", mIs("M1a"), "Stage IVA"},
	{"M1b", mIs("M1b"), "Stage IVB"},
	{"N1a", nIs("N1a"), "Stage IIIA1(i)"},
	{"N1b", nIs("N1b"), "Stage IIIA1(ii)"},
}, tTable([][2]string{
	{"T3a", "Stage IIIA2"},
	{"T3b", "Stage IIIB"},
	{"T3c", "Stage IIIC"},
	{"T2a", "Stage IIA"},
	{"T2b", "Stage IIB"},
	{"T1a", "Stage IA"},
	{"T1b", "Stage IB"},
	{"T1c1", "Stage IC1"},
	{"T1c2", "Stage IC2"},
	{"T1c3", "Stage IC3"},
})...)

// ResolveOvarian stages ovarian, fallopian tube and primary peritoneal carcinoma.
// The TNM codes are reported exactly as selected.
func ResolveOvarian(f *domain.OvarianFindings) *domain.ClassificationResult {
	tnm := domain.TNM{T: f.T, N: f.N, M: f.M}
	return resolve(ovarianCascade, tnm, domain.ProtocolOvarian, tnm,
		"cannot classify", "TNM combination has no FIGO mapping")
}
