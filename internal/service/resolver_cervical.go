package service

import (
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

// cervicalCascade follows FIGO 2018. Any nodal finding other than N0,
// isolated tumor cells included, lifts the case to IIIC.
var cervicalCascade = append(DecisionList[domain.TNM]{
	{"T4-M0", all(tIs("T4"), mIs("M0")), "Stage IVA"},
	{"T4", tIs("T4"), "Stage IVB"},
	{"M1", mIs("M1"), "Stage IVB"},
	{"node-positive", func(tnm domain.TNM) bool { return tnm.N != "N0" }, "Stage IIIC"},
}, tTable([][2]string{
	{"T1a1", "Stage IA1"},
	{"T1a2", "Stage IA2"},
	{"T1b1", "Stage IB1"},
	{"T1b2", "Stage IB2"},
	{"T1b3", "Stage IB3"},
	{"T2a1", "Stage IIA1"},
	{"T2a2", "Stage IIA2"},
	{"T2b", "Stage IIB"},
	{"T3a", "Stage IIIA"},
	{"T3b", "Stage IIIB"},
	{"T3c1", "Stage IIIC1"},
	{"T3c2", "Stage IIIC2"},
})...)

// ResolveCervical stages cervical carcinoma. TX and T0 have no FIGO
// equivalent and yield the "cannot classify" outcome.
func ResolveCervical(f *domain.CervicalFindings) *domain.ClassificationResult {
	tnm := domain.TNM{T: f.T, N: f.N, M: f.M}
	return resolve(cervicalCascade, tnm, domain.ProtocolCervical, tnm,
		"cannot classify", "primary tumor code "+f.T+" has no FIGO mapping")
}
