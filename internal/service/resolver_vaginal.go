package service

import (
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

var vaginalCascade = DecisionList[domain.TNM]{
	{"M1", mIs("M1"), "Stage IVB"},
	{"T4-M0", all(tIs("T4"), mIs("M0")), "Stage IVA"},
	{"node-positive-M0", all(tIs("T1a", "T1b", "T2a", "T2b", "T3"), nIs("N1"), mIs("M0")), "Stage III"},
	{"T3-N0-M0", all(tIs("T3"), nIs("N0"), mIs("M0")), "Stage III"},
	{"T2-N0-M0", all(tIs("T2a", "T2b"), nIs("N0"), mIs("M0")), "Stage II"},
	{"T1-N0-M0", all(tIs("T1a", "T1b"), nIs("N0"), mIs("M0")), "Stage I"},
}

// ResolveVaginal stages vaginal carcinoma.
func ResolveVaginal(f *domain.VaginalFindings) *domain.ClassificationResult {
	tnm := domain.TNM{T: f.T, N: f.N, M: f.M}
	return resolve(vaginalCascade, tnm, domain.ProtocolVaginal, tnm,
		"insufficient/non-conforming data", "TNM combination does not conform to a FIGO stage group")
}
