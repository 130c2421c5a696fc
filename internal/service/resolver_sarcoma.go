package service

import (
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

var sarcomaSpread = DecisionList[domain.TNM]{
	{"M1", mIs("M1"), "Stage IVB"},
	{"N1", nIs("N1"), "Stage IIIC"},
}

// Leiomyosarcoma and endometrial stromal sarcoma share a table; adenosarcoma
// splits stage I by depth of myometrial invasion.
var (
	sarcomaCascade = append(append(DecisionList[domain.TNM]{}, sarcomaSpread...), tTable([][2]string{
		{"T1a", "Stage IA"},
		{"T1b", "Stage IB"},
		{"T2a", "Stage IIA"},
		{"T2b", "Stage IIB"},
		{"T3a", "Stage IIIA"},
		{"T3b", "Stage IIIB"},
		{"T4", "Stage IVA"},
	})...)

	adenosarcomaCascade = append(append(DecisionList[domain.TNM]{}, sarcomaSpread...), tTable([][2]string{
		{"T1a", "Stage IA"},
		{"T1b", "Stage IB"},
		{"T1c", "Stage IC"},
		{"T2a", "Stage IIA"},
		{"T2b", "Stage IIB"},
		{"T3a", "Stage IIIA"},
		{"T3b", "Stage IIIB"},
		{"T4", "Stage IVA"},
	})...)
)

// ResolveSarcoma stages uterine sarcoma using the subtype's table.
func ResolveSarcoma(f *domain.SarcomaFindings) *domain.ClassificationResult {
	tnm := domain.TNM{T: f.T, N: f.N, M: f.M}
	cascade := sarcomaCascade
	if f.Subtype == domain.SarcomaAdenosarcoma {
		cascade = adenosarcomaCascade
	}
	return resolve(cascade, tnm, domain.ProtocolUterineSarcoma, tnm,
		"stage not defined", "primary tumor code "+f.T+" is not staged for "+string(f.Subtype))
}
