package service

import (
	"strings"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

func localized(tnm domain.TNM) bool {
	return tnm.N == "N0" && tnm.M == "M0"
}

func localizedT(codes ...string) func(domain.TNM) bool {
	return all(localized, tIs(codes...))
}

// melanomaCascade applies the cutaneous melanoma stage groups. Later entries
// are broader, so order is significant.
var melanomaCascade = DecisionList[domain.TNM]{
	{"Tis-N0-M0", localizedT("Tis"), "Stage 0"},
	{"T1a-N0-M0", localizedT("T1a"), "Stage IA"},
	{"T1b/T2a-N0-M0", localizedT("T1b", "T2a"), "Stage IB"},
	{"T2b/T3a-N0-M0", localizedT("T2b", "T3a"), "Stage IIA"},
	{"T3b/T4a-N0-M0", localizedT("T3b", "T4a"), "Stage IIB"},
	{"T4b-N0-M0", localizedT("T4b"), "Stage IIC"},
	{"node-positive-M0", func(tnm domain.TNM) bool { return tnm.N != "N0" && tnm.M == "M0" }, "Stage III"},
	{"M1", func(tnm domain.TNM) bool { return strings.HasPrefix(tnm.M, "M1") }, "Stage IV"},
}

// ResolveVulvarMelanoma stages vulvar melanoma. Ulceration and LDH tiers are
// part of the code and do not change the group.
func ResolveVulvarMelanoma(f *domain.VulvarMelanomaFindings) *domain.ClassificationResult {
	tnm := domain.TNM{T: f.T, N: f.N, M: f.M}
	return resolve(melanomaCascade, tnm, domain.ProtocolVulvarMelanoma, tnm,
		"cannot classify", "node-negative disease requires an assessable primary tumor")
}
