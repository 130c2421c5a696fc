package service

import (
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

func enumField(field string, set domain.CodeSet) domain.FieldCatalog {
	return domain.FieldCatalog{Field: field, Kind: "enum", Options: set}
}

func codeFields(t, n, m domain.CodeSet) []domain.FieldCatalog {
	return []domain.FieldCatalog{
		{Field: "t", Kind: "code", Options: t},
		{Field: "n", Kind: "code", Options: n},
		{Field: "m", Kind: "code", Options: m},
	}
}

// Describe lists the fields a protocol's finding set takes and the values each
// accepts.
func Describe(protocol domain.Protocol) ([]domain.FieldCatalog, error) {
	switch protocol {
	case domain.ProtocolEndometrial:
		fields := []domain.FieldCatalog{
			enumField("histology", domain.HistologyOptions),
			enumField("myometrial_invasion", domain.MyometrialInvasionOptions),
			enumField("lvsi", domain.LVSIOptions),
			enumField("node_metastasis_size", domain.NodeMetastasisSizeOptions),
		}
		for _, flag := range domain.EndometrialFlagFields {
			fields = append(fields, domain.FieldCatalog{Field: flag, Kind: "bool"})
		}
		return fields, nil
	case domain.ProtocolOvarian:
		return codeFields(domain.OvarianTCodes, domain.OvarianNCodes, domain.OvarianMCodes), nil
	case domain.ProtocolCervical:
		return codeFields(domain.CervicalTCodes, domain.CervicalNCodes, domain.CervicalMCodes), nil
	case domain.ProtocolUterineSarcoma:
		fields := []domain.FieldCatalog{enumField("subtype", domain.SarcomaSubtypes)}
		fields = append(fields, codeFields(domain.AdenosarcomaTCodes, domain.SarcomaNCodes, domain.SarcomaMCodes)...)
		return fields, nil
	case domain.ProtocolVulvarMelanoma:
		return codeFields(domain.MelanomaTCodes, domain.MelanomaNCodes, domain.MelanomaMCodes), nil
	case domain.ProtocolVaginal:
		return codeFields(domain.VaginalTCodes, domain.VaginalNCodes, domain.VaginalMCodes), nil
	case domain.ProtocolGTN:
		fields := []domain.FieldCatalog{
			{Field: "t", Kind: "code", Options: domain.GTNTCodes},
			{Field: "m", Kind: "code", Options: domain.GTNMCodes},
		}
		for _, factor := range domain.GTNRiskFactors {
			fields = append(fields, factorField(factor))
		}
		return fields, nil
	case domain.ProtocolVulvar:
		return codeFields(domain.VulvarTCodes, domain.VulvarNCodes, domain.VulvarMCodes), nil
	default:
		return nil, domain.NewInvalidInputError(protocol, "protocol", "unknown staging protocol", string(protocol))
	}
}

func factorField(factor domain.RiskFactor) domain.FieldCatalog {
	options := make([]domain.CodeOption, len(factor.Options))
	for i, opt := range factor.Options {
		options[i] = domain.CodeOption{Code: opt.Code, Description: opt.Label}
	}
	return domain.FieldCatalog{Field: factor.Name, Kind: "factor", Options: options}
}
