package domain

import (
	"context"
)

// StageClassifier maps a finding set to its TNM codes and FIGO stage
type StageClassifier interface {
	Classify(ctx context.Context, protocol Protocol, findings FindingSet) (*ClassificationResult, error)
	AssessGTNRisk(ctx context.Context, input *GTNRiskInput) (*RiskAssessment, error)
}

// ProtocolCatalog describes the selectable fields of each protocol
type ProtocolCatalog interface {
	Describe(protocol Protocol) ([]FieldCatalog, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetFeedbackConfig() *FeedbackConfig
	GetAIBridgeConfig() *AIBridgeConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
