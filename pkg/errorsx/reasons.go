package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonValidation  ReasonCode = "validation"
	ReasonSafetyBlock ReasonCode = "safety_block"
	ReasonRiskBlock   ReasonCode = "risk_block"

	ReasonLLMMissingAPIKey ReasonCode = "llm_missing_api_key"
	ReasonLLMTransport     ReasonCode = "llm_transport"
	ReasonLLMRateLimit     ReasonCode = "llm_rate_limit"
	ReasonLLMParse         ReasonCode = "llm_parse"
	ReasonLLMSchema        ReasonCode = "llm_schema"
	ReasonLLMEmptyText     ReasonCode = "llm_empty_text"

	ReasonContractBoot ReasonCode = "contract_boot"
)
