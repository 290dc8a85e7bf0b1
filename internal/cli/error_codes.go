package cli

const (
	codeUsage   = "SIMBATCH_E_USAGE"
	codeIO      = "SIMBATCH_E_IO"
	codeDesign  = "SIMBATCH_E_DESIGN"
	codeSandbox = "SIMBATCH_E_SANDBOX"
	codeEngine  = "SIMBATCH_E_ENGINE"
	codeLock    = "SIMBATCH_E_LOCK"
)
