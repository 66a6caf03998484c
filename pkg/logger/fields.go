package logger

const (
	FieldEndpoint = "endpoint"
	FieldTurn     = "turn"
	FieldUserID   = "user_id"
	FieldBackend  = "backend"
	FieldError    = "error"

	FieldEntryCount       = "entry_count"
	FieldResponseLength   = "response_length"
	FieldTranscriptLength = "transcript_length"
)
