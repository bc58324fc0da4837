package verify

import "strings"

type FailureKind string

const (
	FailureMalformedAudio      FailureKind = "malformed_audio"
	FailureUnsupportedLanguage FailureKind = "unsupported_language"
	FailureNoSpeech            FailureKind = "no_speech"
	FailureProviderUnavailable FailureKind = "provider_unavailable"
	FailureProviderQuota       FailureKind = "provider_quota"
	FailureProviderTimeout     FailureKind = "provider_timeout"
	FailureProviderError       FailureKind = "provider_error"
)

type Failure struct {
	Kind   FailureKind
	Detail string
}

// Result is the outcome of one verification. A non-nil Failure implies
// Matched is false and RecognizedText is empty.
type Result struct {
	Matched        bool
	RecognizedText string
	Failure        *Failure
}

func failed(kind FailureKind, detail string) Result {
	return Result{Failure: &Failure{Kind: kind, Detail: detail}}
}

// Response is the JSON body returned by the relay.
type Response struct {
	Match          bool    `json:"match"`
	RecognizedText string  `json:"recognized_text"`
	Error          *string `json:"error"`
}

func (r Result) Response() Response {
	resp := Response{Match: r.Matched, RecognizedText: r.RecognizedText}
	if r.Failure != nil {
		msg := r.Failure.Detail
		resp.Error = &msg
		resp.Match = false
		resp.RecognizedText = ""
	}
	return resp
}

// NormalizeText lowercases s, trims it and collapses inner whitespace runs.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// TextsMatch compares recognized and reference text after normalization.
func TextsMatch(recognized, reference string) bool {
	return NormalizeText(recognized) == NormalizeText(reference)
}
