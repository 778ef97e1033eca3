package meta

import (
	"fmt"
	"strings"
)

// Error codes. Callers map them to human readable (localized) messages, Args
// carry the substitutions.
const (
	CodeMissingMandatory              = "missingMandatory"
	CodeMissingChar                   = "missingChar"
	CodeEOF                           = "EOF"
	CodeMissingEOT                    = "missingEOT"
	CodeMissingValue                  = "missingValue"
	CodeInvalidWord                   = "invalidWord"
	CodeInvalidString                 = "invalidString"
	CodeInvalidNumber                 = "invalidNumber"
	CodeInvalidCharacter              = "invalidCharacter"
	CodeUnknownJSONLiteral            = "unknownJSONLiteral"
	CodeUnknownMeta                   = "unknownMeta"
	CodeUnknownVarType                = "unknownVarType"
	CodeUnknownPreprocessor           = "unknownPreprocessor"
	CodeInvalidVersion                = "invalidVersion"
	CodeInvalidURL                    = "invalidURL"
	CodeInvalidURLProtocol            = "invalidURLProtocol"
	CodeInvalidCheckboxDefault        = "invalidCheckboxDefault"
	CodeInvalidColor                  = "invalidColor"
	CodeInvalidRange                  = "invalidRange"
	CodeInvalidRangeValue             = "invalidRangeValue"
	CodeInvalidRangeTooManyValues     = "invalidRangeTooManyValues"
	CodeInvalidRangeMultipleUnits     = "invalidRangeMultipleUnits"
	CodeInvalidRangeDefault           = "invalidRangeDefault"
	CodeInvalidRangeMin               = "invalidRangeMin"
	CodeInvalidRangeMax               = "invalidRangeMax"
	CodeInvalidRangeStep              = "invalidRangeStep"
	CodeInvalidRangeUnits             = "invalidRangeUnits"
	CodeInvalidSelect                 = "invalidSelect"
	CodeInvalidSelectValue            = "invalidSelectValue"
	CodeInvalidSelectLabel            = "invalidSelectLabel"
	CodeInvalidSelectEmptyOptions     = "invalidSelectEmptyOptions"
	CodeInvalidSelectNameDuplicated   = "invalidSelectNameDuplicated"
	CodeInvalidSelectMultipleDefaults = "invalidSelectMultipleDefaults"
	CodeInvalidSelectValueMismatch    = "invalidSelectValueMismatch"
)

// noIndex marks error which position is not known yet, parser fills it with
// the position of the directive being processed.
const noIndex = -1

// ParseError is a structured metadata error.
type ParseError struct {
	Code    string
	Args    []string
	Message string
	// Index is byte offset of the problem in the parsed text (plus any
	// offset requested by the caller).
	Index int
}

func (e *ParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s (%s at %d)", e.Message, e.Code, e.Index)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

func newError(code string, index int, msg string, args ...string) *ParseError {
	return &ParseError{Code: code, Args: args, Message: msg, Index: index}
}

func missingCharError(index int, chars ...string) *ParseError {
	quoted := make([]string, 0, len(chars))
	for _, c := range chars {
		quoted = append(quoted, "'"+c+"'")
	}
	return newError(CodeMissingChar, index, "Missing character: "+strings.Join(quoted, ", "), chars...)
}

func eofError(index int) *ParseError {
	return newError(CodeEOF, index, "Unexpected end of file")
}
