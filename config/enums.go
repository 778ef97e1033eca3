package config

//go:generate go tool go-enum --marshal --names --nocase

// Specification of requested output type.
// ENUM(css, json)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtCss:
		return ".css"
	case OutputFmtJson:
		return ".json"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
