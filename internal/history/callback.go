package history

import (
	"fmt"
	"strings"

	"github.com/temirov/reauthor/internal/identity"
)

const (
	callbackTemplateConstant     = "return %[1]s if %[1]s != %[2]s else %[3]s"
	callbackFlagTemplateConstant = "--%s-callback"
	bytesLiteralPrefixConstant   = `b"`
	bytesLiteralSuffixConstant   = `"`
	escapedByteTemplateConstant  = `\x%02x`
	escapedBackslashConstant     = `\\`
	escapedQuoteConstant         = `\"`
	firstPrintableByteConstant   = 0x20
	lastPrintableByteConstant    = 0x7e
)

// buildCallback renders the git-filter-repo callback body replacing oldValue by
// newValue for field. Both values are compared as raw bytes.
func buildCallback(field identity.Field, oldValue string, newValue string) string {
	return fmt.Sprintf(callbackTemplateConstant, string(field), bytesLiteral(oldValue), bytesLiteral(newValue))
}

func callbackFlag(field identity.Field) string {
	return fmt.Sprintf(callbackFlagTemplateConstant, string(field))
}

// bytesLiteral encodes value as a python bytes literal. Anything outside
// printable ASCII is emitted as a \x escape so UTF-8 input survives unchanged.
func bytesLiteral(value string) string {
	var builder strings.Builder
	builder.WriteString(bytesLiteralPrefixConstant)
	for index := 0; index < len(value); index++ {
		currentByte := value[index]
		switch {
		case currentByte == '\\':
			builder.WriteString(escapedBackslashConstant)
		case currentByte == '"':
			builder.WriteString(escapedQuoteConstant)
		case currentByte >= firstPrintableByteConstant && currentByte <= lastPrintableByteConstant:
			builder.WriteByte(currentByte)
		default:
			fmt.Fprintf(&builder, escapedByteTemplateConstant, currentByte)
		}
	}
	builder.WriteString(bytesLiteralSuffixConstant)
	return builder.String()
}
