package utils

import (
	"strings"

	"github.com/google/uuid"
)

// Document number prefixes
const (
	QuotePrefix   = "QT"
	OrderPrefix   = "SO"
	InvoicePrefix = "INV"
)

// GenerateReferenceNo generates a unique document number such as QT-1A2B3C4D
func GenerateReferenceNo(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.New().String()[:8])
}
