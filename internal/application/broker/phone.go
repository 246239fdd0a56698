package broker

import (
	"strings"

	"github.com/jhoicas/Emlak-api/internal/domain"
)

// NormalizePhone lleva el número a formato E.164 (+90XXXXXXXXXX para números locales).
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case strings.HasPrefix(digits, "00"):
		digits = digits[2:]
	case len(digits) == 11 && digits[0] == '0':
		digits = "90" + digits[1:]
	case len(digits) == 10 && digits[0] == '5':
		digits = "90" + digits
	}
	if len(digits) < 10 || len(digits) > 15 {
		return "", domain.Validation("teléfono inválido %q", raw)
	}
	return "+" + digits, nil
}
