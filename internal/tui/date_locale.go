package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/evanschultz/agenda/internal/domain"
	"golang.org/x/text/language"
)

// dateFormat describes how dates are shown and typed for one locale.
type dateFormat struct {
	DisplayLayout string
	Hint          string
	InputLayouts  []string
	Portuguese    bool
}

var (
	monthNamesPT = []string{"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho", "Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro"}
	weekdaysPT   = []string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}
	weekdaysEN   = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

// detectLocaleTag reads LC_ALL, LC_TIME, then LANG.
func detectLocaleTag() language.Tag {
	for _, key := range []string{"LC_ALL", "LC_TIME", "LANG"} {
		raw := normalizeLocale(os.Getenv(key))
		if raw == "" {
			continue
		}
		if tag, err := language.Parse(raw); err == nil {
			return tag
		}
	}
	return language.Und
}

// normalizeLocale turns "pt_BR.UTF-8@euro" into "pt-BR".
func normalizeLocale(raw string) string {
	locale := strings.TrimSpace(raw)
	if idx := strings.Index(locale, "."); idx >= 0 {
		locale = locale[:idx]
	}
	if idx := strings.Index(locale, "@"); idx >= 0 {
		locale = locale[:idx]
	}
	return strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
}

// dateFormatFor picks day-first, month-first, or ISO input from the locale region.
func dateFormatFor(tag language.Tag) dateFormat {
	base, _ := tag.Base()
	portuguese := base.String() == "pt" || tag == language.Und
	if tag == language.Und {
		return dateFormat{DisplayLayout: "02/01/2006", Hint: "DD/MM/AAAA", InputLayouts: []string{"2/1/2006", "02/01/2006"}, Portuguese: true}
	}
	region, _ := tag.Region()
	switch region.String() {
	case "US":
		return dateFormat{DisplayLayout: "01/02/2006", Hint: "MM/DD/YYYY", InputLayouts: []string{"1/2/2006", "01/02/2006"}, Portuguese: portuguese}
	case "CA", "CN", "JP", "KR", "HU", "LT":
		return dateFormat{DisplayLayout: domain.DateLayout, Hint: "YYYY-MM-DD", Portuguese: portuguese}
	}
	hint := "DD/MM/YYYY"
	if portuguese {
		hint = "DD/MM/AAAA"
	}
	return dateFormat{DisplayLayout: "02/01/2006", Hint: hint, InputLayouts: []string{"2/1/2006", "02/01/2006", "2-1-2006"}, Portuguese: portuguese}
}

// display renders an ISO date in the locale layout; unparsable values pass through.
func (f dateFormat) display(iso string) string {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return ""
	}
	d, err := domain.ParseDate(iso)
	if err != nil || f.DisplayLayout == "" {
		return iso
	}
	return d.Format(f.DisplayLayout)
}

// parse converts typed input into an ISO date. ISO input is always accepted.
func (f dateFormat) parse(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if d, err := domain.ParseDate(raw); err == nil {
		return domain.FormatDate(d), nil
	}
	for _, layout := range f.InputLayouts {
		if d, err := time.Parse(layout, raw); err == nil {
			return domain.FormatDate(d), nil
		}
	}
	return "", fmt.Errorf("%w: %q (use %s)", domain.ErrInvalidDate, raw, f.Hint)
}

func (f dateFormat) monthName(m time.Month) string {
	if f.Portuguese && m >= time.January && m <= time.December {
		return monthNamesPT[m-1]
	}
	return m.String()
}

func (f dateFormat) weekdays() []string {
	if f.Portuguese {
		return weekdaysPT
	}
	return weekdaysEN
}
