package app

import (
	"strings"

	"golang.org/x/text/cases"
)

// nextStepRule maps one meeting-notes keyword to a suggested action.
type nextStepRule struct {
	keyword string
	action  string
}

// nextStepRules are matched in order; each match contributes one line.
var nextStepRules = []nextStepRule{
	{keyword: "decisão", action: "Documentar decisão tomada"},
	{keyword: "ação", action: "Definir responsável e prazo"},
	{keyword: "pendência", action: "Acompanhar pendência"},
	{keyword: "prazo", action: "Adicionar ao calendário"},
	{keyword: "revisar", action: "Agendar revisão"},
	{keyword: "aprovar", action: "Solicitar aprovação"},
	{keyword: "agendar", action: "Agendar nova reunião"},
	{keyword: "enviar", action: "Enviar material/email"},
}

var defaultNextSteps = []string{
	"Revisar notas da reunião",
	"Definir próximas ações",
}

// NextStepsFromNotes returns bullet lines for every keyword found in notes.
// Empty notes yield an empty string.
func NextStepsFromNotes(notes string) string {
	if strings.TrimSpace(notes) == "" {
		return ""
	}
	fold := cases.Fold()
	folded := fold.String(notes)

	var lines []string
	for _, rule := range nextStepRules {
		if strings.Contains(folded, fold.String(rule.keyword)) {
			lines = append(lines, "• "+rule.action)
		}
	}
	if len(lines) == 0 {
		for _, action := range defaultNextSteps {
			lines = append(lines, "• "+action)
		}
	}
	return strings.Join(lines, "\n")
}
