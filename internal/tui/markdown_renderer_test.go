package tui

import "testing"

func TestBulletsToMarkdown(t *testing.T) {
	got := bulletsToMarkdown("Próximos passos:\n• Enviar proposta\n  •  Ligar ao cliente")
	want := "Próximos passos:\n- Enviar proposta\n- Ligar ao cliente"
	if got != want {
		t.Fatalf("bulletsToMarkdown() = %q, want %q", got, want)
	}
}
