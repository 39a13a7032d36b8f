package notify

import "testing"

func TestLocalize(t *testing.T) {
	cases := []struct {
		locale string
		id     MessageID
		want   string
	}{
		{"pt-BR", MsgGenerationDone, "Criação finalizada!"},
		{"pt", MsgKeyDisconnected, "Chave API desconectada"},
		{"en-US", MsgGenerationDone, "Creation finished!"},
		{"", MsgKeyRequired, "Please provide your API key to continue"},
		{"fr", MsgGalleryCleared, "History cleared"},
	}
	for _, tc := range cases {
		if got := Localize(tc.locale, tc.id); got != tc.want {
			t.Fatalf("Localize(%q, %q) = %q, want %q", tc.locale, tc.id, got, tc.want)
		}
	}
}

func TestLocalize_UnknownID(t *testing.T) {
	if got := Localize("en", MessageID("mystery")); got != "mystery" {
		t.Fatalf("unexpected fallback %q", got)
	}
}
