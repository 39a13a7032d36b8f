package notify

import "golang.org/x/text/language"

// MessageID names a user-facing outcome string.
type MessageID string

const (
	MsgGenerationDone  MessageID = "generation_done"
	MsgKeyActivated    MessageID = "key_activated"
	MsgKeyDisconnected MessageID = "key_disconnected"
	MsgKeyRequired     MessageID = "key_required"
	MsgGalleryCleared  MessageID = "gallery_cleared"
	MsgUnexpectedError MessageID = "unexpected_error"
)

// The service shipped first for a Brazilian audience; Portuguese strings are
// the originals and English is the fallback.
var catalog = map[MessageID]map[language.Tag]string{
	MsgGenerationDone: {
		language.English:    "Creation finished!",
		language.Portuguese: "Criação finalizada!",
	},
	MsgKeyActivated: {
		language.English:    "CapyVision Elite activated!",
		language.Portuguese: "CapyVision Elite Ativado!",
	},
	MsgKeyDisconnected: {
		language.English:    "API key disconnected",
		language.Portuguese: "Chave API desconectada",
	},
	MsgKeyRequired: {
		language.English:    "Please provide your API key to continue",
		language.Portuguese: "Por favor, insira sua chave API para continuar",
	},
	MsgGalleryCleared: {
		language.English:    "History cleared",
		language.Portuguese: "Histórico limpo",
	},
	MsgUnexpectedError: {
		language.English:    "An unexpected error occurred",
		language.Portuguese: "Ocorreu um erro inesperado",
	},
}

var matcher = language.NewMatcher([]language.Tag{
	language.English,
	language.Portuguese,
})

// Localize resolves a message for a BCP 47 locale string, falling back to
// English for anything the catalog does not cover.
func Localize(locale string, id MessageID) string {
	variants, ok := catalog[id]
	if !ok {
		return string(id)
	}
	tag, _ := language.MatchStrings(matcher, locale)
	base, _ := tag.Base()
	for candidate, text := range variants {
		if b, _ := candidate.Base(); b == base {
			return text
		}
	}
	return variants[language.English]
}
