package assistant

import (
	"fmt"
	"strings"
)

// Messages holds the user-facing texts. The defaults are Armenian, the
// language of the storefront.
type Messages struct {
	Greeting        string
	NotFound        string // %s is replaced with the searched term
	ConnectionError string
	ComposeApology  string
	Currency        string
	SearchLink      string
}

// DefaultMessages returns the Armenian message set.
func DefaultMessages() Messages {
	return Messages{
		Greeting:        "Բարև Ձեզ 👋 Ես խանութի օնլայն խորհրդատուն եմ։ Գրեք, թե ինչ ապրանք եք փնտրում, և ես կօգնեմ գտնել այն։",
		NotFound:        "Տվյալ ապրանքը `%s` չի գտնվել 😕",
		ConnectionError: "Կայքին միանալու ժամանակ սխալ տեղի ունեցավ 😕 Խնդրում ենք փորձել մի փոքր ուշ։",
		ComposeApology:  "Ներողություն, չհաջողվեց պատրաստել պատասխանը 😕 Խնդրում ենք փորձել կրկին։",
		Currency:        "դրամ",
		SearchLink:      "Տեսնել բոլոր արդյունքները կայքում",
	}
}

func (m Messages) notFound(term string) string {
	if strings.Contains(m.NotFound, "%s") {
		return fmt.Sprintf(m.NotFound, term)
	}
	return m.NotFound
}

func (m Messages) withDefaults() Messages {
	defaults := DefaultMessages()
	if strings.TrimSpace(m.Greeting) == "" {
		m.Greeting = defaults.Greeting
	}
	if strings.TrimSpace(m.NotFound) == "" {
		m.NotFound = defaults.NotFound
	}
	if strings.TrimSpace(m.ConnectionError) == "" {
		m.ConnectionError = defaults.ConnectionError
	}
	if strings.TrimSpace(m.ComposeApology) == "" {
		m.ComposeApology = defaults.ComposeApology
	}
	if strings.TrimSpace(m.Currency) == "" {
		m.Currency = defaults.Currency
	}
	if strings.TrimSpace(m.SearchLink) == "" {
		m.SearchLink = defaults.SearchLink
	}
	return m
}
