package reply

// Entry pairs a trigger phrase with the canned response sent back for it.
type Entry struct {
	Phrase   string `json:"phrase"`
	Response string `json:"response"`
}

// Seed provides the default replies ChatzinhoBot ships with.
func Seed() []Entry {
	return []Entry{
		{Phrase: "ola", Response: "Oi! Como posso ajudá-lo?"},
		{Phrase: "oi", Response: "Olá! Como posso ajudá-lo?"},
		{Phrase: "tudo bem?", Response: "Estou bem, obrigado!"},
		{Phrase: "gustavo francischini", Response: "Esse é o meu criador!"},
		{Phrase: "qual seu nome?", Response: "Sou o ChatzinhoBot!"},
	}
}
