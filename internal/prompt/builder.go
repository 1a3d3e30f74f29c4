package prompt

import "strings"

const instruction = `You are a helpful assistant. Answer the user's question using ONLY the following notes.
If the answer is not in the notes, say the information is not available.`

// Build composes the single user message sent to the model. The notes are
// injected verbatim, whatever their size.
func Build(persona, notes, question string) string {
	var b strings.Builder
	b.Grow(len(persona) + len(instruction) + len(notes) + len(question) + 64)

	if p := strings.TrimSpace(persona); p != "" {
		b.WriteString(p)
		b.WriteString("\n")
	}
	b.WriteString(instruction)
	b.WriteString("\n\nNotes:\n---\n")
	b.WriteString(notes)
	b.WriteString("\n---\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n")
	return b.String()
}
