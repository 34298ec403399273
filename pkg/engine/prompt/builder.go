package prompt

import (
	"fmt"
	"strings"
)

// Builders for every reasoning-service call the engine makes. Each returns a
// single self-contained prompt; the engine never keeps chat state on the
// model side.

func writeConversationContext(b *strings.Builder, convContext string) {
	if convContext == "" {
		return
	}
	b.WriteString("<conversation_context>\n")
	b.WriteString(convContext)
	b.WriteString("\n</conversation_context>\n\n")
}

// Clarity builds the clarity-classification prompt. The response contract is
// sentinel-prefixed: "CLEAR: <reason>" or "NEEDS_CLARIFICATION: <what is
// missing>", optionally preceded by a "COMBINED: <standalone question>" line
// when the question only makes sense merged with prior context.
func Clarity(question, convContext string) string {
	var b strings.Builder

	writeConversationContext(&b, convContext)

	b.WriteString("<task>\n")
	b.WriteString("Decide whether the user's question is answerable as-is, combining it with the conversation context first when the question references earlier turns.\n")
	b.WriteString("</task>\n\n")

	b.WriteString("<guidelines>\n")
	b.WriteString("- If the question uses an unclear referent (\"it\", \"this\", \"the method\") that the context resolves, rewrite it as one standalone question\n")
	b.WriteString("- Only combine when the result is a meaningful, complete question that preserves the user's intent\n")
	b.WriteString("- A question needs clarification when key details are missing, terms have no clear referent, or it allows fundamentally different readings\n")
	b.WriteString("- Be conservative: better to ask than to assume\n")
	b.WriteString("</guidelines>\n\n")

	b.WriteString("<response_format>\n")
	b.WriteString("If you rewrote the question, first output exactly one line: COMBINED: <standalone question>\n")
	b.WriteString("Then output exactly one line, either:\n")
	b.WriteString("CLEAR: <brief reason why it is answerable>\n")
	b.WriteString("NEEDS_CLARIFICATION: <the specific clarification needed>\n")
	b.WriteString("</response_format>\n\n")

	b.WriteString("<user_question>\n")
	b.WriteString(question)
	b.WriteString("\n</user_question>\n")

	return b.String()
}

// Route builds the knowledge-source routing prompt. Response contract:
// "CORPUS: <reason>", "WEB: <reason>" or "BOTH: <reason>".
func Route(question, convContext string) string {
	var b strings.Builder

	writeConversationContext(&b, convContext)

	b.WriteString("<task>\n")
	b.WriteString("Decide which knowledge source should answer the question: the private document corpus, live web search, or both.\n")
	b.WriteString("</task>\n\n")

	b.WriteString("<guidelines>\n")
	b.WriteString("- CORPUS: questions about the ingested documents, their findings, methods, authors, or data\n")
	b.WriteString("- WEB: current events, general knowledge, tutorials, product or company information\n")
	b.WriteString("- BOTH: questions that need document findings contextualized with current outside information\n")
	b.WriteString("- Corpus misses fall back to web search automatically, so prefer CORPUS when in doubt\n")
	b.WriteString("</guidelines>\n\n")

	b.WriteString("<response_format>\n")
	b.WriteString("Respond with exactly one line, one of:\n")
	b.WriteString("CORPUS: <reason>\n")
	b.WriteString("WEB: <reason>\n")
	b.WriteString("BOTH: <reason>\n")
	b.WriteString("</response_format>\n\n")

	b.WriteString("<user_question>\n")
	b.WriteString(question)
	b.WriteString("\n</user_question>\n")

	return b.String()
}

// CorpusAnswer builds the grounded-answer prompt for corpus retrieval.
// evidenceBlock is the pre-formatted passage list.
func CorpusAnswer(question, convContext, evidenceBlock string) string {
	var b strings.Builder

	writeConversationContext(&b, convContext)

	b.WriteString("<retrieved_passages>\n")
	b.WriteString(evidenceBlock)
	b.WriteString("</retrieved_passages>\n\n")

	b.WriteString("<task>\n")
	b.WriteString("Answer the question using ONLY the retrieved passages.\n")
	b.WriteString("Cite document names and chunk numbers where possible.\n")
	b.WriteString("If the passages do not contain enough information, say so clearly.\n")
	b.WriteString("</task>\n\n")

	b.WriteString("<user_question>\n")
	b.WriteString(question)
	b.WriteString("\n</user_question>\n")

	return b.String()
}

// WebAnswer builds the grounded-answer prompt for web retrieval.
func WebAnswer(question, convContext, evidenceBlock string) string {
	var b strings.Builder

	writeConversationContext(&b, convContext)

	b.WriteString("<search_results>\n")
	b.WriteString(evidenceBlock)
	b.WriteString("</search_results>\n\n")

	b.WriteString("<task>\n")
	b.WriteString("Answer the question using the web search results, synthesizing across sources.\n")
	b.WriteString("Cite sources with their URLs.\n")
	b.WriteString("If the results do not contain relevant information, say so clearly.\n")
	b.WriteString("</task>\n\n")

	b.WriteString("<user_question>\n")
	b.WriteString(question)
	b.WriteString("\n</user_question>\n")

	return b.String()
}

// Merge builds the dual-source synthesis prompt. Every claim in the output
// must be attributed to the corpus or the web.
func Merge(question, convContext, corpusAnswer, webAnswer string) string {
	var b strings.Builder

	writeConversationContext(&b, convContext)

	b.WriteString("<corpus_result>\n")
	b.WriteString(corpusAnswer)
	b.WriteString("\n</corpus_result>\n\n")

	b.WriteString("<web_result>\n")
	b.WriteString(webAnswer)
	b.WriteString("\n</web_result>\n\n")

	b.WriteString("<task>\n")
	b.WriteString("Combine both results into one complete answer.\n")
	b.WriteString("Attribute every claim to its source using \"From the documents:\" or \"From the web:\" phrasing.\n")
	b.WriteString("Point out contradictions between the sources instead of papering over them.\n")
	b.WriteString("Prefer the documents for theory, the web for current information.\n")
	b.WriteString("</task>\n\n")

	b.WriteString("<user_question>\n")
	b.WriteString(question)
	b.WriteString("\n</user_question>\n")

	return b.String()
}

// Attribute builds the single-source restatement prompt. sourceLabel is a
// human phrase like "the document corpus" or "web search".
func Attribute(question, convContext, sourceLabel, answer string) string {
	var b strings.Builder

	writeConversationContext(&b, convContext)

	b.WriteString("<source_result>\n")
	b.WriteString(answer)
	b.WriteString("\n</source_result>\n\n")

	b.WriteString("<task>\n")
	b.WriteString(fmt.Sprintf("Restate the result as a complete answer, making explicit that it comes from %s.\n", sourceLabel))
	b.WriteString(fmt.Sprintf("Start the answer with \"From %s:\" and keep all citations.\n", sourceLabel))
	b.WriteString("</task>\n\n")

	b.WriteString("<user_question>\n")
	b.WriteString(question)
	b.WriteString("\n</user_question>\n")

	return b.String()
}
