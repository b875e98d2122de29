package rag

// FallbackReply is returned verbatim whenever the completion service
// fails; chat callers always receive some reply text.
const FallbackReply = "I'm sorry, I couldn't process that right now. Please try again later."

// systemPrompt anchors ungrounded conversation turns.
const systemPrompt = "You are LegalHub's assistant: provide concise, accurate legal information, " +
	"explain legal terms in plain language, and when unsure, state that you are not a lawyer."

// augmentedPromptFormat wraps retrieved context and the user question.
// Args: context block, user query.
const augmentedPromptFormat = `You are a legal assistant. Use the following context from legal documents to answer the user's question.

LEGAL CONTEXT:
%s

USER QUESTION: %s

INSTRUCTIONS:
- Base your answer on the provided legal context
- If the context doesn't contain relevant information, state that clearly
- Provide accurate legal information based on the documents
- When uncertain, recommend consulting with a qualified lawyer`

// contextChunkFormat prefixes each retrieved chunk inside the context
// block. Args: source tag, relevance score, chunk content.
const contextChunkFormat = "[Source: %s (relevance: %.2f)]\n%s\n"
