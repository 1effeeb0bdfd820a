// Package providers implements the Generator interface for each supported
// LLM provider used to draft commit messages.
//
// Supported providers: Anthropic (Claude), OpenAI (GPT), Google (Gemini), and
// Ollama / LM Studio for local models.
//
// All providers share one JSON request helper that retries rate limits and
// server errors with exponential back-off. Endpoints can be overridden
// through the environment, which is also how tests redirect calls to local
// httptest servers.
//
// Use [New] to obtain a Generator by provider name and model string.
package providers
