// Package providers registers every built-in agent provider.
package providers

import (
	_ "truthbot/internal/agent/gemini"
	_ "truthbot/internal/agent/openai"
)
