// Package analyst answers free-text analyst questions. Recognized intents are
// answered from the loaded snapshot; anything else goes to the remote bot,
// and the help text is returned when the bot is unavailable or generic.
package analyst

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Reply sources.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// genericMarkers identify canned bot answers that carry no analysis.
var genericMarkers = []string{"Try asking me to", "I can help you analyze"}

type Reply struct {
	Response string `json:"response"`
	Source   string `json:"source"`
}

// Asker is the remote bot.
type Asker interface {
	Ask(ctx context.Context, query, personaID string) (string, error)
}

type Analyst struct {
	remote Asker
	logger *zap.Logger
}

// New builds an analyst. A nil remote answers everything locally.
func New(remote Asker, logger *zap.Logger) *Analyst {
	return &Analyst{remote: remote, logger: logger}
}

func (a *Analyst) Ask(ctx context.Context, query, personaID string, kb Knowledge) Reply {
	if answer, ok := LocalAnswer(query, personaID, kb); ok {
		return Reply{Response: answer, Source: SourceLocal}
	}

	if a.remote != nil {
		answer, err := a.remote.Ask(ctx, query, personaID)
		switch {
		case err != nil:
			a.logger.Warn("Analyst bot unavailable, answering locally", zap.Error(err))
		case IsGeneric(answer):
			a.logger.Debug("Analyst bot returned a generic answer")
		default:
			return Reply{Response: answer, Source: SourceRemote}
		}
	}

	return Reply{Response: HelpText, Source: SourceLocal}
}

// IsGeneric reports whether a bot answer is a canned help message.
func IsGeneric(answer string) bool {
	for _, marker := range genericMarkers {
		if strings.Contains(answer, marker) {
			return true
		}
	}
	return false
}
