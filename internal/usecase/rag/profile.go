package rag

import (
	"github.com/kailas-cloud/foodrag/internal/domain/answer"
	"github.com/kailas-cloud/foodrag/internal/domain/prompt"
	"github.com/kailas-cloud/foodrag/internal/usecase/retrieval"
)

// Profile bundles the per-strategy prompt template, source labels and status message.
type Profile struct {
	Template prompt.Template
	Labels   answer.Labels
	Message  string
}

// CorpusProfile is used with the static food corpus.
var CorpusProfile = Profile{
	Template: prompt.Corpus,
	Labels:   answer.Labels{Region: "Global", Type: "Food"},
	Message:  "RAG API with static food corpus is running",
}

// WebProfile is used with web search retrieval.
var WebProfile = Profile{
	Template: prompt.WebSearch,
	Labels:   answer.Labels{Region: "Internet", Type: "Web Source"},
	Message:  "RAG API with Google Search is running",
}

// ProfileFor returns the profile matching a retriever strategy.
func ProfileFor(strategy string) Profile {
	if strategy == retrieval.StrategyWebSearch {
		return WebProfile
	}
	return CorpusProfile
}
