package generation

import "fmt"

// SummaryPrompt instructs the model to compress the three answers into one intent sentence.
const SummaryPrompt = "You are a helpful assistant. Summarize in one sentence what kind of movie the user is looking for, based on their answers."

// SynthesisPrompt frames the final recommendation.
const SynthesisPrompt = "You are an enthusiastic movie expert who loves recommending movies to people. " +
	"You will be given some context about movies and a description of what the user wants to watch. " +
	"Use only the provided context. " +
	"Pick exactly one movie from the context that best matches what the user wants " +
	"and explain how it fits what the user is looking for. " +
	"Keep the answer short, no more than a few sentences. " +
	"If you are unsure and cannot find a suitable movie in the context, say, \"Sorry, I don't know the answer.\" " +
	"Please do not make up the answer."

// SynthesisUserMessage renders the context block and the intent into the user turn.
func SynthesisUserMessage(context, intent string) string {
	return fmt.Sprintf("Context: %s\nWhat the user wants: %s", context, intent)
}
