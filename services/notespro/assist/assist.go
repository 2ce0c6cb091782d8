// Copyright (C) 2025 NotesPro (oss@notespro.app)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package assist wraps the Generative Text Service in the four call
// patterns the note surface uses: free-form generation appended to a
// note, full-content replacement, an initial draft from title and seed,
// and question answering with every note stuffed into the context.
//
// Generation failures never propagate: each call converts errors into a
// neutral apology string shown in place of generated content. The note
// store neither depends on nor blocks on anything here.
package assist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/notespro/notespro/services/llm"
	"github.com/notespro/notespro/services/notespro/datatypes"
)

// Apology is displayed in place of generated content when the backend
// fails.
const Apology = "Sorry, I couldn't generate a response. Please try again."

// Assistant runs the note-centric prompt patterns over any LLM backend.
type Assistant struct {
	client llm.LLMClient
}

// New creates an Assistant over client.
func New(client llm.LLMClient) *Assistant {
	return &Assistant{client: client}
}

// GenerateForNote produces text to append to an existing note.
func (a *Assistant) GenerateForNote(ctx context.Context, prompt, noteContent string) string {
	fullPrompt := fmt.Sprintf(
		"You are an AI assistant helping a user with their note. Perform the following task: %q.\n\n"+
			"Here is the current content of the note:\n---\n%s\n---\n\n"+
			"Provide only the generated text to be added or replaced in the note.",
		prompt, noteContent)
	return a.generate(ctx, "append", fullPrompt)
}

// GenerateReplacement produces the full new text for a note, used for
// summarize and rewrite tasks.
func (a *Assistant) GenerateReplacement(ctx context.Context, prompt, noteContent string) string {
	fullPrompt := fmt.Sprintf(
		"You are an AI assistant that rewrites or summarizes a user's note based on their request. "+
			"Your output should be ONLY the new, full text for the note. Do not include any titles, "+
			"headings, or conversational pleasantries like \"Here is the summary:\". "+
			"Just provide the raw text that will replace the old note content.\n\n"+
			"User's Task: %q\n\nOriginal Note Content:\n---\n%s\n---\n\nNew Note Content:",
		prompt, noteContent)
	return a.generate(ctx, "replace", fullPrompt)
}

// GenerateInitialContent drafts a note body from its title and whatever
// the user typed as a seed.
func (a *Assistant) GenerateInitialContent(ctx context.Context, title, content string) string {
	fullPrompt := fmt.Sprintf(
		"You are an AI assistant helping a user draft a new note. Based on the provided title and "+
			"initial content/prompt, please generate the body of the note. If the content looks like "+
			"a prompt, fulfill it. If it's just a few keywords, expand on them.\n\n"+
			"Title: %q\nInitial Content/Prompt: %q\n\n"+
			"Respond with only the generated content for the note body. Do not include the title in your response.",
		title, content)
	return a.generate(ctx, "draft", fullPrompt)
}

// AnswerFromNotes answers a question using only the user's notes as
// context. Every note's title and content is concatenated ahead of the
// question.
func (a *Assistant) AnswerFromNotes(ctx context.Context, question string, notes []datatypes.Note) string {
	contextParts := make([]string, 0, len(notes))
	for _, note := range notes {
		contextParts = append(contextParts, fmt.Sprintf("Note Title: %s\nNote Content: %s", note.Title, note.Content))
	}
	noteContext := strings.Join(contextParts, "\n\n---\n\n")

	fullPrompt := fmt.Sprintf(
		"You are an AI assistant that answers questions based on a user's personal notes. "+
			"The user's notes are provided below as context. Answer the user's question based *only* on "+
			"the information in these notes. If the answer isn't in the notes, say that you can't find "+
			"the information in their notes.\n\n--- CONTEXT: USER'S NOTES ---\n%s\n--- END OF CONTEXT ---\n\n"+
			"USER'S QUESTION: %s\n\nANSWER:",
		noteContext, question)
	return a.generate(ctx, "ask", fullPrompt)
}

func (a *Assistant) generate(ctx context.Context, mode, prompt string) string {
	answer, err := a.client.Generate(ctx, prompt, llm.GenerationParams{})
	if err != nil {
		slog.Error("Generation failed", "mode", mode, "error", err)
		return Apology
	}
	return answer
}
