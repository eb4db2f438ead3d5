// Package prompt builds the text sent to the model: the per-round planning
// request and the chat-template rendering of the message history.
package prompt

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt is used when the config leaves the system prompt empty.
const DefaultSystemPrompt = "You are an AI assistant helping with planning and goal achievement."

// Role is the speaker of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    Role
	Content string
}

// PlanningRequest asks for count more next actions toward goal, given the
// path walked so far.
func PlanningRequest(goal string, path []string, count int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Given the current goal: %s\n", goal))
	sb.WriteString(fmt.Sprintf("And the current path: %s\n\n", strings.Join(path, " -> ")))
	sb.WriteString(fmt.Sprintf("Generate %d possible next actions or plans. ", count))
	sb.WriteString("Each plan should be a concise, actionable step towards the goal.\n\n")
	sb.WriteString("Format your response as a numbered list:\n")
	for i := 1; i <= count; i++ {
		sb.WriteString(fmt.Sprintf("%d. [%s plan]\n", i, ordinal(i)))
	}

	return sb.String()
}

// SelectionMessage and EditMessage are the history texts recorded for a
// choice and an edit.
func SelectionMessage(content string) string {
	return "Selected plan: " + content
}

func EditMessage(index int, content string) string {
	return fmt.Sprintf("Edited plan %d to: %s", index, content)
}

// ManualPlansMessage records plans typed in by the user instead of generated.
func ManualPlansMessage(plans []string) string {
	var sb strings.Builder
	sb.WriteString("Added plans:\n")
	for i, p := range plans {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, p))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func ordinal(n int) string {
	words := []string{"First", "Second", "Third", "Fourth", "Fifth", "Sixth", "Seventh", "Eighth", "Ninth", "Tenth"}
	if n >= 1 && n <= len(words) {
		return words[n-1]
	}
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
