// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

/*
Package assistant proxies chat messages to an OpenAI-compatible model,
grounding every conversation in live user-base statistics.

# Architecture

The service composes a system prompt from the directory aggregates (account
count, email domain distribution) before each completion call, so the model
can answer questions about the platform's real data. Upstream failures never
surface provider details to the client; they collapse into a 503.
*/
package assistant

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/minhngo/uservault/internal/platform/apperr"
	"github.com/minhngo/uservault/internal/users/directory"
)

// # Contracts & Types

// Completion tuning. The proxy serves short operational answers, not long
// generations.
const (
	completionTemperature = 0.7
	completionMaxTokens   = 800

	// maxContextDomains bounds how many domains enter the system prompt.
	maxContextDomains = 10
)

// StatsProvider supplies the aggregates embedded in the system prompt.
// [directory.Service] satisfies it.
type StatsProvider interface {
	Count(context context.Context) (int, error)
	EmailDomainStats(context context.Context) (*directory.DomainStats, error)
}

// Service implements the AI chat proxy.
type Service struct {
	client *openai.Client
	model  string
	stats  StatsProvider
}

// NewService constructs the assistant.
//
// baseURL overrides the provider endpoint; leave it empty for the OpenAI
// default. Any OpenAI-compatible chat-completions server works.
func NewService(apiKey, baseURL, model string, stats StatsProvider) *Service {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &Service{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		stats:  stats,
	}
}

// # Chat

/*
Chat sends one user message to the model and returns the assistant's reply.

Description: Builds a statistics-grounded system prompt, appends extra domain
detail when the message touches email/domain topics, and performs a single
chat-completion round trip.

Parameters:
  - context: context.Context
  - message: string

Returns:
  - string: Assistant reply text
  - err: ServiceUnavailable when the upstream call fails
*/
func (service *Service) Chat(context context.Context, message string) (string, error) {
	systemPrompt := service.buildSystemPrompt(context, message)

	response, err := service.client.CreateChatCompletion(context, openai.ChatCompletionRequest{
		Model:       service.model,
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})

	if err != nil {
		return "", apperr.ServiceUnavailable("AI service is currently unavailable")
	}

	if len(response.Choices) == 0 {
		return "", apperr.ServiceUnavailable("AI service returned an empty response")
	}

	return response.Choices[0].Message.Content, nil
}

// buildSystemPrompt assembles the statistics context for one completion.
// Aggregate lookups that fail degrade the prompt instead of failing the chat.
func (service *Service) buildSystemPrompt(context context.Context, message string) string {
	var prompt strings.Builder
	prompt.WriteString("You are the UserVault assistant. You answer questions about the platform's user base using the statistics below.\n")

	if total, err := service.stats.Count(context); err == nil {
		fmt.Fprintf(&prompt, "Registered users: %d.\n", total)
	}

	stats, err := service.stats.EmailDomainStats(context)
	if err != nil || stats == nil {
		return prompt.String()
	}

	if stats.MostUsed != "" {
		fmt.Fprintf(&prompt, "Most used email domain: %s.\n", stats.MostUsed)
	}

	limit := len(stats.Domains)
	if limit > maxContextDomains {
		limit = maxContextDomains
	}
	if limit > 0 {
		prompt.WriteString("Top email domains:\n")
		for _, domain := range stats.Domains[:limit] {
			fmt.Fprintf(&prompt, "  - %s: %d users (%.2f%%)\n", domain.Domain, domain.Count, domain.Percentage)
		}
	}

	if mentionsEmailTopics(message) {
		fmt.Fprintf(&prompt, "The user is asking about email or domain data. Distinct domains: %d across %d users. Use the exact counts and percentages above in your answer.\n",
			stats.TotalDomains, stats.TotalUsers)
	}

	return prompt.String()
}

// mentionsEmailTopics reports whether a message touches email/domain subjects.
func mentionsEmailTopics(message string) bool {
	lowered := strings.ToLower(message)
	return strings.Contains(lowered, "email") || strings.Contains(lowered, "domain")
}
