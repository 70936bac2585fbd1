package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts registers canned prompts covering the common question
// shapes the tools answer.
func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "list_all_mulesoft_runtime_versions",
		Description: "List every MuleSoft EDGE and LTS runtime version",
	}, staticPrompt("Please provide **all** MuleSoft EDGE and LTS runtime versions, including release dates and the JDK versions each runtime supports."))

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "show_latest_mulesoft_versions",
		Description: "Show the latest MuleSoft EDGE and LTS runtime versions",
	}, staticPrompt("Give me the **latest** MuleSoft EDGE and LTS runtime versions with their release dates and supported JDK versions."))

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "recent_dataweave_compatibility",
		Description: "Summarize recent DataWeave versions and their runtime compatibility",
	}, staticPrompt("List the most recent DataWeave versions, the Mule runtime versions they work with, and the JDK versions supported. Include any notable release notes or breaking changes for the last three DataWeave releases."))

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "list_all_connector_compatibility",
		Description: "Build the full connector compatibility matrix",
	}, staticPrompt("Provide a compatibility matrix for **all** MuleSoft connectors, showing which Mule runtime versions and JDK versions each connector supports."))
}

// staticPrompt returns a handler serving a fixed single user message.
func staticPrompt(text string) mcp.PromptHandler {
	return func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: text}},
			},
		}, nil
	}
}
