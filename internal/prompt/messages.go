package prompt

import "github.com/kannou1/PFE/internal/types"

// BuildMessages returns the system prompt, the context block when c is set,
// and the user's message, in that order.
func BuildMessages(userText string, c *types.Context) []types.Message {
	messages := make([]types.Message, 0, 3)
	messages = append(messages, types.Message{Role: types.RoleSystem, Content: BaseSystemPrompt})
	if c != nil {
		messages = append(messages, types.Message{Role: types.RoleSystem, Content: Assemble(c)})
	}
	return append(messages, types.Message{Role: types.RoleUser, Content: userText})
}

// DocumentMessages asks for a summary of already-extracted document text.
func DocumentMessages(content string) []types.Message {
	return []types.Message{
		{Role: types.RoleSystem, Content: DocumentSystemPrompt},
		{Role: types.RoleUser, Content: documentUserPrefix + content},
	}
}
