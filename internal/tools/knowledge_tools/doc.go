// Package knowledge_tools provides the MCP tool that answers questions
// from the vendor knowledge base.
package knowledge_tools
